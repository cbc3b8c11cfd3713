// Package infobutton serves quick-reference help for ontology container
// domains. Entries come from a YAML dictionary keyed by domain id, re-read
// on every lookup so edits show up without a restart.
package infobutton

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/ehr/querybuilder/internal/platform/templating"
)

// Error codes. Each is reported with the upper-cased domain appended.
const (
	CodeUnknownDomain = "IFB-101"
	CodeMissingBody   = "IFB-102"
	CodeMissingTitle  = "IFB-103"
	CodeUnavailable   = "IFB-404"
)

const (
	DefaultTitle = "InfoButton"
	ErrorTitle   = "InfoButton - Error"

	domainErrorBody = `<div class='UNCErrorMsg'>We're sorry but there was an error loading the data for this domain to the InfoButton.</div>`
	loadErrorBody   = `<div class='UNCErrorMsg'>We're sorry but there was an error loading the InfoButton.</div>`
)

// Entry is one domain in the dictionary file.
type Entry struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}

// Info is what the help dialog shows for a domain.
type Info struct {
	Domain    string `json:"domain"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	ErrorCode string `json:"error_code,omitempty"`
	Link      string `json:"link,omitempty"`
}

// Config locates the dictionary.
type Config struct {
	// DictionaryPath is a YAML file mapping domain ids to entries.
	DictionaryPath string
	// DataDictionaryURL links out to the full data dictionary. {DOMAIN} is
	// replaced with the escaped domain id. Empty hides the link.
	DataDictionaryURL string
}

// Service looks up domain help.
type Service struct {
	cfg    Config
	logger zerolog.Logger
}

// NewService creates an InfoButton service.
func NewService(cfg Config, logger zerolog.Logger) *Service {
	return &Service{cfg: cfg, logger: logger}
}

// Lookup returns the help for domain. Problems are reported through
// Info.ErrorCode rather than an error so the dialog can always be drawn.
func (s *Service) Lookup(domain string) Info {
	info := Info{Domain: domain, Link: s.link(domain)}
	suffix := "-" + strings.ToUpper(domain)

	dict, err := s.load()
	if err != nil {
		s.logger.Warn().Err(err).Str("path", s.cfg.DictionaryPath).Msg("infobutton dictionary unavailable")
		info.Title = ErrorTitle
		info.Body = loadErrorBody
		info.ErrorCode = CodeUnavailable + suffix
		return info
	}

	entry, ok := dict[domain]
	if !ok {
		info.Title = ErrorTitle
		info.Body = domainErrorBody
		info.ErrorCode = CodeUnknownDomain + suffix
		return info
	}

	info.Title = entry.Title
	info.Body = entry.Body
	if strings.TrimSpace(entry.Title) == "" {
		info.Title = DefaultTitle
		info.ErrorCode = CodeMissingTitle + suffix
	}
	// A missing body outranks a missing title.
	if strings.TrimSpace(entry.Body) == "" {
		info.Body = domainErrorBody
		info.ErrorCode = CodeMissingBody + suffix
	}
	return info
}

func (s *Service) load() (map[string]Entry, error) {
	if s.cfg.DictionaryPath == "" {
		return nil, fmt.Errorf("no dictionary configured")
	}
	raw, err := os.ReadFile(s.cfg.DictionaryPath)
	if err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	var dict map[string]Entry
	if err := yaml.Unmarshal(raw, &dict); err != nil {
		return nil, fmt.Errorf("parse dictionary: %w", err)
	}
	return dict, nil
}

func (s *Service) link(domain string) string {
	if s.cfg.DataDictionaryURL == "" {
		return ""
	}
	return templating.Render(s.cfg.DataDictionaryURL, map[string]string{"DOMAIN": url.PathEscape(domain)})
}
