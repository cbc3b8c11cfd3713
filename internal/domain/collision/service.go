package collision

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ehr/querybuilder/internal/domain/ontology"
)

// ItemRef references a drag-and-drop item by its concept key. When
// ConceptKey is empty the sdx key value is used.
type ItemRef struct {
	SDX        SDXInfo `json:"sdx" yaml:"sdx"`
	ConceptKey string  `json:"concept_key,omitempty" yaml:"concept_key,omitempty"`
}

func (r ItemRef) key() string {
	if r.ConceptKey != "" {
		return r.ConceptKey
	}
	return r.SDX.KeyValue
}

// DropRequest is a concept dropped onto a query group.
type DropRequest struct {
	Candidate ItemRef   `json:"candidate" yaml:"candidate"`
	Group     []ItemRef `json:"group" yaml:"group"`
}

// Service resolves drop requests against the ontology and checks them.
type Service struct {
	ontology *ontology.Service
	checker  *Checker
	logger   zerolog.Logger
}

// NewService creates a new collision service.
func NewService(ont *ontology.Service, checker *Checker, logger zerolog.Logger) *Service {
	return &Service{ontology: ont, checker: checker, logger: logger}
}

// CheckDrop loads the concepts of a drop request and checks it. Only
// ontology items are resolved; group items whose concept cannot be found
// are ignored.
func (s *Service) CheckDrop(ctx context.Context, req *DropRequest) (*Result, error) {
	tree, candidate, group, err := s.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	r := s.checker.Check(tree, candidate, group)
	return &r, nil
}

// Resolve builds the ontology tree and items of a drop request.
func (s *Service) Resolve(ctx context.Context, req *DropRequest) (*ontology.Tree, Item, []Item, error) {
	tree := ontology.NewTree()

	candidate := Item{SDX: req.Candidate.SDX, Concept: ontology.NoNode}
	if candidate.isOntology() {
		id, err := s.ontology.Resolve(ctx, tree, req.Candidate.key())
		if err != nil {
			return nil, Item{}, nil, fmt.Errorf("resolve dropped concept: %w", err)
		}
		candidate.Concept = id
	}

	group := make([]Item, 0, len(req.Group))
	for _, ref := range req.Group {
		item := Item{SDX: ref.SDX, Concept: ontology.NoNode}
		if item.isOntology() {
			id, err := s.ontology.Resolve(ctx, tree, ref.key())
			switch {
			case errors.Is(err, ontology.ErrNotFound):
				s.logger.Warn().Str("key", ref.key()).Msg("group concept not found, skipping")
			case err != nil:
				return nil, Item{}, nil, fmt.Errorf("resolve group concept: %w", err)
			default:
				item.Concept = id
			}
		}
		group = append(group, item)
	}
	return tree, candidate, group, nil
}
