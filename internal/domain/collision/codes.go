package collision

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ehr/querybuilder/internal/domain/ontology"
)

// CodeSource records where a code in a concept's code list came from.
type CodeSource string

const (
	SourceBasecode  CodeSource = "BASECODE"
	SourceModifier  CodeSource = "MODIFIER"
	SourceEqDimcode CodeSource = "EQ-DIMCODE"
	SourceInDimcode CodeSource = "IN-DIMCODE"
)

// IsDimcode reports whether the code was parsed out of a dimension code.
func (s CodeSource) IsDimcode() bool {
	return s == SourceEqDimcode || s == SourceInDimcode
}

// CodeEntry is one code a concept may be queried by.
type CodeEntry struct {
	Code   string
	Source CodeSource
}

// Side tags the synthetic basecode of a concept that has none, so that two
// such concepts never compare equal.
type Side string

const (
	SideNew      Side = "NEW"
	SideExisting Side = "EXIST"
)

// ParenStrip selects how the closing parenthesis of an IN list is removed.
type ParenStrip string

const (
	// ParenStripLegacy drops the closing parenthesis together with the
	// character before it. For quoted lists that character is a quote, so
	// the result is unchanged; for unquoted lists the last code loses its
	// final character.
	ParenStripLegacy ParenStrip = "legacy"
	// ParenStripExact drops only the closing parenthesis.
	ParenStripExact ParenStrip = "exact"
)

// ParseParenStrip validates a configured paren strip mode.
func ParseParenStrip(s string) (ParenStrip, error) {
	switch ParenStrip(strings.ToLower(strings.TrimSpace(s))) {
	case "", ParenStripLegacy:
		return ParenStripLegacy, nil
	case ParenStripExact:
		return ParenStripExact, nil
	}
	return "", fmt.Errorf("unknown dimcode paren strip mode %q", s)
}

var modifierSegment = regexp.MustCompile(`\\[a-zA-Z0-9_:]+\\`)

// Extractor derives the code list of a concept.
type Extractor struct {
	tree  *ontology.Tree
	paren ParenStrip
}

// NewExtractor creates an extractor over tree.
func NewExtractor(tree *ontology.Tree, paren ParenStrip) *Extractor {
	if paren == "" {
		paren = ParenStripLegacy
	}
	return &Extractor{tree: tree, paren: paren}
}

// Codes returns the codes n may be queried by. The first entry is always
// the BASECODE entry; a modifier has its MODIFIER entry second; dimension
// codes follow.
func (x *Extractor) Codes(n *ontology.Node, operator string, side Side) []CodeEntry {
	basecode, modifier := x.basecode(n, side)

	codes := []CodeEntry{{Code: basecode, Source: SourceBasecode}}
	if n.IsModifier {
		codes = append(codes, CodeEntry{Code: modifier, Source: SourceModifier})
	}

	dimcode := dimensionCode(n)
	if n.IsModifier || strings.EqualFold(strings.TrimSpace(dimcode), strings.TrimSpace(basecode)) {
		return codes
	}

	op := strings.TrimSpace(operator)
	switch {
	case strings.EqualFold(op, ontology.OperatorIn):
		for _, code := range x.splitInList(dimcode) {
			codes = append(codes, CodeEntry{Code: code, Source: SourceInDimcode})
		}
	case op == ontology.OperatorEqual:
		codes = append(codes, CodeEntry{Code: strings.ReplaceAll(dimcode, "'", ""), Source: SourceEqDimcode})
	}
	return codes
}

// basecode resolves the concept code. Modifiers without a code of their own
// take the code of the concept they modify (their grandparent) and are
// identified by the last path segment of their key.
func (x *Extractor) basecode(n *ontology.Node, side Side) (basecode, modifier string) {
	if code, ok := n.Basecode(); ok {
		return strings.TrimSpace(code), ""
	}
	if n.IsModifier {
		if gp, ok := x.tree.Grandparent(n.ID); ok {
			if code, ok := gp.Basecode(); ok {
				return strings.TrimSpace(code), lastModifierSegment(n.Key)
			}
		}
	}
	return string(side) + ":NO BASECODE", ""
}

func lastModifierSegment(key string) string {
	segments := modifierSegment.FindAllString(key, -1)
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

// dimensionCode returns the dimension code, falling back to the key with
// its table prefix removed.
func dimensionCode(n *ontology.Node) string {
	if dc, ok := n.DimCode(); ok {
		return strings.TrimSpace(dc)
	}
	key := n.Key
	if strings.HasPrefix(key, `\\`) {
		if i := strings.Index(key[2:], `\`); i >= 0 {
			return strings.TrimSpace(key[i+2:])
		}
		return strings.TrimSpace(key)
	}
	return key
}

func (x *Extractor) splitInList(dimcode string) []string {
	dimcode = strings.TrimPrefix(dimcode, "(")
	if strings.HasSuffix(dimcode, ")") {
		cut := 1
		if x.paren == ParenStripLegacy {
			cut = 2
		}
		if cut > len(dimcode) {
			cut = len(dimcode)
		}
		dimcode = dimcode[:len(dimcode)-cut]
	}
	dimcode = strings.ReplaceAll(dimcode, "'", "")
	return strings.Split(dimcode, ",")
}

// dimcodeCount counts the entries parsed out of a dimension code.
func dimcodeCount(codes []CodeEntry) int {
	count := 0
	for _, c := range codes {
		if c.Source.IsDimcode() {
			count++
		}
	}
	return count
}
