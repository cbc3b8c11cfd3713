package collision

import (
	"html"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ehr/querybuilder/internal/domain/ontology"
	"github.com/ehr/querybuilder/internal/platform/templating"
)

// Control cells and sdx types of drag-and-drop items.
const (
	CellOntology      = "ONT"
	CellCRC           = "CRC"
	TypeQueryMaster   = "QM"
	TypeConcept       = "CONCPT"
	TypePatientSet    = "PRS"
	defaultOperator   = ontology.OperatorLike
	modifierSeparator = "|"
)

// DefaultBillingCodeMarkers identify basecodes that users recognise more
// readily than the concept's display name.
var DefaultBillingCodeMarkers = []string{"CPT", "ICD", "HCPCS"}

// domainPrefix matches the ontology table segment of a key, e.g.
// `\i2b2_DIAG\` in `\\i2b2_DIAG\i2b2\Diagnoses\`.
var domainPrefix = regexp.MustCompile(`\\[a-zA-Z0-9_]+\\`)

// SDXInfo is the drag-and-drop envelope of an item.
type SDXInfo struct {
	ControlCell string `json:"control_cell" yaml:"control_cell"`
	Type        string `json:"type" yaml:"type"`
	KeyValue    string `json:"key_value" yaml:"key_value"`
	DisplayName string `json:"display_name" yaml:"display_name"`
}

// Item is a concept dropped on, or already placed in, a query group.
// Concept is ontology.NoNode for items that are not ontology concepts.
type Item struct {
	SDX     SDXInfo
	Concept ontology.NodeID
}

func (it Item) isPreviousQuery() bool {
	return it.SDX.ControlCell == CellCRC && it.SDX.Type == TypeQueryMaster
}

func (it Item) isOntology() bool {
	return it.SDX.ControlCell == CellOntology
}

// Result is the outcome of a drop check.
type Result struct {
	Allowed         bool    `json:"allowed"`
	Verdict         Verdict `json:"verdict"`
	Title           string  `json:"title,omitempty"`
	Message         string  `json:"message,omitempty"`
	NewConcept      string  `json:"new_concept,omitempty"`
	ExistingConcept string  `json:"existing_concept,omitempty"`
}

// Options configures a Checker.
type Options struct {
	ParenStrip         ParenStrip
	BillingCodeMarkers []string
	// Dialog, when set, is constructed on the first rejection and reused.
	Dialog DialogFactory
	// OnVerdict is called once per check with its verdict.
	OnVerdict func(Verdict)
}

// Checker decides whether a concept may be dropped into a query group.
type Checker struct {
	opts   Options
	dialog *lazyDialog
	logger zerolog.Logger
}

// NewChecker creates a checker.
func NewChecker(opts Options, logger zerolog.Logger) *Checker {
	if opts.ParenStrip == "" {
		opts.ParenStrip = ParenStripLegacy
	}
	if opts.BillingCodeMarkers == nil {
		opts.BillingCodeMarkers = DefaultBillingCodeMarkers
	}
	return &Checker{
		opts:   opts,
		dialog: &lazyDialog{factory: opts.Dialog},
		logger: logger,
	}
}

// identity is how a concept is recognised in a group. A modifier is not
// meaningful on its own, so it is identified together with the concept it
// modifies.
type identity struct {
	key     string
	display string
	domain  string
}

// Items referenced by concept key alone carry no sdx key or name; the
// resolved node supplies them.
func identify(tree *ontology.Tree, it Item, n *ontology.Node) identity {
	id := identity{key: it.SDX.KeyValue, display: it.SDX.DisplayName}
	if id.key == "" {
		id.key = n.Key
	}
	if id.display == "" {
		id.display = n.Name
	}
	id.domain = domainPrefix.FindString(id.key)
	if n.IsModifier {
		if p, ok := tree.Parent(n.ID); ok {
			id.key = p.Key + modifierSeparator + n.Name
		}
		if gp, ok := tree.Grandparent(n.ID); ok {
			id.display = gp.Name + modifierSeparator + n.Name
		}
	}
	return id
}

// side is one concept of a compared pair.
type side struct {
	node  *ontology.Node
	id    identity
	codes []CodeEntry
	dims  int
}

func operatorOf(n *ontology.Node) string {
	if op, ok := n.Operator(); ok {
		return op
	}
	return defaultOperator
}

// Check evaluates dropping candidate into group. Nodes are resolved in
// tree. The first conflicting group item, in group order, decides the
// verdict.
func (c *Checker) Check(tree *ontology.Tree, candidate Item, group []Item) Result {
	if candidate.isPreviousQuery() {
		return c.reject(VerdictPreviousQuery, "", "", nil)
	}
	if len(group) == 0 || !candidate.isOntology() {
		return c.accept()
	}

	newNode, ok := tree.Node(candidate.Concept)
	if !ok {
		c.logger.Warn().Str("key", candidate.SDX.KeyValue).Msg("dropped concept not in ontology tree")
		return c.accept()
	}
	x := NewExtractor(tree, c.opts.ParenStrip)
	dropped := side{node: newNode, id: identify(tree, candidate, newNode)}
	dropped.codes = x.Codes(newNode, operatorOf(newNode), SideNew)
	dropped.dims = dimcodeCount(dropped.codes)

	for _, item := range group {
		if !item.isOntology() {
			continue
		}
		node, ok := tree.Node(item.Concept)
		if !ok {
			c.logger.Warn().Str("key", item.SDX.KeyValue).Msg("group concept not in ontology tree")
			continue
		}
		present := side{node: node, id: identify(tree, item, node)}
		present.codes = x.Codes(node, operatorOf(node), SideExisting)
		present.dims = dimcodeCount(present.codes)

		if v, newName, existingName := compare(tree, dropped, present); v != VerdictNone {
			return c.reject(v, newName, existingName, newNode)
		}
	}
	return c.accept()
}

// compare classifies one dropped/existing pair and names the two concepts
// for the message.
func compare(tree *ontology.Tree, dropped, present side) (Verdict, string, string) {
	newName, existingName := dropped.id.display, present.id.display

	sameKey := dropped.id.key != "" && dropped.id.key == present.id.key
	if dropped.codes[0].Code == present.codes[0].Code || sameKey {
		return compareIdentical(dropped, present), newName, existingName
	}

	if present.id.domain != "" && present.id.domain == dropped.id.domain {
		return compareSameDomain(tree, dropped, present)
	}

	if dropped.dims > 0 || present.dims > 0 {
		return compareGrouped(dropped, present), newName, existingName
	}
	return VerdictNone, newName, existingName
}

// compareIdentical handles concepts that share a basecode or key. Modifiers
// only clash with each other when they modify with the same code; a plain
// concept and a modifier of it nest.
func compareIdentical(dropped, present side) Verdict {
	dn, pn := dropped.node, present.node
	if !dn.IsModifier && !pn.IsModifier {
		return byName(dropped, present)
	}
	switch {
	case dn.IsModifier && pn.IsModifier:
		if dropped.codes[1].Code == present.codes[1].Code {
			return byName(dropped, present)
		}
	case pn.Kind.IsQueryable() && !pn.IsModifier:
		return VerdictModifierCovered
	case dn.Kind.IsQueryable() && !dn.IsModifier:
		return VerdictExistingModifierCovered
	}
	return VerdictNone
}

// compareSameDomain detects nesting by key containment and, for folders,
// confirms it by walking the ontology tree.
func compareSameDomain(tree *ontology.Tree, dropped, present side) (Verdict, string, string) {
	dn, pn := dropped.node, present.node
	newName, existingName := dropped.id.display, present.id.display

	nk, pk := dropped.id.key, present.id.key
	if nk == "" || pk == "" || !(strings.Contains(pk, nk) || strings.Contains(nk, pk)) {
		return VerdictNone, newName, existingName
	}

	if pn.Kind.Is(ontology.KindFolder) && dn.HasParent() {
		return refineNesting(tree, dn, pn), dn.Name, pn.Name
	}
	if pn.Level < dn.Level {
		return VerdictParentPresent, dn.Name, existingName
	}
	return VerdictChildPresent, dn.Name, pn.Name
}

// refineNesting decides which concept is the ancestor. A leaf can never
// contain anything, and a deeper concept can only be a descendant.
func refineNesting(tree *ontology.Tree, dn, pn *ontology.Node) Verdict {
	switch {
	case dn.Kind.Is(ontology.KindLeaf) || pn.Level < dn.Level:
		start, ok := tree.Parent(dn.ID)
		if !ok {
			return VerdictNone
		}
		return findAncestor(tree, start, pn, ascendNew)
	case pn.Level > dn.Level:
		start, ok := tree.Parent(pn.ID)
		if !ok {
			return VerdictNone
		}
		return findAncestor(tree, start, dn, ascendExisting)
	}
	return VerdictNone
}

// compareGrouped compares dimension and modifier codes of concepts from
// different ontology domains. The BASECODE entries were compared already.
func compareGrouped(dropped, present side) Verdict {
	for _, pc := range present.codes[1:] {
		for _, dc := range dropped.codes[1:] {
			if pc.Code == "" || pc.Code != dc.Code {
				continue
			}
			switch {
			case (pc.Source == SourceEqDimcode && dc.Source == SourceEqDimcode) ||
				(present.dims == 1 && dropped.dims == 1):
				return byName(dropped, present)
			case pc.Source == SourceInDimcode && dc.Source == SourceEqDimcode:
				return VerdictGroupedCoversNew
			case pc.Source == SourceEqDimcode && dc.Source == SourceInDimcode:
				return VerdictNewGroupCoversExisting
			}
		}
	}
	return VerdictNone
}

func byName(dropped, present side) Verdict {
	if dropped.id.display == present.id.display {
		return VerdictDuplicate
	}
	return VerdictSynonym
}

func (c *Checker) accept() Result {
	c.observe(VerdictNone)
	return Result{Allowed: true, Verdict: VerdictNone}
}

func (c *Checker) reject(v Verdict, newName, existingName string, newNode *ontology.Node) Result {
	c.observe(v)
	msg, _ := MessageFor(v)
	r := Result{Verdict: v, Title: msg.Title}

	if v == VerdictPreviousQuery {
		r.Message = msg.Body
	} else {
		if newNode != nil && !newNode.IsModifier {
			if code, ok := newNode.Basecode(); ok && c.isBillingCode(code) {
				newName = code
			}
		}
		r.NewConcept, r.ExistingConcept = newName, existingName
		r.Message = conceptHeader + templating.Render(msg.Body, map[string]string{
			PlaceholderNew:      html.EscapeString(newName),
			PlaceholderExisting: html.EscapeString(existingName),
		})
	}

	c.logger.Debug().
		Str("verdict", v.String()).
		Str("new_concept", r.NewConcept).
		Str("existing_concept", r.ExistingConcept).
		Msg("drop rejected")
	c.dialog.present(r)
	return r
}

func (c *Checker) isBillingCode(code string) bool {
	for _, marker := range c.opts.BillingCodeMarkers {
		if strings.Contains(code, marker) {
			return true
		}
	}
	return false
}

func (c *Checker) observe(v Verdict) {
	if c.opts.OnVerdict != nil {
		c.opts.OnVerdict(v)
	}
}
