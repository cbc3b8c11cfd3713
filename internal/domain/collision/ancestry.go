package collision

import (
	"github.com/ehr/querybuilder/internal/domain/ontology"
)

// searchOrder says which concept is ascending during an ancestor search.
type searchOrder int

const (
	// ascendExisting: the existing concept's ancestors are searched for the
	// dropped concept, i.e. a parent may have been dropped onto its child.
	ascendExisting searchOrder = iota + 1
	// ascendNew: the dropped concept's ancestors are searched for the
	// existing concept, i.e. a child may have been dropped onto its parent.
	ascendNew
)

// findAncestor walks from start toward the root looking for target. Keys
// are compared, and dimension codes when both nodes define one. Each step
// compares first; the walk then stops when either node is a container,
// which cannot be queried, or at the root.
func findAncestor(tree *ontology.Tree, start, target *ontology.Node, order searchOrder) Verdict {
	if start == nil || target == nil {
		return VerdictNone
	}
	current := start
	// Each step follows a parent link toward the root, so the loop runs at
	// most once per node in the arena.
	for steps := 0; steps <= tree.Len(); steps++ {
		if sameConcept(current, target) {
			if order == ascendExisting {
				return VerdictChildPresent
			}
			return VerdictParentPresent
		}
		if current.Kind.Is(ontology.KindContainer) || target.Kind.Is(ontology.KindContainer) {
			return VerdictNone
		}
		parent, ok := tree.Parent(current.ID)
		if !ok {
			return VerdictNone
		}
		current = parent
	}
	return VerdictNone
}

func sameConcept(a, b *ontology.Node) bool {
	if a.Key == b.Key {
		return true
	}
	da, okA := a.DimCode()
	db, okB := b.DimCode()
	return okA && okB && da == db
}
