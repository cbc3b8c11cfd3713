package ontology

import "strings"

// Kind is the i2b2 visual attribute of a concept. Only the first two
// characters are significant; the remainder carries editability flags.
type Kind string

const (
	KindFolder    Kind = "FA"
	KindLeaf      Kind = "LA"
	KindContainer Kind = "CA"
)

// Is reports whether the kind carries the given two-letter prefix.
func (k Kind) Is(prefix Kind) bool {
	return strings.HasPrefix(strings.ToUpper(string(k)), string(prefix))
}

// IsQueryable reports whether a concept of this kind can be placed in a
// query group on its own.
func (k Kind) IsQueryable() bool {
	return k.Is(KindFolder) || k.Is(KindLeaf)
}

// Operator values used in the ontology c_operator column.
const (
	OperatorEqual = "="
	OperatorIn    = "IN"
	OperatorLike  = "LIKE"
)

// DemographicTable is the fact table name of concepts that are not tied to
// an encounter.
const DemographicTable = "PATIENT_DIMENSION"

// Node is a concept in the ontology tree. Nullable ontology columns are
// pointers so that an absent value can be told apart from an empty one.
type Node struct {
	ID         NodeID  `json:"-" yaml:"-"`
	Key        string  `db:"concept_key" json:"key" yaml:"key"`
	Name       string  `db:"name" json:"name" yaml:"name"`
	Level      int     `db:"hlevel" json:"level" yaml:"level"`
	Kind       Kind    `db:"visual_attributes" json:"kind" yaml:"kind"`
	BaseCode   *string `db:"basecode" json:"basecode,omitempty" yaml:"basecode,omitempty"`
	DimCodeRaw *string `db:"dimcode" json:"dim_code,omitempty" yaml:"dim_code,omitempty"`
	OperatorOp *string `db:"operator" json:"operator,omitempty" yaml:"operator,omitempty"`
	TableName  *string `db:"table_name" json:"table_name,omitempty" yaml:"table_name,omitempty"`
	IsModifier bool    `db:"is_modifier" json:"is_modifier" yaml:"is_modifier"`
	Parent     NodeID  `json:"-" yaml:"-"`
}

// Basecode returns the concept code, if the concept has one.
func (n *Node) Basecode() (string, bool) {
	if n.BaseCode == nil {
		return "", false
	}
	return *n.BaseCode, true
}

// DimCode returns the raw dimension code expression, if set.
func (n *Node) DimCode() (string, bool) {
	if n.DimCodeRaw == nil {
		return "", false
	}
	return *n.DimCodeRaw, true
}

// Operator returns the query operator, if set. Modifiers and concepts
// rebuilt from a previous query usually have none.
func (n *Node) Operator() (string, bool) {
	if n.OperatorOp == nil {
		return "", false
	}
	return *n.OperatorOp, true
}

// HasParent reports whether the node is attached below another node.
func (n *Node) HasParent() bool {
	return n.Parent != NoParent
}

// Record is a node as stored in a repository: the parent is referenced by
// key rather than by arena index.
type Record struct {
	Node      `yaml:",inline"`
	ParentKey string `db:"parent_key" json:"parent_key,omitempty" yaml:"parent,omitempty"`
}

// Str returns a pointer to s, for populating optional node fields.
func Str(s string) *string {
	return &s
}
