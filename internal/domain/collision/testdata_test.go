package collision

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/ehr/querybuilder/internal/domain/ontology"
)

// =========== Test Ontology ===========

const (
	keyDiagnoses    = `\\i2b2_DIAG\i2b2\Diagnoses\`
	keyCirculatory  = `\\i2b2_DIAG\i2b2\Diagnoses\Circulatory\`
	keyHypertension = `\\i2b2_DIAG\i2b2\Diagnoses\Circulatory\Hypertension\`
	keyI10          = `\\i2b2_DIAG\i2b2\Diagnoses\Circulatory\Hypertension\I10\`
	keyHTN          = `\\i2b2_DIAG\i2b2\Diagnoses\Circulatory\Hypertension\HTN\`
	keyE11          = `\\i2b2_DIAG\i2b2\Diagnoses\Endocrine\E11\`
	keyModRoot      = `\\i2b2_MOD\DiagMod\`
	keyModRootAlt   = `\\i2b2_MOD\DiagModAlt\`
	keyPrincipal    = `\\i2b2_MOD\DiagMod\PRINCIPAL_DX\`
	keyPrimary      = `\\i2b2_MOD\DiagModAlt\PRINCIPAL_DX\`
	keySecondary    = `\\i2b2_MOD\DiagMod\SECONDARY_DX\`
	keyGlucose      = `\\i2b2_LAB\i2b2\Labs\Glucose\`
	keyGlucoseAlt   = `\\i2b2_ALT\i2b2\Chem\Glucose\`
	keyGlucoseGroup = `\\i2b2_GRP\i2b2\Groups\GlucoseTests\`
)

type testOntology struct {
	tree *ontology.Tree
	ids  map[string]ontology.NodeID
}

func (o *testOntology) add(t *testing.T, n ontology.Node, parentKey string) {
	t.Helper()
	parent := ontology.NoParent
	if parentKey != "" {
		parent = o.ids[parentKey]
	}
	id, err := o.tree.Add(n, parent)
	if err != nil {
		t.Fatalf("add %s: %v", n.Key, err)
	}
	o.ids[n.Key] = id
}

func (o *testOntology) node(key string) *ontology.Node {
	n, _ := o.tree.Node(o.ids[key])
	return n
}

// item wraps a concept as an ontology drag-and-drop item. An empty display
// name defaults to the concept name.
func (o *testOntology) item(key, display string) Item {
	n := o.node(key)
	if display == "" {
		display = n.Name
	}
	return Item{
		SDX:     SDXInfo{ControlCell: CellOntology, Type: TypeConcept, KeyValue: key, DisplayName: display},
		Concept: o.ids[key],
	}
}

func newTestOntology(t *testing.T) *testOntology {
	t.Helper()
	o := &testOntology{tree: ontology.NewTree(), ids: make(map[string]ontology.NodeID)}
	like := ontology.Str(ontology.OperatorLike)

	o.add(t, ontology.Node{Key: keyDiagnoses, Name: "Diagnoses", Level: 1, Kind: ontology.KindContainer,
		DimCodeRaw: ontology.Str(`\i2b2\Diagnoses\`), OperatorOp: like}, "")
	o.add(t, ontology.Node{Key: keyCirculatory, Name: "Circulatory system", Level: 2, Kind: ontology.KindFolder,
		DimCodeRaw: ontology.Str(`\i2b2\Diagnoses\Circulatory\`), OperatorOp: like}, keyDiagnoses)
	o.add(t, ontology.Node{Key: keyHypertension, Name: "Hypertensive disease", Level: 3, Kind: ontology.KindFolder,
		DimCodeRaw: ontology.Str(`\i2b2\Diagnoses\Circulatory\Hypertension\`), OperatorOp: like}, keyCirculatory)
	o.add(t, ontology.Node{Key: keyI10, Name: "Essential hypertension", Level: 4, Kind: ontology.KindLeaf,
		BaseCode: ontology.Str("ICD10CM:I10"), DimCodeRaw: ontology.Str(`\i2b2\Diagnoses\Circulatory\Hypertension\I10\`), OperatorOp: like}, keyHypertension)
	o.add(t, ontology.Node{Key: keyHTN, Name: "Hypertension (HTN)", Level: 4, Kind: ontology.KindLeaf,
		BaseCode: ontology.Str("ICD10CM:I10"), DimCodeRaw: ontology.Str(`\i2b2\Diagnoses\Circulatory\Hypertension\HTN\`), OperatorOp: like}, keyHypertension)

	o.add(t, ontology.Node{Key: keyE11, Name: "Type 2 diabetes", Level: 3, Kind: ontology.KindLeaf,
		BaseCode: ontology.Str("ICD10CM:E11"), DimCodeRaw: ontology.Str(`\i2b2\Diagnoses\Endocrine\E11\`), OperatorOp: like}, keyDiagnoses)
	o.add(t, ontology.Node{Key: keyModRoot, Name: "Diagnosis modifiers", Level: 1, Kind: "DA", IsModifier: true}, keyE11)
	o.add(t, ontology.Node{Key: keyModRootAlt, Name: "Alternate modifiers", Level: 1, Kind: "DA", IsModifier: true}, keyE11)
	o.add(t, ontology.Node{Key: keyPrincipal, Name: "Principal", Level: 2, Kind: "RA", IsModifier: true}, keyModRoot)
	o.add(t, ontology.Node{Key: keyPrimary, Name: "Primary", Level: 2, Kind: "RA", IsModifier: true}, keyModRootAlt)
	o.add(t, ontology.Node{Key: keySecondary, Name: "Secondary", Level: 2, Kind: "RA", IsModifier: true}, keyModRoot)

	o.add(t, ontology.Node{Key: keyGlucose, Name: "Glucose", Level: 3, Kind: ontology.KindLeaf,
		BaseCode: ontology.Str("LOINC:2345-7"), DimCodeRaw: ontology.Str(`'LOINC:2345-7'`), OperatorOp: ontology.Str("=")}, "")
	o.add(t, ontology.Node{Key: keyGlucoseAlt, Name: "Glucose [Mass/volume]", Level: 3, Kind: ontology.KindLeaf,
		BaseCode: ontology.Str("CHEM:GLU"), DimCodeRaw: ontology.Str(`'LOINC:2345-7'`), OperatorOp: ontology.Str("=")}, "")
	o.add(t, ontology.Node{Key: keyGlucoseGroup, Name: "Glucose tests", Level: 3, Kind: ontology.KindLeaf,
		BaseCode: ontology.Str("GRP:GLUCOSE"), DimCodeRaw: ontology.Str(`('LOINC:2345-7','LOINC:2339-0')`), OperatorOp: ontology.Str("in")}, "")
	return o
}

func newTestChecker(opts Options) *Checker {
	return NewChecker(opts, zerolog.Nop())
}
