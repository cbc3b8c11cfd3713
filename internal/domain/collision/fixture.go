package collision

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ehr/querybuilder/internal/domain/ontology"
)

// Fixture is a self-contained drop scenario: the concepts involved and the
// drop request itself.
//
//	concepts:
//	  - key: '\\i2b2_DIAG\i2b2\Diagnoses\'
//	    name: Diagnoses
//	    kind: FA
//	    level: 1
//	  - key: '\\i2b2_DIAG\i2b2\Diagnoses\Heart\'
//	    parent: '\\i2b2_DIAG\i2b2\Diagnoses\'
//	    ...
//	candidate:
//	  sdx: {control_cell: ONT, type: CONCPT, key_value: ..., display_name: ...}
//	group:
//	  - sdx: ...
type Fixture struct {
	Concepts    []ontology.Record `yaml:"concepts"`
	DropRequest `yaml:",inline"`
}

// LoadFixture decodes a YAML fixture.
func LoadFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	for i, c := range f.Concepts {
		if c.Key == "" {
			return nil, fmt.Errorf("concept %d has no key", i)
		}
	}
	return &f, nil
}

// Repository returns the fixture's concepts as an ontology store.
func (f *Fixture) Repository() *ontology.MemoryRepo {
	return ontology.NewMemoryRepo(f.Concepts...)
}
