package collision

import "fmt"

// Verdict classifies the conflict between a dropped concept and a concept
// already present in the query group.
type Verdict int

const (
	VerdictNone Verdict = iota - 1
	// VerdictDuplicate: the same concept is already in the group.
	VerdictDuplicate
	// VerdictSynonym: a concept with the same code but another name is present.
	VerdictSynonym
	// VerdictParentPresent: a folder containing the new concept is present.
	VerdictParentPresent
	// VerdictChildPresent: a concept nested inside the new folder is present.
	VerdictChildPresent
	// VerdictGroupedCoversNew: an existing grouped (IN) concept already
	// queries the new single code.
	VerdictGroupedCoversNew
	// VerdictNewGroupCoversExisting: the new grouped concept includes an
	// existing single code.
	VerdictNewGroupCoversExisting
	// VerdictModifierCovered: the new modifier narrows a concept already present.
	VerdictModifierCovered
	// VerdictExistingModifierCovered: an existing modifier narrows the new concept.
	VerdictExistingModifierCovered
	// VerdictPreviousQuery: a whole previous query was dropped into a group.
	VerdictPreviousQuery
)

var verdictNames = map[Verdict]string{
	VerdictNone:                    "none",
	VerdictDuplicate:               "duplicate",
	VerdictSynonym:                 "synonym",
	VerdictParentPresent:           "parent-present",
	VerdictChildPresent:            "child-present",
	VerdictGroupedCoversNew:        "grouped-covers-new",
	VerdictNewGroupCoversExisting:  "new-group-covers-existing",
	VerdictModifierCovered:         "modifier-covered",
	VerdictExistingModifierCovered: "existing-modifier-covered",
	VerdictPreviousQuery:           "previous-query",
}

func (v Verdict) String() string {
	if s, ok := verdictNames[v]; ok {
		return s
	}
	return fmt.Sprintf("verdict(%d)", int(v))
}

// Rejects reports whether the verdict blocks the drop.
func (v Verdict) Rejects() bool {
	_, known := verdictNames[v]
	return known && v != VerdictNone
}

// MarshalText encodes the verdict by name.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Message is the fixed title and body template shown for a verdict.
// Bodies may reference {ERROR_CONCEPT_1} (the dropped concept) and
// {ERROR_CONCEPT_2} (the concept already in the group).
type Message struct {
	Title string
	Body  string
}

const (
	PlaceholderNew      = "ERROR_CONCEPT_1"
	PlaceholderExisting = "ERROR_CONCEPT_2"
)

const conceptHeader = `<div style="text-align:center; padding-bottom:10px;font-weight:bold;">i2b2 encountered a problem when adding a concept:</div>`

var catalog = map[Verdict]Message{
	VerdictDuplicate: {
		Title: "Duplicate Concepts",
		Body:  "You already have a copy of <i>'{ERROR_CONCEPT_1}'</i> in this group. We've prevented you from adding it twice.",
	},
	VerdictSynonym: {
		Title: "Synonym Concepts",
		Body:  "You already have a copy of <i>'{ERROR_CONCEPT_1}'</i> in this group. We've prevented you from adding it twice.<br><br>Existing Synonym in Group: <i>'{ERROR_CONCEPT_2}'</i>",
	},
	VerdictParentPresent: {
		Title: "Nested Concepts",
		Body:  "You have the <i>'{ERROR_CONCEPT_2}'</i> folder in this group, which already contains <i>'{ERROR_CONCEPT_1}'</i>.<br><br> We've prevented you from adding it twice.",
	},
	VerdictChildPresent: {
		Title: "Nested Concepts",
		Body:  "You already have  <i>'{ERROR_CONCEPT_2}'</i> in this group, which is nested inside the <i>'{ERROR_CONCEPT_1}'</i> folder you attempted to add.<br><br> If you'd like to add the whole folder, delete <i>'{ERROR_CONCEPT_2}'</i> from the group and try again.",
	},
	VerdictGroupedCoversNew: {
		Title: "Nested Concepts",
		Body:  "You already have  <i>'{ERROR_CONCEPT_2}'</i> in this group, which is querying a group of concepts that already includes <i>'{ERROR_CONCEPT_1}'</i><br><br> We've prevented you from adding it twice.",
	},
	VerdictNewGroupCoversExisting: {
		Title: "Grouped Concepts",
		Body:  "You have <i>'{ERROR_CONCEPT_2}'</i> which is a concept that is included in the grouped concept, <i>'{ERROR_CONCEPT_1}'</i> you attempted to add. <br><br>If you'd like to add the grouped concept, delete <i>'{ERROR_CONCEPT_2}'</i> from the group and try again.",
	},
	VerdictModifierCovered: {
		Title: "Modifier Nesting",
		Body:  "You attempted to add <i>'{ERROR_CONCEPT_1}'</i> which is a modifier that is included in the grouped concept <i>'{ERROR_CONCEPT_2}'</i>. <br><br>If you'd like to add the modifier, delete <i>'{ERROR_CONCEPT_2}'</i> and try again.",
	},
	VerdictExistingModifierCovered: {
		Title: "Modifier Nesting",
		Body:  "You have <i>'{ERROR_CONCEPT_2}'</i> which is a modifier that is included in the grouped concept, <i>'{ERROR_CONCEPT_1}'</i> you attempted to add. <br><br>If you'd like to add the grouped concept, delete <i>'{ERROR_CONCEPT_2}'</i> and try again (this will remove the modifier condition).",
	},
	VerdictPreviousQuery: {
		Title: "Previous Query Usage",
		Body: `<div style="text-align:center; padding-bottom:10px;font-weight:bold;">i2b2 encountered a problem when adding an object:</div>` +
			` We noticed you tried to drop a previously ran query into a group. Re-using an entire query causes queries to take significantly longer to complete.` +
			`<br><br><b>If you want to use the patients returned from a specific query:</b> Please re-execute that query separatly and save a "Patient Set" when selecting result types. After completing, the patient set returned can be used in subsequent queries.` +
			`<br><br><b>If you want to re-execute a previous query to see if a value has changed since the last time it was executed:</b> Please Drag-and-Drop the query onto the "Query Name" box.`,
	},
}

// MessageFor returns the catalog entry for a rejecting verdict.
func MessageFor(v Verdict) (Message, bool) {
	m, ok := catalog[v]
	return m, ok
}
