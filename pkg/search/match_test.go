package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ikyriazi/elaute-api/pkg/catalogue"
	"github.com/ikyriazi/elaute-api/pkg/textnorm"
)

func record() *catalogue.Record {
	return &catalogue.Record{
		ID:               "https://e-laute.info/data/sources/1",
		Title:            "Ein <i>Lautenbuch</i>",
		AlternativeTitle: "Liederbuch der Minne",
		ShortTitle:       "Gerle 1533",
		Author:           &catalogue.Agent{Label: "Hans Gerle", NormalizedName: "Gerle, Hans"},
		Publisher:        &catalogue.Agent{Label: "Hieronymus Formschneider", NormalizedName: "Formschneider, Hieronymus"},
		PrintPlace:       &catalogue.Agent{Label: "Muenchen-Upper", NormalizedName: "muenchen-upper"},
		RISM:             &catalogue.Link{Label: "1533/2"},
		OtherVD16:        catalogue.List[catalogue.Link]{{Label: "G 1644"}},
		Brown:            "1533_1",
		Provenance: catalogue.List[catalogue.Item]{
			{Label: "Augsburg", NormalizedName: "Augsburg", Comment: "Bought at the Fugger sale"},
		},
		Codicology: catalogue.List[catalogue.Item]{
			{Label: "Binding", Description: "Pigskin over boards"},
		},
		ReferencedBy: catalogue.List[catalogue.Reference]{
			{ReferenceSource: &catalogue.ReferenceSource{BookShort: "Brown 1965", ReferencebookType: catalogue.CatalogueBook}, ReferencePages: "p. 45"},
		},
		RelatedResource: catalogue.List[catalogue.Link]{{Label: "Digitised copy", URL: "https://example.org"}},
	}
}

func TestMatchesTitle(t *testing.T) {
	r := record()
	for _, v := range []string{"lautenbuch", "LAUTENBUCH", "liederbuch der", "minne", "ein lautenbuch"} {
		assert.True(t, Matches(r, Clause{Field: Title, Value: v}), v)
	}
	for _, v := range []string{"gerle", "1533", "tabulatur"} {
		assert.False(t, Matches(r, Clause{Field: Title, Value: v}), v)
	}
}

func TestMatchesTitleIffSubstring(t *testing.T) {
	titles := []string{"Lautenbuch", "Ein Liederbuch", "Tabulaturbuch auff die Lauten", "Das Lautenbüchlein", ""}
	terms := []string{"buch", "lauten", "ein", "buechlein", "Lauten", "tabulatur auff", "x"}
	for _, title := range titles {
		for _, alt := range titles {
			r := &catalogue.Record{Title: title, AlternativeTitle: alt}
			for _, v := range terms {
				expected := textnorm.Contains(title, v) || textnorm.Contains(alt, v)
				assert.Equal(t, expected, Matches(r, Clause{Field: Title, Value: v, Mode: Free}), "%q/%q %q", title, alt, v)
			}
		}
	}
}

func TestMatchesPersonModes(t *testing.T) {
	r := record()

	assert.True(t, Matches(r, Clause{Field: Person, Value: "gerle"}))
	assert.True(t, Matches(r, Clause{Field: Person, Value: "formschneider"}))
	assert.False(t, Matches(r, Clause{Field: Person, Value: "gerle", Mode: List}))
	assert.True(t, Matches(r, Clause{Field: Person, Value: "Gerle, Hans", Mode: List}))
	assert.True(t, Matches(r, Clause{Field: Person, Value: "gerle, hans", Mode: List}))
}

func TestMatchesPlaceModes(t *testing.T) {
	r := record()

	assert.True(t, Matches(r, Clause{Field: Place, Value: "munchen", Mode: Free}))
	assert.False(t, Matches(r, Clause{Field: Place, Value: "munchen", Mode: List}))
	assert.True(t, Matches(r, Clause{Field: Place, Value: "muenchen-upper", Mode: List}))
	assert.True(t, Matches(r, Clause{Field: Place, Value: "Augsburg", Mode: List}))
	assert.True(t, Matches(r, Clause{Field: Place, Value: "augs"}))
	assert.False(t, Matches(r, Clause{Field: Place, Value: "augs", Mode: List}))
}

func TestMatchesOtherFields(t *testing.T) {
	r := record()

	tests := []struct {
		clause   Clause
		expected bool
	}{
		{Clause{Field: Identifier, Value: "1533/2"}, true},
		{Clause{Field: Identifier, Value: "g 1644"}, true},
		{Clause{Field: Identifier, Value: "1533_1"}, true},
		{Clause{Field: Identifier, Value: "gerle"}, false},
		{Clause{Field: Description, Value: "fugger"}, true},
		{Clause{Field: Description, Value: "pigskin"}, true},
		{Clause{Field: Description, Value: "augsburg"}, false},
		{Clause{Field: Bibliography, Value: "brown 1965"}, true},
		{Clause{Field: Bibliography, Value: "p. 45"}, true},
		{Clause{Field: Bibliography, Value: "digitised"}, true},
		{Clause{Field: Bibliography, Value: "pigskin"}, false},
		{Clause{Field: AllFields, Value: "gerle 1533"}, true},
		{Clause{Field: AllFields, Value: "binding"}, true},
		{Clause{Field: AllFields, Value: "muenchen"}, true},
		{Clause{Field: AllFields, Value: "brown 1965 p. 45"}, true},
		{Clause{Field: AllFields, Value: "nowhere"}, false},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, Matches(r, test.clause), "%s=%s", test.clause.Field, test.clause.Value)
	}
}

func TestAllFieldsIgnoresNotes(t *testing.T) {
	r := record()
	r.Description = "Once in the Fugger library"
	r.Provenance[0].Description = "Fugger library"

	for _, v := range []string{"fugger", "pigskin", "library"} {
		assert.False(t, Matches(r, Clause{Field: AllFields, Value: v}), v)
		assert.True(t, Matches(r, Clause{Field: Description, Value: v}), v)
	}

	h := NestedHits(r, []Clause{{Field: Description, Value: "fugger"}})
	assert.True(t, h.Notes)
	assert.True(t, h.NestedNotes)
}

func TestMatchesTitleKeepsLiteralVowels(t *testing.T) {
	r := &catalogue.Record{Title: "Quelle der Lieder", AlternativeTitle: "Samuel Bauer"}
	for _, v := range []string{"elle", "el", "er", "quelle", "qulle", "bäuer"} {
		assert.True(t, Matches(r, Clause{Field: Title, Value: v}), v)
	}
	assert.False(t, Matches(r, Clause{Field: Title, Value: "uller"}))
}

func TestMatchesMissingFields(t *testing.T) {
	r := &catalogue.Record{ID: "x/1"}
	for _, f := range Fields {
		assert.False(t, Matches(r, Clause{Field: f, Value: "a"}), f)
	}
	assert.False(t, Matches(r, Clause{Field: Person, Value: "a", Mode: List}))
}

func TestMatchesAll(t *testing.T) {
	r := record()
	assert.True(t, MatchesAll(r, nil))
	assert.True(t, MatchesAll(r, []Clause{{Field: Title, Value: "lauten"}, {Field: Person, Value: "gerle"}}))
	assert.False(t, MatchesAll(r, []Clause{{Field: Title, Value: "lauten"}, {Field: Person, Value: "judenkünig"}}))
}

func TestLiederbuchScenario(t *testing.T) {
	records := []*catalogue.Record{
		{ID: "s/1", Title: "Liederbuch"},
		{ID: "s/2", Title: "Lautenbuch", AlternativeTitle: "Liederbuch der Minne"},
		{ID: "s/3", Title: "Tabulatur"},
	}
	clauses := []Clause{{Field: Title, Value: "liederbuch", Mode: Free}}

	var keys []string
	for _, r := range records {
		if MatchesAll(r, clauses) {
			keys = append(keys, r.Key())
		}
	}
	assert.Equal(t, []string{"1", "2"}, keys)

	assert.False(t, NestedHits(records[0], clauses).Any())
	hits := NestedHits(records[1], clauses)
	assert.True(t, hits.AltTitle)
	assert.True(t, hits.Any())
}

func TestNestedHits(t *testing.T) {
	r := record()

	h := NestedHits(r, []Clause{{Field: AllFields, Value: "binding"}})
	assert.True(t, h.NestedLabels)
	assert.True(t, h.Contextual())
	assert.False(t, h.Identifiers())

	h = NestedHits(r, []Clause{{Field: Identifier, Value: "1533_1"}})
	assert.True(t, h.Brown)
	assert.True(t, h.Identifiers())

	h = NestedHits(r, []Clause{{Field: Place, Value: "Augsburg", Mode: List}})
	assert.True(t, h.Provenance)

	h = NestedHits(r, []Clause{{Field: Description, Value: "fugger"}})
	assert.True(t, h.NestedNotes)
	assert.False(t, h.Notes)

	h = NestedHits(r, []Clause{{Field: Bibliography, Value: "digitised"}})
	assert.True(t, h.Bibliography)

	h = NestedHits(r, []Clause{{Field: Title, Value: "lautenbuch"}})
	assert.False(t, h.Any())
}

func TestTerm(t *testing.T) {
	clauses := []Clause{
		{Field: AllFields, Value: "a"},
		{Field: Title, Value: "b"},
		{Field: Person, Value: "c"},
	}
	assert.Equal(t, "b", Term(clauses, Title, AllFields))
	assert.Equal(t, "a", Term(clauses, AllFields))
	assert.Equal(t, "", Term(clauses, Bibliography))
	assert.Len(t, PlaceClauses(clauses), 1)
	assert.Len(t, Select(clauses, Person, Title), 2)

	assert.Equal(t, Signature(clauses), Signature(append([]Clause(nil), clauses...)))
	assert.NotEqual(t, Signature(clauses), Signature(clauses[:2]))
}

func TestParseField(t *testing.T) {
	f, err := ParseField("desc")
	assert.NoError(t, err)
	assert.Equal(t, Description, f)

	f, err = ParseField("rism / vd16 / brown id")
	assert.NoError(t, err)
	assert.Equal(t, Identifier, f)

	_, err = ParseField("shelfmark")
	assert.ErrorIs(t, err, ErrUnknownField)
}
