package search

import (
	"github.com/ikyriazi/elaute-api/pkg/catalogue"
)

// Hits tells which parts of a record's detail view match the active
// clauses. It drives auto-expansion of rows and subgroups.
type Hits struct {
	AltTitle     bool `json:"altTitle,omitempty"`
	Notes        bool `json:"notes,omitempty"`
	NestedNotes  bool `json:"nestedNotes,omitempty"`
	Brown        bool `json:"brown,omitempty"`
	Shelfmarks   bool `json:"shelfmarks,omitempty"`
	Bibliography bool `json:"bibliography,omitempty"`
	Provenance   bool `json:"provenance,omitempty"`
	NestedLabels bool `json:"nestedLabels,omitempty"`
}

// Any reports whether the detail view of the record has a match.
func (h Hits) Any() bool {
	return h.AltTitle || h.Notes || h.NestedNotes || h.Brown || h.Shelfmarks ||
		h.Bibliography || h.Provenance || h.NestedLabels
}

// Contextual reports whether the contextual metadata subgroup has a match.
func (h Hits) Contextual() bool {
	return h.NestedNotes || h.Provenance || h.NestedLabels
}

// Identifiers reports whether the further identifiers subgroup has a match.
func (h Hits) Identifiers() bool {
	return h.Brown || h.Shelfmarks
}

// NestedHits evaluates the clauses against the parts of r shown in its
// detail view.
func NestedHits(r *catalogue.Record, clauses []Clause) Hits {
	var h Hits
	for _, c := range clauses {
		if c.Value == "" {
			continue
		}
		v := c.Value
		all := c.Field == AllFields

		if all || c.Field == Title {
			h.AltTitle = h.AltTitle || LabelMatches(r.AlternativeTitle, v)
		}
		if all || c.Field == Identifier {
			h.Brown = h.Brown || LabelMatches(r.Brown.String(), v)
		}
		if all {
			for _, s := range r.OtherShelfmark {
				h.Shelfmarks = h.Shelfmarks || LabelMatches(s.Label, v)
			}
			for _, items := range [][]catalogue.Item{r.Provenance, r.Function, r.Codicology} {
				for _, item := range items {
					h.NestedLabels = h.NestedLabels || LabelMatches(item.Label, v)
				}
			}
		}
		if all || c.Field == Description {
			h.Notes = h.Notes || LabelMatches(r.Description, v) || LabelMatches(r.Comment, v)
			h.NestedNotes = h.NestedNotes || anyNote(r, v)
		}
		if all || c.Field == Bibliography {
			for _, ref := range r.ReferencedBy {
				h.Bibliography = h.Bibliography || BibEntryMatches(ref, v)
			}
			for _, l := range r.RelatedResource {
				h.Bibliography = h.Bibliography || ResourceMatches(l, v)
			}
		}
		if all || c.Field == Place {
			for _, p := range r.Provenance {
				h.Provenance = h.Provenance || PlaceItemMatches(p, c)
			}
		}
	}
	return h
}
