package search

import (
	"strings"

	"github.com/ikyriazi/elaute-api/pkg/catalogue"
	"github.com/ikyriazi/elaute-api/pkg/textnorm"
)

// Matches reports whether r satisfies c.
func Matches(r *catalogue.Record, c Clause) bool {
	v := c.Value
	if strings.TrimSpace(v) == "" {
		return true
	}

	switch c.Field {
	case AllFields:
		return textnorm.ContainsAny(v, allFieldsText(r)...)
	case Title:
		return textnorm.ContainsAny(v, r.Title, r.AlternativeTitle)
	case Person:
		if c.IsList() {
			return textnorm.Equal(r.Author.Normalized(), v) || textnorm.Equal(r.Publisher.Normalized(), v)
		}
		return textnorm.ContainsAny(v, r.Author.String(), r.Publisher.String())
	case Place:
		if c.IsList() {
			if textnorm.Equal(r.PrintPlace.Normalized(), v) {
				return true
			}
		} else if textnorm.Contains(r.PrintPlace.String(), v) {
			return true
		}
		for _, p := range r.Provenance {
			if PlaceItemMatches(p, c) {
				return true
			}
		}
		return false
	case Identifier:
		return textnorm.ContainsAny(v, identifierText(r)...)
	case Description:
		if textnorm.ContainsAny(v, r.Description, r.Comment) {
			return true
		}
		return anyNote(r, v)
	case Bibliography:
		if textnorm.Contains(r.Bibliography, v) {
			return true
		}
		for _, ref := range r.ReferencedBy {
			if BibEntryMatches(ref, v) {
				return true
			}
		}
		for _, l := range r.RelatedResource {
			if ResourceMatches(l, v) {
				return true
			}
		}
		return false
	}
	return false
}

// MatchesAll reports whether r satisfies every clause.
func MatchesAll(r *catalogue.Record, clauses []Clause) bool {
	for _, c := range clauses {
		if !Matches(r, c) {
			return false
		}
	}
	return true
}

// PlaceItemMatches reports whether a provenance entry satisfies a place
// clause: canonical equality in list mode, folded substring otherwise.
func PlaceItemMatches(item catalogue.Item, c Clause) bool {
	if c.IsList() {
		return textnorm.Equal(item.NormalizedName, c.Value)
	}
	return textnorm.Contains(item.Label, c.Value)
}

// LabelMatches reports whether a nested label contains v.
func LabelMatches(label, v string) bool {
	return textnorm.Contains(label, v)
}

// NoteMatches reports whether the description or comment of item contains v.
func NoteMatches(item catalogue.Item, v string) bool {
	return textnorm.ContainsAny(v, item.Description, item.Comment)
}

// BibEntryMatches reports whether a bibliography entry contains v.
func BibEntryMatches(ref catalogue.Reference, v string) bool {
	return textnorm.ContainsAny(v, ref.BookShort(), ref.ReferencePages, ref.Label)
}

// ResourceMatches reports whether a related resource contains v.
func ResourceMatches(l catalogue.Link, v string) bool {
	return textnorm.Contains(l.Label, v)
}

func anyNote(r *catalogue.Record, v string) bool {
	for _, items := range [][]catalogue.Item{r.Provenance, r.Function, r.Codicology} {
		for _, item := range items {
			if NoteMatches(item, v) {
				return true
			}
		}
	}
	return false
}

func allFieldsText(r *catalogue.Record) []string {
	values := []string{
		r.Title,
		r.ShortTitle,
		r.AlternativeTitle,
		r.Date.String(),
		r.Author.String(),
		r.Publisher.String(),
		r.PrintPlace.String(),
		r.Shelfmark.String(),
		r.Brown.String(),
		r.Bibliography,
	}
	values = append(values, r.RISMLabels()...)
	values = append(values, r.VD16Labels()...)
	for _, items := range [][]catalogue.Item{r.Provenance, r.Function, r.Codicology} {
		for _, item := range items {
			values = append(values, item.Label)
		}
	}
	for _, ref := range r.ReferencedBy {
		values = append(values, ref.Text())
	}
	for _, l := range r.RelatedResource {
		values = append(values, l.Label)
	}
	return values
}

func identifierText(r *catalogue.Record) []string {
	values := append(r.RISMLabels(), r.VD16Labels()...)
	return append(values, r.Brown.String())
}
