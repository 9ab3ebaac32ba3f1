package grid

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/ikyriazi/elaute-api/pkg/catalogue"
	"github.com/ikyriazi/elaute-api/pkg/highlight"
	"github.com/ikyriazi/elaute-api/pkg/search"
	"github.com/ikyriazi/elaute-api/pkg/textnorm"
)

// Mode is the purpose a cell value is rendered for.
type Mode string

const (
	Sort    Mode = "sort"
	Display Mode = "display"
	Filter  Mode = "filter"
	Type    Mode = "type"
)

// RenderFunc renders the raw cell value of a record for a mode. Sort
// returns a string or an int, display returns markup.
type RenderFunc func(data string, mode Mode, row *catalogue.Record) any

// Column is a column of the result grid.
type Column struct {
	Key       string `json:"key"`
	Title     string `json:"title"`
	Orderable bool   `json:"orderable"`

	Data   func(row *catalogue.Record) string `json:"-"`
	Render RenderFunc                         `json:"-"`
}

// Cell renders the column for a record.
func (c Column) Cell(r *catalogue.Record, mode Mode) any {
	data := ""
	if c.Data != nil {
		data = c.Data(r)
	}
	if c.Render == nil {
		return data
	}
	return c.Render(data, mode, r)
}

// Column keys
const (
	ControlColumn    = "control"
	ShelfmarkColumn  = "shelfmark"
	TitleColumn      = "title"
	ShortTitleColumn = "shortTitle"
	DateColumn       = "date"
	AuthorColumn     = "author"
	PublisherColumn  = "publisher"
	PrintPlaceColumn = "printPlace"
	RISMColumn       = "rism"
	VD16Column       = "vd16"
)

// columnTerms maps a column to the query fields whose values it highlights.
var columnTerms = map[string][]search.Field{
	ShelfmarkColumn:  {search.AllFields},
	TitleColumn:      {search.Title, search.AllFields},
	ShortTitleColumn: {search.AllFields},
	DateColumn:       {search.AllFields},
	AuthorColumn:     {search.Person, search.AllFields},
	PublisherColumn:  {search.Person, search.AllFields},
	PrintPlaceColumn: {search.Place, search.AllFields},
	RISMColumn:       {search.Identifier, search.AllFields},
	VD16Column:       {search.Identifier, search.AllFields},
}

// TermFor returns the highlight term of a column: the value of the last
// active clause on one of its fields.
func TermFor(column string, clauses []search.Clause) string {
	fields, ok := columnTerms[column]
	if !ok {
		return ""
	}
	return search.Term(clauses, fields...)
}

// Columns returns the grid columns. Display rendering highlights with the
// clauses returned by clauses at render time.
func Columns(clauses func() []search.Clause) []Column {
	return []Column{
		{
			Key: ControlColumn,
			Render: func(string, Mode, *catalogue.Record) any {
				return `<span class="dt-control"></span>`
			},
		},
		{
			Key:       ShelfmarkColumn,
			Title:     "Shelfmark",
			Orderable: true,
			Data:      func(r *catalogue.Record) string { return r.Shelfmark.String() },
			Render: func(data string, mode Mode, r *catalogue.Record) any {
				if mode != Display {
					return data
				}
				h := highlight.Highlight(data, TermFor(ShelfmarkColumn, clauses()))
				if r.Shelfmark != nil && r.Shelfmark.URL != "" {
					return anchor(h, r.Shelfmark.URL)
				}
				return h
			},
		},
		{
			Key:       TitleColumn,
			Title:     "Title",
			Orderable: true,
			Data:      func(r *catalogue.Record) string { return r.Title },
			Render:    textRenderer(TitleColumn, clauses, true),
		},
		{
			Key:       ShortTitleColumn,
			Title:     "Short title",
			Orderable: true,
			Data:      func(r *catalogue.Record) string { return r.ShortTitle },
			Render:    textRenderer(ShortTitleColumn, clauses, false),
		},
		{
			Key:       DateColumn,
			Title:     "Date",
			Orderable: true,
			Data:      func(r *catalogue.Record) string { return r.Date.String() },
			Render: func(data string, mode Mode, r *catalogue.Record) any {
				switch mode {
				case Sort, Type:
					year, _ := r.EarliestYear()
					return year
				case Display:
					return highlight.Highlight(data, TermFor(DateColumn, clauses()))
				}
				return data
			},
		},
		{
			Key:       AuthorColumn,
			Title:     "Author",
			Orderable: true,
			Data:      func(r *catalogue.Record) string { return r.Author.String() },
			Render: agentRenderer(search.Person, clauses, func(r *catalogue.Record) string {
				return r.Author.Normalized()
			}),
		},
		{
			Key:       PublisherColumn,
			Title:     "Publisher",
			Orderable: true,
			Data:      func(r *catalogue.Record) string { return r.Publisher.String() },
			Render: agentRenderer(search.Person, clauses, func(r *catalogue.Record) string {
				return r.Publisher.Normalized()
			}),
		},
		{
			Key:       PrintPlaceColumn,
			Title:     "Place",
			Orderable: true,
			Data:      func(r *catalogue.Record) string { return r.PrintPlace.String() },
			Render: agentRenderer(search.Place, clauses, func(r *catalogue.Record) string {
				return r.PrintPlace.Normalized()
			}),
		},
		{
			Key:       RISMColumn,
			Title:     "RISM",
			Orderable: true,
			Data:      func(r *catalogue.Record) string { return strings.Join(r.RISMLabels(), " ") },
			Render: identifierRenderer(RISMColumn, clauses, func(r *catalogue.Record) (*catalogue.Link, []catalogue.Link) {
				return r.RISM, r.OtherRISM
			}),
		},
		{
			Key:       VD16Column,
			Title:     "VD16",
			Orderable: true,
			Data:      func(r *catalogue.Record) string { return strings.Join(r.VD16Labels(), " ") },
			Render: identifierRenderer(VD16Column, clauses, func(r *catalogue.Record) (*catalogue.Link, []catalogue.Link) {
				return r.VD16, r.OtherVD16
			}),
		},
	}
}

// textRenderer highlights in display mode. For sorting, a leading "[" is
// dropped when trimBracket is set so that "[Lautenbuch]" sorts under L.
func textRenderer(column string, clauses func() []search.Clause, trimBracket bool) RenderFunc {
	return func(data string, mode Mode, _ *catalogue.Record) any {
		switch mode {
		case Sort:
			s := textnorm.StripHTML(data)
			if trimBracket {
				s = strings.TrimPrefix(strings.TrimSpace(s), "[")
			}
			return s
		case Display:
			return highlight.Highlight(data, TermFor(column, clauses()))
		}
		return data
	}
}

// agentRenderer highlights a person or place: the whole value when a list
// clause selects its canonical name, the matched text for free clauses.
func agentRenderer(field search.Field, clauses func() []search.Clause, normalized func(*catalogue.Record) string) RenderFunc {
	return func(data string, mode Mode, r *catalogue.Record) any {
		switch mode {
		case Sort:
			return strings.TrimPrefix(strings.TrimSpace(textnorm.StripHTML(data)), "[")
		case Display:
			active := search.Select(clauses(), field, search.AllFields)
			for _, c := range active {
				if c.IsList() && textnorm.Equal(normalized(r), c.Value) {
					return highlight.Whole(data)
				}
			}
			for _, c := range active {
				if !c.IsList() && textnorm.Contains(data, c.Value) {
					return highlight.Highlight(data, c.Value)
				}
			}
			return data
		}
		return data
	}
}

func identifierRenderer(column string, clauses func() []search.Clause, links func(*catalogue.Record) (*catalogue.Link, []catalogue.Link)) RenderFunc {
	return func(data string, mode Mode, r *catalogue.Record) any {
		if mode != Display {
			return data
		}
		primary, others := links(r)
		all := make([]catalogue.Link, 0, len(others)+1)
		if primary != nil {
			all = append(all, *primary)
		}
		all = append(all, others...)

		term := TermFor(column, clauses())
		parts := make([]string, 0, len(all))
		for _, l := range all {
			if l.Label == "" {
				continue
			}
			h := highlight.Highlight(l.Label, term)
			if l.URL != "" {
				h = anchor(h, l.URL)
			}
			parts = append(parts, h)
		}
		return strings.Join(parts, "<br/>")
	}
}

func anchor(inner, url string) string {
	return fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener noreferrer">%s</a>`, html.EscapeString(url), inner)
}
