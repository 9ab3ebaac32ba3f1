package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikyriazi/elaute-api/pkg/catalogue"
	"github.com/ikyriazi/elaute-api/pkg/facet"
	"github.com/ikyriazi/elaute-api/pkg/search"
)

func date(y string) *catalogue.Date {
	return &catalogue.Date{Label: y, Timespan: &catalogue.Timespan{EarliestDate: &catalogue.DateValue{Value: catalogue.Text(y)}}}
}

func records() []*catalogue.Record {
	return []*catalogue.Record{
		{
			ID:        "s/1",
			Title:     "[Lautenbuch] des Hans Gerle",
			Date:      date("1533"),
			Shelfmark: &catalogue.Shelfmark{Label: "SA.76.F.24", URL: "https://example.org/sa"},
			Author:    &catalogue.Agent{Label: "Hans Gerle", NormalizedName: "Gerle, Hans"},
			RISM:      &catalogue.Link{Label: "1533/2", URL: "https://rism.online/1"},
			OtherRISM: catalogue.List[catalogue.Link]{{Label: "1533/3"}},
		},
		{
			ID:           "s/2",
			Title:        "Ain schone kunstliche underweisung",
			Date:         date("1523"),
			Shelfmark:    &catalogue.Shelfmark{Label: "Mus.pr. 10"},
			PrintPlace:   &catalogue.Agent{Label: "Augsburg", NormalizedName: "Augsburg"},
			PhysicalType: "print",
		},
		{
			ID:           "s/3",
			Title:        "Zwölf Stücke",
			Shelfmark:    &catalogue.Shelfmark{Label: "Mus.ms. 2"},
			PhysicalType: "manuscript",
		},
	}
}

func table(clauses []search.Clause) *Table {
	return NewTable(TableID, records(), Columns(func() []search.Clause { return clauses }), nil)
}

func keys(p Page) []string {
	var out []string
	for _, r := range p.Rows {
		out = append(out, r.Key)
	}
	return out
}

func TestDrawDefaultOrder(t *testing.T) {
	p := table(nil).Draw(Request{Order: DefaultOrder})
	assert.Equal(t, 3, p.RecordsTotal)
	assert.Equal(t, 3, p.RecordsDisplay)
	assert.Equal(t, DefaultLength, p.Length)
	assert.Equal(t, []string{"3", "2", "1"}, keys(p), "Mus.ms. 2 < Mus.pr. 10 < SA.76.F.24")
}

func TestDrawSort(t *testing.T) {
	tbl := table(nil)

	p := tbl.Draw(Request{Order: []Order{{Column: 2, Dir: Asc}}})
	assert.Equal(t, []string{"2", "1", "3"}, keys(p), "leading bracket is ignored when sorting titles")

	p = tbl.Draw(Request{Order: []Order{{Column: 4, Dir: Desc}}})
	assert.Equal(t, []string{"1", "2", "3"}, keys(p), "years sort numerically, undated last when descending")

	p = tbl.Draw(Request{Order: []Order{{Column: 0, Dir: Asc}}})
	assert.Equal(t, []string{"1", "2", "3"}, keys(p), "control column is not orderable")
}

func TestDrawPaging(t *testing.T) {
	tbl := table(nil)

	p := tbl.Draw(Request{Start: 2, Length: 2, Order: DefaultOrder})
	assert.Equal(t, []string{"1"}, keys(p))

	p = tbl.Draw(Request{Start: 10, Length: 2, Order: DefaultOrder})
	assert.Equal(t, 2, p.Start, "start past the end moves to the last page")

	p = tbl.Draw(Request{Length: All})
	assert.Len(t, p.Rows, 3)
}

func TestDrawFilter(t *testing.T) {
	clauses := []search.Clause{{Field: search.AllFields, Value: "augsburg"}}
	tbl := table(clauses)
	tbl.Filter(Predicate(clauses, facet.DefaultState()))

	p := tbl.Draw(Request{Order: DefaultOrder})
	assert.Equal(t, 3, p.RecordsTotal)
	assert.Equal(t, []string{"2"}, keys(p))
	assert.Equal(t, `<mark class="search-highlight">Augsburg</mark>`, p.Rows[0].Cells[7])
	assert.Same(t, p.Rows[0].Record, p.Records()[0])
}

func TestFilterIgnoresOtherTables(t *testing.T) {
	ext := &Ext{}
	other := NewTable("otherTable", records(), nil, ext)
	other.Filter(func(*catalogue.Record) bool { return false })

	tbl := NewTable(TableID, records(), Columns(func() []search.Clause { return nil }), ext)
	assert.Len(t, tbl.Draw(Request{}).Rows, 3)
	assert.Empty(t, other.Draw(Request{}).Rows)
}

func TestFacetPredicate(t *testing.T) {
	s := facet.DefaultState()
	require.NoError(t, s.SetPhysical("Manuscript"))
	tbl := table(nil)
	tbl.Filter(Predicate(nil, s))
	assert.Equal(t, []string{"3"}, keys(tbl.Draw(Request{})))
}

func TestRenderDisplay(t *testing.T) {
	clauses := []search.Clause{
		{Field: search.Title, Value: "lautenbuch"},
		{Field: search.Person, Value: "Gerle, Hans", Mode: search.List},
		{Field: search.Identifier, Value: "1533"},
	}
	cols := Columns(func() []search.Clause { return clauses })
	r := records()[0]

	assert.Equal(t, `<span class="dt-control"></span>`, cols[0].Cell(r, Display))
	assert.Equal(t, `<a href="https://example.org/sa" target="_blank" rel="noopener noreferrer">SA.76.F.24</a>`, cols[1].Cell(r, Display))
	assert.Equal(t, `[<mark class="search-highlight">Lautenbuch</mark>] des Hans Gerle`, cols[2].Cell(r, Display))
	assert.Equal(t, "Lautenbuch] des Hans Gerle", cols[2].Cell(r, Sort))
	assert.Equal(t, 1533, cols[4].Cell(r, Sort))
	assert.Equal(t, `<mark class="search-highlight">Hans Gerle</mark>`, cols[5].Cell(r, Display))
	assert.Equal(t,
		`<a href="https://rism.online/1" target="_blank" rel="noopener noreferrer"><mark class="search-highlight">1533</mark>/2</a><br/><mark class="search-highlight">1533</mark>/3`,
		cols[8].Cell(r, Display))
	assert.Equal(t, "1533/2 1533/3", cols[8].Cell(r, Sort))
}

func TestRenderPersonFree(t *testing.T) {
	clauses := []search.Clause{{Field: search.Person, Value: "gerle"}}
	cols := Columns(func() []search.Clause { return clauses })
	assert.Equal(t, `Hans <mark class="search-highlight">Gerle</mark>`, cols[5].Cell(records()[0], Display))

	clauses = []search.Clause{{Field: search.Person, Value: "gerle", Mode: search.List}}
	assert.Equal(t, "Hans Gerle", cols[5].Cell(records()[0], Display), "list mode needs the canonical name")
}

func TestTermFor(t *testing.T) {
	clauses := []search.Clause{
		{Field: search.AllFields, Value: "a"},
		{Field: search.Place, Value: "b"},
	}
	assert.Equal(t, "b", TermFor(PrintPlaceColumn, clauses))
	assert.Equal(t, "a", TermFor(TitleColumn, clauses))
	assert.Equal(t, "a", TermFor(ShelfmarkColumn, clauses))
	assert.Equal(t, "", TermFor(ControlColumn, clauses))
}
