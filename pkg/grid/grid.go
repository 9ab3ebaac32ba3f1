// Package grid is the paged, sortable result table. Rows are filtered by
// the search functions registered on an Ext, sorted by the sort rendering
// of the ordered columns and rendered for display one page at a time.
package grid

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ikyriazi/elaute-api/pkg/catalogue"
	"github.com/ikyriazi/elaute-api/pkg/facet"
	"github.com/ikyriazi/elaute-api/pkg/search"
)

// TableID identifies the catalogue table among the tables sharing an Ext.
const TableID = "sourcesTable"

// DefaultLength is the default page length; All shows every row.
const (
	DefaultLength = 25
	All           = -1
)

// Lengths are the offered page lengths.
var Lengths = []int{10, 25, 50, 100, All}

// DefaultOrder sorts by shelfmark.
var DefaultOrder = []Order{{Column: 1, Dir: Asc}}

const (
	Asc  = "asc"
	Desc = "desc"
)

// Settings describes the table a search function is called for.
type Settings struct {
	TableID string
}

// SearchFunc decides whether the row at index is shown. rendered holds the
// filter rendering of each column.
type SearchFunc func(settings Settings, rendered []string, index int) bool

// Ext is the registry of search functions shared by tables.
type Ext struct {
	search []SearchFunc
}

// Push registers a search function.
func (e *Ext) Push(fn SearchFunc) {
	e.search = append(e.search, fn)
}

// Search returns the registered search functions.
func (e *Ext) Search() []SearchFunc {
	return e.search
}

// Order sorts by a column.
type Order struct {
	Column int    `json:"column"`
	Dir    string `json:"dir"`
}

// Request asks for a page of the table.
type Request struct {
	Start  int
	Length int
	Order  []Order
}

// Row is a drawn row: the record and its display cells.
type Row struct {
	Key    string            `json:"key"`
	Cells  []string          `json:"cells"`
	Record *catalogue.Record `json:"-"`
}

// Page is the result of a draw.
type Page struct {
	RecordsTotal   int   `json:"recordsTotal"`
	RecordsDisplay int   `json:"recordsDisplay"`
	Start          int   `json:"start"`
	Length         int   `json:"length"`
	Rows           []Row `json:"rows"`
}

// Records returns the records of the page.
func (p Page) Records() []*catalogue.Record {
	out := make([]*catalogue.Record, len(p.Rows))
	for i, r := range p.Rows {
		out[i] = r.Record
	}
	return out
}

// Table is a grid over a fixed list of records.
type Table struct {
	ID      string
	Columns []Column
	Ext     *Ext
	records []*catalogue.Record
}

// NewTable creates a table. A nil ext gets a private registry.
func NewTable(id string, records []*catalogue.Record, columns []Column, ext *Ext) *Table {
	if ext == nil {
		ext = &Ext{}
	}
	return &Table{ID: id, Columns: columns, Ext: ext, records: records}
}

// Filter registers pred as a search function of this table. Other tables
// sharing the registry are not affected.
func (t *Table) Filter(pred func(*catalogue.Record) bool) {
	id := t.ID
	records := t.records
	t.Ext.Push(func(settings Settings, _ []string, index int) bool {
		if settings.TableID != id {
			return true
		}
		if index < 0 || index >= len(records) {
			return false
		}
		return pred(records[index])
	})
}

// Predicate combines the query clauses and the facets: a record is shown
// when it matches every clause and passes every facet.
func Predicate(clauses []search.Clause, facets facet.State) func(*catalogue.Record) bool {
	return func(r *catalogue.Record) bool {
		return search.MatchesAll(r, clauses) && facets.Matches(r)
	}
}

// Draw filters, sorts and pages the table.
func (t *Table) Draw(req Request) Page {
	settings := Settings{TableID: t.ID}

	var indexes []int
	for i, r := range t.records {
		rendered := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			rendered[j] = fmt.Sprint(c.Cell(r, Filter))
		}
		keep := true
		for _, fn := range t.Ext.Search() {
			if !fn(settings, rendered, i) {
				keep = false
				break
			}
		}
		if keep {
			indexes = append(indexes, i)
		}
	}

	t.sort(indexes, req.Order)

	page := Page{
		RecordsTotal:   len(t.records),
		RecordsDisplay: len(indexes),
		Start:          max(req.Start, 0),
		Length:         req.Length,
	}
	if page.Length == 0 {
		page.Length = DefaultLength
	}
	if page.Start >= len(indexes) {
		page.Start = 0
		if page.Length > 0 && len(indexes) > 0 {
			page.Start = (len(indexes) - 1) / page.Length * page.Length
		}
	}
	end := len(indexes)
	if page.Length > 0 {
		end = min(page.Start+page.Length, len(indexes))
	}

	page.Rows = make([]Row, 0, end-page.Start)
	for _, i := range indexes[page.Start:end] {
		r := t.records[i]
		cells := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			cells[j] = fmt.Sprint(c.Cell(r, Display))
		}
		page.Rows = append(page.Rows, Row{Key: r.Key(), Cells: cells, Record: r})
	}
	return page
}

func (t *Table) sort(indexes []int, order []Order) {
	type key struct {
		col  Column
		desc bool
	}
	var keys []key
	for _, o := range order {
		if o.Column < 0 || o.Column >= len(t.Columns) || !t.Columns[o.Column].Orderable {
			continue
		}
		keys = append(keys, key{col: t.Columns[o.Column], desc: strings.EqualFold(o.Dir, Desc)})
	}
	if len(keys) == 0 {
		return
	}

	values := make(map[int][]any, len(indexes))
	for _, i := range indexes {
		v := make([]any, len(keys))
		for k, key := range keys {
			v[k] = key.col.Cell(t.records[i], Sort)
		}
		values[i] = v
	}

	col := collate.New(language.German, collate.IgnoreCase, collate.Numeric)
	slices.SortStableFunc(indexes, func(a, b int) int {
		for k, key := range keys {
			c := compare(col, values[a][k], values[b][k])
			if key.desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return cmp.Compare(a, b)
	})
}

// compare orders ints numerically and everything else as collated text.
// Empty values sort first.
func compare(col *collate.Collator, a, b any) int {
	if x, ok := a.(int); ok {
		if y, ok := b.(int); ok {
			return cmp.Compare(x, y)
		}
	}
	return col.CompareString(fmt.Sprint(a), fmt.Sprint(b))
}
