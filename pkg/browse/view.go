package browse

import (
	"fmt"
	"strings"

	"github.com/ikyriazi/elaute-api/pkg/catalogue"
	"github.com/ikyriazi/elaute-api/pkg/detail"
	"github.com/ikyriazi/elaute-api/pkg/facet"
	"github.com/ikyriazi/elaute-api/pkg/grid"
	"github.com/ikyriazi/elaute-api/pkg/search"
	"github.com/ikyriazi/elaute-api/pkg/session"
	"github.com/ikyriazi/elaute-api/pkg/view"
)

// Button labels
const (
	ExpandAllLabel   = "Expand All"
	CollapseAllLabel = "Collapse All"
	OpenPanelsLabel  = "Open Descriptions/Comments"
	ClosePanelsLabel = "Close Descriptions/Comments"
)

// View is what a client renders after an event.
type View struct {
	Session        string            `json:"session,omitempty"`
	Generation     uint64            `json:"generation"`
	RecordsTotal   int               `json:"recordsTotal"`
	RecordsDisplay int               `json:"recordsDisplay"`
	Start          int               `json:"start"`
	Length         int               `json:"length"`
	Order          []grid.Order      `json:"order"`
	Columns        []grid.Column     `json:"columns"`
	Rows           []PageRow         `json:"rows"`
	Query          []search.QueryRow `json:"query"`
	Facets         facet.State       `json:"facets"`
	Summary        Summary           `json:"summary"`
	ExpandButton   string            `json:"expandButton"`
	PanelsButton   string            `json:"panelsButton,omitempty" doc:"Empty when no description or comment is shown"`
	QueryString    string            `json:"queryString"`
}

// PageRow is a drawn record row.
type PageRow struct {
	Key        string         `json:"key"`
	Cells      []string       `json:"cells"`
	State      view.RowState  `json:"state"`
	Detail     *detail.Detail `json:"detail,omitempty"`
	DetailHTML string         `json:"detailHtml,omitempty"`
}

// Summary is the content of the summary pill.
type Summary struct {
	Text    string               `json:"text"`
	Clauses []search.SummaryItem `json:"clauses"`
	Filters []facet.Pill         `json:"filters"`
}

// Options are the values offered by the query builder and the facets.
type Options struct {
	Fields          []search.Field             `json:"fields"`
	Persons         []string                   `json:"persons"`
	Places          []string                   `json:"places"`
	Functions       []string                   `json:"functions"`
	ShelfmarkGroups []catalogue.ShelfmarkGroup `json:"shelfmarkGroups"`
	PhysicalTypes   []facet.PhysicalType       `json:"physicalTypes"`
	Fundamenta      []facet.FundamentaChoice   `json:"fundamenta"`
	MinYear         int                        `json:"minYear"`
	MaxYear         int                        `json:"maxYear"`
	Lengths         []int                      `json:"lengths"`
	MaxRows         int                        `json:"maxRows"`
}

// SummaryText renders the pill text, e.g. "2 search fields · 1 filter".
func SummaryText(fields, filters int) string {
	var parts []string
	if fields > 0 {
		parts = append(parts, plural(fields, "search field"))
	}
	if filters > 0 {
		parts = append(parts, plural(filters, "filter"))
	}
	return strings.Join(parts, " · ")
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// project renders the session after a draw.
func project(sess *session.Session, table *grid.Table, page grid.Page, clauses []search.Clause) (*View, error) {
	v := &View{
		Session:        sess.ID,
		Generation:     sess.View.Generation,
		RecordsTotal:   page.RecordsTotal,
		RecordsDisplay: page.RecordsDisplay,
		Start:          page.Start,
		Length:         page.Length,
		Order:          sess.Order,
		Columns:        table.Columns,
		Rows:           make([]PageRow, 0, len(page.Rows)),
		Query:          sess.Query.Rows,
		Facets:         sess.Facets,
	}

	allExpanded := len(page.Rows) > 0
	panels, closedPanels := 0, 0
	for _, pr := range page.Rows {
		row := PageRow{Key: pr.Key, Cells: pr.Cells, State: sess.View.Row(pr.Key).State()}
		if sess.View.IsExpanded(pr.Key) {
			d := detail.Format(pr.Record, clauses, sess.View.Options(pr.Key))
			html, err := d.Render()
			if err != nil {
				return nil, fmt.Errorf("cannot render detail of %s: %w", pr.Key, err)
			}
			row.Detail, row.DetailHTML = d, html
			if !d.AllExpanded() {
				allExpanded = false
			}
			for _, p := range d.Panels() {
				panels++
				if !p.Open {
					closedPanels++
				}
			}
		} else {
			allExpanded = false
		}
		v.Rows = append(v.Rows, row)
	}

	v.ExpandButton = ExpandAllLabel
	if allExpanded {
		v.ExpandButton = CollapseAllLabel
	}
	switch {
	case panels == 0:
	case closedPanels > 0:
		v.PanelsButton = OpenPanelsLabel
	default:
		v.PanelsButton = ClosePanelsLabel
	}

	v.Summary = Summary{
		Clauses: sess.Query.Summary(),
		Filters: sess.Facets.Active(),
	}
	v.Summary.Text = SummaryText(len(v.Summary.Clauses), len(v.Summary.Filters))

	qs, err := facet.EncodeQuery(sess.Query, sess.Facets)
	if err != nil {
		return nil, fmt.Errorf("cannot encode query: %w", err)
	}
	v.QueryString = qs
	return v, nil
}
