package browse

import (
	"fmt"
	"slices"

	"github.com/ikyriazi/elaute-api/pkg/catalogue"
	"github.com/ikyriazi/elaute-api/pkg/detail"
	"github.com/ikyriazi/elaute-api/pkg/facet"
	"github.com/ikyriazi/elaute-api/pkg/grid"
	"github.com/ikyriazi/elaute-api/pkg/search"
	"github.com/ikyriazi/elaute-api/pkg/session"
	"github.com/ikyriazi/elaute-api/pkg/view"
)

// EventType names a user interaction.
type EventType string

const (
	// Query builder
	AddClause    EventType = "addClause"
	RemoveClause EventType = "removeClause"
	SetField     EventType = "setField"
	SetValue     EventType = "setValue"
	SetMode      EventType = "setMode"
	ClearClause  EventType = "clearClause"
	ResetQuery   EventType = "resetQuery"

	// Facets
	SetDate                EventType = "setDate"
	SetPhysical            EventType = "setPhysical"
	SetFundamenta          EventType = "setFundamenta"
	ToggleShelfmark        EventType = "toggleShelfmark"
	SetShelfmarkCombinator EventType = "setShelfmarkCombinator"
	ToggleFunction         EventType = "toggleFunction"
	SetFunctionCombinator  EventType = "setFunctionCombinator"
	ResetFacet             EventType = "resetFacet"
	ResetFacets            EventType = "resetFacets"
	ClearAll               EventType = "clearAll"

	// Paging and ordering
	SetPage   EventType = "setPage"
	SetLength EventType = "setLength"
	SetOrder  EventType = "setOrder"

	// Expand and collapse
	ToggleRow      EventType = "toggleRow"
	ToggleSubgroup EventType = "toggleSubgroup"
	TogglePanel    EventType = "togglePanel"
	ExpandAll      EventType = "expandAll"
	CollapseAll    EventType = "collapseAll"
	OpenPanels     EventType = "openPanels"
	ClosePanels    EventType = "closePanels"

	Refresh EventType = "refresh"
)

// Event is a user interaction applied to a session.
type Event struct {
	Type   EventType    `json:"type" doc:"Interaction, e.g. setValue, toggleFunction, toggleRow"`
	Row    int          `json:"row,omitempty" doc:"Query builder row id"`
	Field  string       `json:"field,omitempty" doc:"Search field name or key"`
	Value  string       `json:"value,omitempty" doc:"Text, list choice, facet value, facet kind or combinator"`
	Mode   string       `json:"mode,omitempty" enum:"free,list" doc:"Input mode of a person or place row"`
	From   int          `json:"from,omitempty" doc:"Lower year bound"`
	To     int          `json:"to,omitempty" doc:"Upper year bound"`
	Record string       `json:"record,omitempty" doc:"Record key"`
	Group  string       `json:"group,omitempty" enum:"contextual,identifiers,bibliography" doc:"Detail subgroup"`
	Panel  string       `json:"panel,omitempty" doc:"Description or comment panel id"`
	Start  int          `json:"start,omitempty" minimum:"0" doc:"First row of the page"`
	Length int          `json:"length,omitempty" doc:"Page length, -1 for all rows"`
	Order  []grid.Order `json:"order,omitempty" doc:"Column ordering"`
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidEvent, err)
}

// reduce applies ev to the session. Work that needs the drawn page is
// scheduled on queue for generation gen; page is filled in by the draw.
func reduce(cat *catalogue.Catalogue, sess *session.Session, ev Event, gen uint64, queue *view.Queue, page *grid.Page) error {
	q := sess.Query
	v := sess.View
	firstPage := true

	var err error
	switch ev.Type {
	case AddClause:
		var f search.Field
		if ev.Field != "" {
			if f, err = search.ParseField(ev.Field); err != nil {
				return invalid(err)
			}
		}
		_, err = q.Add(f)
	case RemoveClause:
		err = q.Remove(ev.Row)
	case SetField:
		var f search.Field
		if f, err = search.ParseField(ev.Field); err != nil {
			return invalid(err)
		}
		err = q.SetField(ev.Row, f)
	case SetValue:
		err = q.SetValue(ev.Row, ev.Value)
	case SetMode:
		var m search.Mode
		if m, err = search.ParseMode(ev.Mode); err != nil {
			return invalid(err)
		}
		err = q.SetMode(ev.Row, m)
	case ClearClause:
		err = q.Clear(ev.Row)
	case ResetQuery:
		q.Reset()

	case SetDate:
		sess.Facets.SetDate(ev.From, ev.To)
	case SetPhysical:
		err = sess.Facets.SetPhysical(ev.Value)
	case SetFundamenta:
		err = sess.Facets.SetFundamenta(ev.Value)
	case ToggleShelfmark:
		sess.Facets.ToggleShelfmark(ev.Value)
	case SetShelfmarkCombinator:
		err = sess.Facets.SetShelfmarkCombinator(ev.Value)
	case ToggleFunction:
		sess.Facets.ToggleFunction(ev.Value)
	case SetFunctionCombinator:
		err = sess.Facets.SetFunctionCombinator(ev.Value)
	case ResetFacet:
		err = sess.Facets.Reset(facet.Kind(ev.Value))
	case ResetFacets:
		sess.Facets.ResetAll()
	case ClearAll:
		q.Reset()
		sess.Facets.ResetAll()

	case SetPage:
		if ev.Start < 0 {
			return invalid(fmt.Errorf("negative start %d", ev.Start))
		}
		sess.Start = ev.Start
		firstPage = false
	case SetLength:
		if !slices.Contains(grid.Lengths, ev.Length) {
			return invalid(fmt.Errorf("unsupported page length %d", ev.Length))
		}
		sess.Length = ev.Length
	case SetOrder:
		if len(ev.Order) == 0 {
			return invalid(fmt.Errorf("empty order"))
		}
		sess.Order = ev.Order

	case ToggleRow:
		if _, ok := cat.Get(ev.Record); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownRecord, ev.Record)
		}
		v.ToggleRow(ev.Record)
		firstPage = false
	case ToggleSubgroup:
		r, ok := cat.Get(ev.Record)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownRecord, ev.Record)
		}
		key, ok := detail.ParseGroup(ev.Group)
		if !ok {
			return invalid(fmt.Errorf("unknown subgroup %q", ev.Group))
		}
		g, ok := detail.Format(r, q.Active(), v.Options(r.Key())).Group(key)
		if !ok || !v.SetSubgroup(r.Key(), key, !g.Expanded) {
			return invalid(fmt.Errorf("subgroup %q of %s is not shown", ev.Group, ev.Record))
		}
		firstPage = false
	case TogglePanel:
		r, ok := cat.Get(ev.Record)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownRecord, ev.Record)
		}
		panel, ok := findPanel(detail.Format(r, q.Active(), v.Options(r.Key())), ev.Panel)
		if !ok {
			return invalid(fmt.Errorf("unknown panel %q", ev.Panel))
		}
		v.SetPanel(panel.ID, !panel.Open)
		firstPage = false
	case ExpandAll:
		v.ExpandAllRows()
		firstPage = false
	case CollapseAll:
		v.CollapseAllRows()
		firstPage = false
	case OpenPanels, ClosePanels:
		open := ev.Type == OpenPanels
		queue.Schedule(gen, func() {
			v.SetAllPanels(visiblePanelIDs(*page, sess), open)
		})
		firstPage = false
	case Refresh:
		firstPage = false
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
	if err != nil {
		return invalid(err)
	}

	// a new search or filter starts on the first page
	if firstPage {
		sess.Start = 0
	}
	return nil
}

func findPanel(d *detail.Detail, id string) (detail.Panel, bool) {
	for _, g := range d.Groups {
		for _, r := range g.Rows {
			for _, p := range r.Panels {
				if p.ID == id {
					return p, true
				}
			}
		}
	}
	return detail.Panel{}, false
}

// visiblePanelIDs lists the panels shown in the expanded rows of the page.
func visiblePanelIDs(page grid.Page, sess *session.Session) []string {
	clauses := sess.Query.Active()
	var ids []string
	for _, r := range page.Records() {
		if !sess.View.IsExpanded(r.Key()) {
			continue
		}
		for _, p := range detail.Format(r, clauses, sess.View.Options(r.Key())).Panels() {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
