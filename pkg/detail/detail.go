// Package detail builds the expandable detail view of a record: simple rows
// followed by the contextual, identifier and bibliography subgroups, with
// active search terms highlighted.
package detail

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ikyriazi/elaute-api/pkg/catalogue"
	"github.com/ikyriazi/elaute-api/pkg/highlight"
	"github.com/ikyriazi/elaute-api/pkg/search"
)

// GroupKey names a subgroup of the detail view.
type GroupKey string

const (
	Contextual   GroupKey = "contextual"
	Identifiers  GroupKey = "identifiers"
	Bibliography GroupKey = "bibliography"
)

// GroupKeys lists the subgroups in display order.
var GroupKeys = []GroupKey{Contextual, Identifiers, Bibliography}

var groupTitles = map[GroupKey]string{
	Contextual:   "Contextual Metadata",
	Identifiers:  "Further Identifiers",
	Bibliography: "Bibliography and Related Resources",
}

// ParseGroup validates a subgroup name.
func ParseGroup(s string) (GroupKey, bool) {
	for _, g := range GroupKeys {
		if string(g) == s {
			return g, true
		}
	}
	return "", false
}

// PanelKind is the kind of a collapsible note panel.
type PanelKind string

const (
	DescriptionPanel PanelKind = "description"
	CommentPanel     PanelKind = "comment"
)

var panelSuffix = map[PanelKind]string{
	DescriptionPanel: "desc",
	CommentPanel:     "comm",
}

// Item list prefixes used in panel ids.
const (
	provenancePrefix = "prov"
	functionPrefix   = "func"
	codicologyPrefix = "codic"
)

// ContentID identifies a note panel, e.g. "A-Wn-18688-prov-desc-0".
func ContentID(recordKey, prefix string, kind PanelKind, index int) string {
	return fmt.Sprintf("%s-%s-%s-%d", recordKey, prefix, panelSuffix[kind], index)
}

// PanelState reports a manual open/closed override for a panel.
type PanelState interface {
	Override(id string) (open bool, ok bool)
}

// Options carries the view state the detail depends on.
type Options struct {
	// ExpandAll shows every subgroup not overridden in Subgroups.
	ExpandAll bool
	// OpenPanels opens every panel without a manual override.
	OpenPanels bool
	Subgroups  map[GroupKey]bool
	Panels     PanelState
}

// Panel is a description or comment attached to a list item.
type Panel struct {
	ID      string    `json:"id"`
	Kind    PanelKind `json:"kind"`
	HTML    string    `json:"html"`
	Matched bool      `json:"matched"`
	Open    bool      `json:"open"`
}

// Row is a label/value line of the detail view. The label is only set on
// the first line of a list.
type Row struct {
	Label  string  `json:"label,omitempty"`
	Value  string  `json:"value"`
	Panels []Panel `json:"panels,omitempty"`
}

// Expanded reports whether one of the row's panels is open.
func (r Row) Expanded() bool {
	for _, p := range r.Panels {
		if p.Open {
			return true
		}
	}
	return false
}

type Group struct {
	Key      GroupKey `json:"key"`
	Title    string   `json:"title"`
	Rows     []Row    `json:"rows"`
	Matched  bool     `json:"matched"`
	Expanded bool     `json:"expanded"`
}

// Detail is the formatted detail view of one record.
type Detail struct {
	Record string  `json:"record"`
	Rows   []Row   `json:"rows"`
	Groups []Group `json:"groups"`
}

// Group returns the subgroup with the given key.
func (d *Detail) Group(key GroupKey) (Group, bool) {
	for _, g := range d.Groups {
		if g.Key == key {
			return g, true
		}
	}
	return Group{}, false
}

// Panels returns every panel of the visible subgroups.
func (d *Detail) Panels() []Panel {
	var out []Panel
	for _, g := range d.Groups {
		if !g.Expanded {
			continue
		}
		for _, r := range g.Rows {
			out = append(out, r.Panels...)
		}
	}
	return out
}

// AllExpanded reports whether every subgroup is shown.
func (d *Detail) AllExpanded() bool {
	for _, g := range d.Groups {
		if !g.Expanded {
			return false
		}
	}
	return true
}

// PanelIDs returns the ids of all note panels of r.
func PanelIDs(r *catalogue.Record) []string {
	var ids []string
	for _, list := range itemLists(r) {
		for i, item := range list.items {
			if strings.TrimSpace(item.Label) == "" {
				continue
			}
			if item.Description != "" {
				ids = append(ids, ContentID(r.Key(), list.prefix, DescriptionPanel, i))
			}
			if item.Comment != "" {
				ids = append(ids, ContentID(r.Key(), list.prefix, CommentPanel, i))
			}
		}
	}
	return ids
}

type itemList struct {
	prefix string
	label  string
	items  []catalogue.Item
}

func itemLists(r *catalogue.Record) []itemList {
	return []itemList{
		{provenancePrefix, "Provenance:", r.Provenance},
		{functionPrefix, "Function:", r.Function},
		{codicologyPrefix, "Codicology:", r.Codicology},
	}
}

type formatter struct {
	record  *catalogue.Record
	clauses []search.Clause
	opts    Options
}

// Format builds the detail view of r for the active clauses.
func Format(r *catalogue.Record, clauses []search.Clause, opts Options) *Detail {
	f := &formatter{record: r, clauses: clauses, opts: opts}
	hits := search.NestedHits(r, clauses)
	titleTerm := search.Term(clauses, search.Title, search.AllFields)
	descTerm := search.Term(clauses, search.Description, search.AllFields)

	d := &Detail{Record: r.Key()}
	if r.AlternativeTitle != "" {
		d.Rows = append(d.Rows, Row{Label: "Alternative title:", Value: highlight.Highlight(r.AlternativeTitle, titleTerm)})
	}
	d.Rows = append(d.Rows, Row{Label: "Type:", Value: physicalType(r.PhysicalType)})
	if r.Description != "" {
		d.Rows = append(d.Rows, Row{Label: "Description:", Value: highlight.Highlight(r.Description, descTerm)})
	}
	if r.Comment != "" {
		d.Rows = append(d.Rows, Row{Label: "Comment:", Value: highlight.Highlight(r.Comment, descTerm)})
	}

	if len(r.Provenance) > 0 || len(r.Function) > 0 || r.Fundamenta != nil || len(r.Codicology) > 0 {
		var rows []Row
		for _, list := range itemLists(r) {
			rows = append(rows, f.itemRows(list)...)
			if list.prefix == functionPrefix {
				fundamenta := "No"
				if r.IsFundamenta() {
					fundamenta = "Yes"
				}
				rows = append(rows, Row{Label: "Fundamenta:", Value: fundamenta})
			}
		}
		d.Groups = append(d.Groups, f.group(Contextual, rows, hits.Contextual()))
	}

	if r.Brown != "" || len(r.OtherShelfmark) > 0 {
		var rows []Row
		if r.Brown != "" {
			rows = append(rows, Row{Label: "Brown:", Value: highlight.Highlight(r.Brown.String(), search.Term(clauses, search.Identifier, search.AllFields))})
		}
		allTerm := search.Term(clauses, search.AllFields)
		label := "Other shelfmarks:"
		for _, s := range r.OtherShelfmark {
			if s.Label == "" {
				continue
			}
			rows = append(rows, Row{Label: label, Value: highlight.Highlight(link(s.Label, s.URL), allTerm)})
			label = ""
		}
		d.Groups = append(d.Groups, f.group(Identifiers, rows, hits.Identifiers()))
	}

	if len(r.ReferencedBy) > 0 || len(r.RelatedResource) > 0 {
		bibTerm := search.Term(clauses, search.Bibliography, search.AllFields)
		var rows []Row
		rows = append(rows, referenceRows(r.ReferencedBy, "Editions:", catalogue.EditionBook, bibTerm)...)
		rows = append(rows, referenceRows(r.ReferencedBy, "Catalogues:", catalogue.CatalogueBook, bibTerm)...)
		rows = append(rows, referenceRows(r.ReferencedBy, "Other bibliography:", "", bibTerm)...)
		label := "Related resources:"
		for _, l := range r.RelatedResource {
			if l.Label == "" {
				continue
			}
			rows = append(rows, Row{Label: label, Value: highlight.Highlight(link(l.Label, l.URL), bibTerm)})
			label = ""
		}
		d.Groups = append(d.Groups, f.group(Bibliography, rows, hits.Bibliography))
	}

	return d
}

func (f *formatter) group(key GroupKey, rows []Row, matched bool) Group {
	g := Group{Key: key, Title: groupTitles[key], Rows: rows, Matched: matched}
	if open, ok := f.opts.Subgroups[key]; ok {
		g.Expanded = open
	} else {
		g.Expanded = f.opts.ExpandAll || matched
	}
	return g
}

func (f *formatter) itemRows(list itemList) []Row {
	var rows []Row
	label := list.label
	for i, item := range list.items {
		if strings.TrimSpace(item.Label) == "" {
			continue
		}
		rows = append(rows, Row{
			Label:  label,
			Value:  f.itemLabel(list.prefix, item),
			Panels: f.panels(list.prefix, i, item),
		})
		label = ""
	}
	return rows
}

// itemLabel highlights a list item label: provenance places by the place
// clauses first, then any item by the all-fields term.
func (f *formatter) itemLabel(prefix string, item catalogue.Item) string {
	if prefix == provenancePrefix {
		for _, c := range search.PlaceClauses(f.clauses) {
			if !search.PlaceItemMatches(item, c) {
				continue
			}
			if c.IsList() {
				return highlight.Whole(item.Label)
			}
			return highlight.Highlight(item.Label, c.Value)
		}
	}
	return highlight.Highlight(item.Label, search.Term(f.clauses, search.AllFields))
}

func (f *formatter) panels(prefix string, index int, item catalogue.Item) []Panel {
	var panels []Panel
	for _, kind := range []PanelKind{DescriptionPanel, CommentPanel} {
		text := item.Description
		if kind == CommentPanel {
			text = item.Comment
		}
		if text == "" {
			continue
		}
		p := Panel{
			ID:   ContentID(f.record.Key(), prefix, kind, index),
			Kind: kind,
			HTML: text,
		}
		for _, c := range search.Select(f.clauses, search.Description, search.AllFields) {
			if search.LabelMatches(text, c.Value) {
				p.Matched = true
				p.HTML = highlight.Highlight(text, c.Value)
				break
			}
		}
		p.Open = f.panelOpen(p.ID, p.Matched)
		panels = append(panels, p)
	}
	return panels
}

func (f *formatter) panelOpen(id string, matched bool) bool {
	if f.opts.Panels != nil {
		if open, ok := f.opts.Panels.Override(id); ok {
			return open
		}
	}
	return f.opts.OpenPanels || matched
}

func referenceRows(refs []catalogue.Reference, label, bookType, term string) []Row {
	var rows []Row
	for _, ref := range refs {
		if ref.ReferenceSource == nil {
			continue
		}
		t := ref.BookType()
		if bookType == "" {
			if t == catalogue.EditionBook || t == catalogue.CatalogueBook {
				continue
			}
		} else if t != bookType {
			continue
		}
		value := ref.BookShort()
		if ref.ReferencePages != "" {
			value += `: <span class="reference-pages">` + ref.ReferencePages + `</span>`
		}
		rows = append(rows, Row{Label: label, Value: highlight.Highlight(value, term)})
		label = ""
	}
	return rows
}

func physicalType(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return ""
	}
	return cases.Title(language.English).String(t)
}

func link(label, url string) string {
	if url == "" {
		return label
	}
	return fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener noreferrer">%s</a>`, html.EscapeString(url), label)
}
