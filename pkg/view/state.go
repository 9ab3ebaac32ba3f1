// Package view keeps the expand/collapse state of the result grid: which
// rows show their detail view, which subgroups and note panels are open,
// and the expand-all and open-all switches.
package view

import (
	"slices"

	"github.com/ikyriazi/elaute-api/pkg/detail"
)

// RowState is the derived state of a record row.
type RowState string

const (
	Collapsed             RowState = "collapsed"
	Expanded              RowState = "expanded"
	ExpandedWithOverrides RowState = "expanded-with-overrides"
)

// Origin tells who last changed a row.
type Origin string

const (
	// Auto rows were opened by the post-draw pass and close again once
	// their detail no longer matches.
	Auto Origin = "auto"
	// User rows were toggled by hand and are left alone by the post-draw
	// pass until the search terms change.
	User Origin = "user"
)

// RowView is the stored state of a row. Rows without an entry are collapsed.
type RowView struct {
	Expanded  bool                     `json:"expanded"`
	Origin    Origin                   `json:"origin,omitempty"`
	Subgroups map[detail.GroupKey]bool `json:"subgroups,omitempty"`
}

// State returns the derived row state.
func (r RowView) State() RowState {
	switch {
	case !r.Expanded:
		return Collapsed
	case len(r.Subgroups) > 0:
		return ExpandedWithOverrides
	default:
		return Expanded
	}
}

// State is the view state of a session.
type State struct {
	Rows map[string]RowView `json:"rows,omitempty"`
	// Panels holds manual note panel overrides. Entries set to false form
	// the manually hidden set.
	Panels     map[string]bool `json:"panels,omitempty"`
	ExpandAll  bool            `json:"expandAll"`
	OpenPanels bool            `json:"openPanels"`
	// Terms is the signature of the search terms the overrides belong to.
	Terms      string `json:"terms"`
	Generation uint64 `json:"generation"`
	// ManualAt is the generation of the last manual toggle.
	ManualAt uint64 `json:"manualAt"`
}

// New returns an empty view state.
func New() *State {
	return &State{
		Rows:   map[string]RowView{},
		Panels: map[string]bool{},
	}
}

func (s *State) init() {
	if s.Rows == nil {
		s.Rows = map[string]RowView{}
	}
	if s.Panels == nil {
		s.Panels = map[string]bool{}
	}
}

// Bump starts a new generation and returns it. Every event starts one.
func (s *State) Bump() uint64 {
	s.Generation++
	return s.Generation
}

func (s *State) manual() {
	s.ManualAt = s.Generation
}

// Row returns the stored state of a row.
func (s *State) Row(key string) RowView {
	return s.Rows[key]
}

// IsExpanded reports whether the row shows its detail view.
func (s *State) IsExpanded(key string) bool {
	return s.Rows[key].Expanded
}

// Override implements detail.PanelState.
func (s *State) Override(id string) (bool, bool) {
	open, ok := s.Panels[id]
	return open, ok
}

// Hidden returns the sorted ids of the manually hidden panels.
func (s *State) Hidden() []string {
	var ids []string
	for id, open := range s.Panels {
		if !open {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// Options returns the detail options for a row.
func (s *State) Options(key string) detail.Options {
	return detail.Options{
		ExpandAll:  s.ExpandAll,
		OpenPanels: s.OpenPanels,
		Subgroups:  s.Rows[key].Subgroups,
		Panels:     s,
	}
}
