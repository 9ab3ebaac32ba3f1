package view

import (
	"github.com/ikyriazi/elaute-api/pkg/detail"
)

// ToggleRow opens or closes the detail view of a row. Closing a row turns
// expand-all off.
func (s *State) ToggleRow(key string) {
	s.init()
	s.manual()
	if s.Rows[key].Expanded {
		s.Rows[key] = RowView{Origin: User}
		s.ExpandAll = false
		return
	}
	s.Rows[key] = RowView{Expanded: true, Origin: User}
}

// SetSubgroup shows or hides a subgroup of an expanded row. Hiding one
// turns expand-all off.
func (s *State) SetSubgroup(key string, group detail.GroupKey, expanded bool) bool {
	s.init()
	row := s.Rows[key]
	if !row.Expanded {
		return false
	}
	s.manual()
	subgroups := make(map[detail.GroupKey]bool, len(row.Subgroups)+1)
	for k, v := range row.Subgroups {
		subgroups[k] = v
	}
	subgroups[group] = expanded
	row.Subgroups = subgroups
	s.Rows[key] = row
	if !expanded {
		s.ExpandAll = false
	}
	return true
}

// SetPanel opens or closes one note panel. The choice holds until the
// search terms change or all panels are opened or closed.
func (s *State) SetPanel(id string, open bool) {
	s.init()
	s.manual()
	s.Panels[id] = open
}

// SetAllPanels opens or closes the given panels and sets the open-all switch.
func (s *State) SetAllPanels(ids []string, open bool) {
	s.init()
	s.manual()
	s.OpenPanels = open
	for _, id := range ids {
		if open {
			delete(s.Panels, id)
		} else {
			s.Panels[id] = false
		}
	}
}

// ExpandAllRows turns expand-all on. The rows of the drawn page are
// expanded by the post-draw pass.
func (s *State) ExpandAllRows() {
	s.init()
	s.ExpandAll = true
	for key, row := range s.Rows {
		if row.Expanded {
			row.Subgroups = nil
			s.Rows[key] = row
		}
	}
}

// CollapseAllRows closes every row and turns expand-all off.
func (s *State) CollapseAllRows() {
	s.manual()
	s.ExpandAll = false
	s.Rows = map[string]RowView{}
}

// ObserveTerms drops the manual overrides when the search terms changed:
// hidden and opened panels, and rows closed by hand.
func (s *State) ObserveTerms(signature string) bool {
	s.init()
	if signature == s.Terms {
		return false
	}
	s.Terms = signature
	s.Panels = map[string]bool{}
	for key, row := range s.Rows {
		if !row.Expanded {
			delete(s.Rows, key)
		}
	}
	return true
}
