package view

import (
	"github.com/ikyriazi/elaute-api/pkg/catalogue"
	"github.com/ikyriazi/elaute-api/pkg/search"
)

// PostDraw updates the rows of the drawn page once the grid is rendered.
// Rows opened automatically whose detail no longer matches are closed,
// collapsed rows with a match in their detail are opened, and expand-all
// is re-applied unless a manual toggle happened in this generation.
func (s *State) PostDraw(page []*catalogue.Record, clauses []search.Clause) {
	s.init()
	for _, r := range page {
		key := r.Key()
		row, ok := s.Rows[key]
		matched := search.NestedHits(r, clauses).Any()
		switch {
		case row.Expanded && row.Origin == Auto && !matched:
			delete(s.Rows, key)
		case !row.Expanded && matched && !(ok && row.Origin == User):
			s.Rows[key] = RowView{Expanded: true, Origin: Auto}
		}
	}

	if s.ExpandAll && s.ManualAt != s.Generation {
		for _, r := range page {
			key := r.Key()
			row := s.Rows[key]
			if row.Expanded {
				continue
			}
			s.Rows[key] = RowView{Expanded: true, Origin: User}
		}
	}
}
