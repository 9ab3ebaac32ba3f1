package search

import (
	"errors"
	"fmt"
	"strings"
)

// MaxRows is the maximum number of rows of the query builder.
const MaxRows = 10

var (
	ErrTooManyClauses = errors.New("too many search rows")
	ErrLastClause     = errors.New("cannot remove the last search row")
	ErrUnknownClause  = errors.New("unknown search row")
)

// QueryRow is a row of the query builder. Remembered holds the last value
// chosen from the selection list so switching back to list mode restores it.
type QueryRow struct {
	ID         int    `json:"id"`
	Field      Field  `json:"field"`
	Value      string `json:"value"`
	Mode       Mode   `json:"mode"`
	Remembered string `json:"remembered,omitempty"`
}

// Query is the state of the query builder.
type Query struct {
	Rows   []QueryRow `json:"rows"`
	NextID int        `json:"nextId"`
}

// SummaryItem describes an active clause for the summary pill.
type SummaryItem struct {
	Row   int    `json:"row"`
	Field Field  `json:"field"`
	Value string `json:"value"`
}

// NewQuery returns a builder with an "All fields" and a "Title" row.
func NewQuery() *Query {
	q := &Query{}
	q.Reset()
	return q
}

// Reset restores the initial rows.
func (q *Query) Reset() {
	q.Rows = nil
	q.NextID = 0
	q.push(AllFields, "", Free)
	q.push(Title, "", Free)
}

func (q *Query) push(f Field, value string, mode Mode) QueryRow {
	q.NextID++
	if !f.HasList() {
		mode = Free
	}
	row := QueryRow{ID: q.NextID, Field: f, Value: value, Mode: mode}
	if mode == List {
		row.Remembered = value
	}
	q.Rows = append(q.Rows, row)
	return row
}

// Add appends a row. With an empty field the first field not yet used by
// any row is picked.
func (q *Query) Add(f Field) (QueryRow, error) {
	if len(q.Rows) >= MaxRows {
		return QueryRow{}, ErrTooManyClauses
	}
	if f == "" {
		f = q.unusedField()
	} else if _, err := ParseField(string(f)); err != nil {
		return QueryRow{}, err
	}
	return q.push(f, "", Free), nil
}

// Append adds a row with a value, as when restoring a shared query.
func (q *Query) Append(f Field, value string, mode Mode) (QueryRow, error) {
	if len(q.Rows) >= MaxRows {
		return QueryRow{}, ErrTooManyClauses
	}
	return q.push(f, value, mode), nil
}

func (q *Query) unusedField() Field {
	used := map[Field]bool{}
	for _, r := range q.Rows {
		used[r.Field] = true
	}
	for _, f := range Fields {
		if !used[f] {
			return f
		}
	}
	return AllFields
}

// Remove deletes a row. The last remaining row cannot be removed.
func (q *Query) Remove(id int) error {
	i, err := q.index(id)
	if err != nil {
		return err
	}
	if len(q.Rows) <= 1 {
		return ErrLastClause
	}
	q.Rows = append(q.Rows[:i], q.Rows[i+1:]...)
	return nil
}

// SetField changes the field of a row. A row leaving person or place
// returns to free mode and keeps its typed value.
func (q *Query) SetField(id int, f Field) error {
	i, err := q.index(id)
	if err != nil {
		return err
	}
	if _, err := ParseField(string(f)); err != nil {
		return err
	}
	row := &q.Rows[i]
	if row.Field == f {
		return nil
	}
	row.Field = f
	if row.Mode == List {
		row.Mode = Free
		row.Value = ""
	}
	row.Remembered = ""
	return nil
}

// SetValue changes the value of a row. In list mode the value is also
// remembered as the current choice.
func (q *Query) SetValue(id int, value string) error {
	i, err := q.index(id)
	if err != nil {
		return err
	}
	row := &q.Rows[i]
	row.Value = value
	if row.Mode == List {
		row.Remembered = value
	}
	return nil
}

// SetMode switches a person or place row between free and list input.
// Entering list mode restores the remembered choice; entering free mode
// clears the value.
func (q *Query) SetMode(id int, mode Mode) error {
	i, err := q.index(id)
	if err != nil {
		return err
	}
	row := &q.Rows[i]
	if !row.Field.HasList() || row.Mode == mode {
		return nil
	}
	switch mode {
	case List:
		row.Mode = List
		row.Value = row.Remembered
	case Free:
		row.Mode = Free
		row.Value = ""
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	return nil
}

// Active returns the clauses of the rows with a non-blank value.
func (q *Query) Active() []Clause {
	var out []Clause
	for _, r := range q.Rows {
		if strings.TrimSpace(r.Value) == "" {
			continue
		}
		out = append(out, Clause{Field: r.Field, Value: strings.TrimSpace(r.Value), Mode: r.Mode})
	}
	return out
}

// TermFor returns the value of the last active row on any of fields.
func (q *Query) TermFor(fields ...Field) string {
	return Term(q.Active(), fields...)
}

// Summary lists the active rows for the summary pill.
func (q *Query) Summary() []SummaryItem {
	var out []SummaryItem
	for _, r := range q.Rows {
		if strings.TrimSpace(r.Value) == "" {
			continue
		}
		out = append(out, SummaryItem{Row: r.ID, Field: r.Field, Value: strings.TrimSpace(r.Value)})
	}
	return out
}

// Clear empties the value of a row, as when its summary pill is removed.
func (q *Query) Clear(id int) error {
	i, err := q.index(id)
	if err != nil {
		return err
	}
	q.Rows[i].Value = ""
	q.Rows[i].Remembered = ""
	return nil
}

func (q *Query) index(id int) (int, error) {
	for i, r := range q.Rows {
		if r.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %d", ErrUnknownClause, id)
}
