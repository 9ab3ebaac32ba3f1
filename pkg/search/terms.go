package search

import (
	"slices"
	"strings"
)

// Select returns the clauses on any of fields, in order.
func Select(clauses []Clause, fields ...Field) []Clause {
	var out []Clause
	for _, c := range clauses {
		if slices.Contains(fields, c.Field) {
			out = append(out, c)
		}
	}
	return out
}

// Term returns the value of the last clause on any of fields, or "".
func Term(clauses []Clause, fields ...Field) string {
	term := ""
	for _, c := range clauses {
		if slices.Contains(fields, c.Field) {
			term = c.Value
		}
	}
	return term
}

// PlaceClauses returns the place clauses together with the all-fields
// clauses, which search place labels as free text.
func PlaceClauses(clauses []Clause) []Clause {
	return Select(clauses, Place, AllFields)
}

// Signature identifies a set of active clauses. Two clause sets with the
// same signature search for the same terms.
func Signature(clauses []Clause) string {
	var b strings.Builder
	for _, c := range clauses {
		b.WriteString(c.Field.Key())
		b.WriteByte(':')
		b.WriteString(string(c.Mode))
		b.WriteByte('=')
		b.WriteString(c.Value)
		b.WriteByte('\x1f')
	}
	return b.String()
}
