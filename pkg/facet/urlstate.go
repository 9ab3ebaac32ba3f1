package facet

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/go-querystring/query"

	"github.com/ikyriazi/elaute-api/pkg/search"
)

// ErrInvalidQuery is returned for a query string that cannot be decoded.
var ErrInvalidQuery = errors.New("invalid query string")

// urlState is the query string form of the facet selections. Clauses are
// written separately so that they keep their order.
type urlState struct {
	From        int      `url:"from,omitempty"`
	To          int      `url:"to,omitempty"`
	Type        string   `url:"type,omitempty"`
	Fundamenta  string   `url:"fundamenta,omitempty"`
	Shelfmark   []string `url:"shelfmark,omitempty"`
	ShelfmarkOp string   `url:"shelfmarkOp,omitempty"`
	Function    []string `url:"function,omitempty"`
	FunctionOp  string   `url:"functionOp,omitempty"`
}

// clauseParam names the parameter of a clause: the field key, with a
// ".list" suffix for list choices.
func clauseParam(f search.Field, mode search.Mode) string {
	if mode == search.List && f.HasList() {
		return f.Key() + ".list"
	}
	return f.Key()
}

type param struct {
	key, value string
}

// splitQuery parses raw like url.ParseQuery but keeps the parameter order.
func splitQuery(raw string) ([]param, error) {
	var params []param
	for raw != "" {
		var pair string
		pair, raw, _ = strings.Cut(raw, "&")
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
		}
		params = append(params, param{key: key, value: value})
	}
	return params, nil
}

// EncodeQuery writes the active clauses, in order, and the facets as a URL
// query string.
func EncodeQuery(q *search.Query, s State) (string, error) {
	var b strings.Builder
	for _, c := range q.Active() {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(clauseParam(c.Field, c.Mode)))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(c.Value))
	}

	var u urlState
	if s.Date.Active() {
		u.From, u.To = s.Date.From, s.Date.To
	}
	if s.Physical != AnyType {
		u.Type = strings.ToLower(string(s.Physical))
	}
	if s.Fundamenta != AnyFundamenta {
		u.Fundamenta = strings.ToLower(string(s.Fundamenta))
	}
	u.Shelfmark = s.Shelfmarks.Values
	if s.Shelfmarks.Combinator == And {
		u.ShelfmarkOp = string(And)
	}
	u.Function = s.Functions.Values
	if s.Functions.Combinator == And {
		u.FunctionOp = string(And)
	}
	facets, err := query.Values(u)
	if err != nil {
		return "", err
	}
	if enc := facets.Encode(); enc != "" {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(enc)
	}
	return b.String(), nil
}

// DecodeQuery restores a query and facet state from a URL query string.
// Clauses are rebuilt in the order their parameters appear. Unknown
// parameters and malformed facet values are ignored. Without any clause
// parameter the default builder rows are returned. More clauses than the
// builder holds fail with search.ErrTooManyClauses.
func DecodeQuery(raw string) (*search.Query, State, error) {
	params, err := splitQuery(raw)
	if err != nil {
		return nil, State{}, err
	}

	type clauseKey struct {
		field search.Field
		mode  search.Mode
	}
	keys := make(map[string]clauseKey)
	for _, f := range search.Fields {
		keys[clauseParam(f, search.Free)] = clauseKey{f, search.Free}
		if f.HasList() {
			keys[clauseParam(f, search.List)] = clauseKey{f, search.List}
		}
	}

	q := &search.Query{}
	values := url.Values{}
	for _, p := range params {
		k, ok := keys[p.key]
		if !ok {
			values.Add(p.key, p.value)
			continue
		}
		if strings.TrimSpace(p.value) == "" {
			continue
		}
		if _, err := q.Append(k.field, p.value, k.mode); err != nil {
			return nil, State{}, fmt.Errorf("%s=%s: %w", p.key, p.value, err)
		}
	}
	if len(q.Rows) == 0 {
		q = search.NewQuery()
	}

	s := DefaultState()
	from, to := MinYear, MaxYear
	if v, err := strconv.Atoi(values.Get("from")); err == nil {
		from = v
	}
	if v, err := strconv.Atoi(values.Get("to")); err == nil {
		to = v
	}
	s.SetDate(from, to)
	_ = s.SetPhysical(values.Get("type"))
	_ = s.SetFundamenta(values.Get("fundamenta"))
	for _, v := range values["shelfmark"] {
		if v != "" && !s.Shelfmarks.Has(v) {
			s.Shelfmarks.Toggle(v)
		}
	}
	for _, v := range values["function"] {
		if v != "" && !s.Functions.Has(v) {
			s.Functions.Toggle(v)
		}
	}
	_ = s.SetShelfmarkCombinator(values.Get("shelfmarkOp"))
	_ = s.SetFunctionCombinator(values.Get("functionOp"))
	return q, s, nil
}
