// Package facet holds the filters applied next to the query builder: date
// range, physical type, fundamenta flag, shelfmarks and functions.
package facet

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ikyriazi/elaute-api/pkg/catalogue"
)

// Bounds of the date slider
const (
	MinYear = 1450
	MaxYear = 1620
)

type PhysicalType string

const (
	AnyType        PhysicalType = "Both"
	PrintType      PhysicalType = "Print"
	ManuscriptType PhysicalType = "Manuscript"
)

type FundamentaChoice string

const (
	AnyFundamenta FundamentaChoice = "Both"
	FundamentaYes FundamentaChoice = "Yes"
	FundamentaNo  FundamentaChoice = "No"
)

// Combinator combines the selected values of a multi-select facet.
type Combinator string

const (
	Or  Combinator = "or"
	And Combinator = "and"
)

// Kind names a facet.
type Kind string

const (
	PhysicalKind   Kind = "phys"
	DateKind       Kind = "date"
	ShelfmarkKind  Kind = "shelf"
	FunctionKind   Kind = "fn"
	FundamentaKind Kind = "funda"
)

var (
	ErrUnknownFacet = errors.New("unknown facet")
	ErrInvalidValue = errors.New("invalid facet value")
)

type DateRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Active reports whether the range is narrower than the slider bounds.
func (d DateRange) Active() bool {
	return d.From != MinYear || d.To != MaxYear
}

// MultiSelect is the selection of a multi-select facet.
type MultiSelect struct {
	Values     []string   `json:"values,omitempty"`
	Combinator Combinator `json:"combinator"`
}

func (m MultiSelect) Has(v string) bool {
	return slices.Contains(m.Values, v)
}

func (m MultiSelect) Active() bool {
	return len(m.Values) > 0
}

// Toggle adds v to the selection or removes it when already selected.
func (m *MultiSelect) Toggle(v string) {
	if i := slices.Index(m.Values, v); i >= 0 {
		m.Values = slices.Delete(m.Values, i, i+1)
		return
	}
	m.Values = append(m.Values, v)
}

// Matches reports whether the record values satisfy the selection: any
// selected value for Or, all of them for And.
func (m MultiSelect) Matches(values []string) bool {
	if !m.Active() {
		return true
	}
	if m.Combinator == And {
		for _, v := range m.Values {
			if !slices.Contains(values, v) {
				return false
			}
		}
		return true
	}
	for _, v := range m.Values {
		if slices.Contains(values, v) {
			return true
		}
	}
	return false
}

// State is the selection of every facet. Facets combine with AND.
type State struct {
	Date       DateRange        `json:"date"`
	Physical   PhysicalType     `json:"physical"`
	Fundamenta FundamentaChoice `json:"fundamenta"`
	Shelfmarks MultiSelect      `json:"shelfmarks"`
	Functions  MultiSelect      `json:"functions"`
}

// Pill describes an active facet for the summary pill.
type Pill struct {
	Kind  Kind   `json:"kind"`
	Label string `json:"label"`
}

// DefaultState returns the state with no facet active.
func DefaultState() State {
	return State{
		Date:       DateRange{From: MinYear, To: MaxYear},
		Physical:   AnyType,
		Fundamenta: AnyFundamenta,
		Shelfmarks: MultiSelect{Combinator: Or},
		Functions:  MultiSelect{Combinator: Or},
	}
}

// SetDate sets the date range, clamped to the slider bounds. A lower bound
// above the upper bound is lowered to it.
func (s *State) SetDate(from, to int) {
	from = min(max(from, MinYear), MaxYear)
	to = min(max(to, MinYear), MaxYear)
	if from > to {
		from = to
	}
	s.Date = DateRange{From: from, To: to}
}

func (s *State) SetPhysical(v string) error {
	switch {
	case strings.EqualFold(v, string(AnyType)), v == "":
		s.Physical = AnyType
	case strings.EqualFold(v, string(PrintType)):
		s.Physical = PrintType
	case strings.EqualFold(v, string(ManuscriptType)):
		s.Physical = ManuscriptType
	default:
		return fmt.Errorf("%w: physical type %q", ErrInvalidValue, v)
	}
	return nil
}

func (s *State) SetFundamenta(v string) error {
	switch {
	case strings.EqualFold(v, string(AnyFundamenta)), v == "":
		s.Fundamenta = AnyFundamenta
	case strings.EqualFold(v, string(FundamentaYes)):
		s.Fundamenta = FundamentaYes
	case strings.EqualFold(v, string(FundamentaNo)):
		s.Fundamenta = FundamentaNo
	default:
		return fmt.Errorf("%w: fundamenta %q", ErrInvalidValue, v)
	}
	return nil
}

func (s *State) ToggleShelfmark(v string) {
	s.Shelfmarks.Toggle(v)
}

func (s *State) ToggleFunction(v string) {
	s.Functions.Toggle(v)
}

func (s *State) SetShelfmarkCombinator(c string) error {
	return setCombinator(&s.Shelfmarks, c)
}

func (s *State) SetFunctionCombinator(c string) error {
	return setCombinator(&s.Functions, c)
}

func setCombinator(m *MultiSelect, c string) error {
	switch Combinator(strings.ToLower(c)) {
	case Or, "":
		m.Combinator = Or
	case And:
		m.Combinator = And
	default:
		return fmt.Errorf("%w: combinator %q", ErrInvalidValue, c)
	}
	return nil
}

// Reset clears one facet.
func (s *State) Reset(kind Kind) error {
	d := DefaultState()
	switch kind {
	case PhysicalKind:
		s.Physical = d.Physical
	case DateKind:
		s.Date = d.Date
	case ShelfmarkKind:
		s.Shelfmarks = d.Shelfmarks
	case FunctionKind:
		s.Functions = d.Functions
	case FundamentaKind:
		s.Fundamenta = d.Fundamenta
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFacet, kind)
	}
	return nil
}

// ResetAll clears every facet.
func (s *State) ResetAll() {
	*s = DefaultState()
}

// Matches reports whether r passes every active facet.
func (s State) Matches(r *catalogue.Record) bool {
	if s.Date.Active() {
		year, ok := r.EarliestYear()
		if !ok || year < s.Date.From || year > s.Date.To {
			return false
		}
	}

	switch s.Physical {
	case PrintType, ManuscriptType:
		if !strings.EqualFold(strings.TrimSpace(r.PhysicalType), string(s.Physical)) {
			return false
		}
	}

	switch s.Fundamenta {
	case FundamentaYes:
		if !r.IsFundamenta() {
			return false
		}
	case FundamentaNo:
		if r.IsFundamenta() {
			return false
		}
	}

	if !s.Shelfmarks.Matches(r.ShelfmarkLabels()) {
		return false
	}
	return s.Functions.Matches(r.FunctionLabels())
}

// Active lists the active facets.
func (s State) Active() []Pill {
	var pills []Pill
	if s.Physical == PrintType || s.Physical == ManuscriptType {
		pills = append(pills, Pill{Kind: PhysicalKind, Label: string(s.Physical)})
	}
	if s.Date.Active() {
		pills = append(pills, Pill{Kind: DateKind, Label: "Date range"})
	}
	if s.Shelfmarks.Active() {
		pills = append(pills, Pill{Kind: ShelfmarkKind, Label: "Shelfmark"})
	}
	if s.Functions.Active() {
		pills = append(pills, Pill{Kind: FunctionKind, Label: "Function"})
	}
	if s.Fundamenta == FundamentaYes || s.Fundamenta == FundamentaNo {
		pills = append(pills, Pill{Kind: FundamentaKind, Label: "Fundamenta"})
	}
	return pills
}
