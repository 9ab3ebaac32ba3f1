package catalogue

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// EmptyFunction is the function facet value selecting records without any function.
const EmptyFunction = "[empty field]"

// Record represents one source of the catalogue
type Record struct {
	ID               string          `json:"id"`
	Title            string          `json:"title,omitempty"`
	ShortTitle       string          `json:"shortTitle,omitempty"`
	AlternativeTitle string          `json:"alternativeTitle,omitempty"`
	Date             *Date           `json:"date,omitempty"`
	Author           *Agent          `json:"author,omitempty"`
	Publisher        *Agent          `json:"publisher,omitempty"`
	PrintPlace       *Agent          `json:"printPlace,omitempty"`
	Shelfmark        *Shelfmark      `json:"shelfmark,omitempty"`
	OtherShelfmark   List[Shelfmark] `json:"otherShelfmark,omitempty"`
	RISM             *Link           `json:"rism,omitempty"`
	OtherRISM        List[Link]      `json:"otherRism,omitempty"`
	VD16             *Link           `json:"vd16,omitempty"`
	OtherVD16        List[Link]      `json:"otherVD16,omitempty"`
	Brown            Text            `json:"brown,omitempty"`
	PhysicalType     string          `json:"physicalType,omitempty"`
	Fundamenta       *Text           `json:"fundamenta,omitempty"`
	Provenance       List[Item]      `json:"provenance,omitempty"`
	Function         List[Item]      `json:"function,omitempty"`
	Codicology       List[Item]      `json:"codicology,omitempty"`
	ReferencedBy     List[Reference] `json:"referencedBy,omitempty"`
	RelatedResource  List[Link]      `json:"relatedResource,omitempty"`
	Description      string          `json:"description,omitempty"`
	Comment          string          `json:"comment,omitempty"`
	Bibliography     string          `json:"bibliography,omitempty"`

	key string
}

// Date is the dating of a source: a display label and an optional timespan.
type Date struct {
	Label    string    `json:"label,omitempty"`
	Timespan *Timespan `json:"timespan,omitempty"`
}

type Timespan struct {
	EarliestDate *DateValue `json:"earliestDate,omitempty"`
	LatestDate   *DateValue `json:"latestDate,omitempty"`
}

type DateValue struct {
	Value Text `json:"value,omitempty"`
}

// Agent is a person or place with its display label and the canonical name
// offered in selection lists.
type Agent struct {
	Label          string `json:"label,omitempty"`
	NormalizedName string `json:"normalizedName,omitempty"`
	URL            string `json:"url,omitempty"`
}

type Shelfmark struct {
	Label              string       `json:"label,omitempty"`
	URL                string       `json:"url,omitempty"`
	HoldingInstitution *Institution `json:"holdingInstitution,omitempty"`
}

type Institution struct {
	Siglum      string `json:"siglum,omitempty"`
	CountryCode string `json:"countryCode,omitempty"`
	Country     string `json:"country,omitempty"`
}

type Link struct {
	Label string `json:"label,omitempty"`
	URL   string `json:"url,omitempty"`
}

// Item is an entry of the provenance, function or codicology lists.
type Item struct {
	Label          string `json:"label,omitempty"`
	NormalizedName string `json:"normalizedName,omitempty"`
	Description    string `json:"description,omitempty"`
	Comment        string `json:"comment,omitempty"`
}

// Reference is a bibliography entry citing the source.
type Reference struct {
	ReferenceSource *ReferenceSource `json:"referenceSource,omitempty"`
	ReferencePages  string           `json:"referencePages,omitempty"`
	Label           string           `json:"label,omitempty"`
}

type ReferenceSource struct {
	BookShort         string `json:"bookShort,omitempty"`
	ReferencebookType string `json:"referencebookType,omitempty"`
}

// Reference book types
const (
	EditionBook   = "Edition"
	CatalogueBook = "Catalogue"
	OtherBook     = "Other"
)

// List decodes either a single JSON object or an array of them.
type List[T any] []T

func (l *List[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*l = nil
		return nil
	case data[0] == '[':
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	default:
		var item T
		if err := json.Unmarshal(data, &item); err != nil {
			return err
		}
		*l = List[T]{item}
		return nil
	}
}

// Text is a scalar that may arrive as a JSON string, number or boolean.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(data)
	return nil
}

func (t Text) String() string {
	return string(t)
}

// Key is the short record identifier: the last path segment of the ID.
func (r *Record) Key() string {
	if r.key != "" {
		return r.key
	}
	id := strings.TrimRight(r.ID, "/")
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}

// EarliestYear returns the numeric earliest year of the dating, if present.
func (r *Record) EarliestYear() (int, bool) {
	if r.Date == nil || r.Date.Timespan == nil || r.Date.Timespan.EarliestDate == nil {
		return 0, false
	}
	return leadingYear(string(r.Date.Timespan.EarliestDate.Value))
}

// IsFundamenta reports whether the fundamenta flag is set to 1.
func (r *Record) IsFundamenta() bool {
	if r.Fundamenta == nil {
		return false
	}
	v := strings.TrimSpace(string(*r.Fundamenta))
	return v == "1" || v == "true"
}

// ShelfmarkLabels returns the labels of the main and all other shelfmarks.
func (r *Record) ShelfmarkLabels() []string {
	var labels []string
	if r.Shelfmark != nil && r.Shelfmark.Label != "" {
		labels = append(labels, r.Shelfmark.Label)
	}
	for _, s := range r.OtherShelfmark {
		if s.Label != "" {
			labels = append(labels, s.Label)
		}
	}
	return labels
}

// FunctionLabels returns the function labels, or EmptyFunction when the
// record has none.
func (r *Record) FunctionLabels() []string {
	var labels []string
	for _, f := range r.Function {
		if f.Label != "" {
			labels = append(labels, f.Label)
		}
	}
	if len(labels) == 0 {
		return []string{EmptyFunction}
	}
	return labels
}

// RISMLabels returns the labels of the primary and other RISM identifiers.
func (r *Record) RISMLabels() []string {
	return linkLabels(r.RISM, r.OtherRISM)
}

// VD16Labels returns the labels of the primary and other VD16 identifiers.
func (r *Record) VD16Labels() []string {
	return linkLabels(r.VD16, r.OtherVD16)
}

func linkLabels(primary *Link, others []Link) []string {
	var labels []string
	if primary != nil && primary.Label != "" {
		labels = append(labels, primary.Label)
	}
	for _, o := range others {
		if o.Label != "" {
			labels = append(labels, o.Label)
		}
	}
	return labels
}

// String returns the label, or "" for a nil agent.
func (a *Agent) String() string {
	if a == nil {
		return ""
	}
	return a.Label
}

// Normalized returns the normalized name, or "" for a nil agent.
func (a *Agent) Normalized() string {
	if a == nil {
		return ""
	}
	return a.NormalizedName
}

func (s *Shelfmark) String() string {
	if s == nil {
		return ""
	}
	return s.Label
}

func (d *Date) String() string {
	if d == nil {
		return ""
	}
	return d.Label
}

// BookShort returns the short citation of the reference book.
func (r Reference) BookShort() string {
	if r.ReferenceSource == nil {
		return ""
	}
	return r.ReferenceSource.BookShort
}

// BookType returns the reference book type.
func (r Reference) BookType() string {
	if r.ReferenceSource == nil {
		return ""
	}
	return r.ReferenceSource.ReferencebookType
}

// Text joins short citation, pages and label as searched by the all-fields query.
func (r Reference) Text() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{r.BookShort(), r.ReferencePages, r.Label} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func leadingYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	year, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return year, true
}
