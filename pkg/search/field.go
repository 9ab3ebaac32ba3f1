package search

import (
	"errors"
	"fmt"
	"strings"
)

// Field is a searchable field of the query builder.
type Field string

const (
	AllFields    Field = "All fields"
	Title        Field = "Title"
	Person       Field = "Person"
	Place        Field = "Place"
	Identifier   Field = "RISM / VD16 / Brown ID"
	Description  Field = "Description / Comment"
	Bibliography Field = "Bibliography"
)

// Fields lists the fields in the order offered by the builder.
var Fields = []Field{AllFields, Title, Person, Place, Identifier, Description, Bibliography}

var fieldKeys = map[Field]string{
	AllFields:    "all",
	Title:        "title",
	Person:       "person",
	Place:        "place",
	Identifier:   "id",
	Description:  "desc",
	Bibliography: "bib",
}

var ErrUnknownField = errors.New("unknown search field")

// Key is the short name used in URLs.
func (f Field) Key() string {
	return fieldKeys[f]
}

// HasList reports whether the field offers a selection list.
func (f Field) HasList() bool {
	return f == Person || f == Place
}

// ParseField accepts a display name or a short key, case-insensitively.
func ParseField(s string) (Field, error) {
	s = strings.TrimSpace(s)
	for _, f := range Fields {
		if strings.EqualFold(string(f), s) || strings.EqualFold(f.Key(), s) {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Mode is the input mode of a person or place clause.
type Mode string

const (
	Free Mode = "free"
	List Mode = "list"
)

var ErrUnknownMode = errors.New("unknown search mode")

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Free, "":
		return Free, nil
	case List:
		return List, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Clause is one active row of the query builder.
type Clause struct {
	Field Field  `json:"field"`
	Value string `json:"value"`
	Mode  Mode   `json:"mode,omitempty"`
}

// IsList reports whether the clause compares canonical names exactly.
func (c Clause) IsList() bool {
	return c.Mode == List && c.Field.HasList()
}
