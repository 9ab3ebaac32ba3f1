// Package session persists the browsing state of a client between requests:
// query builder rows, facet selections, view state and paging.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ikyriazi/elaute-api/pkg/facet"
	"github.com/ikyriazi/elaute-api/pkg/grid"
	"github.com/ikyriazi/elaute-api/pkg/search"
	"github.com/ikyriazi/elaute-api/pkg/view"
)

var ErrNotFound = errors.New("session not found")

// Session is the state of one browsing client.
type Session struct {
	ID        string        `json:"id"`
	Query     *search.Query `json:"query"`
	Facets    facet.State   `json:"facets"`
	View      *view.State   `json:"view"`
	Start     int           `json:"start"`
	Length    int           `json:"length"`
	Order     []grid.Order  `json:"order"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// New returns a session with the default query, facets and paging.
func New() *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.NewString(),
		Query:     search.NewQuery(),
		Facets:    facet.DefaultState(),
		View:      view.New(),
		Length:    grid.DefaultLength,
		Order:     append([]grid.Order(nil), grid.DefaultOrder...),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Normalize fills the parts missing from a decoded session.
func (s *Session) Normalize() {
	if s.Query == nil || len(s.Query.Rows) == 0 {
		s.Query = search.NewQuery()
	}
	if s.View == nil {
		s.View = view.New()
	}
	if s.Length == 0 {
		s.Length = grid.DefaultLength
	}
	if len(s.Order) == 0 {
		s.Order = append([]grid.Order(nil), grid.DefaultOrder...)
	}
	if s.Facets.Physical == "" {
		s.Facets = facet.DefaultState()
	}
}

// Store persists sessions.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// ValidID reports whether id is a session id.
func ValidID(id string) bool {
	return uuid.Validate(id) == nil
}
