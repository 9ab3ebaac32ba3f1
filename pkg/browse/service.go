// Package browse runs the catalogue browser: every interaction is applied
// to the session state, followed by exactly one draw of the grid and the
// post-draw expand/collapse pass.
package browse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ikyriazi/elaute-api/pkg/catalogue"
	"github.com/ikyriazi/elaute-api/pkg/detail"
	"github.com/ikyriazi/elaute-api/pkg/facet"
	"github.com/ikyriazi/elaute-api/pkg/grid"
	"github.com/ikyriazi/elaute-api/pkg/search"
	"github.com/ikyriazi/elaute-api/pkg/session"
	"github.com/ikyriazi/elaute-api/pkg/view"
)

var (
	ErrNotLoaded     = errors.New("catalogue not loaded")
	ErrUnknownEvent  = errors.New("unknown event")
	ErrInvalidEvent  = errors.New("invalid event")
	ErrUnknownRecord = errors.New("unknown record")
)

// Service serves browsing sessions over the loaded catalogue.
type Service struct {
	mu        sync.RWMutex
	catalogue *catalogue.Catalogue
	store     session.Store
	locks     sync.Map
}

func NewService(store session.Store) *Service {
	return &Service{store: store}
}

// SetCatalogue replaces the catalogue served.
func (s *Service) SetCatalogue(c *catalogue.Catalogue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalogue = c
}

// Catalogue returns the catalogue served, or ErrNotLoaded.
func (s *Service) Catalogue() (*catalogue.Catalogue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalogue == nil {
		return nil, ErrNotLoaded
	}
	return s.catalogue, nil
}

// lock serializes the events of one session.
func (s *Service) lock(id string) func() {
	m, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Create starts a session from a URL state query string.
func (s *Service) Create(ctx context.Context, rawQuery string) (*View, error) {
	cat, err := s.Catalogue()
	if err != nil {
		return nil, err
	}

	sess := session.New()
	sess.Query, sess.Facets, err = facet.DecodeQuery(rawQuery)
	if err != nil {
		return nil, err
	}
	v, err := draw(cat, sess, Event{Type: Refresh})
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	slog.Debug("Session created", "session", sess.ID, "records", v.RecordsDisplay)
	return v, nil
}

// Get redraws a session.
func (s *Service) Get(ctx context.Context, id string) (*View, error) {
	return s.Apply(ctx, id, Event{Type: Refresh})
}

// Apply applies one event to a session and redraws it.
func (s *Service) Apply(ctx context.Context, id string, ev Event) (*View, error) {
	cat, err := s.Catalogue()
	if err != nil {
		return nil, err
	}

	unlock := s.lock(id)
	defer unlock()

	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	v, err := draw(cat, sess, ev)
	if err != nil {
		return nil, err
	}
	sess.UpdatedAt = time.Now().UTC()
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return v, nil
}

// Delete ends a session.
func (s *Service) Delete(ctx context.Context, id string) error {
	unlock := s.lock(id)
	defer func() {
		unlock()
		s.locks.Delete(id)
	}()
	return s.store.Delete(ctx, id)
}

// Detail returns the detail view of a record as shown in a session.
func (s *Service) Detail(ctx context.Context, id, key string) (*detail.Detail, error) {
	cat, err := s.Catalogue()
	if err != nil {
		return nil, err
	}
	r, ok := cat.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRecord, key)
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return detail.Format(r, sess.Query.Active(), sess.View.Options(key)), nil
}

// Record returns the fully expanded detail view of a record, highlighted
// for the clauses of a URL state query string.
func (s *Service) Record(_ context.Context, key, rawQuery string) (*detail.Detail, error) {
	cat, err := s.Catalogue()
	if err != nil {
		return nil, err
	}
	r, ok := cat.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRecord, key)
	}
	q, _, err := facet.DecodeQuery(rawQuery)
	if err != nil {
		return nil, err
	}
	return detail.Format(r, q.Active(), detail.Options{ExpandAll: true, OpenPanels: true}), nil
}

// Search draws one page for a URL state query string without a session.
func (s *Service) Search(_ context.Context, rawQuery string, start, length int) (*View, error) {
	cat, err := s.Catalogue()
	if err != nil {
		return nil, err
	}
	sess := session.New()
	sess.ID = ""
	sess.Query, sess.Facets, err = facet.DecodeQuery(rawQuery)
	if err != nil {
		return nil, err
	}
	sess.Start = max(start, 0)
	if length != 0 {
		sess.Length = length
	}
	return draw(cat, sess, Event{Type: Refresh})
}

// Options lists the values offered by the query builder and the facets.
func (s *Service) Options() (*Options, error) {
	cat, err := s.Catalogue()
	if err != nil {
		return nil, err
	}
	return &Options{
		Fields:          search.Fields,
		Persons:         cat.Persons(),
		Places:          cat.Places(),
		Functions:       cat.Functions(),
		ShelfmarkGroups: cat.ShelfmarkGroups(),
		PhysicalTypes:   []facet.PhysicalType{facet.AnyType, facet.PrintType, facet.ManuscriptType},
		Fundamenta:      []facet.FundamentaChoice{facet.AnyFundamenta, facet.FundamentaYes, facet.FundamentaNo},
		MinYear:         facet.MinYear,
		MaxYear:         facet.MaxYear,
		Lengths:         grid.Lengths,
		MaxRows:         search.MaxRows,
	}, nil
}

// draw applies ev, draws the grid once and runs the post-draw work of the
// event's generation.
func draw(cat *catalogue.Catalogue, sess *session.Session, ev Event) (*View, error) {
	sess.Normalize()
	gen := sess.View.Bump()

	var (
		queue   view.Queue
		page    grid.Page
		clauses []search.Clause
	)
	queue.Schedule(gen, func() {
		sess.View.PostDraw(page.Records(), clauses)
	})
	if err := reduce(cat, sess, ev, gen, &queue, &page); err != nil {
		return nil, err
	}

	clauses = sess.Query.Active()
	sess.View.ObserveTerms(search.Signature(clauses))

	table := grid.NewTable(grid.TableID, cat.Records(), grid.Columns(func() []search.Clause { return clauses }), nil)
	table.Filter(grid.Predicate(clauses, sess.Facets))
	page = table.Draw(grid.Request{Start: sess.Start, Length: sess.Length, Order: sess.Order})
	sess.Start = page.Start

	queue.Flush(gen)

	return project(sess, table, page, clauses)
}
