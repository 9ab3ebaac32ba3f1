package sync

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ikyriazi/elaute-api/pkg/catalogue"
)

var ErrAlreadyRunning = errors.New("catalogue load already running")

// Options configures Sync.
type Options struct {
	Source      string
	RecordsPath string
	Fetch       catalogue.FetchOptions
}

// Sync fetches and parses the catalogue once. On failure the error is
// logged and recorded in the stats; the caller keeps serving whatever was
// loaded before.
func Sync(ctx context.Context, opts Options) (*catalogue.Catalogue, error) {
	s := GetStatsInstance()
	if err := s.StartSync(opts.Source); err != nil {
		return nil, err
	}

	slog.Info("Loading catalogue", "source", opts.Source)
	c, err := catalogue.Load(ctx, opts.Source, opts.RecordsPath, opts.Fetch)
	if err != nil {
		slog.Error("Catalogue load failed", "source", opts.Source, "error", err)
		s.EndSync(nil, err)
		return nil, err
	}

	slog.Info("Catalogue loaded", "records", c.Len(), "skipped", c.Skipped())
	s.EndSync(c, nil)
	return c, nil
}
