package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/ikyriazi/elaute-api/pkg/catalogue"
)

// loadCatalogue loads the document named by the global flags.
func loadCatalogue(ctx context.Context, c *cli.Command) (*catalogue.Catalogue, error) {
	source := c.String("source")
	if source == "" {
		return nil, errors.New("no catalogue source: set --source or CATALOGUE_SOURCE")
	}
	path := c.String("records-path")
	if path == "" {
		path = catalogue.DefaultRecordsPath
	}

	cat, err := catalogue.Load(ctx, source, path, catalogue.FetchOptions{
		Retries: c.Int("retries"),
		Timeout: 30 * time.Second,
		Logger:  slog.Default(),
	})
	if err != nil {
		return nil, fmt.Errorf("loading catalogue: %w", err)
	}
	if n := cat.Skipped(); n > 0 {
		slog.Warn("Skipped malformed records", "count", n)
	}
	return cat, nil
}
