package catalogue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"
)

// DefaultRecordsPath is the gjson path of the record collection in the
// catalogue document.
const DefaultRecordsPath = `\@graph`

var (
	ErrInvalidDocument = errors.New("catalogue document is not valid JSON")
	ErrNoSource        = errors.New("no catalogue source configured")
)

// FetchOptions configures Fetch.
type FetchOptions struct {
	Retries int
	Timeout time.Duration
	Logger  *slog.Logger
}

// Fetch reads the catalogue document from an http(s) URL or a local file.
func Fetch(ctx context.Context, source string, opts FetchOptions) ([]byte, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, ErrNoSource
	}

	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		data, err := os.ReadFile(strings.TrimPrefix(source, "file://"))
		if err != nil {
			return nil, fmt.Errorf("cannot read catalogue file: %w", err)
		}
		return data, nil
	}

	// concurrent fetches of the same URL share one download
	v, err, shared := fetches.Do(source, func() (interface{}, error) {
		return fetchHTTP(ctx, source, opts)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("Catalogue download shared", "source", source)
	}
	return v.([]byte), nil
}

var fetches singleflight.Group

func fetchHTTP(ctx context.Context, source string, opts FetchOptions) ([]byte, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := retryablehttp.NewClient()
	client.RetryMax = opts.Retries
	client.Logger = logger
	if opts.Timeout > 0 {
		client.HTTPClient.Timeout = opts.Timeout
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot build catalogue request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/ld+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch catalogue: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot fetch catalogue: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("cannot read catalogue response: %w", err)
	}
	return data, nil
}

// Parse extracts the records found at recordsPath. A missing collection
// yields an empty catalogue; entries that cannot be decoded are skipped.
func Parse(doc []byte, recordsPath string) (*Catalogue, error) {
	if !gjson.ValidBytes(doc) {
		return nil, ErrInvalidDocument
	}
	if recordsPath == "" {
		recordsPath = DefaultRecordsPath
	}

	result := gjson.GetBytes(doc, recordsPath)
	if !result.Exists() {
		slog.Warn("catalogue document has no records", "path", recordsPath)
		return New(nil), nil
	}

	var records []*Record
	skipped := 0
	decode := func(value gjson.Result) {
		if !value.IsObject() {
			skipped++
			return
		}
		var r Record
		if err := json.Unmarshal([]byte(value.Raw), &r); err != nil {
			slog.Warn("skipping undecodable catalogue record", "id", value.Get("id").String(), "error", err)
			skipped++
			return
		}
		records = append(records, &r)
	}

	if result.IsArray() {
		result.ForEach(func(_, value gjson.Result) bool {
			decode(value)
			return true
		})
	} else {
		decode(result)
	}

	c := New(records)
	c.skipped = skipped
	return c, nil
}

// Load fetches and parses the catalogue.
func Load(ctx context.Context, source, recordsPath string, opts FetchOptions) (*Catalogue, error) {
	doc, err := Fetch(ctx, source, opts)
	if err != nil {
		return nil, err
	}
	return Parse(doc, recordsPath)
}
