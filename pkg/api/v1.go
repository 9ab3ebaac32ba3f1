package routing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ikyriazi/elaute-api/pkg/browse"
	"github.com/ikyriazi/elaute-api/pkg/catalogue"
	"github.com/ikyriazi/elaute-api/pkg/detail"
	"github.com/ikyriazi/elaute-api/pkg/facet"
	"github.com/ikyriazi/elaute-api/pkg/search"
	"github.com/ikyriazi/elaute-api/pkg/session"
	"github.com/ikyriazi/elaute-api/pkg/sync"
)

// Deps are the services behind the operations.
type Deps struct {
	Browse *browse.Service
	// Reload loads the catalogue again. Nil disables the operation.
	Reload func(ctx context.Context) error
	// Secret protects the bearerAuth operations. Empty leaves them open.
	Secret string
}

type PlainOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

type StatsOutput struct {
	Body catalogue.CachedStats
}

type SyncStatsOutput struct {
	Body sync.Status
}

type OptionsOutput struct {
	Body browse.Options
}

type ViewOutput struct {
	Body *browse.View
}

type DetailOutput struct {
	Body struct {
		Detail *detail.Detail `json:"detail"`
		HTML   string         `json:"html"`
	}
}

// RecordsInput keeps the raw URL state query string next to the paging
// parameters.
type RecordsInput struct {
	rawQuery string
	Start  int `query:"start" default:"0" minimum:"0" doc:"First row of the page"`
	Length int `query:"length" default:"25" enum:"10,25,50,100,-1" doc:"Page length, -1 for all rows"`
}

func (i *RecordsInput) Resolve(ctx huma.Context) []error {
	u := ctx.URL()
	i.rawQuery = u.RawQuery
	return nil
}

type RecordInput struct {
	rawQuery string
	ID     string `path:"id" doc:"Record key, e.g. A-Wn-18688"`
}

func (i *RecordInput) Resolve(ctx huma.Context) []error {
	u := ctx.URL()
	i.rawQuery = u.RawQuery
	return nil
}

type CreateSessionInput struct {
	Body struct {
		Query string `json:"query,omitempty" doc:"URL state query string, e.g. title=liederbuch&type=print"`
	}
}

type SessionInput struct {
	ID string `path:"id" format:"uuid" doc:"Session id"`
}

type EventInput struct {
	ID   string `path:"id" format:"uuid" doc:"Session id"`
	Body browse.Event
}

type SessionRecordInput struct {
	ID       string `path:"id" format:"uuid" doc:"Session id"`
	RecordID string `path:"recordId" doc:"Record key"`
}

// toHumaError maps service errors to HTTP errors.
func toHumaError(err error) error {
	switch {
	case errors.Is(err, browse.ErrNotLoaded):
		return huma.Error503ServiceUnavailable("catalogue is not loaded, please retry later")
	case errors.Is(err, session.ErrNotFound):
		return huma.Error404NotFound("session not found", err)
	case errors.Is(err, browse.ErrUnknownRecord):
		return huma.Error404NotFound("record not found", err)
	case errors.Is(err, browse.ErrUnknownEvent),
		errors.Is(err, browse.ErrInvalidEvent),
		errors.Is(err, facet.ErrInvalidQuery),
		errors.Is(err, search.ErrTooManyClauses),
		errors.Is(err, search.ErrLastClause),
		errors.Is(err, search.ErrUnknownClause):
		return huma.Error422UnprocessableEntity(err.Error(), err)
	}
	slog.Error("Request failed", "error", err)
	return huma.Error500InternalServerError("internal error", err)
}

func detailOutput(d *detail.Detail) (*DetailOutput, error) {
	html, err := d.Render()
	if err != nil {
		return nil, toHumaError(err)
	}
	resp := &DetailOutput{}
	resp.Body.Detail = d
	resp.Body.HTML = html
	return resp, nil
}

func Setup(api huma.API, deps Deps) {
	api.UseMiddleware(authMiddleware(api, deps.Secret))
	svc := deps.Browse

	huma.Register(api, huma.Operation{
		OperationID: "HealthCheck",
		Method:      "GET",
		Path:        "/healthz",
		Summary:     "Health check",
		Description: "Check if the API is running",
		Tags:        []string{"Health"},
	}, func(ctx context.Context, input *struct{}) (*PlainOutput, error) {
		return &PlainOutput{
			ContentType: "text/plain",
			Body:        []byte("OK"),
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "GetStatistics",
		Method:      "GET",
		Path:        "/v1/statistics",
		Summary:     "Get statistics",
		Description: "Get statistics about the loaded catalogue",
		Tags:        []string{"Statistics"},
	}, func(ctx context.Context, input *struct{}) (*StatsOutput, error) {
		stats := catalogue.GetCachedStats()
		if stats == nil {
			c, err := svc.Catalogue()
			if err == nil {
				status := sync.GetStats()
				loadedAt := time.Now().UTC()
				if status.LoadedAt != nil {
					loadedAt = *status.LoadedAt
				}
				go catalogue.ComputeAndCacheStats(c, status.Source, loadedAt, false)
			}
			return nil, huma.Error503ServiceUnavailable("catalogue is loading or stats are being computed, please retry later")
		}
		return &StatsOutput{
			Body: *stats,
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "GetSyncStatistics",
		Method:      "GET",
		Path:        "/v1/statistics/sync",
		Summary:     "Get load statistics",
		Description: "Get the state of the catalogue load",
		Tags:        []string{"Statistics"},
	}, func(ctx context.Context, input *struct{}) (*SyncStatsOutput, error) {
		resp := &SyncStatsOutput{}
		resp.Body = sync.GetStats()
		return resp, nil
	})

	if deps.Reload != nil {
		huma.Register(api, huma.Operation{
			OperationID:   "ReloadCatalogue",
			Method:        "POST",
			Path:          "/v1/statistics/sync",
			Summary:       "Reload the catalogue",
			Description:   "Fetch the catalogue document again. Sessions keep their state.",
			Tags:          []string{"Statistics"},
			DefaultStatus: 202,
			Security:      []map[string][]string{{"bearerAuth": {ReloadScope}}},
		}, func(ctx context.Context, input *struct{}) (*SyncStatsOutput, error) {
			if err := deps.Reload(ctx); err != nil {
				if errors.Is(err, sync.ErrAlreadyRunning) {
					return nil, huma.Error409Conflict("catalogue load already running")
				}
				return nil, huma.Error502BadGateway("catalogue load failed", err)
			}
			return &SyncStatsOutput{Body: sync.GetStats()}, nil
		})
	}

	huma.Register(api, huma.Operation{
		OperationID: "GetOptions",
		Method:      "GET",
		Path:        "/v1/options",
		Summary:     "Get search options",
		Description: "Get the search fields, list choices, shelfmark groups and facet bounds",
		Tags:        []string{"Search"},
	}, func(ctx context.Context, input *struct{}) (*OptionsOutput, error) {
		o, err := svc.Options()
		if err != nil {
			return nil, toHumaError(err)
		}
		return &OptionsOutput{Body: *o}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "SearchRecords",
		Method:      "GET",
		Path:        "/v1/records",
		Summary:     "Search records",
		Description: "Draw one page of records for URL state parameters (all, title, person, person.list, place, place.list, id, desc, bib, from, to, type, fundamenta, shelfmark, shelfmarkOp, function, functionOp)",
		Tags:        []string{"Search"},
	}, func(ctx context.Context, input *RecordsInput) (*ViewOutput, error) {
		v, err := svc.Search(ctx, input.rawQuery, input.Start, input.Length)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ViewOutput{Body: v}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "GetRecord",
		Method:      "GET",
		Path:        "/v1/records/{id}",
		Summary:     "Get a record",
		Description: "Get the detail view of a record, highlighted for the URL state parameters",
		Tags:        []string{"Search"},
	}, func(ctx context.Context, input *RecordInput) (*DetailOutput, error) {
		d, err := svc.Record(ctx, input.ID, input.rawQuery)
		if err != nil {
			return nil, toHumaError(err)
		}
		return detailOutput(d)
	})

	huma.Register(api, huma.Operation{
		OperationID:   "CreateSession",
		Method:        "POST",
		Path:          "/v1/sessions",
		Summary:       "Create a session",
		Description:   "Start a browsing session, optionally from a URL state query string",
		Tags:          []string{"Sessions"},
		DefaultStatus: 201,
	}, func(ctx context.Context, input *CreateSessionInput) (*ViewOutput, error) {
		v, err := svc.Create(ctx, input.Body.Query)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ViewOutput{Body: v}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "GetSession",
		Method:      "GET",
		Path:        "/v1/sessions/{id}",
		Summary:     "Get a session",
		Description: "Draw the current page of a session",
		Tags:        []string{"Sessions"},
	}, func(ctx context.Context, input *SessionInput) (*ViewOutput, error) {
		v, err := svc.Get(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ViewOutput{Body: v}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "ApplyEvent",
		Method:      "POST",
		Path:        "/v1/sessions/{id}/events",
		Summary:     "Apply an event",
		Description: "Apply one interaction to a session and draw it again",
		Tags:        []string{"Sessions"},
	}, func(ctx context.Context, input *EventInput) (*ViewOutput, error) {
		v, err := svc.Apply(ctx, input.ID, input.Body)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ViewOutput{Body: v}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "GetSessionRecord",
		Method:      "GET",
		Path:        "/v1/sessions/{id}/records/{recordId}",
		Summary:     "Get a record of a session",
		Description: "Get the detail view of a record as shown in a session",
		Tags:        []string{"Sessions"},
	}, func(ctx context.Context, input *SessionRecordInput) (*DetailOutput, error) {
		d, err := svc.Detail(ctx, input.ID, input.RecordID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return detailOutput(d)
	})

	huma.Register(api, huma.Operation{
		OperationID:   "DeleteSession",
		Method:        "DELETE",
		Path:          "/v1/sessions/{id}",
		Summary:       "Delete a session",
		Description:   "End a session. The session id is all a client needs to end its own session.",
		Tags:          []string{"Sessions"},
		DefaultStatus: 204,
	}, func(ctx context.Context, input *SessionInput) (*struct{}, error) {
		if err := svc.Delete(ctx, input.ID); err != nil {
			return nil, toHumaError(err)
		}
		return nil, nil
	})
}
