package routing

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikyriazi/elaute-api/pkg/browse"
	"github.com/ikyriazi/elaute-api/pkg/catalogue"
	"github.com/ikyriazi/elaute-api/pkg/search"
	"github.com/ikyriazi/elaute-api/pkg/session"
)

const secret = "test-secret"

func setup(t *testing.T, loaded bool) humatest.TestAPI {
	t.Helper()
	svc := browse.NewService(session.NewMemoryStore(time.Hour))
	if loaded {
		svc.SetCatalogue(catalogue.New([]*catalogue.Record{
			{ID: "s/1", Title: "Liederbuch", PhysicalType: "print"},
			{ID: "s/2", Title: "Lautenbuch", AlternativeTitle: "Liederbuch der Minne", PhysicalType: "manuscript"},
		}))
	}
	_, api := humatest.New(t)
	Setup(api, Deps{
		Browse: svc,
		Secret: secret,
		Reload: func(ctx context.Context) error { return nil },
	})
	return api
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v))
	return v
}

func token(t *testing.T, scope string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "admin", "scope": scope}).SignedString([]byte(secret))
	require.NoError(t, err)
	return "Authorization: Bearer " + s
}

func TestHealthCheck(t *testing.T) {
	api := setup(t, false)
	resp := api.Get("/healthz")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "OK", resp.Body.String())
}

func TestNotLoaded(t *testing.T) {
	api := setup(t, false)
	assert.Equal(t, http.StatusServiceUnavailable, api.Get("/v1/records").Code)
	assert.Equal(t, http.StatusServiceUnavailable, api.Get("/v1/options").Code)
	assert.Equal(t, http.StatusServiceUnavailable, api.Post("/v1/sessions", map[string]any{}).Code)
}

func TestSearchRecords(t *testing.T) {
	api := setup(t, true)
	resp := api.Get("/v1/records?title=liederbuch&length=10")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	v := decode[browse.View](t, resp.Body.Bytes())
	assert.Equal(t, 2, v.RecordsTotal)
	assert.Equal(t, 2, v.RecordsDisplay)
	assert.Equal(t, 10, v.Length)
	require.Len(t, v.Rows, 2)
	assert.NotEmpty(t, v.Rows[1].DetailHTML, "alternative title match opens the row")

	assert.Equal(t, http.StatusUnprocessableEntity, api.Get("/v1/records?length=7").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, api.Post("/v1/sessions", map[string]any{"query": "title=%zz"}).Code)
}

func TestSearchKeepsClauseOrder(t *testing.T) {
	api := setup(t, true)
	resp := api.Get("/v1/records?title=lieder&all=buch")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	v := decode[browse.View](t, resp.Body.Bytes())
	assert.Equal(t, "title=lieder&all=buch", v.QueryString)

	many := strings.Repeat("title=lied&", search.MaxRows) + "all=buch"
	assert.Equal(t, http.StatusUnprocessableEntity, api.Get("/v1/records?"+many).Code)
}

func TestGetRecord(t *testing.T) {
	api := setup(t, true)
	resp := api.Get("/v1/records/2?title=minne")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), `search-highlight`)

	assert.Equal(t, http.StatusNotFound, api.Get("/v1/records/9").Code)
}

func TestSessionLifecycle(t *testing.T) {
	api := setup(t, true)

	resp := api.Post("/v1/sessions", map[string]any{"query": "type=print"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	v := decode[browse.View](t, resp.Body.Bytes())
	require.NotEmpty(t, v.Session)
	assert.Equal(t, 1, v.RecordsDisplay)
	assert.Equal(t, "1 filter", v.Summary.Text)

	resp = api.Post("/v1/sessions/"+v.Session+"/events", map[string]any{"type": "resetFacets"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	v = decode[browse.View](t, resp.Body.Bytes())
	assert.Equal(t, 2, v.RecordsDisplay)

	resp = api.Post("/v1/sessions/"+v.Session+"/events", map[string]any{"type": "toggleRow", "record": "1"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = api.Get("/v1/sessions/" + v.Session + "/records/1")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), "details-table")

	resp = api.Post("/v1/sessions/"+v.Session+"/events", map[string]any{"type": "toggleRow", "record": "9"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
	resp = api.Post("/v1/sessions/"+v.Session+"/events", map[string]any{"type": "explode"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	// the session id is enough to end the session
	assert.Equal(t, http.StatusNoContent, api.Delete("/v1/sessions/"+v.Session).Code)
	assert.Equal(t, http.StatusNotFound, api.Get("/v1/sessions/"+v.Session).Code)
}

func TestReloadRequiresToken(t *testing.T) {
	api := setup(t, true)
	assert.Equal(t, http.StatusUnauthorized, api.Post("/v1/statistics/sync").Code)
	assert.Equal(t, http.StatusUnauthorized, api.Post("/v1/statistics/sync", "Authorization: Bearer nonsense").Code)
	assert.Equal(t, http.StatusForbidden, api.Post("/v1/statistics/sync", token(t, "sessions:read")).Code)
	assert.Equal(t, http.StatusAccepted, api.Post("/v1/statistics/sync", token(t, "profile "+ReloadScope)).Code)

	other, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"scope": ReloadScope}).SignedString([]byte("other"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, api.Post("/v1/statistics/sync", "Authorization: Bearer "+other).Code)
}

func TestSchemaNamesAreDistinct(t *testing.T) {
	api := setup(t, false)
	schemas := api.OpenAPI().Components.Schemas.Map()
	for _, name := range []string{"View", "PageRow", "QueryRow", "Row", "Detail"} {
		assert.Contains(t, schemas, name)
	}
}
