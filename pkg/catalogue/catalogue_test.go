package catalogue

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) *Catalogue {
	t.Helper()
	doc, err := os.ReadFile("testdata/catalogue.json")
	require.NoError(t, err)
	c, err := Parse(doc, DefaultRecordsPath)
	require.NoError(t, err)
	return c
}

func TestParse(t *testing.T) {
	c := loadFixture(t)

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 1, c.Skipped())

	r, ok := c.Get("A-Wn-18688")
	require.True(t, ok)
	assert.Equal(t, "Gerle, Hans", r.Author.Normalized())
	assert.Equal(t, "Nürnberg", r.PrintPlace.String())
	assert.True(t, r.IsFundamenta())
	assert.Len(t, r.Function, 1)

	_, ok = c.Get("undated")
	assert.True(t, ok, "trailing slash is ignored for the key")
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse([]byte("{"), DefaultRecordsPath)
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestParseMissingCollection(t *testing.T) {
	c, err := Parse([]byte(`{"items": []}`), DefaultRecordsPath)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestParseCustomPath(t *testing.T) {
	c, err := Parse([]byte(`{"data": {"sources": [{"id": "x/1"}, {"id": "x/2"}]}}`), "data.sources")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
}

func TestOneOrMany(t *testing.T) {
	var r Record
	require.NoError(t, json.Unmarshal([]byte(`{"id": "a", "provenance": {"label": "Wien"}, "otherRism": null}`), &r))
	require.Len(t, r.Provenance, 1)
	assert.Equal(t, "Wien", r.Provenance[0].Label)
	assert.Nil(t, r.OtherRISM)

	require.NoError(t, json.Unmarshal([]byte(`{"id": "a", "provenance": [{"label": "Wien"}, {"label": "Graz"}]}`), &r))
	assert.Len(t, r.Provenance, 2)
}

func TestRecordAccessors(t *testing.T) {
	c := loadFixture(t)

	gerle, _ := c.Get("A-Wn-18688")
	year, ok := gerle.EarliestYear()
	assert.True(t, ok)
	assert.Equal(t, 1533, year)
	assert.Equal(t, []string{"SA.76.F.24"}, gerle.ShelfmarkLabels())
	assert.Equal(t, []string{"1533/2"}, gerle.RISMLabels())
	assert.Nil(t, gerle.VD16Labels())

	minne, _ := c.Get("D-Mbs-266")
	year, ok = minne.EarliestYear()
	assert.True(t, ok, "numeric date values are accepted")
	assert.Equal(t, 1540, year)
	assert.False(t, minne.IsFundamenta())
	assert.Equal(t, "1540", minne.Brown.String())
	assert.Equal(t, []string{"Mus.ms. 266", "Cod. 12"}, minne.ShelfmarkLabels())

	undated, _ := c.Get("undated")
	_, ok = undated.EarliestYear()
	assert.False(t, ok)
	assert.Equal(t, []string{EmptyFunction}, undated.FunctionLabels())
	assert.Equal(t, "", undated.Author.String())
}

func TestDerivedLists(t *testing.T) {
	c := loadFixture(t)

	assert.Equal(t, []string{"Gerle, Hans"}, c.Persons())
	assert.Equal(t, []string{"Augsburg", "München", "Nürnberg"}, c.Places())
	assert.Equal(t, []string{"Anthology", "Tablature", EmptyFunction}, c.Functions())

	groups := c.ShelfmarkGroups()
	require.Len(t, groups, 3)
	assert.Equal(t, "AT", groups[0].Key)
	assert.Equal(t, "AT — Austria", groups[0].Heading)
	assert.Equal(t, "D-Mbs", groups[1].Key)
	assert.Equal(t, []string{"Cod. 12"}, groups[1].Labels)
	assert.Equal(t, "DE", groups[2].Key)
}

func TestReferenceText(t *testing.T) {
	ref := Reference{
		ReferenceSource: &ReferenceSource{BookShort: "Brown 1965", ReferencebookType: CatalogueBook},
		ReferencePages:  "p. 45",
	}
	assert.Equal(t, "Brown 1965 p. 45", ref.Text())
	assert.Equal(t, CatalogueBook, ref.BookType())
	assert.Equal(t, "", Reference{}.BookShort())
}

func TestFetchFile(t *testing.T) {
	doc, err := Fetch(context.Background(), "file://testdata/catalogue.json", FetchOptions{})
	require.NoError(t, err)
	assert.Contains(t, string(doc), "@graph")

	_, err = Fetch(context.Background(), "", FetchOptions{})
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestFetchHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/catalogue.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"@graph": [{"id": "s/1", "title": "Lautenbuch"}]}`))
	}))
	defer srv.Close()

	c, err := Load(context.Background(), srv.URL+"/catalogue.json", DefaultRecordsPath, FetchOptions{Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	_, err = Fetch(context.Background(), srv.URL+"/missing.json", FetchOptions{Timeout: time.Second})
	assert.Error(t, err)
}

func TestStatsCache(t *testing.T) {
	InvalidateStatsCache()
	assert.False(t, HasCachedStats())
	assert.Nil(t, GetCachedStats())

	c := loadFixture(t)
	stats := ComputeAndCacheStats(c, "testdata/catalogue.json", time.Unix(0, 0), true)
	require.NotNil(t, stats)
	assert.True(t, HasCachedStats())

	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, 2, stats.Dated)
	assert.Equal(t, 1533, stats.EarliestYear)
	assert.Equal(t, 1540, stats.LatestYear)
	assert.Equal(t, 1, stats.Fundamenta)
	assert.Equal(t, 3, stats.Shelfmarks)
	assert.Equal(t, TypeCount{Type: "Tablature", Count: 2}, stats.Functions[0])

	assert.Same(t, stats, GetCachedStats())
	InvalidateStatsCache()
	assert.Nil(t, GetCachedStats())
}

func TestNewKeepsDuplicateKeysAddressable(t *testing.T) {
	c := New([]*Record{
		{ID: "https://e-laute.info/a/7", Title: "First"},
		{ID: "https://e-laute.info/b/7", Title: "Second"},
		{ID: "https://e-laute.info/c/7-2", Title: "Third"},
		{ID: "", Title: "Unkeyed"},
	})

	var keys []string
	for _, r := range c.Records() {
		keys = append(keys, r.Key())
	}
	assert.Equal(t, []string{"7", "7-2", "7-2-2", "record-4"}, keys)

	for _, r := range c.Records() {
		got, ok := c.Get(r.Key())
		require.True(t, ok, r.Key())
		assert.Same(t, r, got)
	}
}
