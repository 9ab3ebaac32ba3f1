package main

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikyriazi/elaute-api/pkg/catalogue"
)

func testCatalogue(t *testing.T) *catalogue.Catalogue {
	t.Helper()
	cat, err := catalogue.Load(context.Background(), "../../pkg/catalogue/testdata/catalogue.json", catalogue.DefaultRecordsPath, catalogue.FetchOptions{})
	require.NoError(t, err)
	return cat
}

func TestMark(t *testing.T) {
	assert.Equal(t, "Lautenbuch", mark("Lautenbuch", ""))
	assert.Equal(t, "Lautenbuch", mark("Lautenbuch", "minne"))
	assert.Contains(t, mark("Liederbuch der Minne", "minne"), "Minne")
}

func TestSearchCatalogue(t *testing.T) {
	cat := testCatalogue(t)

	out, err := searchCatalogue(context.Background(), cat, url.Values{"all": {"lautenbuch"}}, 10)
	require.NoError(t, err)
	assert.Contains(t, out, "2 of 3 records")
	assert.Contains(t, out, "All fields: \"lautenbuch\"")
	assert.Contains(t, out, "Short title")
	assert.Contains(t, out, "Gerle 1533")

	out, err = searchCatalogue(context.Background(), cat, url.Values{"title": {"nothing like this"}}, 10)
	require.NoError(t, err)
	assert.Contains(t, out, "No matching records")
}

func TestRenderOptions(t *testing.T) {
	out := renderOptions(testCatalogue(t))
	assert.Contains(t, out, "Gerle, Hans")
	assert.Contains(t, out, "München")
	assert.Contains(t, out, catalogue.EmptyFunction)
	assert.Contains(t, out, "AT — Austria")
}
