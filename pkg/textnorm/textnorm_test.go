package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUmlautVariantsFoldTogether(t *testing.T) {
	groups := [][]string{
		{"München", "Muenchen", "MUENCHEN", "munchen", "München"},
		{"Mädchen", "Maedchen", "madchen", "MÄDCHEN"},
		{"Köln", "Koeln", "koln", "KÖLN"},
		{"Lübeck", "Luebeck", "lubeck"},
	}

	for _, group := range groups {
		want := Normalize(group[0])
		for _, v := range group[1:] {
			assert.Equal(t, want, Normalize(v), "variant %q of %q", v, group[0])
		}
	}
}

func TestFoldIsIdempotent(t *testing.T) {
	for _, s := range []string{"München", "Maeee", "Ueberlingen", "Poet", "Æsop", "Ölmühle", "", "aeoeue"} {
		once := Fold(s).Text
		assert.Equal(t, once, Fold(once).Text, s)
		assert.Equal(t, Normalize(s), Normalize(Normalize(s)), s)
	}
}

func TestFoldLeavesOtherCharacters(t *testing.T) {
	assert.Equal(t, "élan à là", Fold("Élan À là").Text)
	assert.Equal(t, "åsa", Fold("Åsa").Text)
	assert.Equal(t, "straße", Fold("Straße").Text)
}

func TestFoldSpans(t *testing.T) {
	f := Fold("Muenchen")
	assert.Equal(t, "munchen", f.Text)
	// "ue" collapses into one rune covering both bytes
	assert.Equal(t, Span{Start: 1, End: 3}, f.Spans[1])
	assert.Equal(t, Span{Start: 7, End: 8}, f.Spans[len(f.Spans)-1])

	f = Fold("Mü")
	assert.Equal(t, "mu", f.Text)
	assert.Equal(t, Span{Start: 1, End: 3}, f.Spans[1])
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "Liederbuch der Minne", StripHTML("Liederbuch <i>der</i> Minne"))
	assert.Equal(t, "Tom & Jerry", StripHTML("Tom &amp; Jerry"))
	assert.Equal(t, "plain", StripHTML("plain"))
	assert.Equal(t, "a < b", StripHTML("a < b"))
	assert.Equal(t, "", StripHTML(""))
}

func TestContains(t *testing.T) {
	assert.True(t, Contains("Gedruckt zu <i>München</i>", "muenchen"))
	assert.True(t, Contains("Muenchen", "München"))
	assert.True(t, Contains("LIEDERBUCH", "liederbuch"))
	assert.False(t, Contains("Liederbuch", "lautenbuch"))
	assert.False(t, Contains("Liederbuch", ""))
	assert.False(t, Contains("Liederbuch", "   "))
	assert.False(t, Contains("", "a"))
}

func TestContainsAny(t *testing.T) {
	assert.True(t, ContainsAny("koeln", "Augsburg", "Köln"))
	assert.False(t, ContainsAny("koeln", "Augsburg", ""))
	assert.False(t, ContainsAny("", "Augsburg"))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("Muenchen-Upper", "muenchen-upper"))
	assert.False(t, Equal("muenchen-upper", "munchen"))
	assert.False(t, Equal("munchen", "muenchen"))
	assert.False(t, Equal("", ""))
}

func TestContainsKeepsTextLiteral(t *testing.T) {
	tests := []struct {
		haystack string
		needle   string
	}{
		{"Quelle der Lieder", "elle"},
		{"Samuel Bauer", "el"},
		{"Samuel Bauer", "er"},
		{"Samuel Bauer", "uel"},
		{"Poet", "et"},
		{"Michael", "hael"},
	}

	for _, tt := range tests {
		assert.True(t, Contains(tt.haystack, tt.needle), "%q in %q", tt.needle, tt.haystack)
	}
}

func TestContainsFoldsTermSpellings(t *testing.T) {
	for _, hay := range []string{"München", "Muenchen", "Munchen", "MUENCHEN"} {
		for _, needle := range []string{"münchen", "muenchen", "munchen", "MÜN"} {
			assert.True(t, Contains(hay, needle), "%q in %q", needle, hay)
		}
	}
	assert.True(t, Contains("Köln", "koeln"))
	assert.True(t, Contains("Koeln", "köln"))
	assert.True(t, Contains("Mädchen", "maedchen"))
	assert.False(t, Contains("Muenchen", "mienchen"))
}

func TestPatternFind(t *testing.T) {
	assert.Equal(t, []Span{{Start: 0, End: 8}}, Compile("münchen").Find("Muenchen"))
	assert.Equal(t, []Span{{Start: 0, End: 8}}, Compile("muenchen").Find("München"))
	assert.Equal(t, []Span{{Start: 4, End: 6}}, Compile("el").Find("Samuel"))
	// a plain vowel prefers the single rune, an umlaut the digraph
	assert.Equal(t, []Span{{Start: 0, End: 2}}, Compile("mu").Find("Muenchen"))
	assert.Equal(t, []Span{{Start: 0, End: 3}}, Compile("mü").Find("Muenchen"))
	assert.Equal(t, []Span{{Start: 0, End: 2}, {Start: 1, End: 3}}, Compile("aa").Find("aaa"))
	assert.Nil(t, Compile("  ").Find("aaa"))
	assert.True(t, Compile("").Empty())
}
