package highlight

import (
	"testing"

	"github.com/ikyriazi/elaute-api/pkg/textnorm"
	"github.com/stretchr/testify/assert"
)

func mark(s string) string {
	return `<mark class="search-highlight">` + s + `</mark>`
}

func TestHighlightUnchanged(t *testing.T) {
	for _, markup := range []string{"", "Liederbuch", "Liederbuch <i>der</i> Minne", "<b>x</b"} {
		assert.Equal(t, markup, Highlight(markup, ""), markup)
		assert.Equal(t, markup, Highlight(markup, "   "), markup)
		assert.Equal(t, markup, Highlight(markup, "lautenbuch"), markup)
	}
}

func TestHighlight(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		term   string
		want   string
	}{
		{"plain", "Liederbuch", "lieder", mark("Lieder") + "buch"},
		{"every occurrence", "Lied und Lied", "lied", mark("Lied") + " und " + mark("Lied")},
		{"across tags", "Liederbuch <i>der</i> Minne", "der Minne", "Liederbuch <i>" + mark("der") + "</i>" + mark(" Minne")},
		{"umlaut in text", "Gedruckt in München", "muenchen", "Gedruckt in " + mark("München")},
		{"umlaut in term", "Muenchen", "München", mark("Muenchen")},
		{"overlapping", "aaa", "aa", mark("aaa")},
		{"attributes untouched", `<a href="lied.html">Lied</a>`, "lied", `<a href="lied.html">` + mark("Lied") + `</a>`},
		{"entities", "Tom &amp; Jerry", "jerry", "Tom &amp; " + mark("Jerry")},
		{"literal e after vowel", "Samuel Bauer", "er", "Samuel Bau" + mark("er")},
		{"term inside digraph", "Quelle", "elle", "Qu" + mark("elle")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Highlight(tt.markup, tt.term))
		})
	}
}

func TestHighlightMatchesAreRealMatches(t *testing.T) {
	plain := "Das Lautenbuch des Hans Gerle, Nürnberg"
	for _, term := range []string{"nuernberg", "gerle", "des", "e", "ue", "rn"} {
		for _, s := range Spans(plain, term) {
			assert.True(t, textnorm.Contains(plain[s.Start:s.End], term), "%q in %q", term, plain[s.Start:s.End])
		}
	}
}

func TestSpans(t *testing.T) {
	assert.Equal(t, []textnorm.Span{{Start: 0, End: 8}}, Spans("Muenchen", "münchen"))
	assert.Nil(t, Spans("Muenchen", ""))
	assert.Nil(t, Spans("Muenchen", "köln"))
}

func TestWhole(t *testing.T) {
	assert.Equal(t, "<i>"+mark("Augsburg")+"</i>", Whole("<i>Augsburg</i>"))
	assert.Equal(t, "", Whole(""))
}
