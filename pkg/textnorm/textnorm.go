// Package textnorm turns catalogue values into a comparable form.
//
// Comparison is case-insensitive and folds the German umlaut spellings onto
// their base vowel, so that "München", "Muenchen" and "munchen" compare equal.
// Markup is projected to its plain text before folding.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Span is the byte range [Start, End) of the original text a folded rune
// was produced from.
type Span struct {
	Start int
	End   int
}

// Folded is the comparable form of a text. Runes[i] was produced from the
// original bytes Spans[i].
type Folded struct {
	Text  string
	Runes []rune
	Spans []Span
}

// StripHTML returns the plain text projection of s: tags are dropped,
// entities decoded and text kept in document order.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}

// lower composes s to NFC and lower-cases it, keeping the original byte span
// of every resulting rune.
func lower(s string) ([]rune, []Span) {
	runes := make([]rune, 0, len(s))
	spans := make([]Span, 0, len(s))

	var it norm.Iter
	it.InitString(norm.NFC, s)
	for !it.Done() {
		start := it.Pos()
		segment := it.Next()
		end := it.Pos()
		for _, r := range string(segment) {
			runes = append(runes, unicode.ToLower(r))
			spans = append(spans, Span{Start: start, End: end})
		}
	}
	return runes, spans
}

// Fold composes s to NFC, lower-cases it and folds umlauts: ü, ue and u all
// become u (likewise ä/ae/a and ö/oe/o). An "e" following a folded vowel is
// absorbed into that vowel's span, which makes folding idempotent.
//
// Fold yields the canonical form used for equality. Substring search goes
// through Pattern, which keeps the searched text literal.
func Fold(s string) Folded {
	runes, spans := lower(s)
	f := Folded{
		Runes: make([]rune, 0, len(runes)),
		Spans: make([]Span, 0, len(spans)),
	}

	afterVowel := false
	for i, r := range runes {
		if b, ok := umlauts[r]; ok {
			r = b
		} else if r == 'e' && afterVowel {
			f.Spans[len(f.Spans)-1].End = spans[i].End
			continue
		}
		afterVowel = isVowel(r)
		f.Runes = append(f.Runes, r)
		f.Spans = append(f.Spans, spans[i])
	}

	f.Text = string(f.Runes)
	return f
}

// Normalize returns the canonical comparable form of a (possibly
// HTML-bearing) value.
func Normalize(s string) string {
	return Fold(StripHTML(s)).Text
}

// Contains reports whether needle occurs in the plain text of haystack,
// compared case- and umlaut-insensitively. An empty needle matches nothing.
func Contains(haystack, needle string) bool {
	if haystack == "" {
		return false
	}
	return Compile(needle).In(StripHTML(haystack))
}

// ContainsAny reports whether needle occurs in any of the values.
func ContainsAny(needle string, values ...string) bool {
	p := Compile(needle)
	if p.Empty() {
		return false
	}
	for _, v := range values {
		if v != "" && p.In(StripHTML(v)) {
			return true
		}
	}
	return false
}

// Equal is the exact comparison used for values picked from a list: the
// trimmed strings must be equal apart from case. Empty strings never match.
func Equal(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}
