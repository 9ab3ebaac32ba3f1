package textnorm

import "strings"

var umlauts = map[rune]rune{'ü': 'u', 'ä': 'a', 'ö': 'o'}

var umlautOf = map[rune]rune{'u': 'ü', 'a': 'ä', 'o': 'ö'}

func isVowel(r rune) bool {
	return r == 'a' || r == 'o' || r == 'u'
}

type unit struct {
	r rune
	// vowel units accept the base vowel, its umlaut and the "e" digraph
	vowel bool
	// written as an umlaut or digraph, so the two rune spelling is tried first
	umlaut bool
}

// Pattern is a compiled search term. Only the term is folded: the searched
// text stays literal, so every rune of it can still be matched on its own.
type Pattern struct {
	units []unit
}

// Compile folds term into a Pattern. ü, ue and u in term each match any of
// ü, ue and u in the text (likewise for ä and ö); every other rune matches
// itself regardless of case.
func Compile(term string) Pattern {
	runes, _ := lower(strings.TrimSpace(term))

	var p Pattern
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case umlauts[r] != 0:
			p.units = append(p.units, unit{r: umlauts[r], vowel: true, umlaut: true})
		case isVowel(r):
			u := unit{r: r, vowel: true}
			if i+1 < len(runes) && runes[i+1] == 'e' {
				u.umlaut = true
				i++
			}
			p.units = append(p.units, u)
		default:
			p.units = append(p.units, unit{r: r})
		}
	}
	return p
}

// Empty reports whether the pattern matches nothing.
func (p Pattern) Empty() bool {
	return len(p.units) == 0
}

// In reports whether the pattern occurs in s.
func (p Pattern) In(s string) bool {
	if p.Empty() || s == "" {
		return false
	}
	runes, _ := lower(s)
	for i := range runes {
		if _, ok := p.match(runes, i, 0); ok {
			return true
		}
	}
	return false
}

// Find returns the byte range of every occurrence of the pattern in s, one
// per start position, in order. Occurrences may overlap.
func (p Pattern) Find(s string) []Span {
	if p.Empty() || s == "" {
		return nil
	}
	runes, spans := lower(s)
	var found []Span
	for i := range runes {
		if end, ok := p.match(runes, i, 0); ok {
			found = append(found, Span{Start: spans[i].Start, End: spans[end-1].End})
		}
	}
	return found
}

// match matches units[k:] against text[i:] and returns the rune index the
// match ends at.
func (p Pattern) match(text []rune, i, k int) (int, bool) {
	if k == len(p.units) {
		return i, true
	}
	if i >= len(text) {
		return 0, false
	}

	u := p.units[k]
	short, long := u.accepts(text[i:])
	if long && u.umlaut {
		if end, ok := p.match(text, i+2, k+1); ok {
			return end, true
		}
	}
	if short {
		if end, ok := p.match(text, i+1, k+1); ok {
			return end, true
		}
	}
	if long && !u.umlaut {
		return p.match(text, i+2, k+1)
	}
	return 0, false
}

// accepts reports whether u matches the first rune of text (short) or its
// first two runes as a vowel digraph (long).
func (u unit) accepts(text []rune) (short, long bool) {
	if !u.vowel {
		return text[0] == u.r, false
	}
	short = text[0] == u.r || text[0] == umlautOf[u.r]
	long = text[0] == u.r && len(text) > 1 && text[1] == 'e'
	return short, long
}
