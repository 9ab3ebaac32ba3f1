// Package highlight marks search hits inside HTML-bearing catalogue values.
package highlight

import (
	"strings"

	"github.com/ikyriazi/elaute-api/pkg/textnorm"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MarkClass is the class of the element wrapping every highlighted span.
const MarkClass = "search-highlight"

// Spans returns the byte ranges of plain that match term, compared
// case- and umlaut-insensitively. Overlapping occurrences are merged.
func Spans(plain, term string) []textnorm.Span {
	var spans []textnorm.Span
	for _, s := range textnorm.Compile(term).Find(plain) {
		if n := len(spans); n > 0 && s.Start < spans[n-1].End {
			spans[n-1].End = max(spans[n-1].End, s.End)
			continue
		}
		spans = append(spans, s)
	}
	return spans
}

// Highlight wraps every occurrence of term in the text of markup with a
// <mark class="search-highlight"> element. Tags are never split: only text
// nodes are cut. When term is empty, absent, or markup cannot be parsed,
// markup is returned unchanged.
func Highlight(markup, term string) string {
	if markup == "" || strings.TrimSpace(term) == "" {
		return markup
	}

	out, ok := highlight(markup, term)
	if !ok {
		return markup
	}
	return out
}

// Whole highlights the complete text of markup. Used when a value was picked
// from a list and therefore matches as a whole.
func Whole(markup string) string {
	return Highlight(markup, textnorm.StripHTML(markup))
}

func highlight(markup, term string) (string, bool) {
	container := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(markup), container)
	if err != nil {
		return "", false
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	var texts []*html.Node
	collectText(container, &texts)

	var plain strings.Builder
	offsets := make([]int, len(texts))
	for i, t := range texts {
		offsets[i] = plain.Len()
		plain.WriteString(t.Data)
	}

	spans := Spans(plain.String(), term)
	if len(spans) == 0 {
		return "", false
	}

	for i, t := range texts {
		start, end := offsets[i], offsets[i]+len(t.Data)
		var local []textnorm.Span
		for _, s := range spans {
			if s.End <= start || s.Start >= end {
				continue
			}
			local = append(local, textnorm.Span{
				Start: max(s.Start, start) - start,
				End:   min(s.End, end) - start,
			})
		}
		if len(local) > 0 {
			splice(t, local)
		}
	}

	var b strings.Builder
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", false
		}
	}
	return b.String(), true
}

func collectText(n *html.Node, texts *[]*html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			*texts = append(*texts, c)
		case html.ElementNode:
			if c.DataAtom == atom.Script || c.DataAtom == atom.Style {
				continue
			}
			collectText(c, texts)
		}
	}
}

// splice replaces the text node t with alternating text and mark nodes.
// spans are ordered, non-overlapping byte ranges of t.Data.
func splice(t *html.Node, spans []textnorm.Span) {
	parent := t.Parent
	text := t.Data
	last := 0
	for _, s := range spans {
		if s.Start > last {
			parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text[last:s.Start]}, t)
		}
		mark := &html.Node{
			Type:     html.ElementNode,
			Data:     "mark",
			DataAtom: atom.Mark,
			Attr:     []html.Attribute{{Key: "class", Val: MarkClass}},
		}
		mark.AppendChild(&html.Node{Type: html.TextNode, Data: text[s.Start:s.End]})
		parent.InsertBefore(mark, t)
		last = s.End
	}
	if last < len(text) {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text[last:]}, t)
	}
	parent.RemoveChild(t)
}
