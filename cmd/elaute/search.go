package main

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v3"

	"github.com/ikyriazi/elaute-api/pkg/browse"
	"github.com/ikyriazi/elaute-api/pkg/catalogue"
	"github.com/ikyriazi/elaute-api/pkg/facet"
	"github.com/ikyriazi/elaute-api/pkg/grid"
	"github.com/ikyriazi/elaute-api/pkg/highlight"
	"github.com/ikyriazi/elaute-api/pkg/search"
	"github.com/ikyriazi/elaute-api/pkg/session"
	"github.com/ikyriazi/elaute-api/pkg/textnorm"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	matchStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("220"))

	summaryStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("32")).
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("32")).
			Padding(0, 1)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// textFlags maps the free-text flags to their URL state parameters.
var textFlags = []struct {
	flag, param, usage string
}{
	{"all", "all", "Search all fields"},
	{"title", "title", "Search titles"},
	{"person", "person", "Search authors and publishers"},
	{"place", "place", "Search print and provenance places"},
	{"id", "id", "Search RISM, VD16 and Brown identifiers"},
	{"desc", "desc", "Search descriptions and comments"},
	{"bib", "bib", "Search the bibliography"},
}

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	flags := []cli.Flag{}
	for _, f := range textFlags {
		flags = append(flags, &cli.StringFlag{Name: f.flag, Usage: f.usage})
	}
	flags = append(flags,
		&cli.BoolFlag{Name: "person-list", Usage: "Match --person against normalized names exactly"},
		&cli.BoolFlag{Name: "place-list", Usage: "Match --place against normalized names exactly"},
		&cli.IntFlag{Name: "from", Usage: "Earliest year"},
		&cli.IntFlag{Name: "to", Usage: "Latest year"},
		&cli.StringFlag{Name: "type", Usage: "print or manuscript"},
		&cli.StringFlag{Name: "fundamenta", Usage: "yes or no"},
		&cli.StringSliceFlag{Name: "shelfmark", Usage: "Shelfmark label, repeatable"},
		&cli.StringFlag{Name: "shelfmark-op", Usage: "OR or AND", Value: string(facet.Or)},
		&cli.StringSliceFlag{Name: "function", Usage: "Function label, repeatable"},
		&cli.StringFlag{Name: "function-op", Usage: "OR or AND", Value: string(facet.Or)},
		&cli.IntFlag{Name: "limit", Usage: "Maximum number of rows, -1 for all", Value: grid.DefaultLength},
	)

	return &cli.Command{
		Name:  "search",
		Usage: "Search the catalogue",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cat, err := loadCatalogue(ctx, c)
			if err != nil {
				return err
			}
			out, err := searchCatalogue(ctx, cat, searchValues(c), c.Int("limit"))
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
}

// searchValues builds the URL state parameters of the flags.
func searchValues(c *cli.Command) url.Values {
	values := url.Values{}
	for _, f := range textFlags {
		v := c.String(f.flag)
		if v == "" {
			continue
		}
		param := f.param
		if (f.flag == "person" || f.flag == "place") && c.Bool(f.flag+"-list") {
			param += ".list"
		}
		values.Add(param, v)
	}
	if c.IsSet("from") || c.IsSet("to") {
		from, to := facet.MinYear, facet.MaxYear
		if c.IsSet("from") {
			from = c.Int("from")
		}
		if c.IsSet("to") {
			to = c.Int("to")
		}
		values.Set("from", strconv.Itoa(from))
		values.Set("to", strconv.Itoa(to))
	}
	for _, p := range []string{"type", "fundamenta"} {
		if v := c.String(p); v != "" {
			values.Set(p, v)
		}
	}
	for _, v := range c.StringSlice("shelfmark") {
		values.Add("shelfmark", v)
	}
	if op := c.String("shelfmark-op"); strings.EqualFold(op, string(facet.And)) {
		values.Set("shelfmarkOp", string(facet.And))
	}
	for _, v := range c.StringSlice("function") {
		values.Add("function", v)
	}
	if op := c.String("function-op"); strings.EqualFold(op, string(facet.And)) {
		values.Set("functionOp", string(facet.And))
	}
	return values
}

// searchCatalogue draws one page for values and renders it for the terminal.
func searchCatalogue(ctx context.Context, cat *catalogue.Catalogue, values url.Values, limit int) (string, error) {
	svc := browse.NewService(session.NewMemoryStore(time.Minute))
	svc.SetCatalogue(cat)
	rawQuery := values.Encode()
	v, err := svc.Search(ctx, rawQuery, 0, limit)
	if err != nil {
		return "", err
	}
	q, _, err := facet.DecodeQuery(rawQuery)
	if err != nil {
		return "", err
	}
	clauses := q.Active()

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(metaStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("Shelfmark", "Title", "Short title", "Date", "Author", "Print place", "RISM / VD16")

	var notes []string
	for _, row := range v.Rows {
		r, ok := cat.Get(row.Key)
		if !ok {
			continue
		}
		ids := append(r.RISMLabels(), r.VD16Labels()...)
		t.Row(
			mark(r.Shelfmark.String(), grid.TermFor(grid.ShelfmarkColumn, clauses)),
			mark(textnorm.StripHTML(r.Title), grid.TermFor(grid.TitleColumn, clauses)),
			mark(textnorm.StripHTML(r.ShortTitle), grid.TermFor(grid.ShortTitleColumn, clauses)),
			mark(r.Date.String(), grid.TermFor(grid.DateColumn, clauses)),
			mark(r.Author.String(), grid.TermFor(grid.AuthorColumn, clauses)),
			mark(r.PrintPlace.String(), grid.TermFor(grid.PrintPlaceColumn, clauses)),
			mark(strings.Join(ids, ", "), grid.TermFor(grid.RISMColumn, clauses)),
		)
		if row.Detail != nil {
			notes = append(notes, fmt.Sprintf("%s: match in the record details", row.Key))
		}
	}

	var b strings.Builder
	summary := fmt.Sprintf("%d of %d records", v.RecordsDisplay, v.RecordsTotal)
	if v.Summary.Text != "" {
		summary += " · " + v.Summary.Text
	}
	b.WriteString(summaryStyle.Render(summary))
	b.WriteString("\n")
	if len(clauses) > 0 {
		b.WriteString(metaStyle.Render(clauseSummary(clauses)))
		b.WriteString("\n")
	}
	if len(v.Rows) == 0 {
		b.WriteString(metaStyle.Render("No matching records"))
		return b.String(), nil
	}
	b.WriteString(t.Render())
	for _, n := range notes {
		b.WriteString("\n")
		b.WriteString(metaStyle.Render(n))
	}
	if v.QueryString != "" {
		b.WriteString("\n")
		b.WriteString(metaStyle.Render("?" + v.QueryString))
	}
	return b.String(), nil
}

// mark styles the occurrences of term in s.
func mark(s, term string) string {
	spans := highlight.Spans(s, term)
	if len(spans) == 0 {
		return s
	}
	var b strings.Builder
	last := 0
	for _, sp := range spans {
		b.WriteString(s[last:sp.Start])
		b.WriteString(matchStyle.Render(s[sp.Start:sp.End]))
		last = sp.End
	}
	b.WriteString(s[last:])
	return b.String()
}

// clauseSummary lists the active clauses, e.g. `Title: "liederbuch"`.
func clauseSummary(clauses []search.Clause) string {
	parts := make([]string, 0, len(clauses))
	for _, c := range clauses {
		parts = append(parts, fmt.Sprintf("%s: %q", c.Field, c.Value))
	}
	return strings.Join(parts, ", ")
}
