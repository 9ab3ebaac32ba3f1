package catalogue

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Catalogue is the immutable in-memory collection of records.
type Catalogue struct {
	records []*Record
	byKey   map[string]*Record
	skipped int
}

// ShelfmarkGroup lists the shelfmark labels sharing a country code (or
// siglum when the country is unknown).
type ShelfmarkGroup struct {
	Key     string   `json:"key"`
	Heading string   `json:"heading"`
	Labels  []string `json:"labels"`
}

// New builds a catalogue over records. Records without a usable key are
// given a positional one, and a key already taken gets a "-2", "-3", ...
// suffix, so that every record stays addressable with its own view state.
func New(records []*Record) *Catalogue {
	c := &Catalogue{
		records: records,
		byKey:   make(map[string]*Record, len(records)),
	}
	for i, r := range records {
		if r.Key() == "" {
			r.key = fmt.Sprintf("record-%d", i+1)
		}
		if _, exists := c.byKey[r.Key()]; exists {
			key := r.Key()
			for n := 2; ; n++ {
				if _, taken := c.byKey[fmt.Sprintf("%s-%d", key, n)]; !taken {
					r.key = fmt.Sprintf("%s-%d", key, n)
					break
				}
			}
			slog.Warn("Duplicate record key", "id", r.ID, "key", key, "assigned", r.key)
		}
		c.byKey[r.Key()] = r
	}
	return c
}

// Records returns the records in document order.
func (c *Catalogue) Records() []*Record {
	return c.records
}

func (c *Catalogue) Len() int {
	return len(c.records)
}

// Skipped is the number of entries dropped while parsing.
func (c *Catalogue) Skipped() int {
	return c.skipped
}

// Get returns the record with the given key.
func (c *Catalogue) Get(key string) (*Record, bool) {
	r, ok := c.byKey[key]
	return r, ok
}

// Persons returns the sorted distinct normalized names of authors and publishers.
func (c *Catalogue) Persons() []string {
	set := map[string]struct{}{}
	for _, r := range c.records {
		addName(set, r.Author.Normalized())
		addName(set, r.Publisher.Normalized())
	}
	return sortedKeys(set)
}

// Places returns the sorted distinct normalized names of print places and
// provenance places.
func (c *Catalogue) Places() []string {
	set := map[string]struct{}{}
	for _, r := range c.records {
		addName(set, r.PrintPlace.Normalized())
		for _, p := range r.Provenance {
			addName(set, p.NormalizedName)
		}
	}
	return sortedKeys(set)
}

// Functions returns the sorted distinct function labels followed by
// EmptyFunction.
func (c *Catalogue) Functions() []string {
	set := map[string]struct{}{}
	for _, r := range c.records {
		for _, f := range r.Function {
			addName(set, f.Label)
		}
	}
	return append(sortedKeys(set), EmptyFunction)
}

// ShelfmarkGroups returns the shelfmark labels grouped by holding country,
// groups and labels sorted.
func (c *Catalogue) ShelfmarkGroups() []ShelfmarkGroup {
	groups := map[string]*ShelfmarkGroup{}
	seen := map[string]struct{}{}

	add := func(s Shelfmark) {
		label := strings.TrimSpace(s.Label)
		if label == "" {
			return
		}
		if _, ok := seen[label]; ok {
			return
		}
		seen[label] = struct{}{}

		key, heading := "", ""
		if inst := s.HoldingInstitution; inst != nil {
			key = inst.CountryCode
			if key == "" {
				key = inst.Siglum
			}
			heading = key
			if inst.Country != "" {
				heading = key + " — " + inst.Country
			}
		}
		if key == "" {
			key, heading = "?", "Unknown"
		}
		g, ok := groups[key]
		if !ok {
			g = &ShelfmarkGroup{Key: key, Heading: heading}
			groups[key] = g
		}
		g.Labels = append(g.Labels, label)
	}

	for _, r := range c.records {
		if r.Shelfmark != nil {
			add(*r.Shelfmark)
		}
		for _, s := range r.OtherShelfmark {
			add(s)
		}
	}

	col := collate.New(language.German, collate.IgnoreCase)
	out := make([]ShelfmarkGroup, 0, len(groups))
	for _, g := range groups {
		col.SortStrings(g.Labels)
		out = append(out, *g)
	}
	slices.SortFunc(out, func(a, b ShelfmarkGroup) int {
		return strings.Compare(a.Key, b.Key)
	})
	return out
}

func addName(set map[string]struct{}, name string) {
	name = strings.TrimSpace(name)
	if name != "" {
		set[name] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	collate.New(language.German, collate.IgnoreCase).SortStrings(out)
	return out
}
