package connections

import (
	"sort"

	"studio-journal/backend/internal/content"
)

// ComputeThreadPairs collects undirected arcs across the whole content set
// for listing-page overviews. A relation declared from either end, or from
// both, yields one pair. Pairs are ordered heavy first and capped at
// maxPairs to keep dense pages readable.
func ComputeThreadPairs(all *content.Collections, maxPairs int) []content.ThreadPair {
	if all == nil || maxPairs <= 0 {
		return []content.ThreadPair{}
	}

	published := make(map[string]bool, len(all.Essays))
	for _, e := range all.Essays {
		if !e.Data.Draft {
			published[e.Slug] = true
		}
	}

	seen := make(map[string]struct{})
	var pairs []content.ThreadPair
	add := func(from, to string, t content.ContentType) {
		if from == to || !published[to] {
			return
		}
		key := pairKey(from, to)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}

		style, _ := content.StyleFor(t)
		pairs = append(pairs, content.ThreadPair{
			FromSlug: from,
			ToSlug:   to,
			Type:     t,
			Color:    style.Color,
			Weight:   style.Weight,
		})
	}

	for _, e := range all.Essays {
		if e.Data.Draft {
			continue
		}
		for _, related := range e.Data.Related {
			add(e.Slug, related, content.TypeEssay)
		}
	}
	for _, n := range all.FieldNotes {
		if n.Data.Draft || n.Data.ConnectedTo == "" {
			continue
		}
		add(n.Slug, n.Data.ConnectedTo, content.TypeFieldNote)
	}
	for _, s := range all.ShelfEntries {
		if s.Data.Draft || s.Data.ConnectedEssay == "" {
			continue
		}
		add(s.Slug, s.Data.ConnectedEssay, content.TypeShelf)
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Weight < pairs[j].Weight
	})

	if len(pairs) > maxPairs {
		pairs = pairs[:maxPairs]
	}
	if pairs == nil {
		return []content.ThreadPair{}
	}
	return pairs
}

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "::" + b
}
