package connections

import (
	"fmt"
	"time"

	"pgregory.net/rapid"
	"studio-journal/backend/internal/content"
)

var day = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func essay(slug, title string, related ...string) content.Entry[content.Essay] {
	return content.Entry[content.Essay]{
		Slug: slug,
		Data: content.Essay{Title: title, Date: day, Related: related},
	}
}

func draftEssay(slug, title string) content.Entry[content.Essay] {
	e := essay(slug, title)
	e.Data.Draft = true
	return e
}

func note(slug, title, connectedTo string) content.Entry[content.FieldNote] {
	return content.Entry[content.FieldNote]{
		Slug: slug,
		Data: content.FieldNote{Title: title, Date: day, ConnectedTo: connectedTo},
	}
}

func draftNote(slug, title, connectedTo string) content.Entry[content.FieldNote] {
	n := note(slug, title, connectedTo)
	n.Data.Draft = true
	return n
}

func shelfItem(slug, title, connectedEssay string) content.Entry[content.ShelfEntry] {
	return content.Entry[content.ShelfEntry]{
		Slug: slug,
		Data: content.ShelfEntry{Title: title, Date: day, ConnectedEssay: connectedEssay},
	}
}

// sampleCollections is a small site with every relation kind
func sampleCollections() *content.Collections {
	return &content.Collections{
		Essays: []content.Entry[content.Essay]{
			essay("parking-lot-reform", "The Parking Lot Problem", "zoning-history", "parking-lot-reform", "transit-deserts"),
			essay("zoning-history", "A Short History of Zoning", "parking-lot-reform"),
			draftEssay("transit-deserts", "Transit Deserts"),
			essay("street-trees", "Street Trees"),
		},
		FieldNotes: []content.Entry[content.FieldNote]{
			note("note-42", "Curb Cuts on 5th", "parking-lot-reform"),
			draftNote("note-43", "Draft Note", "parking-lot-reform"),
			note("note-44", "Shade Survey", "street-trees"),
		},
		ShelfEntries: []content.Entry[content.ShelfEntry]{
			shelfItem("high-cost-of-free-parking", "The High Cost of Free Parking", "parking-lot-reform"),
			shelfItem("power-broker", "The Power Broker", "missing-essay"),
		},
	}
}

var slugPool = []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta"}

// genCollections draws arbitrary small content sets over a shared slug pool
// so self references, drafts, duplicates and dangling targets all occur.
func genCollections(t *rapid.T) *content.Collections {
	slug := rapid.SampledFrom(slugPool)
	cols := &content.Collections{}

	essaySlugs := rapid.SliceOfNDistinct(slug, 0, len(slugPool), rapid.ID[string]).Draw(t, "essays")
	for _, s := range essaySlugs {
		e := essay(s, "Essay "+s, rapid.SliceOfN(slug, 0, 4).Draw(t, "related-"+s)...)
		e.Data.Draft = rapid.Bool().Draw(t, "draft-"+s)
		cols.Essays = append(cols.Essays, e)
	}

	nNotes := rapid.IntRange(0, 5).Draw(t, "notes")
	for i := 0; i < nNotes; i++ {
		n := note(fmt.Sprintf("note-%d", i), fmt.Sprintf("Note %d", i), slug.Draw(t, "connectedTo"))
		n.Data.Draft = rapid.Bool().Draw(t, "note-draft")
		cols.FieldNotes = append(cols.FieldNotes, n)
	}

	nShelf := rapid.IntRange(0, 5).Draw(t, "shelf")
	for i := 0; i < nShelf; i++ {
		// Shelf slugs may collide with essay slugs on purpose
		s := shelfItem(slug.Draw(t, "shelf-slug"), "Shelf item", slug.Draw(t, "connectedEssay"))
		s.Data.Draft = rapid.Bool().Draw(t, "shelf-draft")
		cols.ShelfEntries = append(cols.ShelfEntries, s)
	}

	return cols
}

func isDraft(cols *content.Collections, c content.Connection) bool {
	switch c.Type {
	case content.TypeEssay:
		for _, e := range cols.Essays {
			if e.Slug == c.Slug {
				return e.Data.Draft
			}
		}
	case content.TypeFieldNote:
		for _, n := range cols.FieldNotes {
			if n.Slug == c.Slug && !n.Data.Draft {
				return false
			}
		}
		return true
	case content.TypeShelf:
		for _, s := range cols.ShelfEntries {
			if s.Slug == c.Slug && !s.Data.Draft {
				return false
			}
		}
		return true
	}
	return false
}
