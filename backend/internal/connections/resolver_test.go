package connections

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
	"studio-journal/backend/internal/content"
)

func ids(cs []content.Connection) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestResolveConnections_ParkingLot(t *testing.T) {
	cols := sampleCollections()
	subject, ok := cols.FindEssay("parking-lot-reform")
	require.True(t, ok)

	got := ResolveConnections(subject, cols)

	// Self reference and the draft essay are dropped; the draft note too.
	assert.Equal(t, []string{
		"essay-zoning-history",
		"field-note-note-42",
		"shelf-high-cost-of-free-parking",
	}, ids(got))

	essayConn := got[0]
	assert.Equal(t, content.TypeEssay, essayConn.Type)
	assert.Equal(t, "A Short History of Zoning", essayConn.Title)
	assert.Equal(t, "#B45A2D", essayConn.Color)
	assert.Equal(t, content.WeightHeavy, essayConn.Weight)
	assert.Equal(t, "2024-03-01", essayConn.Date)

	assert.Equal(t, content.WeightMedium, got[1].Weight)
	assert.Equal(t, content.WeightLight, got[2].Weight)
}

func TestResolveConnections_OnlySelfReference(t *testing.T) {
	cols := &content.Collections{
		Essays: []content.Entry[content.Essay]{
			essay("parking-lot-reform", "The Parking Lot Problem", "zoning-history", "parking-lot-reform"),
			essay("zoning-history", "Zoning History"),
		},
	}

	got := ResolveConnections(cols.Essays[0], cols)
	require.Len(t, got, 1)
	assert.Equal(t, "zoning-history", got[0].Slug)
}

func TestResolveConnections_DuplicateRelated(t *testing.T) {
	cols := &content.Collections{
		Essays: []content.Entry[content.Essay]{
			essay("a", "A", "b", "b", "c", "b"),
			essay("b", "B"),
			essay("c", "C"),
		},
	}

	got := ResolveConnections(cols.Essays[0], cols)
	assert.Equal(t, []string{"essay-b", "essay-c"}, ids(got))
}

func TestResolveConnections_NoMatches(t *testing.T) {
	cols := sampleCollections()
	subject := essay("orphan", "Orphan", "does-not-exist")

	got := ResolveConnections(subject, cols)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, ResolveConnections(subject, nil))
}

func TestResolveConnections_FieldNoteBackReference(t *testing.T) {
	cols := sampleCollections()
	subject, _ := cols.FindEssay("parking-lot-reform")

	var found *content.Connection
	for _, c := range ResolveConnections(subject, cols) {
		if c.ID == "field-note-note-42" {
			c := c
			found = &c
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, content.TypeFieldNote, found.Type)
	assert.Equal(t, "#2D5F6B", found.Color)
}

func TestResolveConnections_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cols := genCollections(t)
		if len(cols.Essays) == 0 {
			return
		}
		subject := cols.Essays[rapid.IntRange(0, len(cols.Essays)-1).Draw(t, "subject")]

		got := ResolveConnections(subject, cols)

		seen := map[string]bool{}
		for _, c := range got {
			if c.Slug == subject.Slug {
				t.Fatalf("self reference %s", c.ID)
			}
			if isDraft(cols, c) {
				t.Fatalf("draft included %s", c.ID)
			}
			if seen[c.ID] {
				t.Fatalf("duplicate connection %s", c.ID)
			}
			seen[c.ID] = true
		}
	})
}

func TestIndex_MatchesResolveConnections(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cols := genCollections(t)
		idx := NewIndex(cols)
		for _, subject := range cols.Essays {
			want := ResolveConnections(subject, cols)
			got := idx.Resolve(subject)
			if len(want) != len(got) {
				t.Fatalf("index returned %v, want %v", ids(got), ids(want))
			}
			for i := range want {
				if want[i] != got[i] {
					t.Fatalf("index returned %v, want %v", ids(got), ids(want))
				}
			}
		}
	})
}

func TestIndex_Lookup(t *testing.T) {
	cols := sampleCollections()
	idx := NewIndex(cols)

	e, ok := idx.Essay("transit-deserts")
	assert.True(t, ok)
	assert.True(t, e.Data.Draft)
	assert.Same(t, cols, idx.Collections())

	empty := NewIndex(nil)
	assert.Empty(t, empty.Resolve(essay("x", "X", "y")))
}
