package connections

import (
	"studio-journal/backend/internal/content"
)

// Index precomputes back-references for one content snapshot so resolving
// many subjects (a full site build, a busy API) avoids a reverse scan per
// subject. Resolve returns exactly what ResolveConnections would.
type Index struct {
	all        *content.Collections
	essays     map[string]content.Entry[content.Essay]
	fieldNotes map[string][]content.Connection
	shelf      map[string][]content.Connection
}

// NewIndex builds an index over all. The snapshot must not change afterwards.
func NewIndex(all *content.Collections) *Index {
	idx := &Index{
		all:        all,
		essays:     make(map[string]content.Entry[content.Essay]),
		fieldNotes: make(map[string][]content.Connection),
		shelf:      make(map[string][]content.Connection),
	}
	if all == nil {
		return idx
	}

	for _, e := range all.Essays {
		idx.essays[e.Slug] = e
	}
	for _, n := range all.FieldNotes {
		if n.Data.Draft || n.Data.ConnectedTo == "" {
			continue
		}
		idx.fieldNotes[n.Data.ConnectedTo] = append(idx.fieldNotes[n.Data.ConnectedTo], fieldNoteConnection(n))
	}
	for _, s := range all.ShelfEntries {
		if s.Data.Draft || s.Data.ConnectedEssay == "" {
			continue
		}
		idx.shelf[s.Data.ConnectedEssay] = append(idx.shelf[s.Data.ConnectedEssay], shelfConnection(s))
	}
	return idx
}

// Collections returns the snapshot the index was built from
func (idx *Index) Collections() *content.Collections {
	return idx.all
}

// Essay looks up an essay by slug, drafts included
func (idx *Index) Essay(slug string) (content.Entry[content.Essay], bool) {
	e, ok := idx.essays[slug]
	return e, ok
}

// Resolve lists subject's connections using the precomputed back-references
func (idx *Index) Resolve(subject content.Entry[content.Essay]) []content.Connection {
	backrefs := len(idx.fieldNotes[subject.Slug]) + len(idx.shelf[subject.Slug])
	out := make([]content.Connection, 0, len(subject.Data.Related)+backrefs)
	seen := make(map[string]struct{}, cap(out))

	add := func(c content.Connection) {
		if c.Slug == subject.Slug {
			return
		}
		if _, dup := seen[c.ID]; dup {
			return
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}

	for _, slug := range subject.Data.Related {
		if slug == subject.Slug {
			continue
		}
		if e, ok := idx.essays[slug]; ok && !e.Data.Draft {
			add(essayConnection(e))
		}
	}
	for _, c := range idx.fieldNotes[subject.Slug] {
		add(c)
	}
	for _, c := range idx.shelf[subject.Slug] {
		add(c)
	}
	return out
}
