// Package connections derives typed relationships between content entries,
// anchors them in rendered prose, and lays them out for visualization.
//
// Everything here is a pure function of an immutable content snapshot. No
// function in this package returns an error: a missing, draft or
// self-referencing target is an expected outcome and is simply skipped.
package connections

import (
	"studio-journal/backend/internal/content"
)

// ResolveConnections lists the entries related to subject: its explicit
// related essays (in declared order), then field notes and shelf entries
// that point back at it. Drafts and self-references never appear, and each
// (type, slug) pair appears at most once.
func ResolveConnections(subject content.Entry[content.Essay], all *content.Collections) []content.Connection {
	if all == nil {
		return []content.Connection{}
	}

	essays := make(map[string]content.Entry[content.Essay], len(all.Essays))
	for _, e := range all.Essays {
		essays[e.Slug] = e
	}

	seen := make(map[string]struct{})
	out := make([]content.Connection, 0, len(subject.Data.Related))
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
		e, ok := essays[slug]
		if !ok || e.Data.Draft {
			continue
		}
		add(essayConnection(e))
	}

	for _, n := range all.FieldNotes {
		if n.Data.Draft || n.Data.ConnectedTo != subject.Slug {
			continue
		}
		add(fieldNoteConnection(n))
	}

	for _, s := range all.ShelfEntries {
		if s.Data.Draft || s.Data.ConnectedEssay != subject.Slug {
			continue
		}
		add(shelfConnection(s))
	}

	return out
}

func essayConnection(e content.Entry[content.Essay]) content.Connection {
	return content.NewConnection(content.TypeEssay, e.Slug, e.Data.Title, e.Data.Summary, e.Data.Date)
}

func fieldNoteConnection(n content.Entry[content.FieldNote]) content.Connection {
	return content.NewConnection(content.TypeFieldNote, n.Slug, n.Data.Title, "", n.Data.Date)
}

func shelfConnection(s content.Entry[content.ShelfEntry]) content.Connection {
	summary := s.Data.Annotation
	if summary == "" && s.Data.Creator != "" {
		summary = s.Data.Creator
	}
	return content.NewConnection(content.TypeShelf, s.Slug, s.Data.Title, summary, s.Data.Date)
}
