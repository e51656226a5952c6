package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"studio-journal/backend/internal/content"
	apperrors "studio-journal/backend/pkg/errors"
)

// EnsureConstraints creates the uniqueness constraints the source graph
// relies on. Existing constraints are left alone.
func (r *Repository) EnsureConstraints(ctx context.Context) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT source_slug_unique IF NOT EXISTS FOR (s:Source) REQUIRE s.slug IS UNIQUE",
		"CREATE CONSTRAINT content_key_unique IF NOT EXISTS FOR (c:Content) REQUIRE (c.content_type, c.slug) IS UNIQUE",
	}

	for _, constraint := range constraints {
		if _, err := session.Run(ctx, constraint, nil); err != nil {
			return apperrors.NewGraphQueryFailed("create constraint", err)
		}
	}
	return nil
}

// SyncContent upserts a Content node for every published essay and field
// note so the research side can link sources to them. Drafts and shelf
// entries are skipped; sources only ever link to essays and field notes. Returns the
// number of nodes written.
func (r *Repository) SyncContent(ctx context.Context, all *content.Collections) (int, error) {
	rows := contentRows(all)
	if len(rows) == 0 {
		return 0, nil
	}

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		UNWIND $rows as row
		MERGE (c:Content {content_type: row.content_type, slug: row.slug})
		SET c.title = row.title,
		    c.date = row.date
	`
	if _, err := session.Run(ctx, query, map[string]interface{}{"rows": rows}); err != nil {
		return 0, apperrors.NewGraphQueryFailed("sync content", err)
	}

	r.logger.Info("Synced content nodes", zap.Int("count", len(rows)))
	return len(rows), nil
}

// GraphContentType maps a local content type to the research graph's name
func GraphContentType(t content.ContentType) string {
	if t == content.TypeFieldNote {
		return "field_note"
	}
	return string(t)
}

func contentRows(all *content.Collections) []map[string]interface{} {
	if all == nil {
		return nil
	}
	var rows []map[string]interface{}
	add := func(t content.ContentType, slug, title string, date string) {
		rows = append(rows, map[string]interface{}{
			"content_type": GraphContentType(t),
			"slug":         slug,
			"title":        title,
			"date":         date,
		})
	}
	for _, e := range all.Essays {
		if !e.Data.Draft {
			add(content.TypeEssay, e.Slug, e.Data.Title, e.Data.Date.Format(content.DateLayout))
		}
	}
	for _, n := range all.FieldNotes {
		if !n.Data.Draft {
			add(content.TypeFieldNote, n.Slug, n.Data.Title, n.Data.Date.Format(content.DateLayout))
		}
	}
	return rows
}
