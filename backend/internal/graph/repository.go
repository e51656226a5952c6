package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"studio-journal/backend/internal/trail"
	apperrors "studio-journal/backend/pkg/errors"
	"studio-journal/backend/pkg/logger"
)

// Repository reads the research source graph straight from Neo4j. It is a
// read-only alternative to the remote graph endpoint and produces the same
// payload shape.
type Repository struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewRepository creates a new graph repository
func NewRepository(driver neo4j.DriverWithContext) *Repository {
	return &Repository{
		driver: driver,
		logger: logger.Named("graph"),
	}
}

// Close closes the Neo4j driver connection
func (r *Repository) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

const sourceGraphQuery = `
	MATCH (s:Source)
	WHERE s.public = true
	OPTIONAL MATCH (s)-[l:LINKED_TO]->(c:Content)
	RETURN
		s.slug as source_slug,
		s.title as source_title,
		s.source_type as source_type,
		s.creator as creator,
		c.content_type as content_type,
		c.slug as content_slug,
		c.title as content_title,
		l.role as role
	ORDER BY s.slug, c.slug
`

// SourceGraph returns every public source with its links to content.
// Sources without links still appear as isolated nodes.
func (r *Repository) SourceGraph(ctx context.Context) (*trail.SourceGraph, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, sourceGraphQuery, nil)
	if err != nil {
		return nil, apperrors.NewGraphQueryFailed("source graph", err)
	}

	var rows []linkRow
	for result.Next(ctx) {
		record := result.Record()
		rows = append(rows, linkRow{
			SourceSlug:   getStringFromRecord(record, "source_slug"),
			SourceTitle:  getStringFromRecord(record, "source_title"),
			SourceType:   getStringFromRecord(record, "source_type"),
			Creator:      getStringFromRecord(record, "creator"),
			ContentType:  getStringFromRecord(record, "content_type"),
			ContentSlug:  getStringFromRecord(record, "content_slug"),
			ContentTitle: getStringFromRecord(record, "content_title"),
			Role:         getStringFromRecord(record, "role"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, apperrors.NewGraphQueryFailed("source graph", err)
	}

	graph := buildSourceGraph(rows)
	r.logger.Debug("Loaded source graph",
		zap.Int("nodes", len(graph.Nodes)),
		zap.Int("edges", len(graph.Edges)),
	)
	return graph, nil
}

// linkRow is one (source, optional content link) result row
type linkRow struct {
	SourceSlug   string
	SourceTitle  string
	SourceType   string
	Creator      string
	ContentType  string
	ContentSlug  string
	ContentTitle string
	Role         string
}

// buildSourceGraph dedupes nodes: sources first, then content, each in
// first-seen order. Node IDs are "source:<slug>" and "<type>:<slug>".
func buildSourceGraph(rows []linkRow) *trail.SourceGraph {
	g := &trail.SourceGraph{
		Nodes: []trail.GraphNode{},
		Edges: []trail.GraphEdge{},
	}

	seen := make(map[string]bool)
	var contentNodes []trail.GraphNode

	for _, row := range rows {
		if row.SourceSlug == "" {
			continue
		}
		sourceKey := "source:" + row.SourceSlug
		if !seen[sourceKey] {
			seen[sourceKey] = true
			g.Nodes = append(g.Nodes, trail.GraphNode{
				ID:         sourceKey,
				Type:       "source",
				Label:      row.SourceTitle,
				Slug:       row.SourceSlug,
				SourceType: row.SourceType,
				Creator:    row.Creator,
			})
		}

		if row.ContentSlug == "" {
			continue
		}
		contentKey := row.ContentType + ":" + row.ContentSlug
		if !seen[contentKey] {
			seen[contentKey] = true
			label := row.ContentTitle
			if label == "" {
				label = row.ContentSlug
			}
			contentNodes = append(contentNodes, trail.GraphNode{
				ID:    contentKey,
				Type:  row.ContentType,
				Label: label,
				Slug:  row.ContentSlug,
			})
		}

		g.Edges = append(g.Edges, trail.GraphEdge{
			Source: sourceKey,
			Target: contentKey,
			Role:   row.Role,
		})
	}

	g.Nodes = append(g.Nodes, contentNodes...)
	return g
}
