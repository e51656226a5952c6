// Package papertrail gathers the data behind the paper trail page: the
// source graph, the activity heatmap and the list of active threads.
package papertrail

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"studio-journal/backend/internal/trail"
	"studio-journal/backend/pkg/logger"
)

// GraphReader supplies the source graph. Both the remote trail client and
// the Neo4j repository satisfy it.
type GraphReader interface {
	SourceGraph(ctx context.Context) (*trail.SourceGraph, error)
}

// TrailReader supplies the soft-failing activity and thread reads
type TrailReader interface {
	FetchActivity(ctx context.Context, days int) []trail.ActivityDay
	FetchActiveThreads(ctx context.Context) []trail.ThreadSummary
}

// Suite is everything the paper trail page renders. A nil Graph or an
// empty slice means that section renders nothing.
type Suite struct {
	Graph    *trail.SourceGraph    `json:"graph"`
	Activity []trail.ActivityDay   `json:"activity"`
	Threads  []trail.ThreadSummary `json:"threads"`
}

// GraphEmpty reports whether the graph section has nothing to draw
func (s Suite) GraphEmpty() bool {
	return s.Graph == nil || len(s.Graph.Nodes) == 0
}

func (s Suite) ActivityEmpty() bool { return len(s.Activity) == 0 }

func (s Suite) ThreadsEmpty() bool { return len(s.Threads) == 0 }

// Empty reports whether every section is empty
func (s Suite) Empty() bool {
	return s.GraphEmpty() && s.ActivityEmpty() && s.ThreadsEmpty()
}

// Hydrator fetches the suite sections concurrently
type Hydrator struct {
	graph        GraphReader
	trail        TrailReader
	activityDays int
	logger       *zap.Logger
}

// NewHydrator creates a hydrator. graph may be nil, in which case the graph
// section is always empty.
func NewHydrator(graph GraphReader, tr TrailReader, activityDays int) *Hydrator {
	return &Hydrator{
		graph:        graph,
		trail:        tr,
		activityDays: trail.ClampActivityDays(activityDays),
		logger:       logger.Named("papertrail"),
	}
}

// Hydrate fetches every section. A failed section degrades to empty and
// never affects the others.
func (h *Hydrator) Hydrate(ctx context.Context) Suite {
	suite := Suite{
		Activity: []trail.ActivityDay{},
		Threads:  []trail.ThreadSummary{},
	}

	// Section errors are absorbed below, so the group never cancels siblings
	g, gctx := errgroup.WithContext(ctx)

	if h.graph != nil {
		g.Go(func() error {
			graph, err := h.graph.SourceGraph(gctx)
			if err != nil {
				h.logger.Warn("Source graph unavailable", zap.Error(err))
				return nil
			}
			suite.Graph = graph
			return nil
		})
	}

	if h.trail != nil {
		g.Go(func() error {
			suite.Activity = h.trail.FetchActivity(gctx, h.activityDays)
			return nil
		})
		g.Go(func() error {
			suite.Threads = h.trail.FetchActiveThreads(gctx)
			return nil
		})
	}

	_ = g.Wait()

	if suite.Activity == nil {
		suite.Activity = []trail.ActivityDay{}
	}
	if suite.Threads == nil {
		suite.Threads = []trail.ThreadSummary{}
	}
	return suite
}
