package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/spf13/cobra"
	"studio-journal/backend/internal/connections"
	"studio-journal/backend/internal/content"
	"studio-journal/backend/internal/graph"
	"studio-journal/backend/pkg/config"
)

// cli holds flag values shared by every subcommand
type cli struct {
	cfg        *config.Config
	contentDir string
}

func newRootCmd() *cobra.Command {
	app := &cli{}

	root := &cobra.Command{
		Use:          "journal",
		Short:        "Inspect studio journal content connections",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			app.cfg = cfg
			if app.contentDir == "" {
				app.contentDir = cfg.ContentDir
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&app.contentDir, "content", "", "content root (defaults to CONTENT_DIR)")

	root.AddCommand(
		app.connectionsCmd(),
		app.pairsCmd(),
		app.layoutCmd(),
		app.syncGraphCmd(),
	)
	return root
}

func (app *cli) load() (*connections.Index, error) {
	cols, err := content.NewLoader().Load(app.contentDir)
	if err != nil {
		return nil, err
	}
	return connections.NewIndex(cols), nil
}

// publishedEssay looks up slug and rejects drafts
func (app *cli) publishedEssay(idx *connections.Index, slug string) (content.Entry[content.Essay], error) {
	e, ok := idx.Essay(slug)
	if !ok || e.Data.Draft {
		return e, fmt.Errorf("no published essay %q in %s", slug, app.contentDir)
	}
	return e, nil
}

func (app *cli) connectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "connections <slug>",
		Short: "Print an essay's resolved and positioned connections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := app.load()
			if err != nil {
				return err
			}
			e, err := app.publishedEssay(idx, args[0])
			if err != nil {
				return err
			}

			html, err := content.RenderHTML(e.Body)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), connections.PositionConnections(idx.Resolve(e), html))
		},
	}
}

func (app *cli) pairsCmd() *cobra.Command {
	var maxPairs int
	cmd := &cobra.Command{
		Use:   "pairs",
		Short: "Print deduplicated thread pairs across all content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := app.load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("max") {
				maxPairs = app.cfg.ThreadPairLimit
			}
			return writeJSON(cmd.OutOrStdout(), connections.ComputeThreadPairs(idx.Collections(), maxPairs))
		},
	}
	cmd.Flags().IntVar(&maxPairs, "max", 0, "maximum pairs (defaults to THREAD_PAIR_LIMIT)")
	return cmd
}

func (app *cli) layoutCmd() *cobra.Command {
	var width, height float64
	cmd := &cobra.Command{
		Use:   "layout <slug>",
		Short: "Print the scatter layout for an essay's connections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("width") {
				width = app.cfg.CanvasWidth
			}
			if !cmd.Flags().Changed("height") {
				height = app.cfg.CanvasHeight
			}
			if !validCanvas(width) || !validCanvas(height) {
				return fmt.Errorf("canvas must be positive, got %gx%g", width, height)
			}

			idx, err := app.load()
			if err != nil {
				return err
			}
			e, err := app.publishedEssay(idx, args[0])
			if err != nil {
				return err
			}

			layout := connections.Layout(idx.Resolve(e), width, height)
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"width":     width,
				"height":    height,
				"positions": layout.Positions,
				"exhausted": layout.Exhausted,
			})
		},
	}
	cmd.Flags().Float64Var(&width, "width", 0, "canvas width (defaults to CANVAS_WIDTH)")
	cmd.Flags().Float64Var(&height, "height", 0, "canvas height (defaults to CANVAS_HEIGHT)")
	return cmd
}

func (app *cli) syncGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-graph",
		Short: "Upsert published content into the Neo4j source graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.cfg.HasGraphStore() {
				return fmt.Errorf("NEO4J_URI is not set")
			}
			idx, err := app.load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			driver, err := neo4j.NewDriverWithContext(
				app.cfg.Neo4jURI,
				neo4j.BasicAuth(app.cfg.Neo4jUser, app.cfg.Neo4jPassword, ""),
			)
			if err != nil {
				return err
			}
			repo := graph.NewRepository(driver)
			defer repo.Close(ctx)

			if err := repo.EnsureConstraints(ctx); err != nil {
				return err
			}
			n, err := repo.SyncContent(ctx, idx.Collections())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "synced %d content nodes\n", n)
			return nil
		},
	}
}

func validCanvas(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
