package httpapi

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"studio-journal/backend/internal/connections"
	"studio-journal/backend/internal/content"
	"studio-journal/backend/internal/trail"
)

type handlers struct {
	deps Deps
	log  *zap.Logger
}

// EssaySummary identifies the subject of a connections response
type EssaySummary struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

// ScatterResponse is the JSON form of a scatter layout
type ScatterResponse struct {
	Width     float64                   `json:"width"`
	Height    float64                   `json:"height"`
	Positions []content.ScatterPosition `json:"positions"`
	Exhausted []bool                    `json:"exhausted"`
}

// ConnectionsResponse is everything an essay page needs to draw its
// connection markers, both inline and on the scatter canvas
type ConnectionsResponse struct {
	Essay       EssaySummary                   `json:"essay"`
	Connections []content.Connection           `json:"connections"`
	Positioned  []content.PositionedConnection `json:"positioned"`
	Scatter     ScatterResponse                `json:"scatter"`
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) essayConnections(c *gin.Context) {
	slug := c.Param("slug")

	essay, ok := h.deps.Index.Essay(slug)
	if !ok || essay.Data.Draft {
		c.JSON(http.StatusNotFound, gin.H{"error": "Essay not found"})
		return
	}

	width, err := floatQuery(c, "width", h.deps.CanvasWidth)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "width must be a positive number"})
		return
	}
	height, err := floatQuery(c, "height", h.deps.CanvasHeight)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "height must be a positive number"})
		return
	}

	resolved := h.deps.Index.Resolve(essay)

	html, err := content.RenderHTML(essay.Body)
	if err != nil {
		// Every connection falls back to the default paragraph
		h.log.Warn("Failed to render essay body", zap.String("slug", slug), zap.Error(err))
		html = ""
	}

	layout := connections.Layout(resolved, width, height)

	c.JSON(http.StatusOK, ConnectionsResponse{
		Essay:       EssaySummary{Slug: essay.Slug, Title: essay.Data.Title},
		Connections: resolved,
		Positioned:  connections.PositionConnections(resolved, html),
		Scatter: ScatterResponse{
			Width:     width,
			Height:    height,
			Positions: layout.Positions,
			Exhausted: layout.Exhausted,
		},
	})
}

func (h *handlers) threadPairs(c *gin.Context) {
	maxPairs := h.deps.ThreadPairLimit
	if raw := c.Query("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max must be a non-negative integer"})
			return
		}
		maxPairs = n
	}

	c.JSON(http.StatusOK, connections.ComputeThreadPairs(h.deps.Index.Collections(), maxPairs))
}

// researchTrail always answers 200; a null body means the trail section renders nothing
func (h *handlers) researchTrail(c *gin.Context) {
	if h.deps.Trail == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	t := h.deps.Trail.FetchTrail(c.Request.Context(), c.Param("slug"))
	if t == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *handlers) paperTrail(c *gin.Context) {
	if h.deps.PaperTrail == nil {
		c.JSON(http.StatusOK, gin.H{
			"graph":    nil,
			"activity": []trail.ActivityDay{},
			"threads":  []trail.ThreadSummary{},
		})
		return
	}
	c.JSON(http.StatusOK, h.deps.PaperTrail.Hydrate(c.Request.Context()))
}

func (h *handlers) suggestSource(c *gin.Context) {
	var req trail.SourceSuggestion
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.deps.Trail == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Suggestions are not accepted right now"})
		return
	}

	if !h.deps.Trail.SubmitSourceSuggestion(c.Request.Context(), req) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to submit suggestion"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "received"})
}

func (h *handlers) suggestConnection(c *gin.Context) {
	var req trail.ConnectionSuggestion
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.deps.Trail == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Suggestions are not accepted right now"})
		return
	}

	if !h.deps.Trail.SubmitConnectionSuggestion(c.Request.Context(), req) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to submit suggestion"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "received"})
}

func floatQuery(c *gin.Context, key string, def float64) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, strconv.ErrRange
	}
	return v, nil
}
