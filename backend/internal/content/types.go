package content

import (
	"fmt"
	"time"
)

// ============================================================================
// Content Types
// ============================================================================

// ContentType identifies a content collection. The set is closed: adding a
// type means adding a row to typeStyles and a rule to every resolver.
type ContentType string

const (
	TypeEssay     ContentType = "essay"
	TypeFieldNote ContentType = "field-note"
	TypeShelf     ContentType = "shelf"
)

// Weight is the fixed visual importance of a content type. Lower sorts first.
type Weight int

const (
	WeightHeavy Weight = iota
	WeightMedium
	WeightLight
)

func (w Weight) String() string {
	switch w {
	case WeightHeavy:
		return "heavy"
	case WeightMedium:
		return "medium"
	case WeightLight:
		return "light"
	default:
		return "unknown"
	}
}

// MarshalText renders weights by name in JSON payloads
func (w Weight) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText accepts the names written by MarshalText
func (w *Weight) UnmarshalText(text []byte) error {
	switch string(text) {
	case "heavy":
		*w = WeightHeavy
	case "medium":
		*w = WeightMedium
	case "light":
		*w = WeightLight
	default:
		return fmt.Errorf("unknown weight %q", text)
	}
	return nil
}

// TypeStyle is the per-type presentation record
type TypeStyle struct {
	Color  string `json:"color"`
	Weight Weight `json:"weight"`
}

var typeStyles = map[ContentType]TypeStyle{
	TypeEssay:     {Color: "#B45A2D", Weight: WeightHeavy},  // terracotta
	TypeFieldNote: {Color: "#2D5F6B", Weight: WeightMedium}, // teal
	TypeShelf:     {Color: "#C49A4A", Weight: WeightLight},  // gold
}

// StyleFor returns the color and weight for a content type
func StyleFor(t ContentType) (TypeStyle, bool) {
	s, ok := typeStyles[t]
	return s, ok
}

// ============================================================================
// Frontmatter
// ============================================================================

// Essay is the validated frontmatter of a long-form essay
type Essay struct {
	Title   string    `yaml:"title" json:"title" validate:"required"`
	Date    time.Time `yaml:"date" json:"date" validate:"required"`
	Summary string    `yaml:"summary" json:"summary,omitempty"`
	Tags    []string  `yaml:"tags" json:"tags,omitempty"`
	Related []string  `yaml:"related" json:"related,omitempty" validate:"dive,required"`
	Draft   bool      `yaml:"draft" json:"draft"`
}

// FieldNote is the validated frontmatter of a short field note
type FieldNote struct {
	Title       string    `yaml:"title" json:"title" validate:"required"`
	Date        time.Time `yaml:"date" json:"date" validate:"required"`
	ConnectedTo string    `yaml:"connectedTo" json:"connectedTo,omitempty"`
	Tags        []string  `yaml:"tags" json:"tags,omitempty"`
	Draft       bool      `yaml:"draft" json:"draft"`
}

// ShelfEntry is the validated frontmatter of a book/film/tool on the shelf
type ShelfEntry struct {
	Title          string    `yaml:"title" json:"title" validate:"required"`
	Creator        string    `yaml:"creator" json:"creator,omitempty"`
	Type           string    `yaml:"type" json:"type,omitempty"`
	Date           time.Time `yaml:"date" json:"date" validate:"required"`
	ConnectedEssay string    `yaml:"connectedEssay" json:"connectedEssay,omitempty"`
	Annotation     string    `yaml:"annotation" json:"annotation,omitempty"`
	Draft          bool      `yaml:"draft" json:"draft"`
}

// Entry is one loaded content file. Entries are never mutated after load.
type Entry[T any] struct {
	Slug string `json:"slug"`
	Data T      `json:"data"`
	Body string `json:"-"`
}

// Collections is an immutable snapshot of every loaded collection
type Collections struct {
	Essays       []Entry[Essay]
	FieldNotes   []Entry[FieldNote]
	ShelfEntries []Entry[ShelfEntry]
}

// FindEssay looks up an essay by slug, drafts included
func (c *Collections) FindEssay(slug string) (Entry[Essay], bool) {
	if c == nil {
		return Entry[Essay]{}, false
	}
	for _, e := range c.Essays {
		if e.Slug == slug {
			return e, true
		}
	}
	return Entry[Essay]{}, false
}

// ============================================================================
// Derived Values
// ============================================================================

// Connection is a directed edge from a subject entry to a related entry
type Connection struct {
	ID      string      `json:"id"`
	Type    ContentType `json:"type"`
	Slug    string      `json:"slug"`
	Title   string      `json:"title"`
	Summary string      `json:"summary,omitempty"`
	Color   string      `json:"color"`
	Weight  Weight      `json:"weight"`
	Date    string      `json:"date"`
}

// PositionedConnection anchors a connection to a paragraph of rendered prose.
// MentionFound is false when ParagraphIndex is the fallback, not a real match.
type PositionedConnection struct {
	Connection     Connection `json:"connection"`
	ParagraphIndex int        `json:"paragraphIndex"`
	MentionFound   bool       `json:"mentionFound"`
}

// ThreadPair is an undirected summary arc for listing pages
type ThreadPair struct {
	FromSlug string      `json:"fromSlug"`
	ToSlug   string      `json:"toSlug"`
	Type     ContentType `json:"type"`
	Color    string      `json:"color"`
	Weight   Weight      `json:"weight"`
}

// ScatterPosition is the canvas placement of one connection marker
type ScatterPosition struct {
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Connection Connection `json:"connection"`
}

// DateLayout is the ISO-8601 calendar date format used on connections
const DateLayout = "2006-01-02"

// NewConnection builds a connection with the type's fixed color and weight
func NewConnection(t ContentType, slug, title, summary string, date time.Time) Connection {
	style, _ := StyleFor(t)
	c := Connection{
		ID:      string(t) + "-" + slug,
		Type:    t,
		Slug:    slug,
		Title:   title,
		Summary: summary,
		Color:   style.Color,
		Weight:  style.Weight,
	}
	if !date.IsZero() {
		c.Date = date.Format(DateLayout)
	}
	return c
}
