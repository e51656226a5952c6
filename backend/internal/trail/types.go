package trail

// ============================================================================
// Research trail wire types. Field names follow the remote service exactly.
// ============================================================================

// Trail is the aggregate research context for one content entry
type Trail struct {
	Slug                string               `json:"slug"`
	ContentType         string               `json:"contentType"`
	Sources             []TrailSource        `json:"sources"`
	Backlinks           []Backlink           `json:"backlinks"`
	Thread              *TrailThread         `json:"thread"`
	Mentions            []Mention            `json:"mentions"`
	ApprovedSuggestions []ApprovedSuggestion `json:"approvedSuggestions,omitempty"`
}

// TrailSource is a source linked to the content, with its link role
type TrailSource struct {
	ID               int    `json:"id"`
	Title            string `json:"title"`
	Slug             string `json:"slug"`
	Creator          string `json:"creator"`
	SourceType       string `json:"sourceType"`
	URL              string `json:"url"`
	Publication      string `json:"publication"`
	PublicAnnotation string `json:"publicAnnotation"`
	Role             string `json:"role"`
	KeyQuote         string `json:"keyQuote"`
}

// Backlink is another piece of content sharing sources with this one
type Backlink struct {
	ContentType   string         `json:"contentType"`
	ContentSlug   string         `json:"contentSlug"`
	ContentTitle  string         `json:"contentTitle"`
	SharedSources []SharedSource `json:"sharedSources"`
}

type SharedSource struct {
	SourceID    int    `json:"sourceId"`
	SourceTitle string `json:"sourceTitle"`
}

// TrailThread is the research thread that produced the content
type TrailThread struct {
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Description string        `json:"description"`
	Status      string        `json:"status"`
	StartedDate *string       `json:"startedDate"`
	Entries     []ThreadEntry `json:"entries"`
}

type ThreadEntry struct {
	EntryType   string `json:"entryType"`
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
	SourceTitle string `json:"sourceTitle"`
}

// Mention is a verified inbound reference from elsewhere on the web
type Mention struct {
	SourceURL           string `json:"sourceUrl"`
	SourceTitle         string `json:"sourceTitle"`
	SourceExcerpt       string `json:"sourceExcerpt"`
	SourceAuthor        string `json:"sourceAuthor"`
	MentionType         string `json:"mentionType"`
	Featured            bool   `json:"featured"`
	MentionSourceName   string `json:"mentionSourceName"`
	MentionSourceAvatar string `json:"mentionSourceAvatar"`
	CreatedAt           string `json:"createdAt"`
}

// ApprovedSuggestion is a reader-suggested source that passed review
type ApprovedSuggestion struct {
	ID              int    `json:"id"`
	Title           string `json:"title"`
	URL             string `json:"url"`
	SourceType      string `json:"source_type"`
	RelevanceNote   string `json:"relevance_note"`
	TargetSlug      string `json:"target_slug"`
	ContributorName string `json:"contributor_name"`
	ContributorURL  string `json:"contributor_url"`
	CreatedAt       string `json:"created_at"`
}

// SourceGraph is the full source/content graph for the force layout
type SourceGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

type GraphNode struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Label      string `json:"label"`
	Slug       string `json:"slug"`
	SourceType string `json:"sourceType,omitempty"`
	Creator    string `json:"creator,omitempty"`
}

type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Role   string `json:"role"`
}

// ActivityDay holds one calendar day of research activity counts
type ActivityDay struct {
	Date    string `json:"date"`
	Sources int    `json:"sources"`
	Links   int    `json:"links"`
	Entries int    `json:"entries"`
}

// ThreadSummary is one row of the research thread listing
type ThreadSummary struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	StartedDate *string  `json:"started_date"`
	EntryCount  int      `json:"entry_count"`
	Tags        []string `json:"tags,omitempty"`
}

// SourceSuggestion is a reader-submitted source for an essay or field note
type SourceSuggestion struct {
	Title             string `json:"title" binding:"required,max=500" validate:"required,max=500"`
	URL               string `json:"url" binding:"required,url" validate:"required,url"`
	SourceType        string `json:"source_type,omitempty"`
	RelevanceNote     string `json:"relevance_note" binding:"required" validate:"required"`
	TargetContentType string `json:"target_content_type" binding:"required,oneof=essay field_note" validate:"required,oneof=essay field_note"`
	TargetSlug        string `json:"target_slug" binding:"required" validate:"required"`
	ContributorName   string `json:"contributor_name,omitempty"`
	ContributorURL    string `json:"contributor_url,omitempty" binding:"omitempty,url" validate:"omitempty,url"`
	RecaptchaToken    string `json:"recaptcha_token" binding:"required" validate:"required"`
}

// ConnectionSuggestion is a reader's claim that two entries are related
type ConnectionSuggestion struct {
	FromContentType string `json:"from_content_type" binding:"required,oneof=essay field_note" validate:"required,oneof=essay field_note"`
	FromSlug        string `json:"from_slug" binding:"required,max=300" validate:"required,max=300"`
	ToContentType   string `json:"to_content_type" binding:"required,oneof=essay field_note" validate:"required,oneof=essay field_note"`
	ToSlug          string `json:"to_slug" binding:"required,max=300" validate:"required,max=300"`
	Explanation     string `json:"explanation" binding:"required,max=1000" validate:"required,max=1000"`
	ContributorName string `json:"contributor_name,omitempty"`
	ContributorURL  string `json:"contributor_url,omitempty" binding:"omitempty,url" validate:"omitempty,url"`
	RecaptchaToken  string `json:"recaptcha_token" binding:"required" validate:"required"`
}
