package news

// Timestamps stay strings: the backend emits naive ISO-8601 values that
// time.Time cannot decode, and the gateway only relays them.

type Highlight struct {
	ID            int64    `json:"id"`
	ArticleID     int64    `json:"article_id"`
	Title         string   `json:"title"`
	Summary       string   `json:"summary"`
	Category      string   `json:"category"`
	Frequency     int      `json:"frequency"`      // corroborating sources
	PriorityScore float64  `json:"priority_score"` // higher is more important
	Sources       []string `json:"sources"`
	Authors       []string `json:"authors"`
	IsBreaking    bool     `json:"is_breaking"`
	CreatedDate   string   `json:"created_date"`
}

type Article struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	Summary       string `json:"summary,omitempty"`
	Author        string `json:"author,omitempty"`
	Source        string `json:"source"`
	SourceURL     string `json:"source_url"`
	Category      string `json:"category"`
	PublishedDate string `json:"published_date,omitempty"`
	ExtractedDate string `json:"extracted_date"`
	IsDuplicate   bool   `json:"is_duplicate"`
	ClusterID     *int64 `json:"cluster_id"`
}

type ChatRequest struct {
	Question string `json:"question"`
	Category string `json:"category,omitempty"`
}

type ChatResponse struct {
	Answer          string   `json:"answer"`
	Sources         []string `json:"sources"`
	RelatedArticles []int64  `json:"related_articles"`
}

type ChatHistoryEntry struct {
	ID        int64  `json:"id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	CreatedAt string `json:"created_at"`
}

type ExtractRequest struct {
	Categories   []string `json:"categories"`
	ForceRefresh bool     `json:"force_refresh"`
}

type ExtractResponse struct {
	Message           string `json:"message"`
	ArticlesExtracted int    `json:"articles_extracted"`
	DuplicatesFound   int    `json:"duplicates_found"`
	HighlightsCreated int    `json:"highlights_created"`
	Error             string `json:"error,omitempty"`
}

// DefaultCategories is what an extraction covers when the caller names none.
var DefaultCategories = []string{"sports", "lifestyle", "music", "finance"}

// CategoryCounts maps a category name to its number of highlights.
type CategoryCounts map[string]int
