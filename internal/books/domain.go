package books

import "time"

// Status values for a catalog entry.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Book represents a catalog entry.
type Book struct {
	ID          int64     `json:"id"`
	AuthorID    int64     `json:"author_id"`
	AuthorName  string    `json:"author_name,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PublishedOn time.Time `json:"published_on"`
	Price       float64   `json:"price"`
	Status      string    `json:"status"`
	CoverURLs   []string  `json:"cover_urls,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListFilters narrows and orders catalog listings.
type ListFilters struct {
	Title          string
	Description    string
	AuthorName     string
	Status         string
	MinPrice       *float64
	MaxPrice       *float64
	PublishedAfter *time.Time
	OrderBy        string // price | published_on
	Descending     bool
	Offset         int
	Limit          int
}

// BestSeller is the aggregate returned by the most-sold query.
type BestSeller struct {
	BookID    int64  `json:"book_id"`
	Title     string `json:"title"`
	UnitsSold int64  `json:"units_sold"`
}
