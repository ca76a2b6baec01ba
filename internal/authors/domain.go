// Package authors implements the author reporting surface: biography
// management plus sales and catalog analytics over the users, books and
// order_items tables.
package authors

import "time"

// Author identifies an account with the author role.
type Author struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Earnings is the accumulated revenue credited to an author.
type Earnings struct {
	AuthorID int64   `json:"author_id"`
	Name     string  `json:"name"`
	Revenue  float64 `json:"revenue"`
}

// BookCount pairs an author with the number of books they published.
type BookCount struct {
	AuthorID int64  `json:"author_id"`
	Name     string `json:"name"`
	Books    int64  `json:"books"`
}

// SalesCount pairs an author with the total units sold across all their
// books.
type SalesCount struct {
	AuthorID  int64  `json:"author_id"`
	Name      string `json:"name"`
	UnitsSold int64  `json:"units_sold"`
}

// AuthorBook is one catalog entry of an author together with its sales.
type AuthorBook struct {
	BookID      int64     `json:"book_id"`
	Title       string    `json:"title"`
	PublishedOn time.Time `json:"published_on"`
	UnitsSold   int64     `json:"units_sold"`
}

// UnsoldBook is a catalog entry that never appeared on an order.
type UnsoldBook struct {
	BookID      int64     `json:"book_id"`
	Title       string    `json:"title"`
	Price       float64   `json:"price"`
	PublishedOn time.Time `json:"published_on"`
}

// AveragePrice is the mean list price over an author's books.
type AveragePrice struct {
	AuthorID int64   `json:"author_id"`
	Name     string  `json:"name"`
	Average  float64 `json:"average_price"`
}

// TopPaidLimit caps the earnings leaderboard.
const TopPaidLimit = 3

// MaxBookThreshold bounds the published-book threshold accepted by the
// prolific-authors report.
const MaxBookThreshold = 999999
