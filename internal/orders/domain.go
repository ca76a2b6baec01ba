package orders

import "time"

// Order status values.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

// Order represents a customer order with its line items.
type Order struct {
	ID         int64       `json:"id"`
	UserID     int64       `json:"user_id"`
	Status     string      `json:"status"`
	TotalPrice float64     `json:"total_price"`
	CreatedAt  time.Time   `json:"created_at"`
	Items      []OrderItem `json:"items"`
}

// OrderItem is one purchased book within an order. UnitPrice is captured at
// purchase time; later catalog price changes do not rewrite history.
type OrderItem struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	BookID    int64   `json:"book_id"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

// LineInput is a requested purchase line.
type LineInput struct {
	BookID   int64 `json:"book_id"`
	Quantity int   `json:"quantity"`
}

// BookInfo is the catalog data order placement needs.
type BookInfo struct {
	ID       int64
	AuthorID int64
	Title    string
	Price    float64
	Status   string
}

// Spender aggregates a user's total order spend.
type Spender struct {
	UserID     int64   `json:"user_id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	TotalSpent float64 `json:"total_spent"`
}
