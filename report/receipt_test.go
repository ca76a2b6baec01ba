package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptHTML(t *testing.T) {
	html, err := ReceiptHTML(Receipt{
		OrderID:       42,
		CustomerEmail: "rita@example.com",
		Total:         61.98,
		IssuedAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Lines: []ReceiptLine{
			{Title: "The Quiet Harbour", Quantity: 2, UnitPrice: 14.99, LineTotal: 29.98},
			{Title: "Practical Go Services", Quantity: 1, UnitPrice: 32.00, LineTotal: 32.00},
		},
	})
	require.NoError(t, err)

	assert.Contains(t, html, "Order #42")
	assert.Contains(t, html, "rita@example.com")
	assert.Contains(t, html, "The Quiet Harbour")
	assert.Contains(t, html, "Practical Go Services")
	assert.Contains(t, html, "29.98")
	assert.Contains(t, html, "61.98")
}

func TestReceiptHTMLEscapesContent(t *testing.T) {
	html, err := ReceiptHTML(Receipt{
		OrderID:       1,
		CustomerEmail: "x@example.com",
		IssuedAt:      time.Now(),
		Lines:         []ReceiptLine{{Title: "<script>alert(1)</script>", Quantity: 1}},
	})
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}
