package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// ReceiptLine is one purchased line on a receipt.
type ReceiptLine struct {
	Title     string
	Quantity  int
	UnitPrice float64
	LineTotal float64
}

// Receipt carries everything needed to render an order receipt.
type Receipt struct {
	OrderID       int64
	CustomerEmail string
	Lines         []ReceiptLine
	Total         float64
	IssuedAt      time.Time
}

var receiptTmpl = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 40px; color: #222; }
h1 { font-size: 20px; }
table { width: 100%; border-collapse: collapse; margin-top: 24px; }
th, td { border-bottom: 1px solid #ddd; padding: 8px; text-align: left; }
td.num, th.num { text-align: right; }
tfoot td { font-weight: bold; border-bottom: none; }
.meta { color: #666; font-size: 12px; }
</style>
</head>
<body>
<h1>BookHaven receipt</h1>
<p class="meta">Order #{{.OrderID}} &middot; issued {{.IssuedAt.Format "2 Jan 2006 15:04 MST"}}</p>
<p>Billed to {{.CustomerEmail}}</p>
<table>
<thead>
<tr><th>Book</th><th class="num">Qty</th><th class="num">Unit price</th><th class="num">Line total</th></tr>
</thead>
<tbody>
{{range .Lines}}<tr><td>{{.Title}}</td><td class="num">{{.Quantity}}</td><td class="num">{{printf "%.2f" .UnitPrice}}</td><td class="num">{{printf "%.2f" .LineTotal}}</td></tr>
{{end}}</tbody>
<tfoot>
<tr><td colspan="3">Total</td><td class="num">{{printf "%.2f" .Total}}</td></tr>
</tfoot>
</table>
</body>
</html>`))

// ReceiptHTML renders the receipt template for PDF conversion.
func ReceiptHTML(r Receipt) (string, error) {
	buf := &bytes.Buffer{}
	if err := receiptTmpl.Execute(buf, r); err != nil {
		return "", fmt.Errorf("report: render receipt %d: %w", r.OrderID, err)
	}
	return buf.String(), nil
}
