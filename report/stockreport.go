package report

import (
	"html"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// StockRow is one line of the printable stock report.
type StockRow struct {
	ItemCode       string
	ItemName       string
	UnitType       string
	SupplierName   string
	UnitPrice      float64
	WholesalePrice float64
	InStock        *float64
}

// RenderStockHTML builds the HTML document for the stock report. Quantities
// and amounts are grouped with thousands separators for print.
func RenderStockHTML(generatedAt time.Time, rows []StockRow) string {
	p := message.NewPrinter(language.English)

	var b strings.Builder
	b.WriteString(`<html><head><meta charset="utf-8"><title>Stock Report</title><style>
body { font-family: sans-serif; font-size: 12px; }
table { width: 100%; border-collapse: collapse; }
th, td { border: 1px solid #888; padding: 4px 6px; text-align: left; }
td.num { text-align: right; }
.missing { color: #888; }
</style></head><body>`)
	b.WriteString(`<h1>Stock Report</h1>`)
	p.Fprintf(&b, `<p>Generated at %s, %d items</p>`, generatedAt.Format(time.RFC1123), len(rows))
	b.WriteString(`<table><thead><tr><th>Code</th><th>Item</th><th>Unit</th><th>Supplier</th><th>Unit Price</th><th>Wholesale</th><th>In Stock</th></tr></thead><tbody>`)
	for _, row := range rows {
		b.WriteString(`<tr><td>`)
		b.WriteString(html.EscapeString(row.ItemCode))
		b.WriteString(`</td><td>`)
		b.WriteString(html.EscapeString(row.ItemName))
		b.WriteString(`</td><td>`)
		b.WriteString(html.EscapeString(row.UnitType))
		b.WriteString(`</td><td>`)
		b.WriteString(html.EscapeString(row.SupplierName))
		b.WriteString(`</td>`)
		p.Fprintf(&b, `<td class="num">%.2f</td><td class="num">%.2f</td>`, row.UnitPrice, row.WholesalePrice)
		if row.InStock != nil {
			p.Fprintf(&b, `<td class="num">%.2f</td>`, *row.InStock)
		} else {
			b.WriteString(`<td class="num missing">-</td>`)
		}
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</tbody></table></body></html>`)
	return b.String()
}
