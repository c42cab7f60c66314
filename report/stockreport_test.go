package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRenderStockHTMLFormatsQuantities(t *testing.T) {
	qty := 1240.5
	rows := []StockRow{
		{ItemCode: "ITM-001", ItemName: "Sparkling Water 1L", UnitType: "bottle", SupplierName: "Lakeside Beverages", UnitPrice: 120, WholesalePrice: 95, InStock: &qty},
	}

	out := RenderStockHTML(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), rows)

	require.Contains(t, out, "ITM-001")
	require.Contains(t, out, "1,240.50")
	require.Contains(t, out, "1 items")
}

func TestRenderStockHTMLMarksMissingStock(t *testing.T) {
	rows := []StockRow{
		{ItemCode: "ITM-009", ItemName: "Ledger <Test>", UnitPrice: 10, WholesalePrice: 8},
	}

	out := RenderStockHTML(time.Now(), rows)

	require.Contains(t, out, `<td class="num missing">-</td>`)
	require.Contains(t, out, "Ledger &lt;Test&gt;")
	require.NotContains(t, out, "Ledger <Test>")
}
