package reports

import (
	"fmt"
	"time"
)

// StockReportRow joins an item with its supplier and current stock level.
// InStock is nil when the item has never been posted into distribution.
type StockReportRow struct {
	ItemID         int64      `json:"item_id"`
	ItemCode       string     `json:"item_code"`
	ItemName       string     `json:"item_name"`
	UnitType       string     `json:"unit_type"`
	UnitPrice      float64    `json:"unit_price"`
	SecondPrice    float64    `json:"second_price"`
	WholesalePrice float64    `json:"wholesale_price"`
	SupplierID     int64      `json:"supplier_id"`
	SupplierName   string     `json:"supplier_name"`
	InStock        *float64   `json:"in_stock_amount"`
	StockUpdatedAt *time.Time `json:"stock_updated_at,omitempty"`
}

// Filter narrows the stock report.
type Filter struct {
	SupplierID int64
	FromDate   time.Time
	ToDate     time.Time
}

// CacheKey identifies one filter combination in the report cache.
func (f Filter) CacheKey() string {
	return fmt.Sprintf("reports:stock:%d:%d:%d", f.SupplierID, f.FromDate.Unix(), f.ToDate.Unix())
}
