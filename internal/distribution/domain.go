package distribution

import (
	"fmt"
	"time"

	"github.com/meridian-dms/meridian-dms/internal/platform/httpx"
)

// UpdateType classifies a stock movement source.
type UpdateType string

const (
	UpdateTypeGRN            UpdateType = "GRN"
	UpdateTypeOrder          UpdateType = "ORDER"
	UpdateTypeCustomerReturn UpdateType = "CUSTOMER_RETURN"
	UpdateTypeSupplierReturn UpdateType = "SUPPLIER_RETURN"
	UpdateTypeManual         UpdateType = "MANUAL"
)

// Distribution holds the current in-stock quantity for one item. At most one
// row exists per item; the row is created lazily on the first stock posting.
type Distribution struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	InStock   float64   `json:"in_stock_amount"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Detail joins the stock row with item and supplier display fields.
type Detail struct {
	Distribution
	ItemCode     string `json:"item_code"`
	ItemName     string `json:"item_name"`
	UnitType     string `json:"unit_type"`
	SupplierID   int64  `json:"supplier_id"`
	SupplierName string `json:"supplier_name"`
	SupplierCode string `json:"supplier_code"`
}

// StockUpdate records one stock mutation for the movement history.
type StockUpdate struct {
	ID        int64      `json:"id"`
	ItemID    int64      `json:"item_id"`
	ItemName  string     `json:"item_name,omitempty"`
	ItemCode  string     `json:"item_code,omitempty"`
	QtyChange float64    `json:"qty_change"`
	Type      UpdateType `json:"type"`
	RefCode   string     `json:"ref_code"`
	At        time.Time  `json:"at"`
}

// StockUpdateFilter narrows the movement history listing.
type StockUpdateFilter struct {
	ItemID int64
	Type   UpdateType
	From   time.Time
	To     time.Time
	Limit  int
}

var (
	// ErrNotFound indicates no stock row exists for the item.
	ErrNotFound = fmt.Errorf("distribution: %w", httpx.ErrNotFound)
	// ErrValidation indicates invalid input.
	ErrValidation = fmt.Errorf("distribution: %w", httpx.ErrValidation)
)
