package returns

import (
	"fmt"
	"time"

	"github.com/meridian-dms/meridian-dms/internal/platform/httpx"
)

// Status of a return document.
type Status string

const (
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
)

// CustomerReturn records goods coming back from a customer order.
type CustomerReturn struct {
	ID          int64     `json:"id"`
	OrderID     int64     `json:"order_id"`
	OrderCode   string    `json:"order_code,omitempty"`
	Status      Status    `json:"status"`
	TotalAmount float64   `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
}

// CustomerReturnLine is one returned item. Salable lines go back into stock.
type CustomerReturnLine struct {
	ID        int64   `json:"id"`
	ReturnID  int64   `json:"return_id"`
	ItemID    int64   `json:"item_id"`
	ItemName  string  `json:"item_name,omitempty"`
	Qty       float64 `json:"qty"`
	IsSalable bool    `json:"is_salable"`
	Reason    string  `json:"reason"`
}

// SupplierReturn records goods sent back to a supplier.
type SupplierReturn struct {
	ID           int64     `json:"id"`
	SupplierID   int64     `json:"supplier_id"`
	SupplierName string    `json:"supplier_name,omitempty"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// SupplierReturnLine is one item shipped back; it always leaves stock.
type SupplierReturnLine struct {
	ID       int64   `json:"id"`
	ReturnID int64   `json:"return_id"`
	ItemID   int64   `json:"item_id"`
	ItemName string  `json:"item_name,omitempty"`
	Qty      float64 `json:"qty"`
	Reason   string  `json:"reason"`
}

// NonSalableItem aggregates unsellable returned quantity per item.
type NonSalableItem struct {
	ItemID   int64   `json:"item_id"`
	ItemCode string  `json:"item_code"`
	ItemName string  `json:"item_name"`
	Qty      float64 `json:"qty"`
}

// ValidStatus reports whether s is a known return status.
func ValidStatus(s Status) bool {
	return s == StatusPending || s == StatusProcessed
}

var (
	// ErrNotFound indicates record missing.
	ErrNotFound = fmt.Errorf("returns: %w", httpx.ErrNotFound)
	// ErrValidation indicates invalid input.
	ErrValidation = fmt.Errorf("returns: %w", httpx.ErrValidation)
)
