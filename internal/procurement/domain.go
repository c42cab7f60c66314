package procurement

import (
	"fmt"
	"time"

	"github.com/meridian-dms/meridian-dms/internal/platform/httpx"
)

// Purchase order lifecycle statuses.
type POStatus string

const (
	POStatusPending   POStatus = "PENDING"
	POStatusCompleted POStatus = "COMPLETED"
	POStatusIgnored   POStatus = "IGNORED"
	POStatusDeleted   POStatus = "DELETED"
)

// Goods received note statuses.
type GRNStatus string

const (
	GRNStatusPending  GRNStatus = "PENDING"
	GRNStatusAccepted GRNStatus = "ACCEPTED"
	GRNStatusDeleted  GRNStatus = "DELETED"
)

// PurchaseOrder domain model.
type PurchaseOrder struct {
	ID           int64     `json:"id"`
	Code         string    `json:"code"`
	SupplierID   int64     `json:"supplier_id"`
	SupplierName string    `json:"supplier_name,omitempty"`
	Status       POStatus  `json:"status"`
	OrderDate    time.Time `json:"order_date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// POLine represents one ordered item.
type POLine struct {
	ID        int64   `json:"id"`
	POID      int64   `json:"po_id"`
	ItemID    int64   `json:"item_id"`
	ItemName  string  `json:"item_name,omitempty"`
	UnitPrice float64 `json:"unit_price,omitempty"`
	Qty       float64 `json:"qty"`
}

// GoodsReceivedNote domain model. A GRN is 1:1 with its purchase order;
// the receiving workflow settles the PO either way.
type GoodsReceivedNote struct {
	ID           int64     `json:"id"`
	Code         string    `json:"code"`
	POID         int64     `json:"po_id"`
	POCode       string    `json:"po_code,omitempty"`
	SupplierID   int64     `json:"supplier_id"`
	SupplierName string    `json:"supplier_name,omitempty"`
	Status       GRNStatus `json:"status"`
	ReceiveDate  time.Time `json:"receive_date"`
	CreatedAt    time.Time `json:"created_at"`
}

// GRNLine records ordered vs received quantity for one item.
type GRNLine struct {
	ID          int64   `json:"id"`
	GRNID       int64   `json:"grn_id"`
	ItemID      int64   `json:"item_id"`
	ItemName    string  `json:"item_name,omitempty"`
	OrderedQty  float64 `json:"ordered_qty"`
	ReceivedQty float64 `json:"received_qty"`
}

var (
	// ErrInvalidState occurs when action violates status workflow.
	ErrInvalidState = fmt.Errorf("procurement: %w", httpx.ErrInvalidState)
	// ErrNotFound indicates record missing.
	ErrNotFound = fmt.Errorf("procurement: %w", httpx.ErrNotFound)
	// ErrValidation indicates invalid input.
	ErrValidation = fmt.Errorf("procurement: %w", httpx.ErrValidation)
	// ErrDuplicate indicates a unique constraint hit.
	ErrDuplicate = fmt.Errorf("procurement: %w", httpx.ErrDuplicate)
)
