package items

import (
	"time"
)

// Item represents a catalog item owned by a single supplier.
//
// SecondPrice and WholesalePrice are derived from UnitPrice and the two
// discount tiers; they are recomputed on every write and never accepted
// from the client.
type Item struct {
	ID             int64     `json:"id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	UnitType       string    `json:"unit_type"`
	UnitPrice      float64   `json:"unit_price"`
	Discount1      float64   `json:"discount1"`
	Discount2      float64   `json:"discount2"`
	SecondPrice    float64   `json:"second_price"`
	WholesalePrice float64   `json:"wholesale_price"`
	SupplierID     int64     `json:"supplier_id"`
	SupplierName   string    `json:"supplier_name,omitempty"`
	Deleted        bool      `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
