package sales

import (
	"fmt"
	"math"
	"time"

	"github.com/meridian-dms/meridian-dms/internal/platform/httpx"
)

// PaymentMethod of a customer order.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCheque PaymentMethod = "cheque"
	PaymentCredit PaymentMethod = "credit"
)

// PaymentStatus lifecycle of a customer order.
type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusAccepted      PaymentStatus = "accepted"
	PaymentStatusPartiallyPaid PaymentStatus = "partially paid"
)

// CashDiscountPercent is applied to the whole order when paying cash.
const CashDiscountPercent = 10.0

// Order domain model. Outstanding is derived on read, never stored.
type Order struct {
	ID            int64         `json:"id"`
	Code          string        `json:"code"`
	CustomerID    int64         `json:"customer_id"`
	CustomerName  string        `json:"customer_name,omitempty"`
	CustomerCode  string        `json:"customer_code,omitempty"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	TotalAmount   float64       `json:"total_amount"`
	Discount      float64       `json:"discount"`
	PaidAmount    float64       `json:"paid_amount"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	OrderDate     time.Time     `json:"order_date"`
	Deleted       bool          `json:"-"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Outstanding returns the unpaid remainder.
func (o Order) Outstanding() float64 {
	return round2(o.TotalAmount - o.PaidAmount - o.Discount)
}

// OrderLine records one sold item with the pricing in force at sale time.
type OrderLine struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	ItemID    int64   `json:"item_id"`
	ItemName  string  `json:"item_name,omitempty"`
	Qty       float64 `json:"qty"`
	Discount1 float64 `json:"discount1"`
	Discount2 float64 `json:"discount2"`
	ItemPrice float64 `json:"item_price"`
}

// LineTotal applies both discount tiers to the line.
func (l OrderLine) LineTotal() float64 {
	return round2(l.Qty * l.ItemPrice * (1 - l.Discount1/100) * (1 - l.Discount2/100))
}

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCash, PaymentCheque, PaymentCredit:
		return true
	}
	return false
}

// ValidPaymentStatus reports whether s is one of the accepted statuses.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusAccepted, PaymentStatusPartiallyPaid:
		return true
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var (
	// ErrNotFound indicates record missing.
	ErrNotFound = fmt.Errorf("sales: %w", httpx.ErrNotFound)
	// ErrValidation indicates invalid input.
	ErrValidation = fmt.Errorf("sales: %w", httpx.ErrValidation)
	// ErrDuplicate indicates a unique constraint hit.
	ErrDuplicate = fmt.Errorf("sales: %w", httpx.ErrDuplicate)
)
