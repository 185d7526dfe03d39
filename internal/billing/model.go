package billing

import (
	"time"

	"github.com/mesikahq/clinic-core/internal/money"
)

const (
	PaymentPending   = "pending"
	PaymentPaid      = "paid"
	PaymentPartial   = "partial"
	PaymentCancelled = "cancelled"
	PaymentRefunded  = "refunded"
)

var ValidPaymentStatuses = map[string]bool{
	PaymentPending:   true,
	PaymentPaid:      true,
	PaymentPartial:   true,
	PaymentCancelled: true,
	PaymentRefunded:  true,
}

// CatalogItem is a billable service in the clinic's price list.
type CatalogItem struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Category    *string     `json:"category,omitempty"`
	Price       money.Cents `json:"price"`
	Description *string     `json:"description,omitempty"`
	Active      bool        `json:"active"`
	CreatedAt   time.Time   `json:"created_at"`
}

type Invoice struct {
	ID            string         `json:"id"`
	InvoiceNumber string         `json:"invoice_number"`
	PatientID     string         `json:"patient_id"`
	TotalAmount   money.Cents    `json:"total_amount"`
	Discount      money.Cents    `json:"discount"`
	Tax           money.Cents    `json:"tax"`
	FinalAmount   money.Cents    `json:"final_amount"`
	PaymentStatus string         `json:"payment_status"`
	PaymentMethod *string        `json:"payment_method,omitempty"`
	PaymentDate   *time.Time     `json:"payment_date,omitempty"`
	CashierID     *string        `json:"cashier_id,omitempty"`
	Notes         *string        `json:"notes,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	Items         []*InvoiceItem `json:"items"`
}

type InvoiceItem struct {
	ID          string      `json:"id"`
	InvoiceID   string      `json:"invoice_id"`
	ServiceID   *string     `json:"service_id,omitempty"`
	Description string      `json:"description"`
	Quantity    int         `json:"quantity"`
	UnitPrice   money.Cents `json:"unit_price"`
	Subtotal    money.Cents `json:"subtotal"`
}
