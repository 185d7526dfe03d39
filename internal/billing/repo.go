package billing

import (
	"context"
	"time"
)

// CatalogFilter narrows catalog listing; zero fields match everything.
type CatalogFilter struct {
	Category string
	Active   *bool
}

type InvoiceFilter struct {
	PatientID string
	Status    string
}

type CatalogRepository interface {
	Create(ctx context.Context, item *CatalogItem) error
	GetByID(ctx context.Context, id string) (*CatalogItem, error)
	List(ctx context.Context, filter CatalogFilter) ([]*CatalogItem, error)
}

type InvoiceRepository interface {
	// Create persists the invoice and its items in one transaction.
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id string) (*Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]*Invoice, error)
	// MarkPaid records the payment on a not-yet-paid invoice. An invoice
	// already marked paid fails with ErrAlreadyPaid.
	MarkPaid(ctx context.Context, id, method, cashierID string, at time.Time) (*Invoice, error)
}
