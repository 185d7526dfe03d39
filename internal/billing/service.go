package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mesikahq/clinic-core/internal/auth"
	"github.com/mesikahq/clinic-core/internal/money"
	"github.com/mesikahq/clinic-core/internal/patient"
	"github.com/mesikahq/clinic-core/internal/sequence"
)

var (
	ErrServiceNotFound = errors.New("service not found")
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrAlreadyPaid     = errors.New("invoice already paid")
	ErrInvalidStatus   = errors.New("invalid payment status")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrMissingField    = errors.New("missing required field")
	ErrNoItems         = errors.New("invoice requires at least one item")
)

type PatientDirectory interface {
	Get(ctx context.Context, id string) (*patient.Patient, error)
}

type UserDirectory interface {
	GetUserByID(ctx context.Context, id string) (*auth.User, error)
}

type Service interface {
	CreateCatalogItem(ctx context.Context, item *CatalogItem) error
	ListCatalog(ctx context.Context, filter CatalogFilter) ([]*CatalogItem, error)

	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, id string) (*Invoice, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]*Invoice, error)
	ProcessPayment(ctx context.Context, id, method, cashierID string) (*Invoice, error)
}

type service struct {
	catalog  CatalogRepository
	invoices InvoiceRepository
	seq      sequence.Generator
	patients PatientDirectory
	users    UserDirectory
}

func NewService(catalog CatalogRepository, invoices InvoiceRepository, seq sequence.Generator, patients PatientDirectory, users UserDirectory) Service {
	return &service{catalog: catalog, invoices: invoices, seq: seq, patients: patients, users: users}
}

func (s *service) CreateCatalogItem(ctx context.Context, item *CatalogItem) error {
	if item.Name == "" {
		return fmt.Errorf("%w: name", ErrMissingField)
	}
	item.ID = uuid.New().String()
	item.Active = true
	item.CreatedAt = time.Now()
	return s.catalog.Create(ctx, item)
}

func (s *service) ListCatalog(ctx context.Context, filter CatalogFilter) ([]*CatalogItem, error) {
	return s.catalog.List(ctx, filter)
}

func (s *service) CreateInvoice(ctx context.Context, inv *Invoice) error {
	if len(inv.Items) == 0 {
		return ErrNoItems
	}
	if _, err := s.patients.Get(ctx, inv.PatientID); err != nil {
		if errors.Is(err, patient.ErrPatientNotFound) {
			return fmt.Errorf("%w: %s", patient.ErrPatientNotFound, inv.PatientID)
		}
		return err
	}

	inv.ID = uuid.New().String()
	inv.PaymentStatus = PaymentPending
	inv.PaymentMethod = nil
	inv.PaymentDate = nil
	inv.CashierID = nil
	inv.CreatedAt = time.Now()

	var total money.Cents
	for _, item := range inv.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidQuantity, item.Quantity)
		}
		// items referencing the catalog take its price and name unless
		// the caller priced them explicitly
		if item.ServiceID != nil {
			svc, err := s.catalog.GetByID(ctx, *item.ServiceID)
			if err != nil {
				if errors.Is(err, ErrServiceNotFound) {
					return fmt.Errorf("%w: %s", ErrServiceNotFound, *item.ServiceID)
				}
				return err
			}
			if item.UnitPrice == 0 {
				item.UnitPrice = svc.Price
			}
			if item.Description == "" {
				item.Description = svc.Name
			}
		}
		if item.Description == "" {
			return fmt.Errorf("%w: item description", ErrMissingField)
		}
		item.ID = uuid.New().String()
		item.InvoiceID = inv.ID
		item.Subtotal = money.LineTotal(item.UnitPrice, item.Quantity)
		total += item.Subtotal
	}
	inv.TotalAmount = total
	inv.FinalAmount = money.InvoiceFinal(total, inv.Discount, inv.Tax)

	n, err := s.seq.Next(ctx, sequence.NameInvoiceNumber, sequence.GlobalScope)
	if err != nil {
		return fmt.Errorf("failed to allocate invoice number: %w", err)
	}
	inv.InvoiceNumber = sequence.FormatInvoiceNumber(n)

	return s.invoices.Create(ctx, inv)
}

func (s *service) GetInvoice(ctx context.Context, id string) (*Invoice, error) {
	return s.invoices.GetByID(ctx, id)
}

func (s *service) ListInvoices(ctx context.Context, filter InvoiceFilter) ([]*Invoice, error) {
	if filter.Status != "" && !ValidPaymentStatuses[filter.Status] {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, filter.Status)
	}
	return s.invoices.List(ctx, filter)
}

func (s *service) ProcessPayment(ctx context.Context, id, method, cashierID string) (*Invoice, error) {
	if method == "" {
		return nil, fmt.Errorf("%w: payment method", ErrMissingField)
	}
	if _, err := s.users.GetUserByID(ctx, cashierID); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %s", auth.ErrUserNotFound, cashierID)
		}
		return nil, err
	}
	return s.invoices.MarkPaid(ctx, id, method, cashierID, time.Now())
}
