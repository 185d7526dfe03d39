package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type catalogRepoPG struct {
	db *pgxpool.Pool
}

func NewCatalogRepoPG(db *pgxpool.Pool) CatalogRepository {
	return &catalogRepoPG{db: db}
}

const catalogCols = `id, name, category, price_cents, description, active, created_at`

func scanCatalogItem(row pgx.Row) (*CatalogItem, error) {
	var c CatalogItem
	err := row.Scan(&c.ID, &c.Name, &c.Category, &c.Price, &c.Description, &c.Active, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *catalogRepoPG) Create(ctx context.Context, item *CatalogItem) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO services (id, name, category, price_cents, description, active, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		item.ID, item.Name, item.Category, item.Price, item.Description, item.Active, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert service: %w", err)
	}
	return nil
}

func (r *catalogRepoPG) GetByID(ctx context.Context, id string) (*CatalogItem, error) {
	c, err := scanCatalogItem(r.db.QueryRow(ctx, `SELECT `+catalogCols+` FROM services WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *catalogRepoPG) List(ctx context.Context, filter CatalogFilter) ([]*CatalogItem, error) {
	var conditions []string
	var args []interface{}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)))
	}
	q := `SELECT ` + catalogCols + ` FROM services`
	if len(conditions) > 0 {
		q += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	q += ` ORDER BY name`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query services: %w", err)
	}
	defer rows.Close()

	var items []*CatalogItem
	for rows.Next() {
		c, err := scanCatalogItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan service row: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

type invoiceRepoPG struct {
	db *pgxpool.Pool
}

func NewInvoiceRepoPG(db *pgxpool.Pool) InvoiceRepository {
	return &invoiceRepoPG{db: db}
}

const invoiceCols = `id, invoice_number, patient_id, total_amount_cents, discount_cents, tax_cents,
	final_amount_cents, payment_status, payment_method, payment_date, cashier_id, notes, created_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.InvoiceNumber, &inv.PatientID, &inv.TotalAmount, &inv.Discount,
		&inv.Tax, &inv.FinalAmount, &inv.PaymentStatus, &inv.PaymentMethod, &inv.PaymentDate,
		&inv.CashierID, &inv.Notes, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invoiceRepoPG) Create(ctx context.Context, inv *Invoice) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin invoice insert: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO invoices (id, invoice_number, patient_id, total_amount_cents, discount_cents, tax_cents,
			final_amount_cents, payment_status, payment_method, payment_date, cashier_id, notes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		inv.ID, inv.InvoiceNumber, inv.PatientID, inv.TotalAmount, inv.Discount, inv.Tax,
		inv.FinalAmount, inv.PaymentStatus, inv.PaymentMethod, inv.PaymentDate, inv.CashierID,
		inv.Notes, inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}

	for _, item := range inv.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO invoice_items (id, invoice_id, service_id, description, quantity, unit_price_cents, subtotal_cents)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			item.ID, item.InvoiceID, item.ServiceID, item.Description, item.Quantity, item.UnitPrice, item.Subtotal)
		if err != nil {
			return fmt.Errorf("failed to insert invoice item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *invoiceRepoPG) GetByID(ctx context.Context, id string) (*Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRow(ctx, `SELECT `+invoiceCols+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	if inv.Items, err = r.loadItems(ctx, inv.ID); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *invoiceRepoPG) loadItems(ctx context.Context, invoiceID string) ([]*InvoiceItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, invoice_id, service_id, description, quantity, unit_price_cents, subtotal_cents
		FROM invoice_items WHERE invoice_id = $1`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice items: %w", err)
	}
	defer rows.Close()

	var items []*InvoiceItem
	for rows.Next() {
		var it InvoiceItem
		err := rows.Scan(&it.ID, &it.InvoiceID, &it.ServiceID, &it.Description, &it.Quantity, &it.UnitPrice, &it.Subtotal)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

func (r *invoiceRepoPG) List(ctx context.Context, filter InvoiceFilter) ([]*Invoice, error) {
	var conditions []string
	var args []interface{}
	if filter.PatientID != "" {
		args = append(args, filter.PatientID)
		conditions = append(conditions, fmt.Sprintf("patient_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("payment_status = $%d", len(args)))
	}
	q := `SELECT ` + invoiceCols + ` FROM invoices`
	if len(conditions) > 0 {
		q += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice row: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, inv := range invoices {
		if inv.Items, err = r.loadItems(ctx, inv.ID); err != nil {
			return nil, err
		}
	}
	return invoices, nil
}

func (r *invoiceRepoPG) MarkPaid(ctx context.Context, id, method, cashierID string, at time.Time) (*Invoice, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin payment: %w", err)
	}
	defer tx.Rollback(ctx)

	inv, err := scanInvoice(tx.QueryRow(ctx, `SELECT `+invoiceCols+` FROM invoices WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	if inv.PaymentStatus == PaymentPaid {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyPaid, inv.InvoiceNumber)
	}

	_, err = tx.Exec(ctx, `
		UPDATE invoices SET payment_status = $2, payment_method = $3, payment_date = $4, cashier_id = $5
		WHERE id = $1`,
		id, PaymentPaid, method, at, cashierID)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit payment: %w", err)
	}

	inv.PaymentStatus = PaymentPaid
	inv.PaymentMethod = &method
	inv.PaymentDate = &at
	inv.CashierID = &cashierID
	if inv.Items, err = r.loadItems(ctx, inv.ID); err != nil {
		return nil, err
	}
	return inv, nil
}
