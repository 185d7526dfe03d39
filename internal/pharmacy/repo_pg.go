package pharmacy

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type medicationRepoPG struct {
	db *pgxpool.Pool
}

func NewMedicationRepoPG(db *pgxpool.Pool) MedicationRepository {
	return &medicationRepoPG{db: db}
}

const medicationCols = `id, name, generic_name, category, unit, unit_price_cents, stock_quantity,
	min_stock_level, description, created_at, updated_at`

func scanMedication(row pgx.Row) (*Medication, error) {
	var m Medication
	err := row.Scan(&m.ID, &m.Name, &m.GenericName, &m.Category, &m.Unit, &m.UnitPrice,
		&m.StockQuantity, &m.MinStockLevel, &m.Description, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *medicationRepoPG) Create(ctx context.Context, m *Medication) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO medications (id, name, generic_name, category, unit, unit_price_cents, stock_quantity,
			min_stock_level, description, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		m.ID, m.Name, m.GenericName, m.Category, m.Unit, m.UnitPrice, m.StockQuantity,
		m.MinStockLevel, m.Description, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert medication: %w", err)
	}
	return nil
}

func (r *medicationRepoPG) GetByID(ctx context.Context, id string) (*Medication, error) {
	m, err := scanMedication(r.db.QueryRow(ctx, `SELECT `+medicationCols+` FROM medications WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMedicationNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *medicationRepoPG) List(ctx context.Context, lowStockOnly bool) ([]*Medication, error) {
	q := `SELECT ` + medicationCols + ` FROM medications`
	if lowStockOnly {
		q += ` WHERE stock_quantity <= min_stock_level`
	}
	q += ` ORDER BY name`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query medications: %w", err)
	}
	defer rows.Close()

	var meds []*Medication
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan medication row: %w", err)
		}
		meds = append(meds, m)
	}
	return meds, rows.Err()
}

func (r *medicationRepoPG) Update(ctx context.Context, m *Medication) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE medications
		SET name = $2, generic_name = $3, category = $4, unit = $5, unit_price_cents = $6,
			min_stock_level = $7, description = $8, updated_at = $9
		WHERE id = $1`,
		m.ID, m.Name, m.GenericName, m.Category, m.Unit, m.UnitPrice,
		m.MinStockLevel, m.Description, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update medication: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMedicationNotFound
	}
	return nil
}

func (r *medicationRepoPG) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin stock adjustment: %w", err)
	}
	defer tx.Rollback(ctx)

	newQty, err := adjustStockTx(ctx, tx, id, delta)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit stock adjustment: %w", err)
	}
	return newQty, nil
}

// adjustStockTx locks the medication row and applies delta, refusing to go
// below zero. Shared by direct adjustments and dispensing.
func adjustStockTx(ctx context.Context, tx pgx.Tx, id string, delta int) (int, error) {
	var current int
	err := tx.QueryRow(ctx, `SELECT stock_quantity FROM medications WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s", ErrMedicationNotFound, id)
		}
		return 0, fmt.Errorf("failed to lock medication stock: %w", err)
	}

	newQty := current + delta
	if newQty < 0 {
		return 0, fmt.Errorf("%w: medication %s has %d, requested %d", ErrInsufficientStock, id, current, -delta)
	}

	_, err = tx.Exec(ctx, `UPDATE medications SET stock_quantity = $2, updated_at = $3 WHERE id = $1`,
		id, newQty, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to write medication stock: %w", err)
	}
	return newQty, nil
}

type prescriptionRepoPG struct {
	db *pgxpool.Pool
}

func NewPrescriptionRepoPG(db *pgxpool.Pool) PrescriptionRepository {
	return &prescriptionRepoPG{db: db}
}

const prescriptionCols = `id, patient_id, doctor_id, medical_record_id, status, total_amount_cents,
	notes, dispensed_by, dispensed_at, created_at`

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.PatientID, &p.DoctorID, &p.MedicalRecordID, &p.Status, &p.TotalAmount,
		&p.Notes, &p.DispensedBy, &p.DispensedAt, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *prescriptionRepoPG) Create(ctx context.Context, p *Prescription) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin prescription insert: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO prescriptions (id, patient_id, doctor_id, medical_record_id, status, total_amount_cents,
			notes, dispensed_by, dispensed_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.PatientID, p.DoctorID, p.MedicalRecordID, p.Status, p.TotalAmount,
		p.Notes, p.DispensedBy, p.DispensedAt, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert prescription: %w", err)
	}

	for _, item := range p.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO prescription_items (id, prescription_id, medication_id, quantity, unit_price_cents,
				dosage, frequency, duration, instructions)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			item.ID, item.PrescriptionID, item.MedicationID, item.Quantity, item.UnitPrice,
			item.Dosage, item.Frequency, item.Duration, item.Instructions)
		if err != nil {
			return fmt.Errorf("failed to insert prescription item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *prescriptionRepoPG) GetByID(ctx context.Context, id string) (*Prescription, error) {
	p, err := scanPrescription(r.db.QueryRow(ctx, `SELECT `+prescriptionCols+` FROM prescriptions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPrescriptionNotFound
		}
		return nil, err
	}
	if p.Items, err = r.loadItems(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *prescriptionRepoPG) loadItems(ctx context.Context, prescriptionID string) ([]*PrescriptionItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, prescription_id, medication_id, quantity, unit_price_cents, dosage, frequency, duration, instructions
		FROM prescription_items WHERE prescription_id = $1`, prescriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query prescription items: %w", err)
	}
	defer rows.Close()

	var items []*PrescriptionItem
	for rows.Next() {
		var it PrescriptionItem
		err := rows.Scan(&it.ID, &it.PrescriptionID, &it.MedicationID, &it.Quantity, &it.UnitPrice,
			&it.Dosage, &it.Frequency, &it.Duration, &it.Instructions)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prescription item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

func (r *prescriptionRepoPG) List(ctx context.Context, filter PrescriptionFilter) ([]*Prescription, error) {
	var conditions []string
	var args []interface{}
	if filter.PatientID != "" {
		args = append(args, filter.PatientID)
		conditions = append(conditions, fmt.Sprintf("patient_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	q := `SELECT ` + prescriptionCols + ` FROM prescriptions`
	if len(conditions) > 0 {
		q += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query prescriptions: %w", err)
	}
	defer rows.Close()

	var prescriptions []*Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prescription row: %w", err)
		}
		prescriptions = append(prescriptions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, p := range prescriptions {
		if p.Items, err = r.loadItems(ctx, p.ID); err != nil {
			return nil, err
		}
	}
	return prescriptions, nil
}

func (r *prescriptionRepoPG) Dispense(ctx context.Context, id, dispensedBy string, at time.Time) (*Prescription, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin dispense: %w", err)
	}
	defer tx.Rollback(ctx)

	p, err := scanPrescription(tx.QueryRow(ctx,
		`SELECT `+prescriptionCols+` FROM prescriptions WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPrescriptionNotFound
		}
		return nil, err
	}
	if p.Status != PrescriptionPending {
		return nil, fmt.Errorf("%w: prescription %s is %s", ErrNotPending, id, p.Status)
	}

	if p.Items, err = r.loadItems(ctx, p.ID); err != nil {
		return nil, err
	}
	for _, item := range p.Items {
		if _, err := adjustStockTx(ctx, tx, item.MedicationID, -item.Quantity); err != nil {
			return nil, err
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE prescriptions SET status = $2, dispensed_by = $3, dispensed_at = $4 WHERE id = $1`,
		id, PrescriptionDispensed, dispensedBy, at)
	if err != nil {
		return nil, fmt.Errorf("failed to mark prescription dispensed: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit dispense: %w", err)
	}

	p.Status = PrescriptionDispensed
	p.DispensedBy = &dispensedBy
	p.DispensedAt = &at
	return p, nil
}
