package medrecord

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	db *pgxpool.Pool
}

func NewRepoPG(db *pgxpool.Pool) Repository {
	return &repoPG{db: db}
}

const recordCols = `id, patient_id, doctor_id, visit_date, chief_complaint, examination, diagnosis, treatment, notes, created_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.DoctorID, &rec.VisitDate, &rec.ChiefComplaint,
		&rec.Examination, &rec.Diagnosis, &rec.Treatment, &rec.Notes, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repoPG) Create(ctx context.Context, rec *Record) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO medical_records (id, patient_id, doctor_id, visit_date, chief_complaint, examination, diagnosis, treatment, notes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		rec.ID, rec.PatientID, rec.DoctorID, rec.VisitDate, rec.ChiefComplaint,
		rec.Examination, rec.Diagnosis, rec.Treatment, rec.Notes, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert medical record: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id string) (*Record, error) {
	rec, err := scanRecord(r.db.QueryRow(ctx, `SELECT `+recordCols+` FROM medical_records WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r *repoPG) List(ctx context.Context, patientID string) ([]*Record, error) {
	query := `SELECT ` + recordCols + ` FROM medical_records`
	args := []interface{}{}
	if patientID != "" {
		query += ` WHERE patient_id = $1`
		args = append(args, patientID)
	}
	query += ` ORDER BY visit_date DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query medical records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan medical record row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
