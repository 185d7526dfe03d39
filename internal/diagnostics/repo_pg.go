package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// -- Lab tests --

type labRepoPG struct {
	db *pgxpool.Pool
}

func NewLabRepoPG(db *pgxpool.Pool) LabRepository {
	return &labRepoPG{db: db}
}

const labCols = `id, patient_id, medical_record_id, ordered_by, technician_id, test_name, test_type,
	status, results, notes, created_at, completed_at`

func scanLabTest(row pgx.Row) (*LabTest, error) {
	var t LabTest
	err := row.Scan(&t.ID, &t.PatientID, &t.MedicalRecordID, &t.OrderedBy, &t.TechnicianID,
		&t.TestName, &t.TestType, &t.Status, &t.Results, &t.Notes, &t.CreatedAt, &t.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *labRepoPG) Create(ctx context.Context, t *LabTest) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO lab_tests (id, patient_id, medical_record_id, ordered_by, technician_id, test_name, test_type,
			status, results, notes, created_at, completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		t.ID, t.PatientID, t.MedicalRecordID, t.OrderedBy, t.TechnicianID, t.TestName, t.TestType,
		t.Status, t.Results, t.Notes, t.CreatedAt, t.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to insert lab test: %w", err)
	}
	return nil
}

func (r *labRepoPG) GetByID(ctx context.Context, id string) (*LabTest, error) {
	t, err := scanLabTest(r.db.QueryRow(ctx, `SELECT `+labCols+` FROM lab_tests WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLabTestNotFound
		}
		return nil, err
	}
	return t, nil
}

func listWhere(filter ListFilter) (string, []interface{}) {
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
	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (r *labRepoPG) List(ctx context.Context, filter ListFilter) ([]*LabTest, error) {
	where, args := listWhere(filter)
	rows, err := r.db.Query(ctx, `SELECT `+labCols+` FROM lab_tests`+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lab tests: %w", err)
	}
	defer rows.Close()

	var tests []*LabTest
	for rows.Next() {
		t, err := scanLabTest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lab test row: %w", err)
		}
		tests = append(tests, t)
	}
	return tests, rows.Err()
}

func (r *labRepoPG) Update(ctx context.Context, t *LabTest) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE lab_tests
		SET status = $2, technician_id = $3, results = $4, completed_at = $5
		WHERE id = $1`,
		t.ID, t.Status, t.TechnicianID, t.Results, t.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to update lab test: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLabTestNotFound
	}
	return nil
}

// -- Radiology exams --

type radiologyRepoPG struct {
	db *pgxpool.Pool
}

func NewRadiologyRepoPG(db *pgxpool.Pool) RadiologyRepository {
	return &radiologyRepoPG{db: db}
}

const examCols = `id, patient_id, medical_record_id, ordered_by, radiologist_id, exam_type, body_part,
	status, findings, impression, recommendations, created_at, completed_at`

func scanExam(row pgx.Row) (*RadiologyExam, error) {
	var e RadiologyExam
	err := row.Scan(&e.ID, &e.PatientID, &e.MedicalRecordID, &e.OrderedBy, &e.RadiologistID,
		&e.ExamType, &e.BodyPart, &e.Status, &e.Findings, &e.Impression, &e.Recommendations,
		&e.CreatedAt, &e.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *radiologyRepoPG) Create(ctx context.Context, e *RadiologyExam) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO radiology_exams (id, patient_id, medical_record_id, ordered_by, radiologist_id, exam_type, body_part,
			status, findings, impression, recommendations, created_at, completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		e.ID, e.PatientID, e.MedicalRecordID, e.OrderedBy, e.RadiologistID, e.ExamType, e.BodyPart,
		e.Status, e.Findings, e.Impression, e.Recommendations, e.CreatedAt, e.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to insert radiology exam: %w", err)
	}
	return nil
}

func (r *radiologyRepoPG) GetByID(ctx context.Context, id string) (*RadiologyExam, error) {
	e, err := scanExam(r.db.QueryRow(ctx, `SELECT `+examCols+` FROM radiology_exams WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExamNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *radiologyRepoPG) List(ctx context.Context, filter ListFilter) ([]*RadiologyExam, error) {
	where, args := listWhere(filter)
	rows, err := r.db.Query(ctx, `SELECT `+examCols+` FROM radiology_exams`+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query radiology exams: %w", err)
	}
	defer rows.Close()

	var exams []*RadiologyExam
	for rows.Next() {
		e, err := scanExam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan radiology exam row: %w", err)
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

func (r *radiologyRepoPG) Update(ctx context.Context, e *RadiologyExam) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE radiology_exams
		SET status = $2, radiologist_id = $3, findings = $4, impression = $5, recommendations = $6, completed_at = $7
		WHERE id = $1`,
		e.ID, e.Status, e.RadiologistID, e.Findings, e.Impression, e.Recommendations, e.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to update radiology exam: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExamNotFound
	}
	return nil
}
