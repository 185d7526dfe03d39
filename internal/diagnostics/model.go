package diagnostics

import "time"

// Order statuses shared by lab tests and radiology exams. No transition
// graph is enforced; completed_at tracks the status instead: it is set
// exactly when the status is completed.
const (
	StatusOrdered    = "ordered"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

var ValidStatuses = map[string]bool{
	StatusOrdered:    true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusCancelled:  true,
}

type LabTest struct {
	ID              string     `json:"id"`
	PatientID       string     `json:"patient_id"`
	MedicalRecordID *string    `json:"medical_record_id,omitempty"`
	OrderedBy       string     `json:"ordered_by"`
	TechnicianID    *string    `json:"technician_id,omitempty"`
	TestName        string     `json:"test_name"`
	TestType        *string    `json:"test_type,omitempty"`
	Status          string     `json:"status"`
	Results         *string    `json:"results,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

type RadiologyExam struct {
	ID              string     `json:"id"`
	PatientID       string     `json:"patient_id"`
	MedicalRecordID *string    `json:"medical_record_id,omitempty"`
	OrderedBy       string     `json:"ordered_by"`
	RadiologistID   *string    `json:"radiologist_id,omitempty"`
	ExamType        string     `json:"exam_type"`
	BodyPart        *string    `json:"body_part,omitempty"`
	Status          string     `json:"status"`
	Findings        *string    `json:"findings,omitempty"`
	Impression      *string    `json:"impression,omitempty"`
	Recommendations *string    `json:"recommendations,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// LabTestUpdate is the mutable slice of a lab test; nil fields are left
// unchanged.
type LabTestUpdate struct {
	Status       *string `json:"status,omitempty"`
	TechnicianID *string `json:"technician_id,omitempty"`
	Results      *string `json:"results,omitempty"`
}

// RadiologyExamUpdate is the mutable slice of a radiology exam.
type RadiologyExamUpdate struct {
	Status          *string `json:"status,omitempty"`
	RadiologistID   *string `json:"radiologist_id,omitempty"`
	Findings        *string `json:"findings,omitempty"`
	Impression      *string `json:"impression,omitempty"`
	Recommendations *string `json:"recommendations,omitempty"`
}
