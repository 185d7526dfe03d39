package medrecord

import (
	"encoding/json"
	"time"
)

// Record is one visit's clinical note. visit_date is set at creation and
// never updated.
type Record struct {
	ID             string    `json:"id"`
	PatientID      string    `json:"patient_id"`
	DoctorID       string    `json:"doctor_id"`
	VisitDate      time.Time `json:"visit_date"`
	ChiefComplaint *string   `json:"chief_complaint,omitempty"`
	Examination    *string   `json:"examination,omitempty"`
	Diagnosis      *string   `json:"diagnosis,omitempty"`
	Treatment      *string   `json:"treatment,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// MarshalJSON renders visit_date date-only.
func (r Record) MarshalJSON() ([]byte, error) {
	type Alias Record
	return json.Marshal(&struct {
		Alias
		VisitDate string `json:"visit_date"`
	}{
		Alias:     Alias(r),
		VisitDate: r.VisitDate.Format("2006-01-02"),
	})
}
