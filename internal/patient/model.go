package patient

import (
	"encoding/json"
	"time"
)

type Patient struct {
	ID                  string    `json:"id"`
	MedicalRecordNumber string    `json:"medical_record_number"`
	FirstName           string    `json:"first_name"`
	LastName            string    `json:"last_name"`
	DateOfBirth         time.Time `json:"date_of_birth"`
	Gender              string    `json:"gender"`
	Phone               *string   `json:"phone,omitempty"`
	Email               *string   `json:"email,omitempty"`
	Address             *string   `json:"address,omitempty"`
	BloodType           *string   `json:"blood_type,omitempty"`
	Allergies           *string   `json:"allergies,omitempty"`
	EmergencyContact    *string   `json:"emergency_contact,omitempty"`
	EmergencyPhone      *string   `json:"emergency_phone,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// MarshalJSON renders date_of_birth date-only. Value receiver so both
// Patient and *Patient serialize the same way.
func (p Patient) MarshalJSON() ([]byte, error) {
	type Alias Patient
	return json.Marshal(&struct {
		Alias
		DateOfBirth string `json:"date_of_birth"`
	}{
		Alias:       Alias(p),
		DateOfBirth: p.DateOfBirth.Format("2006-01-02"),
	})
}
