package pharmacy

import (
	"time"

	"github.com/mesikahq/clinic-core/internal/money"
)

const (
	PrescriptionPending   = "pending"
	PrescriptionDispensed = "dispensed"
	PrescriptionCancelled = "cancelled"
)

var ValidPrescriptionStatuses = map[string]bool{
	PrescriptionPending:   true,
	PrescriptionDispensed: true,
	PrescriptionCancelled: true,
}

// Stock operations accepted by UpdateStock.
const (
	StockAdd      = "add"
	StockSubtract = "subtract"
)

type Medication struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	GenericName   *string     `json:"generic_name,omitempty"`
	Category      *string     `json:"category,omitempty"`
	Unit          string      `json:"unit"`
	UnitPrice     money.Cents `json:"unit_price"`
	StockQuantity int         `json:"stock_quantity"`
	MinStockLevel int         `json:"min_stock_level"`
	Description   *string     `json:"description,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// LowStock reports whether the medication has fallen to or below its
// reorder threshold.
func (m *Medication) LowStock() bool {
	return m.StockQuantity <= m.MinStockLevel
}

type Prescription struct {
	ID              string              `json:"id"`
	PatientID       string              `json:"patient_id"`
	DoctorID        string              `json:"doctor_id"`
	MedicalRecordID *string             `json:"medical_record_id,omitempty"`
	Status          string              `json:"status"`
	TotalAmount     money.Cents         `json:"total_amount"`
	Notes           *string             `json:"notes,omitempty"`
	DispensedBy     *string             `json:"dispensed_by,omitempty"`
	DispensedAt     *time.Time          `json:"dispensed_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	Items           []*PrescriptionItem `json:"items"`
}

type PrescriptionItem struct {
	ID             string      `json:"id"`
	PrescriptionID string      `json:"prescription_id"`
	MedicationID   string      `json:"medication_id"`
	Quantity       int         `json:"quantity"`
	UnitPrice      money.Cents `json:"unit_price"`
	Dosage         *string     `json:"dosage,omitempty"`
	Frequency      *string     `json:"frequency,omitempty"`
	Duration       *string     `json:"duration,omitempty"`
	Instructions   *string     `json:"instructions,omitempty"`
}
