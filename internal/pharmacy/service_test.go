package pharmacy

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mesikahq/clinic-core/internal/auth"
	"github.com/mesikahq/clinic-core/internal/money"
	"github.com/mesikahq/clinic-core/internal/patient"
)

type mockMedRepo struct {
	meds map[string]*Medication
}

func newMockMedRepo() *mockMedRepo {
	return &mockMedRepo{meds: make(map[string]*Medication)}
}

func (m *mockMedRepo) Create(_ context.Context, med *Medication) error {
	m.meds[med.ID] = med
	return nil
}

func (m *mockMedRepo) GetByID(_ context.Context, id string) (*Medication, error) {
	med, ok := m.meds[id]
	if !ok {
		return nil, ErrMedicationNotFound
	}
	cp := *med
	return &cp, nil
}

func (m *mockMedRepo) List(_ context.Context, lowStockOnly bool) ([]*Medication, error) {
	var out []*Medication
	for _, med := range m.meds {
		if lowStockOnly && !med.LowStock() {
			continue
		}
		out = append(out, med)
	}
	return out, nil
}

func (m *mockMedRepo) Update(_ context.Context, med *Medication) error {
	existing, ok := m.meds[med.ID]
	if !ok {
		return ErrMedicationNotFound
	}
	qty := existing.StockQuantity
	cp := *med
	cp.StockQuantity = qty
	m.meds[med.ID] = &cp
	return nil
}

func (m *mockMedRepo) AdjustStock(_ context.Context, id string, delta int) (int, error) {
	med, ok := m.meds[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMedicationNotFound, id)
	}
	newQty := med.StockQuantity + delta
	if newQty < 0 {
		return 0, fmt.Errorf("%w: medication %s has %d, requested %d", ErrInsufficientStock, id, med.StockQuantity, -delta)
	}
	med.StockQuantity = newQty
	return newQty, nil
}

type mockRxRepo struct {
	meds          *mockMedRepo
	prescriptions map[string]*Prescription
}

func newMockRxRepo(meds *mockMedRepo) *mockRxRepo {
	return &mockRxRepo{meds: meds, prescriptions: make(map[string]*Prescription)}
}

func (m *mockRxRepo) Create(_ context.Context, p *Prescription) error {
	m.prescriptions[p.ID] = p
	return nil
}

func (m *mockRxRepo) GetByID(_ context.Context, id string) (*Prescription, error) {
	p, ok := m.prescriptions[id]
	if !ok {
		return nil, ErrPrescriptionNotFound
	}
	return p, nil
}

func (m *mockRxRepo) List(_ context.Context, filter PrescriptionFilter) ([]*Prescription, error) {
	var out []*Prescription
	for _, p := range m.prescriptions {
		if filter.PatientID != "" && p.PatientID != filter.PatientID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Dispense mirrors the all-or-nothing transaction: every stock check passes
// before any stock moves.
func (m *mockRxRepo) Dispense(_ context.Context, id, dispensedBy string, at time.Time) (*Prescription, error) {
	p, ok := m.prescriptions[id]
	if !ok {
		return nil, ErrPrescriptionNotFound
	}
	if p.Status != PrescriptionPending {
		return nil, fmt.Errorf("%w: prescription %s is %s", ErrNotPending, id, p.Status)
	}
	for _, item := range p.Items {
		med, ok := m.meds.meds[item.MedicationID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMedicationNotFound, item.MedicationID)
		}
		if med.StockQuantity < item.Quantity {
			return nil, fmt.Errorf("%w: medication %s has %d, requested %d",
				ErrInsufficientStock, item.MedicationID, med.StockQuantity, item.Quantity)
		}
	}
	for _, item := range p.Items {
		m.meds.meds[item.MedicationID].StockQuantity -= item.Quantity
	}
	p.Status = PrescriptionDispensed
	p.DispensedBy = &dispensedBy
	p.DispensedAt = &at
	return p, nil
}

type mockPatients struct {
	known map[string]bool
}

func (m *mockPatients) Get(_ context.Context, id string) (*patient.Patient, error) {
	if !m.known[id] {
		return nil, patient.ErrPatientNotFound
	}
	return &patient.Patient{ID: id}, nil
}

type mockUsers struct {
	users map[string]*auth.User
}

func (m *mockUsers) GetUserByID(_ context.Context, id string) (*auth.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return u, nil
}

func newTestService() (Service, *mockMedRepo) {
	meds := newMockMedRepo()
	rx := newMockRxRepo(meds)
	patients := &mockPatients{known: map[string]bool{"pat-1": true}}
	users := &mockUsers{users: map[string]*auth.User{
		"doc-1":   {ID: "doc-1", Roles: []string{auth.RoleDoctor}},
		"pharm-1": {ID: "pharm-1", Roles: []string{auth.RolePharmacist}},
	}}
	return NewService(meds, rx, patients, users), meds
}

func addMedication(t *testing.T, svc Service, name string, price string, stock int) *Medication {
	t.Helper()
	m := &Medication{Name: name, UnitPrice: money.MustParse(price), StockQuantity: stock, MinStockLevel: 5}
	if err := svc.CreateMedication(context.Background(), m); err != nil {
		t.Fatalf("CreateMedication(%s): %v", name, err)
	}
	return m
}

func TestCreateMedicationDefaults(t *testing.T) {
	svc, _ := newTestService()

	m := addMedication(t, svc, "Paracetamol 500mg", "1.25", 100)
	if m.ID == "" {
		t.Fatal("expected generated id")
	}
	if m.Unit != "tablet" {
		t.Fatalf("unit = %q, want tablet", m.Unit)
	}
}

func TestCreateMedicationMissingName(t *testing.T) {
	svc, _ := newTestService()

	err := svc.CreateMedication(context.Background(), &Medication{})
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("err = %v, want ErrMissingField", err)
	}
}

func TestUpdateStock(t *testing.T) {
	svc, meds := newTestService()
	ctx := context.Background()
	m := addMedication(t, svc, "Amoxicillin 250mg", "3.40", 10)

	qty, err := svc.UpdateStock(ctx, m.ID, 5, StockAdd)
	if err != nil || qty != 15 {
		t.Fatalf("add: qty = %d, err = %v, want 15", qty, err)
	}

	qty, err = svc.UpdateStock(ctx, m.ID, 15, StockSubtract)
	if err != nil || qty != 0 {
		t.Fatalf("subtract to zero: qty = %d, err = %v, want 0", qty, err)
	}

	_, err = svc.UpdateStock(ctx, m.ID, 1, StockSubtract)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	if got := meds.meds[m.ID].StockQuantity; got != 0 {
		t.Fatalf("failed subtract changed stock to %d", got)
	}
}

func TestUpdateStockInvalidInput(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	m := addMedication(t, svc, "Ibuprofen 400mg", "2.00", 10)

	if _, err := svc.UpdateStock(ctx, m.ID, 0, StockAdd); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("err = %v, want ErrInvalidQuantity", err)
	}
	if _, err := svc.UpdateStock(ctx, m.ID, 5, "restock"); !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("err = %v, want ErrInvalidOperation", err)
	}
	if _, err := svc.UpdateStock(ctx, "missing", 5, StockAdd); !errors.Is(err, ErrMedicationNotFound) {
		t.Fatalf("err = %v, want ErrMedicationNotFound", err)
	}
}

func TestListMedicationsLowStock(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	low := addMedication(t, svc, "Insulin", "45.00", 3)
	addMedication(t, svc, "Metformin 500mg", "1.10", 200)

	out, err := svc.ListMedications(ctx, true)
	if err != nil {
		t.Fatalf("ListMedications: %v", err)
	}
	if len(out) != 1 || out[0].ID != low.ID {
		t.Fatalf("low stock filter returned %d medications", len(out))
	}
}

func TestCreatePrescription(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a := addMedication(t, svc, "Paracetamol 500mg", "100.00", 50)
	b := addMedication(t, svc, "Cough syrup", "15.50", 20)

	p := &Prescription{
		PatientID: "pat-1",
		DoctorID:  "doc-1",
		Items: []*PrescriptionItem{
			{MedicationID: a.ID, Quantity: 1},
			{MedicationID: b.ID, Quantity: 2},
		},
	}
	if err := svc.CreatePrescription(ctx, p); err != nil {
		t.Fatalf("CreatePrescription: %v", err)
	}
	if p.Status != PrescriptionPending {
		t.Fatalf("status = %q, want pending", p.Status)
	}
	if want := money.MustParse("131.00"); p.TotalAmount != want {
		t.Fatalf("total = %s, want %s", p.TotalAmount, want)
	}
	for _, item := range p.Items {
		if item.UnitPrice == 0 {
			t.Fatal("item unit price not snapshotted")
		}
		if item.PrescriptionID != p.ID {
			t.Fatal("item not linked to prescription")
		}
	}
}

func TestCreatePrescriptionValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	m := addMedication(t, svc, "Paracetamol 500mg", "1.25", 50)

	items := []*PrescriptionItem{{MedicationID: m.ID, Quantity: 1}}

	err := svc.CreatePrescription(ctx, &Prescription{PatientID: "pat-1", DoctorID: "doc-1"})
	if !errors.Is(err, ErrNoItems) {
		t.Fatalf("err = %v, want ErrNoItems", err)
	}

	err = svc.CreatePrescription(ctx, &Prescription{PatientID: "nope", DoctorID: "doc-1", Items: items})
	if !errors.Is(err, patient.ErrPatientNotFound) {
		t.Fatalf("err = %v, want ErrPatientNotFound", err)
	}

	err = svc.CreatePrescription(ctx, &Prescription{PatientID: "pat-1", DoctorID: "pharm-1", Items: items})
	if !errors.Is(err, ErrNotADoctor) {
		t.Fatalf("err = %v, want ErrNotADoctor", err)
	}

	err = svc.CreatePrescription(ctx, &Prescription{PatientID: "pat-1", DoctorID: "doc-1",
		Items: []*PrescriptionItem{{MedicationID: "missing", Quantity: 1}}})
	if !errors.Is(err, ErrMedicationNotFound) {
		t.Fatalf("err = %v, want ErrMedicationNotFound", err)
	}
}

func TestDispensePrescription(t *testing.T) {
	svc, meds := newTestService()
	ctx := context.Background()
	m := addMedication(t, svc, "Paracetamol 500mg", "1.25", 10)

	p := &Prescription{
		PatientID: "pat-1",
		DoctorID:  "doc-1",
		Items:     []*PrescriptionItem{{MedicationID: m.ID, Quantity: 4}},
	}
	if err := svc.CreatePrescription(ctx, p); err != nil {
		t.Fatalf("CreatePrescription: %v", err)
	}

	got, err := svc.DispensePrescription(ctx, p.ID, "pharm-1")
	if err != nil {
		t.Fatalf("DispensePrescription: %v", err)
	}
	if got.Status != PrescriptionDispensed {
		t.Fatalf("status = %q, want dispensed", got.Status)
	}
	if got.DispensedBy == nil || *got.DispensedBy != "pharm-1" {
		t.Fatalf("dispensed_by = %v, want pharm-1", got.DispensedBy)
	}
	if got.DispensedAt == nil {
		t.Fatal("dispensed_at not set")
	}
	if qty := meds.meds[m.ID].StockQuantity; qty != 6 {
		t.Fatalf("stock = %d, want 6", qty)
	}

	// second attempt conflicts and moves no stock
	_, err = svc.DispensePrescription(ctx, p.ID, "pharm-1")
	if !errors.Is(err, ErrNotPending) {
		t.Fatalf("err = %v, want ErrNotPending", err)
	}
	if qty := meds.meds[m.ID].StockQuantity; qty != 6 {
		t.Fatalf("stock after conflict = %d, want 6", qty)
	}
}

func TestDispensePrescriptionInsufficientStock(t *testing.T) {
	svc, meds := newTestService()
	ctx := context.Background()

	plenty := addMedication(t, svc, "Paracetamol 500mg", "1.25", 100)
	scarce := addMedication(t, svc, "Insulin", "45.00", 2)

	p := &Prescription{
		PatientID: "pat-1",
		DoctorID:  "doc-1",
		Items: []*PrescriptionItem{
			{MedicationID: plenty.ID, Quantity: 10},
			{MedicationID: scarce.ID, Quantity: 5},
		},
	}
	if err := svc.CreatePrescription(ctx, p); err != nil {
		t.Fatalf("CreatePrescription: %v", err)
	}

	_, err := svc.DispensePrescription(ctx, p.ID, "pharm-1")
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	// nothing moved, including the item that had stock
	if qty := meds.meds[plenty.ID].StockQuantity; qty != 100 {
		t.Fatalf("stock = %d, want 100", qty)
	}
	if qty := meds.meds[scarce.ID].StockQuantity; qty != 2 {
		t.Fatalf("stock = %d, want 2", qty)
	}

	got, err := svc.GetPrescription(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPrescription: %v", err)
	}
	if got.Status != PrescriptionPending {
		t.Fatalf("status = %q, want pending after failed dispense", got.Status)
	}
}

func TestDispensePrescriptionUnknownDispenser(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.DispensePrescription(context.Background(), "rx-1", "ghost")
	if !errors.Is(err, auth.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestListPrescriptionsInvalidStatus(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.ListPrescriptions(context.Background(), PrescriptionFilter{Status: "done"})
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
}
