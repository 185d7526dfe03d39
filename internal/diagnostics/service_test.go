package diagnostics

import (
	"context"
	"errors"
	"testing"

	"github.com/mesikahq/clinic-core/internal/auth"
	"github.com/mesikahq/clinic-core/internal/patient"
)

type mockLabRepo struct {
	tests map[string]*LabTest
}

func newMockLabRepo() *mockLabRepo {
	return &mockLabRepo{tests: make(map[string]*LabTest)}
}

func (m *mockLabRepo) Create(_ context.Context, t *LabTest) error {
	m.tests[t.ID] = t
	return nil
}

func (m *mockLabRepo) GetByID(_ context.Context, id string) (*LabTest, error) {
	t, ok := m.tests[id]
	if !ok {
		return nil, ErrLabTestNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockLabRepo) List(_ context.Context, filter ListFilter) ([]*LabTest, error) {
	var out []*LabTest
	for _, t := range m.tests {
		if filter.PatientID != "" && t.PatientID != filter.PatientID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *mockLabRepo) Update(_ context.Context, t *LabTest) error {
	if _, ok := m.tests[t.ID]; !ok {
		return ErrLabTestNotFound
	}
	cp := *t
	m.tests[t.ID] = &cp
	return nil
}

type mockRadRepo struct {
	exams map[string]*RadiologyExam
}

func newMockRadRepo() *mockRadRepo {
	return &mockRadRepo{exams: make(map[string]*RadiologyExam)}
}

func (m *mockRadRepo) Create(_ context.Context, e *RadiologyExam) error {
	m.exams[e.ID] = e
	return nil
}

func (m *mockRadRepo) GetByID(_ context.Context, id string) (*RadiologyExam, error) {
	e, ok := m.exams[id]
	if !ok {
		return nil, ErrExamNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *mockRadRepo) List(_ context.Context, filter ListFilter) ([]*RadiologyExam, error) {
	var out []*RadiologyExam
	for _, e := range m.exams {
		if filter.PatientID != "" && e.PatientID != filter.PatientID {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *mockRadRepo) Update(_ context.Context, e *RadiologyExam) error {
	if _, ok := m.exams[e.ID]; !ok {
		return ErrExamNotFound
	}
	cp := *e
	m.exams[e.ID] = &cp
	return nil
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

func newTestService() (Service, *mockLabRepo, *mockRadRepo) {
	labs := newMockLabRepo()
	rads := newMockRadRepo()
	patients := &mockPatients{known: map[string]bool{"pat-1": true}}
	users := &mockUsers{users: map[string]*auth.User{
		"doc-1": {ID: "doc-1", Roles: []string{auth.RoleDoctor}},
	}}
	return NewService(labs, rads, patients, users), labs, rads
}

func strptr(s string) *string { return &s }

func TestCreateLabTest(t *testing.T) {
	svc, labs, _ := newTestService()

	lt := &LabTest{PatientID: "pat-1", OrderedBy: "doc-1", TestName: "CBC"}
	if err := svc.CreateLabTest(context.Background(), lt); err != nil {
		t.Fatalf("CreateLabTest: %v", err)
	}
	if lt.ID == "" {
		t.Fatal("expected generated id")
	}
	if lt.Status != StatusOrdered {
		t.Fatalf("status = %q, want %q", lt.Status, StatusOrdered)
	}
	if lt.CompletedAt != nil {
		t.Fatal("new order must not be completed")
	}
	if _, ok := labs.tests[lt.ID]; !ok {
		t.Fatal("lab test not persisted")
	}
}

func TestCreateLabTestUnknownPatient(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.CreateLabTest(context.Background(), &LabTest{PatientID: "nope", OrderedBy: "doc-1", TestName: "CBC"})
	if !errors.Is(err, patient.ErrPatientNotFound) {
		t.Fatalf("err = %v, want ErrPatientNotFound", err)
	}
}

func TestCreateLabTestUnknownOrderer(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.CreateLabTest(context.Background(), &LabTest{PatientID: "pat-1", OrderedBy: "ghost", TestName: "CBC"})
	if !errors.Is(err, auth.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestCreateLabTestMissingName(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.CreateLabTest(context.Background(), &LabTest{PatientID: "pat-1", OrderedBy: "doc-1"})
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("err = %v, want ErrMissingField", err)
	}
}

func TestUpdateLabTestCompletionTimestamp(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	lt := &LabTest{PatientID: "pat-1", OrderedBy: "doc-1", TestName: "CBC"}
	if err := svc.CreateLabTest(ctx, lt); err != nil {
		t.Fatalf("CreateLabTest: %v", err)
	}

	// completed_at must be non-nil exactly while status is completed,
	// across any sequence of updates.
	steps := []string{StatusInProgress, StatusCompleted, StatusInProgress, StatusCompleted, StatusCancelled}
	for _, status := range steps {
		got, err := svc.UpdateLabTest(ctx, lt.ID, &LabTestUpdate{Status: strptr(status)})
		if err != nil {
			t.Fatalf("UpdateLabTest(%s): %v", status, err)
		}
		wantSet := status == StatusCompleted
		if (got.CompletedAt != nil) != wantSet {
			t.Fatalf("status %s: completed_at set = %v, want %v", status, got.CompletedAt != nil, wantSet)
		}
	}
}

func TestUpdateLabTestFields(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	lt := &LabTest{PatientID: "pat-1", OrderedBy: "doc-1", TestName: "CBC"}
	if err := svc.CreateLabTest(ctx, lt); err != nil {
		t.Fatalf("CreateLabTest: %v", err)
	}

	got, err := svc.UpdateLabTest(ctx, lt.ID, &LabTestUpdate{
		Status:       strptr(StatusCompleted),
		TechnicianID: strptr("tech-1"),
		Results:      strptr("WBC 7.2"),
	})
	if err != nil {
		t.Fatalf("UpdateLabTest: %v", err)
	}
	if got.TechnicianID == nil || *got.TechnicianID != "tech-1" {
		t.Fatalf("technician = %v, want tech-1", got.TechnicianID)
	}
	if got.Results == nil || *got.Results != "WBC 7.2" {
		t.Fatalf("results = %v, want WBC 7.2", got.Results)
	}

	// an update that omits results must not clobber them
	got, err = svc.UpdateLabTest(ctx, lt.ID, &LabTestUpdate{Status: strptr(StatusCompleted)})
	if err != nil {
		t.Fatalf("UpdateLabTest: %v", err)
	}
	if got.Results == nil || *got.Results != "WBC 7.2" {
		t.Fatalf("results clobbered: %v", got.Results)
	}
}

func TestUpdateLabTestInvalidStatus(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	lt := &LabTest{PatientID: "pat-1", OrderedBy: "doc-1", TestName: "CBC"}
	if err := svc.CreateLabTest(ctx, lt); err != nil {
		t.Fatalf("CreateLabTest: %v", err)
	}

	_, err := svc.UpdateLabTest(ctx, lt.ID, &LabTestUpdate{Status: strptr("done")})
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
}

func TestUpdateLabTestNotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.UpdateLabTest(context.Background(), "missing", &LabTestUpdate{Status: strptr(StatusCompleted)})
	if !errors.Is(err, ErrLabTestNotFound) {
		t.Fatalf("err = %v, want ErrLabTestNotFound", err)
	}
}

func TestListLabTestsFilter(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	a := &LabTest{PatientID: "pat-1", OrderedBy: "doc-1", TestName: "CBC"}
	b := &LabTest{PatientID: "pat-1", OrderedBy: "doc-1", TestName: "Lipid panel"}
	for _, lt := range []*LabTest{a, b} {
		if err := svc.CreateLabTest(ctx, lt); err != nil {
			t.Fatalf("CreateLabTest: %v", err)
		}
	}
	if _, err := svc.UpdateLabTest(ctx, a.ID, &LabTestUpdate{Status: strptr(StatusCompleted)}); err != nil {
		t.Fatalf("UpdateLabTest: %v", err)
	}

	done, err := svc.ListLabTests(ctx, ListFilter{Status: StatusCompleted})
	if err != nil {
		t.Fatalf("ListLabTests: %v", err)
	}
	if len(done) != 1 || done[0].ID != a.ID {
		t.Fatalf("completed filter returned %d tests", len(done))
	}

	if _, err := svc.ListLabTests(ctx, ListFilter{Status: "bogus"}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
}

func TestCreateRadiologyExam(t *testing.T) {
	svc, _, rads := newTestService()

	ex := &RadiologyExam{PatientID: "pat-1", OrderedBy: "doc-1", ExamType: "chest x-ray"}
	if err := svc.CreateRadiologyExam(context.Background(), ex); err != nil {
		t.Fatalf("CreateRadiologyExam: %v", err)
	}
	if ex.Status != StatusOrdered {
		t.Fatalf("status = %q, want %q", ex.Status, StatusOrdered)
	}
	if _, ok := rads.exams[ex.ID]; !ok {
		t.Fatal("exam not persisted")
	}
}

func TestCreateRadiologyExamMissingType(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.CreateRadiologyExam(context.Background(), &RadiologyExam{PatientID: "pat-1", OrderedBy: "doc-1"})
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("err = %v, want ErrMissingField", err)
	}
}

func TestUpdateRadiologyExamCompletionTimestamp(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	ex := &RadiologyExam{PatientID: "pat-1", OrderedBy: "doc-1", ExamType: "chest x-ray"}
	if err := svc.CreateRadiologyExam(ctx, ex); err != nil {
		t.Fatalf("CreateRadiologyExam: %v", err)
	}

	got, err := svc.UpdateRadiologyExam(ctx, ex.ID, &RadiologyExamUpdate{
		Status:        strptr(StatusCompleted),
		RadiologistID: strptr("rad-1"),
		Findings:      strptr("clear lung fields"),
		Impression:    strptr("no acute disease"),
	})
	if err != nil {
		t.Fatalf("UpdateRadiologyExam: %v", err)
	}
	if got.CompletedAt == nil {
		t.Fatal("completed exam must carry completed_at")
	}

	got, err = svc.UpdateRadiologyExam(ctx, ex.ID, &RadiologyExamUpdate{Status: strptr(StatusCancelled)})
	if err != nil {
		t.Fatalf("UpdateRadiologyExam: %v", err)
	}
	if got.CompletedAt != nil {
		t.Fatal("cancelled exam must not carry completed_at")
	}
	if got.Findings == nil || *got.Findings != "clear lung fields" {
		t.Fatalf("findings clobbered: %v", got.Findings)
	}
}

func TestUpdateRadiologyExamNotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.UpdateRadiologyExam(context.Background(), "missing", &RadiologyExamUpdate{Status: strptr(StatusCompleted)})
	if !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("err = %v, want ErrExamNotFound", err)
	}
}
