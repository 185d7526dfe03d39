package queue

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/mesikahq/clinic-core/internal/patient"
)

type mockRepo struct {
	entries map[string]*Entry
}

func newMockRepo() *mockRepo {
	return &mockRepo{entries: make(map[string]*Entry)}
}

func (m *mockRepo) Create(_ context.Context, e *Entry) error {
	m.entries[e.ID] = e
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id string) (*Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, ErrEntryNotFound
	}
	return e, nil
}

func (m *mockRepo) ListByDate(_ context.Context, date time.Time) ([]*Entry, error) {
	var out []*Entry
	for _, e := range m.entries {
		if e.QueueDate.Equal(date) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].QueueNumber < out[j].QueueNumber
	})
	return out, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id, status string) error {
	e, ok := m.entries[id]
	if !ok {
		return ErrEntryNotFound
	}
	e.Status = status
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

type fakeSeq struct {
	counters map[string]int64
}

func newFakeSeq() *fakeSeq { return &fakeSeq{counters: make(map[string]int64)} }

func (f *fakeSeq) Next(_ context.Context, name, scope string) (int64, error) {
	key := name + "|" + scope
	f.counters[key]++
	return f.counters[key], nil
}

func newTestService(patientIDs ...string) Service {
	known := make(map[string]bool)
	for _, id := range patientIDs {
		known[id] = true
	}
	return NewService(newMockRepo(), &mockPatients{known: known}, newFakeSeq())
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateNumbersPerDay(t *testing.T) {
	svc := newTestService("p1")
	ctx := context.Background()
	d1 := day(2025, 3, 1)

	for i := 1; i <= 4; i++ {
		e, err := svc.Create(ctx, "p1", d1, 0, nil)
		if err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
		if e.QueueNumber != i {
			t.Errorf("entry %d got queue number %d", i, e.QueueNumber)
		}
		if e.Status != StatusWaiting {
			t.Errorf("entry %d status = %s, want waiting", i, e.Status)
		}
	}

	// A different day restarts at 1.
	e, err := svc.Create(ctx, "p1", day(2025, 3, 2), 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if e.QueueNumber != 1 {
		t.Fatalf("new day queue number = %d, want 1", e.QueueNumber)
	}
}

func TestCreateUnknownPatient(t *testing.T) {
	svc := newTestService()

	_, err := svc.Create(context.Background(), "ghost", day(2025, 3, 1), 0, nil)
	if !errors.Is(err, patient.ErrPatientNotFound) {
		t.Fatalf("err = %v, want ErrPatientNotFound", err)
	}
}

func TestListSortsByPriorityThenNumber(t *testing.T) {
	svc := newTestService("p1", "p2")
	ctx := context.Background()
	d := day(2025, 3, 1)

	first, err := svc.Create(ctx, "p1", d, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Create(ctx, "p2", d, 2, nil)
	if err != nil {
		t.Fatal(err)
	}

	entries, err := svc.ListByDate(ctx, d)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	// The priority-2 entry sorts first despite being queue number 2.
	if entries[0].ID != second.ID || entries[0].QueueNumber != 2 {
		t.Errorf("first entry = %+v, want the priority-2 entry", entries[0])
	}
	if entries[1].ID != first.ID {
		t.Errorf("second entry = %+v, want the priority-0 entry", entries[1])
	}
}

func TestUpdateStatusPermissive(t *testing.T) {
	svc := newTestService("p1")
	ctx := context.Background()

	e, err := svc.Create(ctx, "p1", day(2025, 3, 1), 0, nil)
	if err != nil {
		t.Fatal(err)
	}

	// No transition graph: completed may go back to waiting.
	for _, status := range []string{StatusCompleted, StatusWaiting, StatusCancelled, StatusInProgress} {
		updated, err := svc.UpdateStatus(ctx, e.ID, status)
		if err != nil {
			t.Fatalf("UpdateStatus(%s): %v", status, err)
		}
		if updated.Status != status {
			t.Errorf("status = %s, want %s", updated.Status, status)
		}
	}
}

func TestUpdateStatusRejectsUnknownValue(t *testing.T) {
	svc := newTestService("p1")
	ctx := context.Background()

	e, err := svc.Create(ctx, "p1", day(2025, 3, 1), 0, nil)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.UpdateStatus(ctx, e.ID, "vanished"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
}

func TestUpdateStatusUnknownEntry(t *testing.T) {
	svc := newTestService("p1")

	if _, err := svc.UpdateStatus(context.Background(), "missing", StatusCompleted); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("err = %v, want ErrEntryNotFound", err)
	}
}
