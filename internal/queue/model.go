package queue

import (
	"encoding/json"
	"time"
)

// Queue entry statuses. Any status may be written over any other; the
// intake desk routinely moves entries back and forth.
const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

var ValidStatuses = map[string]bool{
	StatusWaiting:    true,
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusCancelled:  true,
}

// Entry is a patient's slot in one day's visit queue. Numbers are
// contiguous from 1 within a queue date; listing sorts by priority
// descending, then queue number ascending.
type Entry struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patient_id"`
	QueueNumber int       `json:"queue_number"`
	QueueDate   time.Time `json:"queue_date"`
	Status      string    `json:"status"`
	Priority    int       `json:"priority"`
	Notes       *string   `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	type Alias Entry
	return json.Marshal(&struct {
		Alias
		QueueDate string `json:"queue_date"`
	}{
		Alias:     Alias(e),
		QueueDate: e.QueueDate.Format("2006-01-02"),
	})
}
