package queue

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id string) (*Entry, error)
	// ListByDate returns the day's entries ordered by priority descending,
	// then queue number ascending.
	ListByDate(ctx context.Context, date time.Time) ([]*Entry, error)
	UpdateStatus(ctx context.Context, id, status string) error
}
