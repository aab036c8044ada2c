package event

import (
	"context"
	"time"
)

// Repository describes event persistence needs from use cases.
// Range queries are inclusive of from and exclusive of to, ordered by start then id.
type Repository interface {
	GetByID(ctx context.Context, eventID string) (Event, bool, error)
	GetBySpondID(ctx context.Context, spondID string) (Event, bool, error)
	ListInRange(ctx context.Context, from, to time.Time) ([]Event, error)
	ListByTeamInRange(ctx context.Context, teamID string, from, to time.Time) ([]Event, error)
	Create(ctx context.Context, e Event) error
	Update(ctx context.Context, e Event) error
	// SetSpondID binds the event to a remote id only when it has none yet.
	SetSpondID(ctx context.Context, eventID, spondID string) error
	UpdateAttendance(ctx context.Context, eventID string, a Attendance) error
}
