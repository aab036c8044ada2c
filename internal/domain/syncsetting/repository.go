package syncsetting

import (
	"context"
	"time"
)

// Repository persists team links. Implementations keep at most one active
// link per team.
type Repository interface {
	ListLinks(ctx context.Context) ([]Link, error)
	// ListActive returns active links allowing d, ordered by team id.
	ListActive(ctx context.Context, d Direction) ([]Link, error)
	GetByTeamID(ctx context.Context, teamID string) (Link, bool, error)
	// Upsert inserts or replaces the team's link row.
	Upsert(ctx context.Context, link Link) error
	Deactivate(ctx context.Context, teamID string) error
	// RecordSync sets exactly one timestamp of the active link.
	RecordSync(ctx context.Context, teamID string, kind Kind, at time.Time) error
}
