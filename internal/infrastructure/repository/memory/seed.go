package memory

import (
	"time"

	"github.com/riskibarqy/clubsync/internal/domain/event"
	"github.com/riskibarqy/clubsync/internal/domain/team"
)

const (
	TeamIDLionsU12   = "team-lions-u12"
	TeamIDLionsU14   = "team-lions-u14"
	TeamIDTigersGirl = "team-tigers-girls"
)

var seedCreatedAt = time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

// SeedTeams is the demo club used when no database is configured.
func SeedTeams() []team.Team {
	return []team.Team{
		{ID: TeamIDLionsU12, Name: "Lions U12", CreatedAt: seedCreatedAt},
		{ID: TeamIDLionsU14, Name: "Lions U14", CreatedAt: seedCreatedAt},
		{ID: TeamIDTigersGirl, Name: "Tigers Girls", CreatedAt: seedCreatedAt},
	}
}

// SeedEvents places a week of practices and a game around now so that a
// fresh link has something to export.
func SeedEvents(now time.Time) []event.Event {
	day := now.UTC().Truncate(24 * time.Hour)
	at := func(days, hour int) time.Time {
		return day.AddDate(0, 0, days).Add(time.Duration(hour) * time.Hour)
	}

	return []event.Event{
		{
			ID:        "evt-seed-001",
			Title:     "U12 practice",
			Type:      event.TypePractice,
			StartAt:   at(1, 17),
			EndAt:     at(1, 17).Add(90 * time.Minute),
			TeamID:    TeamIDLionsU12,
			Location:  "Field 1",
			Status:    event.StatusPlanned,
			CreatedAt: seedCreatedAt,
			UpdatedAt: seedCreatedAt,
		},
		{
			ID:          "evt-seed-002",
			Title:       "U12 vs Eagles",
			Description: "Home game, meet 30 minutes early.",
			Type:        event.TypeGame,
			StartAt:     at(5, 10),
			EndAt:       at(5, 12),
			TeamID:      TeamIDLionsU12,
			Location:    "Main pitch",
			Status:      event.StatusConfirmed,
			CreatedAt:   seedCreatedAt,
			UpdatedAt:   seedCreatedAt,
		},
		{
			ID:        "evt-seed-003",
			Title:     "U14 practice",
			Type:      event.TypePractice,
			StartAt:   at(2, 18),
			EndAt:     at(2, 18).Add(90 * time.Minute),
			TeamID:    TeamIDLionsU14,
			Location:  "Field 2",
			Status:    event.StatusPlanned,
			CreatedAt: seedCreatedAt,
			UpdatedAt: seedCreatedAt,
		},
		{
			ID:        "evt-seed-004",
			Title:     "Club meeting",
			Type:      event.TypeMeeting,
			StartAt:   at(3, 19),
			EndAt:     at(3, 20),
			Location:  "Clubhouse",
			Status:    event.StatusPlanned,
			CreatedAt: seedCreatedAt,
			UpdatedAt: seedCreatedAt,
		},
	}
}
