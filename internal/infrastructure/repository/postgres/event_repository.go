package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/clubsync/internal/domain/event"
	qb "github.com/riskibarqy/clubsync/internal/platform/querybuilder"
)

type EventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) GetByID(ctx context.Context, eventID string) (event.Event, bool, error) {
	return r.getOne(ctx, "id", eventID)
}

func (r *EventRepository) GetBySpondID(ctx context.Context, spondID string) (event.Event, bool, error) {
	if spondID == "" {
		return event.Event{}, false, nil
	}
	return r.getOne(ctx, "spond_id", spondID)
}

func (r *EventRepository) ListInRange(ctx context.Context, from, to time.Time) ([]event.Event, error) {
	return r.list(ctx, "events in range",
		qb.Gte("start_at", from.UTC()),
		qb.Lt("start_at", to.UTC()),
	)
}

func (r *EventRepository) ListByTeamInRange(ctx context.Context, teamID string, from, to time.Time) ([]event.Event, error) {
	return r.list(ctx, "team events in range",
		qb.Eq("team_id", teamID),
		qb.Gte("start_at", from.UTC()),
		qb.Lt("start_at", to.UTC()),
	)
}

func (r *EventRepository) Create(ctx context.Context, e event.Event) error {
	query, args, err := qb.InsertModel("events", eventToRow(e), "")
	if err != nil {
		return fmt.Errorf("build insert event query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert event %s: id or spond id already exists", e.ID)
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns. spond_id and created_at are never
// touched here.
func (r *EventRepository) Update(ctx context.Context, e event.Event) error {
	row := eventToRow(e)
	query, args, err := qb.Update("events").
		Set("title", row.Title).
		Set("description", row.Description).
		Set("type", row.Type).
		Set("start_at", row.StartAt).
		Set("end_at", row.EndAt).
		Set("team_id", row.TeamID).
		Set("location", row.Location).
		Set("status", row.Status).
		Set("attendance_accepted", row.AttendanceAccepted).
		Set("attendance_declined", row.AttendanceDeclined).
		Set("attendance_unanswered", row.AttendanceUnanswered).
		Set("attendance_waiting", row.AttendanceWaiting).
		Set("attendance_synced_at", row.AttendanceSyncedAt).
		Set("updated_at", row.UpdatedAt).
		Where(qb.Eq("id", e.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update event query: %w", err)
	}
	return r.execOne(ctx, "update event", e.ID, query, args)
}

func (r *EventRepository) SetSpondID(ctx context.Context, eventID, spondID string) error {
	query, args, err := qb.Update("events").
		Set("spond_id", spondID).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", eventID), qb.IsNull("spond_id")).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set spond id query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("spond event %s is already linked to another event", spondID)
		}
		return fmt.Errorf("set spond id: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set spond id rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("event %s not found or already linked", eventID)
	}
	return nil
}

func (r *EventRepository) UpdateAttendance(ctx context.Context, eventID string, a event.Attendance) error {
	query, args, err := qb.Update("events").
		Set("attendance_accepted", a.Accepted).
		Set("attendance_declined", a.Declined).
		Set("attendance_unanswered", a.Unanswered).
		Set("attendance_waiting", a.Waiting).
		Set("attendance_synced_at", utcPtr(a.SyncedAt)).
		Where(qb.Eq("id", eventID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update attendance query: %w", err)
	}
	return r.execOne(ctx, "update attendance", eventID, query, args)
}

func (r *EventRepository) getOne(ctx context.Context, column, value string) (event.Event, bool, error) {
	query, args, err := qb.Select(eventColumns...).From("events").
		Where(qb.Eq(column, value)).
		Limit(1).
		ToSQL()
	if err != nil {
		return event.Event{}, false, fmt.Errorf("build select event by %s query: %w", column, err)
	}

	var row eventTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return event.Event{}, false, nil
		}
		return event.Event{}, false, fmt.Errorf("select event by %s: %w", column, err)
	}
	return eventFromRow(row), true, nil
}

func (r *EventRepository) list(ctx context.Context, what string, conditions ...qb.Condition) ([]event.Event, error) {
	query, args, err := qb.Select(eventColumns...).From("events").
		Where(conditions...).
		OrderBy("start_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select %s query: %w", what, err)
	}

	var rows []eventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", what, err)
	}

	out := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, eventFromRow(row))
	}
	return out, nil
}

func (r *EventRepository) execOne(ctx context.Context, what, eventID, query string, args []any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", what, err)
	}
	if affected == 0 {
		return fmt.Errorf("event %s not found", eventID)
	}
	return nil
}
