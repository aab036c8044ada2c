package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/clubsync/internal/domain/event"
	"github.com/riskibarqy/clubsync/internal/domain/spondaccount"
	"github.com/riskibarqy/clubsync/internal/domain/syncsetting"
	"github.com/riskibarqy/clubsync/internal/domain/team"
)

type teamTableModel struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

func teamToRow(t team.Team) teamTableModel {
	return teamTableModel{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt}
}

func teamFromRow(row teamTableModel) team.Team {
	return team.Team{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt}
}

type eventTableModel struct {
	ID                   string         `db:"id"`
	Title                string         `db:"title"`
	Description          string         `db:"description"`
	Type                 string         `db:"type"`
	StartAt              time.Time      `db:"start_at"`
	EndAt                time.Time      `db:"end_at"`
	TeamID               sql.NullString `db:"team_id"`
	Location             string         `db:"location"`
	Status               string         `db:"status"`
	SpondID              sql.NullString `db:"spond_id"`
	AttendanceAccepted   int            `db:"attendance_accepted"`
	AttendanceDeclined   int            `db:"attendance_declined"`
	AttendanceUnanswered int            `db:"attendance_unanswered"`
	AttendanceWaiting    int            `db:"attendance_waiting"`
	AttendanceSyncedAt   *time.Time     `db:"attendance_synced_at"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
}

var eventColumns = []string{
	"id",
	"title",
	"description",
	"type",
	"start_at",
	"end_at",
	"team_id",
	"location",
	"status",
	"spond_id",
	"attendance_accepted",
	"attendance_declined",
	"attendance_unanswered",
	"attendance_waiting",
	"attendance_synced_at",
	"created_at",
	"updated_at",
}

func eventToRow(e event.Event) eventTableModel {
	return eventTableModel{
		ID:                   e.ID,
		Title:                e.Title,
		Description:          e.Description,
		Type:                 string(e.Type),
		StartAt:              e.StartAt.UTC(),
		EndAt:                e.EndAt.UTC(),
		TeamID:               nullString(e.TeamID),
		Location:             e.Location,
		Status:               string(e.Status),
		SpondID:              nullString(e.SpondID),
		AttendanceAccepted:   e.Attendance.Accepted,
		AttendanceDeclined:   e.Attendance.Declined,
		AttendanceUnanswered: e.Attendance.Unanswered,
		AttendanceWaiting:    e.Attendance.Waiting,
		AttendanceSyncedAt:   utcPtr(e.Attendance.SyncedAt),
		CreatedAt:            e.CreatedAt.UTC(),
		UpdatedAt:            e.UpdatedAt.UTC(),
	}
}

func eventFromRow(row eventTableModel) event.Event {
	return event.Event{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Type:        event.Type(row.Type),
		StartAt:     row.StartAt.UTC(),
		EndAt:       row.EndAt.UTC(),
		TeamID:      row.TeamID.String,
		Location:    row.Location,
		Status:      event.Status(row.Status),
		SpondID:     row.SpondID.String,
		Attendance: event.Attendance{
			Accepted:   row.AttendanceAccepted,
			Declined:   row.AttendanceDeclined,
			Unanswered: row.AttendanceUnanswered,
			Waiting:    row.AttendanceWaiting,
			SyncedAt:   utcPtr(row.AttendanceSyncedAt),
		},
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

type syncSettingTableModel struct {
	TeamID           string         `db:"team_id"`
	SpondGroupID     string         `db:"spond_group_id"`
	GroupName        string         `db:"group_name"`
	ParentGroupID    sql.NullString `db:"parent_group_id"`
	ParentGroupName  string         `db:"parent_group_name"`
	IsSubgroup       bool           `db:"is_subgroup"`
	ImportEvents     bool           `db:"import_events"`
	ExportEvents     bool           `db:"export_events"`
	ImportAttendance bool           `db:"import_attendance"`
	ImportFields     int            `db:"import_fields"`
	Active           bool           `db:"active"`
	LastImportAt     *time.Time     `db:"last_import_at"`
	LastExportAt     *time.Time     `db:"last_export_at"`
	LastAttendanceAt *time.Time     `db:"last_attendance_at"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func syncSettingToRow(l syncsetting.Link) syncSettingTableModel {
	return syncSettingTableModel{
		TeamID:           l.TeamID,
		SpondGroupID:     l.SpondGroupID,
		GroupName:        l.GroupName,
		ParentGroupID:    nullString(l.ParentGroupID),
		ParentGroupName:  l.ParentGroupName,
		IsSubgroup:       l.IsSubgroup,
		ImportEvents:     l.ImportEvents,
		ExportEvents:     l.ExportEvents,
		ImportAttendance: l.ImportAttendance,
		ImportFields:     int(l.ImportFields),
		Active:           l.Active,
		LastImportAt:     utcPtr(l.LastImportAt),
		LastExportAt:     utcPtr(l.LastExportAt),
		LastAttendanceAt: utcPtr(l.LastAttendanceAt),
		CreatedAt:        l.CreatedAt.UTC(),
		UpdatedAt:        l.UpdatedAt.UTC(),
	}
}

func syncSettingFromRow(row syncSettingTableModel) syncsetting.Link {
	return syncsetting.Link{
		TeamID:           row.TeamID,
		SpondGroupID:     row.SpondGroupID,
		GroupName:        row.GroupName,
		ParentGroupID:    row.ParentGroupID.String,
		ParentGroupName:  row.ParentGroupName,
		IsSubgroup:       row.IsSubgroup,
		ImportEvents:     row.ImportEvents,
		ExportEvents:     row.ExportEvents,
		ImportAttendance: row.ImportAttendance,
		ImportFields:     syncsetting.FieldSet(row.ImportFields),
		Active:           row.Active,
		LastImportAt:     utcPtr(row.LastImportAt),
		LastExportAt:     utcPtr(row.LastExportAt),
		LastAttendanceAt: utcPtr(row.LastAttendanceAt),
		CreatedAt:        row.CreatedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}
}

type spondCredentialsTableModel struct {
	ID             int       `db:"id"`
	Email          string    `db:"email"`
	SealedPassword string    `db:"sealed_password"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func credentialsFromRow(row spondCredentialsTableModel) spondaccount.Credentials {
	return spondaccount.Credentials{
		Email:          row.Email,
		SealedPassword: row.SealedPassword,
		UpdatedAt:      row.UpdatedAt.UTC(),
	}
}
