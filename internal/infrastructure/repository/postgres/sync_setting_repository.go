package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/clubsync/internal/domain/syncsetting"
	qb "github.com/riskibarqy/clubsync/internal/platform/querybuilder"
)

var syncSettingColumns = []string{
	"team_id",
	"spond_group_id",
	"group_name",
	"parent_group_id",
	"parent_group_name",
	"is_subgroup",
	"import_events",
	"export_events",
	"import_attendance",
	"import_fields",
	"active",
	"last_import_at",
	"last_export_at",
	"last_attendance_at",
	"created_at",
	"updated_at",
}

// upsertSyncSettingSuffix replaces every column except the key and created_at.
var upsertSyncSettingSuffix = func() string {
	sets := make([]string, 0, len(syncSettingColumns))
	for _, col := range syncSettingColumns {
		if col == "team_id" || col == "created_at" {
			continue
		}
		sets = append(sets, col+" = EXCLUDED."+col)
	}
	return "ON CONFLICT (team_id) DO UPDATE SET " + strings.Join(sets, ", ")
}()

var directionColumns = map[syncsetting.Direction]string{
	syncsetting.DirectionImport:     "import_events",
	syncsetting.DirectionExport:     "export_events",
	syncsetting.DirectionAttendance: "import_attendance",
}

var kindColumns = map[syncsetting.Kind]string{
	syncsetting.KindImport:     "last_import_at",
	syncsetting.KindExport:     "last_export_at",
	syncsetting.KindAttendance: "last_attendance_at",
}

type SyncSettingRepository struct {
	db *sqlx.DB
}

func NewSyncSettingRepository(db *sqlx.DB) *SyncSettingRepository {
	return &SyncSettingRepository{db: db}
}

func (r *SyncSettingRepository) ListLinks(ctx context.Context) ([]syncsetting.Link, error) {
	return r.list(ctx, "sync settings")
}

func (r *SyncSettingRepository) ListActive(ctx context.Context, d syncsetting.Direction) ([]syncsetting.Link, error) {
	column, ok := directionColumns[d]
	if !ok {
		return nil, fmt.Errorf("unknown sync direction %q", d)
	}
	return r.list(ctx, "active sync settings",
		qb.Eq("active", true),
		qb.Eq(column, true),
	)
}

func (r *SyncSettingRepository) GetByTeamID(ctx context.Context, teamID string) (syncsetting.Link, bool, error) {
	query, args, err := qb.Select(syncSettingColumns...).From("sync_settings").
		Where(qb.Eq("team_id", teamID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return syncsetting.Link{}, false, fmt.Errorf("build select sync setting by team query: %w", err)
	}

	var row syncSettingTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return syncsetting.Link{}, false, nil
		}
		return syncsetting.Link{}, false, fmt.Errorf("select sync setting by team: %w", err)
	}
	return syncSettingFromRow(row), true, nil
}

func (r *SyncSettingRepository) Upsert(ctx context.Context, link syncsetting.Link) error {
	query, args, err := qb.InsertModel("sync_settings", syncSettingToRow(link), upsertSyncSettingSuffix)
	if err != nil {
		return fmt.Errorf("build upsert sync setting query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert sync setting: %w", err)
	}
	return nil
}

func (r *SyncSettingRepository) Deactivate(ctx context.Context, teamID string) error {
	query, args, err := qb.Update("sync_settings").
		Set("active", false).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("team_id", teamID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build deactivate sync setting query: %w", err)
	}
	return r.execOne(ctx, "deactivate sync setting", fmt.Sprintf("no link for team %s", teamID), query, args)
}

func (r *SyncSettingRepository) RecordSync(ctx context.Context, teamID string, kind syncsetting.Kind, at time.Time) error {
	column, ok := kindColumns[kind]
	if !ok {
		return fmt.Errorf("unknown sync kind %q", kind)
	}
	query, args, err := qb.Update("sync_settings").
		Set(column, at.UTC()).
		Where(qb.Eq("team_id", teamID), qb.Eq("active", true)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build record sync query: %w", err)
	}
	return r.execOne(ctx, "record "+string(kind)+" sync", fmt.Sprintf("no active link for team %s", teamID), query, args)
}

func (r *SyncSettingRepository) list(ctx context.Context, what string, conditions ...qb.Condition) ([]syncsetting.Link, error) {
	builder := qb.Select(syncSettingColumns...).From("sync_settings")
	if len(conditions) > 0 {
		builder = builder.Where(conditions...)
	}
	query, args, err := builder.OrderBy("team_id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select %s query: %w", what, err)
	}

	var rows []syncSettingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", what, err)
	}

	out := make([]syncsetting.Link, 0, len(rows))
	for _, row := range rows {
		out = append(out, syncSettingFromRow(row))
	}
	return out, nil
}

func (r *SyncSettingRepository) execOne(ctx context.Context, what, missing, query string, args []any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", what, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s", missing)
	}
	return nil
}
