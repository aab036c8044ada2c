package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/clubsync/internal/domain/syncsetting"
)

// SyncSettingRepository keeps one link row per team.
type SyncSettingRepository struct {
	mu    sync.RWMutex
	links map[string]syncsetting.Link
}

func NewSyncSettingRepository(links []syncsetting.Link) *SyncSettingRepository {
	byTeam := make(map[string]syncsetting.Link, len(links))
	for _, item := range links {
		byTeam[item.TeamID] = item
	}
	return &SyncSettingRepository{links: byTeam}
}

func (r *SyncSettingRepository) ListLinks(_ context.Context) ([]syncsetting.Link, error) {
	return r.sorted(func(syncsetting.Link) bool { return true }), nil
}

func (r *SyncSettingRepository) ListActive(_ context.Context, d syncsetting.Direction) ([]syncsetting.Link, error) {
	return r.sorted(func(l syncsetting.Link) bool { return l.Allows(d) }), nil
}

func (r *SyncSettingRepository) GetByTeamID(_ context.Context, teamID string) (syncsetting.Link, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.links[teamID]
	return item, ok, nil
}

func (r *SyncSettingRepository) Upsert(_ context.Context, link syncsetting.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.links[link.TeamID]; ok && link.CreatedAt.IsZero() {
		link.CreatedAt = current.CreatedAt
	}
	r.links[link.TeamID] = link
	return nil
}

func (r *SyncSettingRepository) Deactivate(_ context.Context, teamID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.links[teamID]
	if !ok {
		return fmt.Errorf("no link for team %s", teamID)
	}
	current.Active = false
	r.links[teamID] = current
	return nil
}

func (r *SyncSettingRepository) RecordSync(_ context.Context, teamID string, kind syncsetting.Kind, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.links[teamID]
	if !ok || !current.Active {
		return fmt.Errorf("no active link for team %s", teamID)
	}
	ts := at
	switch kind {
	case syncsetting.KindImport:
		current.LastImportAt = &ts
	case syncsetting.KindExport:
		current.LastExportAt = &ts
	case syncsetting.KindAttendance:
		current.LastAttendanceAt = &ts
	default:
		return fmt.Errorf("unknown sync kind %q", kind)
	}
	r.links[teamID] = current
	return nil
}

func (r *SyncSettingRepository) sorted(keep func(syncsetting.Link) bool) []syncsetting.Link {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]syncsetting.Link, 0, len(r.links))
	for _, item := range r.links {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out
}
