package cache

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/clubsync/internal/domain/syncsetting"
	"github.com/riskibarqy/clubsync/internal/domain/team"
	"github.com/riskibarqy/clubsync/internal/infrastructure/repository/memory"
)

var cacheTestNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type countingTeamRepository struct {
	*memory.TeamRepository
	listCalls int
	getCalls  int
}

func (r *countingTeamRepository) List(ctx context.Context) ([]team.Team, error) {
	r.listCalls++
	return r.TeamRepository.List(ctx)
}

func (r *countingTeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	r.getCalls++
	return r.TeamRepository.GetByID(ctx, teamID)
}

func TestTeamRepository_CachesReadsAndInvalidatesOnCreate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	next := &countingTeamRepository{TeamRepository: memory.NewTeamRepository([]team.Team{{ID: "team-a", Name: "Lions U12"}})}
	repo := NewTeamRepository(next, time.Minute, clockwork.NewFakeClockAt(cacheTestNow))

	for i := 0; i < 3; i++ {
		items, err := repo.List(ctx)
		if err != nil || len(items) != 1 {
			t.Fatalf("list teams: items=%d err=%v", len(items), err)
		}
	}
	if next.listCalls != 1 {
		t.Fatalf("expected one underlying list, got=%d", next.listCalls)
	}

	if _, ok, _ := repo.GetByID(ctx, "team-z"); ok {
		t.Fatalf("expected missing team")
	}
	if err := repo.Create(ctx, team.Team{ID: "team-z", Name: "Zebras"}); err != nil {
		t.Fatalf("create team: %v", err)
	}
	if _, ok, _ := repo.GetByID(ctx, "team-z"); !ok {
		t.Fatalf("expected created team after invalidation")
	}
	items, _ := repo.List(ctx)
	if len(items) != 2 || next.listCalls != 2 {
		t.Fatalf("expected refreshed list, items=%d calls=%d", len(items), next.listCalls)
	}

	if err := repo.Delete(ctx, "team-z"); err != nil {
		t.Fatalf("delete team: %v", err)
	}
	if _, ok, _ := repo.GetByID(ctx, "team-z"); ok {
		t.Fatalf("expected deleted team to be gone from the cache")
	}
}

func TestSyncSettingRepository_WritesInvalidateActiveLists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	link := syncsetting.Link{TeamID: "team-a", SpondGroupID: "grp-a", ImportEvents: true, Active: true}
	repo := NewSyncSettingRepository(memory.NewSyncSettingRepository([]syncsetting.Link{link}), time.Minute, clockwork.NewFakeClockAt(cacheTestNow))

	active, err := repo.ListActive(ctx, syncsetting.DirectionImport)
	if err != nil || len(active) != 1 {
		t.Fatalf("list active: items=%d err=%v", len(active), err)
	}

	if err := repo.Deactivate(ctx, "team-a"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	active, _ = repo.ListActive(ctx, syncsetting.DirectionImport)
	if len(active) != 0 {
		t.Fatalf("expected no active links after deactivate, got=%d", len(active))
	}
}
