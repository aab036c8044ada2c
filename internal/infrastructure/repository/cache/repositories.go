package cache

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/clubsync/internal/domain/syncsetting"
	"github.com/riskibarqy/clubsync/internal/domain/team"
	basecache "github.com/riskibarqy/clubsync/internal/platform/cache"
)

type cachedTeamByID struct {
	value  team.Team
	exists bool
}

// TeamRepository caches team reads. Every write drops all cached team entries.
type TeamRepository struct {
	next team.Repository
	list *basecache.Store[[]team.Team]
	byID *basecache.Store[cachedTeamByID]
}

func NewTeamRepository(next team.Repository, ttl time.Duration, clock clockwork.Clock) *TeamRepository {
	return &TeamRepository{
		next: next,
		list: basecache.NewStore[[]team.Team](ttl, clock),
		byID: basecache.NewStore[cachedTeamByID](ttl, clock),
	}
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	items, err := r.list.GetOrLoad(ctx, "team:list", func(ctx context.Context) ([]team.Team, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]team.Team(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]team.Team(nil), items...), nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	cached, err := r.byID.GetOrLoad(ctx, "team:id:"+teamID, func(ctx context.Context) (cachedTeamByID, error) {
		item, exists, err := r.next.GetByID(ctx, teamID)
		if err != nil {
			return cachedTeamByID{}, err
		}
		return cachedTeamByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return team.Team{}, false, err
	}
	return cached.value, cached.exists, nil
}

func (r *TeamRepository) Create(ctx context.Context, t team.Team) error {
	if err := r.next.Create(ctx, t); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *TeamRepository) Delete(ctx context.Context, teamID string) error {
	if err := r.next.Delete(ctx, teamID); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *TeamRepository) invalidate(ctx context.Context) {
	r.list.DeletePrefix(ctx, "team:")
	r.byID.DeletePrefix(ctx, "team:")
}

// SyncSettingRepository caches link lookups. Any write drops the whole
// "link:" keyspace because ListActive results span every team.
type SyncSettingRepository struct {
	next  syncsetting.Repository
	links *basecache.Store[[]syncsetting.Link]
}

func NewSyncSettingRepository(next syncsetting.Repository, ttl time.Duration, clock clockwork.Clock) *SyncSettingRepository {
	return &SyncSettingRepository{next: next, links: basecache.NewStore[[]syncsetting.Link](ttl, clock)}
}

func (r *SyncSettingRepository) ListLinks(ctx context.Context) ([]syncsetting.Link, error) {
	return r.cachedList(ctx, "link:all", r.next.ListLinks)
}

func (r *SyncSettingRepository) ListActive(ctx context.Context, d syncsetting.Direction) ([]syncsetting.Link, error) {
	return r.cachedList(ctx, "link:active:"+string(d), func(ctx context.Context) ([]syncsetting.Link, error) {
		return r.next.ListActive(ctx, d)
	})
}

func (r *SyncSettingRepository) GetByTeamID(ctx context.Context, teamID string) (syncsetting.Link, bool, error) {
	return r.next.GetByTeamID(ctx, teamID)
}

func (r *SyncSettingRepository) Upsert(ctx context.Context, link syncsetting.Link) error {
	defer r.invalidate(ctx)
	return r.next.Upsert(ctx, link)
}

func (r *SyncSettingRepository) Deactivate(ctx context.Context, teamID string) error {
	defer r.invalidate(ctx)
	return r.next.Deactivate(ctx, teamID)
}

func (r *SyncSettingRepository) RecordSync(ctx context.Context, teamID string, kind syncsetting.Kind, at time.Time) error {
	defer r.invalidate(ctx)
	return r.next.RecordSync(ctx, teamID, kind, at)
}

func (r *SyncSettingRepository) cachedList(ctx context.Context, key string, load func(context.Context) ([]syncsetting.Link, error)) ([]syncsetting.Link, error) {
	items, err := r.links.GetOrLoad(ctx, key, func(ctx context.Context) ([]syncsetting.Link, error) {
		items, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return append([]syncsetting.Link(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]syncsetting.Link(nil), items...), nil
}

func (r *SyncSettingRepository) invalidate(ctx context.Context) {
	r.links.DeletePrefix(ctx, "link:")
}
