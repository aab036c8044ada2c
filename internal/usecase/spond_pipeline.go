package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/clubsync/internal/domain/event"
	"github.com/riskibarqy/clubsync/internal/domain/eventmatch"
	"github.com/riskibarqy/clubsync/internal/domain/syncsetting"
	"github.com/riskibarqy/clubsync/internal/domain/team"
	"github.com/riskibarqy/clubsync/internal/platform/id"
	"github.com/riskibarqy/clubsync/internal/platform/logging"
)

// RemoteClientProvider hands out the client of the currently configured
// Spond account, or ErrNotConfigured.
type RemoteClientProvider interface {
	Client(ctx context.Context) (RemoteClient, error)
}

// StaticRemoteClient serves a fixed client.
type StaticRemoteClient struct {
	Remote RemoteClient
}

func (p StaticRemoteClient) Client(context.Context) (RemoteClient, error) {
	if p.Remote == nil {
		return nil, ErrNotConfigured
	}
	return p.Remote, nil
}

type SpondPipelineDeps struct {
	Events      event.Repository
	Teams       team.Repository
	Links       syncsetting.Repository
	Remote      RemoteClientProvider
	IDs         id.Generator
	Clock       clockwork.Clock
	Logger      *logging.Logger
	MatchConfig eventmatch.Config
}

// spondPipelines holds what the import, export and attendance pipelines
// share. Every pipeline has a read-only plan step and a write step.
type spondPipelines struct {
	events event.Repository
	teams  team.Repository
	links  syncsetting.Repository
	// registry serves active links and records sync timestamps.
	registry *SpondLinkService
	remote   RemoteClientProvider
	ids      id.Generator
	clock    clockwork.Clock
	logger   *logging.Logger
	match    eventmatch.Config
}

func newSpondPipelines(deps SpondPipelineDeps) *spondPipelines {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	ids := deps.IDs
	if ids == nil {
		ids = id.NewRandomGenerator("evt_")
	}
	match := deps.MatchConfig
	if match.TimeWindow <= 0 {
		match = eventmatch.DefaultConfig()
	}

	return &spondPipelines{
		events:   deps.Events,
		teams:    deps.Teams,
		links:    deps.Links,
		registry: NewSpondLinkService(deps.Teams, deps.Links, clock, logger),
		remote:   deps.Remote,
		ids:      ids,
		clock:    clock,
		logger:   logger,
		match:    match,
	}
}

// planResult is what a plan step found before any write.
type planResult struct {
	errors   []SyncIssue
	warnings []SyncIssue
	// ranLinks are links whose remote listing succeeded.
	ranLinks []syncsetting.Link
	aborted  bool
}

func (p *planResult) fail(err error, issue SyncIssue) {
	kind, msg := classifyIssue(err)
	issue.Kind = kind
	issue.Message = msg
	p.errors = append(p.errors, issue)
	if kind == IssueRemoteAuthFailure {
		p.aborted = true
	}
}

func (p *planResult) mergeInto(report *SyncReport) {
	for _, issue := range p.errors {
		report.addError(issue)
	}
	for _, issue := range p.warnings {
		report.addWarning(issue)
	}
}

func (s *spondPipelines) teamNames(ctx context.Context) (map[string]string, error) {
	teams, err := s.teams.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	out := make(map[string]string, len(teams))
	for _, t := range teams {
		out[t.ID] = t.Name
	}
	return out, nil
}

// listLinkEvents fetches the remote events of one link, narrowed to the
// subgroup when the link targets one.
func (s *spondPipelines) listLinkEvents(ctx context.Context, client RemoteClient, link syncsetting.Link, window SyncWindow) ([]RemoteEvent, error) {
	items, err := client.ListEventsInRange(ctx, []string{link.ListGroupID()}, window.From, window.To)
	if err != nil {
		return nil, err
	}

	out := make([]RemoteEvent, 0, len(items))
	for _, item := range items {
		if link.IsSubgroup && !item.InSubgroup(link.SpondGroupID) {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartAt.Equal(out[j].StartAt) {
			return out[i].StartAt.Before(out[j].StartAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *spondPipelines) recordSync(ctx context.Context, report *SyncReport, links []syncsetting.Link, kind syncsetting.Kind) {
	now := s.clock.Now().UTC()
	for _, link := range links {
		if err := s.registry.RecordSync(ctx, link.TeamID, kind, now); err != nil {
			s.logger.WarnContext(ctx, "record sync timestamp failed", "team_id", link.TeamID, "kind", kind, "error", err)
			report.addError(SyncIssue{
				Kind:    IssueStorageError,
				Context: fmt.Sprintf("%s: record sync timestamp", kind),
				Message: err.Error(),
				TeamID:  link.TeamID,
			})
		}
	}
}

func summarizeAttendance(m AttendanceMap, at time.Time) event.Attendance {
	out := event.Attendance{SyncedAt: &at}
	for _, status := range m {
		switch status {
		case AttendanceAccepted:
			out.Accepted++
		case AttendanceDeclined:
			out.Declined++
		case AttendanceWaiting:
			out.Waiting++
		default:
			out.Unanswered++
		}
	}
	return out
}

func toMatchRemote(r RemoteEvent) eventmatch.Remote {
	names := make([]string, 0, 1+len(r.SubgroupNames))
	if r.GroupName != "" {
		names = append(names, r.GroupName)
	}
	names = append(names, r.SubgroupNames...)
	return eventmatch.Remote{
		ID:          r.ID,
		StartAt:     r.StartAt,
		GroupID:     r.GroupID,
		SubgroupIDs: r.SubgroupIDs,
		GroupNames:  names,
		Location:    r.Location,
	}
}

func toMatchLocal(e event.Event, teamName, linkedGroupID string) eventmatch.Local {
	return eventmatch.Local{
		ID:            e.ID,
		StartAt:       e.StartAt,
		TeamName:      teamName,
		Location:      e.Location,
		LinkedGroupID: linkedGroupID,
	}
}

func isAuthFailure(err error) bool {
	return errors.Is(err, ErrRemoteAuthFailure)
}
