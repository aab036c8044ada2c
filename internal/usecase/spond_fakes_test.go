package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/clubsync/internal/domain/event"
	"github.com/riskibarqy/clubsync/internal/domain/syncsetting"
	"github.com/riskibarqy/clubsync/internal/domain/team"
	"github.com/riskibarqy/clubsync/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/clubsync/internal/platform/logging"
)

var syncTestNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type sequenceIDGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s%03d", g.prefix, g.next), nil
}

type createCall struct {
	groupID string
	payload RemoteEventPayload
}

type updateCall struct {
	remoteID string
	payload  RemoteEventPayload
}

// fakeRemote is an in-memory Spond account.
type fakeRemote struct {
	mu sync.Mutex

	groups     []RemoteGroup
	events     map[string]RemoteEvent
	attendance map[string]AttendanceMap

	authErr       error
	listErr       map[string]error
	createErr     map[string]error
	attendanceErr map[string]error
	panicOnList   bool

	// block, when set, holds ListEventsInRange until closed.
	block       chan struct{}
	entered     chan struct{}
	enteredOnce sync.Once

	created    []createCall
	updated    []updateCall
	authCalls  int
	listCalls  int
	nextRemote int
}

func newFakeRemote(events ...RemoteEvent) *fakeRemote {
	f := &fakeRemote{
		events:        make(map[string]RemoteEvent, len(events)),
		attendance:    make(map[string]AttendanceMap),
		listErr:       make(map[string]error),
		createErr:     make(map[string]error),
		attendanceErr: make(map[string]error),
	}
	for _, e := range events {
		f.events[e.ID] = e
	}
	return f
}

func (f *fakeRemote) Authenticate(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authCalls++
	return f.authErr
}

func (f *fakeRemote) ListGroups(context.Context) ([]RemoteGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.authErr != nil {
		return nil, f.authErr
	}
	return append([]RemoteGroup(nil), f.groups...), nil
}

func (f *fakeRemote) ListEventsInRange(_ context.Context, groupIDs []string, from, to time.Time) ([]RemoteEvent, error) {
	if f.block != nil {
		f.enteredOnce.Do(func() { close(f.entered) })
		<-f.block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.panicOnList {
		f.panicOnList = false
		panic("listing exploded")
	}
	if f.authErr != nil {
		return nil, f.authErr
	}

	wanted := make(map[string]bool, len(groupIDs))
	for _, id := range groupIDs {
		if err := f.listErr[id]; err != nil {
			return nil, err
		}
		wanted[id] = true
	}
	out := make([]RemoteEvent, 0)
	for _, e := range f.events {
		if wanted[e.GroupID] && !e.StartAt.Before(from) && e.StartAt.Before(to) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartAt.Equal(out[j].StartAt) {
			return out[i].StartAt.Before(out[j].StartAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeRemote) CreateEvent(_ context.Context, groupID string, payload RemoteEventPayload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.authErr != nil {
		return "", f.authErr
	}
	if err := f.createErr[payload.Heading]; err != nil {
		return "", err
	}

	f.nextRemote++
	remoteID := fmt.Sprintf("sp-new-%d", f.nextRemote)
	f.created = append(f.created, createCall{groupID: groupID, payload: payload})
	f.events[remoteID] = RemoteEvent{
		ID:          remoteID,
		Heading:     payload.Heading,
		Description: payload.Description,
		StartAt:     payload.StartAt,
		EndAt:       payload.EndAt,
		Location:    payload.Location,
		GroupID:     groupID,
		SubgroupIDs: payload.SubgroupIDs,
		Category:    payload.Category,
	}
	return remoteID, nil
}

func (f *fakeRemote) UpdateEvent(_ context.Context, remoteID string, payload RemoteEventPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.authErr != nil {
		return f.authErr
	}
	if _, ok := f.events[remoteID]; !ok {
		return fmt.Errorf("spond: status 404")
	}
	f.updated = append(f.updated, updateCall{remoteID: remoteID, payload: payload})
	return nil
}

func (f *fakeRemote) FetchAttendance(_ context.Context, eventID string) (AttendanceMap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.authErr != nil {
		return nil, f.authErr
	}
	if err := f.attendanceErr[eventID]; err != nil {
		return nil, err
	}
	out := make(AttendanceMap, len(f.attendance[eventID]))
	for member, status := range f.attendance[eventID] {
		out[member] = status
	}
	return out, nil
}

func (f *fakeRemote) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

type syncFixture struct {
	events  *memory.EventRepository
	teams   *memory.TeamRepository
	links   *memory.SyncSettingRepository
	remote  *fakeRemote
	clock   *clockwork.FakeClock
	service *SpondSyncService
}

func newSyncFixture(t *testing.T, remote *fakeRemote, links []syncsetting.Link, events []event.Event) *syncFixture {
	t.Helper()

	f := &syncFixture{
		events: memory.NewEventRepository(events),
		teams: memory.NewTeamRepository([]team.Team{
			{ID: "team-a", Name: "Lions U12", CreatedAt: syncTestNow},
			{ID: "team-b", Name: "Tigers U14", CreatedAt: syncTestNow},
		}),
		links:  memory.NewSyncSettingRepository(links),
		remote: remote,
		clock:  clockwork.NewFakeClockAt(syncTestNow),
	}

	service, err := NewSpondSyncService(SpondPipelineDeps{
		Events: f.events,
		Teams:  f.teams,
		Links:  f.links,
		Remote: StaticRemoteClient{Remote: remote},
		IDs:    &sequenceIDGenerator{prefix: "evt-new-"},
		Clock:  f.clock,
		Logger: logging.NewNop(),
	}, SpondSyncConfig{DaysBehind: 7, DaysAhead: 60})
	if err != nil {
		t.Fatalf("new sync service: %v", err)
	}
	t.Cleanup(service.Close)
	f.service = service
	return f
}

func importLink(teamID, groupID string) syncsetting.Link {
	return syncsetting.Link{
		TeamID:       teamID,
		SpondGroupID: groupID,
		GroupName:    "Lions U12",
		ImportEvents: true,
		ImportFields: syncsetting.AllFields,
		Active:       true,
		CreatedAt:    syncTestNow,
		UpdatedAt:    syncTestNow,
	}
}

func exportLink(teamID, groupID string) syncsetting.Link {
	link := importLink(teamID, groupID)
	link.ImportEvents = false
	link.ExportEvents = true
	return link
}

func at(day, hour, minute int) time.Time {
	return time.Date(2026, 3, day, hour, minute, 0, 0, time.UTC)
}

func localEvent(id, teamID, title string, start time.Time) event.Event {
	return event.Event{
		ID:        id,
		Title:     title,
		Type:      event.TypePractice,
		StartAt:   start,
		EndAt:     start.Add(90 * time.Minute),
		TeamID:    teamID,
		Location:  "Field 1",
		Status:    event.StatusPlanned,
		CreatedAt: syncTestNow,
		UpdatedAt: syncTestNow,
	}
}

func remoteEvent(id, groupID, heading string, start time.Time) RemoteEvent {
	return RemoteEvent{
		ID:        id,
		Heading:   heading,
		StartAt:   start,
		EndAt:     start.Add(90 * time.Minute),
		Location:  "Field 1",
		GroupID:   groupID,
		GroupName: "Lions U12",
		Category:  "EVENT",
	}
}

func kindsOf(items []ItemOutcome) []OutcomeKind {
	out := make([]OutcomeKind, 0, len(items))
	for _, item := range items {
		out = append(out, item.Kind)
	}
	return out
}
