package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/clubsync/internal/domain/event"
	"github.com/riskibarqy/clubsync/internal/domain/syncsetting"
	"github.com/sourcegraph/conc/panics"
)

type SpondSyncConfig struct {
	DaysBehind int
	DaysAhead  int
}

// RunTicket identifies a run started with Start.
type RunTicket struct {
	RunID     string        `json:"runId"`
	Direction SyncDirection `json:"direction"`
	Window    SyncWindow    `json:"window"`
}

type SyncRequest struct {
	Direction SyncDirection
	// Window overrides the configured window when set.
	Window *SyncWindow
	// IncludeAttendance also runs the attendance pipeline for every link that
	// imports attendance and was not already refreshed by the import pass.
	IncludeAttendance bool
}

// SpondSyncService runs the import, export and attendance pipelines. At most
// one run is active at a time.
type SpondSyncService struct {
	pipelines *spondPipelines
	cfg       SpondSyncConfig
	pool      *ants.Pool

	running  atomic.Bool
	inflight sync.WaitGroup
	mu       sync.RWMutex
	state    RunState
	last     *SyncReport
}

func NewSpondSyncService(deps SpondPipelineDeps, cfg SpondSyncConfig) (*SpondSyncService, error) {
	if cfg.DaysBehind < 0 {
		cfg.DaysBehind = 7
	}
	if cfg.DaysAhead <= 0 {
		cfg.DaysAhead = 60
	}

	pipelines := newSpondPipelines(deps)
	pool, err := ants.NewPool(1, ants.WithPanicHandler(func(v any) {
		pipelines.logger.Error("spond sync worker panicked", "panic", fmt.Sprint(v))
	}))
	if err != nil {
		return nil, fmt.Errorf("create sync worker pool: %w", err)
	}

	return &SpondSyncService{
		pipelines: pipelines,
		cfg:       cfg,
		pool:      pool,
		state:     RunStateIdle,
	}, nil
}

// Close waits for a background run to finish and stops the worker.
func (s *SpondSyncService) Close() {
	s.inflight.Wait()
	s.pool.Release()
}

func (s *SpondSyncService) State() RunState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// LastReport returns the report of the most recent finished run.
func (s *SpondSyncService) LastReport() (SyncReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return SyncReport{}, false
	}
	return *s.last, true
}

// Run executes one sync run and returns its report. Item level problems are
// reported in the report; the returned error covers only requests that
// could not start.
func (s *SpondSyncService) Run(ctx context.Context, req SyncRequest) (SyncReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SpondSyncService.Run")
	defer span.End()

	done, _, err := s.submit(ctx, req)
	if err != nil {
		return SyncReport{}, err
	}
	return *<-done, nil
}

// Start claims the run lock and runs req on the worker without waiting. The
// run ignores cancellation of ctx; its outcome is available from State and
// LastReport.
func (s *SpondSyncService) Start(ctx context.Context, req SyncRequest) (RunTicket, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SpondSyncService.Start")
	defer span.End()

	_, ticket, err := s.submit(context.WithoutCancel(ctx), req)
	if err != nil {
		return RunTicket{}, err
	}
	s.pipelines.logger.InfoContext(ctx, "spond sync started in background", "run_id", ticket.RunID, "direction", ticket.Direction)
	return ticket, nil
}

func (s *SpondSyncService) submit(ctx context.Context, req SyncRequest) (<-chan *SyncReport, RunTicket, error) {
	direction, err := ParseSyncDirection(string(req.Direction))
	if err != nil {
		return nil, RunTicket{}, err
	}
	window, err := s.resolveWindow(req.Window)
	if err != nil {
		return nil, RunTicket{}, err
	}

	client, err := s.pipelines.remote.Client(ctx)
	if err != nil {
		return nil, RunTicket{}, err
	}

	if !s.running.CompareAndSwap(false, true) {
		return nil, RunTicket{}, fmt.Errorf("%w: another sync run is active", ErrSyncInProgress)
	}

	ticket := RunTicket{RunID: uuid.NewString(), Direction: direction, Window: window}
	done := make(chan *SyncReport, 1)
	s.inflight.Add(1)
	if err := s.pool.Submit(func() {
		defer s.inflight.Done()
		report := s.executeSafely(ctx, client, ticket, req.IncludeAttendance)
		s.running.Store(false)
		done <- report
	}); err != nil {
		s.inflight.Done()
		s.running.Store(false)
		return nil, RunTicket{}, fmt.Errorf("%w: submit sync run: %v", ErrDependencyUnavailable, err)
	}
	return done, ticket, nil
}

// executeSafely turns a panic outside the pipeline guards into a failed
// report, so a waiter always gets one.
func (s *SpondSyncService) executeSafely(ctx context.Context, client RemoteClient, ticket RunTicket, includeAttendance bool) *SyncReport {
	var report *SyncReport
	var catcher panics.Catcher
	catcher.Try(func() {
		report = s.execute(ctx, client, ticket, includeAttendance)
	})
	if r := catcher.Recovered(); r != nil {
		p := s.pipelines
		p.logger.ErrorContext(ctx, "spond sync run panicked", "run_id", ticket.RunID, "panic", r.String())
		now := p.clock.Now().UTC()
		report = newSyncReport(ticket.RunID, ticket.Direction, ticket.Window, now)
		report.addError(SyncIssue{
			Kind:    IssueInternal,
			Context: "run",
			Message: fmt.Sprintf("run stopped unexpectedly: %v", r.Value),
		})
		report.finish(now)
		s.setState(report.State, report)
	}
	return report
}

func (s *SpondSyncService) execute(ctx context.Context, client RemoteClient, ticket RunTicket, includeAttendance bool) *SyncReport {
	p := s.pipelines
	direction, window := ticket.Direction, ticket.Window
	report := newSyncReport(ticket.RunID, direction, window, p.clock.Now().UTC())
	s.setState(RunStateRunning, nil)

	logger := p.logger.With("run_id", report.RunID, "direction", direction)
	logger.InfoContext(ctx, "spond sync started", "from", window.From, "to", window.To)

	runImport := direction == SyncDirectionImport || direction == SyncDirectionBoth
	runExport := direction == SyncDirectionExport || direction == SyncDirectionBoth
	runAttendance := direction == SyncDirectionAttendance || includeAttendance

	var covered map[string]bool
	if runImport {
		s.guard(ctx, report, PipelineImport, func() {
			plan := p.planImport(ctx, client, window)
			p.applyImport(ctx, plan, report)
			covered = plan.attendanceCovered()
		})
	}
	if runExport {
		s.guard(ctx, report, PipelineExport, func() {
			p.applyExport(ctx, client, p.planExport(ctx, client, window), report)
		})
	}
	if runAttendance {
		s.guard(ctx, report, PipelineAttendance, func() {
			p.applyAttendance(ctx, p.planAttendance(ctx, client, window, covered), report)
		})
	}

	report.finish(p.clock.Now().UTC())
	logger.InfoContext(ctx, "spond sync finished",
		"success", report.Success,
		"imported", report.Counts.Imported,
		"updated", report.Counts.Updated,
		"exported", report.Counts.Exported,
		"failed", report.Counts.Failed,
		"errors", len(report.Errors),
		"warnings", len(report.Warnings),
	)

	s.setState(report.State, report)
	return report
}

// guard runs one pipeline and turns a panic into an internal issue so the
// remaining pipelines still run.
func (s *SpondSyncService) guard(ctx context.Context, report *SyncReport, pipeline Pipeline, fn func()) {
	var catcher panics.Catcher
	catcher.Try(fn)
	if r := catcher.Recovered(); r != nil {
		s.pipelines.logger.ErrorContext(ctx, "spond sync pipeline panicked", "pipeline", pipeline, "panic", r.String())
		report.addError(SyncIssue{
			Kind:    IssueInternal,
			Context: string(pipeline),
			Message: fmt.Sprintf("pipeline stopped unexpectedly: %v", r.Value),
		})
	}
}

func (s *SpondSyncService) setState(state RunState, report *SyncReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	if report != nil {
		s.last = report
	}
}

func (s *SpondSyncService) resolveWindow(override *SyncWindow) (SyncWindow, error) {
	if override != nil {
		if err := override.Validate(); err != nil {
			return SyncWindow{}, err
		}
		return SyncWindow{From: override.From.UTC(), To: override.To.UTC()}, nil
	}
	return WindowAround(s.pipelines.clock.Now(), s.cfg.DaysBehind, s.cfg.DaysAhead), nil
}

// PushEvent sends the current local state of an already linked event to
// Spond. It never links new events and does not change export eligibility.
func (s *SpondSyncService) PushEvent(ctx context.Context, eventID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SpondSyncService.PushEvent")
	defer span.End()

	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return fmt.Errorf("%w: event id is required", ErrInvalidInput)
	}

	p := s.pipelines
	item, found, err := p.events.GetByID(ctx, eventID)
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}
	if !found {
		return fmt.Errorf("%w: event=%s", ErrNotFound, eventID)
	}
	if !item.Exported() {
		return fmt.Errorf("%w: event %s is not linked to Spond", ErrInvalidInput, eventID)
	}
	if err := item.ValidateForExport(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	client, err := p.remote.Client(ctx)
	if err != nil {
		return err
	}

	payload := pushPayload(item)
	if item.HasTeam() {
		link, ok, err := p.links.GetByTeamID(ctx, item.TeamID)
		if err != nil {
			return fmt.Errorf("get team link: %w", err)
		}
		if ok && link.Active {
			payload = exportPayload(item, link)
		}
	}

	if err := client.UpdateEvent(ctx, item.SpondID, payload); err != nil {
		p.logger.WarnContext(ctx, "push event to spond failed", "event_id", eventID, "spond_id", item.SpondID, "error", err)
		return fmt.Errorf("push event %s: %w", eventID, err)
	}

	p.logger.InfoContext(ctx, "pushed event to spond", "event_id", eventID, "spond_id", item.SpondID)
	return nil
}

func pushPayload(e event.Event) RemoteEventPayload {
	return exportPayload(e, syncsetting.Link{})
}
