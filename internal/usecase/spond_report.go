package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/clubsync/internal/domain/eventmatch"
)

type SyncDirection string

const (
	SyncDirectionImport     SyncDirection = "import"
	SyncDirectionExport     SyncDirection = "export"
	SyncDirectionBoth       SyncDirection = "both"
	SyncDirectionAttendance SyncDirection = "attendance"
)

func ParseSyncDirection(raw string) (SyncDirection, error) {
	switch d := SyncDirection(strings.ToLower(strings.TrimSpace(raw))); d {
	case SyncDirectionImport, SyncDirectionExport, SyncDirectionBoth, SyncDirectionAttendance:
		return d, nil
	case "":
		return SyncDirectionBoth, nil
	default:
		return "", fmt.Errorf("%w: unknown sync direction %q", ErrInvalidInput, raw)
	}
}

type RunState string

const (
	RunStateIdle      RunState = "idle"
	RunStateRunning   RunState = "running"
	RunStateCompleted RunState = "completed"
	RunStateFailed    RunState = "failed"
)

type IssueKind string

const (
	IssueRemoteAuthFailure  IssueKind = "remoteAuthFailure"
	IssueRemoteUnavailable  IssueKind = "remoteUnavailable"
	IssueValidationError    IssueKind = "validationError"
	IssueDuplicateSuspected IssueKind = "duplicateSuspected"
	IssueStorageError       IssueKind = "storageError"
	IssueInternal           IssueKind = "internal"
)

// SyncIssue is a normalized error or warning of a run.
type SyncIssue struct {
	Kind          IssueKind `json:"kind"`
	Context       string    `json:"context"`
	Message       string    `json:"message"`
	EventID       string    `json:"eventId,omitempty"`
	TeamID        string    `json:"teamId,omitempty"`
	GroupID       string    `json:"groupId,omitempty"`
	RemoteEventID string    `json:"remoteEventId,omitempty"`
}

type OutcomeKind string

const (
	OutcomeCreated            OutcomeKind = "created"
	OutcomeCreatedWithWarning OutcomeKind = "createdWithWarning"
	OutcomeUpdated            OutcomeKind = "updated"
	OutcomeUnchanged          OutcomeKind = "unchanged"
	OutcomeSkipped            OutcomeKind = "skipped"
	OutcomeFailed             OutcomeKind = "failed"
)

type Pipeline string

const (
	PipelineImport     Pipeline = "import"
	PipelineExport     Pipeline = "export"
	PipelineAttendance Pipeline = "attendance"
)

// MatchCandidate is the report view of a fuzzy match.
type MatchCandidate struct {
	LocalEventID  string   `json:"localEventId"`
	RemoteEventID string   `json:"remoteEventId"`
	Score         int      `json:"score"`
	Reasons       []string `json:"reasons"`
	Band          string   `json:"band"`
}

func newMatchCandidate(c eventmatch.Candidate) *MatchCandidate {
	reasons := make([]string, 0, len(c.Reasons))
	for _, r := range c.Reasons {
		reasons = append(reasons, string(r))
	}
	return &MatchCandidate{
		LocalEventID:  c.LocalID,
		RemoteEventID: c.RemoteID,
		Score:         c.Score,
		Reasons:       reasons,
		Band:          string(c.Band),
	}
}

// ItemOutcome is the tagged per-event result of a pipeline.
type ItemOutcome struct {
	Pipeline      Pipeline        `json:"pipeline"`
	Kind          OutcomeKind     `json:"kind"`
	TeamID        string          `json:"teamId,omitempty"`
	EventID       string          `json:"eventId,omitempty"`
	RemoteEventID string          `json:"remoteEventId,omitempty"`
	Title         string          `json:"title,omitempty"`
	StartAt       time.Time       `json:"startAt"`
	Reason        string          `json:"reason,omitempty"`
	Candidate     *MatchCandidate `json:"candidate,omitempty"`
}

type ExportDiagnostics struct {
	TotalInRange    int `json:"totalInRange"`
	Eligible        int `json:"eligible"`
	AlreadyExported int `json:"alreadyExported"`
	NoTeam          int `json:"noTeam"`
	TeamNotLinked   int `json:"teamNotLinked"`
}

type SyncCounts struct {
	Imported          int `json:"imported"`
	Updated           int `json:"updated"`
	Unchanged         int `json:"unchanged"`
	Exported          int `json:"exported"`
	AttendanceUpdated int `json:"attendanceUpdated"`
	Skipped           int `json:"skipped"`
	Failed            int `json:"failed"`
}

// SyncWindow is the half-open range [From, To) of event starts considered.
type SyncWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (w SyncWindow) Validate() error {
	if w.From.IsZero() || w.To.IsZero() || !w.To.After(w.From) {
		return fmt.Errorf("%w: sync window must have to after from", ErrInvalidInput)
	}
	return nil
}

// WindowAround returns [now-behind days, now+ahead days) truncated to whole days in UTC.
func WindowAround(now time.Time, daysBehind, daysAhead int) SyncWindow {
	day := now.UTC().Truncate(24 * time.Hour)
	return SyncWindow{
		From: day.AddDate(0, 0, -daysBehind),
		To:   day.AddDate(0, 0, daysAhead+1),
	}
}

type SyncReport struct {
	RunID             string             `json:"runId"`
	Direction         SyncDirection      `json:"direction"`
	State             RunState           `json:"state"`
	Success           bool               `json:"success"`
	DryRun            bool               `json:"dryRun"`
	StartedAt         time.Time          `json:"startedAt"`
	FinishedAt        time.Time          `json:"finishedAt"`
	Window            SyncWindow         `json:"window"`
	Counts            SyncCounts         `json:"counts"`
	Errors            []SyncIssue        `json:"errors"`
	Warnings          []SyncIssue        `json:"warnings"`
	Items             []ItemOutcome      `json:"items"`
	ExportDiagnostics *ExportDiagnostics `json:"exportDiagnostics,omitempty"`
}

func newSyncReport(runID string, direction SyncDirection, window SyncWindow, startedAt time.Time) *SyncReport {
	return &SyncReport{
		RunID:     runID,
		Direction: direction,
		State:     RunStateRunning,
		StartedAt: startedAt,
		Window:    window,
		Errors:    []SyncIssue{},
		Warnings:  []SyncIssue{},
		Items:     []ItemOutcome{},
	}
}

// addError appends an error issue. Authentication failures are kept once per report.
func (r *SyncReport) addError(issue SyncIssue) {
	if issue.Kind == IssueRemoteAuthFailure {
		for _, existing := range r.Errors {
			if existing.Kind == IssueRemoteAuthFailure {
				return
			}
		}
	}
	r.Errors = append(r.Errors, issue)
}

func (r *SyncReport) addWarning(issue SyncIssue) {
	r.Warnings = append(r.Warnings, issue)
}

func (r *SyncReport) addItem(item ItemOutcome) {
	r.Items = append(r.Items, item)
	switch item.Kind {
	case OutcomeCreated, OutcomeCreatedWithWarning:
		if item.Pipeline == PipelineExport {
			r.Counts.Exported++
		} else {
			r.Counts.Imported++
		}
	case OutcomeUpdated:
		if item.Pipeline == PipelineAttendance {
			r.Counts.AttendanceUpdated++
		} else {
			r.Counts.Updated++
		}
	case OutcomeUnchanged:
		r.Counts.Unchanged++
	case OutcomeSkipped:
		r.Counts.Skipped++
	case OutcomeFailed:
		r.Counts.Failed++
	}
}

func (r *SyncReport) finish(at time.Time) {
	r.FinishedAt = at
	r.Success = len(r.Errors) == 0
	if r.Success {
		r.State = RunStateCompleted
	} else {
		r.State = RunStateFailed
	}
}

// unexpectedRemoteMessage replaces errors without a known kind. Their text
// may carry remote response details, which stay in the server log.
const unexpectedRemoteMessage = "Spond rejected the request; see the server log for details"

// classifyIssue maps an error onto an issue kind and a message that is safe
// to show to operators.
func classifyIssue(err error) (IssueKind, string) {
	switch {
	case errors.Is(err, ErrRemoteAuthFailure):
		return IssueRemoteAuthFailure, "Spond rejected the stored credentials; reconfigure the connection"
	case errors.Is(err, ErrRemoteUnavailable):
		return IssueRemoteUnavailable, "Spond is unavailable: " + err.Error()
	case errors.Is(err, ErrInvalidInput):
		return IssueValidationError, err.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return IssueInternal, "run interrupted: " + err.Error()
	default:
		return IssueInternal, unexpectedRemoteMessage
	}
}

func issueFromError(err error, where string) SyncIssue {
	kind, msg := classifyIssue(err)
	return SyncIssue{Kind: kind, Context: where, Message: msg}
}
