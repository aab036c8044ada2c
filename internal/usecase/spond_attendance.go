package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/clubsync/internal/domain/event"
	"github.com/riskibarqy/clubsync/internal/domain/syncsetting"
)

type attendanceItem struct {
	link    syncsetting.Link
	outcome ItemOutcome
	summary event.Attendance
	write   bool
}

type attendancePlan struct {
	planResult
	items []attendanceItem
}

// planAttendance fetches responses for already linked local events of teams
// whose link imports attendance. Teams in skip were refreshed by the import
// pass of the same run.
func (s *spondPipelines) planAttendance(ctx context.Context, client RemoteClient, window SyncWindow, skip map[string]bool) *attendancePlan {
	ctx, span := startUsecaseSpan(ctx, "usecase.spondPipelines.planAttendance")
	defer span.End()

	plan := &attendancePlan{}
	links, err := s.registry.GetActiveLinks(ctx, syncsetting.DirectionAttendance)
	if err != nil {
		plan.errors = append(plan.errors, SyncIssue{Kind: IssueStorageError, Context: "attendance: list links", Message: err.Error()})
		return plan
	}

	for _, link := range links {
		if plan.aborted || ctx.Err() != nil {
			break
		}
		if skip[link.TeamID] {
			continue
		}
		events, err := s.events.ListByTeamInRange(ctx, link.TeamID, window.From, window.To)
		if err != nil {
			plan.errors = append(plan.errors, SyncIssue{
				Kind:    IssueStorageError,
				Context: fmt.Sprintf("attendance: team %s: list events", link.TeamID),
				Message: err.Error(),
				TeamID:  link.TeamID,
			})
			continue
		}

		complete := true
		for _, e := range events {
			if !e.Exported() {
				continue
			}
			if ctx.Err() != nil {
				complete = false
				break
			}
			outcome := ItemOutcome{
				Pipeline:      PipelineAttendance,
				TeamID:        link.TeamID,
				EventID:       e.ID,
				RemoteEventID: e.SpondID,
				Title:         e.Title,
				StartAt:       e.StartAt,
			}

			responses, err := client.FetchAttendance(ctx, e.SpondID)
			if err != nil {
				plan.fail(err, SyncIssue{
					Context:       fmt.Sprintf("attendance: event %s", e.ID),
					EventID:       e.ID,
					TeamID:        link.TeamID,
					RemoteEventID: e.SpondID,
				})
				if plan.aborted {
					complete = false
					break
				}
				outcome.Kind, outcome.Reason = OutcomeFailed, "attendance fetch failed"
				plan.items = append(plan.items, attendanceItem{link: link, outcome: outcome})
				continue
			}

			summary := summarizeAttendance(responses, s.clock.Now().UTC())
			if summary.SameCounts(e.Attendance) {
				outcome.Kind = OutcomeUnchanged
				plan.items = append(plan.items, attendanceItem{link: link, outcome: outcome})
				continue
			}
			outcome.Kind = OutcomeUpdated
			plan.items = append(plan.items, attendanceItem{link: link, outcome: outcome, summary: summary, write: true})
		}
		if complete {
			plan.ranLinks = append(plan.ranLinks, link)
		}
	}
	return plan
}

func (s *spondPipelines) applyAttendance(ctx context.Context, plan *attendancePlan, report *SyncReport) {
	ctx, span := startUsecaseSpan(ctx, "usecase.spondPipelines.applyAttendance")
	defer span.End()

	plan.mergeInto(report)
	for _, item := range plan.items {
		if err := ctx.Err(); err != nil {
			report.addError(issueFromError(err, "attendance"))
			return
		}
		outcome := item.outcome
		if item.write {
			if err := s.events.UpdateAttendance(ctx, outcome.EventID, item.summary); err != nil {
				outcome.Kind, outcome.Reason = OutcomeFailed, "store attendance failed"
				report.addError(SyncIssue{
					Kind:          IssueStorageError,
					Context:       fmt.Sprintf("attendance: update event %s", outcome.EventID),
					Message:       err.Error(),
					EventID:       outcome.EventID,
					TeamID:        outcome.TeamID,
					RemoteEventID: outcome.RemoteEventID,
				})
			}
		}
		report.addItem(outcome)
	}

	if plan.aborted {
		return
	}
	s.recordSync(ctx, report, plan.ranLinks, syncsetting.KindAttendance)
}
