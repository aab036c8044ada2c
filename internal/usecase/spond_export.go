package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/clubsync/internal/domain/event"
	"github.com/riskibarqy/clubsync/internal/domain/eventmatch"
	"github.com/riskibarqy/clubsync/internal/domain/syncsetting"
)

type exportItem struct {
	link    syncsetting.Link
	event   event.Event
	outcome ItemOutcome
	create  bool
}

type exportPlan struct {
	planResult
	items       []exportItem
	diagnostics ExportDiagnostics
}

// planExport classifies local events in the window. Diagnostics count each
// event once, checked in the order: already exported, no team, team not
// linked for export, eligible.
func (s *spondPipelines) planExport(ctx context.Context, client RemoteClient, window SyncWindow) *exportPlan {
	ctx, span := startUsecaseSpan(ctx, "usecase.spondPipelines.planExport")
	defer span.End()

	plan := &exportPlan{}
	events, err := s.events.ListInRange(ctx, window.From, window.To)
	if err != nil {
		plan.errors = append(plan.errors, SyncIssue{Kind: IssueStorageError, Context: "export: list events", Message: err.Error()})
		return plan
	}
	links, err := s.registry.GetActiveLinks(ctx, syncsetting.DirectionExport)
	if err != nil {
		plan.errors = append(plan.errors, SyncIssue{Kind: IssueStorageError, Context: "export: list links", Message: err.Error()})
		return plan
	}
	names, err := s.teamNames(ctx)
	if err != nil {
		plan.errors = append(plan.errors, SyncIssue{Kind: IssueStorageError, Context: "export: list teams", Message: err.Error()})
		return plan
	}

	linkByTeam := make(map[string]syncsetting.Link, len(links))
	for _, link := range links {
		linkByTeam[link.TeamID] = link
	}

	eligible := make(map[string][]event.Event, len(links))
	plan.diagnostics.TotalInRange = len(events)
	for _, e := range events {
		switch {
		case e.Exported():
			plan.diagnostics.AlreadyExported++
		case !e.HasTeam():
			plan.diagnostics.NoTeam++
		default:
			if _, ok := linkByTeam[e.TeamID]; !ok {
				plan.diagnostics.TeamNotLinked++
				continue
			}
			plan.diagnostics.Eligible++
			eligible[e.TeamID] = append(eligible[e.TeamID], e)
		}
	}

	for _, link := range links {
		if plan.aborted || ctx.Err() != nil {
			break
		}
		pending := eligible[link.TeamID]
		if len(pending) == 0 {
			plan.ranLinks = append(plan.ranLinks, link)
			continue
		}
		if s.planExportLink(ctx, client, window, link, names[link.TeamID], pending, plan) {
			plan.ranLinks = append(plan.ranLinks, link)
		}
	}
	return plan
}

func (s *spondPipelines) planExportLink(
	ctx context.Context,
	client RemoteClient,
	window SyncWindow,
	link syncsetting.Link,
	teamName string,
	pending []event.Event,
	plan *exportPlan,
) bool {
	remotes, err := s.listLinkEvents(ctx, client, link, window)
	if err != nil {
		s.logger.WarnContext(ctx, "list spond events for export failed", "team_id", link.TeamID, "group_id", link.SpondGroupID, "error", err)
		plan.fail(err, SyncIssue{
			Context: fmt.Sprintf("export: team %s group %s: list events", link.TeamID, link.SpondGroupID),
			TeamID:  link.TeamID,
			GroupID: link.SpondGroupID,
		})
		return false
	}
	candidates := make([]eventmatch.Remote, 0, len(remotes))
	for _, r := range remotes {
		candidates = append(candidates, toMatchRemote(r))
	}

	for _, e := range pending {
		outcome := ItemOutcome{
			Pipeline: PipelineExport,
			TeamID:   e.TeamID,
			EventID:  e.ID,
			Title:    e.Title,
			StartAt:  e.StartAt,
		}

		if e.Status == event.StatusCancelled {
			outcome.Kind, outcome.Reason = OutcomeSkipped, "event is cancelled"
			plan.items = append(plan.items, exportItem{link: link, event: e, outcome: outcome})
			continue
		}
		if err := e.ValidateForExport(); err != nil {
			outcome.Kind, outcome.Reason = OutcomeSkipped, err.Error()
			plan.warnings = append(plan.warnings, SyncIssue{
				Kind:    IssueValidationError,
				Context: fmt.Sprintf("export: event %s", e.ID),
				Message: err.Error(),
				EventID: e.ID,
				TeamID:  e.TeamID,
			})
			plan.items = append(plan.items, exportItem{link: link, event: e, outcome: outcome})
			continue
		}

		outcome.Kind = OutcomeCreated
		if candidate, ok := eventmatch.BestRemote(toMatchLocal(e, teamName, link.SpondGroupID), candidates, s.match); ok {
			outcome.Kind = OutcomeCreatedWithWarning
			outcome.Candidate = newMatchCandidate(candidate)
			plan.warnings = append(plan.warnings, SyncIssue{
				Kind:          IssueDuplicateSuspected,
				Context:       fmt.Sprintf("export: event %s", e.ID),
				Message:       fmt.Sprintf("event may already exist in Spond as %s (score %d, %s)", candidate.RemoteID, candidate.Score, candidate.Band),
				EventID:       e.ID,
				TeamID:        e.TeamID,
				GroupID:       link.SpondGroupID,
				RemoteEventID: candidate.RemoteID,
			})
		}
		plan.items = append(plan.items, exportItem{link: link, event: e, outcome: outcome, create: true})
	}
	return true
}

// applyExport creates the planned events in Spond and binds the returned ids.
// An authentication failure stops the remaining creates.
func (s *spondPipelines) applyExport(ctx context.Context, client RemoteClient, plan *exportPlan, report *SyncReport) {
	ctx, span := startUsecaseSpan(ctx, "usecase.spondPipelines.applyExport")
	defer span.End()

	diagnostics := plan.diagnostics
	report.ExportDiagnostics = &diagnostics
	plan.mergeInto(report)

	aborted := plan.aborted
	for _, item := range plan.items {
		outcome := item.outcome
		if !item.create {
			report.addItem(outcome)
			continue
		}
		if aborted {
			outcome.Kind, outcome.Reason, outcome.Candidate = OutcomeSkipped, "run stopped after authentication failure", nil
			report.addItem(outcome)
			continue
		}
		if err := ctx.Err(); err != nil {
			report.addError(issueFromError(err, "export"))
			return
		}

		remoteID, err := client.CreateEvent(ctx, exportGroupID(item.link), exportPayload(item.event, item.link))
		if err != nil {
			s.logger.WarnContext(ctx, "create spond event failed", "event_id", item.event.ID, "error", err)
			issue := issueFromError(err, fmt.Sprintf("export: create event %s", item.event.ID))
			issue.EventID = item.event.ID
			issue.TeamID = item.event.TeamID
			issue.GroupID = item.link.SpondGroupID
			report.addError(issue)
			outcome.Kind, outcome.Reason, outcome.Candidate = OutcomeFailed, issue.Message, nil
			report.addItem(outcome)
			aborted = isAuthFailure(err)
			continue
		}

		outcome.RemoteEventID = remoteID
		if err := s.events.SetSpondID(ctx, item.event.ID, remoteID); err != nil {
			s.logger.ErrorContext(ctx, "bind spond id failed", "event_id", item.event.ID, "spond_id", remoteID, "error", err)
			report.addError(SyncIssue{
				Kind:          IssueStorageError,
				Context:       fmt.Sprintf("export: bind spond id for event %s", item.event.ID),
				Message:       err.Error(),
				EventID:       item.event.ID,
				TeamID:        item.event.TeamID,
				RemoteEventID: remoteID,
			})
			outcome.Kind, outcome.Reason, outcome.Candidate = OutcomeFailed, "created in Spond but the local binding failed", nil
		}
		report.addItem(outcome)
	}

	if aborted {
		return
	}
	s.recordSync(ctx, report, plan.ranLinks, syncsetting.KindExport)
}

// exportGroupID is the group a new event is created in. Subgroup events are
// created in the parent and addressed to the subgroup.
func exportGroupID(link syncsetting.Link) string {
	return link.ListGroupID()
}

// exportPayload never carries attendance; local attendance is read-only
// toward Spond.
func exportPayload(e event.Event, link syncsetting.Link) RemoteEventPayload {
	payload := RemoteEventPayload{
		Heading:     e.Title,
		Description: e.Description,
		StartAt:     e.StartAt,
		EndAt:       e.EndAt,
		Location:    e.Location,
		Category:    event.Category(e.Type),
	}
	if link.IsSubgroup {
		payload.SubgroupIDs = []string{link.SpondGroupID}
	}
	return payload
}
