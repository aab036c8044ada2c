package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/clubsync/internal/domain/event"
	"github.com/riskibarqy/clubsync/internal/domain/eventmatch"
	"github.com/riskibarqy/clubsync/internal/domain/syncsetting"
)

type importWrite int

const (
	importWriteNone importWrite = iota
	importWriteCreate
	importWriteUpdate
)

type importItem struct {
	link    syncsetting.Link
	outcome ItemOutcome
	write   importWrite
	// target is the event as it will be stored.
	target event.Event
}

type importPlan struct {
	planResult
	items []importItem
}

// planImport walks active import links in team order and classifies every
// remote event in the window. It performs no writes.
func (s *spondPipelines) planImport(ctx context.Context, client RemoteClient, window SyncWindow) *importPlan {
	ctx, span := startUsecaseSpan(ctx, "usecase.spondPipelines.planImport")
	defer span.End()

	plan := &importPlan{}
	links, err := s.registry.GetActiveLinks(ctx, syncsetting.DirectionImport)
	if err != nil {
		plan.errors = append(plan.errors, SyncIssue{Kind: IssueStorageError, Context: "import: list links", Message: err.Error()})
		return plan
	}
	names, err := s.teamNames(ctx)
	if err != nil {
		plan.errors = append(plan.errors, SyncIssue{Kind: IssueStorageError, Context: "import: list teams", Message: err.Error()})
		return plan
	}

	handled := make(map[string]string)
	for _, link := range links {
		if plan.aborted || ctx.Err() != nil {
			break
		}
		if s.planImportLink(ctx, client, window, link, names[link.TeamID], handled, plan) {
			plan.ranLinks = append(plan.ranLinks, link)
		}
	}
	return plan
}

func (s *spondPipelines) planImportLink(
	ctx context.Context,
	client RemoteClient,
	window SyncWindow,
	link syncsetting.Link,
	teamName string,
	handled map[string]string,
	plan *importPlan,
) bool {
	where := fmt.Sprintf("import: team %s group %s", link.TeamID, link.SpondGroupID)

	remotes, err := s.listLinkEvents(ctx, client, link, window)
	if err != nil {
		s.logger.WarnContext(ctx, "list spond events failed", "team_id", link.TeamID, "group_id", link.SpondGroupID, "error", err)
		plan.fail(err, SyncIssue{Context: where + ": list events", TeamID: link.TeamID, GroupID: link.SpondGroupID})
		return false
	}

	locals, err := s.events.ListByTeamInRange(ctx, link.TeamID, window.From, window.To)
	if err != nil {
		plan.errors = append(plan.errors, SyncIssue{Kind: IssueStorageError, Context: where + ": list local events", Message: err.Error(), TeamID: link.TeamID})
		return false
	}
	unlinked := make([]eventmatch.Local, 0, len(locals))
	for _, e := range locals {
		if !e.Exported() {
			unlinked = append(unlinked, toMatchLocal(e, teamName, link.SpondGroupID))
		}
	}

	for _, remote := range remotes {
		if ctx.Err() != nil {
			return false
		}
		base := ItemOutcome{
			Pipeline:      PipelineImport,
			TeamID:        link.TeamID,
			RemoteEventID: remote.ID,
			Title:         remote.Heading,
			StartAt:       remote.StartAt,
		}

		if owner, dup := handled[remote.ID]; dup {
			base.Kind = OutcomeSkipped
			base.Reason = "already imported for team " + owner
			plan.items = append(plan.items, importItem{link: link, outcome: base})
			continue
		}
		handled[remote.ID] = link.TeamID

		item, ok := s.classifyRemote(ctx, client, link, remote, unlinked, base, plan)
		if !ok {
			return false
		}
		plan.items = append(plan.items, item)
	}
	return true
}

// classifyRemote returns false when the pipeline must stop.
func (s *spondPipelines) classifyRemote(
	ctx context.Context,
	client RemoteClient,
	link syncsetting.Link,
	remote RemoteEvent,
	unlinked []eventmatch.Local,
	base ItemOutcome,
	plan *importPlan,
) (importItem, bool) {
	issueBase := SyncIssue{
		Context:       fmt.Sprintf("import: remote event %s", remote.ID),
		TeamID:        link.TeamID,
		GroupID:       link.SpondGroupID,
		RemoteEventID: remote.ID,
	}

	existing, found, err := s.events.GetBySpondID(ctx, remote.ID)
	if err != nil {
		issue := issueBase
		issue.Kind, issue.Message = IssueStorageError, err.Error()
		plan.errors = append(plan.errors, issue)
		base.Kind, base.Reason = OutcomeFailed, "lookup by spond id failed"
		return importItem{link: link, outcome: base}, true
	}

	var attendance *event.Attendance
	if link.ImportAttendance {
		m, err := client.FetchAttendance(ctx, remote.ID)
		if err != nil {
			plan.fail(err, issueBase)
			if plan.aborted {
				return importItem{}, false
			}
			base.Kind, base.Reason = OutcomeFailed, "attendance fetch failed"
			if found {
				base.EventID = existing.ID
			}
			return importItem{link: link, outcome: base}, true
		}
		summary := summarizeAttendance(m, s.clock.Now().UTC())
		attendance = &summary
	}

	if found {
		base.EventID = existing.ID
		target, changed := mergeRemote(existing, remote, link.ImportFields, attendance)
		if !changed {
			base.Kind = OutcomeUnchanged
			return importItem{link: link, outcome: base}, true
		}
		base.Kind = OutcomeUpdated
		return importItem{link: link, outcome: base, write: importWriteUpdate, target: target}, true
	}

	target := newEventFromRemote(remote, link.TeamID, attendance)
	base.Kind = OutcomeCreated
	if candidate, ok := eventmatch.BestLocal(toMatchRemote(remote), unlinked, s.match); ok && candidate.HighConfidence() {
		base.Kind = OutcomeCreatedWithWarning
		base.Candidate = newMatchCandidate(candidate)
		warning := issueBase
		warning.Kind = IssueDuplicateSuspected
		warning.EventID = candidate.LocalID
		warning.Message = fmt.Sprintf("imported event may duplicate local event %s (score %d)", candidate.LocalID, candidate.Score)
		plan.warnings = append(plan.warnings, warning)
	}
	return importItem{link: link, outcome: base, write: importWriteCreate, target: target}, true
}

// attendanceCovered returns the teams whose attendance this import refreshed
// while classifying their remote events.
func (p *importPlan) attendanceCovered() map[string]bool {
	out := make(map[string]bool, len(p.ranLinks))
	for _, link := range p.ranLinks {
		if link.ImportEvents && link.ImportAttendance {
			out[link.TeamID] = true
		}
	}
	return out
}

// applyImport performs the writes of plan. Item failures are isolated.
func (s *spondPipelines) applyImport(ctx context.Context, plan *importPlan, report *SyncReport) {
	ctx, span := startUsecaseSpan(ctx, "usecase.spondPipelines.applyImport")
	defer span.End()

	plan.mergeInto(report)
	now := s.clock.Now().UTC()
	for _, item := range plan.items {
		if err := ctx.Err(); err != nil {
			report.addError(issueFromError(err, "import"))
			return
		}

		outcome := item.outcome
		switch item.write {
		case importWriteCreate:
			eventID, err := s.ids.NewID()
			if err == nil {
				target := item.target
				target.ID = eventID
				target.CreatedAt, target.UpdatedAt = now, now
				err = s.events.Create(ctx, target)
			}
			if err != nil {
				outcome.Kind, outcome.Reason, outcome.Candidate = OutcomeFailed, "store event failed", nil
				report.addError(SyncIssue{
					Kind:          IssueStorageError,
					Context:       fmt.Sprintf("import: create event for remote %s", item.outcome.RemoteEventID),
					Message:       err.Error(),
					TeamID:        item.link.TeamID,
					RemoteEventID: item.outcome.RemoteEventID,
				})
				break
			}
			outcome.EventID = eventID
		case importWriteUpdate:
			target := item.target
			target.UpdatedAt = now
			if err := s.events.Update(ctx, target); err != nil {
				outcome.Kind, outcome.Reason = OutcomeFailed, "store event failed"
				report.addError(SyncIssue{
					Kind:          IssueStorageError,
					Context:       fmt.Sprintf("import: update event %s", target.ID),
					Message:       err.Error(),
					EventID:       target.ID,
					TeamID:        item.link.TeamID,
					RemoteEventID: item.outcome.RemoteEventID,
				})
			}
		}
		report.addItem(outcome)
	}

	if plan.aborted {
		return
	}
	s.recordSync(ctx, report, plan.ranLinks, syncsetting.KindImport)
	attendanceLinks := make([]syncsetting.Link, 0, len(plan.ranLinks))
	for _, link := range plan.ranLinks {
		if link.ImportAttendance {
			attendanceLinks = append(attendanceLinks, link)
		}
	}
	s.recordSync(ctx, report, attendanceLinks, syncsetting.KindAttendance)
}

func eventValues(e event.Event) syncsetting.Values {
	return syncsetting.Values{
		Title:       e.Title,
		Description: e.Description,
		StartAt:     e.StartAt.UnixNano(),
		EndAt:       e.EndAt.UnixNano(),
		Location:    e.Location,
		Type:        string(e.Type),
	}
}

// remoteValues keeps current as the type when the remote category is generic,
// so a heading alone never retypes an existing event.
func remoteValues(r RemoteEvent, current event.Type) syncsetting.Values {
	typ := current
	if event.TypedCategory(r.Category) {
		typ = event.InferType(r.Category, r.Heading)
	}
	return syncsetting.Values{
		Title:       r.Heading,
		Description: r.Description,
		StartAt:     r.StartAt.UnixNano(),
		EndAt:       r.EndAt.UnixNano(),
		Location:    r.Location,
		Type:        string(typ),
	}
}

// mergeRemote applies the toggled fields, mirrors cancellation and the
// attendance summary, and reports whether the stored event would change.
func mergeRemote(existing event.Event, remote RemoteEvent, fields syncsetting.FieldSet, attendance *event.Attendance) (event.Event, bool) {
	values := eventValues(existing)
	changed := fields.Apply(&values, remoteValues(remote, existing.Type))

	out := existing
	out.Title = values.Title
	out.Description = values.Description
	out.StartAt = time.Unix(0, values.StartAt).UTC()
	out.EndAt = time.Unix(0, values.EndAt).UTC()
	out.Location = values.Location
	out.Type = event.Type(values.Type)

	switch {
	case remote.Cancelled && out.Status != event.StatusCancelled:
		out.Status = event.StatusCancelled
		changed = true
	case !remote.Cancelled && out.Status == event.StatusCancelled:
		out.Status = event.StatusPlanned
		changed = true
	}

	if attendance != nil && !attendance.SameCounts(existing.Attendance) {
		out.Attendance = *attendance
		changed = true
	}
	return out, changed
}

func newEventFromRemote(remote RemoteEvent, teamID string, attendance *event.Attendance) event.Event {
	out := event.Event{
		Title:       remote.Heading,
		Description: remote.Description,
		Type:        event.InferType(remote.Category, remote.Heading),
		StartAt:     remote.StartAt.UTC(),
		EndAt:       remote.EndAt.UTC(),
		TeamID:      teamID,
		Location:    remote.Location,
		Status:      event.StatusPlanned,
		SpondID:     remote.ID,
	}
	if remote.Cancelled {
		out.Status = event.StatusCancelled
	}
	if attendance != nil {
		out.Attendance = *attendance
	}
	return out
}
