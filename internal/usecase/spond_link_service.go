package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/clubsync/internal/domain/syncsetting"
	"github.com/riskibarqy/clubsync/internal/domain/team"
	"github.com/riskibarqy/clubsync/internal/platform/logging"
)

type UpsertLinkInput struct {
	TeamID          string
	SpondGroupID    string
	GroupName       string
	ParentGroupID   string
	ParentGroupName string
	IsSubgroup      bool
	Policy          *PolicyInput
}

// PolicyInput is a partial policy update. Nil fields keep their value.
type PolicyInput struct {
	ImportEvents     *bool
	ExportEvents     *bool
	ImportAttendance *bool
	ImportFields     []string
}

// SpondLinkService owns team links and their sync policies.
type SpondLinkService struct {
	teams  team.Repository
	links  syncsetting.Repository
	clock  clockwork.Clock
	logger *logging.Logger
}

func NewSpondLinkService(teams team.Repository, links syncsetting.Repository, clock clockwork.Clock, logger *logging.Logger) *SpondLinkService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &SpondLinkService{
		teams:  teams,
		links:  links,
		clock:  clock,
		logger: logger,
	}
}

func (s *SpondLinkService) ListLinks(ctx context.Context) ([]syncsetting.Link, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SpondLinkService.ListLinks")
	defer span.End()

	items, err := s.links.ListLinks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return items, nil
}

func (s *SpondLinkService) GetLink(ctx context.Context, teamID string) (syncsetting.Link, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SpondLinkService.GetLink")
	defer span.End()

	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return syncsetting.Link{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}
	link, ok, err := s.links.GetByTeamID(ctx, teamID)
	if err != nil {
		return syncsetting.Link{}, fmt.Errorf("get link: %w", err)
	}
	if !ok {
		return syncsetting.Link{}, fmt.Errorf("%w: link for team=%s", ErrNotFound, teamID)
	}
	return link, nil
}

// GetActiveLinks returns the active links taking part in direction.
func (s *SpondLinkService) GetActiveLinks(ctx context.Context, direction syncsetting.Direction) ([]syncsetting.Link, error) {
	items, err := s.links.ListActive(ctx, direction)
	if err != nil {
		return nil, fmt.Errorf("list active links: %w", err)
	}
	return items, nil
}

// UpsertLink creates a link or refreshes the link of the same group. A team
// that is actively linked to another group must be unlinked first.
func (s *SpondLinkService) UpsertLink(ctx context.Context, input UpsertLinkInput) (syncsetting.Link, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SpondLinkService.UpsertLink")
	defer span.End()

	input.TeamID = strings.TrimSpace(input.TeamID)
	input.SpondGroupID = strings.TrimSpace(input.SpondGroupID)
	if input.TeamID == "" || input.SpondGroupID == "" {
		return syncsetting.Link{}, fmt.Errorf("%w: team id and spond group id are required", ErrInvalidInput)
	}

	if _, ok, err := s.teams.GetByID(ctx, input.TeamID); err != nil {
		return syncsetting.Link{}, fmt.Errorf("get team: %w", err)
	} else if !ok {
		return syncsetting.Link{}, fmt.Errorf("%w: team=%s", ErrNotFound, input.TeamID)
	}

	existing, found, err := s.links.GetByTeamID(ctx, input.TeamID)
	if err != nil {
		return syncsetting.Link{}, fmt.Errorf("get link: %w", err)
	}

	now := s.clock.Now().UTC()
	var link syncsetting.Link
	switch {
	case found && existing.SpondGroupID == input.SpondGroupID:
		link = existing
	case found && existing.Active:
		return syncsetting.Link{}, fmt.Errorf("%w: team %s is linked to group %s, unlink it first", ErrConflict, input.TeamID, existing.SpondGroupID)
	default:
		link = syncsetting.Link{
			TeamID:       input.TeamID,
			SpondGroupID: input.SpondGroupID,
			CreatedAt:    now,
		}
		link.ApplyPolicy(syncsetting.DefaultPolicy())
	}

	link.GroupName = strings.TrimSpace(input.GroupName)
	link.IsSubgroup = input.IsSubgroup
	link.ParentGroupID = ""
	link.ParentGroupName = ""
	if input.IsSubgroup {
		link.ParentGroupID = strings.TrimSpace(input.ParentGroupID)
		link.ParentGroupName = strings.TrimSpace(input.ParentGroupName)
	}
	if input.Policy != nil {
		policy, err := mergePolicy(link.Policy(), *input.Policy)
		if err != nil {
			return syncsetting.Link{}, err
		}
		link.ApplyPolicy(policy)
	}
	link.Active = true
	link.UpdatedAt = now

	if err := link.Validate(); err != nil {
		return syncsetting.Link{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.links.Upsert(ctx, link); err != nil {
		return syncsetting.Link{}, fmt.Errorf("upsert link: %w", err)
	}

	s.logger.InfoContext(ctx, "team link saved", "team_id", link.TeamID, "group_id", link.SpondGroupID, "subgroup", link.IsSubgroup)
	return link, nil
}

// UpdatePolicy changes the toggles of an existing link.
func (s *SpondLinkService) UpdatePolicy(ctx context.Context, teamID string, input PolicyInput) (syncsetting.Link, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SpondLinkService.UpdatePolicy")
	defer span.End()

	link, err := s.GetLink(ctx, teamID)
	if err != nil {
		return syncsetting.Link{}, err
	}
	policy, err := mergePolicy(link.Policy(), input)
	if err != nil {
		return syncsetting.Link{}, err
	}
	return s.savePolicy(ctx, link, policy)
}

// ResetPolicy restores the default toggles. The link itself stays.
func (s *SpondLinkService) ResetPolicy(ctx context.Context, teamID string) (syncsetting.Link, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SpondLinkService.ResetPolicy")
	defer span.End()

	link, err := s.GetLink(ctx, teamID)
	if err != nil {
		return syncsetting.Link{}, err
	}
	return s.savePolicy(ctx, link, syncsetting.DefaultPolicy())
}

func (s *SpondLinkService) savePolicy(ctx context.Context, link syncsetting.Link, policy syncsetting.Policy) (syncsetting.Link, error) {
	link.ApplyPolicy(policy)
	link.UpdatedAt = s.clock.Now().UTC()
	if err := s.links.Upsert(ctx, link); err != nil {
		return syncsetting.Link{}, fmt.Errorf("save link policy: %w", err)
	}
	return link, nil
}

// DeactivateLink soft deletes the team's link and keeps its timestamps.
func (s *SpondLinkService) DeactivateLink(ctx context.Context, teamID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SpondLinkService.DeactivateLink")
	defer span.End()

	if _, err := s.GetLink(ctx, teamID); err != nil {
		return err
	}
	if err := s.links.Deactivate(ctx, strings.TrimSpace(teamID)); err != nil {
		return fmt.Errorf("deactivate link: %w", err)
	}
	s.logger.InfoContext(ctx, "team link deactivated", "team_id", teamID)
	return nil
}

func (s *SpondLinkService) RecordSync(ctx context.Context, teamID string, kind syncsetting.Kind, at time.Time) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown sync kind %q", ErrInvalidInput, kind)
	}
	if err := s.links.RecordSync(ctx, teamID, kind, at.UTC()); err != nil {
		return fmt.Errorf("record sync: %w", err)
	}
	return nil
}

func mergePolicy(current syncsetting.Policy, input PolicyInput) (syncsetting.Policy, error) {
	out := current
	if input.ImportEvents != nil {
		out.ImportEvents = *input.ImportEvents
	}
	if input.ExportEvents != nil {
		out.ExportEvents = *input.ExportEvents
	}
	if input.ImportAttendance != nil {
		out.ImportAttendance = *input.ImportAttendance
	}
	if input.ImportFields != nil {
		fields, unknown := syncsetting.ParseFieldNames(input.ImportFields)
		if len(unknown) > 0 {
			return syncsetting.Policy{}, fmt.Errorf("%w: unknown import fields %s", ErrInvalidInput, strings.Join(unknown, ", "))
		}
		out.ImportFields = fields
	}
	return out, nil
}
