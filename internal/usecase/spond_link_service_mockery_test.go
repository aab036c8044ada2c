package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/clubsync/internal/domain/syncsetting"
	"github.com/riskibarqy/clubsync/internal/domain/team"
	syncsettingmock "github.com/riskibarqy/clubsync/internal/mocks/domain/syncsetting"
	teammock "github.com/riskibarqy/clubsync/internal/mocks/domain/team"
	"github.com/riskibarqy/clubsync/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func newLinkServiceWithMocks(t *testing.T) (*SpondLinkService, *teammock.Repository, *syncsettingmock.Repository) {
	teamRepo := teammock.NewRepository(t)
	linkRepo := syncsettingmock.NewRepository(t)
	service := NewSpondLinkService(teamRepo, linkRepo, clockwork.NewFakeClockAt(syncTestNow), logging.NewNop())
	return service, teamRepo, linkRepo
}

func TestSpondLinkService_UpsertLink_CreatesWithDefaultPolicyUsingMockery(t *testing.T) {
	t.Parallel()

	service, teamRepo, linkRepo := newLinkServiceWithMocks(t)
	ctx := context.Background()

	teamRepo.On("GetByID", ctx, "team-a").Return(team.Team{ID: "team-a", Name: "Lions U12"}, true, nil).Once()
	linkRepo.On("GetByTeamID", ctx, "team-a").Return(syncsetting.Link{}, false, nil).Once()
	linkRepo.
		On("Upsert", ctx, mock.MatchedBy(func(l syncsetting.Link) bool {
			return l.TeamID == "team-a" &&
				l.SpondGroupID == "grp-a" &&
				l.Active &&
				l.ImportEvents &&
				!l.ExportEvents &&
				!l.ImportAttendance &&
				l.ImportFields == syncsetting.AllFields &&
				l.CreatedAt.Equal(syncTestNow)
		})).
		Return(nil).
		Once()

	got, err := service.UpsertLink(ctx, UpsertLinkInput{TeamID: "team-a", SpondGroupID: "grp-a", GroupName: "Lions"})
	if err != nil {
		t.Fatalf("upsert link: %v", err)
	}
	if got.GroupName != "Lions" {
		t.Fatalf("unexpected group name: got=%s", got.GroupName)
	}
}

func TestSpondLinkService_UpsertLink_ConflictOnOtherActiveGroupUsingMockery(t *testing.T) {
	t.Parallel()

	service, teamRepo, linkRepo := newLinkServiceWithMocks(t)
	ctx := context.Background()

	teamRepo.On("GetByID", ctx, "team-a").Return(team.Team{ID: "team-a"}, true, nil).Once()
	linkRepo.
		On("GetByTeamID", ctx, "team-a").
		Return(syncsetting.Link{TeamID: "team-a", SpondGroupID: "grp-old", Active: true}, true, nil).
		Once()

	_, err := service.UpsertLink(ctx, UpsertLinkInput{TeamID: "team-a", SpondGroupID: "grp-new"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got=%v", err)
	}
	linkRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestSpondLinkService_UpsertLink_SameGroupKeepsTimestampsUsingMockery(t *testing.T) {
	t.Parallel()

	service, teamRepo, linkRepo := newLinkServiceWithMocks(t)
	ctx := context.Background()
	lastImport := syncTestNow.Add(-24 * time.Hour)

	existing := syncsetting.Link{
		TeamID:       "team-a",
		SpondGroupID: "grp-a",
		ImportEvents: true,
		ImportFields: syncsetting.FieldTitle,
		Active:       true,
		LastImportAt: &lastImport,
		CreatedAt:    lastImport,
	}
	exportOn := true

	teamRepo.On("GetByID", ctx, "team-a").Return(team.Team{ID: "team-a"}, true, nil).Once()
	linkRepo.On("GetByTeamID", ctx, "team-a").Return(existing, true, nil).Once()
	linkRepo.
		On("Upsert", ctx, mock.MatchedBy(func(l syncsetting.Link) bool {
			return l.ExportEvents &&
				l.ImportFields == syncsetting.FieldTitle &&
				l.LastImportAt != nil && l.LastImportAt.Equal(lastImport) &&
				l.CreatedAt.Equal(lastImport)
		})).
		Return(nil).
		Once()

	if _, err := service.UpsertLink(ctx, UpsertLinkInput{
		TeamID:       "team-a",
		SpondGroupID: "grp-a",
		Policy:       &PolicyInput{ExportEvents: &exportOn},
	}); err != nil {
		t.Fatalf("upsert link: %v", err)
	}
}

func TestSpondLinkService_UpsertLink_TeamNotFoundUsingMockery(t *testing.T) {
	t.Parallel()

	service, teamRepo, _ := newLinkServiceWithMocks(t)
	ctx := context.Background()

	teamRepo.On("GetByID", ctx, "missing").Return(team.Team{}, false, nil).Once()

	_, err := service.UpsertLink(ctx, UpsertLinkInput{TeamID: "missing", SpondGroupID: "grp-a"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got=%v", err)
	}
}

func TestSpondLinkService_UpdatePolicy_RejectsUnknownFieldsUsingMockery(t *testing.T) {
	t.Parallel()

	service, _, linkRepo := newLinkServiceWithMocks(t)
	ctx := context.Background()

	linkRepo.
		On("GetByTeamID", ctx, "team-a").
		Return(syncsetting.Link{TeamID: "team-a", SpondGroupID: "grp-a", Active: true}, true, nil).
		Once()

	_, err := service.UpdatePolicy(ctx, "team-a", PolicyInput{ImportFields: []string{"title", "weather"}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got=%v", err)
	}
}

func TestSpondLinkService_ResetPolicyUsingMockery(t *testing.T) {
	t.Parallel()

	service, _, linkRepo := newLinkServiceWithMocks(t)
	ctx := context.Background()

	linkRepo.
		On("GetByTeamID", ctx, "team-a").
		Return(syncsetting.Link{
			TeamID:           "team-a",
			SpondGroupID:     "grp-a",
			ExportEvents:     true,
			ImportAttendance: true,
			ImportFields:     syncsetting.FieldTime,
			Active:           true,
		}, true, nil).
		Once()
	linkRepo.
		On("Upsert", ctx, mock.MatchedBy(func(l syncsetting.Link) bool {
			return l.Policy() == syncsetting.DefaultPolicy() && l.Active
		})).
		Return(nil).
		Once()

	got, err := service.ResetPolicy(ctx, "team-a")
	if err != nil {
		t.Fatalf("reset policy: %v", err)
	}
	if got.SpondGroupID != "grp-a" {
		t.Fatalf("reset must keep the link, got=%+v", got)
	}
}

func TestSpondLinkService_DeactivateLinkUsingMockery(t *testing.T) {
	t.Parallel()

	service, _, linkRepo := newLinkServiceWithMocks(t)
	ctx := context.Background()

	linkRepo.On("GetByTeamID", ctx, "team-a").Return(syncsetting.Link{TeamID: "team-a", Active: true}, true, nil).Once()
	linkRepo.On("Deactivate", ctx, "team-a").Return(nil).Once()

	if err := service.DeactivateLink(ctx, "team-a"); err != nil {
		t.Fatalf("deactivate link: %v", err)
	}
}

func TestSpondLinkService_RecordSync_RejectsUnknownKind(t *testing.T) {
	t.Parallel()

	service, _, _ := newLinkServiceWithMocks(t)
	if err := service.RecordSync(context.Background(), "team-a", syncsetting.Kind("weekly"), syncTestNow); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got=%v", err)
	}
}
