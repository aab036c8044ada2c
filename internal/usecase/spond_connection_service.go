package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/clubsync/internal/domain/spondaccount"
	"github.com/riskibarqy/clubsync/internal/domain/syncsetting"
	"github.com/riskibarqy/clubsync/internal/domain/team"
	"github.com/riskibarqy/clubsync/internal/platform/cache"
	"github.com/riskibarqy/clubsync/internal/platform/id"
	"github.com/riskibarqy/clubsync/internal/platform/logging"
)

const groupsCacheKey = "spond:groups"

// CredentialSealer encrypts the stored Spond password.
type CredentialSealer interface {
	Seal(plain string) (string, error)
	Open(sealed string) (string, error)
}

type SpondConnectionConfig struct {
	// BootstrapEmail and BootstrapPassword are used while no credentials
	// are stored.
	BootstrapEmail    string
	BootstrapPassword string
	GroupsCacheTTL    time.Duration
}

type CredentialSource string

const (
	CredentialSourceNone        CredentialSource = "none"
	CredentialSourceStored      CredentialSource = "stored"
	CredentialSourceEnvironment CredentialSource = "environment"
)

type ConnectionStatus struct {
	Configured       bool
	Email            string
	Source           CredentialSource
	TotalLinks       int
	ActiveLinks      int
	LastImportAt     *time.Time
	LastExportAt     *time.Time
	LastAttendanceAt *time.Time
}

// ImportableGroup is a group or subgroup offered for team import.
type ImportableGroup struct {
	GroupID         string
	Name            string
	ParentGroupID   string
	ParentGroupName string
	IsSubgroup      bool
	LinkedTeamID    string
	LinkedTeamName  string
}

type ImportTeamInput struct {
	GroupID string
	// TeamName defaults to the group name.
	TeamName string
}

type ImportTeamResult struct {
	GroupID string
	TeamID  string
	Status  OutcomeKind
	Reason  string
}

// SpondConnectionService manages the Spond account and serves the live
// client to the sync pipelines.
type SpondConnectionService struct {
	creds   spondaccount.Repository
	sealer  CredentialSealer
	factory RemoteClientFactory
	teams   team.Repository
	links   *SpondLinkService
	groups  *cache.Store[[]RemoteGroup]
	teamIDs id.Generator
	clock   clockwork.Clock
	logger  *logging.Logger
	cfg     SpondConnectionConfig

	mu           sync.Mutex
	client       RemoteClient
	email        string
	source       CredentialSource
	disconnected bool
}

func NewSpondConnectionService(
	creds spondaccount.Repository,
	sealer CredentialSealer,
	factory RemoteClientFactory,
	teams team.Repository,
	links *SpondLinkService,
	teamIDs id.Generator,
	clock clockwork.Clock,
	cfg SpondConnectionConfig,
	logger *logging.Logger,
) *SpondConnectionService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if teamIDs == nil {
		teamIDs = id.NewRandomGenerator("team_")
	}
	if cfg.GroupsCacheTTL <= 0 {
		cfg.GroupsCacheTTL = 5 * time.Minute
	}

	return &SpondConnectionService{
		creds:   creds,
		sealer:  sealer,
		factory: factory,
		teams:   teams,
		links:   links,
		groups:  cache.NewStore[[]RemoteGroup](cfg.GroupsCacheTTL, clock),
		teamIDs: teamIDs,
		clock:   clock,
		logger:  logger,
		cfg:     cfg,
		source:  CredentialSourceNone,
	}
}

// Client returns the live client, building it from stored credentials or
// the bootstrap credentials on first use.
func (s *SpondConnectionService) Client(ctx context.Context) (RemoteClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}

	stored, ok, err := s.creds.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load spond credentials: %w", err)
	}
	if ok {
		password, err := s.sealer.Open(stored.SealedPassword)
		if err != nil {
			s.logger.ErrorContext(ctx, "stored spond password cannot be opened", "error", err)
			return nil, fmt.Errorf("%w: stored credentials cannot be read, configure the connection again", ErrNotConfigured)
		}
		s.swap(s.factory(stored.Email, password), stored.Email, CredentialSourceStored)
		return s.client, nil
	}

	if !s.disconnected && s.cfg.BootstrapEmail != "" && s.cfg.BootstrapPassword != "" {
		s.swap(s.factory(s.cfg.BootstrapEmail, s.cfg.BootstrapPassword), s.cfg.BootstrapEmail, CredentialSourceEnvironment)
		return s.client, nil
	}

	return nil, fmt.Errorf("%w: spond connection is not configured", ErrNotConfigured)
}

func (s *SpondConnectionService) swap(client RemoteClient, email string, source CredentialSource) {
	s.client = client
	s.email = email
	s.source = source
}

// Configure verifies the credentials against Spond, stores them sealed and
// replaces the live client.
func (s *SpondConnectionService) Configure(ctx context.Context, email, password string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SpondConnectionService.Configure")
	defer span.End()

	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") || password == "" {
		return fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	candidate := s.factory(email, password)
	if err := candidate.Authenticate(ctx); err != nil {
		return fmt.Errorf("verify spond credentials: %w", err)
	}

	sealed, err := s.sealer.Seal(password)
	if err != nil {
		return fmt.Errorf("seal spond password: %w", err)
	}
	creds := spondaccount.Credentials{
		Email:          email,
		SealedPassword: sealed,
		UpdatedAt:      s.clock.Now().UTC(),
	}
	if err := creds.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.creds.Save(ctx, creds); err != nil {
		return fmt.Errorf("save spond credentials: %w", err)
	}

	s.mu.Lock()
	s.swap(candidate, email, CredentialSourceStored)
	s.disconnected = false
	s.mu.Unlock()
	s.groups.DeletePrefix(ctx, "spond:")

	s.logger.InfoContext(ctx, "spond connection configured", "email", email)
	return nil
}

// Disconnect forgets the stored credentials. Bootstrap credentials are not
// used again until Configure is called.
func (s *SpondConnectionService) Disconnect(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SpondConnectionService.Disconnect")
	defer span.End()

	if err := s.creds.Delete(ctx); err != nil {
		return fmt.Errorf("delete spond credentials: %w", err)
	}

	s.mu.Lock()
	s.swap(nil, "", CredentialSourceNone)
	s.disconnected = true
	s.mu.Unlock()
	s.groups.DeletePrefix(ctx, "spond:")

	s.logger.InfoContext(ctx, "spond connection removed")
	return nil
}

// Test authenticates with the current credentials.
func (s *SpondConnectionService) Test(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.SpondConnectionService.Test")
	defer span.End()

	client, err := s.Client(ctx)
	if err != nil {
		return err
	}
	if err := client.Authenticate(ctx); err != nil {
		return fmt.Errorf("test spond connection: %w", err)
	}
	return nil
}

func (s *SpondConnectionService) Status(ctx context.Context) (ConnectionStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SpondConnectionService.Status")
	defer span.End()

	out := ConnectionStatus{Source: CredentialSourceNone}
	if _, err := s.Client(ctx); err == nil {
		s.mu.Lock()
		out.Configured = true
		out.Email = s.email
		out.Source = s.source
		s.mu.Unlock()
	}

	links, err := s.links.ListLinks(ctx)
	if err != nil {
		return ConnectionStatus{}, err
	}
	out.TotalLinks = len(links)
	for _, link := range links {
		if !link.Active {
			continue
		}
		out.ActiveLinks++
		out.LastImportAt = latest(out.LastImportAt, link.LastSyncAt(syncsetting.KindImport))
		out.LastExportAt = latest(out.LastExportAt, link.LastSyncAt(syncsetting.KindExport))
		out.LastAttendanceAt = latest(out.LastAttendanceAt, link.LastSyncAt(syncsetting.KindAttendance))
	}
	return out, nil
}

// Groups lists the account's groups. Results are cached for the configured TTL.
func (s *SpondConnectionService) Groups(ctx context.Context) ([]RemoteGroup, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SpondConnectionService.Groups")
	defer span.End()

	client, err := s.Client(ctx)
	if err != nil {
		return nil, err
	}
	return s.groups.GetOrLoad(ctx, groupsCacheKey, func(ctx context.Context) ([]RemoteGroup, error) {
		groups, err := client.ListGroups(ctx)
		if err != nil {
			return nil, fmt.Errorf("list spond groups: %w", err)
		}
		return groups, nil
	})
}

// GroupsForImport flattens groups and subgroups and marks the ones already
// linked to an active team.
func (s *SpondConnectionService) GroupsForImport(ctx context.Context) ([]ImportableGroup, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SpondConnectionService.GroupsForImport")
	defer span.End()

	groups, err := s.Groups(ctx)
	if err != nil {
		return nil, err
	}
	links, err := s.links.ListLinks(ctx)
	if err != nil {
		return nil, err
	}
	teams, err := s.teams.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	teamNames := make(map[string]string, len(teams))
	for _, t := range teams {
		teamNames[t.ID] = t.Name
	}
	linkedTeam := make(map[string]string, len(links))
	for _, link := range links {
		if link.Active {
			if _, taken := linkedTeam[link.SpondGroupID]; !taken {
				linkedTeam[link.SpondGroupID] = link.TeamID
			}
		}
	}

	out := make([]ImportableGroup, 0, len(groups))
	for _, g := range flattenGroups(groups) {
		if teamID, ok := linkedTeam[g.GroupID]; ok {
			g.LinkedTeamID = teamID
			g.LinkedTeamName = teamNames[teamID]
		}
		out = append(out, g)
	}
	return out, nil
}

// ImportTeams creates a local team and an active link for each selected
// group. Groups that are already linked are skipped.
func (s *SpondConnectionService) ImportTeams(ctx context.Context, inputs []ImportTeamInput) ([]ImportTeamResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SpondConnectionService.ImportTeams")
	defer span.End()

	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one group is required", ErrInvalidInput)
	}
	available, err := s.GroupsForImport(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]ImportableGroup, len(available))
	for _, g := range available {
		byID[g.GroupID] = g
	}

	results := make([]ImportTeamResult, 0, len(inputs))
	for _, input := range inputs {
		groupID := strings.TrimSpace(input.GroupID)
		result := ImportTeamResult{GroupID: groupID}

		group, ok := byID[groupID]
		switch {
		case !ok:
			result.Status, result.Reason = OutcomeFailed, "group not found in spond"
		case group.LinkedTeamID != "":
			result.Status, result.Reason = OutcomeSkipped, "group already linked to team "+group.LinkedTeamID
			result.TeamID = group.LinkedTeamID
		default:
			teamID, err := s.createLinkedTeam(ctx, group, input.TeamName)
			if err != nil {
				s.logger.WarnContext(ctx, "import team failed", "group_id", groupID, "error", err)
				result.Status, result.Reason = OutcomeFailed, err.Error()
				break
			}
			result.Status, result.TeamID = OutcomeCreated, teamID
			group.LinkedTeamID = teamID
			byID[groupID] = group
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *SpondConnectionService) createLinkedTeam(ctx context.Context, group ImportableGroup, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = group.Name
	}
	teamID, err := s.teamIDs.NewID()
	if err != nil {
		return "", fmt.Errorf("generate team id: %w", err)
	}
	item := team.Team{ID: teamID, Name: name, CreatedAt: s.clock.Now().UTC()}
	if err := item.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.teams.Create(ctx, item); err != nil {
		return "", fmt.Errorf("create team: %w", err)
	}
	if _, err := s.links.UpsertLink(ctx, linkInputFor(teamID, group)); err != nil {
		if delErr := s.teams.Delete(ctx, teamID); delErr != nil {
			s.logger.ErrorContext(ctx, "remove team after failed link", "team_id", teamID, "error", delErr)
		}
		return "", err
	}
	return teamID, nil
}

// LinkTeam links an existing team to a group or subgroup of the account.
func (s *SpondConnectionService) LinkTeam(ctx context.Context, teamID, groupID string) (syncsetting.Link, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SpondConnectionService.LinkTeam")
	defer span.End()

	groupID = strings.TrimSpace(groupID)
	if groupID == "" {
		return syncsetting.Link{}, fmt.Errorf("%w: spond group id is required", ErrInvalidInput)
	}
	groups, err := s.Groups(ctx)
	if err != nil {
		return syncsetting.Link{}, err
	}
	for _, g := range flattenGroups(groups) {
		if g.GroupID == groupID {
			return s.links.UpsertLink(ctx, linkInputFor(teamID, g))
		}
	}
	return syncsetting.Link{}, fmt.Errorf("%w: spond group=%s", ErrNotFound, groupID)
}

func (s *SpondConnectionService) UnlinkTeam(ctx context.Context, teamID string) error {
	return s.links.DeactivateLink(ctx, teamID)
}

func linkInputFor(teamID string, g ImportableGroup) UpsertLinkInput {
	return UpsertLinkInput{
		TeamID:          teamID,
		SpondGroupID:    g.GroupID,
		GroupName:       g.Name,
		ParentGroupID:   g.ParentGroupID,
		ParentGroupName: g.ParentGroupName,
		IsSubgroup:      g.IsSubgroup,
	}
}

func flattenGroups(groups []RemoteGroup) []ImportableGroup {
	out := make([]ImportableGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, ImportableGroup{GroupID: g.ID, Name: g.Name})
		subs := append([]RemoteSubgroup(nil), g.Subgroups...)
		sort.SliceStable(subs, func(i, j int) bool { return subs[i].Name < subs[j].Name })
		for _, sub := range subs {
			out = append(out, ImportableGroup{
				GroupID:         sub.ID,
				Name:            sub.Name,
				ParentGroupID:   g.ID,
				ParentGroupName: g.Name,
				IsSubgroup:      true,
			})
		}
	}
	return out
}

func latest(current, candidate *time.Time) *time.Time {
	if candidate == nil {
		return current
	}
	if current == nil || candidate.After(*current) {
		return candidate
	}
	return current
}
