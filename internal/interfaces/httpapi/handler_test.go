package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/clubsync/internal/domain/event"
	"github.com/riskibarqy/clubsync/internal/domain/syncsetting"
	"github.com/riskibarqy/clubsync/internal/domain/team"
	"github.com/riskibarqy/clubsync/internal/domain/user"
	"github.com/riskibarqy/clubsync/internal/infrastructure/repository/memory"
	usecasemock "github.com/riskibarqy/clubsync/internal/mocks/usecase"
	"github.com/riskibarqy/clubsync/internal/platform/logging"
	"github.com/riskibarqy/clubsync/internal/platform/secret"
	"github.com/riskibarqy/clubsync/internal/usecase"
	"github.com/stretchr/testify/mock"
)

const (
	testToken    = "good-token"
	testJobToken = "job-token"
)

var handlerTestNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type stubVerifier struct{}

func (stubVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	if token != testToken {
		return user.Principal{}, fmt.Errorf("%w: unknown token", usecase.ErrUnauthorized)
	}
	return user.Principal{UserID: "u-1", Email: "coach@club.test"}, nil
}

type apiFixture struct {
	router http.Handler
	remote *usecasemock.RemoteClient
	events *memory.EventRepository
	links  *memory.SyncSettingRepository
}

func newAPIFixture(t *testing.T, bootstrap bool, links []syncsetting.Link, events []event.Event) *apiFixture {
	t.Helper()

	box, err := secret.NewBox("handler-test")
	if err != nil {
		t.Fatalf("new box: %v", err)
	}

	f := &apiFixture{
		remote: usecasemock.NewRemoteClient(t),
		events: memory.NewEventRepository(events),
		links:  memory.NewSyncSettingRepository(links),
	}
	teams := memory.NewTeamRepository([]team.Team{{ID: "team-a", Name: "Lions U12", CreatedAt: handlerTestNow}})
	clock := clockwork.NewFakeClockAt(handlerTestNow)
	logger := logging.NewNop()

	connCfg := usecase.SpondConnectionConfig{}
	if bootstrap {
		connCfg.BootstrapEmail = "ops@club.test"
		connCfg.BootstrapPassword = "env-pass"
	}

	linkService := usecase.NewSpondLinkService(teams, f.links, clock, logger)
	connService := usecase.NewSpondConnectionService(
		memory.NewSpondCredentialsRepository(),
		box,
		func(string, string) usecase.RemoteClient { return f.remote },
		teams,
		linkService,
		nil,
		clock,
		connCfg,
		logger,
	)
	syncService, err := usecase.NewSpondSyncService(usecase.SpondPipelineDeps{
		Events: f.events,
		Teams:  teams,
		Links:  f.links,
		Remote: connService,
		Clock:  clock,
		Logger: logger,
	}, usecase.SpondSyncConfig{DaysBehind: 7, DaysAhead: 60})
	if err != nil {
		t.Fatalf("new sync service: %v", err)
	}
	t.Cleanup(syncService.Close)

	handler := NewHandler(syncService, linkService, connService, logger)
	f.router = NewRouter(handler, stubVerifier{}, logger, RouterConfig{
		CORSAllowedOrigins: []string{"*"},
		InternalJobToken:   testJobToken,
	})
	return f
}

func (f *apiFixture) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	if _, ok := headers["Authorization"]; !ok {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var envelope struct {
		Data T `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v body=%s", err, rec.Body.String())
	}
	return envelope.Data
}

func errorReason(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var envelope googleResponseEnvelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Error == nil || len(envelope.Error.Errors) == 0 {
		t.Fatalf("expected error body, got=%s", rec.Body.String())
	}
	return envelope.Error.Errors[0].Reason
}

func teamLink(groupID string) syncsetting.Link {
	return syncsetting.Link{
		TeamID:       "team-a",
		SpondGroupID: groupID,
		GroupName:    "Lions U12",
		ImportEvents: true,
		ImportFields: syncsetting.AllFields,
		Active:       true,
		CreatedAt:    handlerTestNow,
		UpdatedAt:    handlerTestNow,
	}
}

func TestRouter_HealthzIsPublic(t *testing.T) {
	f := newAPIFixture(t, false, nil, nil)

	rec := f.do(t, http.MethodGet, "/healthz", "", map[string]string{"Authorization": ""})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got=%d", rec.Code)
	}
}

func TestRouter_RejectsMissingToken(t *testing.T) {
	f := newAPIFixture(t, false, nil, nil)

	rec := f.do(t, http.MethodGet, "/api/spond/status", "", map[string]string{"Authorization": ""})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got=%d", rec.Code)
	}
	rec = f.do(t, http.MethodGet, "/api/spond/status", "", map[string]string{"Authorization": "Bearer nope"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown token, got=%d", rec.Code)
	}
}

func TestHandler_StatusAndSyncWhenNotConfigured(t *testing.T) {
	f := newAPIFixture(t, false, nil, nil)

	rec := f.do(t, http.MethodGet, "/api/spond/status", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got=%d body=%s", rec.Code, rec.Body.String())
	}
	status := decodeData[statusDTO](t, rec)
	if status.Configured || status.RunState != usecase.RunStateIdle {
		t.Fatalf("unexpected status: %+v", status)
	}

	rec = f.do(t, http.MethodPost, "/api/spond/sync", "", nil)
	if rec.Code != http.StatusPreconditionFailed {
		t.Fatalf("expected 412, got=%d body=%s", rec.Code, rec.Body.String())
	}
	if reason := errorReason(t, rec); reason != "notConfigured" {
		t.Fatalf("unexpected reason: %s", reason)
	}
}

func TestHandler_ConfigureSpond(t *testing.T) {
	f := newAPIFixture(t, false, nil, nil)
	f.remote.On("Authenticate", mock.Anything).Return(nil).Once()

	rec := f.do(t, http.MethodPost, "/api/spond/configure", `{"email":"coach@club.test","password":"s3cret"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got=%d body=%s", rec.Code, rec.Body.String())
	}
	status := decodeData[statusDTO](t, rec)
	if !status.Configured || status.Email != "coach@club.test" || status.Source != string(usecase.CredentialSourceStored) {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestHandler_ConfigureSpond_RejectsBadPayload(t *testing.T) {
	f := newAPIFixture(t, false, nil, nil)

	rec := f.do(t, http.MethodPost, "/api/spond/configure", `{"email":"not-an-email","password":"x"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got=%d", rec.Code)
	}
	rec = f.do(t, http.MethodPost, "/api/spond/configure", `{"email":"a@b.c","password":"x","extra":1}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got=%d", rec.Code)
	}
}

func TestHandler_ConfigureSpond_RemoteRejects(t *testing.T) {
	f := newAPIFixture(t, false, nil, nil)
	f.remote.On("Authenticate", mock.Anything).Return(fmt.Errorf("%w: bad login", usecase.ErrRemoteAuthFailure)).Once()

	rec := f.do(t, http.MethodPost, "/api/spond/configure", `{"email":"coach@club.test","password":"wrong"}`, nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestHandler_SyncImportCreatesLocalEvent(t *testing.T) {
	f := newAPIFixture(t, true, []syncsetting.Link{teamLink("grp-a")}, nil)

	start := handlerTestNow.Add(48 * time.Hour)
	f.remote.
		On("ListEventsInRange", mock.Anything, []string{"grp-a"}, mock.Anything, mock.Anything).
		Return([]usecase.RemoteEvent{{
			ID:        "sp-1",
			Heading:   "Practice",
			StartAt:   start,
			EndAt:     start.Add(90 * time.Minute),
			Location:  "Field 1",
			GroupID:   "grp-a",
			GroupName: "Lions U12",
			Category:  "EVENT",
		}}, nil)

	rec := f.do(t, http.MethodPost, "/api/spond/sync/import", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got=%d body=%s", rec.Code, rec.Body.String())
	}
	report := decodeData[usecase.SyncReport](t, rec)
	if report.Direction != usecase.SyncDirectionImport || report.RunID == "" {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Counts.Imported != 1 {
		t.Fatalf("expected one imported event, got=%+v", report.Counts)
	}

	local, ok, err := f.events.GetBySpondID(context.Background(), "sp-1")
	if err != nil || !ok {
		t.Fatalf("expected imported event, ok=%v err=%v", ok, err)
	}
	if local.TeamID != "team-a" || local.Title != "Practice" {
		t.Fatalf("unexpected imported event: %+v", local)
	}

	rec = f.do(t, http.MethodGet, "/api/spond/status", "", nil)
	status := decodeData[statusDTO](t, rec)
	if status.LastRun == nil || status.LastRun.RunID != report.RunID {
		t.Fatalf("expected status to carry the last run, got=%+v", status)
	}
}

func TestHandler_SyncRejectsBadRequests(t *testing.T) {
	f := newAPIFixture(t, true, nil, nil)

	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "unknown type", path: "/api/spond/sync/weekly"},
		{name: "unknown direction", path: "/api/spond/sync", body: `{"direction":"sideways"}`},
		{name: "half window", path: "/api/spond/sync", body: `{"from":"2026-03-01"}`},
		{name: "inverted window", path: "/api/spond/sync", body: `{"from":"2026-03-10","to":"2026-03-01"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, tt.path, tt.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got=%d body=%s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandler_ScheduledSyncRequiresJobToken(t *testing.T) {
	f := newAPIFixture(t, true, nil, nil)

	rec := f.do(t, http.MethodPost, "/v1/internal/jobs/spond-sync", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without job token, got=%d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/v1/internal/jobs/spond-sync", "", map[string]string{"X-Internal-Job-Token": testJobToken})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got=%d body=%s", rec.Code, rec.Body.String())
	}
	ticket := decodeData[usecase.RunTicket](t, rec)
	if ticket.RunID == "" || ticket.Direction != usecase.SyncDirectionBoth {
		t.Fatalf("unexpected ticket: %+v", ticket)
	}
}

func TestHandler_SyncSettingsLifecycle(t *testing.T) {
	f := newAPIFixture(t, false, nil, nil)

	rec := f.do(t, http.MethodPost, "/api/spond/sync-settings", `{"teamId":"team-a","spondGroupId":"grp-a","groupName":"Lions"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got=%d body=%s", rec.Code, rec.Body.String())
	}
	created := decodeData[syncSettingDTO](t, rec)
	if !created.ImportEvents || created.ExportEvents || len(created.ImportFields) == 0 {
		t.Fatalf("expected default policy, got=%+v", created)
	}

	rec = f.do(t, http.MethodPost, "/api/spond/sync-settings/team-a", `{"exportEvents":true,"importFields":["title"]}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got=%d body=%s", rec.Code, rec.Body.String())
	}
	updated := decodeData[syncSettingDTO](t, rec)
	if !updated.ExportEvents || len(updated.ImportFields) != 1 || updated.ImportFields[0] != "title" {
		t.Fatalf("unexpected update: %+v", updated)
	}

	rec = f.do(t, http.MethodPost, "/api/spond/sync-settings/team-a", `{"reset":true}`, nil)
	reset := decodeData[syncSettingDTO](t, rec)
	if reset.ExportEvents || len(reset.ImportFields) != len(created.ImportFields) {
		t.Fatalf("expected default policy after reset, got=%+v", reset)
	}

	rec = f.do(t, http.MethodDelete, "/api/spond/sync-settings/team-a", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got=%d body=%s", rec.Code, rec.Body.String())
	}
	link, ok, _ := f.links.GetByTeamID(context.Background(), "team-a")
	if !ok || link.Active {
		t.Fatalf("expected inactive link, got=%+v ok=%v", link, ok)
	}

	rec = f.do(t, http.MethodGet, "/api/spond/sync-settings/team-missing", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got=%d", rec.Code)
	}
}

func TestHandler_PushEvent(t *testing.T) {
	linked := event.Event{
		ID:        "evt-1",
		Title:     "Home match",
		Type:      event.TypeGame,
		StartAt:   handlerTestNow.Add(24 * time.Hour),
		EndAt:     handlerTestNow.Add(26 * time.Hour),
		TeamID:    "team-a",
		Location:  "Field 1",
		Status:    event.StatusPlanned,
		SpondID:   "sp-9",
		CreatedAt: handlerTestNow,
		UpdatedAt: handlerTestNow,
	}
	f := newAPIFixture(t, true, nil, []event.Event{linked})
	f.remote.On("UpdateEvent", mock.Anything, "sp-9", mock.Anything).Return(nil).Once()

	rec := f.do(t, http.MethodPut, "/api/spond/events/evt-1/push", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = f.do(t, http.MethodPut, "/api/spond/events/evt-missing/push", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got=%d", rec.Code)
	}
}
