package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	registerSpondConnectionRoutes(mux, handler, verifier)
	registerSpondSettingsRoutes(mux, handler, verifier)
	registerSpondSyncRoutes(mux, handler, verifier)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/spond-sync", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunScheduledSync)))
}

func registerSpondConnectionRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /api/spond/configure", RequireAuth(verifier, http.HandlerFunc(handler.ConfigureSpond)))
	mux.Handle("DELETE /api/spond/configure", RequireAuth(verifier, http.HandlerFunc(handler.DisconnectSpond)))
	mux.Handle("POST /api/spond/test", RequireAuth(verifier, http.HandlerFunc(handler.TestSpondConnection)))
	mux.Handle("GET /api/spond/status", RequireAuth(verifier, http.HandlerFunc(handler.GetSpondStatus)))
	mux.Handle("GET /api/spond/groups", RequireAuth(verifier, http.HandlerFunc(handler.ListSpondGroups)))
	mux.Handle("GET /api/spond/groups-for-import", RequireAuth(verifier, http.HandlerFunc(handler.ListGroupsForImport)))
	mux.Handle("POST /api/spond/import-teams", RequireAuth(verifier, http.HandlerFunc(handler.ImportTeams)))
	mux.Handle("POST /api/spond/link/team", RequireAuth(verifier, http.HandlerFunc(handler.LinkTeam)))
	mux.Handle("DELETE /api/spond/link/team/{id}", RequireAuth(verifier, http.HandlerFunc(handler.UnlinkTeam)))
}

func registerSpondSettingsRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /api/spond/sync-settings", RequireAuth(verifier, http.HandlerFunc(handler.ListSyncSettings)))
	mux.Handle("POST /api/spond/sync-settings", RequireAuth(verifier, http.HandlerFunc(handler.UpsertSyncSetting)))
	mux.Handle("GET /api/spond/sync-settings/{teamId}", RequireAuth(verifier, http.HandlerFunc(handler.GetSyncSetting)))
	mux.Handle("POST /api/spond/sync-settings/{teamId}", RequireAuth(verifier, http.HandlerFunc(handler.UpdateSyncSetting)))
	mux.Handle("DELETE /api/spond/sync-settings/{teamId}", RequireAuth(verifier, http.HandlerFunc(handler.DeleteSyncSetting)))
}

func registerSpondSyncRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /api/spond/import-preview", RequireAuth(verifier, http.HandlerFunc(handler.ImportPreview)))
	mux.Handle("GET /api/spond/export-preview", RequireAuth(verifier, http.HandlerFunc(handler.ExportPreview)))
	mux.Handle("POST /api/spond/sync", RequireAuth(verifier, http.HandlerFunc(handler.Sync)))
	mux.Handle("POST /api/spond/sync/attendance", RequireAuth(verifier, http.HandlerFunc(handler.SyncAttendance)))
	mux.Handle("POST /api/spond/sync/{type}", RequireAuth(verifier, http.HandlerFunc(handler.SyncByType)))
	mux.Handle("POST /api/spond/sync-with-settings", RequireAuth(verifier, http.HandlerFunc(handler.SyncWithSettings)))
	mux.Handle("PUT /api/spond/events/{eventId}/push", RequireAuth(verifier, http.HandlerFunc(handler.PushEvent)))
}
