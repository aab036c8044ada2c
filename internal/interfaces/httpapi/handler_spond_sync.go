package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/clubsync/internal/usecase"
)

func (h *Handler) ImportPreview(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportPreview")
	defer span.End()

	window, err := parseWindow(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.syncService.ImportPreview(ctx, window)
	if err != nil {
		h.logger.WarnContext(ctx, "import preview failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) ExportPreview(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ExportPreview")
	defer span.End()

	window, err := parseWindow(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.syncService.ExportPreview(ctx, window)
	if err != nil {
		h.logger.WarnContext(ctx, "export preview failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}

// Sync runs the direction named in the body, defaulting to both.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Sync")
	defer span.End()

	var req syncRequest
	if err := h.decodeJSON(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	h.runSync(w, r.WithContext(ctx), req)
}

// SyncByType runs the direction named in the path. Body fields other than
// the window are ignored.
func (h *Handler) SyncByType(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SyncByType")
	defer span.End()

	var req syncRequest
	if err := h.decodeJSON(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	req.Direction = strings.TrimSpace(r.PathValue("type"))
	h.runSync(w, r.WithContext(ctx), req)
}

func (h *Handler) SyncAttendance(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SyncAttendance")
	defer span.End()

	var req syncRequest
	if err := h.decodeJSON(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	req.Direction = string(usecase.SyncDirectionAttendance)
	h.runSync(w, r.WithContext(ctx), req)
}

// SyncWithSettings runs both directions and refreshes attendance, each step
// limited to the links whose policy allows it.
func (h *Handler) SyncWithSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SyncWithSettings")
	defer span.End()

	var req syncRequest
	if err := h.decodeJSON(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	req.Direction = string(usecase.SyncDirectionBoth)
	req.IncludeAttendance = true
	h.runSync(w, r.WithContext(ctx), req)
}

func (h *Handler) runSync(w http.ResponseWriter, r *http.Request, req syncRequest) {
	ctx := r.Context()

	window, err := parseWindow(req.From, req.To)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.syncService.Run(ctx, usecase.SyncRequest{
		Direction:         usecase.SyncDirection(req.Direction),
		Window:            window,
		IncludeAttendance: req.IncludeAttendance,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "sync run rejected", "direction", req.Direction, "user_id", principalUserID(ctx), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) PushEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PushEvent")
	defer span.End()

	eventID := strings.TrimSpace(r.PathValue("eventId"))
	if err := h.syncService.PushEvent(ctx, eventID); err != nil {
		h.logger.WarnContext(ctx, "push event failed", "event_id", eventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"eventId": eventID})
}

// RunScheduledSync is the internal job entry point for periodic syncs. The
// run continues in the background; the scheduler gets 202 with the run id and
// reads the outcome from the status route.
func (h *Handler) RunScheduledSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunScheduledSync")
	defer span.End()

	h.logger.InfoContext(ctx, "scheduled spond sync triggered", "client_ip", resolveClientIP(r))
	ticket, err := h.syncService.Start(ctx, usecase.SyncRequest{
		Direction:         usecase.SyncDirectionBoth,
		IncludeAttendance: true,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "scheduled sync rejected", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, ticket)
}
