package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/riskibarqy/clubsync/internal/usecase"
)

func (h *Handler) ConfigureSpond(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ConfigureSpond")
	defer span.End()

	var req configureRequest
	if err := h.decodeJSON(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.connectionService.Configure(ctx, req.Email, req.Password); err != nil {
		h.logger.WarnContext(ctx, "configure spond failed", "user_id", principalUserID(ctx), "error", err)
		writeError(ctx, w, err)
		return
	}
	h.logger.InfoContext(ctx, "spond credentials configured", "user_id", principalUserID(ctx))

	h.writeStatus(ctx, w)
}

func (h *Handler) DisconnectSpond(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DisconnectSpond")
	defer span.End()

	if err := h.connectionService.Disconnect(ctx); err != nil {
		h.logger.WarnContext(ctx, "disconnect spond failed", "user_id", principalUserID(ctx), "error", err)
		writeError(ctx, w, err)
		return
	}
	h.logger.InfoContext(ctx, "spond disconnected", "user_id", principalUserID(ctx))

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"configured": false})
}

func (h *Handler) TestSpondConnection(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TestSpondConnection")
	defer span.End()

	if err := h.connectionService.Test(ctx); err != nil {
		h.logger.WarnContext(ctx, "test spond connection failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"connected": true})
}

func (h *Handler) GetSpondStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSpondStatus")
	defer span.End()

	h.writeStatus(ctx, w)
}

// writeStatus combines the connection status with the state of the sync runner.
func (h *Handler) writeStatus(ctx context.Context, w http.ResponseWriter) {
	status, err := h.connectionService.Status(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "get spond status failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := statusDTO{
		Configured:       status.Configured,
		Email:            status.Email,
		Source:           string(status.Source),
		TotalLinks:       status.TotalLinks,
		ActiveLinks:      status.ActiveLinks,
		LastImportAt:     status.LastImportAt,
		LastExportAt:     status.LastExportAt,
		LastAttendanceAt: status.LastAttendanceAt,
		RunState:         h.syncService.State(),
	}
	if last, ok := h.syncService.LastReport(); ok {
		out.LastRun = &last
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListSpondGroups(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSpondGroups")
	defer span.End()

	groups, err := h.connectionService.Groups(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list spond groups failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]remoteGroupDTO, 0, len(groups))
	for _, g := range groups {
		items = append(items, remoteGroupToDTO(g))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListGroupsForImport(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGroupsForImport")
	defer span.End()

	groups, err := h.connectionService.GroupsForImport(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list groups for import failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]importableGroupDTO, 0, len(groups))
	for _, g := range groups {
		items = append(items, importableGroupToDTO(g))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ImportTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportTeams")
	defer span.End()

	var req importTeamsRequest
	if err := h.decodeJSON(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	inputs := make([]usecase.ImportTeamInput, 0, len(req.Groups))
	for _, g := range req.Groups {
		inputs = append(inputs, usecase.ImportTeamInput{GroupID: g.GroupID, TeamName: g.TeamName})
	}

	results, err := h.connectionService.ImportTeams(ctx, inputs)
	if err != nil {
		h.logger.WarnContext(ctx, "import teams failed", "groups", len(inputs), "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]importTeamResultDTO, 0, len(results))
	for _, res := range results {
		items = append(items, importTeamResultDTO{
			GroupID: res.GroupID,
			TeamID:  res.TeamID,
			Status:  res.Status,
			Reason:  res.Reason,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) LinkTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LinkTeam")
	defer span.End()

	var req linkTeamRequest
	if err := h.decodeJSON(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	link, err := h.connectionService.LinkTeam(ctx, req.TeamID, req.GroupID)
	if err != nil {
		h.logger.WarnContext(ctx, "link team failed", "team_id", req.TeamID, "group_id", req.GroupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, syncSettingToDTO(link))
}

func (h *Handler) UnlinkTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UnlinkTeam")
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("id"))
	if err := h.connectionService.UnlinkTeam(ctx, teamID); err != nil {
		h.logger.WarnContext(ctx, "unlink team failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"teamId": teamID})
}
