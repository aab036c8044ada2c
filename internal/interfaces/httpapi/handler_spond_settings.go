package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/clubsync/internal/domain/syncsetting"
	"github.com/riskibarqy/clubsync/internal/usecase"
)

func (h *Handler) ListSyncSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSyncSettings")
	defer span.End()

	links, err := h.linkService.ListLinks(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list sync settings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]syncSettingDTO, 0, len(links))
	for _, link := range links {
		items = append(items, syncSettingToDTO(link))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) UpsertSyncSetting(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpsertSyncSetting")
	defer span.End()

	var req upsertSyncSettingRequest
	if err := h.decodeJSON(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.UpsertLinkInput{
		TeamID:          req.TeamID,
		SpondGroupID:    req.SpondGroupID,
		GroupName:       req.GroupName,
		ParentGroupID:   req.ParentGroupID,
		ParentGroupName: req.ParentGroupName,
		IsSubgroup:      req.IsSubgroup,
	}
	if req.Policy != nil {
		policy := req.Policy.toInput()
		input.Policy = &policy
	}

	link, err := h.linkService.UpsertLink(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "upsert sync setting failed", "team_id", req.TeamID, "group_id", req.SpondGroupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, syncSettingToDTO(link))
}

func (h *Handler) GetSyncSetting(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSyncSetting")
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("teamId"))
	link, err := h.linkService.GetLink(ctx, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "get sync setting failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, syncSettingToDTO(link))
}

func (h *Handler) UpdateSyncSetting(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateSyncSetting")
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("teamId"))
	var req updateSyncSettingRequest
	if err := h.decodeJSON(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	var (
		link syncsetting.Link
		err  error
	)
	if req.Reset {
		link, err = h.linkService.ResetPolicy(ctx, teamID)
	} else {
		link, err = h.linkService.UpdatePolicy(ctx, teamID, req.toInput())
	}
	if err != nil {
		h.logger.WarnContext(ctx, "update sync setting failed", "team_id", teamID, "reset", req.Reset, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, syncSettingToDTO(link))
}

func (h *Handler) DeleteSyncSetting(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteSyncSetting")
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("teamId"))
	if err := h.linkService.DeactivateLink(ctx, teamID); err != nil {
		h.logger.WarnContext(ctx, "deactivate sync setting failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"teamId": teamID})
}
