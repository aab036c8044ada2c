package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/clubsync/internal/platform/logging"
	"github.com/riskibarqy/clubsync/internal/usecase"
)

type Handler struct {
	syncService       *usecase.SpondSyncService
	linkService       *usecase.SpondLinkService
	connectionService *usecase.SpondConnectionService
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	syncService *usecase.SpondSyncService,
	linkService *usecase.SpondLinkService,
	connectionService *usecase.SpondConnectionService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		syncService:       syncService,
		linkService:       linkService,
		connectionService: connectionService,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeJSON decodes and validates a request body. An empty body is allowed
// when optional is set and leaves payload untouched.
func (h *Handler) decodeJSON(ctx context.Context, r *http.Request, payload any, optional bool) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(payload); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return h.validateRequest(ctx, payload)
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, payload)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// parseWindow reads an optional [from, to) override. Both bounds accept
// RFC 3339 or a plain date.
func parseWindow(from, to string) (*usecase.SyncWindow, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, fmt.Errorf("%w: from and to must be given together", usecase.ErrInvalidInput)
	}

	start, err := parseTimeParam("from", from)
	if err != nil {
		return nil, err
	}
	end, err := parseTimeParam("to", to)
	if err != nil {
		return nil, err
	}
	window := usecase.SyncWindow{From: start, To: end}
	if err := window.Validate(); err != nil {
		return nil, err
	}
	return &window, nil
}

func parseTimeParam(name, raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: %s must be RFC 3339 or YYYY-MM-DD, got %q", usecase.ErrInvalidInput, name, raw)
}
