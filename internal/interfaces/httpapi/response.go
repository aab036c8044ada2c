package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/clubsync/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "clubsync"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

// errorRule maps a usecase sentinel to its wire representation. Rules are
// checked in order so ErrSyncInProgress wins over ErrConflict.
type errorRule struct {
	targets []error
	mapped  mappedError
}

var (
	internalError = mappedError{HTTPStatus: http.StatusInternalServerError, Reason: "internalError", Status: "INTERNAL"}

	errorRules = []errorRule{
		{[]error{usecase.ErrInvalidInput}, mappedError{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"}},
		{[]error{usecase.ErrNotFound}, mappedError{http.StatusNotFound, "notFound", "NOT_FOUND"}},
		{[]error{usecase.ErrUnauthorized}, mappedError{http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"}},
		{[]error{usecase.ErrNotConfigured}, mappedError{http.StatusPreconditionFailed, "notConfigured", "FAILED_PRECONDITION"}},
		{[]error{usecase.ErrSyncInProgress}, mappedError{http.StatusConflict, "syncInProgress", "ABORTED"}},
		{[]error{usecase.ErrConflict}, mappedError{http.StatusConflict, "conflict", "ALREADY_EXISTS"}},
		{[]error{usecase.ErrRemoteAuthFailure}, mappedError{http.StatusBadGateway, "remoteAuthFailure", "UNAVAILABLE"}},
		{[]error{usecase.ErrRemoteUnavailable, usecase.ErrDependencyUnavailable}, mappedError{http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"}},
	}
)

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	_, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	ctx, span := startSpan(ctx, "httpapi.writeSuccess")
	defer span.End()

	writeJSON(ctx, w, status, googleResponseEnvelope{APIVersion: googleAPIVersion, Data: data})
}

// writeError renders err with the status of its first matching rule. Errors
// that match no rule are reported without their message.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(ctx, err)
	msg := err.Error()
	if mapped == internalError {
		msg = "internal server error"
	}
	writeErrorEnvelope(ctx, w, mapped, msg)
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	writeErrorEnvelope(ctx, w, internalError, "internal server error")
}

func writeErrorEnvelope(ctx context.Context, w http.ResponseWriter, mapped mappedError, msg string) {
	writeJSON(ctx, w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: msg,
			Status:  mapped.Status,
			Errors:  []googleErrorItem{{Domain: errorDomain, Reason: mapped.Reason, Message: msg}},
		},
	})
}

func mapError(ctx context.Context, err error) mappedError {
	_, span := startSpan(ctx, "httpapi.mapError")
	defer span.End()

	for _, rule := range errorRules {
		for _, target := range rule.targets {
			if errors.Is(err, target) {
				return rule.mapped
			}
		}
	}
	return internalError
}
