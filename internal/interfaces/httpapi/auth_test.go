package httpapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/riskibarqy/clubsync/internal/usecase"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "Bearer abc", want: "abc"},
		{header: "bearer   abc ", want: "abc"},
		{header: "", wantErr: true},
		{header: "Basic abc", wantErr: true},
		{header: "Bearer", wantErr: true},
	}

	for _, tt := range tests {
		got, err := bearerToken(tt.header)
		if tt.wantErr {
			if !errors.Is(err, usecase.ErrUnauthorized) {
				t.Fatalf("bearerToken(%q) expected ErrUnauthorized, got=%v", tt.header, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("bearerToken(%q)=%q,%v want=%q", tt.header, got, err, tt.want)
		}
	}
}

func TestRequireInternalJobToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	tests := []struct {
		name       string
		configured string
		provided   string
		wantStatus int
	}{
		{name: "matching token", configured: "job-token", provided: "job-token", wantStatus: http.StatusAccepted},
		{name: "wrong token", configured: "job-token", provided: "job-tokem", wantStatus: http.StatusUnauthorized},
		{name: "missing token", configured: "job-token", wantStatus: http.StatusUnauthorized},
		{name: "route disabled", configured: " ", provided: "anything", wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/spond-sync", nil)
			if tt.provided != "" {
				req.Header.Set(internalJobTokenHeader, tt.provided)
			}
			rec := httptest.NewRecorder()
			RequireInternalJobToken(tt.configured, next).ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}
