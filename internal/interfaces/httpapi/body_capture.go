package httpapi

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Requests on these paths carry credentials and are never captured.
var sensitiveBodyPaths = map[string]struct{}{
	"/api/spond/configure": {},
}

// CaptureRequestBody records a prefix of the request body on the active
// span. The handler still sees the full body.
func CaptureRequestBody(maxBytes int, next http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = 8192
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		span := trace.SpanFromContext(r.Context())
		if !span.IsRecording() || r.Body == nil || r.Body == http.NoBody || !shouldCaptureBody(r) {
			next.ServeHTTP(w, r)
			return
		}

		buf := bytebufferpool.Get()
		defer bytebufferpool.Put(buf)

		if _, err := buf.ReadFrom(io.LimitReader(r.Body, int64(maxBytes))); err != nil {
			span.SetAttributes(attribute.String("http.request.body.error", err.Error()))
		}
		captured := append([]byte(nil), buf.B...)
		span.SetAttributes(
			attribute.String("http.request.body", string(captured)),
			attribute.Int("http.request.body.captured_bytes", len(captured)),
		)

		r.Body = struct {
			io.Reader
			io.Closer
		}{Reader: io.MultiReader(bytes.NewReader(captured), r.Body), Closer: r.Body}
		next.ServeHTTP(w, r)
	})
}

func shouldCaptureBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return false
	}
	if _, sensitive := sensitiveBodyPaths[strings.TrimRight(r.URL.Path, "/")]; sensitive {
		return false
	}
	return strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "json") || r.Header.Get("Content-Type") == ""
}
