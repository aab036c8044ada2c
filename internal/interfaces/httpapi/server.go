package httpapi

import (
	"net/http"

	"github.com/riskibarqy/clubsync/internal/platform/logging"
)

type RouterConfig struct {
	CORSAllowedOrigins []string
	InternalJobToken   string
	// CaptureRequestBody attaches up to RequestBodyMaxBytes of each request
	// body to its trace span.
	CaptureRequestBody  bool
	RequestBodyMaxBytes int
}

func NewRouter(handler *Handler, verifier TokenVerifier, logger *logging.Logger, cfg RouterConfig) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerAuthorizedRoutes(mux, handler, verifier)
	registerInternalJobRoutes(mux, handler, cfg.InternalJobToken)

	var next http.Handler = recoverPanic(logger, mux)
	if cfg.CaptureRequestBody {
		next = CaptureRequestBody(cfg.RequestBodyMaxBytes, next)
	}
	return RequestTracing(RequestLogging(logger, CORS(cfg.CORSAllowedOrigins, next)))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "path", r.URL.Path)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
