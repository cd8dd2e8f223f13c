package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/campus-scheduler/internal/application"
	"github.com/example/campus-scheduler/internal/logging"
)

type principalKey struct{}

func withPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

func principalFrom(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(application.Principal)
	return principal, ok
}

// tokenVerifier is what the auth middleware needs from the auth service.
type tokenVerifier interface {
	Verify(token string) (application.Principal, error)
}

// requireAuth rejects requests without a valid bearer token and stores the
// principal in the request context.
func requireAuth(verifier tokenVerifier, respond responder, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		header := req.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respond.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		principal, err := verifier.Verify(token)
		if err != nil {
			respond.writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		next(w, req.WithContext(withPrincipal(req.Context(), principal)))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestLogger attaches a request-scoped logger to the context and records
// one line per request.
func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		reqLogger := logger.With(
			slog.String("request_id", uuid.NewString()),
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path))

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, req.WithContext(logging.WithLogger(req.Context(), reqLogger)))

		reqLogger.Info("request handled",
			slog.Int("status", recorder.status),
			slog.Duration("duration", time.Since(start)))
	})
}
