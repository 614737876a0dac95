package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/verikeep/internal/common"
	"github.com/dmitrijs2005/verikeep/internal/logging"
	"github.com/dmitrijs2005/verikeep/internal/server/models"
)

type ctxKey string

const accountKey ctxKey = "account"

// Authenticator resolves a raw bearer token to an account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Account, error)
}

// AccountFromContext returns the account stored by the auth gate.
func AccountFromContext(ctx context.Context) (*models.Account, bool) {
	a, ok := ctx.Value(accountKey).(*models.Account)
	return a, ok && a != nil
}

func withAccount(ctx context.Context, a *models.Account) context.Context {
	return context.WithValue(ctx, accountKey, a)
}

// bearerToken extracts the token from an Authorization header value. Both
// "Bearer <token>" (any case) and a bare token are accepted.
func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	scheme, rest, found := strings.Cut(header, " ")
	if found && strings.EqualFold(scheme, common.BearerScheme) {
		return strings.TrimSpace(rest)
	}
	if strings.EqualFold(header, common.BearerScheme) {
		return ""
	}
	return header
}

// AuthGate rejects requests without a valid token for an existing verified
// account and stores that account in the request context.
func AuthGate(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get(common.AuthorizationHeaderName))

			account, err := a.Authenticate(r.Context(), token)
			if err != nil {
				if common.KindOf(err) == common.KindUnauthorized {
					w.Header().Set("WWW-Authenticate", common.BearerScheme)
				}
				writeError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(withAccount(r.Context(), account)))
		})
	}
}

// requestLogger logs one line per request after it completes.
func requestLogger(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				logger.Info(r.Context(), "HTTP request",
					"request_id", middleware.GetReqID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
