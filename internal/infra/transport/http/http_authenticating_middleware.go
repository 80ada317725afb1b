package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/mkrupp/jobboard/internal/domain"
	context_ "github.com/mkrupp/jobboard/internal/infra/context"
	"github.com/mkrupp/jobboard/internal/infra/logging"
)

// Authenticator resolves a bearer token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// AuthenticatingMiddleware creates middleware that resolves the bearer token in
// the Authorization header and adds the user to the request context.
// Requests without the header pass through anonymously; handlers that need a
// user call RequireUser. A token that does not validate is rejected with 401.
func AuthenticatingMiddleware(next http.Handler, auth Authenticator, log logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)

			return
		}

		token, ok := bearerToken(header)
		if !ok {
			log.WarnContext(r.Context(), "malformed authorization header")
			WriteError(w, domain.ErrInvalidAuthToken)

			return
		}

		user, err := auth.Authenticate(r.Context(), token)
		if err != nil {
			log.WarnContext(r.Context(), "authenticate failed", "error", err)
			WriteError(w, err)

			return
		}

		next.ServeHTTP(w, r.WithContext(context_.WithUser(r.Context(), user)))
	})
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}
