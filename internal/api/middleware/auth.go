package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/credgate/auth-api/internal/api/metrics"
	"github.com/credgate/auth-api/internal/core/domain"
	"github.com/credgate/auth-api/internal/core/ports"
)

// ContextUserID is the echo.Context key holding the verified identity key.
const ContextUserID = "user_id"

// Auth validates the bearer token and injects the identity it names into
// the context. A missing Authorization header, or one without a token
// segment, is a 401; a token that fails verification is a 400.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				metrics.GateRejectionsTotal.WithLabelValues("missing_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrMissingToken.Error()).
					SetInternal(domain.ErrMissingToken)
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				metrics.GateRejectionsTotal.WithLabelValues(rejectionReason(err)).Inc()
				return echo.NewHTTPError(http.StatusBadRequest, domain.ErrInvalidToken.Error()).
					SetInternal(err)
			}

			c.Set(ContextUserID, userID)
			return next(c)
		}
	}
}

// bearerToken returns the second segment of "<scheme> <token>". The scheme
// is not checked; whatever follows it is left to the verifier.
func bearerToken(header string) (string, bool) {
	_, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "bad_signature"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	default:
		return "invalid"
	}
}
