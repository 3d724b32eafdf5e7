package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/credgate/auth-api/internal/api/metrics"
	"github.com/credgate/auth-api/internal/core/domain"
)

// RequireSelf only lets a request through when the identity verified by Auth
// equals the route parameter named param. Must run after Auth.
func RequireSelf(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, _ := c.Get(ContextUserID).(string)
			if userID == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrMissingToken.Error()).
					SetInternal(domain.ErrMissingToken)
			}
			if userID != c.Param(param) {
				metrics.GateRejectionsTotal.WithLabelValues("forbidden").Inc()
				return echo.NewHTTPError(http.StatusForbidden, domain.ErrForbidden.Error()).
					SetInternal(domain.ErrForbidden)
			}
			return next(c)
		}
	}
}
