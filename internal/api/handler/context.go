package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/credgate/auth-api/internal/api/middleware"
	"github.com/credgate/auth-api/internal/core/domain"
)

// ctxUserID extracts the identity injected by the Auth middleware and fails
// fast with 401 when it is absent, so a route mounted without the gate never
// reaches the service.
func ctxUserID(c echo.Context) (string, error) {
	userID, _ := c.Get(middleware.ContextUserID).(string)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, domain.ErrMissingToken.Error()).
			SetInternal(domain.ErrMissingToken)
	}
	return userID, nil
}
