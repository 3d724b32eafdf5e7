package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/credgate/auth-api/internal/core/domain"
	"github.com/credgate/auth-api/internal/core/ports"
)

// StatusUserNotFound is the non-standard status existing clients expect when
// a profile does not exist.
const StatusUserNotFound = 440

// UserHandler serves the protected profile route.
type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Get handles GET /user/:id.
//
// @Summary      Get a user profile
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  profileResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      440  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /user/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	if _, err := ctxUserID(c); err != nil {
		return err
	}

	profile, err := h.users.GetProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return echo.NewHTTPError(StatusUserNotFound, "user not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{User: profile})
}
