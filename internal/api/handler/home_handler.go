package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Home handles GET /.
//
// @Summary      Welcome message
// @Tags         meta
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       / [get]
func Home(c echo.Context) error {
	return c.JSON(http.StatusOK, messageResponse{Message: "welcome to the API"})
}
