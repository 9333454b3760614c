package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Home reports that the API is up.
func Home(c echo.Context) error {
	return c.JSON(http.StatusOK, MessageResponse{Msg: "Welcome to the Products API!"})
}

// Healthz reports liveness.
func Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
