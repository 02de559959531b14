package handlers

import (
	"github.com/labstack/echo/v4"
)

// AppHandler serves the embedded mini-app shell page.
type AppHandler struct {
	pagePath string
}

func NewAppHandler(pagePath string) *AppHandler {
	return &AppHandler{pagePath: pagePath}
}

func (h *AppHandler) Register(e *echo.Echo) {
	e.GET("/app", h.Page)
}

func (h *AppHandler) Page(c echo.Context) error {
	return c.File(h.pagePath)
}
