package http

import "github.com/labstack/echo/v4"

// Handler is implemented by route groups mounted on the server, such as the
// dashboard API handler.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}
