package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
)

// dependencyContext keeps the request context's cancellation and values while
// falling back to the application context for dependency lookups.
type dependencyContext struct {
	context.Context
	app context.Context
}

func (c dependencyContext) Value(key any) any {
	if v := c.Context.Value(key); v != nil {
		return v
	}
	return c.app.Value(key)
}

// Dependencies makes the application context's registered dependencies
// reachable from every request context.
func Dependencies(app context.Context) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := dependencyContext{Context: req.Context(), app: app}
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}
