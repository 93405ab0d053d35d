package company

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/dfcarvalho/miolo/pkg/resolver"
)

// Register registers company lookup routes
func Register(g *echo.Group) {
	g.GET("/:identifier", GetCompany)
}

// GetCompany looks a company up by a full or partial CNPJ
func GetCompany(c echo.Context) error {
	ctx := c.Request().Context()

	identifier := c.Param("identifier")
	if identifier == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "identifier is required")
	}

	ctx, svc, err := ectoinject.GetContext[*resolver.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	res := svc.ResolveCompany(ctx, identifier)
	return c.JSON(http.StatusOK, res)
}
