package partner

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/dfcarvalho/miolo/pkg/events"
	"github.com/dfcarvalho/miolo/pkg/resolver"
)

var validate = validator.New()

// ResolveRequest is the partner lookup payload
type ResolveRequest struct {
	Identifier string  `json:"identifier" validate:"required"`
	Name       string  `json:"name"`
	Threshold  float64 `json:"threshold" validate:"omitempty,gt=0,lte=1"`
}

// Register registers partner resolution routes
func Register(g *echo.Group) {
	g.POST("/resolve", ResolvePartner)
}

// ResolvePartner resolves a masked or partial identifier plus optional name
func ResolvePartner(c echo.Context) error {
	ctx := c.Request().Context()

	var req ResolveRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid request: %v", err)
	}

	ctx, svc, err := ectoinject.GetContext[*resolver.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	res := svc.ResolvePartner(ctx, req.Identifier, req.Name, req.Threshold)

	// Outcome events are best effort; the lookup result never depends on them
	if ctx, emitter, err := ectoinject.GetContext[*events.Emitter](ctx); err == nil && emitter != nil {
		_ = emitter.EmitPartnerResolved(ctx, res)
	}

	return c.JSON(http.StatusOK, res)
}
