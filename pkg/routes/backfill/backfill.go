package backfill

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/dfcarvalho/miolo/internal/repositories/checkpoint"
	"github.com/dfcarvalho/miolo/pkg/backfill"
)

var validate = validator.New()

// RunRequest tunes one backfill invocation
type RunRequest struct {
	BatchSize  int `json:"batch_size" validate:"omitempty,gt=0"`
	MaxBatches int `json:"max_batches" validate:"omitempty,gt=0"`
}

// Register registers backfill routes
func Register(g *echo.Group) {
	g.POST("/run", Run)
	g.GET("/progress", GetProgress)
}

// Run executes the core backfill until done, or until max_batches is reached
func Run(c echo.Context) error {
	ctx := c.Request().Context()

	var req RunRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid request: %v", err)
	}

	ctx, engine, err := ectoinject.GetContext[*backfill.Engine](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	report, err := engine.Run(ctx, backfill.Config{
		BatchSize:  req.BatchSize,
		MaxBatches: req.MaxBatches,
	})
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "backfill run failed")
	}

	return c.JSON(http.StatusOK, report)
}

// GetProgress returns the persisted backfill checkpoint
func GetProgress(c echo.Context) error {
	ctx := c.Request().Context()

	ctx, checkpoints, err := ectoinject.GetContext[*checkpoint.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	progress, err := checkpoints.Get(ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to read backfill progress")
	}

	return c.JSON(http.StatusOK, progress)
}
