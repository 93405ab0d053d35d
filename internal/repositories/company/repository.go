package company

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/dfcarvalho/miolo/pkg/database"
	"github.com/dfcarvalho/miolo/pkg/models"
	"github.com/dfcarvalho/miolo/pkg/tracing"
)

// Repository handles company and establishment reads. Both tables are
// read-only from this service's perspective.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new company repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// GetByBase retrieves the company registered under a base CNPJ. Returns nil
// when the base is unknown.
func (r *Repository) GetByBase(ctx context.Context, baseCNPJ string) (*models.Company, error) {
	ctx, span := tracing.StartSpan(ctx, "company.Repository.GetByBase")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("base_cnpj", "COALESCE(legal_name, '') AS legal_name", "COALESCE(trade_name, '') AS trade_name")
	sb.From("companies")
	sb.Where(sb.Equal("base_cnpj", baseCNPJ))
	sb.Limit(1)

	query, args := sb.Build()
	var company models.Company
	if err := r.db.GetContext(ctx, &company, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"base_cnpj": baseCNPJ}).Error("Failed to get company by base")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get company")
	}
	return &company, nil
}

// ListEstablishmentsByBase returns every establishment registered under a
// base CNPJ.
func (r *Repository) ListEstablishmentsByBase(ctx context.Context, baseCNPJ string) ([]models.Establishment, error) {
	ctx, span := tracing.StartSpan(ctx, "company.Repository.ListEstablishmentsByBase")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(
		"id",
		"base_cnpj",
		"COALESCE(trade_name, '') AS trade_name",
		"COALESCE(status_code, '') AS status_code",
		"COALESCE(street, '') AS street",
		"COALESCE(number, '') AS number",
		"COALESCE(district, '') AS district",
		"COALESCE(state, '') AS state",
		"COALESCE(primary_activity, '') AS primary_activity",
	)
	sb.From("establishments")
	sb.Where(sb.Equal("base_cnpj", baseCNPJ))
	sb.OrderBy("id")

	query, args := sb.Build()
	var establishments []models.Establishment
	if err := r.db.SelectContext(ctx, &establishments, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"base_cnpj": baseCNPJ}).Error("Failed to list establishments by base")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list establishments")
	}
	return establishments, nil
}
