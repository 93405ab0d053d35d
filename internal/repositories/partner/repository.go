package partner

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/dfcarvalho/miolo/pkg/database"
	"github.com/dfcarvalho/miolo/pkg/models"
	"github.com/dfcarvalho/miolo/pkg/tracing"
)

// partnerColumns is the canonical column list for partner selects. The core
// column is coalesced because rows ingested before the backfill ran may
// carry NULL.
const partnerColumns = "id, base_cnpj, partner_name, raw_tax_id, COALESCE(tax_id_core, '') AS tax_id_core, created_at, updated_at"

// Repository handles partner row persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new partner repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// CountWellFormedCores returns how many rows carry a valid 6-digit core.
// The resolver uses this population count to pick its query strategy.
func (r *Repository) CountWellFormedCores(ctx context.Context) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "partner.Repository.CountWellFormedCores")
	defer span.End()

	query := `SELECT COUNT(*) FROM partners WHERE tax_id_core ~ '^[0-9]{6}$'`

	var count int64
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count well-formed cores")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count indexed cores")
	}
	return count, nil
}

// FindByCore returns partners whose derived core matches exactly. This is
// the indexed lookup path.
func (r *Repository) FindByCore(ctx context.Context, core string, limit int) ([]models.Partner, error) {
	ctx, span := tracing.StartSpan(ctx, "partner.Repository.FindByCore")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(partnerColumns)
	sb.From("partners")
	sb.Where(sb.Equal("tax_id_core", core))
	sb.OrderBy("id")
	sb.Limit(limit)

	query, args := sb.Build()
	var partners []models.Partner
	if err := r.db.SelectContext(ctx, &partners, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"core": core}).Error("Failed to find partners by core")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to find partners")
	}
	return partners, nil
}

// FindByRawPattern returns partners whose raw identifier yields the given
// core when the extraction rule is applied at query time. This is the scan
// path used while the derived column is not yet populated; it mirrors the
// extraction rule exactly (11 digits take the window at offset 4, anything
// else with 6 or more digits takes the first 6).
func (r *Repository) FindByRawPattern(ctx context.Context, core string, limit int) ([]models.Partner, error) {
	ctx, span := tracing.StartSpan(ctx, "partner.Repository.FindByRawPattern")
	defer span.End()

	query := `
		WITH stripped AS (
			SELECT ` + partnerColumns + `,
			       regexp_replace(raw_tax_id, '[^0-9]', '', 'g') AS digits
			FROM partners
		)
		SELECT ` + partnerColumns + `
		FROM stripped
		WHERE (length(digits) = 11 AND substring(digits FROM 4 FOR 6) = $1)
		   OR (length(digits) <> 11 AND length(digits) >= 6 AND substring(digits FROM 1 FOR 6) = $1)
		ORDER BY id
		LIMIT $2
	`

	var partners []models.Partner
	if err := r.db.SelectContext(ctx, &partners, query, core, limit); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"core": core}).Error("Failed to scan partners by raw pattern")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to scan partners")
	}
	return partners, nil
}

// ListRefsByBase returns the partners registered under one company base.
func (r *Repository) ListRefsByBase(ctx context.Context, baseCNPJ string) ([]models.PartnerRef, error) {
	ctx, span := tracing.StartSpan(ctx, "partner.Repository.ListRefsByBase")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("raw_tax_id", "partner_name")
	sb.From("partners")
	sb.Where(sb.Equal("base_cnpj", baseCNPJ))
	sb.OrderBy("partner_name")

	query, args := sb.Build()
	var refs []models.PartnerRef
	if err := r.db.SelectContext(ctx, &refs, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"base_cnpj": baseCNPJ}).Error("Failed to list partners by base")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list partners")
	}
	return refs, nil
}

// CountQualifying counts rows past the checkpoint whose derived core is
// missing or malformed and therefore still needs the backfill.
func (r *Repository) CountQualifying(ctx context.Context, afterRowID int64) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "partner.Repository.CountQualifying")
	defer span.End()

	query := `
		SELECT COUNT(*)
		FROM partners
		WHERE id > $1
		  AND (tax_id_core IS NULL OR tax_id_core !~ '^[0-9]{6}$')
	`

	var count int64
	if err := r.db.GetContext(ctx, &count, query, afterRowID); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"after_row_id": afterRowID}).Error("Failed to count qualifying rows")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count qualifying rows")
	}
	return count, nil
}

// FetchQualifyingBatch returns the next batch of rows needing the backfill,
// ordered by row id ascending starting after the checkpoint.
func (r *Repository) FetchQualifyingBatch(ctx context.Context, afterRowID int64, limit int) ([]models.Partner, error) {
	ctx, span := tracing.StartSpan(ctx, "partner.Repository.FetchQualifyingBatch")
	defer span.End()

	query := `
		SELECT ` + partnerColumns + `
		FROM partners
		WHERE id > $1
		  AND (tax_id_core IS NULL OR tax_id_core !~ '^[0-9]{6}$')
		ORDER BY id
		LIMIT $2
	`

	var partners []models.Partner
	if err := r.db.SelectContext(ctx, &partners, query, afterRowID, limit); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"after_row_id": afterRowID, "limit": limit}).Error("Failed to fetch qualifying batch")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to fetch qualifying rows")
	}
	return partners, nil
}

// ApplyCoreUpdates writes a batch of recomputed cores in a single
// transaction. The batch succeeds or rolls back as a whole.
func (r *Repository) ApplyCoreUpdates(ctx context.Context, updates []models.CoreUpdate) error {
	ctx, span := tracing.StartSpan(ctx, "partner.Repository.ApplyCoreUpdates")
	defer span.End()

	if len(updates) == 0 {
		return nil
	}

	txCtx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	for _, u := range updates {
		sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
		sb.Update("partners")
		sb.Set(sb.Assign("tax_id_core", u.Core), sb.Assign("updated_at", now))
		sb.Where(sb.Equal("id", u.RowID))

		query, args := sb.Build()
		if _, err := tx.ExecContext(txCtx, query, args...); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"row_id": u.RowID}).Error("Failed to update partner core")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update partner cores")
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit core updates")
	}
	return nil
}

// RebuildCoreIndex drops and recreates the core lookup index. Idempotent;
// run after the backfill reaches completion.
func (r *Repository) RebuildCoreIndex(ctx context.Context) error {
	ctx, span := tracing.StartSpan(ctx, "partner.Repository.RebuildCoreIndex")
	defer span.End()

	if _, err := r.db.ExecContext(ctx, `DROP INDEX IF EXISTS idx_partners_tax_id_core`); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to drop core index")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to drop core index")
	}
	if _, err := r.db.ExecContext(ctx, `CREATE INDEX idx_partners_tax_id_core ON partners (tax_id_core)`); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create core index")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create core index")
	}

	r.logger.WithContext(ctx).Info("Rebuilt partner core index")
	return nil
}
