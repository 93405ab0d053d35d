// Package resolver resolves masked or partial taxpayer identifiers against
// the partner registry.
package resolver

import (
	"context"
	"sort"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/dfcarvalho/miolo/pkg/identifier"
	"github.com/dfcarvalho/miolo/pkg/matching"
	"github.com/dfcarvalho/miolo/pkg/models"
	"github.com/dfcarvalho/miolo/pkg/normalizers"
	"github.com/dfcarvalho/miolo/pkg/tracing"
)

// PartnerStore is the partner row access the resolver needs.
type PartnerStore interface {
	CountWellFormedCores(ctx context.Context) (int64, error)
	FindByCore(ctx context.Context, core string, limit int) ([]models.Partner, error)
	FindByRawPattern(ctx context.Context, core string, limit int) ([]models.Partner, error)
	ListRefsByBase(ctx context.Context, baseCNPJ string) ([]models.PartnerRef, error)
}

// CompanyStore is the company/establishment access the resolver needs.
type CompanyStore interface {
	GetByBase(ctx context.Context, baseCNPJ string) (*models.Company, error)
	ListEstablishmentsByBase(ctx context.Context, baseCNPJ string) ([]models.Establishment, error)
}

// Config contains resolver tuning knobs
type Config struct {
	// DefaultThreshold is the similarity acceptance threshold used when the
	// caller does not supply one.
	DefaultThreshold float64
	// MaxCandidates caps the candidate set on both query paths.
	MaxCandidates int
	// IndexedPathMinPopulation is the count of well-formed cores above which
	// the indexed lookup path is trusted over the raw scan.
	IndexedPathMinPopulation int64
}

// DefaultConfig returns default resolver configuration
func DefaultConfig() Config {
	return Config{
		DefaultThreshold:         0.7,
		MaxCandidates:            100,
		IndexedPathMinPopulation: 1000,
	}
}

// Service orchestrates partner and company resolution
type Service struct {
	logger    ectologger.Logger
	partners  PartnerStore
	companies CompanyStore
	scorer    *matching.Scorer
	config    Config
}

// NewService creates a new resolver service
func NewService(logger ectologger.Logger, partners PartnerStore, companies CompanyStore, config Config) *Service {
	return &Service{
		logger:    logger,
		partners:  partners,
		companies: companies,
		scorer:    matching.NewScorer(),
		config:    config,
	}
}

// ResolvePartner resolves a raw identifier plus optional name to the best
// matching partner. Always returns a structured outcome; storage failures
// surface as status "error", never as a Go error to the caller.
func (s *Service) ResolvePartner(ctx context.Context, rawIdentifier, name string, threshold float64) *models.Resolution {
	ctx, span := tracing.StartSpan(ctx, "resolver.Service.ResolvePartner")
	defer span.End()

	start := time.Now()
	res := &models.Resolution{
		Identifier: rawIdentifier,
		Name:       name,
		Companies:  []models.CompanyInfo{},
	}
	defer func() { res.ElapsedMS = time.Since(start).Milliseconds() }()

	if threshold <= 0 {
		threshold = s.config.DefaultThreshold
	}

	log := s.logger.WithContext(ctx).WithFields(map[string]any{"identifier": rawIdentifier})

	core := identifier.ExtractCore(rawIdentifier)
	if !identifier.IsUsableCore(core) {
		res.Status = models.ResolutionStatusInvalidIdentifier
		res.Message = "identifier has fewer than 3 usable digits"
		return res
	}

	candidates, err := s.findCandidates(ctx, core)
	if err != nil {
		log.WithError(err).Error("Candidate query failed")
		res.Status = models.ResolutionStatusError
		res.Message = err.Error()
		return res
	}

	if len(candidates) == 0 {
		res.Status = models.ResolutionStatusNotFound
		return res
	}

	if name == "" {
		res.Status = models.ResolutionStatusFound
		res.Listing = distinctByBase(candidates)
		return res
	}

	scored := s.scoreCandidates(name, candidates)
	best := scored[0]
	res.BestScore = best.Score

	if !s.scorer.Accepts(best.Score, threshold) {
		log.WithFields(map[string]any{"best_score": best.Score, "threshold": threshold}).Debug("No candidate met the threshold")
		res.Status = models.ResolutionStatusNameMismatch
		return res
	}

	res.Status = models.ResolutionStatusFound
	res.MatchedName = best.Name
	res.MatchedIdentifier = best.RawTaxID
	res.Score = best.Score

	companies, err := s.companyInfos(ctx, best.BaseCNPJ)
	if err != nil {
		log.WithError(err).WithFields(map[string]any{"base_cnpj": best.BaseCNPJ}).Error("Company lookup failed")
		res.Status = models.ResolutionStatusError
		res.Message = err.Error()
		return res
	}
	res.Companies = companies

	return res
}

// ResolveCompany resolves a raw company identifier to its establishments and
// registered partners.
func (s *Service) ResolveCompany(ctx context.Context, rawIdentifier string) *models.CompanyResolution {
	ctx, span := tracing.StartSpan(ctx, "resolver.Service.ResolveCompany")
	defer span.End()

	start := time.Now()
	res := &models.CompanyResolution{
		Identifier: rawIdentifier,
		Companies:  []models.CompanyInfo{},
	}
	defer func() { res.ElapsedMS = time.Since(start).Milliseconds() }()

	base := identifier.ExtractBaseCNPJ(rawIdentifier)
	if base == "" {
		res.Status = models.ResolutionStatusInvalidIdentifier
		res.Message = "identifier has fewer than 8 digits"
		return res
	}

	companies, err := s.companyInfos(ctx, base)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"base_cnpj": base}).Error("Company lookup failed")
		res.Status = models.ResolutionStatusError
		res.Message = err.Error()
		return res
	}

	if len(companies) == 0 {
		res.Status = models.ResolutionStatusNotFound
		return res
	}

	partners, err := s.partners.ListRefsByBase(ctx, base)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"base_cnpj": base}).Error("Partner listing failed")
		res.Status = models.ResolutionStatusError
		res.Message = err.Error()
		return res
	}

	res.Status = models.ResolutionStatusFound
	res.Companies = companies
	res.Partners = partners
	return res
}

// findCandidates picks the query strategy and fetches the candidate set.
// While the derived column is underpopulated an indexed lookup would return
// nothing even though matches exist by raw-value extraction, so the scan
// path is used until the backfill has produced enough well-formed cores.
func (s *Service) findCandidates(ctx context.Context, core string) ([]models.Partner, error) {
	population, err := s.partners.CountWellFormedCores(ctx)
	if err != nil {
		return nil, err
	}

	if population > s.config.IndexedPathMinPopulation {
		return s.partners.FindByCore(ctx, core, s.config.MaxCandidates)
	}
	return s.partners.FindByRawPattern(ctx, core, s.config.MaxCandidates)
}

// scoreCandidates scores every candidate against the normalized query name
// and returns them sorted by score descending. The sort is stable so ties
// keep original query order.
func (s *Service) scoreCandidates(name string, candidates []models.Partner) []models.ScoredPartner {
	queryName := normalizers.NormalizeName(name)

	scored := make([]models.ScoredPartner, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, models.ScoredPartner{
			Partner: c,
			Score:   s.scorer.Ratio(queryName, normalizers.NormalizeName(c.Name)),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// distinctByBase keeps the first candidate per company base, preserving
// query order.
func distinctByBase(candidates []models.Partner) []models.Partner {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]models.Partner, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c.BaseCNPJ]; ok {
			continue
		}
		seen[c.BaseCNPJ] = struct{}{}
		out = append(out, c)
	}
	return out
}
