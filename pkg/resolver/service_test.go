package resolver

import (
	"context"
	"fmt"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dfcarvalho/miolo/pkg/models"
)

type fakePartnerStore struct {
	population int64
	byCore     []models.Partner
	byPattern  []models.Partner
	refs       []models.PartnerRef
	err        error

	coreCalls    int
	patternCalls int
}

func (f *fakePartnerStore) CountWellFormedCores(ctx context.Context) (int64, error) {
	return f.population, f.err
}

func (f *fakePartnerStore) FindByCore(ctx context.Context, core string, limit int) ([]models.Partner, error) {
	f.coreCalls++
	return f.byCore, f.err
}

func (f *fakePartnerStore) FindByRawPattern(ctx context.Context, core string, limit int) ([]models.Partner, error) {
	f.patternCalls++
	return f.byPattern, f.err
}

func (f *fakePartnerStore) ListRefsByBase(ctx context.Context, baseCNPJ string) ([]models.PartnerRef, error) {
	return f.refs, f.err
}

type fakeCompanyStore struct {
	company        *models.Company
	establishments []models.Establishment
	err            error
}

func (f *fakeCompanyStore) GetByBase(ctx context.Context, baseCNPJ string) (*models.Company, error) {
	return f.company, f.err
}

func (f *fakeCompanyStore) ListEstablishmentsByBase(ctx context.Context, baseCNPJ string) ([]models.Establishment, error) {
	return f.establishments, f.err
}

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func newTestService(partners *fakePartnerStore, companies *fakeCompanyStore) *Service {
	return NewService(testLogger(), partners, companies, DefaultConfig())
}

func partner(id int64, base, name, raw, core string) models.Partner {
	return models.Partner{ID: id, BaseCNPJ: base, Name: name, RawTaxID: raw, TaxIDCore: core}
}

func TestService_ResolvePartner(t *testing.T) {
	ctx := context.Background()

	t.Run("InvalidIdentifier", func(t *testing.T) {
		svc := newTestService(&fakePartnerStore{}, &fakeCompanyStore{})

		res := svc.ResolvePartner(ctx, "1-2", "MARIA", 0)
		assert.Equal(t, models.ResolutionStatusInvalidIdentifier, res.Status)
		assert.Empty(t, res.Companies)
	})

	t.Run("NotFound", func(t *testing.T) {
		partners := &fakePartnerStore{population: 5000}
		svc := newTestService(partners, &fakeCompanyStore{})

		res := svc.ResolvePartner(ctx, "123.456.789-01", "MARIA", 0)
		assert.Equal(t, models.ResolutionStatusNotFound, res.Status)
		assert.Empty(t, res.Companies)
	})

	t.Run("BestOfWinsNotFirstOf", func(t *testing.T) {
		partners := &fakePartnerStore{
			population: 5000,
			byCore: []models.Partner{
				partner(1, "11111111", "MARIO DE SOUZA", "***456789**", "456789"),
				partner(2, "22222222", "MARIA DA SILVA", "***456789**", "456789"),
			},
		}
		companies := &fakeCompanyStore{
			establishments: []models.Establishment{{BaseCNPJ: "22222222", StatusCode: "2", TradeName: "PADARIA SILVA"}},
		}
		svc := newTestService(partners, companies)

		res := svc.ResolvePartner(ctx, "123.456.789-01", "Maria Da Silva", 0.7)
		require.Equal(t, models.ResolutionStatusFound, res.Status)
		assert.Equal(t, "MARIA DA SILVA", res.MatchedName)
		assert.Equal(t, 1.0, res.Score)
		require.Len(t, res.Companies, 1)
		assert.Equal(t, "ATIVA", res.Companies[0].StatusLabel)
		assert.Equal(t, "PADARIA SILVA", res.Companies[0].DisplayName)
	})

	t.Run("ThresholdFlipsFoundToMismatch", func(t *testing.T) {
		partners := &fakePartnerStore{
			population: 5000,
			byCore: []models.Partner{
				partner(1, "11111111", "MARIA DA SILVEIRA", "***456789**", "456789"),
			},
		}
		svc := newTestService(partners, &fakeCompanyStore{
			establishments: []models.Establishment{{BaseCNPJ: "11111111", StatusCode: "2"}},
		})

		low := svc.ResolvePartner(ctx, "123.456.789-01", "MARIA DA SILVA", 0.7)
		require.Equal(t, models.ResolutionStatusFound, low.Status)

		high := svc.ResolvePartner(ctx, "123.456.789-01", "MARIA DA SILVA", 0.99)
		assert.Equal(t, models.ResolutionStatusNameMismatch, high.Status)
		assert.Equal(t, low.Score, high.BestScore)
	})

	t.Run("NamelessBulkListing", func(t *testing.T) {
		partners := &fakePartnerStore{
			population: 5000,
			byCore: []models.Partner{
				partner(1, "11111111", "MARIA DA SILVA", "***456789**", "456789"),
				partner(2, "11111111", "JOSE DA SILVA", "***456789**", "456789"),
				partner(3, "22222222", "MARIA DA SILVA", "***456789**", "456789"),
			},
		}
		svc := newTestService(partners, &fakeCompanyStore{})

		res := svc.ResolvePartner(ctx, "456789", "", 0)
		require.Equal(t, models.ResolutionStatusFound, res.Status)
		require.Len(t, res.Listing, 2)
		assert.Equal(t, "11111111", res.Listing[0].BaseCNPJ)
		assert.Equal(t, "22222222", res.Listing[1].BaseCNPJ)
	})

	t.Run("ScanPathWhenIndexUnderpopulated", func(t *testing.T) {
		partners := &fakePartnerStore{
			population: 10,
			byPattern: []models.Partner{
				partner(1, "11111111", "MARIA DA SILVA", "123.456.789-01", ""),
			},
		}
		svc := newTestService(partners, &fakeCompanyStore{
			establishments: []models.Establishment{{BaseCNPJ: "11111111", StatusCode: "2"}},
		})

		res := svc.ResolvePartner(ctx, "123.456.789-01", "MARIA DA SILVA", 0)
		assert.Equal(t, models.ResolutionStatusFound, res.Status)
		assert.Equal(t, 1, partners.patternCalls)
		assert.Equal(t, 0, partners.coreCalls)
	})

	t.Run("IndexedPathWhenPopulated", func(t *testing.T) {
		partners := &fakePartnerStore{population: 1001}
		svc := newTestService(partners, &fakeCompanyStore{})

		svc.ResolvePartner(ctx, "123.456.789-01", "MARIA", 0)
		assert.Equal(t, 1, partners.coreCalls)
		assert.Equal(t, 0, partners.patternCalls)
	})

	t.Run("StorageErrorSurfacesAsErrorStatus", func(t *testing.T) {
		partners := &fakePartnerStore{err: fmt.Errorf("connection refused")}
		svc := newTestService(partners, &fakeCompanyStore{})

		res := svc.ResolvePartner(ctx, "123.456.789-01", "MARIA", 0)
		assert.Equal(t, models.ResolutionStatusError, res.Status)
		assert.Contains(t, res.Message, "connection refused")
	})
}

func TestService_ResolveCompany(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		partners := &fakePartnerStore{
			refs: []models.PartnerRef{{RawTaxID: "***456789**", Name: "MARIA DA SILVA"}},
		}
		companies := &fakeCompanyStore{
			company: &models.Company{BaseCNPJ: "12345678", LegalName: "SILVA COMERCIO LTDA"},
			establishments: []models.Establishment{
				{BaseCNPJ: "12345678", StatusCode: "02", Street: "RUA DAS FLORES", Number: "100"},
			},
		}
		svc := newTestService(partners, companies)

		res := svc.ResolveCompany(ctx, "12.345.678/0001-95")
		require.Equal(t, models.ResolutionStatusFound, res.Status)
		require.Len(t, res.Companies, 1)
		assert.Equal(t, "SILVA COMERCIO LTDA", res.Companies[0].DisplayName)
		assert.Equal(t, "ATIVA", res.Companies[0].StatusLabel)
		assert.Equal(t, "RUA DAS FLORES, 100", res.Companies[0].Address)
		require.Len(t, res.Partners, 1)
	})

	t.Run("InvalidIdentifier", func(t *testing.T) {
		svc := newTestService(&fakePartnerStore{}, &fakeCompanyStore{})

		res := svc.ResolveCompany(ctx, "1234567")
		assert.Equal(t, models.ResolutionStatusInvalidIdentifier, res.Status)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc := newTestService(&fakePartnerStore{}, &fakeCompanyStore{})

		res := svc.ResolveCompany(ctx, "12345678")
		assert.Equal(t, models.ResolutionStatusNotFound, res.Status)
	})
}

func TestStatusLabel(t *testing.T) {
	t.Run("KnownCodes", func(t *testing.T) {
		assert.Equal(t, "ATIVA", StatusLabel("2"))
		assert.Equal(t, "ATIVA", StatusLabel("02"))
		assert.Equal(t, "BAIXADA", StatusLabel("8"))
		assert.Equal(t, "LIQUIDAÇÃO EXTRAJUDICIAL", StatusLabel("07"))
	})

	t.Run("UnknownCode", func(t *testing.T) {
		assert.Equal(t, "DESCONHECIDA (9)", StatusLabel("9"))
	})
}

func TestDisplayName(t *testing.T) {
	est := models.Establishment{TradeName: "PADARIA CENTRAL"}

	t.Run("LegalNameWins", func(t *testing.T) {
		c := &models.Company{LegalName: "CENTRAL ALIMENTOS LTDA", TradeName: "CENTRAL"}
		assert.Equal(t, "CENTRAL ALIMENTOS LTDA", displayName(c, est))
	})

	t.Run("FallsThroughEmptySources", func(t *testing.T) {
		c := &models.Company{LegalName: "", TradeName: "nan"}
		assert.Equal(t, "PADARIA CENTRAL", displayName(c, est))
	})

	t.Run("Sentinel", func(t *testing.T) {
		assert.Equal(t, NameUnavailable, displayName(nil, models.Establishment{}))
	})
}

func TestAddress(t *testing.T) {
	assert.Equal(t, "RUA A, 10", address("RUA A", "10"))
	assert.Equal(t, "", address("RUA A", ""))
	assert.Equal(t, "", address("", "10"))
	assert.Equal(t, "", address("RUA A", "nan"))
}
