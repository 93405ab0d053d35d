package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/dfcarvalho/miolo/pkg/models"
	"github.com/dfcarvalho/miolo/pkg/tracing"
)

// NameUnavailable is returned when no display name source has a value.
const NameUnavailable = "NOME NÃO DISPONÍVEL"

// statusLabels maps registration status codes to their official labels.
// The table is fixed by the registry layout; both padded and unpadded codes
// appear in the data.
var statusLabels = map[string]string{
	"1": "NULA", "01": "NULA",
	"2": "ATIVA", "02": "ATIVA",
	"3": "SUSPENSA", "03": "SUSPENSA",
	"4": "INAPTA", "04": "INAPTA",
	"5": "CANCELADA", "05": "CANCELADA",
	"6": "IRREGULAR", "06": "IRREGULAR",
	"7": "LIQUIDAÇÃO EXTRAJUDICIAL", "07": "LIQUIDAÇÃO EXTRAJUDICIAL",
	"8": "BAIXADA", "08": "BAIXADA",
}

// StatusLabel maps a registration status code to its human-readable label.
// Unknown codes are reported rather than hidden.
func StatusLabel(code string) string {
	if label, ok := statusLabels[code]; ok {
		return label
	}
	return fmt.Sprintf("DESCONHECIDA (%s)", code)
}

// companyInfos builds the display-ready view of every establishment under a
// base CNPJ.
func (s *Service) companyInfos(ctx context.Context, baseCNPJ string) ([]models.CompanyInfo, error) {
	ctx, span := tracing.StartSpan(ctx, "resolver.Service.companyInfos")
	defer span.End()

	company, err := s.companies.GetByBase(ctx, baseCNPJ)
	if err != nil {
		return nil, err
	}

	establishments, err := s.companies.ListEstablishmentsByBase(ctx, baseCNPJ)
	if err != nil {
		return nil, err
	}

	infos := make([]models.CompanyInfo, 0, len(establishments))
	for _, est := range establishments {
		infos = append(infos, models.CompanyInfo{
			BaseCNPJ:        est.BaseCNPJ,
			DisplayName:     displayName(company, est),
			StatusCode:      est.StatusCode,
			StatusLabel:     StatusLabel(est.StatusCode),
			Address:         address(est.Street, est.Number),
			District:        est.District,
			State:           est.State,
			PrimaryActivity: est.PrimaryActivity,
		})
	}
	return infos, nil
}

// displayName picks the first non-empty name source in priority order:
// company legal name, company trade name, establishment trade name.
func displayName(company *models.Company, est models.Establishment) string {
	candidates := []string{est.TradeName}
	if company != nil {
		candidates = []string{company.LegalName, company.TradeName, est.TradeName}
	}
	for _, name := range candidates {
		if v := strings.TrimSpace(name); v != "" && !isNullLike(v) {
			return v
		}
	}
	return NameUnavailable
}

// address joins street and number only when both are usable.
func address(street, number string) string {
	street = strings.TrimSpace(street)
	number = strings.TrimSpace(number)
	if street == "" || number == "" || isNullLike(street) || isNullLike(number) {
		return ""
	}
	return street + ", " + number
}

// isNullLike catches the textual null markers left over from the flat-file
// ingestion.
func isNullLike(s string) bool {
	switch strings.ToUpper(s) {
	case "NAN", "NULL", "NONE":
		return true
	}
	return false
}
