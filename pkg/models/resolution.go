package models

// ResolutionStatus is the terminal outcome of a partner lookup.
type ResolutionStatus string

const (
	ResolutionStatusFound             ResolutionStatus = "found"
	ResolutionStatusNotFound          ResolutionStatus = "not_found"
	ResolutionStatusInvalidIdentifier ResolutionStatus = "invalid_identifier"
	ResolutionStatusNameMismatch      ResolutionStatus = "name_mismatch"
	ResolutionStatusError             ResolutionStatus = "error"
)

// Resolution is the structured result of resolve-partner. Lookups never fail
// to the caller; storage errors surface as status "error" with Message set.
type Resolution struct {
	Identifier string           `json:"identifier"`
	Name       string           `json:"name,omitempty"`
	Status     ResolutionStatus `json:"status"`

	// Set when Status is "found".
	MatchedName       string  `json:"matched_name,omitempty"`
	MatchedIdentifier string  `json:"matched_identifier,omitempty"`
	Score             float64 `json:"score,omitempty"`

	// Best score seen, reported on "name_mismatch" for diagnostics.
	BestScore float64 `json:"best_score,omitempty"`

	// Nameless queries return the candidate rows directly instead of a
	// single scored winner.
	Listing []Partner `json:"listing,omitempty"`

	Companies []CompanyInfo `json:"companies"`
	Message   string        `json:"message,omitempty"`
	ElapsedMS int64         `json:"elapsed_time_ms"`
}

// CompanyResolution is the result of a company (base CNPJ) lookup.
type CompanyResolution struct {
	Identifier string           `json:"identifier"`
	Status     ResolutionStatus `json:"status"`
	Companies  []CompanyInfo    `json:"companies"`
	Partners   []PartnerRef     `json:"partners,omitempty"`
	Message    string           `json:"message,omitempty"`
	ElapsedMS  int64            `json:"elapsed_time_ms"`
}
