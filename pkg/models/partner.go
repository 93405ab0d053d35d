package models

import "time"

// Partner is one (company, partner) relationship row from the registry.
// RawTaxID holds the partner identifier exactly as ingested (masked or not);
// TaxIDCore is the derived 6-digit lookup key maintained by the backfill job.
type Partner struct {
	ID        int64     `json:"id" db:"id"`
	BaseCNPJ  string    `json:"base_cnpj" db:"base_cnpj"`
	Name      string    `json:"partner_name" db:"partner_name"`
	RawTaxID  string    `json:"raw_tax_id" db:"raw_tax_id"`
	TaxIDCore string    `json:"tax_id_core" db:"tax_id_core"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ScoredPartner is a Partner annotated with a name similarity score.
// Transient; built per query and discarded after resolution.
type ScoredPartner struct {
	Partner
	Score float64 `json:"score"`
}

// PartnerRef is the reduced partner view returned by company lookups.
type PartnerRef struct {
	RawTaxID string `json:"raw_tax_id" db:"raw_tax_id"`
	Name     string `json:"partner_name" db:"partner_name"`
}
