package models

// Company is the registered entity shared by all establishments under one
// 8-digit base CNPJ.
type Company struct {
	BaseCNPJ  string `json:"base_cnpj" db:"base_cnpj"`
	LegalName string `json:"legal_name" db:"legal_name"`
	TradeName string `json:"trade_name" db:"trade_name"`
}

// Establishment is one branch/location of a company.
type Establishment struct {
	ID              int64  `json:"id" db:"id"`
	BaseCNPJ        string `json:"base_cnpj" db:"base_cnpj"`
	TradeName       string `json:"trade_name" db:"trade_name"`
	StatusCode      string `json:"status_code" db:"status_code"`
	Street          string `json:"street" db:"street"`
	Number          string `json:"number" db:"number"`
	District        string `json:"district" db:"district"`
	State           string `json:"state" db:"state"`
	PrimaryActivity string `json:"primary_activity" db:"primary_activity"`
}

// CompanyInfo is the resolved, display-ready view of one establishment.
type CompanyInfo struct {
	BaseCNPJ        string `json:"base_cnpj"`
	DisplayName     string `json:"display_name"`
	StatusCode      string `json:"status_code"`
	StatusLabel     string `json:"status_label"`
	Address         string `json:"address,omitempty"`
	District        string `json:"district,omitempty"`
	State           string `json:"state,omitempty"`
	PrimaryActivity string `json:"primary_activity,omitempty"`
}
