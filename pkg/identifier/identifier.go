// Package identifier derives lookup keys from Brazilian taxpayer identifiers.
//
// Partner rows carry a CPF that is usually masked in the public registry
// (e.g. "***.456.789-**"), so lookups key on the 6-digit window that survives
// masking: digits 4 through 9 of the full 11-digit CPF. The same window must
// be derived identically at query time and at backfill time.
package identifier

import (
	"github.com/dfcarvalho/miolo/pkg/normalizers"
)

const (
	// CoreLength is the width of the CPF lookup window.
	CoreLength = 6
	// MinUsableDigits is the minimum digit count for a usable query core.
	MinUsableDigits = 3
	// BaseCNPJLength is the width of the company base prefix.
	BaseCNPJLength = 8
	// SentinelCore marks rows whose raw identifier has no recoverable core.
	SentinelCore = "000000"
)

// ExtractCore derives the 6-digit CPF core from a raw identifier of unknown
// formatting. Masking characters and punctuation are stripped like any other
// non-digit, then:
//   - exactly 11 digits: positions [3:9) of the full CPF
//   - 6 or more digits: the first 6
//   - fewer: whatever digits remain (unusable below MinUsableDigits)
//
// Total and deterministic; never fails.
func ExtractCore(raw string) string {
	digits := normalizers.DigitsOnly(raw)
	switch {
	case len(digits) == 11:
		return digits[3:9]
	case len(digits) >= CoreLength:
		return digits[:CoreLength]
	default:
		return digits
	}
}

// BackfillCore is ExtractCore with the backfill policy applied: inputs with
// no recoverable core map to the sentinel so every row makes forward
// progress instead of staying in the qualifying set forever.
func BackfillCore(raw string) string {
	core := ExtractCore(raw)
	if len(core) < CoreLength {
		return SentinelCore
	}
	return core
}

// IsUsableCore reports whether a query core has enough digits to resolve.
func IsUsableCore(core string) bool {
	return len(core) >= MinUsableDigits
}

// IsWellFormedCore reports whether a stored core is exactly 6 ASCII digits.
func IsWellFormedCore(core string) bool {
	if len(core) != CoreLength {
		return false
	}
	for i := 0; i < len(core); i++ {
		if core[i] < '0' || core[i] > '9' {
			return false
		}
	}
	return true
}

// ExtractBaseCNPJ derives the 8-digit company base from a raw CNPJ. Returns
// the empty string when fewer than 8 digits remain.
func ExtractBaseCNPJ(raw string) string {
	digits := normalizers.DigitsOnly(raw)
	if len(digits) < BaseCNPJLength {
		return ""
	}
	return digits[:BaseCNPJLength]
}
