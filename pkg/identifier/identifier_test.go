package identifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCore(t *testing.T) {
	t.Run("FullCPF", func(t *testing.T) {
		assert.Equal(t, "456789", ExtractCore("12345678901"))
		assert.Equal(t, "456789", ExtractCore("123.456.789-01"))
	})

	t.Run("MaskedCPF", func(t *testing.T) {
		// Masking leaves exactly the 6 core digits
		assert.Equal(t, "456789", ExtractCore("***.456.789-**"))
		assert.Equal(t, "456789", ExtractCore("***456789**"))
	})

	t.Run("NonASCIIDigitsAreStripped", func(t *testing.T) {
		// Only ASCII digits count, matching the SQL-side strip
		assert.Equal(t, "456789", ExtractCore("١٢٣456789٠١"))
		assert.Equal(t, "", ExtractCore("١٢٣"))
	})

	t.Run("PartialDigits", func(t *testing.T) {
		assert.Equal(t, "456789", ExtractCore("4567890"))
		assert.Equal(t, "123456", ExtractCore("123456"))
		assert.Equal(t, "1234", ExtractCore("12-34"))
		assert.Equal(t, "", ExtractCore("sem digitos"))
	})

	t.Run("Idempotent", func(t *testing.T) {
		inputs := []string{"123.456.789-01", "***456789**", "12-34", ""}
		for _, in := range inputs {
			core := ExtractCore(in)
			assert.Equal(t, core, ExtractCore(core))
		}
	})
}

func TestBackfillCore(t *testing.T) {
	assert.Equal(t, "456789", BackfillCore("123.456.789-01"))
	assert.Equal(t, SentinelCore, BackfillCore("12-34"))
	assert.Equal(t, SentinelCore, BackfillCore(""))
}

func TestIsUsableCore(t *testing.T) {
	assert.True(t, IsUsableCore("456789"))
	assert.True(t, IsUsableCore("123"))
	assert.False(t, IsUsableCore("12"))
	assert.False(t, IsUsableCore(""))
}

func TestIsWellFormedCore(t *testing.T) {
	assert.True(t, IsWellFormedCore("456789"))
	assert.True(t, IsWellFormedCore("000000"))
	assert.False(t, IsWellFormedCore("45678"))
	assert.False(t, IsWellFormedCore("4567890"))
	assert.False(t, IsWellFormedCore("45678a"))
}

func TestExtractBaseCNPJ(t *testing.T) {
	assert.Equal(t, "12345678", ExtractBaseCNPJ("12.345.678/0001-95"))
	assert.Equal(t, "12345678", ExtractBaseCNPJ("12345678"))
	assert.Equal(t, "", ExtractBaseCNPJ("1234567"))
}
