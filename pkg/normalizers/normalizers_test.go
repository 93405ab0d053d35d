package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	t.Run("AccentsAndCase", func(t *testing.T) {
		assert.Equal(t, "JOSE DA CONCEICAO", NormalizeName("José da Conceição"))
		assert.Equal(t, "ANTONIO GUIMARAES", NormalizeName("antônio guimarães"))
	})

	t.Run("StripsNonLetters", func(t *testing.T) {
		assert.Equal(t, "MARIA DA SILVA", NormalizeName("  Maria   da Silva!!  "))
		assert.Equal(t, "JOAO", NormalizeName("João, 123 (filho)"))
	})

	t.Run("EmptyAndSymbolOnly", func(t *testing.T) {
		assert.Equal(t, "", NormalizeName(""))
		assert.Equal(t, "", NormalizeName("12345 *** --"))
	})

	t.Run("Idempotent", func(t *testing.T) {
		names := []string{"José da Conceição", "MARIA  DA  SILVA", "Ângela O'Neill"}
		for _, name := range names {
			once := NormalizeName(name)
			assert.Equal(t, once, NormalizeName(once))
		}
	})
}

func TestStripAccents(t *testing.T) {
	t.Run("CommonDiacritics", func(t *testing.T) {
		assert.Equal(t, "aeiou", StripAccents("áéíóú"))
		assert.Equal(t, "ca", StripAccents("çã"))
	})

	t.Run("PlainASCIIUntouched", func(t *testing.T) {
		assert.Equal(t, "plain text", StripAccents("plain text"))
	})
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "12345678901", DigitsOnly("123.456.789-01"))
	assert.Equal(t, "45678901", DigitsOnly("***456789-01**"))
	assert.Equal(t, "", DigitsOnly("abc"))

	// Non-ASCII digits are dropped, keeping the rule identical to the
	// SQL-side [^0-9] strip
	assert.Equal(t, "45", DigitsOnly("١٢٣45"))
	assert.Equal(t, "", DigitsOnly("１２３"))
}

func TestApplyChain(t *testing.T) {
	result := ApplyChain("  José  ", "nname")
	assert.Equal(t, "JOSE", result)

	// Unknown normalizers pass the value through
	assert.Equal(t, "x", ApplyChain("x", "does_not_exist"))
}
