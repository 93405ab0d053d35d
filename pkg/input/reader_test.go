package input

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadPartnerQueries(t *testing.T) {
	t.Run("HeaderWithSemicolons", func(t *testing.T) {
		in := "CPF do Sócio;Nome\n123.456.789-01;Maria da Silva\n***456789**;José Santos\n"
		queries, err := ReadPartnerQueries(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, queries, 2)
		assert.Equal(t, "123.456.789-01", queries[0].Identifier)
		assert.Equal(t, "Maria da Silva", queries[0].Name)
		assert.Equal(t, "***456789**", queries[1].Identifier)
	})

	t.Run("NoHeaderCommas", func(t *testing.T) {
		in := "12345678901,Maria da Silva\n45678901,\n"
		queries, err := ReadPartnerQueries(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, queries, 2)
		assert.Equal(t, "Maria da Silva", queries[0].Name)
		assert.Equal(t, "", queries[1].Name)
	})

	t.Run("IdentifierOnlyLines", func(t *testing.T) {
		in := "12345678901\n\n45678901\n"
		queries, err := ReadPartnerQueries(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, queries, 2)
		assert.Equal(t, "", queries[0].Name)
	})

	t.Run("Empty", func(t *testing.T) {
		queries, err := ReadPartnerQueries(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, queries)
	})
}

func TestReadCompanyIdentifiers(t *testing.T) {
	t.Run("SkipsHeaderAndBlanks", func(t *testing.T) {
		in := "cnpj\n12.345.678/0001-95\n\n98765432000100\n"
		ids, err := ReadCompanyIdentifiers(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, ids, 2)
		assert.Equal(t, "12.345.678/0001-95", ids[0])
	})

	t.Run("FirstColumnOfDelimited", func(t *testing.T) {
		in := "12345678000195;MATRIZ\n98765432000100;FILIAL\n"
		ids, err := ReadCompanyIdentifiers(strings.NewReader(in))
		require.NoError(t, err)
		assert.Equal(t, []string{"12345678000195", "98765432000100"}, ids)
	})
}
