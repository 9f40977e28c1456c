package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodificarDecodificarRefRoundTrip(t *testing.T) {
	for _, id := range []int64{0, 1, 42, 1000, 999999, 1<<40 + 7} {
		code := CodificarRef(id)
		require.NotEmpty(t, code)

		decoded := DecodificarRef(code)
		require.NotNil(t, decoded, "id %d", id)
		assert.Equal(t, id, *decoded)
	}
}

func TestDecodificarRefVazio(t *testing.T) {
	assert.Nil(t, DecodificarRef(""))
	assert.Nil(t, DecodificarRef("   "))
}

func TestDecodificarRefInvalido(t *testing.T) {
	assert.Nil(t, DecodificarRef("###"))
	assert.Nil(t, DecodificarRef("não"))
}

func TestCodificarRefNegativo(t *testing.T) {
	assert.Equal(t, "", CodificarRef(-1))
}

func TestCodificarRefNaoSequencial(t *testing.T) {
	// Consecutive IDs must not produce visibly consecutive codes.
	assert.NotEqual(t, CodificarRef(1), CodificarRef(2))
	assert.NotEqual(t, CodificarRef(100), CodificarRef(101))
}
