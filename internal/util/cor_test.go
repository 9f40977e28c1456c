package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHexToHSLPretoEBranco(t *testing.T) {
	assert.Equal(t, "0 0% 0%", HexToHSL("#000000"))
	assert.Equal(t, "0 0% 100%", HexToHSL("#ffffff"))
}

func TestHexToHSLCoresPrimarias(t *testing.T) {
	assert.Equal(t, "0 100% 50%", HexToHSL("#ff0000"))
	assert.Equal(t, "120 100% 50%", HexToHSL("#00ff00"))
	assert.Equal(t, "240 100% 50%", HexToHSL("#0000ff"))
}

func TestHexToHSLFormatoCurto(t *testing.T) {
	assert.Equal(t, "0 0% 100%", HexToHSL("#fff"))
	assert.Equal(t, "0 0% 0%", HexToHSL("#000"))
}

func TestHexToHSLEntradaInvalida(t *testing.T) {
	assert.Equal(t, "0 0% 0%", HexToHSL(""))
	assert.Equal(t, "0 0% 0%", HexToHSL("#zzzzzz"))
	assert.Equal(t, "0 0% 0%", HexToHSL("não é cor"))
}
