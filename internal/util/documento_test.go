package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatarCPF(t *testing.T) {
	assert.Equal(t, "123.456.789-01", FormatarCPF("12345678901"))
	assert.Equal(t, "123.456.789-01", FormatarCPF("123.456.789-01"))
	assert.Equal(t, "123.456.789-01", FormatarCPF("12345678901999"))
	assert.Equal(t, "123.456.789-01", FormatarCPF("123a456b789c01x9"))
	assert.Equal(t, "123", FormatarCPF("123"))
	assert.Equal(t, "123.4", FormatarCPF("1234"))
	assert.Equal(t, "123.456.7", FormatarCPF("1234567"))
	assert.Equal(t, "", FormatarCPF(""))
	assert.Equal(t, "", FormatarCPF("abc"))
}

func TestFormatarCNPJ(t *testing.T) {
	assert.Equal(t, "12.345.678/0001-95", FormatarCNPJ("12345678000195"))
	assert.Equal(t, "12.345.678/0001-95", FormatarCNPJ("12.345.678/0001-95"))
	assert.Equal(t, "12.345", FormatarCNPJ("12345"))
}

func TestFormatarDocumentoEscolheMascara(t *testing.T) {
	assert.Equal(t, "123.456.789-01", FormatarDocumento("12345678901"))
	assert.Equal(t, "12.345.678/0001-95", FormatarDocumento("12345678000195"))
}

func TestValidarCPF(t *testing.T) {
	assert.True(t, ValidarCPF("529.982.247-25"))
	assert.True(t, ValidarCPF("52998224725"))
	assert.False(t, ValidarCPF("52998224724"))
	assert.False(t, ValidarCPF("11111111111"))
	assert.False(t, ValidarCPF("123"))
	assert.False(t, ValidarCPF(""))
}

func TestValidarCNPJ(t *testing.T) {
	assert.True(t, ValidarCNPJ("11.222.333/0001-81"))
	assert.False(t, ValidarCNPJ("11.222.333/0001-80"))
	assert.False(t, ValidarCNPJ("00000000000000"))
	assert.False(t, ValidarCNPJ("123"))
}
