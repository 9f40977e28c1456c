package util

import "strings"

// SomenteDigitos strips everything but digits from the input.
func SomenteDigitos(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatarCPF applies the CPF display mask progressively. Non-digit input
// is ignored and anything beyond 11 digits is dropped, so the function is
// safe to feed raw form input: "12345678901" becomes "123.456.789-01".
func FormatarCPF(raw string) string {
	digits := SomenteDigitos(raw)
	if len(digits) > 11 {
		digits = digits[:11]
	}

	switch {
	case len(digits) <= 3:
		return digits
	case len(digits) <= 6:
		return digits[:3] + "." + digits[3:]
	case len(digits) <= 9:
		return digits[:3] + "." + digits[3:6] + "." + digits[6:]
	default:
		return digits[:3] + "." + digits[3:6] + "." + digits[6:9] + "-" + digits[9:]
	}
}

// FormatarCNPJ applies the CNPJ display mask progressively, capping at 14
// digits: "12345678000195" becomes "12.345.678/0001-95".
func FormatarCNPJ(raw string) string {
	digits := SomenteDigitos(raw)
	if len(digits) > 14 {
		digits = digits[:14]
	}

	switch {
	case len(digits) <= 2:
		return digits
	case len(digits) <= 5:
		return digits[:2] + "." + digits[2:]
	case len(digits) <= 8:
		return digits[:2] + "." + digits[2:5] + "." + digits[5:]
	case len(digits) <= 12:
		return digits[:2] + "." + digits[2:5] + "." + digits[5:8] + "/" + digits[8:]
	default:
		return digits[:2] + "." + digits[2:5] + "." + digits[5:8] + "/" + digits[8:12] + "-" + digits[12:]
	}
}

// FormatarDocumento picks the CPF or CNPJ mask based on length.
func FormatarDocumento(raw string) string {
	if len(SomenteDigitos(raw)) > 11 {
		return FormatarCNPJ(raw)
	}
	return FormatarCPF(raw)
}

// ValidarCPF checks length, repeated-digit patterns and both check digits.
func ValidarCPF(raw string) bool {
	digits := SomenteDigitos(raw)
	if len(digits) != 11 {
		return false
	}
	if allSame(digits) {
		return false
	}

	d1 := cpfCheckDigit(digits, 9, 10)
	d2 := cpfCheckDigit(digits, 10, 11)
	return digits[9] == d1 && digits[10] == d2
}

// ValidarCNPJ checks length, repeated-digit patterns and both check digits.
func ValidarCNPJ(raw string) bool {
	digits := SomenteDigitos(raw)
	if len(digits) != 14 {
		return false
	}
	if allSame(digits) {
		return false
	}

	d1 := cnpjCheckDigit(digits, 12)
	d2 := cnpjCheckDigit(digits, 13)
	return digits[12] == d1 && digits[13] == d2
}

// ValidarDocumento validates either document type based on length.
func ValidarDocumento(raw string) bool {
	if len(SomenteDigitos(raw)) > 11 {
		return ValidarCNPJ(raw)
	}
	return ValidarCPF(raw)
}

func allSame(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}

func cpfCheckDigit(digits string, length, weight int) byte {
	sum := 0
	for i := 0; i < length; i++ {
		sum += int(digits[i]-'0') * (weight - i)
	}
	rest := sum % 11
	if rest < 2 {
		return '0'
	}
	return byte(11-rest) + '0'
}

func cnpjCheckDigit(digits string, length int) byte {
	weights := []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	offset := len(weights) - length
	sum := 0
	for i := 0; i < length; i++ {
		sum += int(digits[i]-'0') * weights[offset+i]
	}
	rest := sum % 11
	if rest < 2 {
		return '0'
	}
	return byte(11-rest) + '0'
}
