// Package document dígitos verificadores de documentos brasileños.
package document

import (
	"fmt"
	"unicode"
)

// ValidateCPF valida los dos dígitos verificadores (módulo 11) de un CPF, con o sin máscara.
// cpf puede ser "123.456.789-09" o "12345678909". Secuencias repetidas (111.111.111-11) se rechazan.
func ValidateCPF(cpf string) error {
	digits := extractDigits(cpf)
	if len(digits) != 11 {
		return fmt.Errorf("document: CPF debe tener 11 dígitos, se encontraron %d", len(digits))
	}
	if repeated(digits) {
		return fmt.Errorf("document: CPF con todos los dígitos iguales")
	}
	first := checkDigit(digits[:9])
	second := checkDigit(append(append([]byte{}, digits[:9]...), first))
	if digits[9] != first || digits[10] != second {
		return fmt.Errorf("document: dígitos verificadores del CPF inválidos: esperado %c%c, recibido %c%c",
			first, second, digits[9], digits[10])
	}
	return nil
}

// checkDigit pesos decrecientes desde len(base)+1 hasta 2; resto 10 equivale a 0.
func checkDigit(base []byte) byte {
	var sum int
	weight := len(base) + 1
	for _, d := range base {
		sum += int(d-'0') * weight
		weight--
	}
	r := sum * 10 % 11
	if r == 10 {
		r = 0
	}
	return byte('0' + r)
}

func repeated(digits []byte) bool {
	for _, d := range digits[1:] {
		if d != digits[0] {
			return false
		}
	}
	return true
}

func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			out = append(out, byte(r))
		}
	}
	return out
}
