// Package validation implements instrument checks that run before any
// provider call. An invalid card number or tax id never leaves the process.
package validation

import "strings"

// ValidCardNumber reports whether the card number passes the Luhn checksum.
// Separators (spaces, dashes) are tolerated.
func ValidCardNumber(number string) bool {
	digits := normalize(number)
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}

	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// ValidTaxID reports whether the value is a valid CPF (11 digits) or
// CNPJ (14 digits) by recomputing the check digits.
func ValidTaxID(taxID string) bool {
	digits := normalize(taxID)
	switch len(digits) {
	case 11:
		return validCPF(digits)
	case 14:
		return validCNPJ(digits)
	}
	return false
}

// validCPF verifies both CPF check digits. Sequences of a single repeated
// digit pass the arithmetic but are known-invalid documents.
func validCPF(digits string) bool {
	if allSame(digits) {
		return false
	}
	if cpfCheckDigit(digits, 9) != int(digits[9]-'0') {
		return false
	}
	return cpfCheckDigit(digits, 10) == int(digits[10]-'0')
}

// cpfCheckDigit computes the check digit over the first n digits using
// descending weights starting at n+1.
func cpfCheckDigit(digits string, n int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(digits[i]-'0') * (n + 1 - i)
	}
	d := 11 - sum%11
	if d >= 10 {
		return 0
	}
	return d
}

var (
	cnpjWeightsFirst  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeightsSecond = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

func validCNPJ(digits string) bool {
	if allSame(digits) {
		return false
	}
	if cnpjCheckDigit(digits, cnpjWeightsFirst) != int(digits[12]-'0') {
		return false
	}
	return cnpjCheckDigit(digits, cnpjWeightsSecond) == int(digits[13]-'0')
}

func cnpjCheckDigit(digits string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	d := sum % 11
	if d < 2 {
		return 0
	}
	return 11 - d
}

// normalize strips common separators and rejects non-digit content by
// returning a string that will fail length checks.
func normalize(value string) string {
	replacer := strings.NewReplacer(".", "", "-", "", "/", "", " ", "")
	cleaned := replacer.Replace(value)
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return cleaned
}

func allSame(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}
