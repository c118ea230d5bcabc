package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCardNumber(t *testing.T) {
	tests := []struct {
		name   string
		number string
		want   bool
	}{
		{"visa test number", "4111111111111111", true},
		{"last digit off by one", "4111111111111112", false},
		{"mastercard test number", "5555555555554444", true},
		{"amex test number", "378282246310005", true},
		{"separators tolerated", "4111 1111 1111 1111", true},
		{"too short", "411111111111", false},
		{"too long", "41111111111111111111", false},
		{"letters", "4111a11111111111", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidCardNumber(tt.number))
		})
	}
}

func TestValidTaxID_CPF(t *testing.T) {
	// 529.982.247-25 has correct check digits by construction.
	assert.True(t, ValidTaxID("52998224725"))
	assert.True(t, ValidTaxID("529.982.247-25"))

	// Flipping the last digit breaks the second check digit.
	assert.False(t, ValidTaxID("52998224724"))
	// Flipping an earlier digit breaks the first check digit.
	assert.False(t, ValidTaxID("53998224725"))
	// Repeated-digit sequences pass the arithmetic but are invalid documents.
	assert.False(t, ValidTaxID("11111111111"))
}

func TestValidTaxID_CNPJ(t *testing.T) {
	// 11.222.333/0001-81 has correct check digits by construction.
	assert.True(t, ValidTaxID("11222333000181"))
	assert.True(t, ValidTaxID("11.222.333/0001-81"))

	assert.False(t, ValidTaxID("11222333000180"))
	assert.False(t, ValidTaxID("00000000000000"))
}

func TestValidTaxID_Shape(t *testing.T) {
	assert.False(t, ValidTaxID(""))
	assert.False(t, ValidTaxID("1234"))
	assert.False(t, ValidTaxID("5299822472X"))
	// 12 digits is neither CPF nor CNPJ.
	assert.False(t, ValidTaxID("529982247250"))
}
