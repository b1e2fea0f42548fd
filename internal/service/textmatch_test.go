package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidGulfPhone(t *testing.T) {
	valid := []string{
		"0551234567",
		"551234567",
		"0501234567",
		"+966551234567",
		"00966551234567",
		"96612345", // kuwaiti local starting with 9
		"65123456",
		"51234567",
	}
	for _, p := range valid {
		assert.True(t, ValidGulfPhone(p), "expected valid: %q", p)
	}

	invalid := []string{
		"",
		"1234567",    // too short
		"0441234567", // bad saudi operator digit
		"0521234567", // 2 is not an accepted second digit
		"71234567",   // bad kuwaiti leading digit
		"abc",
		"05512345",
	}
	for _, p := range invalid {
		assert.False(t, ValidGulfPhone(p), "expected invalid: %q", p)
	}
}

func TestLocalPhoneDigits(t *testing.T) {
	assert.Equal(t, "551234567", LocalPhoneDigits("+966 55 123 4567"))
	assert.Equal(t, "551234567", LocalPhoneDigits("00966551234567"))
	assert.Equal(t, "0551234567", LocalPhoneDigits("055-123-4567"))
	// short numbers keep an apparent country prefix
	assert.Equal(t, "96612345", LocalPhoneDigits("96612345"))
}

func TestNormalizeArabic(t *testing.T) {
	assert.Equal(t, NormalizeArabic("احمد"), NormalizeArabic("أحمد"))
	assert.Equal(t, NormalizeArabic("فاطمه"), NormalizeArabic("فاطمة"))
	assert.Equal(t, NormalizeArabic("مصطفي"), NormalizeArabic("مصطفى"))
	assert.Equal(t, "محمد العيد", NormalizeArabic("  محمد   العيد "))
	assert.NotEqual(t, NormalizeArabic("سعد"), NormalizeArabic("سعيد"))
}

func TestNameMatches(t *testing.T) {
	assert.True(t, NameMatches("أحمد العيد الرشيد", "احمد"))
	assert.True(t, NameMatches("فاطمة", "فاطمه"))
	assert.False(t, NameMatches("سعد", "سعيد"))
}
