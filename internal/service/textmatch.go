package service

import (
	"regexp"
	"strings"
)

// Gulf-region mobile patterns, matched against the digits-only local part.
var (
	saudiMobileRe  = regexp.MustCompile(`^(05|5)(5|0|3|6|4|9|1|8|7)([0-9]{7})$`)
	kuwaitMobileRe = regexp.MustCompile(`^(9|6|5)([0-9]{7})$`)
)

// DigitsOnly strips everything but ASCII digits.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LocalPhoneDigits reduces a phone number to its significant local digits:
// international prefixes (00, +966, +965) are stripped, the country code
// only when enough digits remain for a local number.
func LocalPhoneDigits(phone string) string {
	digits := DigitsOnly(phone)
	digits = strings.TrimPrefix(digits, "00")
	if len(digits) > 9 {
		if rest, ok := strings.CutPrefix(digits, "966"); ok {
			digits = rest
		} else if rest, ok := strings.CutPrefix(digits, "965"); ok {
			digits = rest
		}
	}
	return digits
}

// ValidGulfPhone reports whether the input looks like a Saudi or Kuwaiti
// mobile number. Country prefixes (966, 965, leading 00/+) are tolerated.
func ValidGulfPhone(phone string) bool {
	if len(DigitsOnly(phone)) < 8 {
		return false
	}
	digits := LocalPhoneDigits(phone)
	return saudiMobileRe.MatchString(digits) || kuwaitMobileRe.MatchString(digits)
}

var arabicFoldings = strings.NewReplacer(
	"أ", "ا",
	"إ", "ا",
	"آ", "ا",
	"ة", "ه",
	"ى", "ي",
)

// NormalizeArabic unifies Arabic letter variants (alef/hamza forms, taa
// marbuta, alef maksura) and collapses whitespace so name search treats
// variant spellings as equal.
func NormalizeArabic(s string) string {
	s = arabicFoldings.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// NameMatches reports whether the normalized query is a substring of the
// normalized candidate.
func NameMatches(candidate, query string) bool {
	return strings.Contains(NormalizeArabic(candidate), NormalizeArabic(query))
}
