package email

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// loosePattern mirrors the lightweight shape check the sign-in form applies
// before any network call: something@something.something with no whitespace.
var loosePattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Normalize trims surrounding whitespace and lower-cases the address.
// It is idempotent.
func Normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// IsValidEmail performs lightweight validation of an email address format.
func IsValidEmail(address string) bool {
	if address == "" {
		return false
	}
	return loosePattern.MatchString(address)
}

// Mask hides most of the local part of an address for display, keeping the
// first character and the domain: "person@example.com" -> "p***@example.com".
// Addresses without a usable local part are masked entirely.
func Mask(address string) string {
	at := strings.LastIndexByte(address, '@')
	if at <= 0 || at == len(address)-1 {
		return "***"
	}
	first, _ := utf8.DecodeRuneInString(address)
	return string(first) + "***" + address[at:]
}
