// Package validate holds the format checks applied to public submissions.
// All checks are pure functions over strings: any input yields a boolean.
package validate

import "regexp"

var (
	// Region code (6 digits, leading 1-9), birth date (18|19|20 century,
	// month 01-12, day 01-31), 3-digit sequence, then a digit or X checksum
	// character. The checksum itself is deliberately not verified: the form
	// tolerates typo'd but well-shaped numbers.
	idCardPattern = regexp.MustCompile(`^[1-9]\d{5}(18|19|20)\d{2}(0[1-9]|1[0-2])(0[1-9]|[12]\d|3[01])\d{3}[\dXx]$`)

	phonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)

	// Permissive local@domain.tld shape, not RFC 5322. A single-character
	// TLD like "a@b.c" passes; there is no TLD length check.
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// IDCard reports whether s looks like an 18-character national ID number.
func IDCard(s string) bool {
	if len(s) != 18 {
		return false
	}

	return idCardPattern.MatchString(s)
}

// Phone reports whether s is an 11-digit mobile number (1 then 3-9).
func Phone(s string) bool {
	return phonePattern.MatchString(s)
}

// Email applies a loose structural check on the address.
func Email(s string) bool {
	return emailPattern.MatchString(s)
}
