package hearing

import "strings"

// CanonicalPhoneLength is the number of trailing digits that identify a client.
const CanonicalPhoneLength = 10

// CanonicalPhone strips every non-digit from raw and returns the last
// CanonicalPhoneLength digits. ok is false when fewer digits remain; such a
// phone can never match anything.
func CanonicalPhone(raw string) (canonical string, ok bool) {
	digits := Digits(raw)
	if len(digits) < CanonicalPhoneLength {
		return "", false
	}
	return digits[len(digits)-CanonicalPhoneLength:], true
}

// SamePhone reports whether a and b belong to the same client.
func SamePhone(a, b string) bool {
	ca, ok := CanonicalPhone(a)
	if !ok {
		return false
	}
	cb, ok := CanonicalPhone(b)
	return ok && ca == cb
}

// Digits keeps only the ASCII digits of s.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
