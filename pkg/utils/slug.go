package utils

import (
	"strings"
	"unicode"
)

// Slugify lowercases name and replaces runs of non-alphanumeric characters
// with single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // Suppress a leading hyphen
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// ClinicSlug derives the unique public slug for a clinic from its name and the
// application id: lowercased-hyphenated name plus the first 8 characters of
// the id, which keeps identically named clinics from colliding.
func ClinicSlug(name, applicationID string) string {
	idPart := applicationID
	if len(idPart) > 8 {
		idPart = idPart[:8]
	}
	base := Slugify(name)
	if base == "" {
		return idPart
	}
	return base + "-" + idPart
}
