package game

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxTextLen = 100
	maxNameLen = 50
)

var (
	htmlTagRe   = regexp.MustCompile(`<[^>]*>`)
	jsSchemeRe  = regexp.MustCompile(`(?i)javascript:`)
	attrEventRe = regexp.MustCompile(`(?i)on\w+\s*=`)
)

// SanitizeText strips markup and script fragments from user-supplied text and
// bounds its length. Applied to names, chat messages and guesses at the
// boundary.
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = htmlTagRe.ReplaceAllString(text, "")
	text = jsSchemeRe.ReplaceAllString(text, "")
	text = attrEventRe.ReplaceAllString(text, "")
	return strings.TrimSpace(truncateRunes(text, maxTextLen))
}

// SanitizeName is SanitizeText with the tighter display-name bound.
func SanitizeName(name string) string {
	return truncateRunes(SanitizeText(name), maxNameLen)
}

// truncateRunes caps s at max runes, never splitting a multi-byte rune.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

var roomCodeRe = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// ValidRoomCode reports whether code has the canonical six-char form.
// Codes are case-insensitive on the wire; validate the upper-cased form.
func ValidRoomCode(code string) bool {
	return roomCodeRe.MatchString(strings.ToUpper(code))
}
