package game

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Mode selects the scoring variant for a game.
type Mode string

const (
	ModeRegular Mode = "regular"
	ModeSpeed   Mode = "speed"
)

const (
	regularPoints  = 10
	speedMaxPoints = 20
	speedMinPoints = 5
)

// Score computes the points for a guess. It is a pure function: regular mode
// awards a flat 10 for a correct guess; speed mode decreases linearly from 20
// at elapsed=0 to 5 at elapsed=duration, floored at 5 and rounded to the
// nearest integer. Incorrect guesses always score 0.
func Score(correct bool, elapsedSec, durationSec float64, mode Mode) int {
	if !correct {
		return 0
	}
	if mode != ModeSpeed {
		return regularPoints
	}
	if durationSec <= 0 {
		return speedMinPoints
	}
	span := float64(speedMaxPoints - speedMinPoints)
	pts := int(math.Round(speedMaxPoints - span*(elapsedSec/durationSec)))
	if pts < speedMinPoints {
		pts = speedMinPoints
	}
	if pts > speedMaxPoints {
		pts = speedMaxPoints
	}
	return pts
}

var diacriticStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// NormalizeAnswer folds a title for comparison: lower-case, diacritics
// stripped, punctuation and symbols removed, internal whitespace collapsed.
func NormalizeAnswer(s string) string {
	if folded, _, err := transform.String(diacriticStripper, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			// dropped
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// AnswerMatches reports whether a submitted guess matches the canonical
// answer after normalization. Exact match only, no partial credit.
func AnswerMatches(guess, answer string) bool {
	n := NormalizeAnswer(answer)
	if n == "" {
		return false
	}
	return NormalizeAnswer(guess) == n
}
