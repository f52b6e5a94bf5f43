// Package answer grades free-text and numeric answers against the expected
// one, forgiving punctuation, casing and small numeric error.
package answer

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const punctuation = ".,/#!$%^&*;:{}=-_`~()"

// numericTolerance is the accepted relative difference for estimation-style
// answers.
const numericTolerance = 0.10

// minContainsLen guards the substring rule: very short strings match too
// eagerly by containment. Measured in characters, not bytes.
const minContainsLen = 3

// Normalize lowercases, trims, strips punctuation and collapses internal
// whitespace. Normalize is idempotent.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(punctuation, r) {
			continue
		}
		sb.WriteRune(r)
	}

	return strings.Join(strings.Fields(sb.String()), " ")
}

// IsMatch reports whether input should be accepted as target, also checking
// the generator-provided acceptable variants. It never fails: input that
// does not parse as a number simply skips the numeric rule.
func IsMatch(input, target string, acceptable []string) bool {
	in := Normalize(input)
	tg := Normalize(target)

	if in == tg {
		return true
	}

	for _, alt := range acceptable {
		if Normalize(alt) == in {
			return true
		}
	}

	if inN, err := strconv.ParseFloat(in, 64); err == nil {
		if tgN, err := strconv.ParseFloat(tg, 64); err == nil {
			if inN == tgN {
				return true
			}
			if tgN != 0 {
				diff := (inN - tgN) / tgN
				if diff < 0 {
					diff = -diff
				}
				if diff <= numericTolerance {
					return true
				}
			}
		}
	}

	if utf8.RuneCountInString(tg) > minContainsLen && strings.Contains(in, tg) {
		return true
	}
	if utf8.RuneCountInString(in) > minContainsLen && strings.Contains(tg, in) {
		return true
	}

	return false
}
