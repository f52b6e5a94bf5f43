// Package subject validates custom topics and picks round subjects from a
// game's pool.
package subject

import (
	"fmt"
	"strings"

	"github.com/triviall-games/triviall/internal/triviall/resource"

	"github.com/valyala/fastrand"
)

const (
	minLen = 2
	maxLen = 40
)

var (
	ErrTooShort     = fmt.Errorf("subject too short")
	ErrTooLong      = fmt.Errorf("subject too long")
	ErrInvalidChars = fmt.Errorf("subject has no valid characters")
	ErrBlocked      = fmt.Errorf("subject not appropriate for the game")
	ErrDuplicate    = fmt.Errorf("subject already selected")
	ErrPredefined   = fmt.Errorf("subject matches a predefined category")
)

const bracketChars = "{}[]<>"

// Validate sanitizes a user-entered custom subject and rejects it when it is
// malformed, unsafe, a duplicate of an already-selected subject or shadows a
// predefined category (the caller should pick that category directly).
// Returns the sanitized subject on success.
func Validate(raw string, selected []string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) < minLen {
		return "", ErrTooShort
	}
	if len(trimmed) > maxLen {
		return "", ErrTooLong
	}

	// brackets are stripped so a subject can't smuggle markup into the
	// generation prompt
	sanitized := strings.TrimSpace(strings.Map(func(r rune) rune {
		if strings.ContainsRune(bracketChars, r) {
			return -1
		}
		return r
	}, trimmed))
	if sanitized == "" {
		return "", ErrInvalidChars
	}

	for _, pattern := range resource.BlockedPatterns {
		if pattern.MatchString(sanitized) {
			return "", ErrBlocked
		}
	}

	for _, s := range selected {
		if strings.EqualFold(s, sanitized) {
			return "", ErrDuplicate
		}
	}

	if resource.IsPredefinedSubject(sanitized) {
		return "", ErrPredefined
	}

	return sanitized, nil
}

// Pick selects the round subject uniformly at random from the game's pool,
// falling back to the default category when the pool is empty.
func Pick(pool []string) string {
	if len(pool) == 0 {
		return resource.DefaultSubject
	}
	return pool[fastrand.Uint32n(uint32(len(pool)))]
}
