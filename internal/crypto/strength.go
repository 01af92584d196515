package crypto

import (
	"crypto/rand"
	"regexp"
)

// Strength is a heuristic score for a candidate secret, 0 (unusable)
// to 4 (strong), with actionable feedback for anything missing.
type Strength struct {
	Score    int      `json:"score"`
	Feedback []string `json:"feedback"`
}

var (
	reLower = regexp.MustCompile(`[a-z]`)
	reUpper = regexp.MustCompile(`[A-Z]`)
	reDigit = regexp.MustCompile(`[0-9]`)
	reSym   = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// CheckStrength scores a secret on length tiers and character-class
// diversity. Pure function; no side effects.
func CheckStrength(secret string) Strength {
	s := Strength{Feedback: []string{}}

	if len(secret) >= 8 {
		s.Score++
	} else {
		s.Feedback = append(s.Feedback, "At least 8 characters required")
	}
	if len(secret) >= 12 {
		s.Score++
	}
	if len(secret) >= 16 {
		s.Score++
	}

	if reLower.MatchString(secret) && reUpper.MatchString(secret) {
		s.Score++
	} else if !reUpper.MatchString(secret) {
		s.Feedback = append(s.Feedback, "Add uppercase letters")
	}
	if reDigit.MatchString(secret) {
		s.Score++
	} else {
		s.Feedback = append(s.Feedback, "Add numbers")
	}
	if reSym.MatchString(secret) {
		s.Score++
	} else {
		s.Feedback = append(s.Feedback, "Add special characters")
	}

	if s.Score > 4 {
		s.Score = 4
	}
	return s
}

const passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*()"

// GeneratePassword returns a random password of the given length drawn
// from a fixed charset of letters, digits, and symbols.
func GeneratePassword(length int) (string, error) {
	if length <= 0 {
		return "", ErrInvalidInput
	}
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	out := make([]byte, length)
	for i, b := range raw {
		out[i] = passwordCharset[int(b)%len(passwordCharset)]
	}
	return string(out), nil
}
