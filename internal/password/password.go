// Package password implements a rule-based password strength scorer. Each of
// seven independent rules is worth one point; the total maps to a strength
// level through fixed thresholds. An entropy estimate is derived from length
// alone assuming the full printable-ASCII alphabet, regardless of which
// character classes the password actually uses.
package password

import (
	"math"
	"unicode"
	"unicode/utf8"
)

// Assessment is the result of scoring a password.
type Assessment struct {
	Score    int      `json:"score"`
	Level    string   `json:"level"`
	Color    string   `json:"color"`
	Feedback []string `json:"feedback"`
	Entropy  float64  `json:"entropy"`
}

// alphabetSize is the assumed printable-ASCII alphabet for the entropy
// estimate. This is a deliberate simplification, not a cryptographic model.
const alphabetSize = 95

// Assess scores a password against the rule set. An empty password returns
// nil rather than a zero score with misleading feedback.
func Assess(pw string) *Assessment {
	if pw == "" {
		return nil
	}

	length := utf8.RuneCountInString(pw)

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	score := 0
	var feedback []string

	// Rules are evaluated independently, never short-circuited. Rule order
	// determines feedback order; the length>=12 bonus rule has no hint.
	if length >= 8 {
		score++
	} else {
		feedback = append(feedback, "Use at least 8 characters")
	}
	if length >= 12 {
		score++
	}
	if hasLower {
		score++
	} else {
		feedback = append(feedback, "Add lowercase letters")
	}
	if hasUpper {
		score++
	} else {
		feedback = append(feedback, "Add uppercase letters")
	}
	if hasDigit {
		score++
	} else {
		feedback = append(feedback, "Add numbers")
	}
	if hasSymbol {
		score++
	} else {
		feedback = append(feedback, "Add special characters")
	}
	if !hasRepeatRun(pw) {
		score++
	} else {
		feedback = append(feedback, "Avoid repeating the same character three or more times")
	}

	level, color := levelFor(score)

	entropy := math.Round(float64(length)*math.Log2(alphabetSize)*10) / 10

	return &Assessment{
		Score:    score,
		Level:    level,
		Color:    color,
		Feedback: feedback,
		Entropy:  entropy,
	}
}

// hasRepeatRun reports whether pw contains three or more consecutive
// identical characters.
func hasRepeatRun(pw string) bool {
	var prev rune
	run := 0
	for _, r := range pw {
		if r == prev {
			run++
			if run >= 3 {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}

// levelFor maps a score to its strength level and presentation color.
func levelFor(score int) (string, string) {
	switch {
	case score <= 2:
		return "Weak", "red"
	case score <= 4:
		return "Medium", "yellow"
	case score <= 6:
		return "Strong", "green"
	default:
		return "Very Strong", "emerald"
	}
}
