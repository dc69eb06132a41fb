// Package tutor generates and grades chemistry-math problems with an LLM.
// It backs the practice API served by `chemthink serve`.
package tutor

import "time"

// Config controls the LLM tutor.
type Config struct {
	// MaxTokens is the token budget for each LLM response.
	MaxTokens int

	// Temperature is used for problem generation; grading always runs at 0.
	Temperature float64

	// Timeout bounds a single LLM call including retries. Zero means no
	// limit beyond the caller's context.
	Timeout time.Duration

	// MaxTextLen caps problem_text and worked_solution.
	MaxTextLen int
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1024,
		Temperature: 0.7,
		Timeout:     60 * time.Second,
		MaxTextLen:  2000,
	}
}
