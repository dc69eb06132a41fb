package llm

import (
	"context"
	"fmt"
)

// Purpose labels why an LLM call was made. It is recorded with every
// request event and is the key of the usage report.
type Purpose string

const (
	PurposeProblemGen Purpose = "problem-gen"
	PurposeSimilarGen Purpose = "similar-gen"
	PurposeGrade      Purpose = "grade"
	PurposeUnknown    Purpose = "unknown"
)

// Purposes lists the labels the tutor sets.
func Purposes() []Purpose {
	return []Purpose{PurposeProblemGen, PurposeSimilarGen, PurposeGrade}
}

// ParsePurpose validates a purpose label given on the command line.
func ParsePurpose(s string) (Purpose, error) {
	for _, p := range Purposes() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown purpose %q (want one of %v)", s, Purposes())
}

type purposeKey struct{}

// WithPurpose labels calls made with ctx.
func WithPurpose(ctx context.Context, p Purpose) context.Context {
	return context.WithValue(ctx, purposeKey{}, p)
}

// PurposeFrom returns the label set by WithPurpose, or PurposeUnknown.
func PurposeFrom(ctx context.Context) Purpose {
	if p, ok := ctx.Value(purposeKey{}).(Purpose); ok {
		return p
	}
	return PurposeUnknown
}
