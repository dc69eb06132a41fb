package tutor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/chemthink/chemthink/internal/grading"
	"github.com/chemthink/chemthink/internal/llm"
	"github.com/chemthink/chemthink/internal/problem"
)

// similarFallback is served when a similar problem cannot be generated.
var similarFallback = problem.Problem{
	Text:          "Try this: What is the bond angle in methane (CH4)?",
	CorrectAnswer: "109.5 degrees",
	Origin:        problem.OriginGenerated,
}

// Generator produces problems with an LLM. It implements problem.Source.
type Generator struct {
	provider llm.Provider
	config   Config
	log      *zap.Logger
}

var _ problem.Source = (*Generator)(nil)

// NewGenerator creates a Generator.
func NewGenerator(provider llm.Provider, cfg Config, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{provider: provider, config: cfg, log: log}
}

// Problem generates a new problem for req.
func (g *Generator) Problem(ctx context.Context, req problem.Request) (*problem.Problem, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeProblemGen)
	return g.generate(ctx, buildGenerateMessage(req))
}

// Similar generates an easier problem like the one in sub. It never fails:
// when the LLM cannot help, a fixed bond-angle problem is returned.
func (g *Generator) Similar(ctx context.Context, sub grading.Submission) problem.Problem {
	ctx = llm.WithPurpose(ctx, llm.PurposeSimilarGen)
	p, err := g.generate(ctx, buildSimilarMessage(sub))
	if err != nil {
		g.log.Warn("similar problem generation failed, using fallback",
			zap.String("primitive", sub.Primitive),
			zap.String("topic", sub.Topic),
			zap.Error(err))
		return similarFallback
	}
	return *p
}

func (g *Generator) generate(ctx context.Context, userMsg string) (*problem.Problem, error) {
	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      problemSystemPrompt,
		Prompt:      userMsg,
		Schema:      ProblemSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		if IsUnavailable(err) {
			return nil, fmt.Errorf("LLM generation failed: %w", err)
		}
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	var p problem.Problem
	if err := json.Unmarshal(resp.Content, &p); err != nil {
		return nil, fmt.Errorf("%w: parse LLM response: %w", ErrGenerationFailed, err)
	}
	p.Origin = problem.OriginGenerated
	trimProblem(&p)

	if verr := validateProblem(&p, g.config.MaxTextLen); verr != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, verr)
	}
	return &p, nil
}

func trimProblem(p *problem.Problem) {
	p.Text = strings.TrimSpace(p.Text)
	p.CorrectAnswer = strings.TrimSpace(p.CorrectAnswer)
	p.Hint1 = strings.TrimSpace(p.Hint1)
	p.Hint2 = strings.TrimSpace(p.Hint2)
	p.WorkedSolution = strings.TrimSpace(p.WorkedSolution)
	p.ChemistryConnection = strings.TrimSpace(p.ChemistryConnection)
}

// validateProblem checks the fields every problem needs.
func validateProblem(p *problem.Problem, maxLen int) *ValidationError {
	if p.Text == "" {
		return &ValidationError{Field: "problem_text", Message: "empty"}
	}
	if p.CorrectAnswer == "" {
		return &ValidationError{Field: "correct_answer", Message: "empty"}
	}
	if maxLen > 0 {
		if len(p.Text) > maxLen {
			return &ValidationError{Field: "problem_text", Message: fmt.Sprintf("exceeds %d characters", maxLen)}
		}
		if len(p.WorkedSolution) > maxLen {
			return &ValidationError{Field: "worked_solution", Message: fmt.Sprintf("exceeds %d characters", maxLen)}
		}
	}
	return nil
}
