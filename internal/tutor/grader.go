package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/chemthink/chemthink/internal/grading"
	"github.com/chemthink/chemthink/internal/llm"
)

// Grader grades answers with an LLM. It implements grading.Strategy.
type Grader struct {
	provider llm.Provider
	config   Config
	log      *zap.Logger
}

var _ grading.Strategy = (*Grader)(nil)

// NewGrader creates a Grader.
func NewGrader(provider llm.Provider, cfg Config, log *zap.Logger) *Grader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Grader{provider: provider, config: cfg, log: log}
}

func (g *Grader) Kind() grading.Kind { return grading.KindLLM }

// gradeOutput is the raw LLM verdict.
type gradeOutput struct {
	Correct       bool   `json:"correct"`
	Feedback      string `json:"feedback"`
	WorkedExample string `json:"worked_example"`
	Hint          string `json:"hint"`
}

// Grade asks the LLM for a verdict. An answer the LLM returns in an
// unusable shape grades as incorrect with the raw reply as feedback; only
// an unreachable LLM is an error.
func (g *Grader) Grade(ctx context.Context, sub grading.Submission) (grading.Result, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeGrade)
	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:    gradingSystemPrompt,
		Prompt:    buildGradeMessage(sub),
		Schema:    GradeSchema,
		MaxTokens: g.config.MaxTokens,
	})
	if err != nil {
		var inv *llm.ErrInvalidResponse
		if errors.As(err, &inv) {
			g.log.Warn("unparseable grade, marking incorrect", zap.Error(err))
			return g.unparsed(sub, string(inv.Content)), nil
		}
		var maxTok *llm.ErrMaxTokensExceeded
		if errors.As(err, &maxTok) {
			g.log.Warn("truncated grade, marking incorrect", zap.Int("max_tokens", maxTok.Limit))
			return g.unparsed(sub, string(maxTok.Content)), nil
		}
		return grading.Result{}, fmt.Errorf("LLM grading failed: %w", err)
	}

	var out gradeOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		g.log.Warn("unparseable grade, marking incorrect", zap.Error(err))
		return g.unparsed(sub, string(resp.Content)), nil
	}

	return grading.Result{
		Correct:         out.Correct,
		Feedback:        strings.TrimSpace(out.Feedback),
		WorkedExample:   strings.TrimSpace(out.WorkedExample),
		MasteryProgress: MasteryProgress(out.Correct, sub.HintsGiven),
		Strategy:        grading.KindLLM,
	}, nil
}

func (g *Grader) unparsed(sub grading.Submission, raw string) grading.Result {
	return grading.Result{
		Correct:         false,
		Feedback:        strings.TrimSpace(raw),
		MasteryProgress: MasteryProgress(false, sub.HintsGiven),
		Strategy:        grading.KindLLM,
	}
}

// MasteryProgress is the per-answer progress estimate reported by the
// practice API: 100 when correct, otherwise 30 less 10 per hint, floored
// at zero.
func MasteryProgress(correct bool, hintsGiven int) float64 {
	if correct {
		return 100
	}
	return float64(max(0, 30-hintsGiven*10))
}
