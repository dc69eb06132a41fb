package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chemthink/chemthink/internal/grading"
	"github.com/chemthink/chemthink/internal/llm"
	"github.com/chemthink/chemthink/internal/problem"
	"github.com/chemthink/chemthink/internal/tutor"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview LLM-generated problems for a topic (no database)",
	Long: `Generate and interactively answer problems for one topic.

This is a stateless developer tool: no database, no streaks, no events.
Useful for evaluating problem quality against the configured LLM.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().String("primitive", "", "Primitive, e.g. DIRECTION (required)")
	previewCmd.Flags().String("topic", "", "Topic (defaults to the primitive's first topic)")
	previewCmd.Flags().Int("difficulty", 1, "Difficulty from 1 to 3")
	previewCmd.Flags().Int("count", 5, "Number of problems to generate")
	previewCmd.Flags().Bool("llm-grade", false, "Grade with the LLM instead of local comparison")
	_ = previewCmd.MarkFlagRequired("primitive")
}

func runPreview(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")
	difficulty, _ := cmd.Flags().GetInt("difficulty")
	llmGrade, _ := cmd.Flags().GetBool("llm-grade")

	primitive, topic, err := pickTopic(cmd, string(problem.DefaultPrimitive), problem.DefaultTopic)
	if err != nil {
		return err
	}
	if difficulty < 1 || difficulty > 3 {
		return fmt.Errorf("invalid difficulty %d: must be 1, 2 or 3", difficulty)
	}

	llmCfg, err := llm.ResolveConfig()
	if err != nil {
		return fmt.Errorf("LLM config: %w", err)
	}
	if err := llmCfg.Validate(); err != nil {
		return fmt.Errorf("LLM config: %w", err)
	}

	// No EventRepo: nothing is recorded.
	ctx := cmdContext(cmd)
	log := zap.NewNop()
	provider, err := llm.NewProvider(ctx, llmCfg, nil, log)
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	tcfg := tutor.DefaultConfig()
	gen := tutor.NewGenerator(provider, tcfg, log)
	var grader grading.Strategy = grading.Local{}
	if llmGrade {
		grader = tutor.NewGrader(provider, tcfg, log)
	}

	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	fmt.Fprintf(out, "Topic: %s · %s (difficulty %d, %s grading)\n",
		primitive, problem.TopicLabel(topic), difficulty, grader.Kind())
	fmt.Fprintf(out, "Generating %d problems...\n\n", count)

	var correct int
	var previous *string

	for i := 1; i <= count; i++ {
		p, err := gen.Problem(ctx, problem.Request{
			Primitive:       primitive,
			Topic:           topic,
			Difficulty:      difficulty,
			PreviousProblem: previous,
		})
		if err != nil {
			fmt.Fprintf(out, "Problem %d: generation failed: %v\n\n", i, err)
			continue
		}
		text := p.Text
		previous = &text

		fmt.Fprintf(out, "── Problem %d/%d ──\n", i, count)
		fmt.Fprintln(out, p.Text)
		for j, h := range []string{p.Hint1, p.Hint2} {
			if h != "" {
				fmt.Fprintf(out, "  hint %d: %s\n", j+1, h)
			}
		}

		fmt.Fprint(out, "\nYour answer: ")
		if !scanner.Scan() {
			fmt.Fprintln(out, "\n(input closed)")
			break
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			fmt.Fprint(out, "(skipped)\n\n")
			continue
		}

		res, err := gradePreview(ctx, grader, *p, primitive, topic, answer)
		if err != nil {
			fmt.Fprintf(out, "grading failed: %v\n\n", err)
			continue
		}
		if res.Correct {
			correct++
			fmt.Fprintln(out, "\033[32m✓ Correct!\033[0m")
		} else {
			fmt.Fprintf(out, "\033[31m✗ Not quite.\033[0m Answer: %s\n", p.CorrectAnswer)
		}
		if res.Feedback != "" {
			fmt.Fprintf(out, "Feedback: %s\n", res.Feedback)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "── Summary: %d/%d correct ──\n", correct, count)
	return nil
}

func gradePreview(ctx context.Context, g grading.Strategy, p problem.Problem, primitive, topic, answer string) (grading.Result, error) {
	return g.Grade(ctx, grading.Submission{
		Problem:   p,
		Answer:    answer,
		Primitive: primitive,
		Topic:     topic,
	})
}
