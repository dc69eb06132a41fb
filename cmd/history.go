package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chemthink/chemthink/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent practice attempts",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		primitive, _ := cmd.Flags().GetString("primitive")
		topic, _ := cmd.Flags().GetString("topic")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		attempts, err := e.store.PracticeRepo().QueryAttempts(cmdContext(cmd), store.QueryOpts{
			Limit:     limit,
			StudentID: e.studentID,
			Primitive: strings.ToUpper(primitive),
			Topic:     topic,
		})
		if err != nil {
			return fmt.Errorf("query attempts: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(attempts) == 0 {
			fmt.Fprintln(out, "No attempts yet. Run `chemthink` to start practicing.")
			return nil
		}

		fmt.Fprintf(out, "%-19s  %-12s  %-20s  %-2s  %5s  %-8s  %s\n",
			"Timestamp", "Primitive", "Topic", "OK", "Hints", "Graded", "Answer")
		fmt.Fprintln(out, strings.Repeat("─", 100))

		for _, a := range attempts {
			ok := "✓"
			if !a.Correct {
				ok = "✗"
			}
			fmt.Fprintf(out, "%-19s  %-12s  %-20s  %-2s  %5d  %-8s  %s\n",
				a.Timestamp.Local().Format("2006-01-02 15:04:05"),
				a.Primitive,
				truncate(a.Topic, 20),
				ok,
				a.HintsGiven,
				a.Strategy,
				truncate(a.StudentAnswer, 24),
			)
		}

		sessions, hints, err := sessionHints(cmdContext(cmd), e.store.PracticeRepo(), attempts)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, strings.Repeat("─", 100))
		fmt.Fprintf(out, "%d attempts in %d sessions, %d hints revealed\n", len(attempts), sessions, hints)
		return nil
	},
}

type hintCounter interface {
	CountHints(ctx context.Context, sessionID string) (int, error)
}

// sessionHints counts the distinct sessions behind attempts and the hints
// revealed in them, including hints on problems that were never answered.
func sessionHints(ctx context.Context, repo hintCounter, attempts []store.Attempt) (sessions, hints int, err error) {
	seen := make(map[string]bool)
	for _, a := range attempts {
		if seen[a.SessionID] {
			continue
		}
		seen[a.SessionID] = true
		n, err := repo.CountHints(ctx, a.SessionID)
		if err != nil {
			return 0, 0, fmt.Errorf("count hints: %w", err)
		}
		hints += n
	}
	return len(seen), hints, nil
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of attempts to show")
	historyCmd.Flags().String("primitive", "", "Only show this primitive")
	historyCmd.Flags().String("topic", "", "Only show this topic")
}
