package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chemthink/chemthink/internal/problem"
	"github.com/chemthink/chemthink/internal/store"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show per-topic streaks and mastery",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmdContext(cmd)
		rows, err := e.store.PracticeRepo().ListProgress(ctx, e.studentID)
		if err != nil {
			return fmt.Errorf("query progress: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(rows) == 0 {
			fmt.Fprintln(out, "No progress yet. Run `chemthink` to start practicing.")
			return nil
		}

		fmt.Fprintf(out, "%-12s  %-24s  %6s  %8s  %-8s  %s\n",
			"Primitive", "Topic", "Streak", "Attempts", "Mastered", "Last attempt")
		fmt.Fprintln(out, strings.Repeat("─", 84))

		var mastered int
		for _, p := range rows {
			m := ""
			if p.MasteryAchieved {
				m = "✓"
				mastered++
			}
			fmt.Fprintf(out, "%-12s  %-24s  %6d  %8d  %-8s  %s\n",
				p.Primitive,
				truncate(problem.TopicLabel(p.Topic), 24),
				p.Streak,
				p.Attempts,
				m,
				p.LastAttempt.Local().Format("2006-01-02 15:04"),
			)
		}

		events, err := e.store.PracticeRepo().QueryMastery(ctx, store.QueryOpts{StudentID: e.studentID})
		if err != nil {
			return fmt.Errorf("query mastery events: %w", err)
		}

		fmt.Fprintln(out, strings.Repeat("─", 84))
		var total int
		for _, p := range problem.Primitives() {
			total += len(problem.Topics(p))
		}
		fmt.Fprintf(out, "%d of %d topics mastered, %d mastery sessions\n",
			mastered, total, len(events))
		return nil
	},
}
