package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset streaks and mastery for the current student",
	Long: `Zero every topic streak and clear mastery for the current student.

Attempt counts, recorded attempts and mastery events are kept, so
"chemthink progress" and "chemthink history" still show past work.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		if !yes {
			fmt.Fprintf(out, "Reset all progress for %s? [y/N] ", e.studentID)
			scanner := bufio.NewScanner(cmd.InOrStdin())
			if !scanner.Scan() {
				fmt.Fprintln(out)
				return nil
			}
			switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
			case "y", "yes":
			default:
				fmt.Fprintln(out, "Aborted.")
				return nil
			}
		}

		n, err := e.store.PracticeRepo().ResetProgress(cmdContext(cmd), e.studentID)
		if err != nil {
			return fmt.Errorf("reset progress: %w", err)
		}
		e.log.Info("progress reset", zap.String("student_id", e.studentID), zap.Int64("topics", n))
		fmt.Fprintf(out, "Reset %d topics.\n", n)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
