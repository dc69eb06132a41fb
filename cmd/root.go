package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chemthink",
	Short: "Mastery practice for the math behind chemistry",
	Long: "chemthink: practise one chemistry concept at a time with generated problems, " +
		"progressive hints and worked examples until you get three in a row.",
	SilenceUsage: true,
	RunE:         runPractice,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides CHEMTHINK_DB env var)")
	pf.String("config", "", "Path to a chemthink.yaml config file")
	pf.String("student", "", "Student ID to use instead of this device's ID")

	addPracticeFlags(rootCmd)

	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
