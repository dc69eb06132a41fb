package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chemthink/chemthink/internal/practiceapi"
	"github.com/chemthink/chemthink/internal/problem"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List primitives and their topics",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		remote, _ := cmd.Flags().GetBool("remote")

		if !remote {
			for _, p := range problem.Primitives() {
				fmt.Fprintf(out, "%-13s %s\n", p, strings.Join(problem.Topics(p), ", "))
			}
			return nil
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		client := practiceapi.NewClient(cfg.APIURL, practiceapi.WithTimeout(cfg.RequestTimeout))
		catalog, err := client.Primitives(cmdContext(cmd))
		if err != nil {
			return fmt.Errorf("fetch primitives from %s: %w", cfg.APIURL, err)
		}

		names := make([]string, 0, len(catalog))
		for name := range catalog {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(out, "%-13s %s\n", name, strings.Join(catalog[name], ", "))
		}
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the practice service and its LLM",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		client := practiceapi.NewClient(cfg.APIURL, practiceapi.WithTimeout(cfg.RequestTimeout))
		h, err := client.Health(cmdContext(cmd))
		if err != nil {
			return fmt.Errorf("practice service at %s: %w", cfg.APIURL, err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Service:  %s\n", cfg.APIURL)
		fmt.Fprintf(out, "Status:   %s\n", h.Status)
		fmt.Fprintf(out, "LLM:      %s\n", h.LLM)
		if h.Model != "" {
			fmt.Fprintf(out, "Model:    %s\n", h.Model)
		}
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the student ID used on this device",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, e.studentID)

		s, err := e.store.StudentRepo().Get(cmdContext(cmd), e.studentID)
		if err != nil {
			return fmt.Errorf("get student: %w", err)
		}
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose && s != nil {
			fmt.Fprintf(out, "Since:        %s\n", s.CreatedAt.Local().Format("2006-01-02 15:04"))
			fmt.Fprintf(out, "Last active:  %s\n", s.LastActive.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	topicsCmd.Flags().Bool("remote", false, "Ask the practice service instead of the built-in catalog")
	whoamiCmd.Flags().BoolP("verbose", "v", false, "Also show when the student was first and last seen")
}
