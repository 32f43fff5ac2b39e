package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agentic-hq/agentic/pkg/dashboard"
)

func newStatsCommand(opts *rootOptions) *cobra.Command {
	var adminUsage bool
	var adminUser string
	var limit int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show usage stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := requireLogin(opts)
			if err != nil {
				return err
			}
			client := session.Client()
			out := cmd.OutOrStdout()

			if adminUser != "" {
				usage, err := client.AdminUserUsage(cmd.Context(), adminUser, limit)
				if err != nil {
					return err
				}
				return printUsage(out, usage)
			}
			if adminUsage {
				usage, err := client.AdminUsage(cmd.Context())
				if err != nil {
					return err
				}
				return printUsage(out, usage)
			}

			stats, err := client.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Queries:           %d\n", stats.TotalQueries)
			fmt.Fprintf(out, "Prompt tokens:     %d\n", stats.PromptTokens)
			fmt.Fprintf(out, "Completion tokens: %d\n", stats.CompletionTokens)
			fmt.Fprintf(out, "Total tokens:      %d\n", stats.TotalTokens)
			if stats.LastQueryAt != "" {
				fmt.Fprintf(out, "Last query:        %s\n", stats.LastQueryAt)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&adminUsage, "all", false, "Show usage across all accounts (admin)")
	cmd.Flags().StringVar(&adminUser, "user", "", "Show usage for one account id (admin)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum rows for per-user usage")
	return cmd
}

func printUsage(out io.Writer, usage []dashboard.UsageRecord) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "USER\tAGENT\tSURFACE\tTOKENS\tCREATED")
	for _, row := range usage {
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%s\n", row.UserID, row.AgentID, row.Surface, row.Tokens, row.CreatedAt)
	}
	return w.Flush()
}
