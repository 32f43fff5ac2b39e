package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agentic-hq/agentic/pkg/dashboard"
)

func newAgentsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Manage agents",
	}
	cmd.AddCommand(
		newAgentsListCommand(opts),
		newAgentsCreateCommand(opts),
		newAgentsUpdateCommand(opts),
		newAgentsDeleteCommand(opts),
		newAgentsEmbedTokenCommand(opts),
	)
	return cmd
}

func newAgentsListCommand(opts *rootOptions) *cobra.Command {
	var query, sortBy string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := requireLogin(opts)
			if err != nil {
				return err
			}

			store := dashboard.NewAgentStore(session.Client())
			if err := store.Refresh(cmd.Context()); err != nil {
				return err
			}

			agents := store.Project(query, sortBy)
			if len(agents) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No agents")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDOMAIN\tCREATED\tEMBED TOKEN")
			for _, a := range agents {
				token := a.EmbedToken
				if token == "" {
					token = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.Name, a.Domain, a.CreatedAt, token)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&query, "filter", "", "Substring filter on name, domain and description")
	cmd.Flags().StringVar(&sortBy, "sort", dashboard.SortByName, "Sort order (name, domain, created)")
	return cmd
}

func newAgentsCreateCommand(opts *rootOptions) *cobra.Command {
	var domain, description, sourceType, connectionString string

	cmd := &cobra.Command{
		Use:   "create NAME [FILE...]",
		Short: "Create an agent from documents or a typed source",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := requireLogin(opts)
			if err != nil {
				return err
			}

			files, err := readUploads(args[1:])
			if err != nil {
				return err
			}

			req := dashboard.CreateAgentRequest{
				Name:        args[0],
				Domain:      domain,
				Description: description,
				Files:       files,
			}

			client := session.Client()
			if sourceType != "" {
				extra := map[string]string{}
				if connectionString != "" {
					extra["connection_string"] = connectionString
				}
				err = client.CreateAgentFromSource(cmd.Context(), req, sourceType, extra)
			} else {
				err = client.CreateAgent(cmd.Context(), req)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created agent %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&domain, "domain", "", "Agent domain, shown to widget visitors")
	cmd.Flags().StringVar(&description, "description", "", "Agent description")
	cmd.Flags().StringVar(&sourceType, "source-type", "", "Knowledge source type (pdf, csv, word, sql, nosql)")
	cmd.Flags().StringVar(&connectionString, "connection-string", "", "Connection string for sql/nosql sources")
	return cmd
}

func newAgentsUpdateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "update NAME FILE...",
		Short: "Ingest more documents into an agent",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := requireLogin(opts)
			if err != nil {
				return err
			}

			files, err := readUploads(args[1:])
			if err != nil {
				return err
			}
			if err := session.Client().UpdateAgent(cmd.Context(), args[0], files); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated agent %s with %d file(s)\n", args[0], len(files))
			return nil
		},
	}
}

func newAgentsDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := requireLogin(opts)
			if err != nil {
				return err
			}
			if err := session.Client().DeleteAgent(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted agent %s\n", args[0])
			return nil
		},
	}
}

func newAgentsEmbedTokenCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "embed-token NAME",
		Short: "Print the agent's embed token, minting it on first use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := requireLogin(opts)
			if err != nil {
				return err
			}
			token, err := session.Client().MintEmbedToken(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}

func readUploads(paths []string) ([]dashboard.Upload, error) {
	var uploads []dashboard.Upload
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		uploads = append(uploads, dashboard.Upload{
			Name:    filepath.Base(path),
			Content: content,
		})
	}
	return uploads, nil
}
