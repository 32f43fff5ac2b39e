// Package cli implements the agentic command line client for the dashboard
// API and the embed widget protocol.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentic-hq/agentic/pkg/dashboard"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	server    string
	credsPath string
}

func (o *rootOptions) session() (*dashboard.AuthSession, error) {
	return dashboard.NewAuthSession(o.server, &dashboard.FileCredentialStore{Path: o.credsPath})
}

// NewRootCommand builds the agentic CLI.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "agentic",
		Short:        "Manage agents and chat from the terminal",
		Long:         "agentic talks to the dashboard API and to embedded chat widgets.",
		SilenceUsage: true,
	}

	defaultCreds := filepath.Join(homeDir(), ".agentic", "credentials.json")
	cmd.PersistentFlags().StringVar(&opts.server, "server", "http://localhost:8080", "API server base URL")
	cmd.PersistentFlags().StringVar(&opts.credsPath, "credentials", defaultCreds, "Path to the stored credential")

	cmd.AddCommand(
		newLoginCommand(opts),
		newRegisterCommand(opts),
		newLogoutCommand(opts),
		newWhoamiCommand(opts),
		newAgentsCommand(opts),
		newChatCommand(opts),
		newStatsCommand(opts),
	)
	return cmd
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// requireLogin returns an authenticated session or a friendly error.
func requireLogin(opts *rootOptions) (*dashboard.AuthSession, error) {
	session, err := opts.session()
	if err != nil {
		return nil, err
	}
	if !session.LoggedIn() {
		return nil, fmt.Errorf("not logged in, run: agentic login")
	}
	return session, nil
}
