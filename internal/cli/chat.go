package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentic-hq/agentic/pkg/embed"
)

func newChatCommand(opts *rootOptions) *cobra.Command {
	var agentName, embedToken string
	var topK int

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with an agent interactively",
		Long: `Chat with an agent interactively.

With --agent the authenticated dashboard surface is used, streaming answers
when the server supports it. With --embed-token the chat runs over the
anonymous widget protocol, exactly as an embedded visitor would see it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case embedToken != "":
				return runEmbedChat(cmd, opts.server, embedToken)
			case agentName != "":
				return runDashboardChat(cmd, opts, agentName, topK)
			default:
				return fmt.Errorf("one of --agent or --embed-token is required")
			}
		},
	}

	cmd.Flags().StringVar(&agentName, "agent", "", "Chat with your own agent over the dashboard API")
	cmd.Flags().StringVar(&embedToken, "embed-token", "", "Chat over the anonymous widget protocol")
	cmd.Flags().IntVar(&topK, "k", 0, "Number of source documents to retrieve")
	return cmd
}

func runDashboardChat(cmd *cobra.Command, opts *rootOptions, agentName string, topK int) error {
	session, err := requireLogin(opts)
	if err != nil {
		return err
	}
	client := session.Client()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Chatting with %s. Ctrl-D to quit.\n", agentName)
	return readLines(cmd.InOrStdin(), out, func(line string) error {
		fmt.Fprint(out, "< ")
		_, err := client.QueryStream(cmd.Context(), agentName, line, topK, func(token string) {
			fmt.Fprint(out, token)
		})
		fmt.Fprintln(out)
		return err
	})
}

func runEmbedChat(cmd *cobra.Command, server, token string) error {
	client, err := embed.NewClient(server, token)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	done := make(chan []embed.Message, 16)
	session := embed.NewSession(client, embed.Events{
		OnMessages: func(msgs []embed.Message) {
			select {
			case done <- msgs:
			default:
			}
		},
	})
	defer session.Close()

	if err := session.Open(cmd.Context()); err != nil {
		return err
	}
	drain(done)

	if cfg := session.Config(); cfg != nil && cfg.UIHints.WelcomeMessage != "" {
		fmt.Fprintf(out, "< %s\n", cfg.UIHints.WelcomeMessage)
	}

	return readLines(cmd.InOrStdin(), out, func(line string) error {
		// a failed turn surfaces as an error bubble in the transcript
		_ = session.Send(cmd.Context(), line)
		msgs := session.Messages()
		if len(msgs) > 0 {
			last := msgs[len(msgs)-1]
			if last.Role == embed.RoleAssistant {
				fmt.Fprintf(out, "< %s\n", last.Content)
			}
		}
		drain(done)
		return nil
	})
}

func readLines(in io.Reader, out io.Writer, handle func(string) error) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			if err := handle(line); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		}
		fmt.Fprint(out, "> ")
	}
	fmt.Fprintln(out)
	return scanner.Err()
}

func drain(ch chan []embed.Message) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
