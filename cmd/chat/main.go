package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"wtl-assistant/internal/config"
	"wtl-assistant/internal/widget"
	"wtl-assistant/internal/widget/tui"
)

type options struct {
	configPath string
	relayURL   string
	open       bool
}

func main() {
	// Keep the alt screen clean; only warnings and above reach stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "chat",
		Short:        "Talk to the WTL support assistant from the terminal",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newRelayClient(opts)
			if err != nil {
				return err
			}
			m, err := tui.New(cmd.Context(), client)
			if err != nil {
				return err
			}
			if opts.open {
				m.Open()
			}
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("CONFIG_PATH"), "optional YAML config file")
	root.PersistentFlags().StringVar(&opts.relayURL, "relay-url", "", "chat relay endpoint (overrides RELAY_URL)")
	root.Flags().BoolVar(&opts.open, "open", true, "start with the chat panel open")

	root.AddCommand(newAskCmd(opts))
	return root
}

func newAskCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Send a single question and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newRelayClient(opts)
			if err != nil {
				return err
			}
			session, err := widget.NewSession(client)
			if err != nil {
				return err
			}
			session.SetInput(strings.Join(args, " "))
			reply, sent := session.Send(cmd.Context())
			if !sent {
				return errors.New("question must not be blank")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), reply.Content)
			return err
		},
	}
}

func newRelayClient(opts *options) (*widget.Client, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	url := cfg.Widget.RelayURL
	if opts.relayURL != "" {
		url = opts.relayURL
	}
	slog.Debug("using relay", "url", url)
	return widget.NewClient(url, widget.WithHTTPClient(&http.Client{Timeout: cfg.Widget.Timeout}))
}
