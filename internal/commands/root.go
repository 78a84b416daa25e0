// Package commands provides CLI commands for chatweb.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/chatweb/internal/api"
	"github.com/diogo/chatweb/internal/conversation"
	apierrors "github.com/diogo/chatweb/internal/errors"
	"github.com/diogo/chatweb/internal/session"
	"github.com/diogo/chatweb/internal/tui"
	"github.com/diogo/chatweb/internal/voice"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

var errNotLoggedIn = apierrors.NewAuthError("Not logged in. Run 'chatweb login' first")

// NewRootCmd builds the command tree around deps
func NewRootCmd(deps *Dependencies) *cobra.Command {
	var (
		opts        globalOptions
		showVersion bool
	)

	rootCmd := &cobra.Command{
		Use:   "chatweb",
		Short: "Terminal client for the chat backend",
		Long: `chatweb is a terminal client for the chat backend. It keeps your
conversation on the backend, restores it when you come back and saves a
summary when you log out.

Examples:
  chatweb                               Start interactive chat
  chatweb login -e you@example.com      Log in from the command line
  chatweb send "What is Go?"            Send a single message
  chatweb sessions list                 List saved sessions
  chatweb sessions export @last -f md   Export the latest session
  chatweb config set backend_url http://localhost:8000`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				return nil
			}
			return deps.prepare(opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintf(deps.Out, "chatweb %s (built %s)\n", Version, BuildTime)
				return nil
			}
			return runChat(cmd.Context(), deps)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.backend, "backend", "b", "", "Backend base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&opts.theme, "theme", "", "TUI theme name")
	rootCmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Log at debug level")
	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")

	rootCmd.AddCommand(
		NewChatCmd(deps),
		NewLoginCmd(deps),
		NewRegisterCmd(deps),
		NewLogoutCmd(deps),
		NewWhoamiCmd(deps),
		NewStatusCmd(deps),
		NewSendCmd(deps),
		NewSessionsCmd(deps),
		NewConfigCmd(deps),
	)
	return rootCmd
}

// Execute runs the root command and prints any error
func Execute(ctx context.Context) error {
	deps := NewDependencies()
	defer deps.Close()

	err := NewRootCmd(deps).ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(deps.ErrOut, tui.FormatError(err))
	}
	return err
}

// NewChatCmd creates the interactive chat command
func NewChatCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start the interactive chat. If you are not logged in the login form is
shown first; otherwise your open session is restored from the backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), deps)
		},
	}
}

// runChat wires the chat components and runs the TUI. Draft saves started
// while the TUI ran are given a bounded time to finish before returning.
func runChat(ctx context.Context, deps *Dependencies) error {
	beacon := api.NewBeacon(deps.Backend, deps.Logger)
	mic := voice.NewProbeMicrophone(deps.Config.Voice.Probe)

	sessions := session.NewManager(deps.Backend, deps.Storage,
		session.WithLogger(deps.Logger),
		session.WithMicrophone(mic))
	chat := conversation.New(deps.Backend, sessions,
		conversation.WithLogger(deps.Logger),
		conversation.WithDraftSender(beacon))

	recognizer := voice.NewCommandRecognizer(deps.Config.Voice.Command,
		voice.WithLang(deps.Config.Voice.Lang),
		voice.WithCommandLogger(deps.Logger))
	adapter := voice.NewAdapter(recognizer, mic, chat, deps.Logger)

	err := deps.TUI.RunChat(ctx, tui.Config{
		Sessions:    sessions,
		Chat:        chat,
		Voice:       adapter,
		Logger:      deps.Logger,
		BackendURL:  deps.Config.BackendURL,
		Theme:       deps.Config.TUITheme,
		ErrorTTL:    deps.Config.ErrorTTL(),
		CopyReplies: deps.Config.CopyToClipboard,
	})

	// Killed by a signal: the TUI had no chance to save on its way out
	if ctx.Err() != nil {
		chat.PersistBestEffort()
	}
	adapter.Release()

	if !beacon.Drain(api.DefaultBeaconTimeout) {
		deps.Logger.Warn("draft save still pending at exit")
	}
	return err
}
