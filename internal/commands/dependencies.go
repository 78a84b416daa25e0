package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/diogo/chatweb/internal/api"
	"github.com/diogo/chatweb/internal/config"
	"github.com/diogo/chatweb/internal/history"
	"github.com/diogo/chatweb/internal/models"
	"github.com/diogo/chatweb/internal/session"
	"github.com/diogo/chatweb/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(ctx context.Context, cfg tui.Config) error
	SelectSession(ctx context.Context, lister history.SessionLister, userID models.UserID, theme string) (models.SessionInfo, bool, error)
}

// HealthChecker reports the backend's health status
type HealthChecker interface {
	Health(ctx context.Context) (string, error)
}

// Dependencies holds the external dependencies for the commands.
// Fields left nil are filled from the configuration on first use, so tests
// can inject fakes for any of them.
type Dependencies struct {
	Config config.Config
	Logger *zap.Logger

	// Backend is the chat backend client.
	Backend api.Backend
	Health  HealthChecker

	// Storage holds the persisted identity.
	Storage session.IdentityStore

	// TUI is the terminal user interface.
	TUI TUIInterface

	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer

	// ReadPassword prompts for a secret without echo. When nil, the
	// terminal is used, falling back to a plain line read from In.
	ReadPassword func(prompt string) (string, error)
	// Copy writes text to the system clipboard
	Copy func(text string) error
	// Interactive reports whether stdout is a terminal
	Interactive func() bool

	ready   bool
	closers []func()
	reader  *bufio.Reader
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(ctx context.Context, cfg tui.Config) error {
	return tui.RunChat(ctx, cfg)
}

func (d *DefaultTUI) SelectSession(ctx context.Context, lister history.SessionLister, userID models.UserID, theme string) (models.SessionInfo, bool, error) {
	return tui.SelectSession(ctx, lister, userID, theme)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		TUI:         &DefaultTUI{},
		In:          os.Stdin,
		Out:         os.Stdout,
		ErrOut:      os.Stderr,
		Copy:        clipboard.WriteAll,
		Interactive: isStdoutTTY,
	}
}

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	backend string
	theme   string
	verbose bool
}

// prepare loads configuration and builds whatever was not injected
func (d *Dependencies) prepare(opts globalOptions) error {
	if d.ready {
		return nil
	}

	if d.Backend == nil {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		d.Config = cfg
	}
	if opts.backend != "" {
		d.Config.BackendURL = strings.TrimRight(opts.backend, "/")
	}
	if opts.theme != "" {
		d.Config.TUITheme = opts.theme
	}
	if d.Config.BackendURL == "" {
		d.Config.BackendURL = models.DefaultBaseURL
	}

	if d.Logger == nil {
		logger, err := newLogger(d.Config, opts.verbose)
		if err != nil {
			return err
		}
		d.Logger = logger
		d.closers = append(d.closers, func() { _ = logger.Sync() })
	}

	if d.Backend == nil {
		client, err := api.NewClient(
			api.WithBaseURL(d.Config.BackendURL),
			api.WithTimeout(d.Config.Timeout()),
			api.WithLogger(d.Logger),
			api.WithChatOptions(api.ChatOptions{
				Model:       d.Config.Chat.Model,
				Temperature: d.Config.Chat.Temperature,
				MaxTokens:   d.Config.Chat.MaxTokens,
			}),
		)
		if err != nil {
			return fmt.Errorf("failed to create client: %w", err)
		}
		d.Backend = client
		d.closers = append(d.closers, client.Close)
	}
	if d.Health == nil {
		if hc, ok := d.Backend.(HealthChecker); ok {
			d.Health = hc
		}
	}

	if d.Storage == nil {
		storage, err := config.DefaultLocalStorage()
		if err != nil {
			return err
		}
		d.Storage = storage
	}

	d.ready = true
	return nil
}

// Close releases resources opened by prepare, most recent first
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
}

func (d *Dependencies) sessions() *session.Manager {
	return session.NewManager(d.Backend, d.Storage, session.WithLogger(d.Logger))
}

// identity resolves the persisted user or fails with a login hint
func (d *Dependencies) identity() (*session.Manager, models.UserID, error) {
	mgr := d.sessions()
	id, ok := mgr.ResolveIdentity()
	if !ok {
		return nil, 0, errNotLoggedIn
	}
	return mgr, id, nil
}

// readLine reads one line of input after printing prompt
func (d *Dependencies) readLine(prompt string) (string, error) {
	fmt.Fprint(d.ErrOut, prompt)
	if d.reader == nil {
		d.reader = bufio.NewReader(d.In)
	}
	line, err := d.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword prompts for a password, without echo on a terminal
func (d *Dependencies) readPassword(prompt string) (string, error) {
	if d.ReadPassword != nil {
		return d.ReadPassword(prompt)
	}

	f, ok := d.In.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return d.readLine(prompt)
	}

	fmt.Fprint(d.ErrOut, prompt)
	defer fmt.Fprintln(d.ErrOut)
	data, err := term.ReadPassword(int(f.Fd()))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
