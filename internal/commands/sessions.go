package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	apierrors "github.com/diogo/chatweb/internal/errors"
	"github.com/diogo/chatweb/internal/history"
	"github.com/diogo/chatweb/internal/models"
	"github.com/diogo/chatweb/internal/render"
)

// NewSessionsCmd creates the sessions command group
func NewSessionsCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sessions",
		Aliases: []string{"history"},
		Short:   "Browse saved sessions",
		Long: `List, show, search and export the sessions saved on the backend.

` + history.ListAliases() + `

Without a reference, show and export open an interactive picker.`,
	}

	cmd.AddCommand(
		newSessionsListCmd(deps),
		newSessionsShowCmd(deps),
		newSessionsExportCmd(deps),
		newSessionsSearchCmd(deps),
	)
	return cmd
}

func newSessionsListCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved sessions, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, userID, err := deps.identity()
			if err != nil {
				return err
			}

			sessions, err := deps.Backend.ListSessions(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Fprintln(deps.Out, "No sessions found.")
				return nil
			}

			w := tabwriter.NewWriter(deps.Out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "#\tID\tTITLE\tUPDATED")
			_, _ = fmt.Fprintln(w, "-\t--\t-----\t-------")
			for i, s := range sessions {
				_, _ = fmt.Fprintf(w, "%d\t#%d\t%s\t%s\n",
					i+1, s.ID, truncate(render.Sanitize(history.Title(s)), 50), history.FormatRelativeTime(s.UpdatedAt))
			}
			return w.Flush()
		},
	}
}

func newSessionsShowCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "show [ref]",
		Short: "Show a saved session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, ok, err := loadTranscript(cmd.Context(), deps, args)
			if err != nil || !ok {
				return err
			}

			printField(deps.Out, "Session", fmt.Sprintf("#%d", tr.ID))
			printField(deps.Out, "Title", render.Sanitize(history.Title(tr.SessionInfo)))
			if !tr.CreatedAt.IsZero() {
				printField(deps.Out, "Created", tr.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			if !tr.UpdatedAt.IsZero() {
				printField(deps.Out, "Updated", tr.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			printField(deps.Out, "Messages", fmt.Sprintf("%d", len(tr.Messages)))
			fmt.Fprintln(deps.Out)

			for i, msg := range tr.Messages {
				labelColor.Fprintf(deps.Out, "[%d] %s:\n", i+1, msg.Role.Label())
				fmt.Fprintf(deps.Out, "  %s\n\n", render.Sanitize(msg.Content))
			}
			return nil
		},
	}
}

func newSessionsExportCmd(deps *Dependencies) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export [ref]",
		Short: "Export a saved session as markdown, json or html",
		Long: `Export a saved session. The format defaults to the output file's
extension, or markdown when writing to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" && output != "" {
				format = filepath.Ext(output)
			}
			exportFormat, err := history.ParseExportFormat(format)
			if err != nil {
				return apierrors.NewValidationError("format", err.Error())
			}

			tr, ok, err := loadTranscript(cmd.Context(), deps, args)
			if err != nil || !ok {
				return err
			}

			data, err := history.Export(tr, exportFormat)
			if err != nil {
				return err
			}

			if output == "" {
				_, err := deps.Out.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			printSuccess(deps.ErrOut, "Session #%d exported to %s", tr.ID, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Export format: markdown, json or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func newSessionsSearchCmd(deps *Dependencies) *cobra.Command {
	var content bool
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search session summaries, and optionally message content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, userID, err := deps.identity()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			sessions, err := deps.Backend.ListSessions(ctx, userID)
			if err != nil {
				return err
			}
			if limit > 0 && len(sessions) > limit {
				sessions = sessions[:limit]
			}

			transcripts := make([]*models.Transcript, 0, len(sessions))
			for _, s := range sessions {
				if !content {
					transcripts = append(transcripts, &models.Transcript{SessionInfo: s})
					continue
				}
				tr, err := deps.Backend.GetSession(ctx, s.ID)
				if err != nil {
					return err
				}
				tr.SessionInfo = s
				transcripts = append(transcripts, tr)
			}

			results := history.Search(transcripts, args[0], content)
			if len(results) == 0 {
				fmt.Fprintf(deps.Out, "No sessions matching %q.\n", args[0])
				return nil
			}

			for _, r := range results {
				labelColor.Fprintf(deps.Out, "#%d ", r.Transcript.ID)
				fmt.Fprintln(deps.Out, truncate(render.Sanitize(history.Title(r.Transcript.SessionInfo)), 60))
				if r.MatchField == "content" {
					dimColor.Fprintf(deps.Out, "    %s\n", render.Sanitize(r.MatchSnippet))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&content, "content", false, "Also search message content")
	cmd.Flags().IntVar(&limit, "limit", 50, "Search only the most recent N sessions (0 for all)")
	return cmd
}

// loadTranscript resolves args[0], or asks the user to pick a session when
// no reference is given on a terminal. ok is false when the user cancelled.
func loadTranscript(ctx context.Context, deps *Dependencies, args []string) (*models.Transcript, bool, error) {
	_, userID, err := deps.identity()
	if err != nil {
		return nil, false, err
	}

	var sessionID int64
	switch {
	case len(args) == 1:
		sessionID, err = history.NewResolver(deps.Backend, userID).Resolve(ctx, args[0])
		if err != nil {
			return nil, false, err
		}

	case deps.Interactive():
		info, ok, err := deps.TUI.SelectSession(ctx, deps.Backend, userID, deps.Config.TUITheme)
		if err != nil || !ok {
			return nil, false, err
		}
		sessionID = info.ID

	default:
		return nil, false, apierrors.NewValidationError("ref", "A session reference is required (try @last)")
	}

	tr, err := deps.Backend.GetSession(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	return tr, true, nil
}
