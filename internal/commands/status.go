package commands

import (
	"github.com/spf13/cobra"

	"github.com/diogo/chatweb/internal/config"
	apierrors "github.com/diogo/chatweb/internal/errors"
)

// NewStatusCmd creates the status command
func NewStatusCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show backend health and the stored identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := deps.Out

			printField(out, "Backend", deps.Config.BackendURL)

			if deps.Health != nil {
				status, err := deps.Health.Health(cmd.Context())
				switch {
				case err != nil:
					labelColor.Fprintf(out, "%-10s ", "Health:")
					failColor.Fprintf(out, "UNREACHABLE (%s)\n", apierrors.UserMessage(err))
				case status == "healthy":
					labelColor.Fprintf(out, "%-10s ", "Health:")
					successColor.Fprintln(out, status)
				default:
					labelColor.Fprintf(out, "%-10s ", "Health:")
					warnColor.Fprintln(out, status)
				}
			}

			if id, ok := deps.sessions().ResolveIdentity(); ok {
				printField(out, "User", id.String())
			} else {
				labelColor.Fprintf(out, "%-10s ", "User:")
				warnColor.Fprintln(out, "not logged in")
			}

			voiceState := "disabled"
			if deps.Config.Voice.Command != "" {
				voiceState = "command: " + deps.Config.Voice.Command
			}
			printField(out, "Voice", voiceState)

			if path, err := config.GetConfigPath(); err == nil {
				printField(out, "Config", path)
			}
			return nil
		},
	}
}
