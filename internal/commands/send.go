package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/chatweb/internal/conversation"
	apierrors "github.com/diogo/chatweb/internal/errors"
	"github.com/diogo/chatweb/internal/render"
)

// NewSendCmd creates the one-shot send command
func NewSendCmd(deps *Dependencies) *cobra.Command {
	var copyReply, raw bool

	cmd := &cobra.Command{
		Use:   "send [message]",
		Short: "Send one message in the open conversation",
		Long: `Send one message and print the reply. The message continues the open
conversation restored from the backend, and the conversation is saved
afterwards. With no arguments the message is read from stdin.

Examples:
  chatweb send "Explain goroutines"
  cat notes.md | chatweb send
  chatweb send --raw "One line answer please" > answer.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(deps.In)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				text = string(data)
			}
			text = strings.TrimSpace(text)
			if text == "" {
				return apierrors.NewValidationError("message", "Message cannot be empty")
			}

			mgr, _, err := deps.identity()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			chat := conversation.New(deps.Backend, mgr, conversation.WithLogger(deps.Logger))
			chat.LoadActiveSession(ctx)

			decorate := !raw && deps.Interactive()
			var spin *spinner
			if decorate {
				spin = newSpinner(deps.ErrOut, "Waiting for reply")
				spin.start()
			}

			reply, err := chat.Submit(ctx, text)
			if err != nil {
				if spin != nil {
					spin.stopWithError()
				}
				return err
			}
			if spin != nil {
				spin.stopWithSuccess("Done")
			}

			if err := chat.Persist(ctx, false); err != nil {
				printWarning(deps.ErrOut, "Conversation not saved: %v", err)
			}

			if copyReply || deps.Config.CopyToClipboard {
				if err := deps.Copy(reply); err != nil {
					printWarning(deps.ErrOut, "Failed to copy to clipboard: %v", err)
				} else {
					printSuccess(deps.ErrOut, "Copied to clipboard")
				}
			}

			if !decorate {
				fmt.Fprintln(deps.Out, render.Sanitize(reply))
				return nil
			}
			printReply(deps.Out, reply, deps.Config.TUITheme)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&copyReply, "copy", "c", false, "Copy the reply to the clipboard")
	cmd.Flags().BoolVarP(&raw, "raw", "r", false, "Print the reply without decoration")
	return cmd
}

// printReply prints reply in an assistant bubble sized to the terminal
func printReply(w io.Writer, reply, theme string) {
	bubbleWidth := min(max(getTerminalWidth()-4, 40), 120)
	contentWidth := bubbleWidth - 4

	rendered := render.Terminal(reply, render.OptionsForTheme(theme, contentWidth))
	rendered = strings.TrimRight(rendered, "\n")

	fmt.Fprintln(w, assistantLabelStyle.Render("✦ AI"))
	fmt.Fprintln(w, assistantBubbleStyle.Width(bubbleWidth).Render(rendered))
}
