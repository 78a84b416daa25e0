package commands

import (
	"github.com/spf13/cobra"

	"github.com/diogo/chatweb/internal/conversation"
)

// NewLoginCmd creates the login command
func NewLoginCmd(deps *Dependencies) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the account",
		Long: `Log in with email and password. The password is read without echo.
The returned user id is stored locally, so later commands and the chat
start already authenticated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email == "" {
				if email, err = deps.readLine("Email: "); err != nil {
					return err
				}
			}
			password, err := deps.readPassword("Password: ")
			if err != nil {
				return err
			}

			id, err := deps.sessions().Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			printSuccess(deps.Out, "Logged in as user %s", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	return cmd
}

// NewRegisterCmd creates the register command
func NewRegisterCmd(deps *Dependencies) *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if name == "" {
				if name, err = deps.readLine("Name: "); err != nil {
					return err
				}
			}
			if email == "" {
				if email, err = deps.readLine("Email: "); err != nil {
					return err
				}
			}
			password, err := deps.readPassword("Password: ")
			if err != nil {
				return err
			}

			id, err := deps.sessions().Register(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			printSuccess(deps.Out, "Account created, logged in as user %s", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	return cmd
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Save the open conversation with a summary and log out",
		Long: `Close the open conversation: it is saved as a new session with a
generated summary, then the stored identity is forgotten. Logout proceeds
even when the save fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := deps.sessions()
			if _, ok := mgr.ResolveIdentity(); !ok {
				printWarning(deps.Out, "Not logged in")
				return nil
			}

			chat := conversation.New(deps.Backend, mgr, conversation.WithLogger(deps.Logger))
			if chat.LoadActiveSession(cmd.Context()) {
				spin := newSpinner(deps.ErrOut, "Saving conversation")
				spin.start()
				if err := chat.Persist(cmd.Context(), true); err != nil {
					spin.stopWithError()
					printWarning(deps.ErrOut, "Conversation not saved: %v", err)
				} else {
					spin.stopWithSuccess("Conversation saved")
				}
			}

			if err := mgr.Logout(); err != nil {
				return err
			}
			printSuccess(deps.Out, "Logged out")
			return nil
		},
	}
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, id, err := deps.identity()
			if err != nil {
				return err
			}
			printField(deps.Out, "User", id.String())
			printField(deps.Out, "Backend", deps.Config.BackendURL)
			return nil
		},
	}
}
