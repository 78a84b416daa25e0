package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/chatweb/internal/session"
)

const (
	fieldName = iota
	fieldEmail
	fieldPassword
)

var fieldLabels = [...]string{"Name", "Email", "Password"}

// authForm is the login/registration form. The name field only exists in
// register mode.
type authForm struct {
	inputs []textinput.Model
	focus  int // index into visible()
}

func newAuthForm() authForm {
	inputs := make([]textinput.Model, 3)
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 256
		ti.Prompt = ""
		ti.TextStyle = lipgloss.NewStyle().Foreground(colorText)
		ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(colorTextDim)
		inputs[i] = ti
	}
	inputs[fieldName].Placeholder = "Your name"
	inputs[fieldEmail].Placeholder = "you@example.com"
	inputs[fieldPassword].Placeholder = "password"
	inputs[fieldPassword].EchoMode = textinput.EchoPassword
	inputs[fieldPassword].EchoCharacter = '•'

	f := authForm{inputs: inputs}
	f.syncFocus(session.ModeLogin)
	return f
}

// visible returns the input indexes shown in mode, in tab order
func (f authForm) visible(mode session.Mode) []int {
	if mode == session.ModeRegister {
		return []int{fieldName, fieldEmail, fieldPassword}
	}
	return []int{fieldEmail, fieldPassword}
}

// move shifts focus by delta, wrapping around
func (f *authForm) move(mode session.Mode, delta int) {
	n := len(f.visible(mode))
	f.focus = ((f.focus+delta)%n + n) % n
	f.syncFocus(mode)
}

// syncFocus focuses the current input and blurs the rest
func (f *authForm) syncFocus(mode session.Mode) {
	vis := f.visible(mode)
	if f.focus >= len(vis) {
		f.focus = 0
	}
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	f.inputs[vis[f.focus]].Focus()
}

// onLastField reports whether focus is on the final input
func (f authForm) onLastField(mode session.Mode) bool {
	return f.focus == len(f.visible(mode))-1
}

func (f *authForm) update(mode session.Mode, msg tea.Msg) tea.Cmd {
	idx := f.visible(mode)[f.focus]
	var cmd tea.Cmd
	f.inputs[idx], cmd = f.inputs[idx].Update(msg)
	return cmd
}

func (f authForm) name() string     { return strings.TrimSpace(f.inputs[fieldName].Value()) }
func (f authForm) email() string    { return strings.TrimSpace(f.inputs[fieldEmail].Value()) }
func (f authForm) password() string { return f.inputs[fieldPassword].Value() }

// clearPassword empties the password input
func (f *authForm) clearPassword() {
	f.inputs[fieldPassword].SetValue("")
}

// reset empties every input and returns focus to the top
func (f *authForm) reset(mode session.Mode) {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
	}
	f.focus = 0
	f.syncFocus(mode)
}

// setWidth sizes every input to fit a panel of width columns
func (f *authForm) setWidth(width int) {
	for i := range f.inputs {
		f.inputs[i].Width = max(10, width-16)
	}
}

func (f authForm) view(mode session.Mode) string {
	var rows []string
	for pos, idx := range f.visible(mode) {
		label := authFieldLabelStyle.Render(fieldLabels[idx])
		if pos == f.focus {
			label = authFocusedStyle.Render(fieldLabels[idx])
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, label, f.inputs[idx].View()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// authTitle and authSwitch mirror the form's two modes
func authTitle(mode session.Mode) string {
	if mode == session.ModeRegister {
		return "Sign Up"
	}
	return "Login"
}

func authSwitch(mode session.Mode) (text, link string) {
	if mode == session.ModeRegister {
		return "Already have an account? ", "Login"
	}
	return "Don't have an account? ", "Sign up"
}

func authPendingLabel(mode session.Mode) string {
	if mode == session.ModeRegister {
		return "Signing up..."
	}
	return "Logging in..."
}
