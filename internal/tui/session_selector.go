package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/chatweb/internal/history"
	"github.com/diogo/chatweb/internal/models"
	"github.com/diogo/chatweb/internal/render"
)

// sessionsLoadedMsg is sent when the session listing arrives
type sessionsLoadedMsg struct {
	sessions []models.SessionInfo
	err      error
}

// SessionSelectorModel lets the user pick one of their saved sessions
type SessionSelectorModel struct {
	ctx    context.Context
	lister history.SessionLister
	userID models.UserID

	sessions []models.SessionInfo
	cursor   int

	loading   bool
	err       error
	confirmed bool
	selected  models.SessionInfo

	width  int
	height int
	ready  bool
}

// NewSessionSelectorModel creates a selector over userID's sessions
func NewSessionSelectorModel(ctx context.Context, lister history.SessionLister, userID models.UserID) SessionSelectorModel {
	return SessionSelectorModel{
		ctx:     ctx,
		lister:  lister,
		userID:  userID,
		loading: true,
	}
}

// Init starts loading the listing
func (m SessionSelectorModel) Init() tea.Cmd {
	return m.loadSessions()
}

func (m SessionSelectorModel) loadSessions() tea.Cmd {
	return func() tea.Msg {
		sessions, err := m.lister.ListSessions(m.ctx, m.userID)
		return sessionsLoadedMsg{sessions: sessions, err: err}
	}
}

// Update handles messages and updates the model
func (m SessionSelectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case sessionsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.sessions = msg.sessions

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit
		}
		if m.loading || len(m.sessions) == 0 {
			return m, nil
		}

		switch msg.String() {
		case "up", "k":
			m.cursor--
			if m.cursor < 0 {
				m.cursor = len(m.sessions) - 1
			}

		case "down", "j":
			m.cursor++
			if m.cursor >= len(m.sessions) {
				m.cursor = 0
			}

		case "home", "g":
			m.cursor = 0

		case "end", "G":
			m.cursor = len(m.sessions) - 1

		case "enter":
			m.confirmed = true
			m.selected = m.sessions[m.cursor]
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the selector
func (m SessionSelectorModel) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}
	if m.loading {
		return loadingStyle.Render("  Loading sessions...")
	}
	if m.err != nil {
		return FormatError(m.err)
	}

	contentWidth := max(40, m.width-4)

	header := listHeaderStyle.Width(contentWidth).Render(
		lipgloss.JoinHorizontal(lipgloss.Center,
			listTitleStyle.Render("Select Session"),
			hintStyle.Render("  user "+m.userID.String())))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.renderList(contentWidth),
		m.renderStatusBar(contentWidth))
}

func (m SessionSelectorModel) renderList(width int) string {
	title := listSectionTitleStyle.Render("Sessions")

	var items []string
	if len(m.sessions) == 0 {
		items = append(items, hintStyle.Render("  No saved sessions"))
	} else {
		maxItems := max(5, m.height-12)

		offset := 0
		if m.cursor >= maxItems {
			offset = m.cursor - maxItems + 1
		}
		end := min(offset+maxItems, len(m.sessions))

		for i := offset; i < end; i++ {
			items = append(items, m.renderItem(i, m.sessions[i]))
		}

		if offset > 0 {
			items = append([]string{hintStyle.Render("  ...")}, items...)
		}
		if end < len(m.sessions) {
			items = append(items, hintStyle.Render("  ..."))
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left, append([]string{title, ""}, items...)...)
	return listPanelStyle.Width(width).Render(content)
}

func (m SessionSelectorModel) renderItem(index int, info models.SessionInfo) string {
	cursor := "  "
	style := listItemStyle
	if index == m.cursor {
		cursor = listCursorStyle.Render("> ")
		style = listSelectedStyle
	}

	title := render.Sanitize(history.Title(info))
	if r := []rune(title); len(r) > 60 {
		title = string(r[:57]) + "..."
	}

	when := ""
	if !info.UpdatedAt.IsZero() {
		when = listMetaStyle.Render(" - " + history.FormatRelativeTime(info.UpdatedAt))
	}

	return fmt.Sprintf("%s%s%s%s", cursor,
		listMetaStyle.Render(fmt.Sprintf("%2d. ", index+1)),
		style.Render(title), when)
}

func (m SessionSelectorModel) renderStatusBar(width int) string {
	shortcuts := []shortcut{
		{"↑↓", "Navigate"},
		{"Enter", "Select"},
		{"Esc", "Cancel"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, lipgloss.JoinHorizontal(
			lipgloss.Center,
			statusKeyStyle.Render(s.key),
			statusDescStyle.Render(" "+s.desc),
		))
	}

	bar := strings.Join(items, "  │  ")
	return listStatusBarStyle.Width(width).Render(bar)
}

// Result returns the chosen session and whether the user confirmed
func (m SessionSelectorModel) Result() (models.SessionInfo, bool) {
	return m.selected, m.confirmed
}

// SelectSession runs the selector and returns the chosen session.
// ok is false when the user cancelled.
func SelectSession(ctx context.Context, lister history.SessionLister, userID models.UserID, theme string) (info models.SessionInfo, ok bool, err error) {
	ApplyTheme(render.ResolveTUITheme(theme))

	p := tea.NewProgram(
		NewSessionSelectorModel(ctx, lister, userID),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	final, err := p.Run()
	if err != nil {
		return models.SessionInfo{}, false, err
	}
	sm, isSelector := final.(SessionSelectorModel)
	if !isSelector {
		return models.SessionInfo{}, false, nil
	}
	if sm.err != nil {
		return models.SessionInfo{}, false, sm.err
	}
	info, ok = sm.Result()
	return info, ok, nil
}
