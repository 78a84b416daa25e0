package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/diogo/chatweb/internal/api"
	"github.com/diogo/chatweb/internal/conversation"
	apierrors "github.com/diogo/chatweb/internal/errors"
	"github.com/diogo/chatweb/internal/models"
	"github.com/diogo/chatweb/internal/render"
	"github.com/diogo/chatweb/internal/session"
	"github.com/diogo/chatweb/internal/voice"
)

// DefaultDraftInterval is the minimum time between focus-loss draft saves
const DefaultDraftInterval = 15 * time.Second

// Animation tick message
type animationTickMsg time.Time

// Message types for the TUI
type (
	authResultMsg struct {
		userID models.UserID
		err    error
	}
	// activeSessionMsg carries the fetch generation so a fetch started
	// before a logout cannot fill the next user's conversation.
	activeSessionMsg struct {
		gen    int
		active *api.ActiveSession
	}
	chatResultMsg struct {
		turn  *conversation.Turn
		reply string
		err   error
	}
	logoutDoneMsg struct {
		err error
	}
	voiceStartedMsg struct {
		events <-chan voice.Event
		err    error
	}
	voiceEventMsg struct {
		event  voice.Event
		events <-chan voice.Event
	}
	errorExpiredMsg struct {
		seq int
	}
)

type viewKind int

const (
	viewAuth viewKind = iota
	viewChat
)

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmClear
	confirmLogout
)

// Config wires the TUI to the rest of the application
type Config struct {
	Sessions *session.Manager
	Chat     *conversation.Controller
	// Voice may be nil; voice input is then unavailable
	Voice      *voice.Adapter
	Logger     *zap.Logger
	BackendURL string
	Theme      string
	ErrorTTL   time.Duration
	// DraftInterval throttles draft saves on focus loss
	DraftInterval time.Duration
	// CopyReplies copies every reply to the clipboard
	CopyReplies bool
}

// Model represents the TUI state
type Model struct {
	ctx        context.Context
	sessions   *session.Manager
	chat       *conversation.Controller
	voice      *voice.Adapter
	logger     *zap.Logger
	backendURL string
	errorTTL   time.Duration
	drafts     *rate.Limiter
	copyReply  bool
	copyText   func(string) error

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model
	auth     authForm

	// State
	view           viewKind
	authPending    bool
	authErr        error
	turn           *conversation.Turn
	loading        bool
	loggingOut     bool
	voiceStarting  bool
	confirm        confirmKind
	err            error
	errSeq         int
	notice         string
	fetchGen       int
	ready          bool
	animationFrame int

	// Dimensions
	width  int
	height int
}

// NewModel creates the TUI model. A persisted identity opens the chat
// view directly.
func NewModel(ctx context.Context, cfg Config) Model {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.ErrorTTL <= 0 {
		cfg.ErrorTTL = 10 * time.Second
	}
	if cfg.DraftInterval <= 0 {
		cfg.DraftInterval = DefaultDraftInterval
	}
	if cfg.Voice == nil {
		cfg.Voice = voice.NewAdapter(nil, nil, cfg.Chat, cfg.Logger)
	}
	ApplyTheme(render.ResolveTUITheme(cfg.Theme))

	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	m := Model{
		ctx:        ctx,
		sessions:   cfg.Sessions,
		chat:       cfg.Chat,
		voice:      cfg.Voice,
		logger:     cfg.Logger,
		backendURL: cfg.BackendURL,
		errorTTL:   cfg.ErrorTTL,
		drafts:     rate.NewLimiter(rate.Every(cfg.DraftInterval), 1),
		copyReply:  cfg.CopyReplies,
		copyText:   clipboard.WriteAll,
		textarea:   ta,
		spinner:    s,
		auth:       newAuthForm(),
	}

	if _, ok := m.sessions.ResolveIdentity(); ok {
		m.view = viewChat
		m.textarea.Focus()
	}
	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	if m.view == viewChat {
		return tea.Batch(textarea.Blink, m.fetchActiveSession(m.fetchGen))
	}
	return textinput.Blink
}

// animationTick returns a command that sends animation tick messages
func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4 // Header panel with border
		inputHeight := 6  // Input panel with border
		statusHeight := 1 // Status bar
		padding := 2      // Extra spacing

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}

		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.auth.setWidth(min(contentWidth, 64))
		m.updateViewport()
		return m, nil

	case tea.KeyMsg:
		if m.view == viewAuth {
			return m.updateAuth(msg)
		}
		return m.updateChatKey(msg)

	case tea.BlurMsg:
		// Losing focus is the terminal's "tab hidden"
		if m.view == viewChat && m.drafts.Allow() {
			m.chat.PersistBestEffort()
		}
		return m, nil

	case authResultMsg:
		return m.handleAuthResult(msg)

	case activeSessionMsg:
		if msg.gen != m.fetchGen || m.view != viewChat {
			return m, nil
		}
		if m.chat.Adopt(msg.active) {
			m.updateViewport()
			m.viewport.GotoBottom()
		}
		return m, nil

	case chatResultMsg:
		return m.handleChatResult(msg)

	case logoutDoneMsg:
		if msg.err != nil {
			m.logger.Warn("final session save failed", zap.Error(msg.err))
		}
		return m.finishLogout()

	case voiceStartedMsg:
		m.voiceStarting = false
		if msg.err != nil {
			cmd = m.showError(voiceError(msg.err))
			return m, cmd
		}
		if msg.events != nil {
			return m, waitVoice(msg.events)
		}
		return m, nil

	case voiceEventMsg:
		return m.handleVoiceEvent(msg)

	case errorExpiredMsg:
		if msg.seq == m.errSeq {
			m.err = nil
		}
		return m, nil

	case spinner.TickMsg:
		if m.loading || m.authPending || m.loggingOut {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.loading {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
	}

	if m.view == viewChat {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// updateAuth handles keys on the login/registration form
func (m Model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	mode := m.sessions.Mode()

	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "ctrl+t":
		if m.authPending {
			return m, nil
		}
		mode = m.sessions.ToggleMode()
		m.authErr = nil
		m.auth.focus = 0
		m.auth.syncFocus(mode)
		return m, nil

	case "tab", "down":
		m.auth.move(mode, 1)
		return m, nil

	case "shift+tab", "up":
		m.auth.move(mode, -1)
		return m, nil

	case "enter":
		if m.authPending {
			return m, nil
		}
		m.authPending = true
		m.authErr = nil
		return m, tea.Batch(m.authenticate(mode, m.auth.name(), m.auth.email(), m.auth.password()), m.spinner.Tick)
	}

	cmd := m.auth.update(mode, msg)
	return m, cmd
}

// authenticate runs login or registration off the event loop
func (m Model) authenticate(mode session.Mode, name, email, password string) tea.Cmd {
	return func() tea.Msg {
		var id models.UserID
		var err error
		if mode == session.ModeRegister {
			id, err = m.sessions.Register(m.ctx, name, email, password)
		} else {
			id, err = m.sessions.Login(m.ctx, email, password)
		}
		return authResultMsg{userID: id, err: err}
	}
}

func (m Model) handleAuthResult(msg authResultMsg) (tea.Model, tea.Cmd) {
	m.authPending = false
	if msg.err != nil {
		m.authErr = msg.err
		return m, nil
	}

	m.logger.Info("user authenticated", zap.Stringer("user_id", msg.userID))

	// The previous conversation goes before the new user's session is loaded
	m.voice.Stop()
	m.chat.Reset()
	m.turn, m.loading = nil, false
	m.fetchGen++

	m.view = viewChat
	m.auth.reset(m.sessions.Mode())
	m.textarea.Reset()
	m.textarea.Focus()
	m.updateViewport()

	return m, tea.Batch(textarea.Blink, m.fetchActiveSession(m.fetchGen))
}

// fetchActiveSession loads the user's open session in the background
func (m Model) fetchActiveSession(gen int) tea.Cmd {
	return func() tea.Msg {
		return activeSessionMsg{gen: gen, active: m.chat.FetchActiveSession(m.ctx)}
	}
}

// updateChatKey handles keys in the chat view
func (m Model) updateChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""

	if m.confirm != confirmNone {
		return m.answerConfirm(msg)
	}
	if m.loggingOut {
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "esc":
		return m.quit()

	case "ctrl+l":
		m.confirm = confirmClear
		return m, nil

	case "ctrl+o":
		m.confirm = confirmLogout
		return m, nil

	case "ctrl+y":
		cmd := m.copyLastReply()
		return m, cmd

	case "ctrl+r":
		return m.toggleVoice()

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case "enter":
		if m.loading {
			return m, nil
		}
		input := strings.TrimSpace(m.textarea.Value())
		if input == "" {
			return m, nil
		}
		if input == "/exit" || input == "/quit" {
			return m.quit()
		}
		m.textarea.Reset()
		// Typing over a capture wins
		m.voice.Stop()
		return m.submit(input)
	}

	// Only pass KeyMsg to textarea to prevent escape sequence leaks
	if m.loading {
		return m, nil
	}
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

// submit starts a turn for typed or transcribed text
func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	turn, err := m.chat.Begin(text)
	if err != nil {
		if errors.Is(err, conversation.ErrBusy) {
			err = voice.ErrBusy
		}
		cmd := m.showError(err)
		return m, cmd
	}
	if turn == nil {
		return m, nil
	}

	m.turn = turn
	m.loading = true
	m.err = nil
	m.animationFrame = 0
	m.updateViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(m.send(turn), m.spinner.Tick, animationTick())
}

// send performs the chat request of a pending turn
func (m Model) send(turn *conversation.Turn) tea.Cmd {
	return func() tea.Msg {
		reply, err := m.chat.Send(m.ctx, turn)
		return chatResultMsg{turn: turn, reply: reply, err: err}
	}
}

func (m Model) handleChatResult(msg chatResultMsg) (tea.Model, tea.Cmd) {
	current := msg.turn == m.turn
	if current {
		m.turn, m.loading = nil, false
	}

	if msg.err != nil {
		_ = m.chat.Rollback(msg.turn, msg.err)
		m.logger.Warn("chat request failed", zap.Error(msg.err))
		if !current {
			return m, nil
		}
		m.updateViewport()
		cmd := m.showError(msg.err)
		return m, cmd
	}

	_ = m.chat.Commit(msg.turn, msg.reply)
	if !current {
		return m, nil
	}
	m.updateViewport()
	m.viewport.GotoBottom()

	if m.copyReply {
		if err := m.copyText(msg.reply); err != nil {
			m.logger.Debug("clipboard unavailable", zap.Error(err))
		}
	}
	return m, nil
}

// answerConfirm resolves a pending y/n prompt
func (m Model) answerConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kind := m.confirm
	m.confirm = confirmNone

	switch msg.String() {
	case "y", "Y", "enter":
	default:
		return m, nil
	}

	switch kind {
	case confirmClear:
		m.voice.Stop()
		m.chat.Clear()
		m.updateViewport()
		m.notice = "Conversation cleared"
		return m, nil
	case confirmLogout:
		m.loggingOut = true
		m.voice.Stop()
		return m, tea.Batch(m.persistForLogout(), m.spinner.Tick)
	}
	return m, nil
}

// persistForLogout saves the conversation with a summary before logging out
func (m Model) persistForLogout() tea.Cmd {
	return func() tea.Msg {
		return logoutDoneMsg{err: m.chat.Persist(m.ctx, true)}
	}
}

// finishLogout drops the identity and the conversation, whatever the save
// did. If the stored identity cannot be removed the user stays in the chat.
func (m Model) finishLogout() (Model, tea.Cmd) {
	m.loggingOut = false
	if err := m.sessions.Logout(); err != nil {
		m.logger.Warn("failed to clear stored identity", zap.Error(err))
		cmd := m.showError(err)
		return m, cmd
	}
	m.voice.Release()
	m.chat.Reset()
	m.fetchGen++
	m.turn, m.loading = nil, false
	m.err = nil
	m.notice = ""
	m.textarea.Reset()
	m.textarea.Blur()
	m.updateViewport()

	m.view = viewAuth
	m.auth.reset(m.sessions.Mode())
	return m, nil
}

// quit hands the conversation to a draft save and exits
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.voice.Stop()
	m.chat.PersistBestEffort()
	return m, tea.Quit
}

func (m *Model) copyLastReply() tea.Cmd {
	reply, ok := lastReply(m.chat.Messages())
	if !ok {
		return nil
	}
	if err := m.copyText(reply); err != nil {
		return m.showError(fmt.Errorf("could not copy to clipboard: %w", err))
	}
	m.notice = "Copied last reply"
	return nil
}

// lastReply returns the newest assistant message
func lastReply(msgs []models.Message) (string, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == models.RoleAssistant {
			return msgs[i].Content, true
		}
	}
	return "", false
}

// toggleVoice starts or stops capture. Starting may run the microphone
// probe, so it happens off the event loop.
func (m Model) toggleVoice() (tea.Model, tea.Cmd) {
	if m.voiceStarting {
		return m, nil
	}
	if m.voice.Listening() {
		m.voice.Stop()
		return m, nil
	}
	m.voiceStarting = true
	adapter, ctx := m.voice, m.ctx
	return m, func() tea.Msg {
		events, err := adapter.Toggle(ctx)
		return voiceStartedMsg{events: events, err: err}
	}
}

// waitVoice reads the next recognizer event
func waitVoice(events <-chan voice.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return voiceEventMsg{event: ev, events: events}
	}
}

func (m Model) handleVoiceEvent(msg voiceEventMsg) (tea.Model, tea.Cmd) {
	out := m.voice.Handle(msg.event)
	cmds := []tea.Cmd{waitVoice(msg.events)}

	if out.Message != "" {
		cmds = append(cmds, m.showError(errors.New(out.Message)))
	}
	if out.Submit != "" && m.view == viewChat {
		var cmd tea.Cmd
		var next tea.Model
		next, cmd = m.submit(out.Submit)
		m = next.(Model)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// voiceError returns the display text of a voice failure
func voiceError(err error) error {
	var ve *voice.Error
	if errors.As(err, &ve) {
		return ve
	}
	return voice.ErrStartFailed
}

// showError displays err until it expires or is replaced
func (m *Model) showError(err error) tea.Cmd {
	m.err = err
	m.errSeq++
	seq := m.errSeq
	return tea.Tick(m.errorTTL, func(time.Time) tea.Msg {
		return errorExpiredMsg{seq: seq}
	})
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}
	if m.view == viewAuth {
		return m.renderAuth()
	}

	var sections []string
	contentWidth := m.width - 4

	sections = append(sections, m.renderHeader(contentWidth))

	var messagesContent string
	if m.chat.Len() == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	messagesPanel := messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent)
	sections = append(sections, messagesPanel)

	var inputContent string
	switch {
	case m.loggingOut:
		inputContent = m.spinner.View() + loadingStyle.Render(" Saving session...")
	case m.loading:
		inputContent = m.renderLoadingAnimation()
	default:
		label := inputLabelStyle.Render("You")
		if m.voice.Listening() {
			label = lipgloss.JoinHorizontal(lipgloss.Center, label, listeningStyle.Render("● Listening..."))
		}
		inputContent = lipgloss.JoinVertical(lipgloss.Left, label, m.textarea.View())
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	switch {
	case m.confirm == confirmClear:
		sections = append(sections, confirmStyle.Render("Clear the conversation? (y/n)"))
	case m.confirm == confirmLogout:
		sections = append(sections, confirmStyle.Render("Are you sure you want to logout? (y/n)"))
	case m.err != nil:
		sections = append(sections, FormatError(m.err))
	case m.notice != "":
		sections = append(sections, noticeStyle.Render(m.notice))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(width int) string {
	parts := []string{titleStyle.Render("✦ chatweb")}
	if id, ok := m.sessions.Identity(); ok {
		parts = append(parts, hintStyle.Render("  •  "), subtitleStyle.Render("user "+id.String()))
	}
	if id, ok := m.chat.SessionID(); ok {
		parts = append(parts, hintStyle.Render("  •  "), subtitleStyle.Render(fmt.Sprintf("session #%d", id)))
	} else {
		parts = append(parts, hintStyle.Render("  •  "), subtitleStyle.Render("new session"))
	}
	return headerStyle.Width(width).Render(lipgloss.JoinHorizontal(lipgloss.Center, parts...))
}

// renderAuth renders the login/registration form
func (m Model) renderAuth() string {
	mode := m.sessions.Mode()
	width := min(m.width-4, 64)

	title := titleStyle.Render("✦ chatweb  " + authTitle(mode))
	sub := subtitleStyle.Render(m.backendURL)

	text, link := authSwitch(mode)
	switchLine := hintStyle.Render(text) + authToggleStyle.Render(link) + hintStyle.Render("  (ctrl+t)")

	rows := []string{title, sub, "", m.auth.view(mode), ""}
	switch {
	case m.authPending:
		rows = append(rows, m.spinner.View()+loadingStyle.Render(" "+authPendingLabel(mode)))
	case m.authErr != nil:
		rows = append(rows, errorStyle.Render(render.Sanitize(apierrors.UserMessage(m.authErr))))
	default:
		rows = append(rows, hintStyle.Render("Enter to submit  •  Tab to move  •  Esc to quit"))
	}
	rows = append(rows, "", switchLine)

	panel := authPanelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panel)
}

// renderWelcome renders the welcome screen when no messages exist
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	icon := welcomeIconStyle.Width(width).Render("✦")
	title := welcomeTitleStyle.Width(width).Render("Welcome to chatweb")
	subtitle := welcomeStyle.Width(width).Render("Start a conversation by typing a message below")

	content := lipgloss.JoinVertical(lipgloss.Center, "", icon, "", title, "", subtitle, "")

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

// renderLoadingAnimation renders a colorful animated typing indicator
func (m Model) renderLoadingAnimation() string {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	frame := m.animationFrame

	spinColor := gradientColors[frame%len(gradientColors)]
	spin := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[frame%len(chars)])

	var dots strings.Builder
	numDots := (frame / 3) % 4
	for i := 0; i < numDots; i++ {
		dotColor := gradientColors[(frame+i)%len(gradientColors)]
		dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
	}
	for i := numDots; i < 3; i++ {
		dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(" AI is typing ")
	return fmt.Sprintf("%s %s %s", spin, text, dots.String())
}

type shortcut struct {
	key  string
	desc string
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []shortcut{{"Enter", "Send"}}
	if m.voice.Supported() {
		shortcuts = append(shortcuts, shortcut{"^R", "Mic"})
	}
	shortcuts = append(shortcuts,
		shortcut{"^Y", "Copy"},
		shortcut{"^L", "Clear"},
		shortcut{"^O", "Logout"},
		shortcut{"Esc", "Quit"},
	)

	var items []string
	for _, s := range shortcuts {
		item := lipgloss.JoinHorizontal(
			lipgloss.Center,
			statusKeyStyle.Render(s.key),
			statusDescStyle.Render(" "+s.desc),
		)
		items = append(items, item)
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Center, strings.Join(items, "  │  "))
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	opts := render.DefaultOptions().WithWidth(max(20, bubbleWidth-4)).WithStyle(codeStyle)

	for i, msg := range m.chat.Messages() {
		if i > 0 {
			content.WriteString("\n")
		}

		rendered := render.Terminal(msg.Content, opts)
		if msg.Role == models.RoleUser {
			label := userLabelStyle.Render("⬤ " + msg.Role.Label())
			content.WriteString(label + "\n" + userBubbleStyle.Width(bubbleWidth).Render(rendered))
		} else {
			label := assistantLabelStyle.Render("✦ " + msg.Role.Label())
			content.WriteString(label + "\n" + assistantBubbleStyle.Width(bubbleWidth).Render(rendered))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// RunChat starts the chat TUI and blocks until it exits
func RunChat(ctx context.Context, cfg Config) error {
	p := tea.NewProgram(
		NewModel(ctx, cfg),
		tea.WithAltScreen(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
