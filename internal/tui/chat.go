// Package tui is a local terminal chat surface that drives the same dialog
// flow as the Telegram transport.
package tui

import (
	"context"
	"html"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mvoronin/jobscout/internal/model"
)

// localUserID identifies the single local chat user in the settings store.
const localUserID int64 = 1

var (
	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	botStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))
)

// Ensure Sender implements model.Sender.
var _ model.Sender = (*Sender)(nil)

// Sender bridges the session orchestrator to the running chat program.
// Outgoing messages are queued on a channel the bubbletea model drains.
type Sender struct {
	replies chan outgoing
	nextID  atomic.Int64
}

type outgoing struct {
	text     string
	keyboard [][]string
}

// NewSender returns a sender with room for a burst of search results.
func NewSender() *Sender {
	return &Sender{replies: make(chan outgoing, 64)}
}

func (s *Sender) Send(_ context.Context, _ int64, text string, opts model.SendOptions) (int64, error) {
	s.replies <- outgoing{text: text, keyboard: opts.Keyboard}
	return s.nextID.Add(1), nil
}

// Edit appends the new text as a fresh transcript entry. A terminal
// transcript has no in-place edits.
func (s *Sender) Edit(_ context.Context, _ int64, _ int64, text string) error {
	s.replies <- outgoing{text: text}
	return nil
}

// HandleFunc processes one user-typed message, exactly like an inbound
// Telegram update.
type HandleFunc func(ctx context.Context, userID int64, text string)

type replyMsg outgoing

type chatModel struct {
	vp     viewport.Model
	input  textinput.Model
	lines  []string
	sender *Sender
	handle HandleFunc
	width  int
	height int
	ready  bool
}

func newChatModel(handle HandleFunc, sender *Sender) chatModel {
	input := textinput.New()
	input.Placeholder = "Type a message (/settings, /search, /help)"
	input.Focus()

	return chatModel{
		input:  input,
		sender: sender,
		handle: handle,
	}
}

// waitForReply re-subscribes to the sender's queue after every delivery.
func (m chatModel) waitForReply() tea.Cmd {
	replies := m.sender.replies
	return func() tea.Msg {
		return replyMsg(<-replies)
	}
}

func (m chatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForReply())
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Border (2) + input (1) + status bar (1).
		vpHeight := max(m.height-5, 3)
		if !m.ready {
			m.vp = viewport.New(m.width-2, vpHeight)
			m.ready = true
		} else {
			m.vp.Width = m.width - 2
			m.vp.Height = vpHeight
		}
		m.refresh()
		return m, nil

	case replyMsg:
		m.appendBot(outgoing(msg))
		m.refresh()
		return m, m.waitForReply()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.Reset()
			m.lines = append(m.lines, userStyle.Render("you ")+text)
			m.refresh()
			return m, m.dispatch(text)
		}
	}

	var inputCmd, vpCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	m.vp, vpCmd = m.vp.Update(msg)
	return m, tea.Batch(inputCmd, vpCmd)
}

// dispatch runs the session handler off the UI goroutine. Replies come back
// through the sender's queue.
func (m chatModel) dispatch(text string) tea.Cmd {
	handle := m.handle
	return func() tea.Msg {
		handle(context.Background(), localUserID, text)
		return nil
	}
}

func (m *chatModel) appendBot(o outgoing) {
	for _, line := range strings.Split(renderMarkup(o.text), "\n") {
		m.lines = append(m.lines, botStyle.Render("bot ")+line)
	}
	if len(o.keyboard) > 0 {
		var buttons []string
		for _, row := range o.keyboard {
			buttons = append(buttons, strings.Join(row, " | "))
		}
		m.lines = append(m.lines, hintStyle.Render("    ["+strings.Join(buttons, " | ")+"]"))
	}
	m.lines = append(m.lines, "")
}

func (m *chatModel) refresh() {
	if !m.ready {
		return
	}
	m.vp.SetContent(strings.Join(m.lines, "\n"))
	m.vp.GotoBottom()
}

func (m chatModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	transcript := borderStyle.Width(m.width - 2).Render(m.vp.View())
	statusBar := statusBarStyle.Width(m.width).Render(" enter send  ↑/↓ scroll  esc quit")
	return transcript + "\n" + m.input.View() + "\n" + statusBar
}

var tagPattern = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)

// renderMarkup flattens Telegram HTML for terminal display: tags are
// dropped and entities decoded. Link targets survive because the dialog
// always includes the URL in the href of a plain-text anchor.
func renderMarkup(s string) string {
	s = tagPattern.ReplaceAllStringFunc(s, func(tag string) string {
		if strings.HasPrefix(tag, "<a ") {
			if url := extractHref(tag); url != "" {
				return url + " "
			}
		}
		return ""
	})
	return html.UnescapeString(s)
}

func extractHref(tag string) string {
	for _, quote := range []string{"'", `"`} {
		marker := "href=" + quote
		start := strings.Index(tag, marker)
		if start < 0 {
			continue
		}
		rest := tag[start+len(marker):]
		if end := strings.Index(rest, quote); end >= 0 {
			return rest[:end]
		}
	}
	return ""
}

// Run launches the chat program and blocks until the user quits.
func Run(handle HandleFunc, sender *Sender) error {
	p := tea.NewProgram(newChatModel(handle, sender), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
