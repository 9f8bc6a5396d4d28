package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/console"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
)

// Answer is the player's reply to a yes/no prompt
type Answer struct {
	Yes  bool
	Quit bool
}

// Messages sent from the game goroutine to the model
type (
	handMsg     struct{ view game.HandView }
	logMsg      struct{ text string }
	promptMsg   struct{ text string }
	finishedMsg struct{}
)

// Model is the Bubble Tea model for the blackjack table
type Model struct {
	logger *log.Logger

	// UI components
	logViewport viewport.Model
	answerInput textinput.Model

	// State
	gameLog  []string
	hands    map[string]game.HandView
	order    []string // hand owners in the order first seen
	prompt   string
	answers  chan Answer
	finished bool
	quitting bool

	// Dimensions
	width  int
	height int

	// Test mode
	testMode    bool
	capturedLog []string
}

// NewModel creates a new TUI model
func NewModel(logger *log.Logger) *Model {
	return NewModelWithOptions(logger, false)
}

// NewModelWithOptions creates a new TUI model with test mode option
func NewModelWithOptions(logger *log.Logger, testMode bool) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "y / n"
	ti.Focus()
	ti.CharLimit = 16
	ti.Width = 20
	ti.PromptStyle = PromptStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &Model{
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		answerInput: ti,
		hands:       make(map[string]game.HandView),
		answers:     make(chan Answer, 8),
		testMode:    testMode,
	}
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case handMsg:
		m.setHand(msg.view)
		m.AddLogEntry(formatHand(msg.view))
		return m, nil

	case logMsg:
		m.AddLogEntry(msg.text)
		return m, nil

	case promptMsg:
		m.prompt = msg.text
		return m, nil

	case finishedMsg:
		m.finished = true
		m.prompt = ""
		m.AddLogEntry(InfoStyle.Render("Press any key to exit"))
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		if m.finished {
			m.quitting = true
			return m, tea.Quit
		}

		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			m.sendAnswer(Answer{Quit: true})
			return m, tea.Quit
		case "enter":
			m.submit(m.answerInput.Value())
			m.answerInput.SetValue("")
			return m, nil
		case "pgup":
			m.logViewport.HalfPageUp()
		case "pgdown":
			m.logViewport.HalfPageDown()
		}
	}

	var cmd tea.Cmd
	m.answerInput, cmd = m.answerInput.Update(msg)
	cmds = append(cmds, cmd)

	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit handles an entered line. Input is only meaningful while a prompt
// is pending.
func (m *Model) submit(input string) {
	if m.prompt == "" {
		return
	}

	yes, ok := console.ParseYesNo(input)
	if !ok {
		m.AddLogEntry(ErrorStyle.Render(console.InvalidAnswer))
		return
	}

	reply := "no"
	if yes {
		reply = "yes"
	}
	m.AddLogEntry(fmt.Sprintf("%s %s", m.prompt, reply))
	m.prompt = ""
	m.sendAnswer(Answer{Yes: yes})
}

func (m *Model) sendAnswer(a Answer) {
	select {
	case m.answers <- a:
	default:
		m.logger.Warn("Answer dropped, channel full", "quit", a.Quit)
	}
}

func (m *Model) setHand(v game.HandView) {
	if _, ok := m.hands[v.Owner]; !ok {
		m.order = append(m.order, v.Owner)
	}
	m.hands[v.Owner] = v
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(m.width-2, 1)).
		Render(actionContent)

	tableContent := m.renderTablePane()
	tableWidth := max(lipgloss.Width(tableContent), 30)
	paneHeight := max(m.height-actionHeight-4, 1)

	tablePane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(tableWidth).
		Height(paneHeight).
		Render(tableContent)

	m.logViewport.Width = max(m.width-tableWidth-4, 1)
	m.logViewport.Height = paneHeight
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))

	logPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, tablePane)
	return lipgloss.JoinVertical(lipgloss.Left, topRow, actionPane)
}

// renderTablePane shows the latest view of every hand
func (m *Model) renderTablePane() string {
	var content strings.Builder
	content.WriteString(HeaderStyle.Render(" ♠ ♥ Blackjack ♦ ♣ "))
	content.WriteString("\n\n")

	if len(m.order) == 0 {
		content.WriteString(InfoStyle.Render("Waiting for the deal..."))
		return content.String()
	}

	for _, owner := range m.order {
		v := m.hands[owner]
		content.WriteString(HandOwnerStyle.Render(owner))
		if v.TotalKnown {
			content.WriteString("  ")
			content.WriteString(HandValueStyle.Render(fmt.Sprintf("%d", v.Total)))
		}
		content.WriteString("\n")
		content.WriteString(formatCards(v))
		content.WriteString("\n\n")
	}
	return content.String()
}

func (m *Model) renderActionPane() string {
	var content strings.Builder

	switch {
	case m.finished:
		content.WriteString(InfoStyle.Render("Game over. Press any key to exit."))
	case m.prompt != "":
		content.WriteString(PromptStyle.Render(m.prompt + " (Y/N)"))
		content.WriteString("\n")
		content.WriteString(m.answerInput.View())
	default:
		content.WriteString(InfoStyle.Render("Dealing..."))
	}

	content.WriteString("\n")
	content.WriteString(InfoStyle.Render("Enter to answer • PgUp/PgDn scroll log • Ctrl+C to quit"))
	return content.String()
}

// formatHand is the log line for a hand update
func formatHand(v game.HandView) string {
	line := HandOwnerStyle.Render(v.Owner+"'s hand:") + " " + formatCards(v)
	if v.TotalKnown {
		line += " " + HandValueStyle.Render(fmt.Sprintf("(%d)", v.Total))
	}
	return line
}

// formatCards formats cards with colors, keeping a hidden hole card face down
func formatCards(v game.HandView) string {
	if len(v.Cards) == 0 {
		return "[]"
	}

	formatted := make([]string, 0, len(v.Cards))
	for i, card := range v.Cards {
		if i == 0 && v.HideFirst {
			formatted = append(formatted, HiddenCardStyle.Render("??"))
			continue
		}
		formatted = append(formatted, formatCard(card))
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

func formatCard(card deck.Card) string {
	if card.IsRed() {
		return RedCardStyle.Render(card.String())
	}
	return BlackCardStyle.Render(card.String())
}

// AddLogEntry adds an entry to the game log
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)

	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return
	}

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Answers returns the channel the model writes player answers to
func (m *Model) Answers() <-chan Answer {
	return m.answers
}

// Prompt returns the pending prompt, or "" if none
func (m *Model) Prompt() string {
	return m.prompt
}

// Hand returns the latest view shown for owner
func (m *Model) Hand(owner string) (game.HandView, bool) {
	v, ok := m.hands[owner]
	return v, ok
}

// IsTestMode returns whether the TUI is in test mode
func (m *Model) IsTestMode() bool {
	return m.testMode
}

// GetCapturedLog returns the captured log entries (test mode only)
func (m *Model) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	result := make([]string, len(m.capturedLog))
	copy(result, m.capturedLog)
	return result
}

// InjectAnswer queues an answer programmatically (test mode only)
func (m *Model) InjectAnswer(a Answer) error {
	if !m.testMode {
		return fmt.Errorf("answer injection only available in test mode")
	}

	select {
	case m.answers <- a:
		return nil
	default:
		return fmt.Errorf("answer channel full")
	}
}
