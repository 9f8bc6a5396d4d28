// Package console is the line-oriented terminal front end: it prints the
// table narration and reads yes/no answers from a reader.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
)

// InvalidAnswer is printed when the player types something other than yes or no
const InvalidAnswer = "Invalid input. Please enter Y or N."

// Console implements game.InputProvider and game.Display on plain streams
type Console struct {
	in     *bufio.Reader
	out    io.Writer
	logger *log.Logger
	styles styles
}

type styles struct {
	Header    lipgloss.Style
	Owner     lipgloss.Style
	RedCard   lipgloss.Style
	BlackCard lipgloss.Style
	Hidden    lipgloss.Style
	Value     lipgloss.Style
	Prompt    lipgloss.Style
	Error     lipgloss.Style
	Win       lipgloss.Style
	Lose      lipgloss.Style
	Plain     lipgloss.Style
}

// Option configures a Console
type Option func(*options)

type options struct {
	color   bool
	profile termenv.Profile
	logger  *log.Logger
}

// WithColor enables or disables ANSI styling. With colour enabled the
// profile is detected from the output stream.
func WithColor(enabled bool) Option {
	return func(o *options) {
		o.color = enabled
	}
}

// WithProfile forces a colour profile
func WithProfile(p termenv.Profile) Option {
	return func(o *options) {
		o.profile = p
	}
}

// WithLogger sets the logger for input diagnostics
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New creates a console reading answers from in and writing to out
func New(in io.Reader, out io.Writer, opts ...Option) *Console {
	o := &options{color: true, profile: -1, logger: log.NewWithOptions(io.Discard, log.Options{})}
	for _, opt := range opts {
		opt(o)
	}

	renderer := lipgloss.NewRenderer(out)
	switch {
	case !o.color:
		renderer.SetColorProfile(termenv.Ascii)
	case o.profile >= 0:
		renderer.SetColorProfile(o.profile)
	}

	return &Console{
		in:     bufio.NewReader(in),
		out:    out,
		logger: o.logger.WithPrefix("console"),
		styles: newStyles(renderer),
	}
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		Header:    r.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true),
		Owner:     r.NewStyle().Foreground(lipgloss.Color("#74B9FF")).Bold(true),
		RedCard:   r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		BlackCard: r.NewStyle().Foreground(lipgloss.Color("#FAFAFA")).Bold(true),
		Hidden:    r.NewStyle().Foreground(lipgloss.Color("#626262")),
		Value:     r.NewStyle().Foreground(lipgloss.Color("#FFD700")),
		Prompt:    r.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true),
		Error:     r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		Win:       r.NewStyle().Foreground(lipgloss.Color("#96CEB4")).Bold(true),
		Lose:      r.NewStyle().Foreground(lipgloss.Color("#FFEAA7")).Bold(true),
		Plain:     r.NewStyle(),
	}
}

// RequestYesNo prompts until the player answers yes or no. End of input
// returns game.ErrQuit.
func (c *Console) RequestYesNo(prompt string) (bool, error) {
	for {
		fmt.Fprint(c.out, c.styles.Prompt.Render(prompt+" (Y/N):")+" ")

		line, err := c.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, fmt.Errorf("read answer: %w", err)
		}

		answer, ok := ParseYesNo(line)
		if ok {
			c.logger.Debug("Answer received", "prompt", prompt, "yes", answer)
			return answer, nil
		}

		if errors.Is(err, io.EOF) {
			fmt.Fprintln(c.out)
			return false, game.ErrQuit
		}

		c.logger.Debug("Rejected answer", "input", strings.TrimSpace(line))
		fmt.Fprintln(c.out, c.styles.Error.Render(InvalidAnswer))
	}
}

// ParseYesNo accepts y, yes, n and no in any case
func ParseYesNo(s string) (answer, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	default:
		return false, false
	}
}

// ShowHand prints one hand, keeping the hole card face down when asked
func (c *Console) ShowHand(v game.HandView) {
	var sb strings.Builder
	sb.WriteString(c.styles.Owner.Render(v.Owner + "'s hand:"))
	sb.WriteString(" ")

	if len(v.Cards) == 0 {
		sb.WriteString("empty")
		fmt.Fprintln(c.out, sb.String())
		return
	}

	parts := make([]string, 0, len(v.Cards))
	for i, card := range v.Cards {
		if i == 0 && v.HideFirst {
			parts = append(parts, c.styles.Hidden.Render(game.HiddenCard))
			continue
		}
		parts = append(parts, c.card(card))
	}
	sb.WriteString(strings.Join(parts, ", "))

	if v.TotalKnown {
		sb.WriteString(" - ")
		sb.WriteString(c.styles.Value.Render(fmt.Sprintf("Value: %d", v.Total)))
	}
	fmt.Fprintln(c.out, sb.String())
}

func (c *Console) card(card deck.Card) string {
	if card.IsRed() {
		return c.styles.RedCard.Render(card.Describe())
	}
	return c.styles.BlackCard.Render(card.Describe())
}

// ShowMessage prints a line of narration
func (c *Console) ShowMessage(text string) {
	style := c.styleFor(text)
	if strings.HasPrefix(text, "---") {
		fmt.Fprintln(c.out)
	}
	fmt.Fprintln(c.out, style.Render(text))
}

func (c *Console) styleFor(text string) lipgloss.Style {
	switch {
	case strings.HasPrefix(text, "---"), strings.HasPrefix(text, "==="):
		return c.styles.Header
	case strings.Contains(text, "You win"), strings.Contains(text, "busts!"):
		return c.styles.Win
	case strings.Contains(text, "You lose"), strings.Contains(text, " wins with "):
		return c.styles.Lose
	default:
		return c.styles.Plain
	}
}

var _ game.Collaborator = (*Console)(nil)
