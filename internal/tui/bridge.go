package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/game"
)

// Sender delivers messages to a running model. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// Bridge connects a game running on its own goroutine to the TUI model.
// It implements game.InputProvider and game.Display.
type Bridge struct {
	sender  Sender
	answers <-chan Answer
	logger  *log.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// NewBridge creates a bridge sending to sender and reading the model's answers
func NewBridge(sender Sender, model *Model, logger *log.Logger) *Bridge {
	return &Bridge{
		sender:  sender,
		answers: model.Answers(),
		logger:  logger.WithPrefix("bridge"),
		done:    make(chan struct{}),
	}
}

// RequestYesNo shows the prompt and blocks until the player answers.
// Quitting the UI returns game.ErrQuit.
func (b *Bridge) RequestYesNo(prompt string) (bool, error) {
	b.sender.Send(promptMsg{text: prompt})

	select {
	case a := <-b.answers:
		if a.Quit {
			b.logger.Debug("Player quit at prompt", "prompt", prompt)
			return false, game.ErrQuit
		}
		return a.Yes, nil
	case <-b.done:
		return false, game.ErrQuit
	}
}

// ShowHand updates the table pane and logs the hand
func (b *Bridge) ShowHand(v game.HandView) {
	b.sender.Send(handMsg{view: v})
}

// ShowMessage appends a line of narration to the log
func (b *Bridge) ShowMessage(text string) {
	b.sender.Send(logMsg{text: text})
}

// Finish tells the model the game is over
func (b *Bridge) Finish() {
	b.sender.Send(finishedMsg{})
}

// Close unblocks any pending prompt
func (b *Bridge) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}

var _ game.Collaborator = (*Bridge)(nil)

// Play runs fn against a full-screen table UI. fn runs on its own
// goroutine and receives the bridge as its collaborator. Play returns when
// the UI exits, with fn's error if it finished.
func Play(logger *log.Logger, fn func(game.Collaborator) error, opts ...tea.ProgramOption) error {
	model := NewModel(logger)
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	program := tea.NewProgram(model, opts...)
	bridge := NewBridge(program, model, logger)

	errCh := make(chan error, 1)
	go func() {
		err := fn(bridge)
		bridge.Finish()
		errCh <- err
	}()

	_, runErr := program.Run()
	// A game still in progress sees ErrQuit at its next prompt
	bridge.Close()
	err := <-errCh
	if runErr != nil {
		return runErr
	}
	return err
}
