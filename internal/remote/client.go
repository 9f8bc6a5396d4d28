package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/blackjack/internal/game"
)

// Client plays a remote session through local collaborators
type Client struct {
	conn      *websocket.Conn
	logger    *log.Logger
	sessionID string
}

// Dial connects to a /play endpoint, e.g. ws://localhost:8080/play
func Dial(ctx context.Context, url string, logger *log.Logger) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	return &Client{conn: conn, logger: logger.WithPrefix("client")}, nil
}

type readResult struct {
	msg Message
	err error
}

// readLoop keeps reading so pings are answered while a prompt is blocked
// on local input.
func (c *Client) readLoop(out chan<- readResult, done <-chan struct{}) {
	for {
		var msg Message
		err := c.conn.ReadJSON(&msg)
		select {
		case out <- readResult{msg: msg, err: err}:
		case <-done:
			return
		}
		if err != nil {
			return
		}
	}
}

// Play relays the remote session to display and answers prompts from input
// until the server ends the session. Quitting locally closes the
// connection and returns game.ErrQuit.
func (c *Client) Play(ctx context.Context, input game.InputProvider, display game.Display) error {
	stop := context.AfterFunc(ctx, func() { _ = c.conn.Close() })
	defer stop()

	incoming := make(chan readResult)
	done := make(chan struct{})
	defer close(done)
	go c.readLoop(incoming, done)

	for {
		var res readResult
		select {
		case res = <-incoming:
		case <-ctx.Done():
			return ctx.Err()
		}

		msg, err := res.msg, res.err
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}

		switch msg.Type {
		case MessageTypeWelcome:
			c.sessionID = msg.Session
			c.logger.Info("Joined session", "session", msg.Session)

		case MessageTypeHand:
			if msg.Hand == nil {
				c.logger.Warn("Hand message without a hand")
				continue
			}
			view, err := msg.Hand.View()
			if err != nil {
				return fmt.Errorf("decode hand: %w", err)
			}
			display.ShowHand(view)

		case MessageTypeMessage:
			display.ShowMessage(msg.Text)

		case MessageTypePrompt:
			yes, err := input.RequestYesNo(msg.Text)
			if err != nil {
				c.closeNormally()
				if errors.Is(err, game.ErrQuit) {
					return game.ErrQuit
				}
				return fmt.Errorf("answer prompt: %w", err)
			}
			if err := c.conn.WriteJSON(&Message{Type: MessageTypeAnswer, Yes: yes}); err != nil {
				return fmt.Errorf("send answer: %w", err)
			}

		case MessageTypeDone:
			c.closeNormally()
			return nil

		default:
			c.logger.Warn("Unexpected message type", "type", msg.Type)
		}
	}
}

func (c *Client) closeNormally() {
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// SessionID returns the ID the server assigned, once welcomed
func (c *Client) SessionID() string {
	return c.sessionID
}

// Close closes the underlying connection
func (c *Client) Close() error {
	return c.conn.Close()
}
