package remote

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/blackjack/internal/game"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 1024
)

var (
	// Time allowed to read the next frame from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	ErrConnectionClosed = errors.New("connection closed")
)

// Connection is one player's socket. It implements game.InputProvider and
// game.Display for the session running on the server side.
type Connection struct {
	conn       *websocket.Conn
	send       chan *Message
	answers    chan bool
	logger     *log.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	closeOnce  sync.Once
	pongWait   time.Duration
	pingPeriod time.Duration

	mu      sync.Mutex
	pending bool // a prompt is waiting for its answer
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:       conn,
		send:       make(chan *Message, 64),
		answers:    make(chan bool, 1),
		logger:     logger.WithPrefix("conn"),
		ctx:        ctx,
		cancel:     cancel,
		pongWait:   pongWait,
		pingPeriod: pingPeriod,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection is gone
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// RequestYesNo sends a prompt and waits for the client's answer. A closed
// connection returns game.ErrQuit.
func (c *Connection) RequestYesNo(prompt string) (bool, error) {
	c.setPending(true)
	if err := c.SendMessage(&Message{Type: MessageTypePrompt, Text: prompt}); err != nil {
		c.setPending(false)
		return false, game.ErrQuit
	}

	select {
	case yes := <-c.answers:
		c.logger.Debug("Answer received", "prompt", prompt, "yes", yes)
		return yes, nil
	case <-c.ctx.Done():
		c.setPending(false)
		return false, game.ErrQuit
	}
}

func (c *Connection) setPending(pending bool) {
	c.mu.Lock()
	c.pending = pending
	c.mu.Unlock()
}

// deliverAnswer hands an answer to the waiting prompt. Answers with no
// prompt outstanding are dropped.
func (c *Connection) deliverAnswer(yes bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pending {
		return false
	}
	c.pending = false
	c.answers <- yes
	return true
}

// ShowHand implements game.Display
func (c *Connection) ShowHand(v game.HandView) {
	if err := c.SendMessage(&Message{Type: MessageTypeHand, Hand: NewHandPayload(v)}); err != nil {
		c.logger.Debug("Dropped hand", "owner", v.Owner, "error", err)
	}
}

// ShowMessage implements game.Display
func (c *Connection) ShowMessage(text string) {
	if err := c.SendMessage(&Message{Type: MessageTypeMessage, Text: text}); err != nil {
		c.logger.Debug("Dropped message", "error", err)
	}
}

// Finish tells the client the session is over. The write pump closes the
// socket once the message is flushed.
func (c *Connection) Finish() {
	_ = c.SendMessage(&Message{Type: MessageTypeDone})
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		// Any frame proves the peer is alive
		_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))

		switch msg.Type {
		case MessageTypeAnswer:
			if !c.deliverAnswer(msg.Yes) {
				c.logger.Warn("Dropping answer with no prompt pending", "yes", msg.Yes)
			}
		default:
			c.logger.Warn("Unexpected message type", "type", msg.Type)
		}
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}
			if msg.Type == MessageTypeDone {
				closing := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session over")
				_ = c.conn.WriteMessage(websocket.CloseMessage, closing)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

var _ game.Collaborator = (*Connection)(nil)
