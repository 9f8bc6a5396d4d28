package remote

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/sessionid"
)

func newTestServer(t *testing.T, player, dealer, draws string) (*Server, string) {
	t.Helper()

	srv := NewServer("", game.QuietLogger(),
		WithSourceFactory(func() game.CardSource {
			return game.StackRound(player, dealer, draws)
		}),
		WithSessionOptions(game.WithoutBanner()),
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return srv, "ws" + strings.TrimPrefix(ts.URL, "http") + "/play"
}

func TestRemoteSessionEndToEnd(t *testing.T) {
	srv, url := newTestServer(t, "Th8c", "Tc7d", "")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Dial(ctx, url, game.QuietLogger())
	require.NoError(t, err)
	defer client.Close()

	input := game.NewScriptedInput(false, false)
	display := &game.RecordingDisplay{}
	require.NoError(t, client.Play(ctx, input, display))

	assert.Equal(t, []string{game.HitPrompt, game.PlayAgainPrompt}, input.Prompts)
	assert.NoError(t, sessionid.Validate(client.SessionID()))
	assert.Contains(t, display.Messages, "You stand with 18")
	assert.Contains(t, display.Messages, "You win with 18 against Dealer's 17!")
	assert.Equal(t, game.Farewell, display.LastMessage())

	dealer := display.HandsFor("Dealer")
	require.NotEmpty(t, dealer)
	assert.True(t, dealer[0].HideFirst)
	assert.Equal(t, deck.Card{}, dealer[0].Cards[0], "hole card value is not sent")
	last := dealer[len(dealer)-1]
	assert.False(t, last.HideFirst)
	assert.Equal(t, 17, last.Total)

	assert.Eventually(t, func() bool { return srv.ConnectionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestRemoteClientQuit(t *testing.T) {
	srv, url := newTestServer(t, "Th8c", "Tc7d", "")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Dial(ctx, url, game.QuietLogger())
	require.NoError(t, err)
	defer client.Close()

	err = client.Play(ctx, game.NewScriptedInput(), game.NopDisplay{})
	assert.True(t, errors.Is(err, game.ErrQuit))

	assert.Eventually(t, func() bool { return srv.ConnectionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestRemoteProtocol(t *testing.T) {
	_, url := newTestServer(t, "Th8c", "Tc7d", "")

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var welcome Message
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, MessageTypeWelcome, welcome.Type)
	assert.NoError(t, sessionid.Validate(welcome.Session))

	var hidden *HandPayload
	for {
		var msg Message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == MessageTypeHand && msg.Hand.Owner == "Dealer" && hidden == nil {
			hidden = msg.Hand
		}
		if msg.Type == MessageTypePrompt {
			assert.Equal(t, game.HitPrompt, msg.Text)
			break
		}
	}

	require.NotNil(t, hidden)
	assert.Equal(t, []string{HiddenCard, "7d"}, hidden.Cards)
	assert.True(t, hidden.HideFirst)
	assert.False(t, hidden.TotalKnown)
	assert.Zero(t, hidden.Total)

	require.NoError(t, conn.WriteJSON(Message{Type: MessageTypeAnswer, Yes: false}))

	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageTypeMessage, msg.Type)
	assert.Equal(t, "You stand with 18", msg.Text)
}

func TestServeStopsOnCancel(t *testing.T) {
	srv := NewServer("", game.QuietLogger(),
		WithSourceFactory(func() game.CardSource {
			return game.StackRound("Th8c", "Tc7d", "")
		}),
	)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/play", nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Eventually(t, func() bool { return srv.ConnectionCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Zero(t, srv.ConnectionCount())
}

func TestHealth(t *testing.T) {
	srv := NewServer("", game.QuietLogger())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestHandPayloadView(t *testing.T) {
	t.Parallel()

	h := game.NewHand("Dealer")
	for _, c := range deck.MustParseCards("AsTd") {
		h.AddCard(c)
	}

	view, err := NewHandPayload(h.View(false)).View()
	require.NoError(t, err)
	assert.Equal(t, h.View(false), view)

	_, err = (&HandPayload{Owner: "Player", Cards: []string{"Zz"}}).View()
	assert.Error(t, err)

	_, err = (&HandPayload{Owner: "Player", Cards: []string{"As", HiddenCard}}).View()
	assert.Error(t, err)
}

// slowInput answers every prompt after delay
type slowInput struct {
	delay   time.Duration
	answers []bool
}

func (s *slowInput) RequestYesNo(prompt string) (bool, error) {
	time.Sleep(s.delay)
	if len(s.answers) == 0 {
		return false, game.ErrQuit
	}
	yes := s.answers[0]
	s.answers = s.answers[1:]
	return yes, nil
}

func shortenKeepalive(t *testing.T, wait time.Duration) {
	t.Helper()
	oldWait, oldPeriod := pongWait, pingPeriod
	pongWait, pingPeriod = wait, wait/4
	t.Cleanup(func() { pongWait, pingPeriod = oldWait, oldPeriod })
}

func TestSlowAnswerKeepsSessionAlive(t *testing.T) {
	shortenKeepalive(t, 200*time.Millisecond)
	srv, url := newTestServer(t, "Th8c", "Tc7d", "")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := Dial(ctx, url, game.QuietLogger())
	require.NoError(t, err)
	defer client.Close()

	// Several keepalive windows pass while the player decides
	input := &slowInput{delay: time.Second, answers: []bool{false, false}}
	display := &game.RecordingDisplay{}
	require.NoError(t, client.Play(ctx, input, display))

	assert.Contains(t, display.Messages, "You stand with 18")
	assert.Contains(t, display.Messages, "You win with 18 against Dealer's 17!")
	assert.Equal(t, game.Farewell, display.LastMessage())
	assert.Eventually(t, func() bool { return srv.ConnectionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestPlayRejectedAfterShutdown(t *testing.T) {
	srv, url := newTestServer(t, "Th8c", "Tc7d", "")
	srv.closeAll()

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	waited := make(chan struct{})
	go func() {
		srv.sessions.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(2 * time.Second):
		t.Fatal("rejected connection left a session counted")
	}
}

func TestAnswerWithoutPromptIsDropped(t *testing.T) {
	t.Parallel()

	c := NewConnection(nil, game.QuietLogger())
	assert.False(t, c.deliverAnswer(true), "no prompt outstanding")

	result := make(chan bool, 1)
	go func() {
		yes, err := c.RequestYesNo(game.HitPrompt)
		assert.NoError(t, err)
		result <- yes
	}()

	require.Eventually(t, func() bool { return c.deliverAnswer(false) }, 2*time.Second, time.Millisecond)
	assert.False(t, c.deliverAnswer(true), "second answer to one prompt")

	select {
	case yes := <-result:
		assert.False(t, yes)
	case <-time.After(2 * time.Second):
		t.Fatal("prompt was not answered")
	}
	assert.Empty(t, c.answers, "no answer carried over to the next prompt")

	msg := <-c.send
	assert.Equal(t, MessageTypePrompt, msg.Type)
	assert.Equal(t, game.HitPrompt, msg.Text)
}
