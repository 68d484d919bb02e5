/*
Package realtime
File: client.go
Description:
    The realtime synchronization client. One persistent WebSocket connection
    carries all request/ack pairs plus the server's push events.

    Session machine: disconnected -> connected (no match) -> active
    (lobby|playing|ended) -> left/disconnected. Mutating calls are
    request/ack with a uniform timeout; action:submit additionally carries an
    idempotency token and the last-known stateVersion (optimistic
    concurrency — conflicts are rejected by the server, not prevented here).

    On a reconnect while a session is active the client proactively resyncs
    rather than trusting stale local state.
*/

package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// DefaultRequestTimeout bounds every request/ack call.
	DefaultRequestTimeout = 7 * time.Second

	// EnvRealtimeURL names the environment variable carrying the endpoint.
	EnvRealtimeURL = "NEXUS_REALTIME_URL"

	reconnectDelay = 2 * time.Second
)

// Listeners receives the server's push events. Pushes are fire-and-forget:
// no acknowledgment, no ordering guarantee relative to in-flight acks —
// callers reconcile by stateVersion.
type Listeners struct {
	OnSnapshot       func(PublicMatchState)
	OnPatch          func(Patch)
	OnEnded          func(PublicMatchState)
	OnActionRejected func(ServerError)
	OnConnection     func(connected bool)
}

// Client is a constructible realtime client. Create one per application
// context (or per test) and inject it where needed; there is deliberately no
// package-level shared instance.
type Client struct {
	// RequestTimeout overrides DefaultRequestTimeout when set.
	RequestTimeout time.Duration

	url       string
	listeners Listeners

	mu      sync.Mutex
	conn    *websocket.Conn
	pending map[string]chan Envelope
	closed  bool

	// Session fields, guarded by mu. sessionPending marks the window between
	// issuing a create/quick/join request and recording its ack, so a
	// transport drop inside that window still triggers reconnection.
	matchID        string
	playerID       string
	sessionActive  bool
	sessionPending bool
	latestVersion  int

	writeMu sync.Mutex
}

// NewClient builds a client for the given endpoint. An empty url falls back
// to the NEXUS_REALTIME_URL environment variable.
func NewClient(url string) *Client {
	if url == "" {
		url = os.Getenv(EnvRealtimeURL)
	}
	return &Client{
		url:     url,
		pending: make(map[string]chan Envelope),
	}
}

// SetListeners installs the push callbacks. Call before Connect.
func (c *Client) SetListeners(l Listeners) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = l
}

// Connect dials the realtime endpoint and starts the read pump.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("realtime: client is closed")
	}
	if c.conn != nil {
		c.mu.Unlock()
		return nil
	}
	url := c.url
	c.mu.Unlock()

	if url == "" {
		return fmt.Errorf("realtime: no endpoint configured (set %s)", EnvRealtimeURL)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("realtime: dial %s: %w", url, err)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return fmt.Errorf("realtime: client is closed")
	}
	if c.conn != nil {
		// Lost a dial race; the established connection wins.
		c.mu.Unlock()
		conn.Close()
		return nil
	}
	c.conn = conn
	listeners := c.listeners
	c.mu.Unlock()

	if listeners.OnConnection != nil {
		listeners.OnConnection(true)
	}

	go c.readPump(conn)
	return nil
}

// Close tears down the connection and stops any reconnection. In-flight
// requests are left to time out.
func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

// readPump pumps frames off the socket until it fails, then hands over to
// the reconnect loop when a session is still active.
func (c *Client) readPump(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("realtime: read error: %v", err)
			}
			break
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			log.Printf("realtime: bad frame: %v", err)
			continue
		}
		c.dispatch(env)
	}

	conn.Close()

	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	closed := c.closed
	active := c.sessionActive || c.sessionPending
	listeners := c.listeners
	c.mu.Unlock()

	if listeners.OnConnection != nil && !closed {
		listeners.OnConnection(false)
	}
	if !closed && active {
		go c.reconnect()
	}
}

// reconnect redials until it succeeds or the client closes, then resyncs the
// active match so the caller never renders stale state.
func (c *Client) reconnect() {
	for {
		c.mu.Lock()
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return
		}

		if err := c.Connect(context.Background()); err != nil {
			time.Sleep(reconnectDelay)
			continue
		}

		// The session ack may still be in flight on the requesting
		// goroutine; the resync needs the recorded match ID.
		for i := 0; i < 100 && c.MatchID() == ""; i++ {
			time.Sleep(10 * time.Millisecond)
		}

		state, err := c.Resync()
		if err != nil {
			// Stale until the caller retries; resync carries no backoff.
			log.Printf("realtime: resync after reconnect failed: %v", err)
			return
		}

		c.mu.Lock()
		onSnapshot := c.listeners.OnSnapshot
		c.mu.Unlock()
		if onSnapshot != nil {
			onSnapshot(state)
		}
		return
	}
}

// dispatch routes one inbound frame: acks complete their pending request,
// pushes fan out to the listeners.
func (c *Client) dispatch(env Envelope) {
	if env.Type == EventAck {
		c.mu.Lock()
		ch := c.pending[env.ID]
		delete(c.pending, env.ID)
		c.mu.Unlock()
		if ch != nil {
			ch <- env
		}
		return
	}

	c.mu.Lock()
	listeners := c.listeners
	c.mu.Unlock()

	switch env.Type {
	case PushStateSnapshot:
		var state PublicMatchState
		if json.Unmarshal(env.Payload, &state) == nil {
			c.observeVersion(state.StateVersion)
			if listeners.OnSnapshot != nil {
				listeners.OnSnapshot(state)
			}
		}
	case PushStatePatch:
		var patch Patch
		if json.Unmarshal(env.Payload, &patch) == nil {
			c.observeVersion(patch.StateVersion)
			if listeners.OnPatch != nil {
				listeners.OnPatch(patch)
			}
		}
	case PushMatchEnded:
		var state PublicMatchState
		if json.Unmarshal(env.Payload, &state) == nil {
			c.observeVersion(state.StateVersion)
			if listeners.OnEnded != nil {
				listeners.OnEnded(state)
			}
		}
	case PushActionRejected:
		var serr ServerError
		if json.Unmarshal(env.Payload, &serr) == nil {
			if listeners.OnActionRejected != nil {
				listeners.OnActionRejected(serr)
			}
		}
	default:
		log.Printf("realtime: unknown push %q", env.Type)
	}
}

// request performs one request/ack round trip under the uniform timeout.
func (c *Client) request(event string, payload any) (json.RawMessage, error) {
	c.mu.Lock()
	conn := c.conn
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return nil, fmt.Errorf("realtime: client is closed")
	}
	if conn == nil {
		return nil, fmt.Errorf("realtime: not connected")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("realtime: encode %s: %w", event, err)
	}

	id := uuid.NewString()
	ch := make(chan Envelope, 1)
	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	frame := Envelope{Type: event, ID: id, Payload: body}
	c.writeMu.Lock()
	err = conn.WriteJSON(frame)
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("realtime: send %s: %w", event, err)
	}

	timeout := c.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	select {
	case env := <-ch:
		if env.OK != nil && *env.OK {
			return env.Data, nil
		}
		if env.Error != nil {
			return nil, fmt.Errorf("%s", env.Error.Message)
		}
		return nil, fmt.Errorf("realtime: %s rejected without detail", event)
	case <-time.After(timeout):
		return nil, fmt.Errorf("realtime: %s timed out after %s", event, timeout)
	}
}

// beginSession records the acked session coordinates.
func (c *Client) beginSession(playerID string, state PublicMatchState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.matchID = state.MatchID
	c.playerID = playerID
	c.sessionActive = true
	c.sessionPending = false
	if state.StateVersion > c.latestVersion {
		c.latestVersion = state.StateVersion
	}
}

// CreateMatch opens a new match and joins it as host.
func (c *Client) CreateMatch(name string, maxPlayers int) (SessionAck, error) {
	return c.startSession(EventMatchCreate, CreateMatchRequest{Name: name, MaxPlayers: maxPlayers})
}

// QuickMatch joins any open match, creating one when none exists.
func (c *Client) QuickMatch(name string, maxPlayers int) (SessionAck, error) {
	return c.startSession(EventMatchQuick, CreateMatchRequest{Name: name, MaxPlayers: maxPlayers})
}

func (c *Client) startSession(event string, payload any) (SessionAck, error) {
	// The session must be visible to the read pump before the ack round
	// trip: the transport can drop between the server's ack and our
	// bookkeeping, and that drop still has to reconnect.
	c.mu.Lock()
	c.sessionPending = true
	c.mu.Unlock()

	clearPending := func() {
		c.mu.Lock()
		c.sessionPending = false
		c.mu.Unlock()
	}

	data, err := c.request(event, payload)
	if err != nil {
		clearPending()
		return SessionAck{}, err
	}
	var ack SessionAck
	if err := json.Unmarshal(data, &ack); err != nil {
		clearPending()
		return SessionAck{}, fmt.Errorf("realtime: decode %s ack: %w", event, err)
	}
	c.beginSession(ack.PlayerID, ack.State)
	return ack, nil
}

// JoinMatch joins an existing match by code. Match IDs are normalized to
// upper case before sending.
func (c *Client) JoinMatch(matchID, name string) (SessionAck, error) {
	return c.startSession(EventMatchJoin, JoinMatchRequest{
		MatchID: strings.ToUpper(matchID),
		Name:    name,
	})
}

// LeaveMatch leaves the active match and clears the session.
func (c *Client) LeaveMatch() (PublicMatchState, error) {
	c.mu.Lock()
	matchID := c.matchID
	c.mu.Unlock()

	data, err := c.request(EventMatchLeave, LeaveMatchRequest{MatchID: matchID})
	if err != nil {
		return PublicMatchState{}, err
	}
	var ack StateAck
	if err := json.Unmarshal(data, &ack); err != nil {
		return PublicMatchState{}, fmt.Errorf("realtime: decode leave ack: %w", err)
	}

	c.mu.Lock()
	c.matchID = ""
	c.playerID = ""
	c.sessionActive = false
	c.latestVersion = 0
	c.mu.Unlock()

	return ack.State, nil
}

// StartMatch asks the server to start the active match (host only).
func (c *Client) StartMatch() (PublicMatchState, error) {
	c.mu.Lock()
	req := StartMatchRequest{MatchID: c.matchID, PlayerID: c.playerID}
	c.mu.Unlock()
	return c.stateCall(EventMatchStart, req)
}

// SetReady flips this player's lobby ready flag.
func (c *Client) SetReady(ready bool) (PublicMatchState, error) {
	c.mu.Lock()
	req := ReadyRequest{MatchID: c.matchID, PlayerID: c.playerID, Ready: ready}
	c.mu.Unlock()
	return c.stateCall(EventMatchReady, req)
}

// Resync fetches an authoritative snapshot of the active match.
func (c *Client) Resync() (PublicMatchState, error) {
	c.mu.Lock()
	req := ResyncRequest{MatchID: c.matchID}
	c.mu.Unlock()
	return c.stateCall(EventStateResync, req)
}

func (c *Client) stateCall(event string, payload any) (PublicMatchState, error) {
	data, err := c.request(event, payload)
	if err != nil {
		return PublicMatchState{}, err
	}
	var ack StateAck
	if err := json.Unmarshal(data, &ack); err != nil {
		return PublicMatchState{}, fmt.Errorf("realtime: decode %s ack: %w", event, err)
	}
	c.observeVersion(ack.State.StateVersion)
	return ack.State, nil
}

// SubmitAction submits one game action. Each call carries a fresh
// idempotency token and the last-known stateVersion; the server's ack moves
// the version forward. A rejected or timed-out submit leaves the version
// untouched.
func (c *Client) SubmitAction(action Action) (SubmitAck, error) {
	c.mu.Lock()
	req := SubmitActionRequest{
		MatchID:           c.matchID,
		PlayerID:          c.playerID,
		ActionID:          uuid.NewString(),
		Action:            action,
		KnownStateVersion: c.latestVersion,
	}
	c.mu.Unlock()

	data, err := c.request(EventActionSubmit, req)
	if err != nil {
		return SubmitAck{}, err
	}
	var ack SubmitAck
	if err := json.Unmarshal(data, &ack); err != nil {
		return SubmitAck{}, fmt.Errorf("realtime: decode submit ack: %w", err)
	}
	if ack.Patch != nil {
		c.observeVersion(ack.Patch.StateVersion)
	}
	if ack.State != nil {
		c.observeVersion(ack.State.StateVersion)
	}
	return ack, nil
}

// observeVersion advances the stored stateVersion monotonically.
func (c *Client) observeVersion(v int) {
	c.mu.Lock()
	if v > c.latestVersion {
		c.latestVersion = v
	}
	c.mu.Unlock()
}

// LatestStateVersion returns the newest authoritative version seen so far.
func (c *Client) LatestStateVersion() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latestVersion
}

// MatchID returns the active match ID, "" outside a session.
func (c *Client) MatchID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.matchID
}

// PlayerID returns this client's seat ID, "" outside a session.
func (c *Client) PlayerID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playerID
}
