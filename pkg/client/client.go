// Package client implements the participant side of the synchronization
// protocol: a channel client that correlates requests with acknowledgments
// over one websocket, and a per-discussion session that mirrors the
// authoritative document from server broadcasts.
package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/sugit/boardsync/internal/modules/core"
	"github.com/sugit/boardsync/internal/modules/discussion/domain"
	"github.com/sugit/boardsync/internal/protocol"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ProtocolError is a failure acknowledgment surfaced to the caller. Code is
// the protocol error code from the ack, or CONNECTION_ERROR when no ack ever
// arrived.
type ProtocolError struct {
	Code string
}

func (e *ProtocolError) Error() string {
	return e.Code
}

func IsConnectionError(err error) bool {
	protocolErr, ok := err.(*ProtocolError)
	return ok && protocolErr.Code == core.ErrorCodeConnection
}

type Option func(*Client)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client owns one websocket to the synchronization server. It is safe for
// concurrent use; requests from any goroutine are correlated with their
// acknowledgment by envelope id. On connection loss every in-flight request
// fails with CONNECTION_ERROR and the client redials with exponential
// backoff; open sessions then re-synchronize with Join+Get instead of
// replaying actions.
type Client struct {
	url    string
	logger *zap.Logger

	lifetime context.Context
	shutdown context.CancelFunc

	mu        sync.Mutex
	socket    *websocket.Conn
	sessionID string
	connected bool
	pending   map[string]chan protocol.Ack
	sessions  map[*DiscussionSession]struct{}

	helloed chan struct{}
}

// Dial connects, waits for the server's hello (which carries the participant
// identity for this connection), and starts servicing the channel.
func Dial(ctx context.Context, url string, opts ...Option) (*Client, error) {
	lifetime, shutdown := context.WithCancel(context.Background())

	c := &Client{
		url:      url,
		logger:   zap.NewNop(),
		lifetime: lifetime,
		shutdown: shutdown,
		pending:  make(map[string]chan protocol.Ack),
		sessions: make(map[*DiscussionSession]struct{}),
		helloed:  make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.connect(ctx); err != nil {
		shutdown()
		return nil, err
	}

	go c.readLoop()

	select {
	case <-c.helloed:
	case <-ctx.Done():
		_ = c.Close()
		return nil, ctx.Err()
	}

	return c, nil
}

func (c *Client) connect(ctx context.Context) error {
	socket, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.socket = socket
	c.connected = true
	c.mu.Unlock()

	return nil
}

// SessionID is the ephemeral participant identity the server bound to this
// connection. It changes after every reconnect.
func (c *Client) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.sessionID
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.connected
}

func (c *Client) Close() error {
	c.shutdown()

	c.mu.Lock()
	socket := c.socket
	c.connected = false
	c.mu.Unlock()

	if socket != nil {
		return socket.Close()
	}

	return nil
}

// CreateDiscussion asks the server for a fresh discussion and returns its id.
func (c *Client) CreateDiscussion(ctx context.Context, name string) (string, error) {
	ack, err := c.request(ctx, protocol.TypeCreateDiscussion, protocol.CreateDiscussionRequest{Name: name})
	if err != nil {
		return "", err
	}

	return ack.DiscussionID, nil
}

// JoinDiscussion subscribes this connection to the discussion's broadcasts.
func (c *Client) JoinDiscussion(ctx context.Context, discussionID string) error {
	_, err := c.request(ctx, protocol.TypeJoinDiscussion, protocol.JoinDiscussionRequest{DiscussionID: discussionID})
	return err
}

// GetDiscussion fetches the full authoritative snapshot.
func (c *Client) GetDiscussion(ctx context.Context, discussionID string) (domain.Discussion, error) {
	ack, err := c.request(ctx, protocol.TypeGetDiscussion, protocol.GetDiscussionRequest{DiscussionID: discussionID})
	if err != nil {
		return domain.Discussion{}, err
	}

	if ack.Discussion == nil {
		return domain.Discussion{}, fmt.Errorf("acknowledgment carried no discussion")
	}

	return *ack.Discussion, nil
}

// UpdateDiscussion issues one action. A nil error means the server accepted
// and applied it; the resulting snapshot arrives through the broadcast
// channel, not through this acknowledgment.
func (c *Client) UpdateDiscussion(ctx context.Context, discussionID string, action domain.Action) error {
	_, err := c.request(ctx, protocol.TypeUpdateDiscussion, protocol.UpdateDiscussionRequest{
		DiscussionID: discussionID,
		Action:       action,
	})
	return err
}

func (c *Client) request(ctx context.Context, messageType string, payload interface{}) (protocol.Ack, error) {
	envelope, err := protocol.NewEnvelope(uuid.NewString(), messageType, payload)
	if err != nil {
		return protocol.Ack{}, err
	}

	ackCh := make(chan protocol.Ack, 1)

	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return protocol.Ack{}, &ProtocolError{Code: core.ErrorCodeConnection}
	}
	c.pending[envelope.ID] = ackCh
	socket := c.socket
	err = socket.WriteJSON(envelope)
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, envelope.ID)
		c.mu.Unlock()
	}()

	if err != nil {
		return protocol.Ack{}, &ProtocolError{Code: core.ErrorCodeConnection}
	}

	select {
	case ack := <-ackCh:
		if ack.Failed() {
			return ack, &ProtocolError{Code: *ack.Error}
		}
		return ack, nil
	case <-ctx.Done():
		return protocol.Ack{}, ctx.Err()
	case <-c.lifetime.Done():
		return protocol.Ack{}, &ProtocolError{Code: core.ErrorCodeConnection}
	}
}

func (c *Client) readLoop() {
	for {
		c.mu.Lock()
		socket := c.socket
		c.mu.Unlock()

		var envelope protocol.Envelope
		if err := socket.ReadJSON(&envelope); err != nil {
			c.handleDisconnect(err)

			if c.lifetime.Err() != nil {
				return
			}

			if err := c.reconnect(); err != nil {
				return
			}
			continue
		}

		c.handleMessage(envelope)
	}
}

func (c *Client) handleMessage(envelope protocol.Envelope) {
	switch envelope.Type {
	case protocol.TypeHello:
		var hello protocol.Hello
		if err := protocol.Decode(envelope.Payload, &hello); err != nil {
			c.logger.Warn("discarding malformed hello", zap.Error(err))
			return
		}

		c.mu.Lock()
		c.sessionID = hello.SessionID
		c.mu.Unlock()

		select {
		case <-c.helloed:
		default:
			close(c.helloed)
		}

	case protocol.TypeAck:
		var ack protocol.Ack
		if err := protocol.Decode(envelope.Payload, &ack); err != nil {
			c.logger.Warn("discarding malformed ack", zap.Error(err))
			return
		}

		c.mu.Lock()
		ackCh, waiting := c.pending[envelope.ID]
		c.mu.Unlock()

		if waiting {
			ackCh <- ack
		}

	case protocol.TypeUpdated:
		var updated protocol.Updated
		if err := protocol.Decode(envelope.Payload, &updated); err != nil {
			c.logger.Warn("discarding malformed broadcast", zap.Error(err))
			return
		}

		c.mu.Lock()
		sessions := make([]*DiscussionSession, 0, len(c.sessions))
		for session := range c.sessions {
			sessions = append(sessions, session)
		}
		c.mu.Unlock()

		for _, session := range sessions {
			session.receive(updated)
		}

	default:
		c.logger.Warn("discarding message of unknown type", zap.String("type", envelope.Type))
	}
}

// handleDisconnect fails every in-flight request: no acknowledgment is ever
// coming for them, and the actions must not be blindly retried.
func (c *Client) handleDisconnect(cause error) {
	c.mu.Lock()
	c.connected = false
	pending := c.pending
	c.pending = make(map[string]chan protocol.Ack)
	c.mu.Unlock()

	if c.lifetime.Err() == nil {
		c.logger.Warn("connection lost", zap.Error(cause))
	}

	for _, ackCh := range pending {
		ackCh <- protocol.ErrorAck(core.ErrorCodeConnection)
	}
}

func (c *Client) reconnect() error {
	dial := func() error {
		return c.connect(c.lifetime)
	}

	policy := backoff.WithContext(backoff.NewExponentialBackOff(), c.lifetime)
	if err := backoff.Retry(dial, policy); err != nil {
		return err
	}

	c.logger.Info("reconnected")

	// The server assigned a fresh session; open sessions re-fetch state
	// instead of replaying whatever was in flight.
	c.mu.Lock()
	sessions := make([]*DiscussionSession, 0, len(c.sessions))
	for session := range c.sessions {
		sessions = append(sessions, session)
	}
	c.mu.Unlock()

	for _, session := range sessions {
		go session.resync()
	}

	return nil
}

func (c *Client) attach(session *DiscussionSession) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sessions[session] = struct{}{}
}

func (c *Client) detach(session *DiscussionSession) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.sessions, session)
}
