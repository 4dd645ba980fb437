package client

import (
	"context"
	"sync"
	"time"

	"github.com/sugit/boardsync/internal/modules/discussion/domain"
	"github.com/sugit/boardsync/internal/protocol"
)

const resyncTimeout = 10 * time.Second

// DiscussionSession mirrors one discussion for one participant. It is
// created per activation and torn down with Close - nothing about it
// outlives the view it backs.
//
// The session never mutates its snapshot locally: action methods only issue
// requests, and the snapshot is replaced wholesale whenever the server
// broadcasts the discussion - for the action's own initiator through the
// same path as for everyone else. An inbound broadcast always overrides
// whatever the session currently holds.
type DiscussionSession struct {
	client       *Client
	discussionID string

	mu         sync.RWMutex
	discussion *domain.Discussion
	err        error

	updates chan struct{}
	once    sync.Once
}

// OpenDiscussion activates a session: it joins the discussion's broadcast
// group and fetches the initial snapshot. A NotFound here is terminal for
// this view; the caller opens a new session to try again.
func (c *Client) OpenDiscussion(ctx context.Context, discussionID string) (*DiscussionSession, error) {
	session := &DiscussionSession{
		client:       c,
		discussionID: discussionID,
		updates:      make(chan struct{}, 1),
	}

	c.attach(session)

	if err := session.sync(ctx); err != nil {
		c.detach(session)
		return nil, err
	}

	return session, nil
}

func (s *DiscussionSession) sync(ctx context.Context) error {
	if err := s.client.JoinDiscussion(ctx, s.discussionID); err != nil {
		s.setErr(err)
		return err
	}

	discussion, err := s.client.GetDiscussion(ctx, s.discussionID)
	if err != nil {
		s.setErr(err)
		return err
	}

	s.replace(discussion)
	return nil
}

// resync re-establishes membership and state after a reconnect. In-flight
// actions from before the disconnect are never replayed.
func (s *DiscussionSession) resync() {
	ctx, cancel := context.WithTimeout(context.Background(), resyncTimeout)
	defer cancel()

	_ = s.sync(ctx)
}

func (s *DiscussionSession) receive(updated protocol.Updated) {
	if updated.DiscussionID != s.discussionID {
		return
	}

	s.replace(updated.Discussion)
}

func (s *DiscussionSession) replace(discussion domain.Discussion) {
	s.mu.Lock()
	s.discussion = &discussion
	s.err = nil
	s.mu.Unlock()

	select {
	case s.updates <- struct{}{}:
	default:
	}
}

func (s *DiscussionSession) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()

	select {
	case s.updates <- struct{}{}:
	default:
	}
}

// Snapshot returns the last authoritative document, if any arrived yet.
func (s *DiscussionSession) Snapshot() (domain.Discussion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.discussion == nil {
		return domain.Discussion{}, false
	}

	return *s.discussion, true
}

// Err returns the active error. There is at most one; every later event
// replaces it, and a fresh snapshot clears it.
func (s *DiscussionSession) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.err
}

// Updates signals snapshot or error changes. It is a coalescing signal, not
// a queue: consumers read the current state via Snapshot and Err.
func (s *DiscussionSession) Updates() <-chan struct{} {
	return s.updates
}

func (s *DiscussionSession) IsConnected() bool {
	return s.client.IsConnected()
}

// SessionID is this participant's identity - the key their votes appear
// under in every item's approver map.
func (s *DiscussionSession) SessionID() string {
	return s.client.SessionID()
}

// AddGameToArena places external item metadata on the board as a new item.
func (s *DiscussionSession) AddGameToArena(ctx context.Context, game domain.Game) error {
	return s.update(ctx, domain.AddItem(game))
}

func (s *DiscussionSession) MoveGame(ctx context.Context, itemID string, position domain.Position) error {
	return s.update(ctx, domain.MoveItem(itemID, position))
}

func (s *DiscussionSession) ApproveGame(ctx context.Context, itemID string) error {
	return s.update(ctx, domain.ApproveItem(itemID))
}

func (s *DiscussionSession) DisapproveGame(ctx context.Context, itemID string) error {
	return s.update(ctx, domain.DisapproveItem(itemID))
}

func (s *DiscussionSession) UpdateCanvas(ctx context.Context, canvas string) error {
	return s.update(ctx, domain.UpdateCanvas(canvas))
}

func (s *DiscussionSession) update(ctx context.Context, action domain.Action) error {
	if err := s.client.UpdateDiscussion(ctx, s.discussionID, action); err != nil {
		s.setErr(err)
		return err
	}

	return nil
}

// Close deactivates the session. The underlying client and its connection
// stay up for other sessions.
func (s *DiscussionSession) Close() {
	s.once.Do(func() {
		s.client.detach(s)
	})
}
