// Package room tracks which connections belong to which discussion's
// broadcast group and fans server pushes out to them.
package room

import (
	"sync"

	"github.com/sugit/boardsync/internal/protocol"

	"go.uber.org/zap"
)

// Member is the outbound half of one connection. Send must never block; it
// reports whether the message was accepted, and delivery past that point is
// best-effort.
type Member interface {
	Send(message protocol.Envelope) bool
}

// Manager owns the room membership sets. Membership changes happen on join
// and on disconnect only - there is no explicit leave.
type Manager struct {
	logger *zap.Logger

	mu          sync.RWMutex
	rooms       map[string]map[Member]struct{}
	memberships map[Member]map[string]struct{}
}

func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		logger:      logger,
		rooms:       make(map[string]map[Member]struct{}),
		memberships: make(map[Member]map[string]struct{}),
	}
}

// Join adds the member to the discussion's broadcast group. Joining twice is
// the same as joining once.
func (m *Manager) Join(member Member, discussionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rooms[discussionID] == nil {
		m.rooms[discussionID] = make(map[Member]struct{})
	}
	m.rooms[discussionID][member] = struct{}{}

	if m.memberships[member] == nil {
		m.memberships[member] = make(map[string]struct{})
	}
	m.memberships[member][discussionID] = struct{}{}
}

// Remove clears every membership the connection holds. The server calls this
// exactly once, when the connection reaches its terminal closed state.
func (m *Manager) Remove(member Member) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for discussionID := range m.memberships[member] {
		delete(m.rooms[discussionID], member)
		if len(m.rooms[discussionID]) == 0 {
			delete(m.rooms, discussionID)
		}
	}

	delete(m.memberships, member)
}

// Multicast delivers the message to every current member of the discussion's
// room. No delivery confirmation, no retry; a member that cannot accept the
// message right now is skipped.
func (m *Manager) Multicast(discussionID string, message protocol.Envelope) {
	m.mu.RLock()
	members := make([]Member, 0, len(m.rooms[discussionID]))
	for member := range m.rooms[discussionID] {
		members = append(members, member)
	}
	m.mu.RUnlock()

	for _, member := range members {
		if !member.Send(message) {
			m.logger.Warn("dropped broadcast for slow member", zap.String("discussion_id", discussionID))
		}
	}
}

// MemberCount reports the current room size.
func (m *Manager) MemberCount(discussionID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.rooms[discussionID])
}
