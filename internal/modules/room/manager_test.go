package room

import (
	"testing"

	"github.com/sugit/boardsync/internal/protocol"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingMember struct {
	received []protocol.Envelope
	accept   bool
}

func newRecordingMember() *recordingMember {
	return &recordingMember{accept: true}
}

func (m *recordingMember) Send(message protocol.Envelope) bool {
	if !m.accept {
		return false
	}

	m.received = append(m.received, message)
	return true
}

func Test_Multicast_Reaches_Every_Room_Member_And_Nobody_Else(t *testing.T) {
	// Arrange
	manager := NewManager(zap.NewNop())

	d := uuid.NewString()
	d2 := uuid.NewString()

	first, second, third := newRecordingMember(), newRecordingMember(), newRecordingMember()
	outsider := newRecordingMember()

	manager.Join(first, d)
	manager.Join(second, d)
	manager.Join(third, d)
	manager.Join(outsider, d2)

	message := protocol.Envelope{Type: protocol.TypeUpdated}

	// Act
	manager.Multicast(d, message)

	// Assert
	require.Len(t, first.received, 1)
	require.Len(t, second.received, 1)
	require.Len(t, third.received, 1)
	require.Empty(t, outsider.received)
}

func Test_Join_Is_Idempotent(t *testing.T) {
	// Arrange
	manager := NewManager(zap.NewNop())

	d := uuid.NewString()
	member := newRecordingMember()

	// Act
	manager.Join(member, d)
	manager.Join(member, d)

	manager.Multicast(d, protocol.Envelope{Type: protocol.TypeUpdated})

	// Assert
	require.Equal(t, 1, manager.MemberCount(d))
	require.Len(t, member.received, 1)
}

func Test_Remove_Clears_Every_Membership_Of_The_Connection(t *testing.T) {
	// Arrange
	manager := NewManager(zap.NewNop())

	d := uuid.NewString()
	d2 := uuid.NewString()

	member := newRecordingMember()
	manager.Join(member, d)
	manager.Join(member, d2)

	// Act
	manager.Remove(member)

	manager.Multicast(d, protocol.Envelope{Type: protocol.TypeUpdated})
	manager.Multicast(d2, protocol.Envelope{Type: protocol.TypeUpdated})

	// Assert
	require.Empty(t, member.received)
	require.Equal(t, 0, manager.MemberCount(d))
	require.Equal(t, 0, manager.MemberCount(d2))
}

func Test_Multicast_Skips_Members_That_Cannot_Accept(t *testing.T) {
	// Arrange
	manager := NewManager(zap.NewNop())

	d := uuid.NewString()

	healthy := newRecordingMember()
	stalled := newRecordingMember()
	stalled.accept = false

	manager.Join(healthy, d)
	manager.Join(stalled, d)

	// Act
	manager.Multicast(d, protocol.Envelope{Type: protocol.TypeUpdated})

	// Assert
	require.Len(t, healthy.received, 1)
	require.Empty(t, stalled.received)
}
