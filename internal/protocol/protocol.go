// Package protocol defines the wire format spoken over the websocket: one
// JSON envelope per message, request/acknowledgment pairs correlated by the
// envelope id, and two request-independent server pushes (hello, updated).
package protocol

import (
	"encoding/json"

	"github.com/sugit/boardsync/internal/modules/discussion/domain"
)

// Client request kinds.
const (
	TypeCreateDiscussion = "create_discussion"
	TypeJoinDiscussion   = "join_discussion"
	TypeGetDiscussion    = "get_discussion"
	TypeUpdateDiscussion = "update_discussion"
)

// Server message kinds. Ack answers exactly one request and echoes its id.
// Hello and Updated carry no id - they are not tied to any request.
const (
	TypeAck     = "ack"
	TypeHello   = "hello"
	TypeUpdated = "updated"
)

type Envelope struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Decode unmarshals an envelope payload. An absent payload decodes as the
// zero value.
func Decode(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}

	return json.Unmarshal(raw, v)
}

func NewEnvelope(id, messageType string, payload interface{}) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{ID: id, Type: messageType, Payload: raw}, nil
}

type CreateDiscussionRequest struct {
	Name string `json:"name"`
}

type JoinDiscussionRequest struct {
	DiscussionID string `json:"discussion_id"`
}

type GetDiscussionRequest struct {
	DiscussionID string `json:"discussion_id"`
}

type UpdateDiscussionRequest struct {
	DiscussionID string        `json:"discussion_id"`
	Action       domain.Action `json:"action"`
}

// Ack is the single acknowledgment every request receives. A non-nil Error
// is the sole discriminant of failure; success fields are only read when it
// is absent.
type Ack struct {
	Error        *string            `json:"error,omitempty"`
	DiscussionID string             `json:"discussion_id,omitempty"`
	Discussion   *domain.Discussion `json:"discussion,omitempty"`
}

func (a Ack) Failed() bool {
	return a.Error != nil
}

func ErrorAck(code string) Ack {
	return Ack{Error: &code}
}

// Hello is pushed once per connection, right after the upgrade, announcing
// the participant identity the server bound to the connection.
type Hello struct {
	SessionID string `json:"session_id"`
}

// Updated is the fire-and-forget broadcast fanned out to a discussion's room
// after every accepted update. It always carries the whole document.
type Updated struct {
	DiscussionID string            `json:"discussion_id"`
	Discussion   domain.Discussion `json:"discussion"`
}
