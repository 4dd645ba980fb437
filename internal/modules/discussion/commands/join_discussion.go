package commands

import (
	"context"
	"fmt"

	"github.com/sugit/boardsync/internal/modules/core"
	"github.com/sugit/boardsync/internal/modules/room"
)

// JoinDiscussionCommand subscribes the requesting connection to a
// discussion's broadcast group. Like the original room semantics, joining
// does not verify the discussion exists - a Get on a missing id is where the
// caller finds out.
type JoinDiscussionCommand struct {
	DiscussionID string      `json:"discussion_id"`
	Member       room.Member `json:"-"`
}

func (c JoinDiscussionCommand) Validate() error {
	if c.DiscussionID == "" {
		return fmt.Errorf("invalid DiscussionID - '%s'", c.DiscussionID)
	}

	if c.Member == nil {
		return fmt.Errorf("missing requesting connection")
	}

	return nil
}

type JoinDiscussionCommandHandler struct {
	rooms *room.Manager
}

func NewJoinDiscussionCommandHandler(rooms *room.Manager) *JoinDiscussionCommandHandler {
	return &JoinDiscussionCommandHandler{rooms}
}

func (h *JoinDiscussionCommandHandler) Handle(
	ctx context.Context,
	request JoinDiscussionCommand,
) (core.Unit, error) {
	h.rooms.Join(request.Member, request.DiscussionID)
	return core.Unit{}, nil
}
