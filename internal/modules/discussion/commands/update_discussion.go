package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/sugit/boardsync/internal/modules/core"
	"github.com/sugit/boardsync/internal/modules/discussion/domain"
	"github.com/sugit/boardsync/internal/modules/discussion/store"
	"github.com/sugit/boardsync/internal/protocol"
)

// Broadcaster fans an accepted update out to a discussion's room. Satisfied
// by room.Manager, or by the Redis relay when fan-out spans instances.
type Broadcaster interface {
	Multicast(discussionID string, message protocol.Envelope)
}

type UpdateDiscussionCommand struct {
	DiscussionID string        `json:"discussion_id"`
	Action       domain.Action `json:"action"`
}

func (c UpdateDiscussionCommand) Validate() error {
	if c.DiscussionID == "" {
		return fmt.Errorf("invalid DiscussionID - '%s'", c.DiscussionID)
	}

	if c.Action.Type == "" {
		return fmt.Errorf("missing action type")
	}

	return nil
}

type UpdateDiscussionCommandHandler struct {
	store store.Store
	rooms Broadcaster
}

func NewUpdateDiscussionCommandHandler(store store.Store, rooms Broadcaster) *UpdateDiscussionCommandHandler {
	return &UpdateDiscussionCommandHandler{store, rooms}
}

func (h *UpdateDiscussionCommandHandler) Handle(
	ctx context.Context,
	request UpdateDiscussionCommand,
) (core.Unit, error) {
	action := request.Action
	// Votes are always cast as the connection's own participant, regardless
	// of anything the payload claims.
	action.ParticipantID = core.Session(ctx).SessionID

	updated, err := h.store.Mutate(ctx, request.DiscussionID, func(d domain.Discussion) (domain.Discussion, error) {
		return domain.Apply(d, action)
	})
	if err != nil {
		return core.Unit{}, commandError(err)
	}

	message, err := protocol.NewEnvelope("", protocol.TypeUpdated, protocol.Updated{
		DiscussionID: request.DiscussionID,
		Discussion:   updated,
	})
	if err != nil {
		return core.Unit{}, err
	}

	h.rooms.Multicast(request.DiscussionID, message)

	return core.Unit{}, nil
}

// commandError translates domain failures into the protocol codes the
// acknowledgment carries. Anything unrecognized passes through and acks as a
// plain validation failure at the dispatch boundary.
func commandError(err error) error {
	switch {
	case errors.Is(err, domain.ErrDiscussionNotFound), errors.Is(err, domain.ErrItemNotFound):
		return core.NewCommandError(core.ErrorCodeNotFound, core.WithReason(err.Error()))
	case errors.Is(err, domain.ErrDuplicateItem):
		return core.NewCommandError(core.ErrorCodeDuplicateItem, core.WithReason(err.Error()))
	case errors.Is(err, domain.ErrInvalidAction):
		return core.NewCommandError(core.ErrorCodeValidation, core.WithReason(err.Error()))
	default:
		return err
	}
}
