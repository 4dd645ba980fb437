package commands

import (
	"context"
	"fmt"

	"github.com/sugit/boardsync/internal/modules/discussion/store"
)

type CreateDiscussionCommand struct {
	Name string `json:"name"`
}

func (c CreateDiscussionCommand) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("invalid Name - '%s'", c.Name)
	}

	return nil
}

type CreateDiscussionResponse struct {
	DiscussionID string
}

type CreateDiscussionCommandHandler struct {
	store store.Store
}

func NewCreateDiscussionCommandHandler(store store.Store) *CreateDiscussionCommandHandler {
	return &CreateDiscussionCommandHandler{store}
}

func (h *CreateDiscussionCommandHandler) Handle(
	ctx context.Context,
	request CreateDiscussionCommand,
) (CreateDiscussionResponse, error) {
	discussion, err := h.store.Create(ctx, request.Name)
	if err != nil {
		return CreateDiscussionResponse{}, err
	}

	return CreateDiscussionResponse{DiscussionID: discussion.ID}, nil
}
