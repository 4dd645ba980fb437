package commands

import (
	"context"
	"fmt"

	"github.com/sugit/boardsync/internal/modules/discussion/domain"
	"github.com/sugit/boardsync/internal/modules/discussion/store"
)

type GetDiscussionQuery struct {
	DiscussionID string `json:"discussion_id"`
}

func (q GetDiscussionQuery) Validate() error {
	if q.DiscussionID == "" {
		return fmt.Errorf("invalid DiscussionID - '%s'", q.DiscussionID)
	}

	return nil
}

type GetDiscussionResponse struct {
	Discussion domain.Discussion
}

type GetDiscussionQueryHandler struct {
	store store.Store
}

func NewGetDiscussionQueryHandler(store store.Store) *GetDiscussionQueryHandler {
	return &GetDiscussionQueryHandler{store}
}

func (h *GetDiscussionQueryHandler) Handle(
	ctx context.Context,
	request GetDiscussionQuery,
) (GetDiscussionResponse, error) {
	discussion, err := h.store.Get(ctx, request.DiscussionID)
	if err != nil {
		return GetDiscussionResponse{}, commandError(err)
	}

	return GetDiscussionResponse{Discussion: discussion}, nil
}
