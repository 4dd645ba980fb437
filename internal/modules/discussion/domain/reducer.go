package domain

// Apply computes the next discussion state for a single action. It is pure:
// the input discussion is never mutated, and a returned error means the
// returned state is the input state, untouched.
func Apply(d Discussion, action Action) (Discussion, error) {
	switch action.Type {
	case ActionAddItem:
		if action.Game == nil || action.Game.ID == "" {
			return d, ErrInvalidAction
		}

		if _, exists := d.Items[action.Game.ID]; exists {
			return d, ErrDuplicateItem
		}

		next := d.clone()
		next.Items[action.Game.ID] = Item{
			Game:     *action.Game,
			Position: Position{},
			Approver: make(map[string]bool),
		}
		return next, nil

	case ActionMoveItem:
		if action.Position == nil {
			return d, ErrInvalidAction
		}

		item, exists := d.Items[action.ItemID]
		if !exists {
			return d, ErrItemNotFound
		}

		next := d.clone()
		item = next.Items[action.ItemID]
		item.Position = *action.Position
		next.Items[action.ItemID] = item
		return next, nil

	case ActionApproveItem, ActionDisapproveItem:
		if action.ParticipantID == "" {
			return d, ErrInvalidAction
		}

		if _, exists := d.Items[action.ItemID]; !exists {
			return d, ErrItemNotFound
		}

		next := d.clone()
		next.Items[action.ItemID].Approver[action.ParticipantID] = action.Type == ActionApproveItem
		return next, nil

	case ActionUpdateCanvas:
		next := d.clone()
		next.Canvas = action.Canvas
		return next, nil

	default:
		return d, ErrInvalidAction
	}
}
