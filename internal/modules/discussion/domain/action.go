package domain

// ActionType discriminates the closed set of discussion update actions.
type ActionType string

const (
	ActionAddItem        ActionType = "add_item"
	ActionMoveItem       ActionType = "move_item"
	ActionApproveItem    ActionType = "approve_item"
	ActionDisapproveItem ActionType = "disapprove_item"
	ActionUpdateCanvas   ActionType = "update_canvas"
)

// Action is one tagged request to transition a discussion. Only the fields
// belonging to the tagged variant are read; the reducer rejects anything
// outside the closed set.
//
// ParticipantID is the voter for the approve/disapprove variants. It is
// stamped by the server from the connection's session identity and never
// decoded from the wire, so a participant can only ever flip their own vote.
type Action struct {
	Type ActionType `json:"type"`

	Game     *Game     `json:"game,omitempty"`
	ItemID   string    `json:"item_id,omitempty"`
	Position *Position `json:"position,omitempty"`
	Canvas   string    `json:"canvas,omitempty"`

	ParticipantID string `json:"-"`
}

func AddItem(game Game) Action {
	return Action{Type: ActionAddItem, Game: &game}
}

func MoveItem(itemID string, position Position) Action {
	return Action{Type: ActionMoveItem, ItemID: itemID, Position: &position}
}

func ApproveItem(itemID string) Action {
	return Action{Type: ActionApproveItem, ItemID: itemID}
}

func DisapproveItem(itemID string) Action {
	return Action{Type: ActionDisapproveItem, ItemID: itemID}
}

func UpdateCanvas(canvas string) Action {
	return Action{Type: ActionUpdateCanvas, Canvas: canvas}
}
