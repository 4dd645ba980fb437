package domain

import "github.com/google/uuid"

// DefaultCanvas is the background reference every discussion starts with.
// An empty reference renders as a blank board; update_canvas replaces it
// wholesale with whatever URL or data-URL the presentation layer resolved.
const DefaultCanvas = ""

// Game is the external item metadata attached to an item at insertion.
// It is resolved by the presentation layer before the action is built and
// is never mutated afterwards.
type Game struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	URL      string `json:"url,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Item is one placed object on the board. Approver maps a participant id to
// their vote; a participant missing from the map counts as a false vote.
type Item struct {
	Game     Game            `json:"game"`
	Position Position        `json:"position"`
	Approver map[string]bool `json:"approver"`
}

// Approved reports the participant's vote. Absent and false are equivalent.
func (i Item) Approved(participantID string) bool {
	return i.Approver[participantID]
}

// ApprovalCount returns the number of participants currently voting true.
func (i Item) ApprovalCount() int {
	count := 0
	for _, approved := range i.Approver {
		if approved {
			count++
		}
	}
	return count
}

// Discussion is the authoritative document for one board session. Items are
// keyed by the wrapped game's id, which makes item-id uniqueness structural.
type Discussion struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Canvas string          `json:"canvas"`
	Items  map[string]Item `json:"items"`
}

// NewDiscussion creates an empty discussion with a fresh id and the default
// canvas. Name is immutable after this point - no action touches it.
func NewDiscussion(name string) Discussion {
	return Discussion{
		ID:     uuid.NewString(),
		Name:   name,
		Canvas: DefaultCanvas,
		Items:  make(map[string]Item),
	}
}

// clone returns a deep copy of the discussion so the reducer can build the
// next state without touching the snapshot callers may still be reading.
func (d Discussion) clone() Discussion {
	next := d
	next.Items = make(map[string]Item, len(d.Items))
	for id, item := range d.Items {
		approver := make(map[string]bool, len(item.Approver))
		for participant, vote := range item.Approver {
			approver[participant] = vote
		}
		item.Approver = approver
		next.Items[id] = item
	}
	return next
}
