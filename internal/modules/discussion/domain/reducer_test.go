package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_NewDiscussion_Starts_Empty_With_Default_Canvas(t *testing.T) {
	// Act
	d := NewDiscussion("weekly pick")

	// Assert
	require.NotEmpty(t, d.ID)
	require.Equal(t, "weekly pick", d.Name)
	require.Equal(t, DefaultCanvas, d.Canvas)
	require.Empty(t, d.Items)
}

func Test_AddItem_Inserts_Item_At_Origin_With_No_Votes(t *testing.T) {
	// Arrange
	d := NewDiscussion("weekly pick")
	game := Game{ID: "g1", Name: "Carcassonne"}

	// Act
	next, err := Apply(d, AddItem(game))

	// Assert
	require.NoError(t, err)

	item, exists := next.Items["g1"]
	require.True(t, exists)
	require.Equal(t, game, item.Game)
	require.Equal(t, Position{X: 0, Y: 0}, item.Position)
	require.Empty(t, item.Approver)
}

func Test_AddItem_With_Existing_Identifier_Fails_And_Leaves_State_Unchanged(t *testing.T) {
	// Arrange
	d := NewDiscussion("weekly pick")
	d, err := Apply(d, AddItem(Game{ID: "g1"}))
	require.NoError(t, err)

	// Act
	next, err := Apply(d, AddItem(Game{ID: "g1", Name: "imposter"}))

	// Assert
	require.ErrorIs(t, err, ErrDuplicateItem)
	require.Equal(t, d, next)
}

func Test_MoveItem_Replaces_Position(t *testing.T) {
	// Arrange
	d := NewDiscussion("weekly pick")
	d, err := Apply(d, AddItem(Game{ID: "g1"}))
	require.NoError(t, err)

	// Act
	next, err := Apply(d, MoveItem("g1", Position{X: 120, Y: 45}))

	// Assert
	require.NoError(t, err)
	require.Equal(t, Position{X: 120, Y: 45}, next.Items["g1"].Position)
}

func Test_MoveItem_Is_Idempotent(t *testing.T) {
	// Arrange
	d := NewDiscussion("weekly pick")
	d, err := Apply(d, AddItem(Game{ID: "g1"}))
	require.NoError(t, err)

	// Act
	once, err := Apply(d, MoveItem("g1", Position{X: 3, Y: 7}))
	require.NoError(t, err)

	twice, err := Apply(once, MoveItem("g1", Position{X: 3, Y: 7}))
	require.NoError(t, err)

	// Assert
	require.Equal(t, once, twice)
}

func Test_MoveItem_On_Unknown_Item_Fails(t *testing.T) {
	// Arrange
	d := NewDiscussion("weekly pick")

	// Act
	next, err := Apply(d, MoveItem("missing", Position{X: 1, Y: 1}))

	// Assert
	require.ErrorIs(t, err, ErrItemNotFound)
	require.Equal(t, d, next)
}

func Test_ApproveItem_Records_Vote_For_Acting_Participant_Only(t *testing.T) {
	// Arrange
	participant := uuid.NewString()

	d := NewDiscussion("weekly pick")
	d, err := Apply(d, AddItem(Game{ID: "g1"}))
	require.NoError(t, err)

	action := ApproveItem("g1")
	action.ParticipantID = participant

	// Act
	next, err := Apply(d, action)

	// Assert
	require.NoError(t, err)
	require.True(t, next.Items["g1"].Approved(participant))
	require.Equal(t, 1, next.Items["g1"].ApprovalCount())
	require.False(t, next.Items["g1"].Approved(uuid.NewString()))
}

func Test_Disapprove_After_Approve_Is_Equivalent_To_Never_Having_Voted(t *testing.T) {
	// Arrange
	participant := uuid.NewString()

	d := NewDiscussion("weekly pick")
	d, err := Apply(d, AddItem(Game{ID: "g1"}))
	require.NoError(t, err)

	approve := ApproveItem("g1")
	approve.ParticipantID = participant

	disapprove := DisapproveItem("g1")
	disapprove.ParticipantID = participant

	// Act
	approved, err := Apply(d, approve)
	require.NoError(t, err)

	next, err := Apply(approved, disapprove)
	require.NoError(t, err)

	// Assert
	require.False(t, next.Items["g1"].Approved(participant))
	require.Equal(t, 0, next.Items["g1"].ApprovalCount())
	require.Equal(t, d.Items["g1"].ApprovalCount(), next.Items["g1"].ApprovalCount())
}

func Test_ApproveItem_Without_Participant_Fails(t *testing.T) {
	// Arrange
	d := NewDiscussion("weekly pick")
	d, err := Apply(d, AddItem(Game{ID: "g1"}))
	require.NoError(t, err)

	// Act
	next, err := Apply(d, ApproveItem("g1"))

	// Assert
	require.ErrorIs(t, err, ErrInvalidAction)
	require.Equal(t, d, next)
}

func Test_UpdateCanvas_Replaces_Canvas_Wholesale(t *testing.T) {
	// Arrange
	d := NewDiscussion("weekly pick")

	// Act
	next, err := Apply(d, UpdateCanvas("data:image/png;base64,Zm9v"))

	// Assert
	require.NoError(t, err)
	require.Equal(t, "data:image/png;base64,Zm9v", next.Canvas)
	require.Equal(t, DefaultCanvas, d.Canvas)
}

func Test_Apply_Rejects_Unknown_Action_Type(t *testing.T) {
	// Arrange
	d := NewDiscussion("weekly pick")

	// Act
	next, err := Apply(d, Action{Type: "shuffle_board"})

	// Assert
	require.ErrorIs(t, err, ErrInvalidAction)
	require.Equal(t, d, next)
}

func Test_Apply_Never_Mutates_The_Input_Snapshot(t *testing.T) {
	// Arrange
	participant := uuid.NewString()

	d := NewDiscussion("weekly pick")
	d, err := Apply(d, AddItem(Game{ID: "g1"}))
	require.NoError(t, err)

	approve := ApproveItem("g1")
	approve.ParticipantID = participant

	// Act
	_, err = Apply(d, approve)
	require.NoError(t, err)

	_, err = Apply(d, MoveItem("g1", Position{X: 9, Y: 9}))
	require.NoError(t, err)

	// Assert
	require.False(t, d.Items["g1"].Approved(participant))
	require.Equal(t, Position{}, d.Items["g1"].Position)
}
