package store

import (
	"context"
	"sync"
	"testing"

	"github.com/sugit/boardsync/internal/modules/discussion/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_MemoryStore_Get_Returns_Created_Discussion(t *testing.T) {
	// Arrange
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.Create(ctx, "weekly pick")
	require.NoError(t, err)

	// Act
	found, err := s.Get(ctx, created.ID)

	// Assert
	require.NoError(t, err)
	require.Equal(t, created, found)
}

func Test_MemoryStore_Get_Unknown_Id_Fails_With_Not_Found(t *testing.T) {
	// Arrange
	s := NewMemoryStore()

	// Act
	_, err := s.Get(context.Background(), uuid.NewString())

	// Assert
	require.ErrorIs(t, err, domain.ErrDiscussionNotFound)
}

func Test_MemoryStore_Mutate_Unknown_Id_Fails_With_Not_Found(t *testing.T) {
	// Arrange
	s := NewMemoryStore()

	// Act
	_, err := s.Mutate(context.Background(), uuid.NewString(), func(d domain.Discussion) (domain.Discussion, error) {
		return d, nil
	})

	// Assert
	require.ErrorIs(t, err, domain.ErrDiscussionNotFound)
}

func Test_MemoryStore_Mutate_Error_Leaves_Document_Unchanged(t *testing.T) {
	// Arrange
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.Create(ctx, "weekly pick")
	require.NoError(t, err)

	// Act
	_, err = s.Mutate(ctx, created.ID, func(d domain.Discussion) (domain.Discussion, error) {
		return domain.Apply(d, domain.MoveItem("missing", domain.Position{X: 1, Y: 1}))
	})

	// Assert
	require.ErrorIs(t, err, domain.ErrItemNotFound)

	found, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, found)
}

func Test_MemoryStore_Concurrent_Mutations_On_Same_Discussion_Never_Lose_Updates(t *testing.T) {
	// Arrange
	s := NewMemoryStore()
	ctx := context.Background()

	created, err := s.Create(ctx, "weekly pick")
	require.NoError(t, err)

	const writers = 8
	const itemsPerWriter = 25

	// Act
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < itemsPerWriter; i++ {
				_, err := s.Mutate(ctx, created.ID, func(d domain.Discussion) (domain.Discussion, error) {
					return domain.Apply(d, domain.AddItem(domain.Game{ID: uuid.NewString()}))
				})
				require.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	// Assert
	found, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, writers*itemsPerWriter)
}

func Test_MemoryStore_Interleaved_Move_And_Approve_Both_Take_Effect(t *testing.T) {
	// Arrange
	s := NewMemoryStore()
	ctx := context.Background()
	participant := uuid.NewString()

	created, err := s.Create(ctx, "weekly pick")
	require.NoError(t, err)

	_, err = s.Mutate(ctx, created.ID, func(d domain.Discussion) (domain.Discussion, error) {
		return domain.Apply(d, domain.AddItem(domain.Game{ID: "g1"}))
	})
	require.NoError(t, err)

	// Act
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		_, err := s.Mutate(ctx, created.ID, func(d domain.Discussion) (domain.Discussion, error) {
			return domain.Apply(d, domain.MoveItem("g1", domain.Position{X: 42, Y: 17}))
		})
		require.NoError(t, err)
	}()

	go func() {
		defer wg.Done()
		_, err := s.Mutate(ctx, created.ID, func(d domain.Discussion) (domain.Discussion, error) {
			action := domain.ApproveItem("g1")
			action.ParticipantID = participant
			return domain.Apply(d, action)
		})
		require.NoError(t, err)
	}()

	wg.Wait()

	// Assert
	found, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, domain.Position{X: 42, Y: 17}, found.Items["g1"].Position)
	require.True(t, found.Items["g1"].Approved(participant))
}
