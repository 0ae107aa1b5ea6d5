package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eray464646/Algorithmen/internal/model"
)

func memRoom() *model.Room {
	return &model.Room{
		ID:     "c0ffee00-0000-0000-0000-000000000000",
		Code:   "C0FFEE00",
		HostID: "p_host",
		Players: []model.Player{
			model.NewPlayer("p_host", "Alice"),
			model.NewPlayer("p_guest", "Bob"),
		},
		Settings: model.RoomSettings{
			MaxPlayers:              3,
			TimerPerQuestionSeconds: 30,
			QuestionCount:           1,
			Questions: []model.Question{
				{ID: "q1", Question: "?", Choices: []string{"a", "b"}, CorrectIndex: 0},
			},
		},
		CreatedAt: time.Now(),
	}
}

func recv(t *testing.T, sub Subscription) *model.Room {
	t.Helper()
	select {
	case room, ok := <-sub.Updates():
		require.True(t, ok, "feed closed unexpectedly")
		return room
	case <-time.After(time.Second):
		t.Fatal("no delivery within a second")
		return nil
	}
}

func TestMemoryStore_CRUD(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	room := memRoom()

	_, err := st.GetByID(ctx, room.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.GetByCode(ctx, room.Code)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, st.Update(ctx, room), ErrNotFound)
	assert.ErrorIs(t, st.Delete(ctx, room.ID), ErrNotFound)

	require.NoError(t, st.Create(ctx, room))

	byID, err := st.GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, room.Code, byID.Code)

	byCode, err := st.GetByCode(ctx, room.Code)
	require.NoError(t, err)
	assert.Equal(t, room.ID, byCode.ID)

	require.NoError(t, st.Delete(ctx, room.ID))
	_, err = st.GetByID(ctx, room.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ReadsAreIsolated(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	require.NoError(t, st.Create(ctx, memRoom()))

	a, err := st.GetByID(ctx, memRoom().ID)
	require.NoError(t, err)
	a.Players[0].Score = 999

	b, err := st.GetByID(ctx, memRoom().ID)
	require.NoError(t, err)
	assert.Equal(t, 0, b.Players[0].Score)
}

func TestMemoryStore_SubscriberSeesEveryCommit(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	room := memRoom()
	require.NoError(t, st.Create(ctx, room))

	sub, err := st.Subscribe(ctx, room.ID)
	require.NoError(t, err)
	defer sub.Close()

	room.CurrentQuestionIndex = 1
	require.NoError(t, st.Update(ctx, room))

	got := recv(t, sub)
	assert.Equal(t, 1, got.CurrentQuestionIndex)

	// The writer's own later mutations must not leak into the delivery.
	room.CurrentQuestionIndex = 99
	assert.Equal(t, 1, got.CurrentQuestionIndex)
}

func TestMemoryStore_SetRevealCommitsOnce(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	room := memRoom()
	room.CurrentQuestionIndex = 1
	require.NoError(t, st.Create(ctx, room))

	first := &model.Reveal{QuestionIndex: 1, CorrectIndex: 0, Timestamp: time.Now()}
	won, err := st.SetReveal(ctx, room.ID, first)
	require.NoError(t, err)
	assert.True(t, won)

	// A second evaluator racing for the same question loses quietly.
	second := &model.Reveal{QuestionIndex: 1, CorrectIndex: 0, Timestamp: time.Now().Add(time.Second)}
	won, err = st.SetReveal(ctx, room.ID, second)
	require.NoError(t, err)
	assert.False(t, won)

	stored, err := st.GetByID(ctx, room.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastReveal)
	assert.True(t, stored.LastReveal.Timestamp.Equal(first.Timestamp))

	// A reveal for the next question is a fresh race.
	won, err = st.SetReveal(ctx, room.ID, &model.Reveal{QuestionIndex: 2, Timestamp: time.Now()})
	require.NoError(t, err)
	assert.True(t, won)

	_, err = st.SetReveal(ctx, "missing", first)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_DeleteClosesFeeds(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	room := memRoom()
	require.NoError(t, st.Create(ctx, room))

	sub, err := st.Subscribe(ctx, room.ID)
	require.NoError(t, err)

	require.NoError(t, st.Delete(ctx, room.ID))

	select {
	case _, ok := <-sub.Updates():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("feed not closed after delete")
	}

	// Closing after the store already tore the feed down is harmless.
	assert.NoError(t, sub.Close())
	assert.NoError(t, sub.Close())
}

func TestMemoryStore_ClosedSubscriberStopsReceiving(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	room := memRoom()
	require.NoError(t, st.Create(ctx, room))

	sub, err := st.Subscribe(ctx, room.ID)
	require.NoError(t, err)
	require.NoError(t, sub.Close())

	// The update must not panic on the departed subscriber's channel.
	room.CurrentQuestionIndex = 1
	require.NoError(t, st.Update(ctx, room))

	_, ok := <-sub.Updates()
	assert.False(t, ok)
}
