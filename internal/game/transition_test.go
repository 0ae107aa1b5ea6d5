package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eray464646/Algorithmen/internal/model"
)

func gameRoom(playerCount, questionCount int) *model.Room {
	questions := make([]model.Question, questionCount)
	for i := range questions {
		questions[i] = model.Question{
			ID:           "q" + string(rune('1'+i)),
			Question:     "?",
			Choices:      []string{"a", "b", "c"},
			CorrectIndex: 0,
			Topic:        "graphs",
		}
	}
	players := make([]model.Player, playerCount)
	for i := range players {
		players[i] = model.NewPlayer("p_"+string(rune('a'+i)), "Player "+string(rune('A'+i)))
	}
	return &model.Room{
		ID:      "aaaabbbb-0000-0000-0000-000000000000",
		Code:    "AAAABBBB",
		HostID:  players[0].ID,
		Players: players,
		Settings: model.RoomSettings{
			MaxPlayers:              3,
			TimerPerQuestionSeconds: 30,
			QuestionCount:           questionCount,
			Questions:               questions,
		},
	}
}

func TestStartGame(t *testing.T) {
	now := time.Now()

	t.Run("needs two players", func(t *testing.T) {
		room := gameRoom(1, 2)
		assert.ErrorIs(t, StartGame(room, now), ErrNeedMorePlayers)
	})

	t.Run("moves lobby to first question", func(t *testing.T) {
		room := gameRoom(2, 2)
		require.NoError(t, StartGame(room, now))
		assert.Equal(t, 1, room.CurrentQuestionIndex)
		require.NotNil(t, room.DeadlineTimestamp)
		assert.Equal(t, now.Add(30*time.Second), *room.DeadlineTimestamp)
		assert.Nil(t, room.LastReveal)
	})

	t.Run("cannot start twice", func(t *testing.T) {
		room := gameRoom(2, 2)
		require.NoError(t, StartGame(room, now))
		assert.ErrorIs(t, StartGame(room, now), ErrAlreadyStarted)
	})
}

func answerAll(room *model.Room, q int) {
	for i := range room.Players {
		ApplyAnswer(&room.Players[i], q, model.Answer{SelectedIndex: 0, IsCorrect: true, Points: 110})
	}
}

func TestEvaluateReveal_AllAnswered(t *testing.T) {
	now := time.Now()
	room := gameRoom(3, 2)
	require.NoError(t, StartGame(room, now))

	// Not everyone has answered and the deadline is ahead: nothing fires.
	ApplyAnswer(&room.Players[0], 1, model.Answer{IsCorrect: true, Points: 120})
	assert.Nil(t, EvaluateReveal(room, now.Add(time.Second)))

	answerAll(room, 1)
	reveal := EvaluateReveal(room, now.Add(2*time.Second))
	require.NotNil(t, reveal)
	assert.Equal(t, 1, reveal.QuestionIndex)
	assert.Equal(t, 0, reveal.CorrectIndex)
	assert.Len(t, reveal.PlayerResults, 3)
}

func TestEvaluateReveal_DeadlineExpiry(t *testing.T) {
	now := time.Now()
	room := gameRoom(3, 2)
	require.NoError(t, StartGame(room, now))

	// Only one player answered, but the window is over.
	ApplyAnswer(&room.Players[0], 1, model.Answer{IsCorrect: true, Points: 101})
	reveal := EvaluateReveal(room, now.Add(31*time.Second))
	require.NotNil(t, reveal)
	assert.Equal(t, 1, reveal.QuestionIndex)
	assert.Nil(t, reveal.PlayerResults[1].Answer)
	assert.Nil(t, reveal.PlayerResults[2].Answer)
}

// Re-evaluating the same document any number of times produces at most one
// reveal: once stored, further evaluations return nil.
func TestEvaluateReveal_Idempotent(t *testing.T) {
	now := time.Now()
	room := gameRoom(2, 2)
	require.NoError(t, StartGame(room, now))
	answerAll(room, 1)

	reveal := EvaluateReveal(room, now.Add(time.Second))
	require.NotNil(t, reveal)
	room.LastReveal = reveal

	for i := 0; i < 5; i++ {
		assert.Nil(t, EvaluateReveal(room, now.Add(time.Duration(i)*time.Second)))
	}
}

func TestEvaluateReveal_OutsideActiveQuestion(t *testing.T) {
	now := time.Now()

	lobby := gameRoom(2, 2)
	assert.Nil(t, EvaluateReveal(lobby, now))

	finished := gameRoom(2, 2)
	finished.CurrentQuestionIndex = 3
	assert.Nil(t, EvaluateReveal(finished, now))
}

func TestNextQuestion(t *testing.T) {
	now := time.Now()
	room := gameRoom(2, 2)
	require.NoError(t, StartGame(room, now))

	t.Run("refused before reveal", func(t *testing.T) {
		assert.ErrorIs(t, NextQuestion(room, now), ErrNotRevealed)
	})

	answerAll(room, 1)
	room.LastReveal = EvaluateReveal(room, now.Add(time.Second))

	t.Run("advances and clears reveal", func(t *testing.T) {
		require.NoError(t, NextQuestion(room, now.Add(2*time.Second)))
		assert.Equal(t, 2, room.CurrentQuestionIndex)
		assert.Nil(t, room.LastReveal)
		require.NotNil(t, room.DeadlineTimestamp)
	})

	answerAll(room, 2)
	room.LastReveal = EvaluateReveal(room, now.Add(3*time.Second))

	t.Run("finishes past the last question", func(t *testing.T) {
		require.NoError(t, NextQuestion(room, now.Add(4*time.Second)))
		assert.True(t, room.Finished())
		assert.Nil(t, room.DeadlineTimestamp)
		assert.Nil(t, room.LastReveal)
		assert.ErrorIs(t, NextQuestion(room, now), ErrGameFinished)
	})
}

func TestResetGame(t *testing.T) {
	now := time.Now()
	room := gameRoom(2, 1)
	require.NoError(t, StartGame(room, now))

	assert.ErrorIs(t, ResetGame(room), ErrNotFinished)

	answerAll(room, 1)
	room.LastReveal = EvaluateReveal(room, now.Add(time.Second))
	require.NoError(t, NextQuestion(room, now.Add(2*time.Second)))

	room.Players[0].IsReady = true
	require.NoError(t, ResetGame(room))

	assert.Equal(t, 0, room.CurrentQuestionIndex)
	assert.Nil(t, room.LastReveal)
	assert.Nil(t, room.DeadlineTimestamp)
	for _, p := range room.Players {
		assert.Equal(t, 0, p.Score)
		assert.Equal(t, model.StartingLives, p.Lives)
		assert.Empty(t, p.Answers)
		assert.False(t, p.IsReady)
	}
}
