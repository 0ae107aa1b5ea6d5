package game

import (
	"errors"
	"time"

	"github.com/Eray464646/Algorithmen/internal/model"
)

var (
	ErrNotHost         = errors.New("only the host can do that")
	ErrAlreadyStarted  = errors.New("game has already started")
	ErrNeedMorePlayers = errors.New("at least two players are needed to start")
	ErrNotRevealed     = errors.New("current question has not been revealed yet")
	ErrNotFinished     = errors.New("game is not finished")
	ErrGameFinished    = errors.New("game is already finished")
)

// The functions in this file are the host-only document mutations. They
// operate on a snapshot the caller owns (a clone of the latest document) and
// the caller writes the result back through the store; every check is
// re-derivable from the snapshot alone, so evaluating them twice on the same
// document is harmless.

// StartGame moves a lobby into the first question.
func StartGame(room *model.Room, now time.Time) error {
	if room.Started() {
		return ErrAlreadyStarted
	}
	if len(room.Players) < model.MinPlayersToStart {
		return ErrNeedMorePlayers
	}
	room.CurrentQuestionIndex = 1
	deadline := now.Add(time.Duration(room.Settings.TimerPerQuestionSeconds) * time.Second)
	room.DeadlineTimestamp = &deadline
	room.LastReveal = nil
	return nil
}

// EvaluateReveal decides whether the active question's answer window is
// closed (every player answered, or the deadline passed) and if so builds
// the reveal snapshot. It returns nil when no reveal is due or one is
// already stored for this question, which makes redundant host evaluations
// produce at most one write.
func EvaluateReveal(room *model.Room, now time.Time) *model.Reveal {
	q := room.CurrentQuestionIndex
	if q == 0 || room.Finished() {
		return nil
	}
	if room.LastReveal != nil && room.LastReveal.QuestionIndex >= q {
		return nil
	}

	expired := room.DeadlineTimestamp != nil && !now.Before(*room.DeadlineTimestamp)
	if !room.AllAnswered(q) && !expired {
		return nil
	}

	question := room.ActiveQuestion()
	if question == nil {
		return nil
	}

	results := make([]model.PlayerResult, len(room.Players))
	for i := range room.Players {
		p := &room.Players[i]
		results[i] = model.PlayerResult{
			ID:     p.ID,
			Name:   p.Name,
			Answer: p.AnswerAt(q),
			Score:  p.Score,
			Lives:  p.Lives,
		}
	}
	return &model.Reveal{
		QuestionIndex: q,
		CorrectIndex:  question.CorrectIndex,
		Timestamp:     now,
		PlayerResults: results,
	}
}

// NextQuestion advances past a revealed question. After the last question it
// pushes currentQuestionIndex beyond questionCount, which every client
// derives as the finished state; no extra document field is needed.
func NextQuestion(room *model.Room, now time.Time) error {
	if room.Finished() {
		return ErrGameFinished
	}
	if room.LastReveal == nil || room.LastReveal.QuestionIndex != room.CurrentQuestionIndex {
		return ErrNotRevealed
	}

	next := room.CurrentQuestionIndex + 1
	room.CurrentQuestionIndex = next
	room.LastReveal = nil
	if next > room.Settings.QuestionCount {
		room.DeadlineTimestamp = nil
		return nil
	}
	deadline := now.Add(time.Duration(room.Settings.TimerPerQuestionSeconds) * time.Second)
	room.DeadlineTimestamp = &deadline
	return nil
}

// ResetGame returns a finished room to the lobby with every player's
// per-game fields zeroed.
func ResetGame(room *model.Room) error {
	if !room.Finished() {
		return ErrNotFinished
	}
	for i := range room.Players {
		room.Players[i].ResetForNewGame()
	}
	room.CurrentQuestionIndex = 0
	room.DeadlineTimestamp = nil
	room.LastReveal = nil
	return nil
}
