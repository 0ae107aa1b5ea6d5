package model

import (
	"strings"
	"time"
)

const (
	MinPlayersToStart   = 2
	DefaultMaxPlayers   = 3
	DefaultTimerSeconds = 30
	RoomCodeLength      = 8
)

// RoomSettings is fixed at creation and never mutated afterwards. Questions
// is the frozen, pre-shuffled snapshot every player plays from.
type RoomSettings struct {
	MaxPlayers              int        `json:"maxPlayers" bson:"maxPlayers"`
	TimerPerQuestionSeconds int        `json:"timerPerQuestionSeconds" bson:"timerPerQuestionSeconds"`
	QuestionCount           int        `json:"questionCount" bson:"questionCount"`
	Questions               []Question `json:"questions" bson:"questions"`
}

// Room is the single shared mutable aggregate for one game session. Every
// client holds a snapshot of it and the store fans out the full document on
// each committed write.
//
// CurrentQuestionIndex is 1-based: 0 means lobby, values above QuestionCount
// mean the game is over.
type Room struct {
	ID                   string       `json:"id" bson:"_id"`
	Code                 string       `json:"code" bson:"code"`
	HostID               string       `json:"hostId" bson:"hostId"`
	Players              []Player     `json:"players" bson:"players"`
	Settings             RoomSettings `json:"settings" bson:"settings"`
	CurrentQuestionIndex int          `json:"currentQuestionIndex" bson:"currentQuestionIndex"`
	DeadlineTimestamp    *time.Time   `json:"deadlineTimestamp" bson:"deadlineTimestamp"`
	LastReveal           *Reveal      `json:"lastReveal" bson:"lastReveal"`
	CreatedAt            time.Time    `json:"createdAt" bson:"createdAt"`
}

// CodeFromID derives the immutable human-shareable room code: the first
// 8 characters of the room id, uppercased.
func CodeFromID(id string) string {
	if len(id) < RoomCodeLength {
		return strings.ToUpper(id)
	}
	return strings.ToUpper(id[:RoomCodeLength])
}

func (r *Room) Started() bool {
	return r.CurrentQuestionIndex > 0
}

func (r *Room) Finished() bool {
	return r.CurrentQuestionIndex > r.Settings.QuestionCount
}

func (r *Room) Full() bool {
	return len(r.Players) >= r.Settings.MaxPlayers
}

// ActiveQuestion returns the question for the current 1-based index, or nil
// outside an active question.
func (r *Room) ActiveQuestion() *Question {
	i := r.CurrentQuestionIndex - 1
	if i < 0 || i >= len(r.Settings.Questions) {
		return nil
	}
	return &r.Settings.Questions[i]
}

// FindPlayer returns a pointer into Players, or nil when absent.
func (r *Room) FindPlayer(id string) *Player {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return &r.Players[i]
		}
	}
	return nil
}

// RemovePlayer drops a player while keeping join order.
func (r *Room) RemovePlayer(id string) {
	for i := range r.Players {
		if r.Players[i].ID == id {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			return
		}
	}
}

// AllAnswered reports whether every player has an answer recorded for the
// 1-based question number.
func (r *Room) AllAnswered(questionNumber int) bool {
	for i := range r.Players {
		if r.Players[i].AnswerAt(questionNumber) == nil {
			return false
		}
	}
	return len(r.Players) > 0
}

// Clone returns a deep copy so callers can mutate a snapshot without
// aliasing the stored document or another client's view.
func (r *Room) Clone() *Room {
	out := *r
	out.Players = make([]Player, len(r.Players))
	for i := range r.Players {
		out.Players[i] = r.Players[i].Clone()
	}
	if r.Settings.Questions != nil {
		out.Settings.Questions = make([]Question, len(r.Settings.Questions))
		copy(out.Settings.Questions, r.Settings.Questions)
	}
	if r.DeadlineTimestamp != nil {
		d := *r.DeadlineTimestamp
		out.DeadlineTimestamp = &d
	}
	if r.LastReveal != nil {
		out.LastReveal = r.LastReveal.Clone()
	}
	return &out
}
