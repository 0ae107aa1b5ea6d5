package game

import (
	"fmt"

	"github.com/Eray464646/Algorithmen/internal/model"
)

// PhaseKind is a client's locally derived interpretation of the room state.
type PhaseKind int

const (
	PhaseLobby PhaseKind = iota
	PhaseAnswering
	PhaseRevealed
	PhaseFinished
)

func (k PhaseKind) String() string {
	switch k {
	case PhaseLobby:
		return "lobby"
	case PhaseAnswering:
		return "answering"
	case PhaseRevealed:
		return "revealed"
	case PhaseFinished:
		return "finished"
	}
	return fmt.Sprintf("phase(%d)", int(k))
}

// Phase pairs the kind with the 1-based question number it applies to
// (zero in the lobby and after the game).
type Phase struct {
	Kind     PhaseKind
	Question int
}

// DerivePhase maps a room document to a display phase. It is a pure function
// of currentQuestionIndex and lastReveal, so every client holding the same
// snapshot derives the same phase, and redelivered snapshots are harmless.
func DerivePhase(room *model.Room) Phase {
	switch {
	case room.CurrentQuestionIndex == 0:
		return Phase{Kind: PhaseLobby}
	case room.Finished():
		return Phase{Kind: PhaseFinished}
	case room.LastReveal != nil && room.LastReveal.QuestionIndex == room.CurrentQuestionIndex:
		return Phase{Kind: PhaseRevealed, Question: room.CurrentQuestionIndex}
	default:
		return Phase{Kind: PhaseAnswering, Question: room.CurrentQuestionIndex}
	}
}
