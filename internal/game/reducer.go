package game

import (
	"time"

	"github.com/Eray464646/Algorithmen/internal/model"
)

// CommandKind names a side effect the UI layer should perform after a
// document update. The reducer only describes effects, it never performs
// them, which keeps the state machine testable without transport or UI.
type CommandKind int

const (
	CommandRenderLobby CommandKind = iota
	CommandRenderQuestion
	CommandRenderReveal
	CommandRenderPodium
	CommandStartTimer
	CommandStopTimer
)

func (k CommandKind) String() string {
	switch k {
	case CommandRenderLobby:
		return "render_lobby"
	case CommandRenderQuestion:
		return "render_question"
	case CommandRenderReveal:
		return "render_reveal"
	case CommandRenderPodium:
		return "render_podium"
	case CommandStartTimer:
		return "start_timer"
	case CommandStopTimer:
		return "stop_timer"
	}
	return "command"
}

type Command struct {
	Kind     CommandKind
	Question int           // 1-based, for question/timer commands
	Deadline *time.Time    // for CommandStartTimer
	Reveal   *model.Reveal // for CommandRenderReveal
	Room     *model.Room   // snapshot the command was derived from
}

// State is what a client carries between document deliveries: its current
// phase and the timestamp of the newest reveal it has already rendered. The
// timestamp check is what tells a genuinely new reveal apart from an
// at-least-once redelivery of one already on screen.
type State struct {
	Phase        Phase
	SeenRevealAt time.Time
}

// Reduce folds a freshly delivered room document into the client state and
// returns the side-effect commands the update calls for. Feeding the same
// document twice yields no commands the second time except lobby and
// question re-renders, which are idempotent by construction.
func Reduce(prev State, room *model.Room) (State, []Command) {
	next := State{Phase: DerivePhase(room), SeenRevealAt: prev.SeenRevealAt}
	var cmds []Command

	switch next.Phase.Kind {
	case PhaseLobby:
		// Re-render on every delivery: join/ready/leave all surface as
		// plain player-array changes.
		cmds = append(cmds, Command{Kind: CommandRenderLobby, Room: room})

	case PhaseAnswering:
		if prev.Phase.Kind != PhaseAnswering || prev.Phase.Question != next.Phase.Question {
			cmds = append(cmds, Command{
				Kind:     CommandStartTimer,
				Question: next.Phase.Question,
				Deadline: room.DeadlineTimestamp,
			})
		}
		cmds = append(cmds, Command{Kind: CommandRenderQuestion, Question: next.Phase.Question, Room: room})

	case PhaseRevealed:
		if room.LastReveal != nil && room.LastReveal.Timestamp.After(prev.SeenRevealAt) {
			next.SeenRevealAt = room.LastReveal.Timestamp
			cmds = append(cmds,
				Command{Kind: CommandStopTimer, Question: next.Phase.Question},
				Command{Kind: CommandRenderReveal, Question: next.Phase.Question, Reveal: room.LastReveal, Room: room},
			)
		}

	case PhaseFinished:
		if prev.Phase.Kind != PhaseFinished {
			cmds = append(cmds,
				Command{Kind: CommandStopTimer},
				Command{Kind: CommandRenderPodium, Room: room},
			)
		}
	}

	return next, cmds
}
