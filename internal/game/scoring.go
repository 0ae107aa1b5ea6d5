package game

import (
	"math"
	"time"

	"github.com/Eray464646/Algorithmen/internal/model"
)

// basePoints is awarded for any correct answer; the remaining seconds on the
// question timer are added on top, so faster answers score higher.
const basePoints = 100

// Score maps answer correctness and remaining time to points. Wrong answers
// always score zero.
func Score(isCorrect bool, timeRemainingSeconds int) int {
	if !isCorrect {
		return 0
	}
	if timeRemainingSeconds < 0 {
		timeRemainingSeconds = 0
	}
	return basePoints + timeRemainingSeconds
}

// TimeRemaining returns the whole seconds left until the deadline, rounded
// up, floored at zero.
func TimeRemaining(deadline, now time.Time) int {
	left := deadline.Sub(now).Seconds()
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left))
}

// BuildAnswer scores a submission against a question. timerSeconds is the
// configured per-question window, remaining the seconds left at submission.
func BuildAnswer(q model.Question, selectedIndex, timerSeconds, remaining int) model.Answer {
	correct := selectedIndex == q.CorrectIndex
	return model.Answer{
		SelectedIndex: selectedIndex,
		IsCorrect:     correct,
		TimeTaken:     timerSeconds - remaining,
		Points:        Score(correct, remaining),
	}
}

// ApplyAnswer records an answer on the player's slot for the 1-based
// question number and updates score and lives. Lives never drop below zero
// and a wrong answer never removes the player from the game. A slot that is
// already filled is left untouched.
func ApplyAnswer(p *model.Player, questionNumber int, a model.Answer) bool {
	if !p.SetAnswer(questionNumber, a) {
		return false
	}
	p.Score += a.Points
	if !a.IsCorrect && p.Lives > 0 {
		p.Lives--
	}
	return true
}
