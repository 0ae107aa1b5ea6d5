package game

import (
	"sort"

	"github.com/Eray464646/Algorithmen/internal/model"
)

// RevealRanking orders a reveal's player results by score descending for
// display. The sort is stable so ties keep the original player order.
func RevealRanking(results []model.PlayerResult) []model.PlayerResult {
	ranked := make([]model.PlayerResult, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// Standing is one line of the final podium.
type Standing struct {
	Rank     int          `json:"rank"`
	Player   model.Player `json:"player"`
	Correct  int          `json:"correct"`
	Answered int          `json:"answered"`
	// Accuracy counts only questions the player actually answered; an
	// unanswered slot does not enter the denominator.
	Accuracy float64 `json:"accuracy"`
}

// Podium derives the final ranked summary from the room's players. Pure and
// read-only: every client computes the identical podium from the same
// document.
func Podium(players []model.Player) []Standing {
	ordered := make([]model.Player, len(players))
	for i, p := range players {
		ordered[i] = p.Clone()
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})

	standings := make([]Standing, len(ordered))
	for i, p := range ordered {
		answered, correct := 0, 0
		for _, a := range p.Answers {
			if a == nil {
				continue
			}
			answered++
			if a.IsCorrect {
				correct++
			}
		}
		accuracy := 0.0
		if answered > 0 {
			accuracy = float64(correct) / float64(answered)
		}
		standings[i] = Standing{
			Rank:     i + 1,
			Player:   p,
			Correct:  correct,
			Answered: answered,
			Accuracy: accuracy,
		}
	}
	return standings
}
