package model

import (
	"errors"
	"math/rand"
)

// Question is the canonical question shape used everywhere past room
// creation: exactly one choices slice and one correct index.
type Question struct {
	ID           string   `json:"id" bson:"id"`
	Question     string   `json:"question" bson:"question"`
	Choices      []string `json:"choices" bson:"choices"`
	CorrectIndex int      `json:"correctIndex" bson:"correctIndex"`
	Topic        string   `json:"topic" bson:"topic"`
}

// RawQuestion is the shape questions arrive in from the question bank. Older
// banks use `options` instead of `choices` and `correctIndices` instead of
// `correctIndex`; normalization folds both variants into Question once, so no
// later code path needs fallback branching.
type RawQuestion struct {
	ID             string   `json:"id"`
	Question       string   `json:"question"`
	Choices        []string `json:"choices,omitempty"`
	Options        []string `json:"options,omitempty"`
	CorrectIndex   *int     `json:"correctIndex,omitempty"`
	CorrectIndices []int    `json:"correctIndices,omitempty"`
	Topic          string   `json:"topic"`
}

var ErrInvalidQuestion = errors.New("question has no choices or no correct index")

// Normalize converts a raw bank entry into the canonical shape.
func Normalize(raw RawQuestion) (Question, error) {
	choices := raw.Choices
	if len(choices) == 0 {
		choices = raw.Options
	}

	correct := -1
	switch {
	case raw.CorrectIndex != nil:
		correct = *raw.CorrectIndex
	case len(raw.CorrectIndices) > 0:
		correct = raw.CorrectIndices[0]
	}

	if len(choices) == 0 || correct < 0 || correct >= len(choices) {
		return Question{}, ErrInvalidQuestion
	}

	return Question{
		ID:           raw.ID,
		Question:     raw.Question,
		Choices:      choices,
		CorrectIndex: correct,
		Topic:        raw.Topic,
	}, nil
}

// PrepareQuestions normalizes, shuffles and caps a raw question set for one
// game, and shuffles each question's choice order. The result is frozen into
// the room settings so every player sees identical questions and options.
func PrepareQuestions(raws []RawQuestion, limit int) ([]Question, error) {
	questions := make([]Question, 0, len(raws))
	for _, raw := range raws {
		q, err := Normalize(raw)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, ErrInvalidQuestion
	}

	rand.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	if limit > 0 && len(questions) > limit {
		questions = questions[:limit]
	}

	for i := range questions {
		questions[i] = shuffleChoices(questions[i])
	}
	return questions, nil
}

// shuffleChoices randomizes the option order while tracking where the
// correct answer ends up.
func shuffleChoices(q Question) Question {
	perm := rand.Perm(len(q.Choices))
	shuffled := make([]string, len(q.Choices))
	correct := q.CorrectIndex
	for dst, src := range perm {
		shuffled[dst] = q.Choices[src]
		if src == q.CorrectIndex {
			correct = dst
		}
	}
	q.Choices = shuffled
	q.CorrectIndex = correct
	return q
}
