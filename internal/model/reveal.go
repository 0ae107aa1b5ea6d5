package model

import "time"

// PlayerResult is one player's line in a reveal snapshot.
type PlayerResult struct {
	ID     string  `json:"id" bson:"id"`
	Name   string  `json:"name" bson:"name"`
	Answer *Answer `json:"answer" bson:"answer"`
	Score  int     `json:"score" bson:"score"`
	Lives  int     `json:"lives" bson:"lives"`
}

// Reveal is published exactly once per question when the answer window
// closes. Timestamp is strictly increasing across reveals of one game, which
// lets clients tell a new reveal from a redelivered one.
type Reveal struct {
	QuestionIndex int            `json:"questionIndex" bson:"questionIndex"`
	CorrectIndex  int            `json:"correctIndex" bson:"correctIndex"`
	Timestamp     time.Time      `json:"timestamp" bson:"timestamp"`
	PlayerResults []PlayerResult `json:"playerResults" bson:"playerResults"`
}

func (rv *Reveal) Clone() *Reveal {
	out := *rv
	out.PlayerResults = make([]PlayerResult, len(rv.PlayerResults))
	for i, pr := range rv.PlayerResults {
		out.PlayerResults[i] = pr
		if pr.Answer != nil {
			a := *pr.Answer
			out.PlayerResults[i].Answer = &a
		}
	}
	return &out
}
