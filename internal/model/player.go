package model

const (
	StartingLives = 3
	MaxNameLength = 20
)

// Answer is one player's recorded answer for a single question. A slot in
// Player.Answers is written at most once and never overwritten.
type Answer struct {
	SelectedIndex int  `json:"selectedIndex" bson:"selectedIndex"`
	IsCorrect     bool `json:"isCorrect" bson:"isCorrect"`
	TimeTaken     int  `json:"timeTaken" bson:"timeTaken"`
	Points        int  `json:"points" bson:"points"`
}

// Player represents a participant in a room. It lives only inside the room
// document; there is no separate player collection.
type Player struct {
	ID      string    `json:"id" bson:"id"`
	Name    string    `json:"name" bson:"name"`
	Score   int       `json:"score" bson:"score"`
	Lives   int       `json:"lives" bson:"lives"`
	Answers []*Answer `json:"answers" bson:"answers"`
	IsReady bool      `json:"isReady" bson:"isReady"`
}

// NewPlayer creates a fresh participant with full lives and no answers.
func NewPlayer(id, name string) Player {
	return Player{
		ID:    id,
		Name:  name,
		Lives: StartingLives,
	}
}

// AnswerAt returns the answer recorded for the 1-based question number,
// or nil when the slot is still empty.
func (p *Player) AnswerAt(questionNumber int) *Answer {
	i := questionNumber - 1
	if i < 0 || i >= len(p.Answers) {
		return nil
	}
	return p.Answers[i]
}

// SetAnswer records an answer for the 1-based question number. The slice is
// grown with empty slots as needed so earlier unanswered questions stay nil.
// An already filled slot is left untouched and false is returned.
func (p *Player) SetAnswer(questionNumber int, a Answer) bool {
	i := questionNumber - 1
	if i < 0 {
		return false
	}
	for len(p.Answers) <= i {
		p.Answers = append(p.Answers, nil)
	}
	if p.Answers[i] != nil {
		return false
	}
	p.Answers[i] = &a
	return true
}

// ResetForNewGame zeroes every per-game field, keeping identity.
func (p *Player) ResetForNewGame() {
	p.Score = 0
	p.Lives = StartingLives
	p.Answers = nil
	p.IsReady = false
}

// Clone returns a deep copy, including the answers slice.
func (p Player) Clone() Player {
	out := p
	if p.Answers != nil {
		out.Answers = make([]*Answer, len(p.Answers))
		for i, a := range p.Answers {
			if a != nil {
				cp := *a
				out.Answers[i] = &cp
			}
		}
	}
	return out
}
