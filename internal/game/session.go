package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Eray464646/Algorithmen/internal/model"
	"github.com/Eray464646/Algorithmen/internal/store"
)

var (
	ErrRoomFull        = errors.New("room is full")
	ErrGameStarted     = errors.New("game has already started")
	ErrAlreadyAnswered = errors.New("answer already recorded for this question")
	ErrAnswersClosed   = errors.New("answers are closed for this question")
	ErrInvalidChoice   = errors.New("selected choice is out of range")
	ErrNotInRoom       = errors.New("player is no longer in the room")
)

// How often the host re-checks the question deadline. The tick only
// re-evaluates state derived from the current snapshot; it never mutates
// anything unless the deadline has actually passed.
const hostTickInterval = 250 * time.Millisecond

// Session is one participant's handle on a room: it owns the player
// identity, the latest document snapshot, the store subscription and, for
// the host, the deadline ticker. It replaces the ambient module-level
// state of the original design with an explicit object created on
// create/join and torn down on leave.
//
// All coordination between participants goes through the room document; a
// session never talks to another session directly.
type Session struct {
	store store.RoomStore
	sub   store.Subscription

	roomID   string
	playerID string
	isHost   bool

	mu    sync.Mutex
	room  *model.Room
	state State

	commands  chan Command
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// CreateRoom creates a new room with the caller as host and first player.
// The question set must already be normalized and shuffled; it is frozen
// into the room settings so every joiner plays the identical game.
func CreateRoom(ctx context.Context, st store.RoomStore, name string, questions []model.Question, maxPlayers, timerSeconds int) (*Session, error) {
	if len(questions) == 0 {
		return nil, model.ErrInvalidQuestion
	}
	if maxPlayers < model.MinPlayersToStart || maxPlayers > model.DefaultMaxPlayers {
		maxPlayers = model.DefaultMaxPlayers
	}
	if timerSeconds <= 0 {
		timerSeconds = model.DefaultTimerSeconds
	}

	roomID := uuid.New().String()
	player := model.NewPlayer(newPlayerID(), sanitizeName(name))

	room := &model.Room{
		ID:      roomID,
		Code:    model.CodeFromID(roomID),
		HostID:  player.ID,
		Players: []model.Player{player},
		Settings: model.RoomSettings{
			MaxPlayers:              maxPlayers,
			TimerPerQuestionSeconds: timerSeconds,
			QuestionCount:           len(questions),
			Questions:               questions,
		},
		CreatedAt: time.Now(),
	}

	if err := st.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	sess, err := newSession(ctx, st, room, player.ID, true)
	if err != nil {
		// Best effort: a room nobody is subscribed to is unreachable.
		_ = st.Delete(ctx, roomID)
		return nil, err
	}
	return sess, nil
}

// JoinRoom adds a player to an existing room by its shareable code. All
// join preconditions are checked against the fetched document before any
// write.
func JoinRoom(ctx context.Context, st store.RoomStore, code, name string) (*Session, error) {
	room, err := st.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	if room.Full() {
		return nil, ErrRoomFull
	}
	if room.Started() {
		return nil, ErrGameStarted
	}

	player := model.NewPlayer(newPlayerID(), sanitizeName(name))
	room.Players = append(room.Players, player)

	if err := st.Update(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to join room: %w", err)
	}
	return newSession(ctx, st, room, player.ID, false)
}

func newSession(ctx context.Context, st store.RoomStore, room *model.Room, playerID string, isHost bool) (*Session, error) {
	sub, err := st.Subscribe(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to room: %w", err)
	}

	s := &Session{
		store:    st,
		sub:      sub,
		roomID:   room.ID,
		playerID: playerID,
		isHost:   isHost,
		room:     room.Clone(),
		commands: make(chan Command, 64),
		done:     make(chan struct{}),
	}

	// Seed the reducer so the client renders its first screen without
	// waiting for a feed delivery.
	var cmds []Command
	s.state, cmds = Reduce(State{}, s.room)
	for _, c := range cmds {
		s.emit(c)
	}

	s.wg.Add(1)
	go s.run()
	return s, nil
}

func newPlayerID() string {
	return "p_" + uuid.New().String()[:8]
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Player"
	}
	// Truncate by runes, not bytes; names are user input and can be
	// multibyte.
	if runes := []rune(name); len(runes) > model.MaxNameLength {
		name = string(runes[:model.MaxNameLength])
	}
	return name
}

// run is the session's event loop: document deliveries and, for the host,
// deadline ticks. Everything else (answers, host actions) happens on the
// caller's goroutine against the freshest snapshot.
func (s *Session) run() {
	defer s.wg.Done()
	defer close(s.commands)

	var tick <-chan time.Time
	if s.isHost {
		t := time.NewTicker(hostTickInterval)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case room, ok := <-s.sub.Updates():
			if !ok {
				// Feed closed: the room was deleted out from under us.
				return
			}
			s.apply(room)
		case <-tick:
			s.deadlineTick()
		case <-s.done:
			return
		}
	}
}

// apply folds a delivered document into local state and emits the resulting
// commands. Deliveries are at-least-once; the reducer absorbs duplicates.
func (s *Session) apply(room *model.Room) {
	s.mu.Lock()
	s.room = room
	var cmds []Command
	s.state, cmds = Reduce(s.state, room)
	s.mu.Unlock()

	for _, c := range cmds {
		s.emit(c)
	}

	if s.isHost {
		s.tryReveal(context.Background(), room)
	}
}

func (s *Session) deadlineTick() {
	s.mu.Lock()
	room := s.room
	s.mu.Unlock()
	if room != nil {
		s.tryReveal(context.Background(), room)
	}
}

// tryReveal is the host's transition check. It is evaluated on every answer
// write and every timer tick; the local guard in EvaluateReveal plus the
// store's conditional write keep it to at most one committed reveal per
// question no matter how often it fires.
func (s *Session) tryReveal(ctx context.Context, room *model.Room) {
	reveal := EvaluateReveal(room, time.Now())
	if reveal == nil {
		return
	}
	if _, err := s.store.SetReveal(ctx, room.ID, reveal); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Printf("room %s: reveal write failed: %v", room.Code, err)
	}
}

// emit hands a command to the consumer without ever blocking the event
// loop. A full buffer drops the command; consumers re-render from the next
// snapshot anyway.
func (s *Session) emit(c Command) {
	select {
	case s.commands <- c:
	default:
	}
}

// Commands is the stream of side effects the UI layer should perform. It is
// closed when the session ends or the room is deleted. The stream is single
// consumer; a consumer that attaches late catches up via Resync.
func (s *Session) Commands() <-chan Command {
	return s.commands
}

// Resync re-derives the render commands for the current snapshot from a
// blank state, for a consumer that missed earlier deliveries.
func (s *Session) Resync() []Command {
	s.mu.Lock()
	room := s.room.Clone()
	s.mu.Unlock()

	_, cmds := Reduce(State{}, room)
	return cmds
}

// Room returns a deep copy of the latest document snapshot.
func (s *Session) Room() *model.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.Clone()
}

// Phase returns the session's currently derived phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Phase
}

// Player returns this participant's entry from the latest snapshot.
func (s *Session) Player() (model.Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.room.FindPlayer(s.playerID); p != nil {
		return p.Clone(), true
	}
	return model.Player{}, false
}

func (s *Session) PlayerID() string { return s.playerID }
func (s *Session) RoomID() string   { return s.roomID }
func (s *Session) IsHost() bool     { return s.isHost }

// snapshot clones the freshest document for a read-modify-write.
func (s *Session) snapshot() *model.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.Clone()
}

// ToggleReady flips this player's pre-game ready flag.
func (s *Session) ToggleReady(ctx context.Context) error {
	room := s.snapshot()
	if room.Started() {
		return ErrGameStarted
	}
	me := room.FindPlayer(s.playerID)
	if me == nil {
		return ErrNotInRoom
	}
	me.IsReady = !me.IsReady
	return s.store.Update(ctx, room)
}

// SubmitAnswer records this player's answer for the active question. The
// locally derived phase gates submission: once a reveal for the question
// has arrived, input is refused. A submission racing the reveal write is
// accepted if it lands first (last write wins on the players array).
func (s *Session) SubmitAnswer(ctx context.Context, selectedIndex int) error {
	room := s.snapshot()

	phase := DerivePhase(room)
	if phase.Kind != PhaseAnswering {
		return ErrAnswersClosed
	}
	q := phase.Question

	question := room.ActiveQuestion()
	if question == nil {
		return ErrAnswersClosed
	}
	if selectedIndex < 0 || selectedIndex >= len(question.Choices) {
		return ErrInvalidChoice
	}

	me := room.FindPlayer(s.playerID)
	if me == nil {
		return ErrNotInRoom
	}
	if me.AnswerAt(q) != nil {
		return ErrAlreadyAnswered
	}

	remaining := 0
	if room.DeadlineTimestamp != nil {
		remaining = TimeRemaining(*room.DeadlineTimestamp, time.Now())
	}
	answer := BuildAnswer(*question, selectedIndex, room.Settings.TimerPerQuestionSeconds, remaining)
	ApplyAnswer(me, q, answer)

	if err := s.store.Update(ctx, room); err != nil {
		return fmt.Errorf("failed to submit answer: %w", err)
	}

	if s.isHost {
		s.tryReveal(ctx, room)
	}
	return nil
}

// Start begins the game. Host only; needs at least two players.
func (s *Session) Start(ctx context.Context) error {
	if !s.isHost {
		return ErrNotHost
	}
	room := s.snapshot()
	if err := StartGame(room, time.Now()); err != nil {
		return err
	}
	return s.store.Update(ctx, room)
}

// Next advances past a revealed question, or finishes the game after the
// last one. Host only.
func (s *Session) Next(ctx context.Context) error {
	if !s.isHost {
		return ErrNotHost
	}
	room := s.snapshot()
	if err := NextQuestion(room, time.Now()); err != nil {
		return err
	}
	return s.store.Update(ctx, room)
}

// Reset returns a finished room to the lobby for another game. Host only.
func (s *Session) Reset(ctx context.Context) error {
	if !s.isHost {
		return ErrNotHost
	}
	room := s.snapshot()
	if err := ResetGame(room); err != nil {
		return err
	}
	return s.store.Update(ctx, room)
}

// Leave removes this participant. The host leaving, or the last player
// leaving, deletes the room; otherwise the player is dropped from the
// players array. The session is torn down either way.
func (s *Session) Leave(ctx context.Context) error {
	defer s.close()

	room := s.snapshot()
	room.RemovePlayer(s.playerID)

	var err error
	if s.isHost || len(room.Players) == 0 {
		err = s.store.Delete(ctx, s.roomID)
	} else {
		err = s.store.Update(ctx, room)
	}
	if errors.Is(err, store.ErrNotFound) {
		// Already gone; leaving an orphaned session is not an error.
		return nil
	}
	return err
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.sub.Close()
	})
	s.wg.Wait()
}
