package store

import (
	"context"
	"errors"

	"github.com/Eray464646/Algorithmen/internal/model"
)

var ErrNotFound = errors.New("room not found")

// Subscription is a live feed of room documents. The store delivers the full
// current document after every committed change, including the subscriber's
// own writes. Delivery is at-least-once and not globally ordered; consumers
// must re-derive state from each snapshot rather than count events.
type Subscription interface {
	// Updates is closed when the subscription ends or the room is deleted.
	Updates() <-chan *model.Room
	Close() error
}

// RoomStore is the shared document store the multiplayer mode synchronizes
// through. Update always carries full replacement values for top-level
// fields (the players array in particular is replaced whole, never patched
// per element).
type RoomStore interface {
	Create(ctx context.Context, room *model.Room) error
	GetByID(ctx context.Context, id string) (*model.Room, error)
	GetByCode(ctx context.Context, code string) (*model.Room, error)
	Update(ctx context.Context, room *model.Room) error

	// SetReveal publishes the per-question reveal snapshot with an atomic
	// guard: the write commits only while the stored document has no reveal
	// yet, or one for an earlier question. It reports whether this call won
	// the write. A lost race is not an error.
	SetReveal(ctx context.Context, id string, reveal *model.Reveal) (bool, error)

	Delete(ctx context.Context, id string) error
	Subscribe(ctx context.Context, id string) (Subscription, error)
}
