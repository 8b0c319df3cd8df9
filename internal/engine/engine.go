package engine

import (
	"context"
	"time"

	"github.com/campusbooking/classroom-reservation/internal/model"
)

// Operating hours. A reservation may start at or after OpenHour and must end
// by CloseHour sharp.
const (
	OpenHour  = 8
	CloseHour = 20
)

// Tx is the transactional surface used by engine operations that both check
// and write. Lookups return (nil, nil) when the row does not exist; the
// engine maps absence onto ErrNotFound.
type Tx interface {
	ReservationByID(ctx context.Context, id string) (*model.Reservation, error)
	ClassroomByID(ctx context.Context, id string) (*model.Classroom, error)
	// HasOverlap reports whether any reservation on the classroom with a
	// non-terminal status intersects [start, end). excludeID, when non-empty,
	// leaves that reservation out of the scan.
	HasOverlap(ctx context.Context, classroomID string, start, end time.Time, excludeID string) (bool, error)
	CreateReservation(ctx context.Context, r *model.Reservation) error
	UpdateReservation(ctx context.Context, r *model.Reservation) error
	DeleteReservation(ctx context.Context, id string) error
}

// Store is the reservation persistence surface the engine depends on. InTx
// runs fn inside a single scoped transaction: it commits when fn returns nil
// and rolls back otherwise, so an overlap check and the following write are
// one atomic unit. The SQL binding additionally locks conflicting rows so two
// concurrent creates for the same slot cannot both commit.
type Store interface {
	InTx(ctx context.Context, fn func(Tx) error) error
	// View returns the hydrated read model for one reservation, or
	// (nil, nil) when it does not exist.
	View(ctx context.Context, id string) (*model.ReservationView, error)
	// ListViews returns hydrated reservations matching the filter, newest
	// created first. An empty result is a non-nil empty slice.
	ListViews(ctx context.Context, f model.ReservationFilter) ([]model.ReservationView, error)
}

// ClassroomStore is the classroom persistence surface behind the Registry.
// Lookups return (nil, nil) when the row does not exist. DeleteClassroom
// removes dependent reservations with the classroom.
type ClassroomStore interface {
	ClassroomByID(ctx context.Context, id string) (*model.Classroom, error)
	CreateClassroom(ctx context.Context, c *model.Classroom) error
	UpdateClassroom(ctx context.Context, c *model.Classroom) error
	DeleteClassroom(ctx context.Context, id string) error
	ListClassrooms(ctx context.Context, f model.ClassroomFilter) ([]model.Classroom, error)
}

// Engine arbitrates reservation requests. Identity arrives explicitly as
// (requesterID, isAdmin) on every call; the engine performs no authentication
// itself.
type Engine struct {
	store Store
	now   func() time.Time
}

// New returns an Engine on the given store using wall-clock time.
func New(store Store) *Engine {
	return NewWithClock(store, time.Now)
}

// NewWithClock returns an Engine with an injectable time source for tests.
func NewWithClock(store Store, now func() time.Time) *Engine {
	if store == nil {
		panic("nil store passed to engine.New")
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{store: store, now: now}
}

// Registry manages the classroom inventory consulted by the Engine.
type Registry struct {
	store ClassroomStore
	now   func() time.Time
}

// NewRegistry returns a Registry on the given store.
func NewRegistry(store ClassroomStore) *Registry {
	return NewRegistryWithClock(store, time.Now)
}

// NewRegistryWithClock returns a Registry with an injectable time source.
func NewRegistryWithClock(store ClassroomStore, now func() time.Time) *Registry {
	if store == nil {
		panic("nil store passed to engine.NewRegistry")
	}
	if now == nil {
		now = time.Now
	}
	return &Registry{store: store, now: now}
}
