// Package memory provides an in-memory implementation of the engine's store
// interfaces. It backs the engine and handler tests so the business rules can
// be exercised without a MySQL instance. A single mutex serializes
// transactions, which mirrors the atomicity the SQL binding gets from InnoDB
// row locks; engine operations only write after their checks pass, so
// applying writes immediately is equivalent to commit-on-success.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/campusbooking/classroom-reservation/internal/engine"
	"github.com/campusbooking/classroom-reservation/internal/model"
)

// Store holds classrooms, reservations and users in maps. The zero value is
// not usable; call NewStore.
type Store struct {
	mu           sync.RWMutex
	classrooms   map[string]model.Classroom
	reservations map[string]model.Reservation
	users        map[string]model.User
}

var (
	_ engine.Store          = (*Store)(nil)
	_ engine.ClassroomStore = (*Store)(nil)
)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		classrooms:   make(map[string]model.Classroom),
		reservations: make(map[string]model.Reservation),
		users:        make(map[string]model.User),
	}
}

// PutUser inserts or replaces a user record. Views join user rows for their
// display fields, so tests seed owners and approvers through here.
func (s *Store) PutUser(u model.User) {
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
}

// InTx runs fn while holding the store lock, serializing every
// check-then-write sequence.
func (s *Store) InTx(_ context.Context, fn func(engine.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(tx{s: s})
}

// tx implements engine.Tx against the locked store.
type tx struct{ s *Store }

func (t tx) ReservationByID(_ context.Context, id string) (*model.Reservation, error) {
	if r, ok := t.s.reservations[id]; ok {
		return &r, nil
	}
	return nil, nil
}

func (t tx) ClassroomByID(_ context.Context, id string) (*model.Classroom, error) {
	if c, ok := t.s.classrooms[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (t tx) HasOverlap(_ context.Context, classroomID string, start, end time.Time, excludeID string) (bool, error) {
	for _, r := range t.s.reservations {
		if r.ClassroomID != classroomID || r.ID == excludeID {
			continue
		}
		if model.Terminal(r.Status) {
			continue
		}
		if r.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (t tx) CreateReservation(_ context.Context, r *model.Reservation) error {
	t.s.reservations[r.ID] = *r
	return nil
}

func (t tx) UpdateReservation(_ context.Context, r *model.Reservation) error {
	t.s.reservations[r.ID] = *r
	return nil
}

func (t tx) DeleteReservation(_ context.Context, id string) error {
	delete(t.s.reservations, id)
	return nil
}

// View joins the reservation with its classroom, owner and approver rows.
func (s *Store) View(_ context.Context, id string) (*model.ReservationView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reservations[id]
	if !ok {
		return nil, nil
	}
	v := s.hydrate(r)
	return &v, nil
}

// ListViews returns hydrated reservations matching the filter, newest created
// first.
func (s *Store) ListViews(_ context.Context, f model.ReservationFilter) ([]model.ReservationView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ReservationView, 0)
	for _, r := range s.reservations {
		if !matchReservation(r, f) {
			continue
		}
		out = append(out, s.hydrate(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func matchReservation(r model.Reservation, f model.ReservationFilter) bool {
	if f.ClassroomID != "" && r.ClassroomID != f.ClassroomID {
		return false
	}
	if f.UserID != "" && r.UserID != f.UserID {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Purpose != "" && r.Purpose != f.Purpose {
		return false
	}
	if f.From != nil && r.StartTime.Before(*f.From) {
		return false
	}
	if f.To != nil && r.EndTime.After(*f.To) {
		return false
	}
	return true
}

// hydrate builds the read model for one reservation. Callers hold the lock.
func (s *Store) hydrate(r model.Reservation) model.ReservationView {
	v := model.ReservationView{
		ID:            r.ID,
		ClassroomID:   r.ClassroomID,
		UserID:        r.UserID,
		Title:         r.Title,
		Description:   r.Description,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		Status:        r.Status,
		Purpose:       r.Purpose,
		AttendeeCount: r.AttendeeCount,
		ApprovedBy:    r.ApprovedBy,
		ApprovedAt:    r.ApprovedAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if c, ok := s.classrooms[r.ClassroomID]; ok {
		v.ClassroomName = c.Name
		v.RoomNumber = c.RoomNumber
	}
	if u, ok := s.users[r.UserID]; ok {
		v.UserFullName = u.FullName()
		v.UserEmail = u.Email
	}
	if r.ApprovedBy != nil {
		if a, ok := s.users[*r.ApprovedBy]; ok {
			name := a.FullName()
			v.ApprovedByName = &name
		}
	}
	return v
}

// ClassroomByID returns a classroom copy, or nil when absent.
func (s *Store) ClassroomByID(_ context.Context, id string) (*model.Classroom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.classrooms[id]; ok {
		return &c, nil
	}
	return nil, nil
}

// CreateClassroom stores a new classroom.
func (s *Store) CreateClassroom(_ context.Context, c *model.Classroom) error {
	s.mu.Lock()
	s.classrooms[c.ID] = *c
	s.mu.Unlock()
	return nil
}

// UpdateClassroom replaces an existing classroom row.
func (s *Store) UpdateClassroom(_ context.Context, c *model.Classroom) error {
	s.mu.Lock()
	s.classrooms[c.ID] = *c
	s.mu.Unlock()
	return nil
}

// DeleteClassroom removes the classroom and cascades to its reservations,
// matching the SQL schema's ON DELETE CASCADE.
func (s *Store) DeleteClassroom(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.classrooms, id)
	for rid, r := range s.reservations {
		if r.ClassroomID == id {
			delete(s.reservations, rid)
		}
	}
	return nil
}

// ListClassrooms returns classrooms matching the filter, ordered by name then
// room number for deterministic output.
func (s *Store) ListClassrooms(_ context.Context, f model.ClassroomFilter) ([]model.Classroom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Classroom, 0)
	for _, c := range s.classrooms {
		if !s.matchClassroom(c, f) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].RoomNumber < out[j].RoomNumber
	})
	return out, nil
}

// matchClassroom applies the listing filter. Callers hold the lock.
func (s *Store) matchClassroom(c model.Classroom, f model.ClassroomFilter) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(c.Name), q) &&
			!strings.Contains(strings.ToLower(c.RoomNumber), q) &&
			!strings.Contains(strings.ToLower(c.Location), q) {
			return false
		}
	}
	if f.ClassroomType != "" && c.ClassroomType != f.ClassroomType {
		return false
	}
	if f.MinCapacity != nil && c.Capacity < *f.MinCapacity {
		return false
	}
	if f.MaxCapacity != nil && c.Capacity > *f.MaxCapacity {
		return false
	}
	if f.HasProjector != nil && c.HasProjector != *f.HasProjector {
		return false
	}
	if f.HasWhiteboard != nil && c.HasWhiteboard != *f.HasWhiteboard {
		return false
	}
	if f.HasComputers != nil && c.HasComputers != *f.HasComputers {
		return false
	}
	if f.IsActive != nil && c.IsActive != *f.IsActive {
		return false
	}
	if f.AvailableFrom != nil && f.AvailableTo != nil {
		for _, r := range s.reservations {
			if r.ClassroomID != c.ID || model.Terminal(r.Status) {
				continue
			}
			if r.Overlaps(*f.AvailableFrom, *f.AvailableTo) {
				return false
			}
		}
	}
	return true
}
