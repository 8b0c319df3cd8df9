package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/campusbooking/classroom-reservation/internal/model"
)

// GetByID returns one classroom.
func (g *Registry) GetByID(ctx context.Context, id string) (*model.Classroom, error) {
	room, err := g.store.ClassroomByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, fmt.Errorf("%w: classroom not found", ErrNotFound)
	}
	return room, nil
}

// Create registers a new classroom. New rooms always start active.
func (g *Registry) Create(ctx context.Context, req model.CreateClassroomRequest) (*model.Classroom, error) {
	if req.Capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive", ErrInvalidArgument)
	}
	now := g.now().UTC()
	room := &model.Classroom{
		ID:            uuid.NewString(),
		Name:          req.Name,
		RoomNumber:    req.RoomNumber,
		Location:      req.Location,
		Capacity:      req.Capacity,
		ClassroomType: req.ClassroomType,
		HasProjector:  req.HasProjector,
		HasWhiteboard: req.HasWhiteboard,
		HasComputers:  req.HasComputers,
		Description:   req.Description,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if room.ClassroomType == "" {
		room.ClassroomType = model.DefaultPurpose
	}
	if err := g.store.CreateClassroom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// Update applies a partial update to a classroom. Disabling a room
// (IsActive=false) blocks new bookings but leaves existing reservations
// untouched.
func (g *Registry) Update(ctx context.Context, id string, patch model.ClassroomPatch) (*model.Classroom, error) {
	room, err := g.store.ClassroomByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if room == nil {
		return nil, fmt.Errorf("%w: classroom not found", ErrNotFound)
	}
	if patch.Capacity != nil && *patch.Capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive", ErrInvalidArgument)
	}

	if patch.Name != nil {
		room.Name = *patch.Name
	}
	if patch.RoomNumber != nil {
		room.RoomNumber = *patch.RoomNumber
	}
	if patch.Location != nil {
		room.Location = *patch.Location
	}
	if patch.Capacity != nil {
		room.Capacity = *patch.Capacity
	}
	if patch.ClassroomType != nil {
		room.ClassroomType = *patch.ClassroomType
	}
	if patch.HasProjector != nil {
		room.HasProjector = *patch.HasProjector
	}
	if patch.HasWhiteboard != nil {
		room.HasWhiteboard = *patch.HasWhiteboard
	}
	if patch.HasComputers != nil {
		room.HasComputers = *patch.HasComputers
	}
	if patch.Description != nil {
		room.Description = patch.Description
	}
	if patch.IsActive != nil {
		room.IsActive = *patch.IsActive
	}
	room.UpdatedAt = g.now().UTC()

	if err := g.store.UpdateClassroom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// Delete removes a classroom. Dependent reservations are removed with it;
// the store's foreign keys cascade the way the deployment schema dictates.
func (g *Registry) Delete(ctx context.Context, id string) error {
	room, err := g.store.ClassroomByID(ctx, id)
	if err != nil {
		return err
	}
	if room == nil {
		return fmt.Errorf("%w: classroom not found", ErrNotFound)
	}
	return g.store.DeleteClassroom(ctx, id)
}

// List returns classrooms matching the filter. When the filter carries an
// availability window, rooms with a conflicting non-terminal reservation in
// that window are excluded using the same overlap predicate the reservation
// engine applies.
func (g *Registry) List(ctx context.Context, f model.ClassroomFilter) ([]model.Classroom, error) {
	return g.store.ListClassrooms(ctx, f)
}
