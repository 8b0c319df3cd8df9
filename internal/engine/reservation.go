package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/campusbooking/classroom-reservation/internal/model"
)

// CreateReservation validates a booking request and persists it with status
// Pending. Checks run cheapest first so callers observe a deterministic error
// precedence: time-range problems surface before classroom lookups, and the
// query-dependent overlap and capacity checks come last, inside the
// transaction that also performs the insert.
func (e *Engine) CreateReservation(ctx context.Context, requesterID string, req model.CreateReservationRequest) (*model.ReservationView, error) {
	start := req.StartTime.UTC()
	end := req.EndTime.UTC()

	if !end.After(start) {
		return nil, fmt.Errorf("%w: end time must be after start time", ErrInvalidRange)
	}
	now := e.now().UTC()
	if start.Before(now) {
		return nil, fmt.Errorf("%w: cannot create a reservation in the past", ErrInvalidRange)
	}
	if h := start.Hour(); h < OpenHour || h >= CloseHour {
		return nil, fmt.Errorf("%w: reservations can only start between 08:00 and 20:00", ErrOutsideHours)
	}
	if end.Hour() > CloseHour || (end.Hour() == CloseHour && end.Minute() > 0) {
		return nil, fmt.Errorf("%w: reservations must end by 20:00", ErrOutsideHours)
	}

	purpose := req.Purpose
	if purpose == "" {
		purpose = model.DefaultPurpose
	}

	id := uuid.NewString()
	err := e.store.InTx(ctx, func(tx Tx) error {
		room, err := tx.ClassroomByID(ctx, req.ClassroomID)
		if err != nil {
			return err
		}
		if room == nil {
			return fmt.Errorf("%w: classroom not found", ErrNotFound)
		}
		if !room.IsActive {
			return fmt.Errorf("%w: classroom is not available", ErrUnavailable)
		}
		conflict, err := tx.HasOverlap(ctx, req.ClassroomID, start, end, "")
		if err != nil {
			return err
		}
		if conflict {
			return fmt.Errorf("%w: the classroom is already booked for this time slot", ErrConflict)
		}
		if req.AttendeeCount != nil && *req.AttendeeCount > room.Capacity {
			return fmt.Errorf("%w: attendee count (%d) exceeds classroom capacity (%d)",
				ErrCapacityExceeded, *req.AttendeeCount, room.Capacity)
		}
		return tx.CreateReservation(ctx, &model.Reservation{
			ID:            id,
			ClassroomID:   req.ClassroomID,
			UserID:        requesterID,
			Title:         req.Title,
			Description:   req.Description,
			StartTime:     start,
			EndTime:       end,
			Status:        model.StatusPending,
			Purpose:       purpose,
			AttendeeCount: req.AttendeeCount,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	})
	if err != nil {
		return nil, err
	}
	return e.view(ctx, id)
}

// UpdateReservation applies a partial update. Non-admins may only edit their
// own reservations and only while still Pending; admins bypass both checks.
// The effective window is re-validated and re-scanned for overlaps, excluding
// the reservation itself.
func (e *Engine) UpdateReservation(ctx context.Context, id, requesterID string, isAdmin bool, patch model.ReservationPatch) (*model.ReservationView, error) {
	err := e.store.InTx(ctx, func(tx Tx) error {
		r, err := tx.ReservationByID(ctx, id)
		if err != nil {
			return err
		}
		if r == nil {
			return fmt.Errorf("%w: reservation not found", ErrNotFound)
		}
		if !isAdmin && r.UserID != requesterID {
			return fmt.Errorf("%w: you can only edit your own reservations", ErrUnauthorized)
		}
		if !isAdmin && r.Status != model.StatusPending {
			return fmt.Errorf("%w: only pending reservations can be edited", ErrInvalidState)
		}

		newStart := r.StartTime
		if patch.StartTime != nil {
			newStart = patch.StartTime.UTC()
		}
		newEnd := r.EndTime
		if patch.EndTime != nil {
			newEnd = patch.EndTime.UTC()
		}
		if !newEnd.After(newStart) {
			return fmt.Errorf("%w: end time must be after start time", ErrInvalidRange)
		}
		conflict, err := tx.HasOverlap(ctx, r.ClassroomID, newStart, newEnd, r.ID)
		if err != nil {
			return err
		}
		if conflict {
			return fmt.Errorf("%w: the classroom is already booked for this time slot", ErrConflict)
		}

		if patch.Title != nil {
			r.Title = *patch.Title
		}
		if patch.Description != nil {
			r.Description = patch.Description
		}
		r.StartTime = newStart
		r.EndTime = newEnd
		if patch.Purpose != nil {
			r.Purpose = *patch.Purpose
		}
		if patch.AttendeeCount != nil {
			r.AttendeeCount = patch.AttendeeCount
		}
		r.UpdatedAt = e.now().UTC()
		return tx.UpdateReservation(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	return e.view(ctx, id)
}

// UpdateStatus is the admin decision path: it moves a Pending reservation to
// Approved, Rejected or Cancelled. Approval records the acting admin and the
// approval time. Reservations past Pending cannot be decided again; cancelling
// an Approved reservation goes through Cancel instead.
func (e *Engine) UpdateStatus(ctx context.Context, id, actingUserID, status string) (*model.ReservationView, error) {
	if !model.ValidDecision(status) {
		return nil, fmt.Errorf("%w: invalid status, valid values: %s, %s, %s",
			ErrInvalidArgument, model.StatusApproved, model.StatusRejected, model.StatusCancelled)
	}
	err := e.store.InTx(ctx, func(tx Tx) error {
		r, err := tx.ReservationByID(ctx, id)
		if err != nil {
			return err
		}
		if r == nil {
			return fmt.Errorf("%w: reservation not found", ErrNotFound)
		}
		if r.Status != model.StatusPending {
			return fmt.Errorf("%w: only pending reservations can be approved or rejected", ErrInvalidState)
		}
		now := e.now().UTC()
		r.Status = status
		r.UpdatedAt = now
		if status == model.StatusApproved {
			approvedAt := now
			r.ApprovedBy = &actingUserID
			r.ApprovedAt = &approvedAt
		}
		return tx.UpdateReservation(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	return e.view(ctx, id)
}

// Cancel is the dedicated owner/admin cancellation path. Unlike UpdateStatus
// it accepts Approved reservations as well as Pending ones.
func (e *Engine) Cancel(ctx context.Context, id, requesterID string, isAdmin bool) (*model.ReservationView, error) {
	err := e.store.InTx(ctx, func(tx Tx) error {
		r, err := tx.ReservationByID(ctx, id)
		if err != nil {
			return err
		}
		if r == nil {
			return fmt.Errorf("%w: reservation not found", ErrNotFound)
		}
		if !isAdmin && r.UserID != requesterID {
			return fmt.Errorf("%w: you can only cancel your own reservations", ErrUnauthorized)
		}
		if model.Terminal(r.Status) {
			return fmt.Errorf("%w: only pending or approved reservations can be cancelled", ErrInvalidState)
		}
		r.Status = model.StatusCancelled
		r.UpdatedAt = e.now().UTC()
		return tx.UpdateReservation(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	return e.view(ctx, id)
}

// Delete removes a reservation outright. Non-admins may only delete their own
// reservations and must cancel an Approved one first; admins may delete
// regardless of status.
func (e *Engine) Delete(ctx context.Context, id, requesterID string, isAdmin bool) error {
	return e.store.InTx(ctx, func(tx Tx) error {
		r, err := tx.ReservationByID(ctx, id)
		if err != nil {
			return err
		}
		if r == nil {
			return fmt.Errorf("%w: reservation not found", ErrNotFound)
		}
		if !isAdmin && r.UserID != requesterID {
			return fmt.Errorf("%w: you can only delete your own reservations", ErrUnauthorized)
		}
		if !isAdmin && r.Status == model.StatusApproved {
			return fmt.Errorf("%w: cannot delete an approved reservation, cancel it first", ErrInvalidState)
		}
		return tx.DeleteReservation(ctx, id)
	})
}

// GetByID returns the hydrated view of one reservation.
func (e *Engine) GetByID(ctx context.Context, id string) (*model.ReservationView, error) {
	return e.view(ctx, id)
}

// ListAll returns every reservation matching the filter, newest created
// first.
func (e *Engine) ListAll(ctx context.Context, f model.ReservationFilter) ([]model.ReservationView, error) {
	return e.store.ListViews(ctx, f)
}

// ListMine returns the owner's reservations matching the filter, newest
// created first.
func (e *Engine) ListMine(ctx context.Context, ownerID string, f model.ReservationFilter) ([]model.ReservationView, error) {
	f.UserID = ownerID
	return e.store.ListViews(ctx, f)
}

func (e *Engine) view(ctx context.Context, id string) (*model.ReservationView, error) {
	v, err := e.store.View(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%w: reservation not found", ErrNotFound)
	}
	return v, nil
}
