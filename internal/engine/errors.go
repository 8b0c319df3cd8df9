// Package engine implements the reservation conflict-resolution and lifecycle
// core: it validates booking requests, serializes overlapping bookings through
// store transactions, and drives the approval state machine. It owns no state
// of its own; everything is read and written through the Store and
// ClassroomStore interfaces.
package engine

import "errors"

// Business-rule errors returned by the engine. Callers distinguish them with
// errors.Is; the HTTP layer translates each kind into a response code. The
// engine never retries: these are rejections, not transient faults, and
// persistence errors pass through unchanged.
var (
	// ErrInvalidRange is returned when the end does not come after the
	// start, or the start lies in the past.
	ErrInvalidRange = errors.New("invalid time range")

	// ErrOutsideHours is returned when the window falls outside the
	// 08:00-20:00 operating hours.
	ErrOutsideHours = errors.New("outside operating hours")

	// ErrNotFound is returned when a referenced classroom, reservation or
	// user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable is returned when the classroom exists but is inactive.
	ErrUnavailable = errors.New("unavailable")

	// ErrConflict is returned when another non-terminal reservation already
	// occupies part of the requested window.
	ErrConflict = errors.New("conflict")

	// ErrCapacityExceeded is returned when the attendee count is larger
	// than the classroom capacity.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrUnauthorized is returned when the caller owns neither the
	// reservation nor the Admin role required for the action.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidState is returned when the reservation's current status
	// does not permit the requested transition or edit.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidArgument is returned for malformed inputs such as an
	// unknown status value or a non-positive capacity.
	ErrInvalidArgument = errors.New("invalid argument")
)
