package model

import "time"

// Reservation statuses. Pending and Approved are non-terminal and count in
// conflict detection; Rejected and Cancelled are terminal.
const (
	StatusPending   = "Pending"
	StatusApproved  = "Approved"
	StatusRejected  = "Rejected"
	StatusCancelled = "Cancelled"
)

// DefaultPurpose is applied when a booking request leaves the purpose empty.
const DefaultPurpose = "Lecture"

// ValidDecision reports whether s is a status an admin decision may target.
func ValidDecision(s string) bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// Terminal reports whether no further transitions are permitted from s.
func Terminal(s string) bool {
	return s == StatusRejected || s == StatusCancelled
}

// Reservation mirrors the reservations table. It records a single booking of
// one classroom for a half-open time window [StartTime, EndTime).
//
// Fields:
//  ID            – primary key (uuid).
//  ClassroomID   – classroom being booked.
//  UserID        – owner of the reservation.
//  Title         – short description shown on calendars.
//  Description   – optional free text.
//  StartTime     – window start (UTC instant).
//  EndTime       – window end (UTC instant), always after StartTime.
//  Status        – Pending, Approved, Rejected or Cancelled.
//  Purpose       – purpose tag, defaults to Lecture.
//  AttendeeCount – optional head count, capped by classroom capacity.
//  ApprovedBy    – admin who approved, set on approval.
//  ApprovedAt    – approval timestamp.
//  CreatedAt     – creation timestamp (UTC).
//  UpdatedAt     – last update timestamp (UTC).
type Reservation struct {
	ID            string     // reservations.id
	ClassroomID   string     // reservations.classroom_id
	UserID        string     // reservations.user_id
	Title         string     // reservations.title
	Description   *string    // reservations.description (nullable)
	StartTime     time.Time  // reservations.start_time
	EndTime       time.Time  // reservations.end_time
	Status        string     // reservations.status
	Purpose       string     // reservations.purpose
	AttendeeCount *int       // reservations.attendee_count (nullable)
	ApprovedBy    *string    // reservations.approved_by (nullable)
	ApprovedAt    *time.Time // reservations.approved_at (nullable)
	CreatedAt     time.Time  // reservations.created_at
	UpdatedAt     time.Time  // reservations.updated_at
}

// Overlaps reports whether the reservation's window intersects [start, end)
// under half-open semantics.
func (r Reservation) Overlaps(start, end time.Time) bool {
	return r.StartTime.Before(end) && r.EndTime.After(start)
}

// CreateReservationRequest carries the fields accepted when booking a
// classroom. Purpose falls back to DefaultPurpose when empty.
type CreateReservationRequest struct {
	ClassroomID   string
	Title         string
	Description   *string
	StartTime     time.Time
	EndTime       time.Time
	Purpose       string
	AttendeeCount *int
}

// ReservationPatch carries a partial update for a reservation. Nil fields
// keep their current value.
type ReservationPatch struct {
	Title         *string
	Description   *string
	StartTime     *time.Time
	EndTime       *time.Time
	Purpose       *string
	AttendeeCount *int
}

// ReservationFilter narrows reservation listings. Zero-valued fields impose
// no constraint. From bounds start_time from below, To bounds end_time from
// above; both are inclusive.
type ReservationFilter struct {
	ClassroomID string
	UserID      string
	Status      string
	Purpose     string
	From        *time.Time
	To          *time.Time
}

// ReservationView is a reservation hydrated with display fields from the
// joined classroom, owner and approver rows. It is the shape returned to
// callers; the denormalized fields are computed at read time, never stored.
type ReservationView struct {
	ID             string     `json:"id"`
	ClassroomID    string     `json:"classroom_id"`
	ClassroomName  string     `json:"classroom_name"`
	RoomNumber     string     `json:"room_number"`
	UserID         string     `json:"user_id"`
	UserFullName   string     `json:"user_full_name"`
	UserEmail      string     `json:"user_email"`
	Title          string     `json:"title"`
	Description    *string    `json:"description,omitempty"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        time.Time  `json:"end_time"`
	Status         string     `json:"status"`
	Purpose        string     `json:"purpose"`
	AttendeeCount  *int       `json:"attendee_count,omitempty"`
	ApprovedBy     *string    `json:"approved_by,omitempty"`
	ApprovedByName *string    `json:"approved_by_name,omitempty"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
