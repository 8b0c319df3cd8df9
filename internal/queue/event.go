// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationDecidedEvent is published whenever a reservation leaves the
// Pending state: an admin approves or rejects it, or the owner cancels it.
// It carries enough denormalized context for downstream consumers to log or
// notify without querying the primary database.
type ReservationDecidedEvent struct {
	ReservationID string `json:"reservation_id"`
	ClassroomID   string `json:"classroom_id"`
	ClassroomName string `json:"classroom_name"`
	RoomNumber    string `json:"room_number"`
	UserID        string `json:"user_id"`
	UserFullName  string `json:"user_full_name"`
	Title         string `json:"title"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Status        string `json:"status"`
	DecidedBy     string `json:"decided_by"`
	DecidedAt     string `json:"decided_at"`
}
