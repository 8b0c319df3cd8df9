package model

import "time"

// Classroom mirrors the classrooms table. Inactive rooms remain visible but
// are excluded from new bookings.
//
// Fields:
//  ID            – primary key (uuid).
//  Name          – display name.
//  RoomNumber    – short room code, e.g. "B-204".
//  Location      – building / floor description.
//  Capacity      – seat count, always positive.
//  ClassroomType – category such as Lecture, Lab, Seminar.
//  HasProjector  – amenity flag.
//  HasWhiteboard – amenity flag.
//  HasComputers  – amenity flag.
//  Description   – optional free text.
//  IsActive      – soft-disable flag.
//  CreatedAt     – creation timestamp (UTC).
//  UpdatedAt     – last update timestamp (UTC).
type Classroom struct {
	ID            string    // classrooms.id
	Name          string    // classrooms.name
	RoomNumber    string    // classrooms.room_number
	Location      string    // classrooms.location
	Capacity      int       // classrooms.capacity
	ClassroomType string    // classrooms.classroom_type
	HasProjector  bool      // classrooms.has_projector
	HasWhiteboard bool      // classrooms.has_whiteboard
	HasComputers  bool      // classrooms.has_computers
	Description   *string   // classrooms.description (nullable)
	IsActive      bool      // classrooms.is_active
	CreatedAt     time.Time // classrooms.created_at
	UpdatedAt     time.Time // classrooms.updated_at
}

// CreateClassroomRequest carries the fields accepted when registering a new
// classroom. IsActive always starts true.
type CreateClassroomRequest struct {
	Name          string
	RoomNumber    string
	Location      string
	Capacity      int
	ClassroomType string
	HasProjector  bool
	HasWhiteboard bool
	HasComputers  bool
	Description   *string
}

// ClassroomPatch carries a partial update. Nil fields keep their current
// value.
type ClassroomPatch struct {
	Name          *string
	RoomNumber    *string
	Location      *string
	Capacity      *int
	ClassroomType *string
	HasProjector  *bool
	HasWhiteboard *bool
	HasComputers  *bool
	Description   *string
	IsActive      *bool
}

// ClassroomFilter narrows classroom listings. Zero-valued fields impose no
// constraint. When both AvailableFrom and AvailableTo are set, classrooms
// with any non-terminal reservation overlapping [AvailableFrom, AvailableTo)
// are excluded.
type ClassroomFilter struct {
	Search        string     // free text over name, room number and location
	ClassroomType string
	MinCapacity   *int
	MaxCapacity   *int
	HasProjector  *bool
	HasWhiteboard *bool
	HasComputers  *bool
	IsActive      *bool
	AvailableFrom *time.Time
	AvailableTo   *time.Time
}
