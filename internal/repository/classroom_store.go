package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/campusbooking/classroom-reservation/internal/engine"
	"github.com/campusbooking/classroom-reservation/internal/model"
)

// ClassroomStore is the MySQL binding of the registry's classroom store.
type ClassroomStore struct {
	db *sql.DB
}

var _ engine.ClassroomStore = (*ClassroomStore)(nil)

// NewClassroomStore returns a store bound to the given database.
func NewClassroomStore(db *sql.DB) *ClassroomStore { return &ClassroomStore{db: db} }

const classroomSelect = `SELECT id, name, room_number, location, capacity, classroom_type,
	       has_projector, has_whiteboard, has_computers, description,
	       is_active, created_at, updated_at
	FROM classrooms`

// ClassroomByID returns one classroom, or (nil, nil) when it does not exist.
func (s *ClassroomStore) ClassroomByID(ctx context.Context, id string) (*model.Classroom, error) {
	room, err := scanClassroom(s.db.QueryRowContext(ctx, classroomSelect+` WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return room, nil
}

// CreateClassroom inserts a new classroom row.
func (s *ClassroomStore) CreateClassroom(ctx context.Context, c *model.Classroom) error {
	const q = `INSERT INTO classrooms
	           (id, name, room_number, location, capacity, classroom_type,
	            has_projector, has_whiteboard, has_computers, description,
	            is_active, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		c.ID, c.Name, c.RoomNumber, c.Location, c.Capacity, c.ClassroomType,
		c.HasProjector, c.HasWhiteboard, c.HasComputers, c.Description,
		c.IsActive, c.CreatedAt, c.UpdatedAt)
	return err
}

// UpdateClassroom replaces the mutable columns of an existing row.
func (s *ClassroomStore) UpdateClassroom(ctx context.Context, c *model.Classroom) error {
	const q = `UPDATE classrooms
	           SET name = ?, room_number = ?, location = ?, capacity = ?, classroom_type = ?,
	               has_projector = ?, has_whiteboard = ?, has_computers = ?, description = ?,
	               is_active = ?, updated_at = ?
	           WHERE id = ?`
	_, err := s.db.ExecContext(ctx, q,
		c.Name, c.RoomNumber, c.Location, c.Capacity, c.ClassroomType,
		c.HasProjector, c.HasWhiteboard, c.HasComputers, c.Description,
		c.IsActive, c.UpdatedAt, c.ID)
	return err
}

// DeleteClassroom removes the classroom; the reservations foreign key is
// declared ON DELETE CASCADE, so dependent reservations go with it.
func (s *ClassroomStore) DeleteClassroom(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM classrooms WHERE id = ?`, id)
	return err
}

// ListClassrooms returns classrooms matching the filter, ordered by name then
// room number. The availability window excludes rooms with any non-terminal
// reservation overlapping [AvailableFrom, AvailableTo), the same half-open
// predicate the reservation engine uses.
func (s *ClassroomStore) ListClassrooms(ctx context.Context, f model.ClassroomFilter) ([]model.Classroom, error) {
	var (
		conds []string
		args  []interface{}
	)
	if f.Search != "" {
		like := "%" + f.Search + "%"
		conds = append(conds, "(name LIKE ? OR room_number LIKE ? OR location LIKE ?)")
		args = append(args, like, like, like)
	}
	if f.ClassroomType != "" {
		conds = append(conds, "classroom_type = ?")
		args = append(args, f.ClassroomType)
	}
	if f.MinCapacity != nil {
		conds = append(conds, "capacity >= ?")
		args = append(args, *f.MinCapacity)
	}
	if f.MaxCapacity != nil {
		conds = append(conds, "capacity <= ?")
		args = append(args, *f.MaxCapacity)
	}
	if f.HasProjector != nil {
		conds = append(conds, "has_projector = ?")
		args = append(args, *f.HasProjector)
	}
	if f.HasWhiteboard != nil {
		conds = append(conds, "has_whiteboard = ?")
		args = append(args, *f.HasWhiteboard)
	}
	if f.HasComputers != nil {
		conds = append(conds, "has_computers = ?")
		args = append(args, *f.HasComputers)
	}
	if f.IsActive != nil {
		conds = append(conds, "is_active = ?")
		args = append(args, *f.IsActive)
	}
	if f.AvailableFrom != nil && f.AvailableTo != nil {
		conds = append(conds, `NOT EXISTS (
			SELECT 1 FROM reservations r
			WHERE r.classroom_id = classrooms.id
			  AND r.status IN (?, ?)
			  AND r.start_time < ? AND r.end_time > ?)`)
		args = append(args, model.StatusPending, model.StatusApproved, *f.AvailableTo, *f.AvailableFrom)
	}

	q := classroomSelect
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY name, room_number"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Classroom, 0)
	for rows.Next() {
		room, err := scanClassroom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanClassroom(row rowScanner) (*model.Classroom, error) {
	var (
		c    model.Classroom
		desc sql.NullString
	)
	err := row.Scan(&c.ID, &c.Name, &c.RoomNumber, &c.Location, &c.Capacity, &c.ClassroomType,
		&c.HasProjector, &c.HasWhiteboard, &c.HasComputers, &desc,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		c.Description = &d
	}
	return &c, nil
}
