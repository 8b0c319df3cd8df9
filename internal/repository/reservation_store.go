package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/campusbooking/classroom-reservation/internal/engine"
	"github.com/campusbooking/classroom-reservation/internal/model"
)

// ReservationStore is the MySQL binding of the engine's reservation store.
// All timestamps are stored in UTC; the DSN's loc=UTC keeps scanned times
// consistent.
type ReservationStore struct {
	db *sql.DB
}

var _ engine.Store = (*ReservationStore)(nil)

// NewReservationStore returns a store bound to the given database.
func NewReservationStore(db *sql.DB) *ReservationStore { return &ReservationStore{db: db} }

// InTx wraps fn in a database transaction: commit on nil, rollback otherwise.
// The overlap scan inside the transaction takes row locks (FOR UPDATE) over
// the (classroom_id, start_time, end_time) index, so two concurrent creates
// for intersecting windows on one classroom serialize instead of both
// committing.
func (s *ReservationStore) InTx(ctx context.Context, fn func(engine.Tx) error) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(sqlTx{tx: dbTx}); err != nil {
		_ = dbTx.Rollback()
		return err
	}
	return dbTx.Commit()
}

// sqlTx implements engine.Tx on top of *sql.Tx.
type sqlTx struct {
	tx *sql.Tx
}

const reservationCols = `id, classroom_id, user_id, title, description, start_time, end_time,
	status, purpose, attendee_count, approved_by, approved_at, created_at, updated_at`

func (t sqlTx) ReservationByID(ctx context.Context, id string) (*model.Reservation, error) {
	const q = `SELECT ` + reservationCols + ` FROM reservations WHERE id = ? FOR UPDATE`
	r, err := scanReservation(t.tx.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (t sqlTx) ClassroomByID(ctx context.Context, id string) (*model.Classroom, error) {
	room, err := scanClassroom(t.tx.QueryRowContext(ctx, classroomSelect+` WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (t sqlTx) HasOverlap(ctx context.Context, classroomID string, start, end time.Time, excludeID string) (bool, error) {
	// Half-open intervals: existing.start < end AND existing.end > start.
	// FOR UPDATE locks the matching index range until commit.
	const q = `SELECT id FROM reservations
	           WHERE classroom_id = ?
	             AND status IN (?, ?)
	             AND start_time < ? AND end_time > ?
	             AND id <> ?
	           LIMIT 1 FOR UPDATE`
	var id string
	err := t.tx.QueryRowContext(ctx, q, classroomID,
		model.StatusPending, model.StatusApproved, end, start, excludeID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (t sqlTx) CreateReservation(ctx context.Context, r *model.Reservation) error {
	const q = `INSERT INTO reservations
	           (id, classroom_id, user_id, title, description, start_time, end_time,
	            status, purpose, attendee_count, approved_by, approved_at, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := t.tx.ExecContext(ctx, q,
		r.ID, r.ClassroomID, r.UserID, r.Title, r.Description, r.StartTime, r.EndTime,
		r.Status, r.Purpose, r.AttendeeCount, r.ApprovedBy, r.ApprovedAt, r.CreatedAt, r.UpdatedAt)
	return err
}

func (t sqlTx) UpdateReservation(ctx context.Context, r *model.Reservation) error {
	const q = `UPDATE reservations
	           SET title = ?, description = ?, start_time = ?, end_time = ?,
	               status = ?, purpose = ?, attendee_count = ?, approved_by = ?,
	               approved_at = ?, updated_at = ?
	           WHERE id = ?`
	_, err := t.tx.ExecContext(ctx, q,
		r.Title, r.Description, r.StartTime, r.EndTime,
		r.Status, r.Purpose, r.AttendeeCount, r.ApprovedBy, r.ApprovedAt, r.UpdatedAt, r.ID)
	return err
}

func (t sqlTx) DeleteReservation(ctx context.Context, id string) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	return err
}

// viewSelect joins classroom, owner and approver rows so responses carry
// display fields without extra round trips.
const viewSelect = `SELECT r.id, r.classroom_id, c.name, c.room_number,
	       r.user_id, u.first_name, u.last_name, u.email,
	       r.title, r.description, r.start_time, r.end_time,
	       r.status, r.purpose, r.attendee_count,
	       r.approved_by, a.first_name, a.last_name, r.approved_at,
	       r.created_at, r.updated_at
	FROM reservations r
	JOIN classrooms c ON c.id = r.classroom_id
	JOIN users u ON u.id = r.user_id
	LEFT JOIN users a ON a.id = r.approved_by`

// View returns the hydrated read model for one reservation, or (nil, nil)
// when it does not exist.
func (s *ReservationStore) View(ctx context.Context, id string) (*model.ReservationView, error) {
	v, err := scanView(s.db.QueryRowContext(ctx, viewSelect+` WHERE r.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// ListViews returns hydrated reservations matching the filter, newest created
// first. Unset filter fields impose no constraint.
func (s *ReservationStore) ListViews(ctx context.Context, f model.ReservationFilter) ([]model.ReservationView, error) {
	var (
		conds []string
		args  []interface{}
	)
	if f.ClassroomID != "" {
		conds = append(conds, "r.classroom_id = ?")
		args = append(args, f.ClassroomID)
	}
	if f.UserID != "" {
		conds = append(conds, "r.user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		conds = append(conds, "r.status = ?")
		args = append(args, f.Status)
	}
	if f.Purpose != "" {
		conds = append(conds, "r.purpose = ?")
		args = append(args, f.Purpose)
	}
	if f.From != nil {
		conds = append(conds, "r.start_time >= ?")
		args = append(args, *f.From)
	}
	if f.To != nil {
		conds = append(conds, "r.end_time <= ?")
		args = append(args, *f.To)
	}

	q := viewSelect
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY r.created_at DESC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	views := make([]model.ReservationView, 0)
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, err
		}
		views = append(views, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return views, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*model.Reservation, error) {
	var (
		r         model.Reservation
		desc      sql.NullString
		attendees sql.NullInt64
		appBy     sql.NullString
		appAt     sql.NullTime
	)
	err := row.Scan(&r.ID, &r.ClassroomID, &r.UserID, &r.Title, &desc,
		&r.StartTime, &r.EndTime, &r.Status, &r.Purpose, &attendees,
		&appBy, &appAt, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		r.Description = &d
	}
	if attendees.Valid {
		n := int(attendees.Int64)
		r.AttendeeCount = &n
	}
	if appBy.Valid {
		by := appBy.String
		r.ApprovedBy = &by
	}
	if appAt.Valid {
		at := appAt.Time.UTC()
		r.ApprovedAt = &at
	}
	return &r, nil
}

func scanView(row rowScanner) (*model.ReservationView, error) {
	var (
		v             model.ReservationView
		ownerFirst    string
		ownerLast     string
		desc          sql.NullString
		attendees     sql.NullInt64
		appBy         sql.NullString
		approverFirst sql.NullString
		approverLast  sql.NullString
		appAt         sql.NullTime
	)
	err := row.Scan(&v.ID, &v.ClassroomID, &v.ClassroomName, &v.RoomNumber,
		&v.UserID, &ownerFirst, &ownerLast, &v.UserEmail,
		&v.Title, &desc, &v.StartTime, &v.EndTime,
		&v.Status, &v.Purpose, &attendees,
		&appBy, &approverFirst, &approverLast, &appAt,
		&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	v.UserFullName = ownerFirst + " " + ownerLast
	if desc.Valid {
		d := desc.String
		v.Description = &d
	}
	if attendees.Valid {
		n := int(attendees.Int64)
		v.AttendeeCount = &n
	}
	if appBy.Valid {
		by := appBy.String
		v.ApprovedBy = &by
		if approverFirst.Valid && approverLast.Valid {
			name := approverFirst.String + " " + approverLast.String
			v.ApprovedByName = &name
		}
	}
	if appAt.Valid {
		at := appAt.Time.UTC()
		v.ApprovedAt = &at
	}
	return &v, nil
}
