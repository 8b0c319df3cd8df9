package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campusbooking/classroom-reservation/internal/engine"
	"github.com/campusbooking/classroom-reservation/internal/model"
	"github.com/campusbooking/classroom-reservation/internal/repository/memory"
)

// fixedClock is 2026-09-01 07:00 UTC, one hour before opening time.
var fixedClock = time.Date(2026, 9, 1, 7, 0, 0, 0, time.UTC)

type fixture struct {
	eng   *engine.Engine
	store *memory.Store
	now   *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	now := fixedClock
	f := &fixture{store: store, now: &now}
	f.eng = engine.NewWithClock(store, func() time.Time { return *f.now })

	store.PutUser(model.User{ID: "owner-1", FirstName: "Dana", LastName: "Reyes", Email: "dana@campus.edu", Role: model.RoleUser, IsActive: true})
	store.PutUser(model.User{ID: "other-1", FirstName: "Kim", LastName: "Soto", Email: "kim@campus.edu", Role: model.RoleUser, IsActive: true})
	store.PutUser(model.User{ID: "admin-1", FirstName: "Avery", LastName: "Hill", Email: "avery@campus.edu", Role: model.RoleAdmin, IsActive: true})

	require.NoError(t, store.CreateClassroom(context.Background(), &model.Classroom{
		ID: "room-1", Name: "Physics Lab", RoomNumber: "B-101", Location: "Building B",
		Capacity: 30, ClassroomType: "Lab", IsActive: true,
	}))
	return f
}

// at returns a UTC instant on the fixture's day at the given hour/minute.
func at(hour, min int) time.Time {
	return time.Date(2026, 9, 1, hour, min, 0, 0, time.UTC)
}

func (f *fixture) createAt(t *testing.T, start, end time.Time) *model.ReservationView {
	t.Helper()
	v, err := f.eng.CreateReservation(context.Background(), "owner-1", model.CreateReservationRequest{
		ClassroomID: "room-1",
		Title:       "Mechanics lecture",
		StartTime:   start,
		EndTime:     end,
	})
	require.NoError(t, err)
	return v
}

func TestCreateReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	attendees := 25
	desc := "weekly session"
	v, err := f.eng.CreateReservation(ctx, "owner-1", model.CreateReservationRequest{
		ClassroomID:   "room-1",
		Title:         "Mechanics lecture",
		Description:   &desc,
		StartTime:     at(9, 0),
		EndTime:       at(11, 0),
		AttendeeCount: &attendees,
	})
	require.NoError(t, err)
	require.Equal(t, model.StatusPending, v.Status)
	require.Equal(t, model.DefaultPurpose, v.Purpose)
	require.Equal(t, "owner-1", v.UserID)
	require.Equal(t, "Physics Lab", v.ClassroomName)
	require.Equal(t, "B-101", v.RoomNumber)
	require.Equal(t, "Dana Reyes", v.UserFullName)
	require.Equal(t, at(9, 0), v.StartTime)
	require.Nil(t, v.ApprovedBy)
}

func TestCreateReservationValidation(t *testing.T) {
	tests := []struct {
		name    string
		room    string
		start   time.Time
		end     time.Time
		wantErr error
	}{
		{"end before start", "room-1", at(11, 0), at(10, 0), engine.ErrInvalidRange},
		{"zero-length window", "room-1", at(10, 0), at(10, 0), engine.ErrInvalidRange},
		{"start in the past", "room-1", at(6, 0), at(9, 0), engine.ErrInvalidRange},
		{"start before opening", "room-1", at(7, 30), at(9, 0), engine.ErrOutsideHours},
		{"start at closing", "room-1", at(20, 0), at(21, 0), engine.ErrOutsideHours},
		{"end past closing", "room-1", at(19, 0), at(20, 30), engine.ErrOutsideHours},
		{"unknown classroom", "room-404", at(9, 0), at(10, 0), engine.ErrNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.eng.CreateReservation(context.Background(), "owner-1", model.CreateReservationRequest{
				ClassroomID: tc.room,
				Title:       "Lecture",
				StartTime:   tc.start,
				EndTime:     tc.end,
			})
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCreateReservationEndsAtClosingSharp(t *testing.T) {
	f := newFixture(t)
	v := f.createAt(t, at(19, 0), at(20, 0))
	require.Equal(t, at(20, 0), v.EndTime)
}

func TestCreateReservationInactiveClassroom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.CreateClassroom(ctx, &model.Classroom{
		ID: "room-2", Name: "Old Hall", RoomNumber: "A-001", Capacity: 100, IsActive: false,
	}))
	_, err := f.eng.CreateReservation(ctx, "owner-1", model.CreateReservationRequest{
		ClassroomID: "room-2", Title: "Lecture", StartTime: at(9, 0), EndTime: at(10, 0),
	})
	require.ErrorIs(t, err, engine.ErrUnavailable)
}

func TestCreateReservationConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createAt(t, at(10, 0), at(12, 0))

	// Any intersection with a pending booking is rejected.
	for _, w := range [][2]time.Time{
		{at(11, 0), at(13, 0)},   // tail overlap
		{at(9, 0), at(11, 0)},    // head overlap
		{at(10, 30), at(11, 30)}, // contained
		{at(9, 0), at(13, 0)},    // containing
	} {
		_, err := f.eng.CreateReservation(ctx, "other-1", model.CreateReservationRequest{
			ClassroomID: "room-1", Title: "Seminar", StartTime: w[0], EndTime: w[1],
		})
		require.ErrorIs(t, err, engine.ErrConflict)
	}

	// Back-to-back bookings share a boundary instant without conflicting.
	_, err := f.eng.CreateReservation(ctx, "other-1", model.CreateReservationRequest{
		ClassroomID: "room-1", Title: "Seminar", StartTime: at(12, 0), EndTime: at(13, 0),
	})
	require.NoError(t, err)
	_, err = f.eng.CreateReservation(ctx, "other-1", model.CreateReservationRequest{
		ClassroomID: "room-1", Title: "Seminar", StartTime: at(9, 0), EndTime: at(10, 0),
	})
	require.NoError(t, err)
}

func TestCreateReservationIgnoresTerminalConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.createAt(t, at(10, 0), at(12, 0))
	_, err := f.eng.Cancel(ctx, v.ID, "owner-1", false)
	require.NoError(t, err)

	// The cancelled booking no longer blocks the slot.
	_, err = f.eng.CreateReservation(ctx, "other-1", model.CreateReservationRequest{
		ClassroomID: "room-1", Title: "Seminar", StartTime: at(10, 0), EndTime: at(12, 0),
	})
	require.NoError(t, err)
}

func TestCreateReservationCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	over := 31
	_, err := f.eng.CreateReservation(ctx, "owner-1", model.CreateReservationRequest{
		ClassroomID: "room-1", Title: "Lecture", StartTime: at(9, 0), EndTime: at(10, 0),
		AttendeeCount: &over,
	})
	require.ErrorIs(t, err, engine.ErrCapacityExceeded)

	exact := 30
	_, err = f.eng.CreateReservation(ctx, "owner-1", model.CreateReservationRequest{
		ClassroomID: "room-1", Title: "Lecture", StartTime: at(9, 0), EndTime: at(10, 0),
		AttendeeCount: &exact,
	})
	require.NoError(t, err)
}

func TestUpdateReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	v := f.createAt(t, at(9, 0), at(10, 0))

	title := "Rescheduled lecture"
	newStart := at(14, 0)
	newEnd := at(16, 0)
	got, err := f.eng.UpdateReservation(ctx, v.ID, "owner-1", false, model.ReservationPatch{
		Title:     &title,
		StartTime: &newStart,
		EndTime:   &newEnd,
	})
	require.NoError(t, err)
	require.Equal(t, "Rescheduled lecture", got.Title)
	require.Equal(t, newStart, got.StartTime)
	require.Equal(t, newEnd, got.EndTime)
	require.Equal(t, model.StatusPending, got.Status)
}

func TestUpdateReservationAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	title := "Changed"

	t.Run("non-owner rejected", func(t *testing.T) {
		v := f.createAt(t, at(9, 0), at(10, 0))
		_, err := f.eng.UpdateReservation(ctx, v.ID, "other-1", false, model.ReservationPatch{Title: &title})
		require.ErrorIs(t, err, engine.ErrUnauthorized)
	})

	t.Run("owner blocked after approval", func(t *testing.T) {
		v := f.createAt(t, at(10, 0), at(11, 0))
		_, err := f.eng.UpdateStatus(ctx, v.ID, "admin-1", model.StatusApproved)
		require.NoError(t, err)
		_, err = f.eng.UpdateReservation(ctx, v.ID, "owner-1", false, model.ReservationPatch{Title: &title})
		require.ErrorIs(t, err, engine.ErrInvalidState)
	})

	t.Run("admin bypasses ownership and state", func(t *testing.T) {
		v := f.createAt(t, at(11, 0), at(12, 0))
		_, err := f.eng.UpdateStatus(ctx, v.ID, "admin-1", model.StatusApproved)
		require.NoError(t, err)
		got, err := f.eng.UpdateReservation(ctx, v.ID, "admin-1", true, model.ReservationPatch{Title: &title})
		require.NoError(t, err)
		require.Equal(t, "Changed", got.Title)
	})
}

func TestUpdateReservationWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.createAt(t, at(9, 0), at(10, 0))
	second := f.createAt(t, at(11, 0), at(12, 0))

	// Moving the second booking onto the first conflicts.
	newStart := at(9, 30)
	_, err := f.eng.UpdateReservation(ctx, second.ID, "owner-1", false, model.ReservationPatch{StartTime: &newStart})
	require.ErrorIs(t, err, engine.ErrConflict)

	// A reservation never conflicts with itself: shrinking in place is fine.
	newEnd := at(11, 30)
	got, err := f.eng.UpdateReservation(ctx, second.ID, "owner-1", false, model.ReservationPatch{EndTime: &newEnd})
	require.NoError(t, err)
	require.Equal(t, newEnd, got.EndTime)

	// Patching only one bound still validates the effective window.
	badEnd := at(11, 15)
	_, err = f.eng.UpdateReservation(ctx, first.ID, "owner-1", false, model.ReservationPatch{EndTime: &badEnd})
	require.ErrorIs(t, err, engine.ErrConflict)

	inverted := at(8, 0)
	_, err = f.eng.UpdateReservation(ctx, first.ID, "owner-1", false, model.ReservationPatch{EndTime: &inverted})
	require.ErrorIs(t, err, engine.ErrInvalidRange)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("approve records the approver", func(t *testing.T) {
		v := f.createAt(t, at(9, 0), at(10, 0))
		got, err := f.eng.UpdateStatus(ctx, v.ID, "admin-1", model.StatusApproved)
		require.NoError(t, err)
		require.Equal(t, model.StatusApproved, got.Status)
		require.NotNil(t, got.ApprovedBy)
		require.Equal(t, "admin-1", *got.ApprovedBy)
		require.NotNil(t, got.ApprovedAt)
		require.NotNil(t, got.ApprovedByName)
		require.Equal(t, "Avery Hill", *got.ApprovedByName)
	})

	t.Run("reject leaves approval fields empty", func(t *testing.T) {
		v := f.createAt(t, at(10, 0), at(11, 0))
		got, err := f.eng.UpdateStatus(ctx, v.ID, "admin-1", model.StatusRejected)
		require.NoError(t, err)
		require.Equal(t, model.StatusRejected, got.Status)
		require.Nil(t, got.ApprovedBy)
		require.Nil(t, got.ApprovedAt)
	})

	t.Run("invalid target status", func(t *testing.T) {
		v := f.createAt(t, at(11, 0), at(12, 0))
		_, err := f.eng.UpdateStatus(ctx, v.ID, "admin-1", "Archived")
		require.ErrorIs(t, err, engine.ErrInvalidArgument)
		_, err = f.eng.UpdateStatus(ctx, v.ID, "admin-1", model.StatusPending)
		require.ErrorIs(t, err, engine.ErrInvalidArgument)
	})

	t.Run("decided reservations stay decided", func(t *testing.T) {
		v := f.createAt(t, at(12, 0), at(13, 0))
		_, err := f.eng.UpdateStatus(ctx, v.ID, "admin-1", model.StatusApproved)
		require.NoError(t, err)
		_, err = f.eng.UpdateStatus(ctx, v.ID, "admin-1", model.StatusRejected)
		require.ErrorIs(t, err, engine.ErrInvalidState)
	})

	t.Run("unknown reservation", func(t *testing.T) {
		_, err := f.eng.UpdateStatus(ctx, "missing", "admin-1", model.StatusApproved)
		require.ErrorIs(t, err, engine.ErrNotFound)
	})
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("owner cancels pending", func(t *testing.T) {
		v := f.createAt(t, at(9, 0), at(10, 0))
		got, err := f.eng.Cancel(ctx, v.ID, "owner-1", false)
		require.NoError(t, err)
		require.Equal(t, model.StatusCancelled, got.Status)
	})

	t.Run("owner cancels approved", func(t *testing.T) {
		v := f.createAt(t, at(10, 0), at(11, 0))
		_, err := f.eng.UpdateStatus(ctx, v.ID, "admin-1", model.StatusApproved)
		require.NoError(t, err)
		got, err := f.eng.Cancel(ctx, v.ID, "owner-1", false)
		require.NoError(t, err)
		require.Equal(t, model.StatusCancelled, got.Status)
	})

	t.Run("non-owner rejected", func(t *testing.T) {
		v := f.createAt(t, at(11, 0), at(12, 0))
		_, err := f.eng.Cancel(ctx, v.ID, "other-1", false)
		require.ErrorIs(t, err, engine.ErrUnauthorized)
	})

	t.Run("admin cancels someone else's booking", func(t *testing.T) {
		v := f.createAt(t, at(12, 0), at(13, 0))
		got, err := f.eng.Cancel(ctx, v.ID, "admin-1", true)
		require.NoError(t, err)
		require.Equal(t, model.StatusCancelled, got.Status)
	})

	t.Run("terminal reservations stay put", func(t *testing.T) {
		v := f.createAt(t, at(13, 0), at(14, 0))
		_, err := f.eng.Cancel(ctx, v.ID, "owner-1", false)
		require.NoError(t, err)
		_, err = f.eng.Cancel(ctx, v.ID, "owner-1", false)
		require.ErrorIs(t, err, engine.ErrInvalidState)
	})
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("owner deletes pending", func(t *testing.T) {
		v := f.createAt(t, at(9, 0), at(10, 0))
		require.NoError(t, f.eng.Delete(ctx, v.ID, "owner-1", false))
		_, err := f.eng.GetByID(ctx, v.ID)
		require.ErrorIs(t, err, engine.ErrNotFound)
	})

	t.Run("owner cannot delete approved", func(t *testing.T) {
		v := f.createAt(t, at(10, 0), at(11, 0))
		_, err := f.eng.UpdateStatus(ctx, v.ID, "admin-1", model.StatusApproved)
		require.NoError(t, err)
		err = f.eng.Delete(ctx, v.ID, "owner-1", false)
		require.ErrorIs(t, err, engine.ErrInvalidState)
	})

	t.Run("admin deletes approved", func(t *testing.T) {
		v := f.createAt(t, at(11, 0), at(12, 0))
		_, err := f.eng.UpdateStatus(ctx, v.ID, "admin-1", model.StatusApproved)
		require.NoError(t, err)
		require.NoError(t, f.eng.Delete(ctx, v.ID, "admin-1", true))
	})

	t.Run("non-owner rejected", func(t *testing.T) {
		v := f.createAt(t, at(12, 0), at(13, 0))
		err := f.eng.Delete(ctx, v.ID, "other-1", false)
		require.ErrorIs(t, err, engine.ErrUnauthorized)
	})

	t.Run("unknown reservation", func(t *testing.T) {
		err := f.eng.Delete(ctx, "missing", "owner-1", false)
		require.ErrorIs(t, err, engine.ErrNotFound)
	})
}

func TestListAllEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	all, err := f.eng.ListAll(ctx, model.ReservationFilter{})
	require.NoError(t, err)
	require.NotNil(t, all)
	require.Len(t, all, 0)

	mine, err := f.eng.ListMine(ctx, "owner-1", model.ReservationFilter{})
	require.NoError(t, err)
	require.NotNil(t, mine)
	require.Len(t, mine, 0)
}

func TestListFiltersAndOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Three bookings created one minute apart so creation order is distinct.
	first := f.createAt(t, at(9, 0), at(10, 0))
	*f.now = f.now.Add(time.Minute)
	second := f.createAt(t, at(10, 0), at(11, 0))
	*f.now = f.now.Add(time.Minute)
	third, err := f.eng.CreateReservation(ctx, "other-1", model.CreateReservationRequest{
		ClassroomID: "room-1", Title: "Study group", StartTime: at(11, 0), EndTime: at(12, 0),
		Purpose: "Meeting",
	})
	require.NoError(t, err)

	t.Run("newest first", func(t *testing.T) {
		all, err := f.eng.ListAll(ctx, model.ReservationFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		require.Equal(t, third.ID, all[0].ID)
		require.Equal(t, second.ID, all[1].ID)
		require.Equal(t, first.ID, all[2].ID)
	})

	t.Run("owner filter", func(t *testing.T) {
		mine, err := f.eng.ListMine(ctx, "owner-1", model.ReservationFilter{})
		require.NoError(t, err)
		require.Len(t, mine, 2)
		for _, v := range mine {
			require.Equal(t, "owner-1", v.UserID)
		}
	})

	t.Run("purpose filter", func(t *testing.T) {
		got, err := f.eng.ListAll(ctx, model.ReservationFilter{Purpose: "Meeting"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, third.ID, got[0].ID)
	})

	t.Run("status filter after decision", func(t *testing.T) {
		_, err := f.eng.UpdateStatus(ctx, first.ID, "admin-1", model.StatusApproved)
		require.NoError(t, err)
		got, err := f.eng.ListAll(ctx, model.ReservationFilter{Status: model.StatusApproved})
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, first.ID, got[0].ID)
	})

	t.Run("window filter", func(t *testing.T) {
		from := at(10, 0)
		to := at(12, 0)
		got, err := f.eng.ListAll(ctx, model.ReservationFilter{From: &from, To: &to})
		require.NoError(t, err)
		require.Len(t, got, 2)
	})
}
