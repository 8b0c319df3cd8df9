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

func newRegistry(t *testing.T) (*engine.Registry, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	reg := engine.NewRegistryWithClock(store, func() time.Time { return fixedClock })
	return reg, store
}

func TestRegistryCreate(t *testing.T) {
	reg, _ := newRegistry(t)
	ctx := context.Background()

	room, err := reg.Create(ctx, model.CreateClassroomRequest{
		Name: "Chemistry Lab", RoomNumber: "C-201", Location: "Building C",
		Capacity: 24, ClassroomType: "Lab", HasProjector: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, room.ID)
	require.True(t, room.IsActive)
	require.Equal(t, "Lab", room.ClassroomType)

	got, err := reg.GetByID(ctx, room.ID)
	require.NoError(t, err)
	require.Equal(t, room.ID, got.ID)
	require.Equal(t, "Chemistry Lab", got.Name)
}

func TestRegistryCreateDefaultsAndValidation(t *testing.T) {
	reg, _ := newRegistry(t)
	ctx := context.Background()

	_, err := reg.Create(ctx, model.CreateClassroomRequest{Name: "X", RoomNumber: "X-1"})
	require.ErrorIs(t, err, engine.ErrInvalidArgument)

	neg := model.CreateClassroomRequest{Name: "X", RoomNumber: "X-1", Capacity: -3}
	_, err = reg.Create(ctx, neg)
	require.ErrorIs(t, err, engine.ErrInvalidArgument)

	room, err := reg.Create(ctx, model.CreateClassroomRequest{Name: "X", RoomNumber: "X-1", Capacity: 10})
	require.NoError(t, err)
	require.Equal(t, model.DefaultPurpose, room.ClassroomType)
}

func TestRegistryUpdate(t *testing.T) {
	reg, _ := newRegistry(t)
	ctx := context.Background()
	room, err := reg.Create(ctx, model.CreateClassroomRequest{Name: "Lecture Hall", RoomNumber: "A-100", Capacity: 120})
	require.NoError(t, err)

	smaller := 80
	inactive := false
	got, err := reg.Update(ctx, room.ID, model.ClassroomPatch{Capacity: &smaller, IsActive: &inactive})
	require.NoError(t, err)
	require.Equal(t, 80, got.Capacity)
	require.False(t, got.IsActive)
	// Untouched fields survive the patch.
	require.Equal(t, "Lecture Hall", got.Name)

	zero := 0
	_, err = reg.Update(ctx, room.ID, model.ClassroomPatch{Capacity: &zero})
	require.ErrorIs(t, err, engine.ErrInvalidArgument)

	_, err = reg.Update(ctx, "missing", model.ClassroomPatch{Capacity: &smaller})
	require.ErrorIs(t, err, engine.ErrNotFound)
}

func TestRegistryDeleteCascades(t *testing.T) {
	reg, store := newRegistry(t)
	ctx := context.Background()
	eng := engine.NewWithClock(store, func() time.Time { return fixedClock })

	room, err := reg.Create(ctx, model.CreateClassroomRequest{Name: "Seminar Room", RoomNumber: "S-10", Capacity: 12})
	require.NoError(t, err)
	v, err := eng.CreateReservation(ctx, "owner-1", model.CreateReservationRequest{
		ClassroomID: room.ID, Title: "Workshop", StartTime: at(9, 0), EndTime: at(10, 0),
	})
	require.NoError(t, err)

	require.NoError(t, reg.Delete(ctx, room.ID))
	_, err = reg.GetByID(ctx, room.ID)
	require.ErrorIs(t, err, engine.ErrNotFound)
	_, err = eng.GetByID(ctx, v.ID)
	require.ErrorIs(t, err, engine.ErrNotFound)

	require.ErrorIs(t, reg.Delete(ctx, room.ID), engine.ErrNotFound)
}

func TestRegistryListFilters(t *testing.T) {
	reg, store := newRegistry(t)
	ctx := context.Background()

	lab, err := reg.Create(ctx, model.CreateClassroomRequest{
		Name: "Computer Lab", RoomNumber: "B-20", Capacity: 20,
		ClassroomType: "Lab", HasComputers: true,
	})
	require.NoError(t, err)
	hall, err := reg.Create(ctx, model.CreateClassroomRequest{
		Name: "Main Hall", RoomNumber: "A-1", Capacity: 200,
		ClassroomType: "Lecture", HasProjector: true,
	})
	require.NoError(t, err)

	t.Run("search matches name case-insensitively", func(t *testing.T) {
		got, err := reg.List(ctx, model.ClassroomFilter{Search: "computer"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, lab.ID, got[0].ID)
	})

	t.Run("capacity range", func(t *testing.T) {
		min := 100
		got, err := reg.List(ctx, model.ClassroomFilter{MinCapacity: &min})
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, hall.ID, got[0].ID)
	})

	t.Run("amenity flag", func(t *testing.T) {
		yes := true
		got, err := reg.List(ctx, model.ClassroomFilter{HasComputers: &yes})
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, lab.ID, got[0].ID)
	})

	t.Run("availability window excludes booked rooms", func(t *testing.T) {
		eng := engine.NewWithClock(store, func() time.Time { return fixedClock })
		booked, err := eng.CreateReservation(ctx, "owner-1", model.CreateReservationRequest{
			ClassroomID: lab.ID, Title: "Class", StartTime: at(10, 0), EndTime: at(12, 0),
		})
		require.NoError(t, err)

		from, to := at(11, 0), at(13, 0)
		got, err := reg.List(ctx, model.ClassroomFilter{AvailableFrom: &from, AvailableTo: &to})
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, hall.ID, got[0].ID)

		// Outside the booked window both rooms are free.
		from2, to2 := at(12, 0), at(14, 0)
		got, err = reg.List(ctx, model.ClassroomFilter{AvailableFrom: &from2, AvailableTo: &to2})
		require.NoError(t, err)
		require.Len(t, got, 2)

		// Cancelled bookings free the slot again.
		_, err = eng.Cancel(ctx, booked.ID, "owner-1", false)
		require.NoError(t, err)
		got, err = reg.List(ctx, model.ClassroomFilter{AvailableFrom: &from, AvailableTo: &to})
		require.NoError(t, err)
		require.Len(t, got, 2)
	})
}
