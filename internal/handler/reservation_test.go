package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbooking/classroom-reservation/internal/engine"
	"github.com/campusbooking/classroom-reservation/internal/model"
	"github.com/campusbooking/classroom-reservation/internal/repository/memory"
)

var testClock = time.Date(2026, 9, 1, 7, 0, 0, 0, time.UTC)

func newTestHandler(t *testing.T) (*ReservationHandler, *engine.Engine, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	eng := engine.NewWithClock(store, func() time.Time { return testClock })

	store.PutUser(model.User{ID: "u-1", FirstName: "Dana", LastName: "Reyes", Email: "dana@campus.edu", Role: model.RoleUser, IsActive: true})
	store.PutUser(model.User{ID: "u-2", FirstName: "Kim", LastName: "Soto", Email: "kim@campus.edu", Role: model.RoleUser, IsActive: true})
	require.NoError(t, store.CreateClassroom(context.Background(), &model.Classroom{
		ID: "room-1", Name: "Physics Lab", RoomNumber: "B-101", Capacity: 30, IsActive: true,
	}))
	return NewReservationHandler(eng), eng, store
}

// request builds an echo context carrying the identity the JWT middleware
// would normally inject.
func request(method, target, body, userID, role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	c.Set("role", role)
	return c, rec
}

func createBody(startHour, endHour int) string {
	start := time.Date(2026, 9, 1, startHour, 0, 0, 0, time.UTC).Format(time.RFC3339)
	end := time.Date(2026, 9, 1, endHour, 0, 0, 0, time.UTC).Format(time.RFC3339)
	return `{"classroom_id":"room-1","title":"Lecture","start_time":"` + start + `","end_time":"` + end + `"}`
}

func TestCreateReservationHandler(t *testing.T) {
	h, _, _ := newTestHandler(t)

	c, rec := request(http.MethodPost, "/v1/reservations", createBody(9, 11), "u-1", model.RoleUser)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Item model.ReservationView `json:"item"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "u-1", resp.Item.UserID)
	assert.Equal(t, model.StatusPending, resp.Item.Status)
	assert.Equal(t, "Physics Lab", resp.Item.ClassroomName)
	assert.Equal(t, "Dana Reyes", resp.Item.UserFullName)
}

func TestCreateReservationHandlerErrors(t *testing.T) {
	h, _, _ := newTestHandler(t)

	t.Run("missing required fields", func(t *testing.T) {
		c, rec := request(http.MethodPost, "/v1/reservations", `{"title":"Lecture"}`, "u-1", model.RoleUser)
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("conflicting slot maps to 409", func(t *testing.T) {
		c, rec := request(http.MethodPost, "/v1/reservations", createBody(9, 11), "u-1", model.RoleUser)
		require.NoError(t, h.Create(c))
		require.Equal(t, http.StatusCreated, rec.Code)

		c, rec = request(http.MethodPost, "/v1/reservations", createBody(10, 12), "u-2", model.RoleUser)
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("outside hours maps to 400", func(t *testing.T) {
		body := createBody(21, 22)
		c, rec := request(http.MethodPost, "/v1/reservations", body, "u-1", model.RoleUser)
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing identity maps to 401", func(t *testing.T) {
		c, rec := request(http.MethodPost, "/v1/reservations", createBody(14, 15), "", model.RoleUser)
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestGetReservationHandler(t *testing.T) {
	h, eng, _ := newTestHandler(t)
	v, err := eng.CreateReservation(context.Background(), "u-1", model.CreateReservationRequest{
		ClassroomID: "room-1", Title: "Lecture",
		StartTime: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	t.Run("owner sees own reservation", func(t *testing.T) {
		c, rec := request(http.MethodGet, "/", "", "u-1", model.RoleUser)
		c.SetParamNames("id")
		c.SetParamValues(v.ID)
		require.NoError(t, h.Get(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("stranger gets 403", func(t *testing.T) {
		c, rec := request(http.MethodGet, "/", "", "u-2", model.RoleUser)
		c.SetParamNames("id")
		c.SetParamValues(v.ID)
		require.NoError(t, h.Get(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin sees any reservation", func(t *testing.T) {
		c, rec := request(http.MethodGet, "/", "", "admin-9", model.RoleAdmin)
		c.SetParamNames("id")
		c.SetParamValues(v.ID)
		require.NoError(t, h.Get(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown id gets 404", func(t *testing.T) {
		c, rec := request(http.MethodGet, "/", "", "u-1", model.RoleUser)
		c.SetParamNames("id")
		c.SetParamValues("missing")
		require.NoError(t, h.Get(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUpdateReservationHandler(t *testing.T) {
	h, eng, _ := newTestHandler(t)
	v, err := eng.CreateReservation(context.Background(), "u-1", model.CreateReservationRequest{
		ClassroomID: "room-1", Title: "Lecture",
		StartTime: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	t.Run("owner edits title", func(t *testing.T) {
		c, rec := request(http.MethodPut, "/", `{"title":"Moved"}`, "u-1", model.RoleUser)
		c.SetParamNames("id")
		c.SetParamValues(v.ID)
		require.NoError(t, h.Update(c))
		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Item model.ReservationView `json:"item"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Moved", resp.Item.Title)
	})

	t.Run("stranger gets 403", func(t *testing.T) {
		c, rec := request(http.MethodPut, "/", `{"title":"Nope"}`, "u-2", model.RoleUser)
		c.SetParamNames("id")
		c.SetParamValues(v.ID)
		require.NoError(t, h.Update(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestListReservationHandlers(t *testing.T) {
	h, eng, _ := newTestHandler(t)
	ctx := context.Background()
	_, err := eng.CreateReservation(ctx, "u-1", model.CreateReservationRequest{
		ClassroomID: "room-1", Title: "Lecture",
		StartTime: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = eng.CreateReservation(ctx, "u-2", model.CreateReservationRequest{
		ClassroomID: "room-1", Title: "Seminar",
		StartTime: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 9, 1, 11, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	type listResp struct {
		Items []model.ReservationView `json:"items"`
	}

	t.Run("admin listing returns everything", func(t *testing.T) {
		c, rec := request(http.MethodGet, "/v1/reservations", "", "admin-9", model.RoleAdmin)
		require.NoError(t, h.List(c))
		require.Equal(t, http.StatusOK, rec.Code)
		var resp listResp
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Items, 2)
	})

	t.Run("my listing is scoped to the caller", func(t *testing.T) {
		c, rec := request(http.MethodGet, "/v1/reservations/my", "", "u-1", model.RoleUser)
		require.NoError(t, h.ListMine(c))
		require.Equal(t, http.StatusOK, rec.Code)
		var resp listResp
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "u-1", resp.Items[0].UserID)
	})

	t.Run("query filters narrow the admin listing", func(t *testing.T) {
		c, rec := request(http.MethodGet, "/v1/reservations?user_id=u-2", "", "admin-9", model.RoleAdmin)
		require.NoError(t, h.List(c))
		require.Equal(t, http.StatusOK, rec.Code)
		var resp listResp
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "Seminar", resp.Items[0].Title)
	})
}

func TestDeleteReservationHandler(t *testing.T) {
	h, eng, _ := newTestHandler(t)
	v, err := eng.CreateReservation(context.Background(), "u-1", model.CreateReservationRequest{
		ClassroomID: "room-1", Title: "Lecture",
		StartTime: time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	c, rec := request(http.MethodDelete, "/", "", "u-1", model.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues(v.ID)
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	c, rec = request(http.MethodDelete, "/", "", "u-1", model.RoleUser)
	c.SetParamNames("id")
	c.SetParamValues(v.ID)
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
