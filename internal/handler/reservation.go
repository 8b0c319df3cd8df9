package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusbooking/classroom-reservation/internal/engine"
	"github.com/campusbooking/classroom-reservation/internal/model"
	queuepub "github.com/campusbooking/classroom-reservation/internal/service"
)

// ReservationHandler exposes the reservation engine over HTTP. JWT
// authentication and role checks run in middleware before any method here;
// the engine receives the caller identity explicitly.
type ReservationHandler struct {
	Engine *engine.Engine
}

// NewReservationHandler constructs a handler around the engine.
func NewReservationHandler(eng *engine.Engine) *ReservationHandler {
	if eng == nil {
		panic("nil engine passed to NewReservationHandler")
	}
	return &ReservationHandler{Engine: eng}
}

// ----- DTOs -----

type createReservationReq struct {
	ClassroomID   string    `json:"classroom_id"`
	Title         string    `json:"title"`
	Description   *string   `json:"description"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Purpose       string    `json:"purpose"`
	AttendeeCount *int      `json:"attendee_count"`
}

type updateReservationReq struct {
	Title         *string    `json:"title"`
	Description   *string    `json:"description"`
	StartTime     *time.Time `json:"start_time"`
	EndTime       *time.Time `json:"end_time"`
	Purpose       *string    `json:"purpose"`
	AttendeeCount *int       `json:"attendee_count"`
}

type statusReq struct {
	Status string `json:"status"`
}

// reservationFilterFrom builds the engine filter from query parameters.
// Unset parameters impose no constraint; from/to must be RFC3339.
func reservationFilterFrom(c echo.Context) model.ReservationFilter {
	f := model.ReservationFilter{
		ClassroomID: c.QueryParam("classroom_id"),
		UserID:      c.QueryParam("user_id"),
		Status:      c.QueryParam("status"),
		Purpose:     c.QueryParam("purpose"),
	}
	if v := c.QueryParam("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			t = t.UTC()
			f.From = &t
		}
	}
	if v := c.QueryParam("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			t = t.UTC()
			f.To = &t
		}
	}
	return f
}

// List handles GET /v1/reservations (admin only). Returns every reservation
// matching the optional filters, newest first.
func (h *ReservationHandler) List(c echo.Context) error {
	items, err := h.Engine.ListAll(c.Request().Context(), reservationFilterFrom(c))
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListMine handles GET /v1/reservations/my. Returns the caller's
// reservations matching the optional filters.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Engine.ListMine(c.Request().Context(), userID, reservationFilterFrom(c))
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/reservations/:id. Non-admins may only view their own
// reservations.
func (h *ReservationHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	view, err := h.Engine.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return engineError(c, err)
	}
	if !isAdmin(c) && view.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": view})
}

// Create handles POST /v1/reservations. The caller becomes the owner of the
// new Pending reservation.
func (h *ReservationHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.ClassroomID == "" || req.Title == "" || req.StartTime.IsZero() || req.EndTime.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "classroom_id, title, start_time and end_time are required"})
	}
	view, err := h.Engine.CreateReservation(c.Request().Context(), userID, model.CreateReservationRequest{
		ClassroomID:   req.ClassroomID,
		Title:         req.Title,
		Description:   req.Description,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Purpose:       req.Purpose,
		AttendeeCount: req.AttendeeCount,
	})
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": view})
}

// Update handles PUT /v1/reservations/:id with partial-update semantics.
func (h *ReservationHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req updateReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	view, err := h.Engine.UpdateReservation(c.Request().Context(), c.Param("id"), userID, isAdmin(c), model.ReservationPatch{
		Title:         req.Title,
		Description:   req.Description,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Purpose:       req.Purpose,
		AttendeeCount: req.AttendeeCount,
	})
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": view})
}

// UpdateStatus handles PATCH /v1/reservations/:id/status (admin only). A
// decision event is published after the transition commits; publish failures
// never fail the request.
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	adminID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	view, err := h.Engine.UpdateStatus(c.Request().Context(), c.Param("id"), adminID, req.Status)
	if err != nil {
		return engineError(c, err)
	}
	_ = queuepub.PublishReservationDecided(c.Request().Context(), queuepub.DecisionEventFrom(view, adminID))
	return c.JSON(http.StatusOK, echo.Map{"item": view})
}

// Cancel handles PATCH /v1/reservations/:id/cancel. Owners and admins can
// cancel Pending or Approved reservations; this is the only path out of
// Approved short of an admin delete.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	view, err := h.Engine.Cancel(c.Request().Context(), c.Param("id"), userID, isAdmin(c))
	if err != nil {
		return engineError(c, err)
	}
	_ = queuepub.PublishReservationDecided(c.Request().Context(), queuepub.DecisionEventFrom(view, userID))
	return c.JSON(http.StatusOK, echo.Map{"item": view})
}

// Delete handles DELETE /v1/reservations/:id. Returns 204 on success.
func (h *ReservationHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.Engine.Delete(c.Request().Context(), c.Param("id"), userID, isAdmin(c)); err != nil {
		return engineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
