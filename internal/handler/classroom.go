package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusbooking/classroom-reservation/internal/engine"
	"github.com/campusbooking/classroom-reservation/internal/model"
)

// ClassroomHandler exposes the classroom registry. Reads are open to any
// authenticated user; mutations are restricted to admins in the router.
type ClassroomHandler struct {
	Registry *engine.Registry
}

func NewClassroomHandler(reg *engine.Registry) *ClassroomHandler {
	if reg == nil {
		panic("nil registry passed to NewClassroomHandler")
	}
	return &ClassroomHandler{Registry: reg}
}

type classroomResp struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	RoomNumber    string    `json:"room_number"`
	Location      string    `json:"location"`
	Capacity      int       `json:"capacity"`
	ClassroomType string    `json:"classroom_type"`
	HasProjector  bool      `json:"has_projector"`
	HasWhiteboard bool      `json:"has_whiteboard"`
	HasComputers  bool      `json:"has_computers"`
	Description   *string   `json:"description"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toClassroomResp(c model.Classroom) classroomResp {
	return classroomResp{
		ID:            c.ID,
		Name:          c.Name,
		RoomNumber:    c.RoomNumber,
		Location:      c.Location,
		Capacity:      c.Capacity,
		ClassroomType: c.ClassroomType,
		HasProjector:  c.HasProjector,
		HasWhiteboard: c.HasWhiteboard,
		HasComputers:  c.HasComputers,
		Description:   c.Description,
		IsActive:      c.IsActive,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

type createClassroomReq struct {
	Name          string  `json:"name"`
	RoomNumber    string  `json:"room_number"`
	Location      string  `json:"location"`
	Capacity      int     `json:"capacity"`
	ClassroomType string  `json:"classroom_type"`
	HasProjector  bool    `json:"has_projector"`
	HasWhiteboard bool    `json:"has_whiteboard"`
	HasComputers  bool    `json:"has_computers"`
	Description   *string `json:"description"`
}

type updateClassroomReq struct {
	Name          *string `json:"name"`
	RoomNumber    *string `json:"room_number"`
	Location      *string `json:"location"`
	Capacity      *int    `json:"capacity"`
	ClassroomType *string `json:"classroom_type"`
	HasProjector  *bool   `json:"has_projector"`
	HasWhiteboard *bool   `json:"has_whiteboard"`
	HasComputers  *bool   `json:"has_computers"`
	Description   *string `json:"description"`
	IsActive      *bool   `json:"is_active"`
}

// classroomFilterFrom builds the registry filter from query parameters.
// available_from/available_to must be given together to take effect.
func classroomFilterFrom(c echo.Context) model.ClassroomFilter {
	f := model.ClassroomFilter{
		Search:        c.QueryParam("search"),
		ClassroomType: c.QueryParam("classroom_type"),
	}
	if v := c.QueryParam("min_capacity"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.MinCapacity = &n
		}
	}
	if v := c.QueryParam("max_capacity"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.MaxCapacity = &n
		}
	}
	for param, dst := range map[string]**bool{
		"has_projector":  &f.HasProjector,
		"has_whiteboard": &f.HasWhiteboard,
		"has_computers":  &f.HasComputers,
		"is_active":      &f.IsActive,
	} {
		if v := c.QueryParam(param); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = &b
			}
		}
	}
	from, to := c.QueryParam("available_from"), c.QueryParam("available_to")
	if from != "" && to != "" {
		tf, errF := time.Parse(time.RFC3339, from)
		tt, errT := time.Parse(time.RFC3339, to)
		if errF == nil && errT == nil {
			tf, tt = tf.UTC(), tt.UTC()
			f.AvailableFrom = &tf
			f.AvailableTo = &tt
		}
	}
	return f
}

// List handles GET /v1/classrooms with optional search, capacity, amenity
// and availability-window filters.
func (h *ClassroomHandler) List(c echo.Context) error {
	rooms, err := h.Registry.List(c.Request().Context(), classroomFilterFrom(c))
	if err != nil {
		return engineError(c, err)
	}
	out := make([]classroomResp, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, toClassroomResp(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Get handles GET /v1/classrooms/:id.
func (h *ClassroomHandler) Get(c echo.Context) error {
	room, err := h.Registry.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toClassroomResp(*room)})
}

// Create handles POST /v1/classrooms (admin only).
func (h *ClassroomHandler) Create(c echo.Context) error {
	var req createClassroomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Name == "" || req.RoomNumber == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and room_number are required"})
	}
	room, err := h.Registry.Create(c.Request().Context(), model.CreateClassroomRequest{
		Name:          req.Name,
		RoomNumber:    req.RoomNumber,
		Location:      req.Location,
		Capacity:      req.Capacity,
		ClassroomType: req.ClassroomType,
		HasProjector:  req.HasProjector,
		HasWhiteboard: req.HasWhiteboard,
		HasComputers:  req.HasComputers,
		Description:   req.Description,
	})
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": toClassroomResp(*room)})
}

// Update handles PUT /v1/classrooms/:id (admin only, partial update).
func (h *ClassroomHandler) Update(c echo.Context) error {
	var req updateClassroomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	room, err := h.Registry.Update(c.Request().Context(), c.Param("id"), model.ClassroomPatch{
		Name:          req.Name,
		RoomNumber:    req.RoomNumber,
		Location:      req.Location,
		Capacity:      req.Capacity,
		ClassroomType: req.ClassroomType,
		HasProjector:  req.HasProjector,
		HasWhiteboard: req.HasWhiteboard,
		HasComputers:  req.HasComputers,
		Description:   req.Description,
		IsActive:      req.IsActive,
	})
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toClassroomResp(*room)})
}

// Delete handles DELETE /v1/classrooms/:id (admin only). Removes the room
// and every reservation referencing it.
func (h *ClassroomHandler) Delete(c echo.Context) error {
	if err := h.Registry.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return engineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
