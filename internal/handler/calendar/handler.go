package calendar

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/theminddepartment/booking-api/internal/handler"
	"github.com/theminddepartment/booking-api/internal/model"
	"github.com/theminddepartment/booking-api/internal/service/calendar"
)

type Handler struct {
	service *calendar.Service
}

func NewHandler(service *calendar.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListBusinessHours(c *gin.Context) {
	entries, err := h.service.ListBusinessHours(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(entries))
}

// SaveBusinessHours applies a batch of weekday rows. Partial success is
// reported explicitly: saved rows and per-weekday failures together.
func (h *Handler) SaveBusinessHours(c *gin.Context) {
	var req model.BatchBusinessHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	saved, failures := h.service.SaveBusinessHours(c.Request.Context(), &req)
	status := http.StatusOK
	if len(failures) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, handler.NewSuccessResponse(gin.H{
		"saved":    saved,
		"failures": failures,
	}))
}

func (h *Handler) ListClosures(c *gin.Context) {
	from, to, err := dateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	closures, err := h.service.ListClosures(c.Request.Context(), from, to)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(closures))
}

func (h *Handler) CreateClosure(c *gin.Context) {
	var req model.CreateClosureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	closure, err := h.service.AddClosure(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(closure))
}

func (h *Handler) DeleteClosure(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid closure ID"))
		return
	}

	if err := h.service.RemoveClosure(c.Request.Context(), id); err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) ListStaffSchedules(c *gin.Context) {
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid staff ID"))
		return
	}

	schedules, err := h.service.ListStaffSchedules(c.Request.Context(), staffID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(schedules))
}

func (h *Handler) SaveStaffSchedules(c *gin.Context) {
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid staff ID"))
		return
	}
	var req model.BatchStaffScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	saved, failures := h.service.SaveStaffSchedules(c.Request.Context(), staffID, &req)
	status := http.StatusOK
	if len(failures) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, handler.NewSuccessResponse(gin.H{
		"saved":    saved,
		"failures": failures,
	}))
}

func (h *Handler) ListStaffLeaves(c *gin.Context) {
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid staff ID"))
		return
	}

	leaves, err := h.service.ListStaffLeaves(c.Request.Context(), staffID)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(leaves))
}

func (h *Handler) CreateStaffLeave(c *gin.Context) {
	var req model.CreateStaffLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	leave, err := h.service.AddStaffLeave(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(leave))
}

func (h *Handler) DeleteStaffLeave(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid leave ID"))
		return
	}

	if err := h.service.RemoveStaffLeave(c.Request.Context(), id); err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	hours := r.Group("/business-hours")
	{
		hours.GET("", h.ListBusinessHours)
		hours.PUT("", h.SaveBusinessHours)
	}

	closures := r.Group("/closures")
	{
		closures.GET("", h.ListClosures)
		closures.POST("", h.CreateClosure)
		closures.DELETE("/:id", h.DeleteClosure)
	}

	staff := r.Group("/staff/:id")
	{
		staff.GET("/schedules", h.ListStaffSchedules)
		staff.PUT("/schedules", h.SaveStaffSchedules)
		staff.GET("/leaves", h.ListStaffLeaves)
	}

	leaves := r.Group("/staff-leaves")
	{
		leaves.POST("", h.CreateStaffLeave)
		leaves.DELETE("/:id", h.DeleteStaffLeave)
	}
}

// dateRange reads from/to query params, defaulting to the next 90 days.
func dateRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	from := model.DateOnly(now)
	to := from.AddDate(0, 0, 90)

	if v := c.Query("from"); v != "" {
		parsed, err := time.ParseInLocation(model.DateFormat, v, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.ParseInLocation(model.DateFormat, v, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed
	}
	return from, to, nil
}
