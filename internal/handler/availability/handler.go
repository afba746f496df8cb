package availability

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/theminddepartment/booking-api/internal/handler"
	"github.com/theminddepartment/booking-api/internal/model"
	"github.com/theminddepartment/booking-api/internal/service/availability"
	"github.com/theminddepartment/booking-api/pkg/metrics"
)

type Handler struct {
	service *availability.Service
	metrics *metrics.Metrics
}

func NewHandler(service *availability.Service, m *metrics.Metrics) *Handler {
	return &Handler{service: service, metrics: m}
}

// GetSlots returns the full candidate grid for one staff member,
// service and date, available and unavailable alike, so clients can
// render the whole day.
func (h *Handler) GetSlots(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Query("service_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid service_id"))
		return
	}
	staffID, err := uuid.Parse(c.Query("staff_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid staff_id"))
		return
	}
	date, err := time.ParseInLocation(model.DateFormat, c.Query("date"), time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid date, expected YYYY-MM-DD"))
		return
	}

	start := time.Now()
	slots, err := h.service.GenerateSlots(c.Request.Context(), staffID, serviceID, date)
	if err != nil {
		handler.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.SlotQueryLatency.Observe(time.Since(start).Seconds())
		h.metrics.SlotsGenerated.Add(float64(len(slots)))
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"date":       c.Query("date"),
		"service_id": serviceID,
		"staff_id":   staffID,
		"slots":      slots,
	}))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/slots", h.GetSlots)
}
