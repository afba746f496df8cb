package intake

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/theminddepartment/booking-api/internal/handler"
	"github.com/theminddepartment/booking-api/internal/model"
	"github.com/theminddepartment/booking-api/internal/service/intake"
)

type Handler struct {
	service *intake.Service
}

func NewHandler(service *intake.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateProfile(c *gin.Context) {
	var req model.CreateIntakeProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	profile, err := h.service.CreateProfile(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(profile))
}

// IntakeStatus answers whether an email can book, without exposing the
// profile contents to the public surface.
func (h *Handler) IntakeStatus(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("email is required"))
		return
	}

	status, err := h.service.Status(c.Request.Context(), email)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(status))
}

func (h *Handler) ActiveDisclaimer(c *gin.Context) {
	disclaimer, err := h.service.ActiveDisclaimer(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	if disclaimer == nil {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("no active disclaimer"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(disclaimer))
}

func (h *Handler) ListProfiles(c *gin.Context) {
	profiles, err := h.service.ListProfiles(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(profiles))
}

func (h *Handler) GetProfile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid profile ID"))
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(profile))
}

func (h *Handler) ExpireProfile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid profile ID"))
		return
	}

	if err := h.service.ExpireProfile(c.Request.Context(), id); err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) ExpireAllProfiles(c *gin.Context) {
	count, err := h.service.ExpireAll(c.Request.Context())
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"expired": count}))
}

func (h *Handler) PublishDisclaimer(c *gin.Context) {
	var req model.CreateDisclaimerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	disclaimer, err := h.service.PublishDisclaimer(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(disclaimer))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	ig := r.Group("/intake")
	{
		ig.POST("", h.CreateProfile)
		ig.GET("/status", h.IntakeStatus)
	}
	r.GET("/disclaimer", h.ActiveDisclaimer)
}

func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	ig := r.Group("/intake")
	{
		ig.GET("", h.ListProfiles)
		ig.GET("/:id", h.GetProfile)
		ig.POST("/:id/expire", h.ExpireProfile)
		ig.POST("/expire-all", h.ExpireAllProfiles)
	}
	r.POST("/disclaimer", h.PublishDisclaimer)
}
