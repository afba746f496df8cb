package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/theminddepartment/booking-api/internal/handler"
	"github.com/theminddepartment/booking-api/internal/middleware"
)

// Handler registers routes on the public surface.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// AdminHandler also registers routes behind the admin token.
type AdminHandler interface {
	RegisterAdminRoutes(*gin.RouterGroup)
}

type Router struct {
	engine        *gin.Engine
	auth          *middleware.AuthMiddleware
	authH         Handler
	availabilityH Handler
	bookingH      Handler
	catalogH      Handler
	staffH        Handler
	intakeH       Handler
	calendarH     AdminHandler
	h             *handler.Handler
	cfg           Config
	metrics       *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

type Config struct {
	RateLimit  rate.Limit
	RateBurst  int
	CORSConfig middleware.CORSConfig
	Logger     *zerolog.Logger
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH Handler,
	availabilityH Handler,
	bookingH Handler,
	catalogH Handler,
	staffH Handler,
	intakeH Handler,
	calendarH AdminHandler,
	h *handler.Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	middleware.RegisterValidators()
	engine := gin.New()

	r := &Router{
		engine:        engine,
		auth:          auth,
		authH:         authH,
		availabilityH: availabilityH,
		bookingH:      bookingH,
		catalogH:      catalogH,
		staffH:        staffH,
		intakeH:       intakeH,
		calendarH:     calendarH,
		h:             h,
		cfg:           config,
		metrics:       newRouterMetrics("booking_http"),
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(config.Logger),
		middleware.Logger(config.Logger),
		middleware.ErrorHandler(config.Logger),
		r.metricsMiddleware(),
		middleware.CORS(config.CORSConfig),
	)

	return r
}

// Setup mounts all routes. The public surface carries the rate limiter;
// the admin surface carries the bearer token check instead.
func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	health := api.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
	}
	api.GET("/metrics", r.h.MetricsHandler)

	public := api.Group("")
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  r.cfg.RateLimit,
		Burst: r.cfg.RateBurst,
	})
	public.Use(rateLimiter.RateLimit())

	r.authH.RegisterRoutes(public)
	r.availabilityH.RegisterRoutes(public)
	r.bookingH.RegisterRoutes(public)
	r.catalogH.RegisterRoutes(public)
	r.staffH.RegisterRoutes(public)
	r.intakeH.RegisterRoutes(public)

	admin := api.Group("/admin")
	admin.Use(r.auth.Authenticate())

	r.calendarH.RegisterAdminRoutes(admin)
	for _, h := range []Handler{r.bookingH, r.catalogH, r.staffH, r.intakeH} {
		if ah, ok := h.(AdminHandler); ok {
			ah.RegisterAdminRoutes(admin)
		}
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func newRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
