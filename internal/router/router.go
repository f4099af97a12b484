package router

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openclinic/intake-api/internal/middleware"
	"github.com/openclinic/intake-api/internal/service/patient"
)

// Handler registers its routes on a router group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	CORS           middleware.CORSConfig
	MetricsPrefix  string
}

type Router struct {
	engine  *gin.Engine
	authH   Handler
	healthH Handler
	// protected handlers sit behind the identity assertion gate
	patientH Handler
	auditH   Handler
	metrics  *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

var (
	registerSSNRule sync.Once
	metricsOnce     sync.Once
	sharedMetrics   *routerMetrics
)

func NewRouter(authH, healthH, patientH, auditH Handler, config Config) *Router {
	gin.SetMode(gin.ReleaseMode)

	registerSSNRule.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterValidation("ssn", func(fl validator.FieldLevel) bool {
				return patient.ValidSSN(fl.Field().String())
			})
		}
	})

	engine := gin.New()

	r := &Router{
		engine:   engine,
		authH:    authH,
		healthH:  healthH,
		patientH: patientH,
		auditH:   auditH,
		metrics:  initRouterMetrics(config.MetricsPrefix),
	}

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPS:   config.RateLimitRPS,
		Burst: config.RateLimitBurst,
	})

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		r.metricsMiddleware(),
		middleware.CORS(config.CORS),
		rateLimiter.RateLimit(),
	)

	return r
}

func (r *Router) Setup() {
	root := r.engine.Group("")

	r.healthH.RegisterRoutes(root)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public routes
	r.authH.RegisterRoutes(root)

	// Protected routes
	protected := r.engine.Group("", middleware.Authenticate())
	r.patientH.RegisterRoutes(protected)
	r.auditH.RegisterRoutes(protected)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// initRouterMetrics registers the request collectors once; routers
// built later (tests build several) share the same collectors.
func initRouterMetrics(prefix string) *routerMetrics {
	if prefix == "" {
		prefix = "intake_api"
	}
	metricsOnce.Do(func() {
		sharedMetrics = &routerMetrics{
			requestDuration: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name: prefix + "_request_duration_seconds",
					Help: "Duration of HTTP requests in seconds",
				},
				[]string{"method", "path", "status"},
			),
			requestTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: prefix + "_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			errorTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: prefix + "_errors_total",
					Help: "Total number of HTTP errors",
				},
				[]string{"method", "path", "type"},
			),
		}
		prometheus.MustRegister(
			sharedMetrics.requestDuration,
			sharedMetrics.requestTotal,
			sharedMetrics.errorTotal,
		)
	})
	return sharedMetrics
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
