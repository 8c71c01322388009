// Package api exposes the review console's HTTP API.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/osalazarm/alertview/internal/alertstore"
	"github.com/osalazarm/alertview/internal/dashboard"
	"github.com/osalazarm/alertview/internal/logger"
	"github.com/osalazarm/alertview/internal/metrics"
	"github.com/osalazarm/alertview/internal/notify"
	"github.com/osalazarm/alertview/internal/query"
	"github.com/osalazarm/alertview/internal/review"
)

// AlertSource is the slice of the alert index client the API needs.
type AlertSource interface {
	Search(ctx context.Context, spec query.FilterSpec, page query.Pagination) (*alertstore.SearchResult, error)
	Ping(ctx context.Context) error
}

// Controller wires services to HTTP routes.
type Controller struct {
	Echo  *echo.Echo
	Group *echo.Group

	store     AlertSource
	dashboard *dashboard.Service
	reviewSvc *review.Service
	notifSvc  *notify.Service
	log       logger.Logger
	metrics   *metrics.Metrics
}

// New creates the controller and registers all routes.
func New(store AlertSource, dash *dashboard.Service, reviewSvc *review.Service, notifSvc *notify.Service, m *metrics.Metrics, log logger.Logger) *Controller {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	c := &Controller{
		Echo:      e,
		store:     store,
		dashboard: dash,
		reviewSvc: reviewSvc,
		notifSvc:  notifSvc,
		log:       log,
		metrics:   m,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(c.countRequests)

	e.GET("/healthz", c.Health)
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}

	c.Group = e.Group("/api/v1")
	c.initAlertRoutes()
	c.initReviewRoutes()
	c.initNotificationRoutes()
	return c
}

// Health reports service and alert index status.
func (c *Controller) Health(ctx echo.Context) error {
	status := map[string]string{"status": "ok", "alertstore": "ok"}
	code := http.StatusOK
	if err := c.store.Ping(ctx.Request().Context()); err != nil {
		status["alertstore"] = "unreachable"
		code = http.StatusServiceUnavailable
	}
	return ctx.JSON(code, status)
}

// HandleError logs the cause and returns a uniform error body carrying
// the request ID.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	requestID := ctx.Response().Header().Get(echo.HeaderXRequestID)
	c.logErrorIfEnabled(message,
		logger.Error(err),
		logger.String("request_id", requestID))
	return ctx.JSON(code, map[string]string{
		"error":      message,
		"request_id": requestID,
	})
}

func (c *Controller) countRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		err := next(ctx)
		if c.metrics != nil {
			route := ctx.Path()
			if route == "" {
				route = ctx.Request().URL.Path
			}
			c.metrics.APIRequests.WithLabelValues(
				ctx.Request().Method,
				route,
				strconv.Itoa(ctx.Response().Status),
			).Inc()
		}
		return err
	}
}

func (c *Controller) logErrorIfEnabled(msg string, fields ...logger.Field) {
	if c.log != nil {
		c.log.Error(msg, fields...)
	}
}

func (c *Controller) logInfoIfEnabled(msg string, fields ...logger.Field) {
	if c.log != nil {
		c.log.Info(msg, fields...)
	}
}

// parseUintParam parses a uint route parameter.
func parseUintParam(ctx echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}
