package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/osalazarm/alertview/internal/datastore/entities"
	"github.com/osalazarm/alertview/internal/datastore/repository"
	"github.com/osalazarm/alertview/internal/errors"
	"github.com/osalazarm/alertview/internal/logger"
	"github.com/osalazarm/alertview/internal/notify"
)

// initNotificationRoutes registers notification config, recipient and
// history endpoints.
func (c *Controller) initNotificationRoutes() {
	n := c.Group.Group("/notifications")

	n.GET("/config", c.GetNotificationConfig)
	n.POST("/config", c.CreateNotificationConfig)
	n.PUT("/config", c.UpdateNotificationConfig)

	n.GET("/emails", c.ListNotificationEmails)
	n.POST("/emails", c.CreateNotificationEmail)
	n.PUT("/emails/:id", c.UpdateNotificationEmail)
	n.DELETE("/emails/:id", c.DeleteNotificationEmail)

	n.GET("/history", c.ListNotificationHistory)
}

// GetNotificationConfig returns the config, seeding defaults on first
// access so the UI never sees an empty form.
func (c *Controller) GetNotificationConfig(ctx echo.Context) error {
	config, err := c.notifSvc.GetOrCreateConfig(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load notification config", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, config)
}

// CreateNotificationConfig creates the config row explicitly. The config
// is a deployment singleton; a second create conflicts.
func (c *Controller) CreateNotificationConfig(ctx echo.Context) error {
	var body entities.NotificationConfig
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if err := c.notifSvc.CreateConfig(ctx.Request().Context(), &body); err != nil {
		switch {
		case errors.Is(err, notify.ErrInvalidRecipient), errors.Is(err, notify.ErrInvalidThreshold):
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, repository.ErrConfigExists):
			return ctx.JSON(http.StatusConflict, map[string]string{"error": "Notification config already exists"})
		}
		return c.HandleError(ctx, err, "Failed to create notification config", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusCreated, body)
}

// UpdateNotificationConfig applies changes to the notification config.
func (c *Controller) UpdateNotificationConfig(ctx echo.Context) error {
	var body entities.NotificationConfig
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	updated, err := c.notifSvc.UpdateConfig(ctx.Request().Context(), &body)
	if err != nil {
		switch {
		case errors.Is(err, notify.ErrInvalidRecipient), errors.Is(err, notify.ErrInvalidThreshold):
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, repository.ErrConfigNotFound):
			return ctx.JSON(http.StatusNotFound, map[string]string{"error": "Notification config not found"})
		}
		return c.HandleError(ctx, err, "Failed to update notification config", http.StatusInternalServerError)
	}

	c.logInfoIfEnabled("notification config updated",
		logger.Int("alert_threshold", updated.AlertThreshold),
		logger.Bool("enabled", updated.Enabled))
	return ctx.JSON(http.StatusOK, updated)
}

// ListNotificationEmails returns all recipients.
func (c *Controller) ListNotificationEmails(ctx echo.Context) error {
	emails, err := c.notifSvc.ListRecipients(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list recipients", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, map[string]any{
		"emails": emails,
		"count":  len(emails),
	})
}

// CreateNotificationEmail registers a recipient.
func (c *Controller) CreateNotificationEmail(ctx echo.Context) error {
	var body entities.NotificationEmail
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if err := c.notifSvc.AddRecipient(ctx.Request().Context(), &body); err != nil {
		switch {
		case errors.Is(err, notify.ErrInvalidRecipient):
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, repository.ErrEmailExists):
			return ctx.JSON(http.StatusConflict, map[string]string{"error": "Recipient already exists"})
		}
		return c.HandleError(ctx, err, "Failed to create recipient", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusCreated, body)
}

// UpdateNotificationEmail edits a recipient.
func (c *Controller) UpdateNotificationEmail(ctx echo.Context) error {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid recipient ID"})
	}

	var body entities.NotificationEmail
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	body.ID = id

	if err := c.notifSvc.UpdateRecipient(ctx.Request().Context(), &body); err != nil {
		switch {
		case errors.Is(err, notify.ErrInvalidRecipient):
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, repository.ErrEmailNotFound):
			return ctx.JSON(http.StatusNotFound, map[string]string{"error": "Recipient not found"})
		case errors.Is(err, repository.ErrEmailExists):
			return ctx.JSON(http.StatusConflict, map[string]string{"error": "Recipient already exists"})
		}
		return c.HandleError(ctx, err, "Failed to update recipient", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, body)
}

// DeleteNotificationEmail removes a recipient.
func (c *Controller) DeleteNotificationEmail(ctx echo.Context) error {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid recipient ID"})
	}

	if err := c.notifSvc.RemoveRecipient(ctx.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrEmailNotFound) {
			return ctx.JSON(http.StatusNotFound, map[string]string{"error": "Recipient not found"})
		}
		return c.HandleError(ctx, err, "Failed to delete recipient", http.StatusInternalServerError)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// ListNotificationHistory returns dispatch history newest first.
func (c *Controller) ListNotificationHistory(ctx echo.Context) error {
	limit, offset := parseLimitOffset(ctx)

	items, total, err := c.notifSvc.History(ctx.Request().Context(), limit, offset)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list notification history", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"history": items,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}
