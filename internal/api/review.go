package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/osalazarm/alertview/internal/alert"
	"github.com/osalazarm/alertview/internal/datastore/repository"
	"github.com/osalazarm/alertview/internal/errors"
	"github.com/osalazarm/alertview/internal/review"
)

const maxListLimit = 200

// initReviewRoutes registers review lifecycle and note endpoints.
func (c *Controller) initReviewRoutes() {
	r := c.Group.Group("/review")

	r.POST("", c.MarkAlertForReview)
	r.GET("", c.ListManagedAlerts)
	r.GET("/:id", c.GetManagedAlert)
	r.POST("/:id/close", c.CloseManagedAlert)
	r.DELETE("/:id", c.DeleteManagedAlert)

	r.POST("/:id/notes", c.AddNote)
	r.GET("/:id/notes", c.ListNotes)
	r.PUT("/:id/notes/:noteID", c.UpdateNote)
	r.DELETE("/:id/notes/:noteID", c.DeleteNote)
}

// MarkAlertForReview takes a raw alert document, normalizes it and opens
// a review record.
func (c *Controller) MarkAlertForReview(ctx echo.Context) error {
	var raw map[string]any
	if err := json.NewDecoder(ctx.Request().Body).Decode(&raw); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	normalized, err := alert.Normalize(raw)
	if err != nil {
		if errors.Is(err, alert.ErrMissingRequiredField) || errors.Is(err, alert.ErrLevelOutOfRange) {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Malformed alert document"})
	}

	record, err := c.reviewSvc.MarkForReview(ctx.Request().Context(), normalized)
	if err != nil {
		if errors.Is(err, review.ErrInvalidTransition) {
			return ctx.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.HandleError(ctx, err, "Failed to mark alert for review", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusCreated, record)
}

// ListManagedAlerts returns managed alerts newest first.
func (c *Controller) ListManagedAlerts(ctx echo.Context) error {
	limit, offset := parseLimitOffset(ctx)

	state := ctx.QueryParam("state")
	if state != "" {
		parsed, err := alert.ParseReviewStatus(state)
		if err != nil || parsed == alert.StatusUnmanaged {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid state filter"})
		}
	}

	items, total, err := c.reviewSvc.List(ctx.Request().Context(), state, limit, offset)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list managed alerts", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"alerts": items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetManagedAlert returns a single managed alert.
func (c *Controller) GetManagedAlert(ctx echo.Context) error {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid managed alert ID"})
	}

	record, err := c.reviewSvc.Get(ctx.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrManagedAlertNotFound) {
			return ctx.JSON(http.StatusNotFound, map[string]string{"error": "Managed alert not found"})
		}
		return c.HandleError(ctx, err, "Failed to get managed alert", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, record)
}

// CloseManagedAlert transitions a managed alert to Closed.
func (c *Controller) CloseManagedAlert(ctx echo.Context) error {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid managed alert ID"})
	}

	record, err := c.reviewSvc.Close(ctx.Request().Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrManagedAlertNotFound):
			return ctx.JSON(http.StatusNotFound, map[string]string{"error": "Managed alert not found"})
		case errors.Is(err, review.ErrInvalidTransition):
			return ctx.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.HandleError(ctx, err, "Failed to close managed alert", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, record)
}

// DeleteManagedAlert removes a review record and its notes.
func (c *Controller) DeleteManagedAlert(ctx echo.Context) error {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid managed alert ID"})
	}

	if err := c.reviewSvc.Delete(ctx.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrManagedAlertNotFound) {
			return ctx.JSON(http.StatusNotFound, map[string]string{"error": "Managed alert not found"})
		}
		return c.HandleError(ctx, err, "Failed to delete managed alert", http.StatusInternalServerError)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// noteRequest is the note create/update body.
type noteRequest struct {
	Content    string `json:"content"`
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
}

// AddNote appends a note to a managed alert's ledger.
func (c *Controller) AddNote(ctx echo.Context) error {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid managed alert ID"})
	}

	var body noteRequest
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	note, err := c.reviewSvc.AddNote(ctx.Request().Context(), id,
		review.Author{ID: body.AuthorID, Name: body.AuthorName}, body.Content)
	if err != nil {
		switch {
		case errors.Is(err, review.ErrEmptyContent):
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Note content is required"})
		case errors.Is(err, repository.ErrManagedAlertNotFound):
			return ctx.JSON(http.StatusNotFound, map[string]string{"error": "Managed alert not found"})
		}
		return c.HandleError(ctx, err, "Failed to add note", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusCreated, note)
}

// ListNotes returns a managed alert's notes oldest first.
func (c *Controller) ListNotes(ctx echo.Context) error {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid managed alert ID"})
	}

	notes, err := c.reviewSvc.GetNotes(ctx.Request().Context(), id)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list notes", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"notes": notes,
		"count": len(notes),
	})
}

// UpdateNote replaces a note's content.
func (c *Controller) UpdateNote(ctx echo.Context) error {
	noteID, err := parseUintParam(ctx, "noteID")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid note ID"})
	}

	var body noteRequest
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	note, err := c.reviewSvc.UpdateNote(ctx.Request().Context(), noteID,
		review.Author{ID: body.AuthorID, Name: body.AuthorName}, body.Content)
	if err != nil {
		switch {
		case errors.Is(err, review.ErrEmptyContent):
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Note content is required"})
		case errors.Is(err, repository.ErrNoteNotFound):
			return ctx.JSON(http.StatusNotFound, map[string]string{"error": "Note not found"})
		}
		return c.HandleError(ctx, err, "Failed to update note", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, note)
}

// DeleteNote removes a single note.
func (c *Controller) DeleteNote(ctx echo.Context) error {
	noteID, err := parseUintParam(ctx, "noteID")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid note ID"})
	}

	if err := c.reviewSvc.DeleteNote(ctx.Request().Context(), noteID); err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return ctx.JSON(http.StatusNotFound, map[string]string{"error": "Note not found"})
		}
		return c.HandleError(ctx, err, "Failed to delete note", http.StatusInternalServerError)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// parseLimitOffset reads limit/offset query parameters with defaults.
func parseLimitOffset(ctx echo.Context) (limit, offset int) {
	limit = 50
	if v, err := strconv.Atoi(ctx.QueryParam("limit")); err == nil && v > 0 {
		if v > maxListLimit {
			v = maxListLimit
		}
		limit = v
	}
	if v, err := strconv.Atoi(ctx.QueryParam("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
