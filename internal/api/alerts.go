package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/osalazarm/alertview/internal/alert"
	"github.com/osalazarm/alertview/internal/alertstore"
	"github.com/osalazarm/alertview/internal/errors"
	"github.com/osalazarm/alertview/internal/query"
)

// initAlertRoutes registers alert search and statistics endpoints.
func (c *Controller) initAlertRoutes() {
	alerts := c.Group.Group("/alerts")
	alerts.GET("", c.SearchAlerts)
	alerts.GET("/stats/:period", c.GetAlertStats)
}

// SearchAlerts returns one page of alerts from the index, filtered by the
// query parameters and annotated with local review state.
func (c *Controller) SearchAlerts(ctx echo.Context) error {
	input := query.FormInput{
		AgentIDs:   ctx.QueryParam("agent_ids"),
		RuleLevels: ctx.QueryParam("rule_levels"),
		RuleGroups: ctx.QueryParam("rule_groups"),
		FromDate:   ctx.QueryParam("from"),
		ToDate:     ctx.QueryParam("to"),
		SearchTerm: ctx.QueryParam("search"),
		AlertID:    ctx.QueryParam("alert_id"),
	}

	spec, err := query.Compose(input)
	if err != nil {
		var rangeErr *query.DateRangeError
		if errors.As(err, &rangeErr) {
			return ctx.JSON(http.StatusBadRequest, map[string]string{
				"error": rangeErr.Error(),
				"bound": rangeErr.Bound,
			})
		}
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	var stateFilter alert.ReviewStatus
	if stateParam := ctx.QueryParam("state"); stateParam != "" {
		stateFilter, err = alert.ParseReviewStatus(stateParam)
		if err != nil {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid state filter"})
		}
		spec.ReviewState = stateFilter
	}

	page := parsePagination(ctx)

	result, err := c.store.Search(ctx.Request().Context(), spec, page)
	if err != nil {
		return c.storeError(ctx, err, "Failed to search alerts")
	}

	result.Alerts = c.reviewSvc.Annotate(ctx.Request().Context(), result.Alerts)

	// Review state lives only in the local store, so it filters the
	// returned page rather than the index query.
	if stateFilter != "" {
		filtered := result.Alerts[:0]
		for _, a := range result.Alerts {
			if a.Status == stateFilter {
				filtered = append(filtered, a)
			}
		}
		result.Alerts = filtered
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"alerts": result.Alerts,
		"total":  result.Total,
		"page":   page.Page,
		"size":   page.Size,
	})
}

// GetAlertStats returns the derived dashboard series for a period.
func (c *Controller) GetAlertStats(ctx echo.Context) error {
	period, ok := alertstore.ParsePeriod(ctx.Param("period"))
	if !ok {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid period"})
	}

	series, err := c.dashboard.Series(ctx.Request().Context(), period)
	if err != nil {
		return c.storeError(ctx, err, "Failed to load alert statistics")
	}
	return ctx.JSON(http.StatusOK, series)
}

// storeError maps alert index failures onto HTTP statuses. An explicit
// error payload from the index means the data is unavailable, not that
// this service is broken.
func (c *Controller) storeError(ctx echo.Context, err error, message string) error {
	if c.metrics != nil {
		kind := "unavailable"
		if errors.Is(err, alertstore.ErrTransport) {
			kind = "transport"
		}
		c.metrics.AlertStoreErrors.WithLabelValues(kind).Inc()
	}
	if errors.Is(err, alertstore.ErrTransport) {
		return c.HandleError(ctx, err, message, http.StatusBadGateway)
	}
	return c.HandleError(ctx, err, message, http.StatusServiceUnavailable)
}

// parsePagination reads page/size query parameters, clamping to sane
// bounds.
func parsePagination(ctx echo.Context) query.Pagination {
	page := query.DefaultPagination()
	if v, err := strconv.Atoi(ctx.QueryParam("page")); err == nil && v > 0 {
		page.Page = v
	}
	if v, err := strconv.Atoi(ctx.QueryParam("size")); err == nil && v > 0 {
		if v > query.MaxPageSize {
			v = query.MaxPageSize
		}
		page.Size = v
	}
	return page
}
