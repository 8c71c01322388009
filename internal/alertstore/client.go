// Package alertstore is the HTTP client for the external alert index.
// The index owns the wire format; this package builds search and
// aggregation requests from validated filter specs and normalizes the
// hits into canonical alerts.
package alertstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/osalazarm/alertview/internal/alert"
	"github.com/osalazarm/alertview/internal/conf"
	"github.com/osalazarm/alertview/internal/errors"
	"github.com/osalazarm/alertview/internal/logger"
	"github.com/osalazarm/alertview/internal/query"
)

const (
	// indexPattern matches the daily alert indices written by the sensors.
	indexPattern = "security-alerts-*"
	// topRulesSize is how many rule frequency buckets the index returns.
	topRulesSize = 10
	// ruleLevelsSize covers the full [0,15] level range.
	ruleLevelsSize = 16
)

// Store failure modes. A well-formed error payload from the index is
// distinguished from a connectivity failure so callers can render the
// right state.
var (
	ErrDataUnavailable = errors.New("alert store data unavailable")
	ErrTransport       = errors.New("alert store unreachable")
)

// SearchResult is one page of normalized alerts plus the total match count.
type SearchResult struct {
	Alerts []alert.Alert `json:"alerts"`
	Total  int64         `json:"total"`
}

// Client queries the alert index over HTTP.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	log        logger.Logger
}

// NewClient creates an alert index client from settings.
func NewClient(settings *conf.AlertStoreSettings, log logger.Logger) *Client {
	timeout := settings.Timeout.Std()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    settings.URL,
		username:   settings.Username,
		password:   settings.Password,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Search returns one page of alerts matching the filter, newest first.
// Records missing required fields are skipped rather than failing the page.
func (c *Client) Search(ctx context.Context, spec query.FilterSpec, page query.Pagination) (*SearchResult, error) {
	body := map[string]any{
		"query": buildQuery(spec),
		"size":  page.Size,
		"from":  page.Offset(),
		"sort":  []any{map[string]any{"@timestamp": map[string]any{"order": "desc"}}},
	}

	var resp searchResponse
	if err := c.post(ctx, fmt.Sprintf("/%s/_search", indexPattern), body, &resp); err != nil {
		return nil, err
	}

	result := &SearchResult{
		Alerts: make([]alert.Alert, 0, len(resp.Hits.Hits)),
		Total:  resp.Hits.Total.Value,
	}
	for _, hit := range resp.Hits.Hits {
		source := hit.Source
		if source == nil {
			source = map[string]any{}
		}
		source["id"] = hit.ID
		normalized, err := alert.Normalize(source)
		if err != nil {
			c.log.Warn("skipping malformed alert record",
				logger.String("id", hit.ID),
				logger.Error(err))
			continue
		}
		result.Alerts = append(result.Alerts, normalized)
	}
	return result, nil
}

// Stats returns the raw bucketed counts for the given period. A
// well-formed error payload from the index surfaces as ErrDataUnavailable;
// callers must not render partial series in that case.
func (c *Client) Stats(ctx context.Context, period Period) (*Stats, error) {
	from, interval := periodWindow(period)

	body := map[string]any{
		"size": 0,
		"query": map[string]any{
			"range": map[string]any{
				"@timestamp": map[string]any{"gte": from.Format(time.RFC3339)},
			},
		},
		"aggs": map[string]any{
			"rule_levels": map[string]any{
				"terms": map[string]any{"field": "rule.level", "size": ruleLevelsSize},
			},
			"top_rules": map[string]any{
				"terms": map[string]any{"field": "rule.description.keyword", "size": topRulesSize},
			},
			"alerts_over_time": map[string]any{
				"date_histogram": map[string]any{"field": "@timestamp", "calendar_interval": interval},
			},
		},
	}

	var resp searchResponse
	if err := c.post(ctx, fmt.Sprintf("/%s/_search", indexPattern), body, &resp); err != nil {
		return nil, err
	}

	return &Stats{
		AlertsOverTime: resp.Aggregations.AlertsOverTime.Buckets,
		RuleLevels:     resp.Aggregations.RuleLevels.Buckets,
		TopRules:       resp.Aggregations.TopRules.Buckets,
	}, nil
}

// Ping checks connectivity to the index.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", http.NoBody)
	if err != nil {
		return err
	}
	c.auth(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrDataUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.auth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errPayload errorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errPayload); decodeErr == nil && errPayload.Error != nil {
			msg := errPayload.Message
			if msg == "" {
				msg = fmt.Sprintf("%v", errPayload.Error)
			}
			return fmt.Errorf("%w: %s", ErrDataUnavailable, msg)
		}
		return fmt.Errorf("%w: status %d", ErrDataUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: malformed response: %w", ErrDataUnavailable, err)
	}
	return nil
}

func (c *Client) auth(req *http.Request) {
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
}

// buildQuery translates a FilterSpec into the index's bool query shape.
func buildQuery(spec query.FilterSpec) map[string]any {
	var must []any

	if spec.AlertID != "" {
		must = append(must, map[string]any{"ids": map[string]any{"values": []string{spec.AlertID}}})
	}
	if len(spec.AgentIDs) > 0 {
		must = append(must, map[string]any{"terms": map[string]any{"agent.id": spec.AgentIDs}})
	}
	if len(spec.RuleLevels) > 0 {
		must = append(must, map[string]any{"terms": map[string]any{"rule.level": spec.RuleLevels}})
	}
	if len(spec.RuleGroups) > 0 {
		must = append(must, map[string]any{"terms": map[string]any{"rule.groups": spec.RuleGroups}})
	}
	if spec.From != nil || spec.To != nil {
		bounds := map[string]any{}
		if spec.From != nil {
			bounds["gte"] = spec.From.Format(time.RFC3339)
		}
		if spec.To != nil {
			bounds["lte"] = spec.To.Format(time.RFC3339)
		}
		must = append(must, map[string]any{"range": map[string]any{"@timestamp": bounds}})
	}
	if spec.SearchTerm != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":  spec.SearchTerm,
				"fields": []string{"rule.description", "full_log", "agent.name"},
			},
		})
	}

	if len(must) == 0 {
		must = []any{map[string]any{"match_all": map[string]any{}}}
	}
	return map[string]any{"bool": map[string]any{"must": must}}
}

// periodWindow maps a stats period to its time range and histogram interval.
func periodWindow(period Period) (time.Time, string) {
	now := time.Now().UTC()
	switch period {
	case PeriodDaily:
		return now.AddDate(0, 0, -1), "hour"
	case PeriodWeekly:
		return now.AddDate(0, 0, -7), "day"
	default:
		return now.AddDate(0, -1, 0), "day"
	}
}
