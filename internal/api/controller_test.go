package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"

	"github.com/osalazarm/alertview/internal/alert"
	"github.com/osalazarm/alertview/internal/alertstore"
	"github.com/osalazarm/alertview/internal/conf"
	"github.com/osalazarm/alertview/internal/dashboard"
	"github.com/osalazarm/alertview/internal/datastore/entities"
	"github.com/osalazarm/alertview/internal/datastore/repository"
	"github.com/osalazarm/alertview/internal/logger"
	"github.com/osalazarm/alertview/internal/notify"
	"github.com/osalazarm/alertview/internal/query"
	"github.com/osalazarm/alertview/internal/review"
)

// fakeStore stands in for the alert index.
type fakeStore struct {
	alerts   []alert.Alert
	stats    *alertstore.Stats
	err      error
	lastSpec query.FilterSpec
}

func (f *fakeStore) Search(ctx context.Context, spec query.FilterSpec, page query.Pagination) (*alertstore.SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastSpec = spec
	return &alertstore.SearchResult{Alerts: f.alerts, Total: int64(len(f.alerts))}, nil
}

func (f *fakeStore) Stats(ctx context.Context, period alertstore.Period) (*alertstore.Stats, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.stats != nil {
		return f.stats, nil
	}
	return &alertstore.Stats{}, nil
}

func (f *fakeStore) Ping(ctx context.Context) error {
	return f.err
}

func setupController(t *testing.T, store *fakeStore) *Controller {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_foreign_keys=ON"), &gorm.Config{
		Logger:         gorm_logger.Default.LogMode(gorm_logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&entities.ManagedAlert{},
		&entities.AlertNote{},
		&entities.NotificationConfig{},
		&entities.NotificationEmail{},
		&entities.NotificationHistory{},
	))

	log := logger.NewNop()
	reviewSvc := review.NewService(repository.NewReviewRepository(db), nil, log)
	notifSvc := notify.NewService(repository.NewNotificationRepository(db), conf.NotificationDefaults{
		AlertThreshold: 10,
		Enabled:        true,
		SenderAddress:  "alerts@example.com",
	}, log)
	dash := dashboard.NewService(store, time.Minute, log)

	return New(store, dash, reviewSvc, notifSvc, nil, log)
}

func doRequest(t *testing.T, c *Controller, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	c.Echo.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

const rawAlertDoc = `{
	"id": "api.001",
	"timestamp": "2026-03-14T09:30:00Z",
	"agent": {"id": "001", "name": "web-01"},
	"rule": {"id": "5710", "level": 12, "description": "sshd: brute force attempt", "groups": ["sshd"]}
}`

func TestSearchAlerts(t *testing.T) {
	store := &fakeStore{alerts: []alert.Alert{{
		ID:        "s.001",
		Timestamp: time.Now().UTC(),
		Rule:      alert.Rule{Level: 10},
		Status:    alert.StatusUnmanaged,
	}}}
	c := setupController(t, store)

	t.Run("ok", func(t *testing.T) {
		rec := doRequest(t, c, http.MethodGet, "/api/v1/alerts?rule_levels=10,abc,12&page=2", "")
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.EqualValues(t, 1, body["total"])
		assert.EqualValues(t, 2, body["page"])
		assert.Equal(t, []int{10, 12}, store.lastSpec.RuleLevels, "bad tokens dropped, valid kept")
	})

	t.Run("inverted date range", func(t *testing.T) {
		rec := doRequest(t, c, http.MethodGet, "/api/v1/alerts?from=2026-03-14&to=2026-03-01", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "to", body["bound"])
	})

	t.Run("invalid state filter", func(t *testing.T) {
		rec := doRequest(t, c, http.MethodGet, "/api/v1/alerts?state=snoozed", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSearchAlerts_StoreFailures(t *testing.T) {
	t.Run("data unavailable", func(t *testing.T) {
		c := setupController(t, &fakeStore{err: alertstore.ErrDataUnavailable})
		rec := doRequest(t, c, http.MethodGet, "/api/v1/alerts", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("transport", func(t *testing.T) {
		c := setupController(t, &fakeStore{err: alertstore.ErrTransport})
		rec := doRequest(t, c, http.MethodGet, "/api/v1/alerts", "")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestGetAlertStats(t *testing.T) {
	store := &fakeStore{stats: &alertstore.Stats{
		RuleLevels: []alertstore.Bucket{{Key: float64(12), DocCount: 3}},
	}}
	c := setupController(t, store)

	t.Run("ok", func(t *testing.T) {
		rec := doRequest(t, c, http.MethodGet, "/api/v1/alerts/stats/daily", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Contains(t, body, "severity_distribution")
	})

	t.Run("bad period", func(t *testing.T) {
		rec := doRequest(t, c, http.MethodGet, "/api/v1/alerts/stats/hourly", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReviewLifecycleEndpoints(t *testing.T) {
	c := setupController(t, &fakeStore{})

	rec := doRequest(t, c, http.MethodPost, "/api/v1/review", rawAlertDoc)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody(t, rec)
	assert.Equal(t, "open", created["state"])

	t.Run("duplicate conflicts", func(t *testing.T) {
		rec := doRequest(t, c, http.MethodPost, "/api/v1/review", rawAlertDoc)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		rec := doRequest(t, c, http.MethodPost, "/api/v1/review", `{"timestamp":"2026-03-14T09:30:00Z"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("level out of range rejected", func(t *testing.T) {
		rec := doRequest(t, c, http.MethodPost, "/api/v1/review",
			`{"id":"bad.001","timestamp":"2026-03-14T09:30:00Z","rule":{"level":22}}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("get and list", func(t *testing.T) {
		rec := doRequest(t, c, http.MethodGet, "/api/v1/review/1", "")
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doRequest(t, c, http.MethodGet, "/api/v1/review?state=open", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.EqualValues(t, 1, body["total"])
	})

	t.Run("close then close again", func(t *testing.T) {
		rec := doRequest(t, c, http.MethodPost, "/api/v1/review/1/close", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "closed", body["state"])

		rec = doRequest(t, c, http.MethodPost, "/api/v1/review/1/close", "")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := doRequest(t, c, http.MethodDelete, "/api/v1/review/1", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = doRequest(t, c, http.MethodDelete, "/api/v1/review/1", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestNoteEndpoints(t *testing.T) {
	c := setupController(t, &fakeStore{})

	rec := doRequest(t, c, http.MethodPost, "/api/v1/review", rawAlertDoc)
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("empty content rejected", func(t *testing.T) {
		rec := doRequest(t, c, http.MethodPost, "/api/v1/review/1/notes",
			`{"content":"   ","author_id":"a1"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("add and list", func(t *testing.T) {
		rec := doRequest(t, c, http.MethodPost, "/api/v1/review/1/notes",
			`{"content":"checking source IPs","author_id":"a1","author_name":"Analyst"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = doRequest(t, c, http.MethodGet, "/api/v1/review/1/notes", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.EqualValues(t, 1, body["count"])
	})

	t.Run("update", func(t *testing.T) {
		rec := doRequest(t, c, http.MethodPut, "/api/v1/review/1/notes/1",
			`{"content":"false positive","author_id":"a2"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "false positive", body["content"])
	})

	t.Run("missing note", func(t *testing.T) {
		rec := doRequest(t, c, http.MethodPut, "/api/v1/review/1/notes/99",
			`{"content":"x","author_id":"a1"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := doRequest(t, c, http.MethodDelete, "/api/v1/review/1/notes/1", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("missing parent", func(t *testing.T) {
		rec := doRequest(t, c, http.MethodPost, "/api/v1/review/99/notes",
			`{"content":"orphan","author_id":"a1"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestNotificationEndpoints(t *testing.T) {
	c := setupController(t, &fakeStore{})

	t.Run("config seeded on first get", func(t *testing.T) {
		rec := doRequest(t, c, http.MethodGet, "/api/v1/notifications/config", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.EqualValues(t, 10, body["alert_threshold"])
	})

	t.Run("config create conflicts once seeded", func(t *testing.T) {
		rec := doRequest(t, c, http.MethodPost, "/api/v1/notifications/config",
			`{"alert_threshold":8,"enabled":true}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("config update", func(t *testing.T) {
		rec := doRequest(t, c, http.MethodPut, "/api/v1/notifications/config",
			`{"alert_threshold":12,"enabled":true,"sender_address":"soc@example.com"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.EqualValues(t, 12, body["alert_threshold"])
	})

	t.Run("config threshold out of range", func(t *testing.T) {
		rec := doRequest(t, c, http.MethodPut, "/api/v1/notifications/config",
			`{"alert_threshold":16}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("emails crud", func(t *testing.T) {
		rec := doRequest(t, c, http.MethodPost, "/api/v1/notifications/emails",
			`{"address":"soc@example.com","active":true}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = doRequest(t, c, http.MethodPost, "/api/v1/notifications/emails",
			`{"address":"soc@example.com"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)

		rec = doRequest(t, c, http.MethodPost, "/api/v1/notifications/emails",
			`{"address":"not-an-address"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = doRequest(t, c, http.MethodGet, "/api/v1/notifications/emails", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.EqualValues(t, 1, body["count"])

		rec = doRequest(t, c, http.MethodDelete, "/api/v1/notifications/emails/1", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("history", func(t *testing.T) {
		rec := doRequest(t, c, http.MethodGet, "/api/v1/notifications/history", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.EqualValues(t, 0, body["total"])
	})
}

func TestCreateNotificationConfig(t *testing.T) {
	c := setupController(t, &fakeStore{})

	rec := doRequest(t, c, http.MethodPost, "/api/v1/notifications/config",
		`{"alert_threshold":8,"enabled":true,"sender_address":"alerts@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 8, body["alert_threshold"])
	assert.Equal(t, "alerts@example.com", body["sender_username"])
}

func TestHealth(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		c := setupController(t, &fakeStore{})
		rec := doRequest(t, c, http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("store unreachable", func(t *testing.T) {
		c := setupController(t, &fakeStore{err: alertstore.ErrTransport})
		rec := doRequest(t, c, http.MethodGet, "/healthz", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestHandleError_LogsCause(t *testing.T) {
	store := &fakeStore{err: alertstore.ErrTransport}
	c := setupController(t, store)

	var buf bytes.Buffer
	c.log = logger.New(&buf, slog.LevelInfo)

	rec := doRequest(t, c, http.MethodGet, "/api/v1/alerts", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	logged := buf.String()
	assert.Contains(t, logged, "Failed to search alerts")
	assert.Contains(t, logged, alertstore.ErrTransport.Error())
	assert.Contains(t, logged, "request_id")
}
