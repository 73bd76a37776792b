package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"septic_reminder_service/internal/app"
	"septic_reminder_service/internal/domain/notification"
	"septic_reminder_service/internal/infra/memory"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	mu       sync.Mutex
	messages []notification.Message
}

func (s *memorySink) Deliver(_ context.Context, msg notification.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupServer(t *testing.T) (*httptest.Server, *memorySink) {
	t.Helper()
	l := logrus.New()
	l.SetOutput(io.Discard)
	logger := logrus.NewEntry(l)

	customers := memory.NewCustomerRepository()
	history := memory.NewHistoryRepository()
	settings := memory.NewSettingsRepository(nil)
	sink := &memorySink{}

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	h := NewHandler(
		app.NewCustomerService(customers, nil, logger),
		app.NewSettingsService(settings, logger),
		app.NewNotificationServiceImpl(customers, history, settings, sink, logger),
		validator.New(),
		logger,
		func() time.Time { return now },
	)

	srv := httptest.NewServer(NewRouter(h, logger))
	t.Cleanup(srv.Close)
	return srv, sink
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestCustomerLifecycle(t *testing.T) {
	srv, _ := setupServer(t)

	status, env := do(t, srv, http.MethodPost, "/api/customers", `{
		"customer_name": "John Doe",
		"address": "123 Main St",
		"phone": "555-1234",
		"email": "john@example.com",
		"last_service_date": "2024-03-15",
		"service_interval": 24
	}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "success", env.Status)

	var created struct {
		ID  int64   `json:"id"`
		Lat float64 `json:"lat"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, 39.7817, created.Lat)

	status, env = do(t, srv, http.MethodGet, "/api/customers/1/schedule", "")
	require.Equal(t, http.StatusOK, status)
	var cs struct {
		Schedule struct {
			Days    int    `json:"days_until_service"`
			Urgency string `json:"urgency"`
		} `json:"schedule"`
		Description string `json:"description"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cs))
	assert.Equal(t, 13, cs.Schedule.Days)
	assert.Equal(t, "urgent", cs.Schedule.Urgency)

	status, env = do(t, srv, http.MethodGet, "/api/customers?q=john", "")
	require.Equal(t, http.StatusOK, status)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "13 days until service", list[0]["status"])

	status, _ = do(t, srv, http.MethodPut, "/api/customers/1", `{"customer_name":"John D","address":"123 Main St","phone":"555"}`)
	assert.Equal(t, http.StatusOK, status)

	status, _ = do(t, srv, http.MethodDelete, "/api/customers/1", "")
	assert.Equal(t, http.StatusOK, status)

	status, env = do(t, srv, http.MethodGet, "/api/customers/1", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "error", env.Status)
}

func TestCreateCustomer_Validation(t *testing.T) {
	srv, _ := setupServer(t)

	status, env := do(t, srv, http.MethodPost, "/api/customers", `{"customer_name":"Ann"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Message, "validation error")

	status, _ = do(t, srv, http.MethodPost, "/api/customers", `{"customer_name":"Ann","address":"x","phone":"1","email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, srv, http.MethodPost, "/api/customers", `{not json`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, srv, http.MethodGet, "/api/customers/abc", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestImport(t *testing.T) {
	srv, _ := setupServer(t)
	csv := "customer_name,address,phone\nAnn,1 Elm,555\nBen,2 Oak,556\n"

	status, env := do(t, srv, http.MethodPost, "/api/customers/import?dry_run=true", csv)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Ready to import 2 customers", env.Message)

	status, env = do(t, srv, http.MethodPost, "/api/customers/import", csv)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Successfully imported 2 customers!", env.Message)

	status, env = do(t, srv, http.MethodPost, "/api/customers/import", "customer_name,phone\nAnn,555\n")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Missing required columns: address", env.Message)
}

func TestImportTemplate(t *testing.T) {
	srv, _ := setupServer(t)

	resp, err := http.Get(srv.URL + "/api/customers/import/template")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("customer_name,address")))
}

func TestSettingsAndRunPass(t *testing.T) {
	srv, sink := setupServer(t)

	status, env := do(t, srv, http.MethodPut, "/api/settings", `{
		"enabled": true,
		"reminder_days": [7, 90, 30, 30],
		"company_name": "ABC Septic Services",
		"business_notifications": {"enabled": false}
	}`)
	require.Equal(t, http.StatusOK, status)
	var saved notification.Settings
	require.NoError(t, json.Unmarshal(env.Data, &saved))
	assert.Equal(t, []int{90, 30, 7}, saved.ReminderDays)

	status, _ = do(t, srv, http.MethodPut, "/api/settings", `{"reminder_days":[0]}`)
	assert.Equal(t, http.StatusBadRequest, status)

	// 2024-04-01 + 24 months is 30 days after 2026-03-02.
	status, _ = do(t, srv, http.MethodPost, "/api/customers", `{"customer_name":"Ann","address":"1 Elm","phone":"1","email":"ann@example.com","last_service_date":"2024-04-01"}`)
	require.Equal(t, http.StatusCreated, status)

	status, env = do(t, srv, http.MethodPost, "/api/notifications/run", "")
	require.Equal(t, http.StatusOK, status)
	var result app.PassResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.Len(t, result.Sent, 1)
	assert.Equal(t, 30, result.Sent[0].ThresholdDay)
	assert.Len(t, sink.messages, 1)

	status, env = do(t, srv, http.MethodGet, "/api/notifications/history", "")
	require.Equal(t, http.StatusOK, status)
	var events []notification.Event
	require.NoError(t, json.Unmarshal(env.Data, &events))
	assert.Len(t, events, 1)

	status, env = do(t, srv, http.MethodGet, "/api/notifications/digest", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, env.Message, "0 overdue")
}

func TestSendReminder(t *testing.T) {
	srv, sink := setupServer(t)

	status, _ := do(t, srv, http.MethodPost, "/api/customers", `{"customer_name":"Ann","address":"1 Elm","phone":"1"}`)
	require.Equal(t, http.StatusCreated, status)

	status, env := do(t, srv, http.MethodPost, "/api/customers/1/remind", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, env.Message, "no email")
	assert.Empty(t, sink.messages)

	status, _ = do(t, srv, http.MethodPost, "/api/customers/9/remind", "")
	assert.Equal(t, http.StatusNotFound, status)
}
