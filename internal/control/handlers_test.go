package control

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"imap-telegram-forwarder/internal/models"

	simplejson "github.com/bitly/go-simplejson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorker struct {
	configured *models.ForwarderConfig
	running    bool
	starts     int
	stops      int
}

func (f *fakeWorker) Configure(cfg models.ForwarderConfig) models.ControlResult {
	if cfg.ImapHost == "" {
		return models.ControlResult{Status: models.StatusError, Message: "imap_host is required"}
	}
	f.configured = &cfg
	f.running = true
	return models.ControlResult{Status: models.StatusOK, Message: "Configured and worker started."}
}

func (f *fakeWorker) Start() models.ControlResult {
	f.starts++
	if f.configured == nil {
		return models.ControlResult{Status: models.StatusError, Message: "Not configured yet. POST /configure first."}
	}
	if f.running {
		return models.ControlResult{Status: models.StatusOK, Message: "Worker already running."}
	}
	f.running = true
	return models.ControlResult{Status: models.StatusOK, Message: "Worker started."}
}

func (f *fakeWorker) Stop() models.ControlResult {
	f.stops++
	f.running = false
	return models.ControlResult{Status: models.StatusOK, Message: "Worker stop requested."}
}

func (f *fakeWorker) Status() models.WorkerStatus {
	return models.WorkerStatus{Configured: f.configured != nil, WorkerRunning: f.running}
}

func doRequest(t *testing.T, router http.Handler, method, path, body string, expectedCode int) *simplejson.Json {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, expectedCode, rr.Code, "%s %s: %s", method, path, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	json, err := simplejson.NewJson(rr.Body.Bytes())
	require.NoError(t, err)
	return json
}

func TestConfigure(t *testing.T) {
	worker := &fakeWorker{}
	router := New(worker).Router()

	body := `{
	  "imap_host": "imap-mail.outlook.com",
	  "imap_port": 993,
	  "email_user": "you@outlook.com",
	  "email_pass": "app-password",
	  "telegram_bot_token": "123456:ABC-DEF",
	  "telegram_chat_id": "123456789",
	  "poll_interval": 30
	}`
	json := doRequest(t, router, http.MethodPost, "/configure", body, http.StatusOK)

	assert.Equal(t, "ok", json.Get("status").MustString())
	require.NotNil(t, worker.configured)
	assert.Equal(t, "imap-mail.outlook.com", worker.configured.ImapHost)
	assert.Equal(t, "123456789", worker.configured.TelegramChatID)
	assert.Equal(t, 30, worker.configured.PollInterval)
}

func TestConfigure_BadJSON(t *testing.T) {
	router := New(&fakeWorker{}).Router()

	json := doRequest(t, router, http.MethodPost, "/configure", `{"imap_host":`, http.StatusBadRequest)
	assert.Equal(t, "error", json.Get("status").MustString())

	json = doRequest(t, router, http.MethodPost, "/configure", `["imap_host"]`, http.StatusBadRequest)
	assert.Equal(t, "error", json.Get("status").MustString())
}

func TestConfigure_IgnoresUnknownFields(t *testing.T) {
	worker := &fakeWorker{}
	router := New(worker).Router()

	json := doRequest(t, router, http.MethodPost, "/configure", `{"imap_host":"h","theme":"dark","config_file":"x.yaml"}`, http.StatusOK)

	assert.Equal(t, "ok", json.Get("status").MustString())
	require.NotNil(t, worker.configured)
	assert.Equal(t, "h", worker.configured.ImapHost)
}

func TestConfigure_Rejected(t *testing.T) {
	router := New(&fakeWorker{}).Router()

	json := doRequest(t, router, http.MethodPost, "/configure", `{"email_user":"x"}`, http.StatusBadRequest)
	assert.Equal(t, "imap_host is required", json.Get("message").MustString())
}

func TestStartStopStatus(t *testing.T) {
	worker := &fakeWorker{}
	router := New(worker).Router()

	json := doRequest(t, router, http.MethodPost, "/start", "", http.StatusOK)
	assert.Equal(t, "error", json.Get("status").MustString())
	assert.Equal(t, "Not configured yet. POST /configure first.", json.Get("message").MustString())

	json = doRequest(t, router, http.MethodGet, "/status", "", http.StatusOK)
	assert.False(t, json.Get("configured").MustBool())
	assert.False(t, json.Get("worker_running").MustBool())

	doRequest(t, router, http.MethodPost, "/configure", `{"imap_host":"h"}`, http.StatusOK)

	json = doRequest(t, router, http.MethodPost, "/start", "", http.StatusOK)
	assert.Equal(t, "Worker already running.", json.Get("message").MustString())

	json = doRequest(t, router, http.MethodPost, "/stop", "", http.StatusOK)
	assert.Equal(t, "ok", json.Get("status").MustString())

	json = doRequest(t, router, http.MethodGet, "/status", "", http.StatusOK)
	assert.True(t, json.Get("configured").MustBool())
	assert.False(t, json.Get("worker_running").MustBool())
}

func TestHealthz(t *testing.T) {
	json := doRequest(t, New(&fakeWorker{}).Router(), http.MethodGet, "/healthz", "", http.StatusOK)
	assert.Equal(t, "ok", json.Get("status").MustString())
}

func TestMethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/stop", nil)
	rr := httptest.NewRecorder()
	New(&fakeWorker{}).Router().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
