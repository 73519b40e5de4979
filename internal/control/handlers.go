// Package control exposes the worker lifecycle over HTTP.
package control

import (
	"encoding/json"
	"net/http"

	"imap-telegram-forwarder/internal/logging"
	"imap-telegram-forwarder/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 64 << 10

// Worker is the lifecycle the handlers drive
type Worker interface {
	Configure(cfg models.ForwarderConfig) models.ControlResult
	Start() models.ControlResult
	Stop() models.ControlResult
	Status() models.WorkerStatus
}

// Handlers holds the HTTP handlers and the worker they control
type Handlers struct {
	worker Worker
}

// New creates a new Handlers instance
func New(worker Worker) *Handlers {
	return &Handlers{worker: worker}
}

// Router returns the chi router with every control route mounted
func (h *Handlers) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/configure", h.Configure)
	r.Post("/start", h.Start)
	r.Post("/stop", h.Stop)
	r.Get("/status", h.Status)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.ControlResult{Status: models.StatusOK, Message: "alive"})
	})

	return r
}

// Configure decodes a forwarder configuration and (re)starts the worker with it
func (h *Handlers) Configure(w http.ResponseWriter, r *http.Request) {
	var cfg models.ForwarderConfig
	// unknown keys are ignored
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ControlResult{Status: models.StatusError, Message: "invalid JSON body: " + err.Error()})
		return
	}

	res := h.worker.Configure(cfg)
	if res.Status != models.StatusOK {
		writeJSON(w, http.StatusBadRequest, res)
		return
	}
	logging.Log.WithField("request_id", middleware.GetReqID(r.Context())).Infof("Worker configured for %s on %s", cfg.EmailUser, cfg.ImapHost)
	writeJSON(w, http.StatusOK, res)
}

// Start starts the worker with the current configuration. An unconfigured worker is reported in the body, not the status code.
func (h *Handlers) Start(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.worker.Start())
}

// Stop stops the worker; always answers ok
func (h *Handlers) Stop(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.worker.Stop())
}

// Status reports configuration and worker state
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.worker.Status())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Log.Errorf("Error encoding response: %v", err)
	}
}
