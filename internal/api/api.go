package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/controller"
	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/logging"
)

// Handler serves the status and management API. It is mounted once and left
// mounted across role transitions; every endpoint works in every role.
type Handler struct {
	ctrl         *controller.Controller
	allowRawScan bool
}

// New creates the API handler. allowRawScan enables the raw-body credential
// scan fallback on POST /api/wifi.
func New(ctrl *controller.Controller, allowRawScan bool) *Handler {
	return &Handler{ctrl: ctrl, allowRawScan: allowRawScan}
}

// Register mounts the API routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/status", h.handleStatus)
	r.Post("/api/wifi", h.handleWifi)
	r.Post("/api/reset", h.handleReset)
	r.Get("/api/events", h.handleEvents)
}

type statusResponse struct {
	Connected     bool   `json:"connected"`
	Identity      string `json:"identity,omitempty"`
	Address       string `json:"address,omitempty"`
	Role          string `json:"role,omitempty"`
	SavedIdentity string `json:"savedIdentity,omitempty"`
}

type resultResponse struct {
	Status   string `json:"status"`
	Identity string `json:"identity,omitempty"`
	Address  string `json:"address,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// handleStatus reports connectivity state. It never fails.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := h.ctrl.Status()

	resp := statusResponse{Connected: snap.Connected}
	if snap.Connected {
		resp.Identity = snap.Identity
		resp.Address = snap.Address
	} else {
		if snap.Role.AccessPointMode() {
			resp.Role = "AP"
		} else {
			resp.Role = "STA"
		}
		resp.SavedIdentity = snap.SavedIdentity
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleWifi accepts a credential submission and reports the join verdict.
// The operation itself succeeding is a 200 even when the join failed; only
// bad input (400) and a concurrent attempt (409) are HTTP errors.
func (h *Handler) handleWifi(w http.ResponseWriter, r *http.Request) {
	creds, err := parseCredentials(r, h.allowRawScan)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, resultResponse{Status: "error", Reason: err.Error()})
		return
	}

	res, err := h.ctrl.Submit(creds.Identity, creds.Secret)
	if err != nil {
		var vErr *controller.ValidationError
		switch {
		case errors.Is(err, controller.ErrAttemptInProgress):
			writeJSON(w, http.StatusConflict, resultResponse{Status: "error", Reason: err.Error()})
		case errors.As(err, &vErr):
			writeJSON(w, http.StatusBadRequest, resultResponse{Status: "error", Reason: vErr.Reason})
		default:
			// Persistence failure: the submission was valid, the device just
			// could not keep it. Recoverable by retry.
			logging.Error("Submission failed to persist", zap.Error(err))
			writeJSON(w, http.StatusOK, resultResponse{Status: "failed", Reason: res.Reason})
		}
		return
	}

	if res.Connected {
		writeJSON(w, http.StatusOK, resultResponse{
			Status:   "connected",
			Identity: res.Identity,
			Address:  res.Address,
		})
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{Status: "failed", Reason: res.Reason})
}

// handleReset erases the credential slot, acknowledges, and restarts the
// process once the response has gone out.
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.Reset(); err != nil {
		logging.Error("Credential erase failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError,
			resultResponse{Status: "error", Reason: "failed to erase credentials"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	h.ctrl.ScheduleRestart(controller.RestartDelay)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Debug("Failed to encode JSON response", zap.Error(err))
	}
}
