package portal

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/controller"
	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/logging"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler serves the provisioning portal pages. The routes stay mounted in
// every role - a connected device can still be reconfigured through them -
// but the access point and capture resolver that make them a captive portal
// are armed only while the role is PortalActive.
type Handler struct {
	ctrl *controller.Controller
	tmpl *template.Template
}

// New creates the portal handler.
func New(ctrl *controller.Controller) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse portal templates: %w", err)
	}
	return &Handler{ctrl: ctrl, tmpl: tmpl}, nil
}

// Register mounts the portal routes, including the catch-all: any request
// to an unrecognized path is answered with the configuration page itself,
// reinforcing capture.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Post("/wifi", h.handleSubmit)
	r.Get("/reset", h.handleReset)
	r.NotFound(h.handleIndex)
}

type indexData struct {
	SavedIdentity string
	Mode          string
}

type resultData struct {
	Connected bool
	Identity  string
	Address   string
	Reason    string
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path)

	snap := h.ctrl.Status()
	data := indexData{SavedIdentity: snap.SavedIdentity}
	if snap.Connected {
		data.SavedIdentity = snap.Identity
	}
	if snap.Role.AccessPointMode() {
		data.Mode = "setup access point"
	} else {
		data.Mode = "joined to network"
	}

	h.render(w, "portal.html", data)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Malformed form body", http.StatusBadRequest)
		return
	}

	identity := strings.TrimSpace(r.FormValue("identity"))
	secret := r.FormValue("secret")
	if identity == "" {
		http.Error(w, "Missing identity", http.StatusBadRequest)
		return
	}

	res, err := h.ctrl.Submit(identity, secret)
	if err != nil {
		var vErr *controller.ValidationError
		switch {
		case errors.Is(err, controller.ErrAttemptInProgress):
			http.Error(w, "A connection attempt is already in progress", http.StatusConflict)
			return
		case errors.As(err, &vErr):
			http.Error(w, vErr.Reason, http.StatusBadRequest)
			return
		default:
			// Persistence failed; render the failure page with the reason.
			logging.Error("Portal submission failed to persist", zap.Error(err))
			h.render(w, "result.html", resultData{
				Identity: identity,
				Reason:   "The device could not save the credentials. Try again.",
			})
			return
		}
	}

	h.render(w, "result.html", resultData{
		Connected: res.Connected,
		Identity:  res.Identity,
		Address:   res.Address,
		Reason:    res.Reason,
	})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path)

	if err := h.ctrl.Reset(); err != nil {
		logging.Error("Portal reset failed", zap.Error(err))
		http.Error(w, "Failed to erase credentials", http.StatusInternalServerError)
		return
	}

	h.render(w, "reset.html", nil)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	h.ctrl.ScheduleRestart(controller.RestartDelay)
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		logging.Error("Template render failed", zap.String("template", name), zap.Error(err))
	}
}
