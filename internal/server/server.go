package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/announce"
	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/api"
	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/config"
	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/controller"
	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/dnscapture"
	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/logging"
	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/portal"
	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/radio"
	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/store"
)

// Server wires the controller, the HTTP surface, the capture resolver and
// the mDNS announcer together, and arms or disarms the portal machinery on
// role transitions.
type Server struct {
	cfg       *config.Config
	ctrl      *controller.Controller
	radio     radio.Radio
	capture   *dnscapture.Resolver
	announcer *announce.Announcer
	httpSrv   *http.Server

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a fully wired server. The controller's restart hook and clock
// can be overridden through ctrlOpts (tests do; production passes none).
func New(cfg *config.Config, st *store.Store, rad radio.Radio, ctrlOpts ...controller.Option) (*Server, error) {
	if err := logging.Initialize(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	apIP := net.ParseIP(cfg.APAddress)
	if apIP == nil {
		return nil, fmt.Errorf("invalid ap_address %q", cfg.APAddress)
	}
	capture, err := dnscapture.New(cfg.DNSAddr, apIP)
	if err != nil {
		return nil, err
	}

	apiPort, err := portFromAddr(cfg.HTTPAddr)
	if err != nil {
		return nil, err
	}

	ctrl := controller.New(st, rad, ctrlOpts...)

	router := chi.NewRouter()
	router.Use(noCache)
	api.New(ctrl, cfg.AllowRawScan).Register(router)

	portalHandler, err := portal.New(ctrl)
	if err != nil {
		return nil, err
	}
	portalHandler.Register(router)

	return &Server{
		cfg:       cfg,
		ctrl:      ctrl,
		radio:     rad,
		capture:   capture,
		announcer: announce.New(cfg.DeviceName, apiPort),
		httpSrv:   &http.Server{Addr: cfg.HTTPAddr, Handler: router},
	}, nil
}

// Controller exposes the controller handle, mainly for tests.
func (s *Server) Controller() *controller.Controller {
	return s.ctrl
}

// Start boots the controller and blocks serving until shutdown.
func (s *Server) Start() error {
	logging.Info("Starting provisioning daemon",
		zap.String("http_addr", s.cfg.HTTPAddr),
		zap.String("ap_ssid", s.cfg.APSSID),
		zap.String("ap_address", s.cfg.APAddress),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	// Subscribe before boot so the initial transition arms the portal.
	changes, unsubscribe := s.ctrl.Subscribe()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer unsubscribe()
		s.armLoop(ctx, changes)
	}()

	// Boot performs the bounded-wait connect inline; the HTTP listener
	// comes up after the verdict, mirroring a device's power-on sequence.
	s.ctrl.Boot()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.ctrl.Run(ctx)
	}()

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.httpSrv.ListenAndServe()
	}()

	logging.Info("Listening for requests", zap.String("addr", s.cfg.HTTPAddr))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping daemon...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Shutdown stops everything gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down...")

	if err := s.httpSrv.Shutdown(ctx); err != nil {
		logging.Error("HTTP shutdown error", zap.Error(err))
	}

	if s.cancel != nil {
		s.cancel()
	}

	s.capture.Stop()
	s.announcer.Stop()
	if err := s.radio.StopAccessPoint(); err != nil {
		logging.Warn("Access point teardown error", zap.Error(err))
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		logging.Info("All workers stopped")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing exit")
	}

	logging.Sync()
	return nil
}

// armLoop applies role transitions to the portal machinery. The access
// point and capture resolver stay up through Connecting and Reconnecting:
// a submit-and-retry cycle must not strand the user's client mid-attempt.
func (s *Server) armLoop(ctx context.Context, changes <-chan controller.RoleChange) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			s.applyRole(change.Role)
		}
	}
}

func (s *Server) applyRole(role controller.Role) {
	switch role {
	case controller.RolePortalActive:
		s.announcer.Stop()
		if err := s.radio.StartAccessPoint(s.cfg.APSSID, s.cfg.APAddress); err != nil {
			logging.Error("Failed to start access point", zap.Error(err))
		}
		s.capture.Start()

	case controller.RoleConnected:
		s.capture.Stop()
		if err := s.radio.StopAccessPoint(); err != nil {
			logging.Warn("Failed to stop access point", zap.Error(err))
		}
		if err := s.announcer.Start(); err != nil {
			logging.Warn("Failed to announce over mDNS", zap.Error(err))
		}
	}
}

// noCache disables response caching on every served page. Page content
// depends on live state, so a cached copy is always wrong.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

func portFromAddr(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("invalid http_addr %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid port in http_addr %q: %w", addr, err)
	}
	return port, nil
}
