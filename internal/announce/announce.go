package announce

import (
	"fmt"
	"sync"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/logging"
	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/version"
)

const (
	// ServiceType is the mDNS service type the device advertises once it
	// has joined a network.
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."
)

// Announcer advertises the device's management API over mDNS while the
// device is connected, so configuration tools can find it without knowing
// the address the network handed out.
type Announcer struct {
	instance string
	port     int

	mu     sync.Mutex
	server *zeroconf.Server
}

// New creates an announcer for the given instance name and API port.
func New(instance string, port int) *Announcer {
	return &Announcer{instance: instance, port: port}
}

// Start registers the service. Idempotent while running.
func (a *Announcer) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.server != nil {
		return nil
	}

	txt := []string{"path=/", fmt.Sprintf("srcvers=%s", version.Version)}
	server, err := zeroconf.Register(a.instance, ServiceType, ServiceDomain, a.port, txt, nil)
	if err != nil {
		return fmt.Errorf("failed to register mDNS service: %w", err)
	}
	a.server = server

	logging.Info("mDNS announcement started",
		zap.String("instance", a.instance),
		zap.String("service", ServiceType),
		zap.Int("port", a.port),
	)
	return nil
}

// Stop withdraws the announcement. Safe to call when not running.
func (a *Announcer) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.server == nil {
		return
	}
	a.server.Shutdown()
	a.server = nil
	logging.Info("mDNS announcement stopped")
}

// Running reports whether the service is currently advertised.
func (a *Announcer) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.server != nil
}
