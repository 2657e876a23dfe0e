package dnscapture

import (
	"fmt"
	"net"
	"sync"

	"github.com/miekg/dns"
	"go.uber.org/zap"

	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/logging"
)

// answerTTL is deliberately short so clients re-resolve promptly once the
// device leaves portal mode and real DNS comes back.
const answerTTL = 60

// Resolver is a fixed-answer DNS server: every query, for every name and
// every type, is answered with a single A record pointing at the portal
// address. Clients that try to reach anything while associated to the
// provisioning access point land on the configuration page, without relying
// on client-side captive-portal detection protocols.
type Resolver struct {
	listenAddr string
	answer     net.IP

	mu     sync.Mutex
	server *dns.Server
}

// New creates a resolver that answers every query with the given address.
func New(listenAddr string, answer net.IP) (*Resolver, error) {
	v4 := answer.To4()
	if v4 == nil {
		return nil, fmt.Errorf("capture answer must be an IPv4 address, got %v", answer)
	}
	return &Resolver{listenAddr: listenAddr, answer: v4}, nil
}

// HandleQuery builds the fixed reply for a request. Exposed on the type so
// the wire loop and tests share one code path.
func (r *Resolver) HandleQuery(w dns.ResponseWriter, req *dns.Msg) {
	m := new(dns.Msg)
	m.SetReply(req)
	m.Authoritative = true

	for _, q := range req.Question {
		logging.LogDNSQuery(q.Name, r.answer.String())
		m.Answer = append(m.Answer, &dns.A{
			Hdr: dns.RR_Header{
				Name:   q.Name,
				Rrtype: dns.TypeA,
				Class:  dns.ClassINET,
				Ttl:    answerTTL,
			},
			A: r.answer,
		})
	}

	if err := w.WriteMsg(m); err != nil {
		logging.Debug("Failed to write DNS reply", zap.Error(err))
	}
}

// Start brings the resolver up on UDP. Idempotent while running.
func (r *Resolver) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.server != nil {
		return
	}

	// A fresh dns.Server per Start: the portal can be armed and disarmed
	// repeatedly across submit-and-retry cycles.
	srv := &dns.Server{
		Addr:    r.listenAddr,
		Net:     "udp",
		Handler: dns.HandlerFunc(r.HandleQuery),
	}
	r.server = srv

	go func() {
		logging.Info("Capture resolver listening",
			zap.String("addr", r.listenAddr),
			zap.String("answer", r.answer.String()),
		)
		if err := srv.ListenAndServe(); err != nil {
			logging.Warn("Capture resolver stopped", zap.Error(err))
		}
	}()
}

// Stop shuts the resolver down. Safe to call when not running.
func (r *Resolver) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.server == nil {
		return
	}
	if err := r.server.Shutdown(); err != nil {
		logging.Debug("Capture resolver shutdown error", zap.Error(err))
	}
	r.server = nil
	logging.Info("Capture resolver stopped")
}

// Running reports whether the resolver is serving.
func (r *Resolver) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.server != nil
}
