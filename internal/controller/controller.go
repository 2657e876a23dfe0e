package controller

import (
	"context"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/logging"
	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/radio"
	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/store"
)

const (
	// ConnectTimeout bounds a boot-time or submission-time join attempt.
	// The caller is waiting synchronously for a verdict, so the wait is
	// bounded and polled, never open-ended.
	ConnectTimeout = 15 * time.Second

	// ReconnectInterval rate-limits background rejoins after link loss.
	ReconnectInterval = 15 * time.Second

	// PollInterval is how often the link status is checked, both inside a
	// bounded wait and between serving-loop iterations.
	PollInterval = 250 * time.Millisecond

	// SettleDelay is the pause after tearing down a failed join, before the
	// radio is asked to serve as an access point again.
	SettleDelay = 500 * time.Millisecond

	// RestartDelay is how long a reset waits after the HTTP response so the
	// response is flushed before the process goes away.
	RestartDelay = 250 * time.Millisecond
)

// Timings groups the controller's clock constants so tests can compress them.
type Timings struct {
	ConnectTimeout    time.Duration
	ReconnectInterval time.Duration
	PollInterval      time.Duration
	SettleDelay       time.Duration
}

// DefaultTimings returns the production timing constants.
func DefaultTimings() Timings {
	return Timings{
		ConnectTimeout:    ConnectTimeout,
		ReconnectInterval: ReconnectInterval,
		PollInterval:      PollInterval,
		SettleDelay:       SettleDelay,
	}
}

// RoleChange is delivered to subscribers on every role transition.
type RoleChange struct {
	From Role
	Role Role
	At   time.Time
}

// Snapshot is a read-only view of the controller's state.
type Snapshot struct {
	Role          Role
	Connected     bool
	Identity      string // network identity of the joined link
	Address       string // address on the joined link
	SavedIdentity string // stored identity when not connected, if any
}

// SubmitResult is the verdict of a credential submission.
type SubmitResult struct {
	Connected bool
	Identity  string
	Address   string
	Reason    string // set when Connected is false
}

// Controller owns the device's connectivity role. It is the single writer
// of the role: every transition runs under one mutex, preserving the
// source's single-loop ordering guarantee. All other components hold a
// *Controller only to issue events and read snapshots.
type Controller struct {
	store  *store.Store
	radio  radio.Radio
	clock  Clock
	timing Timings

	restart func()

	// mu serializes transitions (Boot, Submit, Tick). Held for the whole of
	// a bounded-wait attempt.
	mu sync.Mutex

	// stateMu guards the snapshot fields so Status() never blocks behind a
	// bounded wait.
	stateMu      sync.RWMutex
	role         Role
	connIdentity string

	// attempting rejects a second Submit while a bounded wait is in flight,
	// without the caller blocking on mu.
	attempting atomic.Bool

	lastReconnect time.Time

	subsMu  sync.Mutex
	subs    map[int]chan RoleChange
	nextSub int
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock substitutes the wall clock, for tests.
func WithClock(clk Clock) Option {
	return func(c *Controller) { c.clock = clk }
}

// WithTimings substitutes the timing constants, for tests.
func WithTimings(t Timings) Option {
	return func(c *Controller) { c.timing = t }
}

// WithRestart substitutes the process-restart hook invoked after a reset.
func WithRestart(fn func()) Option {
	return func(c *Controller) { c.restart = fn }
}

// New creates a controller over the given store and radio. The role starts
// as unprovisioned until Boot runs.
func New(st *store.Store, rad radio.Radio, opts ...Option) *Controller {
	c := &Controller{
		store:  st,
		radio:  rad,
		clock:  SystemClock(),
		timing: DefaultTimings(),
		role:   RoleUnprovisioned,
		subs:   make(map[int]chan RoleChange),
	}
	c.restart = func() {
		logging.Info("Restarting process")
		logging.Sync()
		os.Exit(0)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Role returns the current role.
func (c *Controller) Role() Role {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.role
}

// Status returns a point-in-time view of connectivity state, combining the
// role with live radio status and the stored identity.
func (c *Controller) Status() Snapshot {
	c.stateMu.RLock()
	role := c.role
	identity := c.connIdentity
	c.stateMu.RUnlock()

	snap := Snapshot{Role: role}
	if role == RoleConnected && c.radio.LinkUp() {
		snap.Connected = true
		snap.Identity = identity
		snap.Address = c.radio.Address()
		return snap
	}
	if rec, ok := c.store.Load(); ok {
		snap.SavedIdentity = rec.Identity
	}
	return snap
}

// Boot reconstructs the role from the credential store and the radio. With
// no stored record the device goes straight to the portal; with one it gets
// a single bounded-wait join attempt.
func (c *Controller) Boot() {
	rec, ok := c.store.Load()
	if !ok {
		logging.Info("No stored credentials, entering portal")
		c.setRole(RolePortalActive)
		return
	}

	c.attempting.Store(true)
	defer c.attempting.Store(false)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.connectBounded(rec.Identity, rec.Secret)
}

// Submit persists new credentials and performs a bounded-wait join with the
// same semantics as boot. A join that fails is not an error: the verdict is
// carried in the result and the device falls back to the portal. Submissions
// arriving while an attempt is outstanding are rejected with
// ErrAttemptInProgress.
func (c *Controller) Submit(identity, secret string) (SubmitResult, error) {
	identity = strings.TrimSpace(identity)
	secret = strings.TrimSpace(secret)

	if identity == "" {
		return SubmitResult{}, NewValidationError("missing identity")
	}
	if len(identity) > store.MaxFieldLen {
		return SubmitResult{}, NewValidationError("identity too long")
	}
	if len(secret) > store.MaxFieldLen {
		return SubmitResult{}, NewValidationError("secret too long")
	}

	if !c.attempting.CompareAndSwap(false, true) {
		return SubmitResult{}, ErrAttemptInProgress
	}
	defer c.attempting.Store(false)

	if err := c.store.Save(identity, secret); err != nil {
		// Fatal only for this save: the device keeps operating on whatever
		// credentials were last successfully loaded.
		logging.Error("Credential save failed", zap.Error(err))
		return SubmitResult{Identity: identity, Reason: "failed to persist credentials"}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connectBounded(identity, secret) {
		return SubmitResult{
			Connected: true,
			Identity:  identity,
			Address:   c.radio.Address(),
		}, nil
	}
	return SubmitResult{
		Identity: identity,
		Reason:   "could not join the network within the connection timeout",
	}, nil
}

// Reset clears the credential store. The caller is expected to flush its
// response and then ScheduleRestart; boot logic re-runs discovery after the
// restart.
func (c *Controller) Reset() error {
	return c.store.Clear()
}

// ScheduleRestart invokes the restart hook after the given delay, giving the
// in-flight HTTP response time to flush.
func (c *Controller) ScheduleRestart(delay time.Duration) {
	logging.Info("Restart scheduled", zap.Duration("delay", delay))
	time.AfterFunc(delay, c.restart)
}

// Tick runs one iteration of the serving loop: a non-blocking link poll plus
// any due background rejoin. It never busy-waits.
func (c *Controller) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.Role() {
	case RoleConnected:
		if !c.radio.LinkUp() {
			logging.Warn("Link lost, entering background reconnection")
			c.setRole(RoleReconnecting)
		}

	case RoleReconnecting, RoleConnecting:
		// Connecting here is only ever a background rejoin in flight; the
		// bounded-wait path holds mu for its whole attempt.
		if c.radio.LinkUp() {
			logging.Info("Background rejoin succeeded",
				zap.String("address", c.radio.Address()))
			c.setRole(RoleConnected)
			return
		}
		rec, ok := c.store.Load()
		if !ok {
			// Credentials were erased out from under us.
			c.setRole(RolePortalActive)
			return
		}
		now := c.clock.Now()
		if now.Sub(c.lastReconnect) >= c.timing.ReconnectInterval {
			c.lastReconnect = now
			logging.LogJoinAttempt(rec.Identity, true)
			if err := c.radio.Join(rec.Identity, rec.Secret); err != nil {
				logging.Warn("Background join request failed", zap.Error(err))
				return
			}
			c.setRole(RoleConnecting)
		}
	}
}

// Run drives Tick at the poll interval until the context is cancelled.
func (c *Controller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		c.Tick()
		c.clock.Sleep(c.timing.PollInterval)
	}
}

// Subscribe registers for role-change notifications. The returned cancel
// function must be called to release the subscription. Slow subscribers are
// skipped, never waited on.
func (c *Controller) Subscribe() (<-chan RoleChange, func()) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan RoleChange, 8)
	c.subs[id] = ch

	cancel := func() {
		c.subsMu.Lock()
		defer c.subsMu.Unlock()
		if _, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// connectBounded performs one bounded-wait join attempt: issue the join,
// poll the link until the timeout, and either settle into Connected or tear
// down and re-enter the portal. Caller holds mu.
func (c *Controller) connectBounded(identity, secret string) bool {
	c.setRole(RoleConnecting)
	logging.LogJoinAttempt(identity, false)

	if err := c.radio.Join(identity, secret); err != nil {
		logging.Warn("Join request failed", zap.Error(err))
		return c.failToPortal()
	}

	deadline := c.clock.Now().Add(c.timing.ConnectTimeout)
	if awaitLink(c.clock, deadline, c.timing.PollInterval, c.radio.LinkUp) {
		c.stateMu.Lock()
		c.connIdentity = identity
		c.stateMu.Unlock()
		logging.Info("Connected",
			zap.String("identity", identity),
			zap.String("address", c.radio.Address()),
		)
		c.setRole(RoleConnected)
		return true
	}

	logging.Warn("Join did not succeed within timeout",
		zap.String("identity", identity),
		zap.Duration("timeout", c.timing.ConnectTimeout),
	)
	return c.failToPortal()
}

// failToPortal tears down any partial client-mode state and re-enters the
// portal role. The settle delay keeps the radio out of an inconsistent mode
// between the disconnect and the access point coming back.
func (c *Controller) failToPortal() bool {
	if err := c.radio.Disconnect(); err != nil {
		logging.Warn("Disconnect after failed join errored", zap.Error(err))
	}
	c.clock.Sleep(c.timing.SettleDelay)
	c.setRole(RolePortalActive)
	return false
}

func (c *Controller) setRole(to Role) {
	c.stateMu.Lock()
	from := c.role
	if from == to {
		c.stateMu.Unlock()
		return
	}
	c.role = to
	c.stateMu.Unlock()

	logging.LogRoleTransition(from.String(), to.String())
	c.notify(RoleChange{From: from, Role: to, At: c.clock.Now()})
}

func (c *Controller) notify(change RoleChange) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for _, ch := range c.subs {
		select {
		case ch <- change:
		default:
			logging.Warn("Dropping role change for slow subscriber")
		}
	}
}
