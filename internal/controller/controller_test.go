package controller

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/radio"
	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/store"
)

// fakeClock advances only when something sleeps, so bounded waits and rate
// limits run instantly and deterministically.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *fakeClock) Advance(d time.Duration) {
	c.Sleep(d)
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "wifi-credentials.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func newTestController(t *testing.T, rad radio.Radio, st *store.Store) (*Controller, *fakeClock) {
	t.Helper()
	clk := newFakeClock()
	c := New(st, rad,
		WithClock(clk),
		WithRestart(func() {}),
	)
	return c, clk
}

func TestBootWithoutCredentialsEntersPortal(t *testing.T) {
	st := newTestStore(t)
	rad := radio.NewSimRadio("home", "pw123", "192.168.1.42")
	c, _ := newTestController(t, rad, st)

	c.Boot()

	if c.Role() != RolePortalActive {
		t.Errorf("Role() = %v, want %v", c.Role(), RolePortalActive)
	}
}

func TestBootWithCredentialsConnects(t *testing.T) {
	st := newTestStore(t)
	if err := st.Save("home", "pw123"); err != nil {
		t.Fatal(err)
	}
	rad := radio.NewSimRadio("home", "pw123", "192.168.1.42")
	rad.PollsUntilUp = 5
	c, clk := newTestController(t, rad, st)

	start := clk.Now()
	c.Boot()

	if c.Role() != RoleConnected {
		t.Fatalf("Role() = %v, want %v", c.Role(), RoleConnected)
	}
	if elapsed := clk.Now().Sub(start); elapsed >= ConnectTimeout {
		t.Errorf("connect took %v of simulated time, should finish well before the %v timeout", elapsed, ConnectTimeout)
	}

	snap := c.Status()
	if !snap.Connected || snap.Identity != "home" || snap.Address != "192.168.1.42" {
		t.Errorf("Status() = %+v, want connected as home at 192.168.1.42", snap)
	}
}

func TestBootWithBadCredentialsFallsBackToPortal(t *testing.T) {
	st := newTestStore(t)
	if err := st.Save("home", "wrong"); err != nil {
		t.Fatal(err)
	}
	rad := radio.NewSimRadio("home", "pw123", "192.168.1.42")
	c, _ := newTestController(t, rad, st)

	c.Boot()

	if c.Role() != RolePortalActive {
		t.Errorf("Role() = %v, want %v after failed boot attempt", c.Role(), RolePortalActive)
	}
	// Credentials stay stored; the portal offers them for resubmission.
	if _, ok := st.Load(); !ok {
		t.Error("failed join must not erase stored credentials")
	}
}

func TestBoundedAttemptReturnsByDeadline(t *testing.T) {
	st := newTestStore(t)
	if err := st.Save("nowhere", "pw"); err != nil {
		t.Fatal(err)
	}
	// A radio whose network never accepts the join.
	rad := radio.NewSimRadio("", "", "")
	c, clk := newTestController(t, rad, st)

	start := clk.Now()
	c.Boot()
	elapsed := clk.Now().Sub(start)

	if c.Role() != RolePortalActive {
		t.Fatalf("Role() = %v, want %v", c.Role(), RolePortalActive)
	}

	// Control must return no later than the timeout plus one polling
	// interval (plus the settle delay on the teardown path).
	limit := ConnectTimeout + PollInterval + SettleDelay
	if elapsed > limit {
		t.Errorf("attempt consumed %v of simulated time, limit %v", elapsed, limit)
	}
	if elapsed < ConnectTimeout {
		t.Errorf("attempt gave up after %v, before the %v timeout", elapsed, ConnectTimeout)
	}
}

func TestSubmitSuccess(t *testing.T) {
	st := newTestStore(t)
	rad := radio.NewSimRadio("home", "pw123", "192.168.1.42")
	c, _ := newTestController(t, rad, st)
	c.Boot()

	res, err := c.Submit("home", "pw123")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !res.Connected {
		t.Fatalf("Submit() result = %+v, want connected", res)
	}
	if res.Identity != "home" || res.Address != "192.168.1.42" {
		t.Errorf("result = %+v, want identity home, address 192.168.1.42", res)
	}
	if c.Role() != RoleConnected {
		t.Errorf("Role() = %v, want %v", c.Role(), RoleConnected)
	}

	rec, ok := st.Load()
	if !ok || rec.Identity != "home" || rec.Secret != "pw123" {
		t.Errorf("store = %+v present=%v, want saved record", rec, ok)
	}
}

func TestSubmitFailureReturnsToPortal(t *testing.T) {
	st := newTestStore(t)
	rad := radio.NewSimRadio("home", "pw123", "192.168.1.42")
	c, _ := newTestController(t, rad, st)
	c.Boot()

	res, err := c.Submit("home", "wrongpw")
	if err != nil {
		t.Fatalf("Submit() error = %v; a failed join is a verdict, not an error", err)
	}
	if res.Connected {
		t.Fatal("Submit() with wrong secret should not connect")
	}
	if res.Reason == "" {
		t.Error("failed result should carry a reason")
	}
	if c.Role() != RolePortalActive {
		t.Errorf("Role() = %v, want %v", c.Role(), RolePortalActive)
	}
}

func TestSubmitTrimsAndValidates(t *testing.T) {
	st := newTestStore(t)
	rad := radio.NewSimRadio("home", "pw123", "192.168.1.42")
	c, _ := newTestController(t, rad, st)
	c.Boot()

	res, err := c.Submit("  home  ", "  pw123  ")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !res.Connected {
		t.Error("trimmed credentials should match the network")
	}

	var vErr *ValidationError
	if _, err := c.Submit("", "pw"); !errors.As(err, &vErr) {
		t.Errorf("Submit with empty identity: error = %v, want ValidationError", err)
	}
	if _, err := c.Submit("   ", "pw"); !errors.As(err, &vErr) {
		t.Errorf("Submit with whitespace identity: error = %v, want ValidationError", err)
	}
}

func TestSubmitEmptyIdentityDoesNotWriteStore(t *testing.T) {
	st := newTestStore(t)
	rad := radio.NewSimRadio("home", "pw123", "192.168.1.42")
	c, _ := newTestController(t, rad, st)
	c.Boot()

	if _, err := c.Submit("", "pw"); err == nil {
		t.Fatal("Submit with empty identity should fail")
	}
	if _, ok := st.Load(); ok {
		t.Error("rejected submission must not write to the store")
	}
}

func TestConcurrentSubmitRejected(t *testing.T) {
	st := newTestStore(t)
	rad := radio.NewSimRadio("home", "pw123", "192.168.1.42")
	c, _ := newTestController(t, rad, st)
	c.Boot()

	// Hold the attempt flag the way an in-flight bounded wait does.
	if !c.attempting.CompareAndSwap(false, true) {
		t.Fatal("precondition: no attempt in flight")
	}
	defer c.attempting.Store(false)

	_, err := c.Submit("home", "pw123")
	if !errors.Is(err, ErrAttemptInProgress) {
		t.Errorf("Submit() error = %v, want ErrAttemptInProgress", err)
	}
}

func TestLinkLossEntersReconnecting(t *testing.T) {
	st := newTestStore(t)
	if err := st.Save("home", "pw123"); err != nil {
		t.Fatal(err)
	}
	rad := radio.NewSimRadio("home", "pw123", "192.168.1.42")
	c, _ := newTestController(t, rad, st)
	c.Boot()

	if c.Role() != RoleConnected {
		t.Fatal("precondition: connected")
	}

	rad.DropLink()
	c.Tick()

	if c.Role() != RoleReconnecting {
		t.Errorf("Role() = %v, want %v after link loss", c.Role(), RoleReconnecting)
	}

	snap := c.Status()
	if snap.Connected {
		t.Error("Status() should not report connected after link loss")
	}
	if snap.SavedIdentity != "home" {
		t.Errorf("SavedIdentity = %q, want home", snap.SavedIdentity)
	}
}

func TestReconnectRateLimiting(t *testing.T) {
	st := newTestStore(t)
	if err := st.Save("home", "pw123"); err != nil {
		t.Fatal(err)
	}
	rad := radio.NewSimRadio("home", "pw123", "192.168.1.42")
	c, clk := newTestController(t, rad, st)
	c.Boot()

	joinsAfterBoot := rad.JoinCalls()

	// Take the network away entirely so rejoins keep failing.
	rad.AcceptIdentity = ""
	rad.DropLink()
	c.Tick() // detects loss

	// Many loop iterations within a single reconnect interval.
	for i := 0; i < 50; i++ {
		c.Tick()
		clk.Advance(100 * time.Millisecond) // 50 ticks over 5s
	}
	issued := rad.JoinCalls() - joinsAfterBoot
	if issued != 1 {
		t.Errorf("issued %d joins within one interval, want exactly 1", issued)
	}

	// Crossing the interval allows exactly one more.
	clk.Advance(ReconnectInterval)
	for i := 0; i < 10; i++ {
		c.Tick()
	}
	issued = rad.JoinCalls() - joinsAfterBoot
	if issued != 2 {
		t.Errorf("issued %d joins across two intervals, want exactly 2", issued)
	}
}

func TestBackgroundRejoinRecovers(t *testing.T) {
	st := newTestStore(t)
	if err := st.Save("home", "pw123"); err != nil {
		t.Fatal(err)
	}
	rad := radio.NewSimRadio("home", "pw123", "192.168.1.42")
	c, _ := newTestController(t, rad, st)
	c.Boot()

	rad.DropLink()
	c.Tick() // loss detected -> Reconnecting
	c.Tick() // due immediately after loss -> fire-and-forget join
	c.Tick() // link observed up -> Connected

	if c.Role() != RoleConnected {
		t.Errorf("Role() = %v, want %v after background recovery", c.Role(), RoleConnected)
	}
}

func TestTickDoesNotBlock(t *testing.T) {
	st := newTestStore(t)
	if err := st.Save("home", "pw123"); err != nil {
		t.Fatal(err)
	}
	rad := radio.NewSimRadio("", "", "")
	c, clk := newTestController(t, rad, st)

	c.Boot() // fails to portal
	before := clk.Now()
	for i := 0; i < 100; i++ {
		c.Tick()
	}
	// Background ticks never sleep; only Run's pacing and bounded waits
	// consume simulated time.
	if !clk.Now().Equal(before) {
		t.Errorf("Tick() consumed %v of simulated time, want none", clk.Now().Sub(before))
	}
}

func TestResetClearsStore(t *testing.T) {
	st := newTestStore(t)
	if err := st.Save("home", "pw123"); err != nil {
		t.Fatal(err)
	}
	rad := radio.NewSimRadio("home", "pw123", "192.168.1.42")
	c, _ := newTestController(t, rad, st)
	c.Boot()

	if err := c.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if _, ok := st.Load(); ok {
		t.Error("store should report absent after Reset()")
	}

	// A fresh controller models the post-restart boot.
	c2, _ := newTestController(t, radio.NewSimRadio("home", "pw123", ""), st)
	c2.Boot()
	if c2.Role() != RolePortalActive {
		t.Errorf("post-restart Role() = %v, want %v", c2.Role(), RolePortalActive)
	}
}

func TestScheduleRestartInvokesHook(t *testing.T) {
	st := newTestStore(t)
	rad := radio.NewSimRadio("", "", "")

	restarted := make(chan struct{})
	c := New(st, rad,
		WithClock(newFakeClock()),
		WithRestart(func() { close(restarted) }),
	)

	c.ScheduleRestart(time.Millisecond)
	select {
	case <-restarted:
	case <-time.After(2 * time.Second):
		t.Fatal("restart hook was not invoked")
	}
}

func TestSubscribeDeliversTransitions(t *testing.T) {
	st := newTestStore(t)
	rad := radio.NewSimRadio("home", "pw123", "192.168.1.42")
	c, _ := newTestController(t, rad, st)

	ch, cancel := c.Subscribe()
	defer cancel()

	c.Boot() // no credentials -> PortalActive

	select {
	case change := <-ch:
		if change.Role != RolePortalActive {
			t.Errorf("change.Role = %v, want %v", change.Role, RolePortalActive)
		}
		if change.From != RoleUnprovisioned {
			t.Errorf("change.From = %v, want %v", change.From, RoleUnprovisioned)
		}
	default:
		t.Fatal("expected a buffered role change")
	}
}

func TestRoleAccessPointMode(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleUnprovisioned, true},
		{RolePortalActive, true},
		{RoleConnecting, false},
		{RoleConnected, false},
		{RoleReconnecting, false},
	}
	for _, tt := range tests {
		if got := tt.role.AccessPointMode(); got != tt.want {
			t.Errorf("%v.AccessPointMode() = %v, want %v", tt.role, got, tt.want)
		}
	}
}
