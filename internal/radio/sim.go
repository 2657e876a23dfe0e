package radio

import (
	"sync"
)

// SimRadio is an in-memory radio used by tests and by `serve --simulate`.
// It accepts joins whose identity/secret match the configured network and
// brings the link up after a configurable number of LinkUp polls, modeling
// association delay without wall-clock time.
type SimRadio struct {
	mu sync.Mutex

	// AcceptIdentity/AcceptSecret describe the one network that exists.
	// An empty AcceptIdentity means no join ever succeeds.
	AcceptIdentity string
	AcceptSecret   string

	// AssignedAddress is the address handed out once the link is up.
	AssignedAddress string

	// PollsUntilUp is how many LinkUp polls after a successful Join the
	// link takes to come up. Zero means up on the first poll.
	PollsUntilUp int

	joined    bool // a matching join request is in flight or settled
	up        bool
	pollsLeft int

	joinCalls int
	apSSID    string
	apUp      bool
}

// NewSimRadio creates a simulated radio that accepts the given network.
func NewSimRadio(identity, secret, address string) *SimRadio {
	return &SimRadio{
		AcceptIdentity:  identity,
		AcceptSecret:    secret,
		AssignedAddress: address,
	}
}

// Join records the request; it succeeds on later polls only if the
// credentials match the simulated network.
func (r *SimRadio) Join(identity, secret string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.joinCalls++
	r.up = false
	r.joined = r.AcceptIdentity != "" &&
		identity == r.AcceptIdentity && secret == r.AcceptSecret
	r.pollsLeft = r.PollsUntilUp
	return nil
}

// Disconnect drops the link and any join in flight.
func (r *SimRadio) Disconnect() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.joined = false
	r.up = false
	return nil
}

// LinkUp reports the simulated link state, counting down association delay.
func (r *SimRadio) LinkUp() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.up {
		return true
	}
	if !r.joined {
		return false
	}
	if r.pollsLeft > 0 {
		r.pollsLeft--
		return false
	}
	r.up = true
	return true
}

// Address returns the assigned address when the link is up.
func (r *SimRadio) Address() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.up {
		return ""
	}
	return r.AssignedAddress
}

// StartAccessPoint records the access point as running.
func (r *SimRadio) StartAccessPoint(ssid, addr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apSSID = ssid
	r.apUp = true
	return nil
}

// StopAccessPoint records the access point as stopped.
func (r *SimRadio) StopAccessPoint() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apUp = false
	return nil
}

// DropLink simulates losing an established link, as if the access point
// went away. The next Join may re-establish it.
func (r *SimRadio) DropLink() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.joined = false
	r.up = false
}

// JoinCalls returns how many join requests were issued.
func (r *SimRadio) JoinCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.joinCalls
}

// APRunning reports whether the simulated access point is up.
func (r *SimRadio) APRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.apUp
}
