package radio

// Radio is the capability the controller consumes to drive the device's
// network posture. Implementations switch the underlying hardware between
// joined-client and access-point modes; the controller owns when.
//
// Join and StartAccessPoint issue requests without waiting for an outcome.
// Whether a join actually succeeded is observed through LinkUp, which must
// be cheap enough to poll every loop iteration.
type Radio interface {
	// Join issues a request to join the named network. It returns once the
	// request is handed to the network stack, not once the link is up.
	Join(identity, secret string) error

	// Disconnect tears down any client-mode state, including a join attempt
	// still in flight.
	Disconnect() error

	// LinkUp reports whether the device currently holds a joined link.
	// Non-blocking.
	LinkUp() bool

	// Address returns the address assigned on the joined link, or "" when
	// LinkUp is false.
	Address() string

	// StartAccessPoint brings up the provisioning access point with the
	// given identity at the given address. Idempotent.
	StartAccessPoint(ssid, addr string) error

	// StopAccessPoint tears down the provisioning access point. Idempotent,
	// and a no-op when no access point is running.
	StopAccessPoint() error
}
