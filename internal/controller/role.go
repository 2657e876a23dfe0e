package controller

// Role is the device's current network posture. Exactly one role is active
// at any instant, and only the Controller mutates it.
type Role int

const (
	// RoleUnprovisioned is the boot state before the credential store has
	// been consulted, and the resting state when no record exists.
	RoleUnprovisioned Role = iota

	// RoleConnecting means a join request is outstanding: either a
	// bounded-wait attempt (boot or submission) or a background rejoin.
	RoleConnecting

	// RoleConnected means the device holds a joined link.
	RoleConnected

	// RolePortalActive means the device is its own access point, serving
	// the provisioning portal.
	RolePortalActive

	// RoleReconnecting means an established link was lost and the
	// controller is issuing rate-limited background rejoins.
	RoleReconnecting
)

func (r Role) String() string {
	switch r {
	case RoleUnprovisioned:
		return "unprovisioned"
	case RoleConnecting:
		return "connecting"
	case RoleConnected:
		return "connected"
	case RolePortalActive:
		return "portal"
	case RoleReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// AccessPointMode reports whether the role corresponds to the device acting
// as an access point ("AP") rather than a station ("STA"). This is the
// role string exposed by the status API while not connected.
func (r Role) AccessPointMode() bool {
	return r == RolePortalActive || r == RoleUnprovisioned
}
