// Package portal serves the captive configuration pages.
//
// The portal has three moving parts, only one of which lives here: these
// HTML handlers. The access point and the wildcard DNS resolver that force
// clients onto them are owned by the radio and dnscapture packages and are
// armed by the server on role transitions. Pages depend on live state, so
// every response carries no-cache directives (applied as middleware by the
// server).
package portal
