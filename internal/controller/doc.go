// Package controller implements the connectivity provisioning state machine.
//
// The controller is the single owner of the device's Role. On boot it
// consults the credential store: no record means the device becomes its own
// access point and serves the provisioning portal; a record earns one
// bounded-wait join attempt, whose verdict decides between Connected and
// PortalActive.
//
// Two kinds of suspension are kept deliberately distinct:
//
//   - Bounded busy-wait: boot-time and submission-time join attempts block
//     their caller for up to ConnectTimeout, polling the link at
//     PollInterval. The caller is synchronously waiting for a verdict (it
//     has a success/failure page to render), so blocking is the point, but
//     it is always bounded.
//
//   - Background retry: once an established link drops, rejoins are
//     fire-and-forget and rate-limited to one per ReconnectInterval. The
//     serving loop is never stalled by recovery.
//
// All role mutations are serialized through one mutex, so a reimplementation
// detail of the original single-loop design survives threading: only one
// transition is ever in flight. A submission arriving while a bounded wait
// is outstanding is rejected with ErrAttemptInProgress rather than queued.
package controller
