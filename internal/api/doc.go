// Package api serves the status and management surface of the daemon.
//
// Unlike the portal, which exists only while the device is an access point,
// the API is mounted once and stays available across every role: a connected
// device answers GET /api/status on its joined address, an unprovisioned one
// answers the same path on the portal address.
//
// Endpoints:
//
//	GET  /api/status  connectivity state, never fails
//	POST /api/wifi    credential submission (JSON, form, or raw scan)
//	POST /api/reset   erase credentials and restart
//	GET  /api/events  websocket stream of role transitions
//
// A failed network join is not an HTTP error: POST /api/wifi returns 200
// with {"status":"failed"} because the operation itself - accepting and
// acting on the submission - succeeded. 400 is reserved for bad input and
// 409 for a submission arriving while another attempt is still in flight.
package api
