// Package dnscapture implements the portal's wildcard name resolver.
//
// While the device is in portal mode it is the network's only DNS server,
// and it lies about everything: every query gets one fixed answer, the
// portal's own address. That is the whole captive-portal trick - a client
// opening any page gets redirected to the configuration page by resolution
// alone.
//
// The resolver runs only while the portal is armed; the server component
// starts and stops it on role transitions.
package dnscapture
