// Package server assembles the provisioning daemon.
//
// It owns the HTTP listener (one router carrying both the management API
// and the portal pages, mounted once and left mounted across role
// transitions), the capture DNS resolver, and the mDNS announcer. The
// controller decides the role; this package reacts to role changes by
// arming and disarming the pieces that make a role real: the access point
// and wildcard resolver for the portal, the mDNS announcement for a
// connected device.
package server
