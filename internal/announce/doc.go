// Package announce advertises the device over mDNS once it is connected.
//
// The provisioning story has two discovery problems: finding the device
// before it has credentials (solved by the captive portal) and finding it
// afterwards, when it sits on the user's network behind a DHCP-assigned
// address. This package solves the second one by registering an
// "_http._tcp" service while the device is connected, withdrawn whenever
// the role changes away from connected.
package announce
