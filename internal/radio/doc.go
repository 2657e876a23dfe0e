// Package radio abstracts the device's wireless network stack.
//
// The controller never talks to hardware directly; it consumes the Radio
// interface, which covers exactly the operations the provisioning state
// machine needs: issue a join, tear it down, poll the link, and flip the
// provisioning access point on and off.
//
// Two implementations ship:
//   - NMCLIRadio shells out to NetworkManager's nmcli on Linux hosts.
//   - SimRadio is an in-memory model for tests and --simulate runs.
package radio
