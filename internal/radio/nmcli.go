package radio

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/logging"
)

// NMCLIRadio drives a Linux Wi-Fi interface through NetworkManager's nmcli.
// It is the production adapter on hosts that ship NetworkManager; tests and
// development use SimRadio instead.
type NMCLIRadio struct {
	// Interface is the wireless interface name (e.g. "wlan0"). Empty lets
	// nmcli pick.
	Interface string

	mu       sync.Mutex
	apActive bool
}

// NewNMCLIRadio creates an nmcli-backed radio for the given interface.
func NewNMCLIRadio(iface string) *NMCLIRadio {
	return &NMCLIRadio{Interface: iface}
}

func (r *NMCLIRadio) run(args ...string) (string, error) {
	out, err := exec.Command("nmcli", args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("nmcli %s: %w (%s)", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// Join issues a connection request and returns without waiting for the link.
// nmcli itself blocks until the join settles, so the command runs in a
// goroutine; the controller observes the outcome through LinkUp polls.
func (r *NMCLIRadio) Join(identity, secret string) error {
	args := []string{"device", "wifi", "connect", identity}
	if secret != "" {
		args = append(args, "password", secret)
	}
	if r.Interface != "" {
		args = append(args, "ifname", r.Interface)
	}

	go func() {
		if _, err := r.run(args...); err != nil {
			logging.Debug("nmcli join did not settle", zap.Error(err))
		}
	}()
	return nil
}

// Disconnect tears down the client connection on the interface.
func (r *NMCLIRadio) Disconnect() error {
	if r.Interface == "" {
		return nil
	}
	_, err := r.run("device", "disconnect", r.Interface)
	return err
}

// LinkUp reports whether the interface holds a connected, activated link.
func (r *NMCLIRadio) LinkUp() bool {
	out, err := r.run("-t", "-f", "DEVICE,STATE", "device", "status")
	if err != nil {
		return false
	}
	for _, line := range strings.Split(out, "\n") {
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		if r.Interface != "" && parts[0] != r.Interface {
			continue
		}
		if parts[1] == "connected" {
			return true
		}
	}
	return false
}

// Address returns the interface's IPv4 address, or "" when not connected.
func (r *NMCLIRadio) Address() string {
	if !r.LinkUp() {
		return ""
	}
	args := []string{"-t", "-f", "IP4.ADDRESS", "device", "show"}
	if r.Interface != "" {
		args = append(args, r.Interface)
	}
	out, err := r.run(args...)
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(out, "\n") {
		if _, v, ok := strings.Cut(line, ":"); ok {
			// Strip the CIDR suffix nmcli appends (e.g. "/24").
			addr, _, _ := strings.Cut(v, "/")
			if addr != "" {
				return addr
			}
		}
	}
	return ""
}

// StartAccessPoint brings up a NetworkManager hotspot for provisioning.
func (r *NMCLIRadio) StartAccessPoint(ssid, addr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.apActive {
		return nil
	}

	args := []string{"device", "wifi", "hotspot", "ssid", ssid, "con-name", "wifiprov-portal"}
	if r.Interface != "" {
		args = append(args, "ifname", r.Interface)
	}
	if _, err := r.run(args...); err != nil {
		return err
	}
	// An open hotspot: clients must reach the portal without a passphrase.
	if _, err := r.run("connection", "modify", "wifiprov-portal",
		"wifi-sec.key-mgmt", "none",
		"ipv4.method", "shared",
		"ipv4.addresses", addr+"/24"); err != nil {
		logging.Warn("Hotspot reconfiguration failed", zap.Error(err))
	}
	if _, err := r.run("connection", "up", "wifiprov-portal"); err != nil {
		return err
	}

	r.apActive = true
	logging.Info("Access point started", zap.String("ssid", ssid), zap.String("addr", addr))
	return nil
}

// StopAccessPoint tears the hotspot down.
func (r *NMCLIRadio) StopAccessPoint() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.apActive {
		return nil
	}
	if _, err := r.run("connection", "down", "wifiprov-portal"); err != nil {
		return err
	}
	r.apActive = false
	logging.Info("Access point stopped")
	return nil
}
