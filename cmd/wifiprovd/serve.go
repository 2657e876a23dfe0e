package main

import (
	"github.com/spf13/cobra"

	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/config"
	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/radio"
	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/server"
	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/store"
)

// Serve command and flags
var (
	configPath   string
	httpAddr     string
	dnsAddr      string
	apSSID       string
	apAddress    string
	deviceName   string
	storePath    string
	ifaceName    string
	logLevel     string
	allowRawScan bool
	simulate     bool
	simIdentity  string
	simSecret    string
	simAddress   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the provisioning daemon",
	Long: `Run the provisioning daemon.

On startup the stored credentials decide the device's role: with none, the
daemon starts the setup access point and captive portal; with credentials,
it attempts to join the network and falls back to the portal on failure.

Flags override values from the configuration file.`,
	Example: `  # Run with defaults (portal on :8080, capture DNS on :53)
  wifiprovd serve

  # Run on a specific wireless interface with verbose logging
  wifiprovd serve --interface wlan0 --log-level debug

  # Development run against the simulated radio
  wifiprovd serve --simulate --sim-identity home --sim-secret pw123 --http-addr :8080 --dns-addr :5353`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "Path to config file (default: OS config directory)")
	serveCmd.Flags().StringVar(&httpAddr, "http-addr", "", "Listen address for the portal and API")
	serveCmd.Flags().StringVar(&dnsAddr, "dns-addr", "", "Listen address for the capture DNS resolver")
	serveCmd.Flags().StringVar(&apSSID, "ap-ssid", "", "Identity of the setup access point")
	serveCmd.Flags().StringVar(&apAddress, "ap-address", "", "IPv4 address of the device while in portal mode")
	serveCmd.Flags().StringVar(&deviceName, "device-name", "", "Instance name announced over mDNS once connected")
	serveCmd.Flags().StringVar(&storePath, "store", "", "Path to the credential store file")
	serveCmd.Flags().StringVar(&ifaceName, "interface", "", "Wireless interface to manage (empty = let nmcli pick)")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&allowRawScan, "allow-raw-scan", false, "Enable the raw-body credential scan fallback on POST /api/wifi")
	serveCmd.Flags().BoolVar(&simulate, "simulate", false, "Use the in-memory simulated radio instead of nmcli")
	serveCmd.Flags().StringVar(&simIdentity, "sim-identity", "home", "Simulated network identity (with --simulate)")
	serveCmd.Flags().StringVar(&simSecret, "sim-secret", "pw123", "Simulated network secret (with --simulate)")
	serveCmd.Flags().StringVar(&simAddress, "sim-address", "192.168.1.42", "Simulated assigned address (with --simulate)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// Flags override the file.
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
	if dnsAddr != "" {
		cfg.DNSAddr = dnsAddr
	}
	if apSSID != "" {
		cfg.APSSID = apSSID
	}
	if apAddress != "" {
		cfg.APAddress = apAddress
	}
	if deviceName != "" {
		cfg.DeviceName = deviceName
	}
	if storePath != "" {
		cfg.StorePath = storePath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if cmd.Flags().Changed("allow-raw-scan") {
		cfg.AllowRawScan = allowRawScan
	}
	if cmd.Flags().Changed("simulate") {
		cfg.Simulate = simulate
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	st, err := store.New(cfg.StorePath)
	if err != nil {
		return err
	}

	var rad radio.Radio
	if cfg.Simulate {
		rad = radio.NewSimRadio(simIdentity, simSecret, simAddress)
	} else {
		rad = radio.NewNMCLIRadio(ifaceName)
	}

	srv, err := server.New(cfg, st, rad)
	if err != nil {
		return err
	}
	return srv.Start()
}
