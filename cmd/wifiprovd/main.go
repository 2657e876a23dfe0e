// Wifiprovd is the Wi-Fi provisioning daemon for headless devices.
//
// When the device has no usable network credentials, wifiprovd turns it
// into its own access point and serves a captive configuration portal;
// once credentials are known it joins the target network and exposes a
// small status/reconfiguration API there.
//
// Usage:
//
//	wifiprovd serve [flags]
//
// See 'wifiprovd serve --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Juanart15/Aprovisionamiento-de-red-WiFi/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wifiprovd",
	Short: "Wi-Fi Provisioning Daemon",
	Long: `A provisioning daemon for headless embedded devices.

With no stored credentials the device becomes a setup access point: every
DNS query and every HTTP request from an associated client lands on the
configuration page. Submitting credentials there (or through the JSON API)
makes the device join the target network, where the same API stays
available for status checks, reconfiguration, and factory reset.`,
	Version: version.Version,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wifiprovd %s\n", version.Full())
	},
}
