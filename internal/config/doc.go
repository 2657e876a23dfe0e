// Package config loads the daemon's YAML configuration.
//
// Configuration is optional: a device with no config file boots with
// defaults, which is exactly the state of a factory-fresh unit. The file
// lives in the OS-appropriate config directory (e.g. ~/.config/wifiprov)
// unless an explicit path is given on the command line.
//
// Example config.yaml:
//
//	http_addr: ":8080"
//	dns_addr: ":53"
//	ap_ssid: "WiFiProv-Setup"
//	ap_address: "192.168.4.1"
//	device_name: "greenhouse-sensor"
//	allow_raw_scan: false
//	log_level: info
package config
