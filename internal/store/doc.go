// Package store persists the device's single Wi-Fi credential record.
//
// The store is a single slot, not a list: a successful save overwrites
// whatever was there before, and a clear empties it. The record lives in
// its own namespaced YAML file next to the daemon config so erasing
// credentials never disturbs other settings.
//
// Absence is normalized: a missing file, an unreadable file, a corrupt
// file, and a record with an empty identity all load as "absent". Callers
// never see read errors; the recovery path for every one of those states
// is the same (reprovision through the portal).
package store
