package util

import "time"

// LoadLocation resolves an IANA zone name, falling back to a fixed offset zone
// when the host has no tzdata installed.
func LoadLocation(name string, fallbackOffset time.Duration) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	label := name
	if label == "" {
		label = "UTC"
	}
	return time.FixedZone(label, int(fallbackOffset.Seconds()))
}
