package metrics

import "github.com/dustin/go-humanize"

// FormatHashrate renders a hashes/second rate with an SI prefix, e.g.
// "12.3 MH/s", for the daemon's periodic hashrate report line.
func FormatHashrate(hashesPerSecond float64) string {
	return humanize.SI(hashesPerSecond, "H/s")
}
