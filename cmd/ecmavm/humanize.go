package main

import "github.com/dustin/go-humanize"

// humanizeBytes formats a byte count the way the cache stats output
// wants it ("1.2 MB" rather than a raw integer).
func humanizeBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}
