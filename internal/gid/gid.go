// Package gid extracts the calling goroutine's id for diagnostic use
// (message thread IDs, the recursive mutex's owner check). Go does not
// expose goroutine ids officially; this parses the header line runtime.Stack
// always produces.
package gid

import (
	"runtime"
	"strconv"
)

// Current returns the calling goroutine's id, or 0 if it could not be
// parsed out of the stack header.
func Current() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	const prefix = "goroutine "
	if len(b) <= len(prefix) {
		return 0
	}
	b = b[len(prefix):]
	i := 0
	for i < len(b) && b[i] != ' ' {
		i++
	}
	id, err := strconv.ParseInt(string(b[:i]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
