// Package netx holds small networking helpers shared by clients.
package netx

import (
	"errors"
	"net"
	"syscall"
)

// IsUnavailable reports whether err means the server could not be reached at
// all (refused, unreachable, DNS failure), as opposed to an error response.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
