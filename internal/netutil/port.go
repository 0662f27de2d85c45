package netutil

import (
	"fmt"
	"net"
	"strings"
)

// SelectBindAddr returns preferred when it can be listened on, otherwise the
// first free candidate when autoFallback is set. Malformed addresses are an
// error rather than a busy port.
func SelectBindAddr(preferred string, candidates []string, autoFallback bool) (string, error) {
	var tried []string
	if preferred != "" {
		ok, err := IsAddrAvailable(preferred)
		if err != nil {
			return "", err
		}
		if ok {
			return preferred, nil
		}
		if !autoFallback {
			return "", fmt.Errorf("deck bind address in use: %s", preferred)
		}
		tried = append(tried, preferred)
	}

	for _, addr := range candidates {
		addr = strings.TrimSpace(addr)
		if addr == "" || addr == preferred {
			continue
		}
		ok, err := IsAddrAvailable(addr)
		if err != nil {
			return "", err
		}
		if ok {
			return addr, nil
		}
		tried = append(tried, addr)
	}

	return "", fmt.Errorf("no free deck bind address (tried %s)", strings.Join(tried, ", "))
}

// IsAddrAvailable reports whether addr (host:port) can be listened on.
func IsAddrAvailable(addr string) (bool, error) {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return false, fmt.Errorf("invalid bind address %q: %w", addr, err)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return false, nil
	}
	if closeErr := ln.Close(); closeErr != nil {
		return false, closeErr
	}
	return true, nil
}
