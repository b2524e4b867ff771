// Package hostutil turns user-typed backend addresses into base URLs.
package hostutil

import (
	"net"
	"strings"
)

// Normalize returns addr as a base URL without a trailing slash. A bare
// host gets https://, or http:// when it is a loopback address, so
// "localhost:8080" and "tasks.example.com" both work on the command line.
func Normalize(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ""
	}
	addr = strings.TrimRight(addr, "/")
	if strings.Contains(addr, "://") {
		return addr
	}
	if IsLoopback(addr) {
		return "http://" + addr
	}
	return "https://" + addr
}

// IsLoopback reports whether hostport names this machine: localhost, a
// *.localhost name, or a loopback IP, with or without a port.
func IsLoopback(hostport string) bool {
	host := hostport
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")

	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
