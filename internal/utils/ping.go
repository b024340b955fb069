package utils

import (
	"fmt"
	"net"
	"time"
)

// PingHost checks if a TCP endpoint is reachable within the timeout.
// Used by the healthcheck binary to probe the API port without issuing
// a full HTTP request.
func PingHost(host, port string, timeout time.Duration) error {
	address := net.JoinHostPort(host, port)

	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	defer conn.Close()

	return nil
}
