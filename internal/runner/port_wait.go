// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/denvhq/denv/pkg/denvfile"
)

// DefaultPortWaitTimeout bounds how long a service task may take to open
// its port before the run is considered failed.
const DefaultPortWaitTimeout = 30 * time.Second

// portPollInterval is the delay between connection attempts.
const portPollInterval = 100 * time.Millisecond

// ErrPortWaitTimeout is the sentinel error wrapped by PortWaitError.
var ErrPortWaitTimeout = errors.New("timed out waiting for port")

// PortWaitError is returned when a service task does not open its
// readiness port within the timeout.
type PortWaitError struct {
	Port    denvfile.PortNumber
	Timeout time.Duration
}

// Error implements the error interface.
func (e *PortWaitError) Error() string {
	return fmt.Sprintf("port %d did not become reachable within %s", e.Port, e.Timeout)
}

// Unwrap returns ErrPortWaitTimeout so callers can use errors.Is for programmatic detection.
func (e *PortWaitError) Unwrap() error { return ErrPortWaitTimeout }

// WaitForPort polls a local TCP port until it accepts a connection, the
// timeout elapses, or the context is cancelled. It is used to detect when
// a service task is ready.
func WaitForPort(ctx context.Context, port denvfile.PortNumber, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultPortWaitTimeout
	}

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(int(port)))
	deadline := time.Now().Add(timeout)

	for {
		conn, err := net.DialTimeout("tcp", addr, portPollInterval)
		if err == nil {
			_ = conn.Close()
			return nil
		}

		if time.Now().After(deadline) {
			return &PortWaitError{Port: port, Timeout: timeout}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("cancelled while waiting for port %d: %w", port, ctx.Err())
		case <-time.After(portPollInterval):
		}
	}
}
