package kube

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os/exec"
	"time"
)

var (
	ErrTunnelExited   = errors.New("port-forward process exited before the local port became reachable")
	ErrTunnelNotReady = errors.New("local port did not become reachable within the startup window")
)

const (
	tunnelProbeInterval = 500 * time.Millisecond
	tunnelProbeTimeout  = 2 * time.Second
)

// Tunnel is a kubectl port-forward owned exclusively by one check. Close
// must be called on every path; no tunnel outlives the check that opened
// it.
type Tunnel struct {
	cmd       *exec.Cmd
	localPort int
	done      chan struct{}
	exitErr   error
}

// OpenTunnel spawns kubectl port-forward mapping localPort to remotePort on
// the target workload (e.g. "statefulset/otel-collector") and blocks until
// the first successful connection on the local port, or until startupWindow
// elapses. If the process exits early the local port is likely already in
// use.
//
// Callers must use distinct local ports per check so checks can run
// concurrently under the outer test runner.
func (c *CLI) OpenTunnel(ctx context.Context, target string, localPort, remotePort int, startupWindow time.Duration) (*Tunnel, error) {
	cmd := exec.CommandContext(ctx, c.config.KubectlPath,
		"--context", c.config.Context,
		"-n", c.config.Namespace,
		"port-forward", target,
		fmt.Sprintf("%d:%d", localPort, remotePort))

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start port-forward to %s: %w", target, err)
	}

	tunnel := &Tunnel{
		cmd:       cmd,
		localPort: localPort,
		done:      make(chan struct{}),
	}

	go func() {
		tunnel.exitErr = cmd.Wait()
		close(tunnel.done)
	}()

	if err := tunnel.waitReady(ctx, target, startupWindow); err != nil {
		tunnel.Close()
		return nil, err
	}

	return tunnel, nil
}

func (t *Tunnel) waitReady(ctx context.Context, target string, startupWindow time.Duration) error {
	deadline := time.Now().Add(startupWindow)

	var lastErr error

	for time.Now().Before(deadline) {
		select {
		case <-t.done:
			return fmt.Errorf("%w: target %s, local port %d, exit: %v", ErrTunnelExited, target, t.localPort, t.exitErr)
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		conn, err := net.DialTimeout("tcp", t.Addr(), tunnelProbeTimeout)
		if err == nil {
			conn.Close()
			return nil
		}

		lastErr = err
		time.Sleep(tunnelProbeInterval)
	}

	return fmt.Errorf("%w: target %s, local port %d after %v: %v", ErrTunnelNotReady, target, t.localPort, startupWindow, lastErr)
}

// Addr returns the local endpoint the tunnel listens on.
func (t *Tunnel) Addr() string {
	return fmt.Sprintf("localhost:%d", t.localPort)
}

// Close terminates the port-forward process and waits for it to exit.
func (t *Tunnel) Close() {
	select {
	case <-t.done:
		return
	default:
	}

	if t.cmd.Process != nil {
		_ = t.cmd.Process.Kill()
	}

	<-t.done
}
