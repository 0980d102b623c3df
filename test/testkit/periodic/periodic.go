// Package periodic provides the shared poll timings for the suites and a
// bounded fixed-interval poller for verifying eventually-consistent side
// effects of the pipeline.
package periodic

import (
	"time"
)

const (
	// EventuallyTimeout bounds readiness and data-flow checks against the
	// live cluster.
	EventuallyTimeout = time.Second * 60

	// TelemetryFlowTimeout bounds checks that wait for telemetry side
	// effects (stats lines, Splunk results). Stream emits stats on a fixed
	// short reporting interval, so this only needs to span a few cycles.
	TelemetryFlowTimeout = time.Second * 90

	// NegativeCheckWindow is how long a "this must not happen" condition is
	// watched before it is considered to hold.
	NegativeCheckWindow = time.Second * 10

	DefaultInterval       = time.Millisecond * 250
	TelemetryFlowInterval = time.Second * 2
)
