//go:build e2e

package e2e

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"

	"github.com/obslab/pipeline-e2e/test/testkit/assert"
	"github.com/obslab/pipeline-e2e/test/testkit/suite"
)

var _ = Describe("Health endpoints", Label("smoke"), func() {
	// The collector image is distroless (no shell, no curl), so its health
	// endpoint is reached from the test host via port-forward.
	It("Should serve the collector health endpoint", func() {
		assert.EndpointReachable(ctx, "statefulset/otel-collector",
			suite.PortForwardCollectorHealth, 13133, "/", http.StatusOK)
	})

	// Cribl Stream's API listens on 9000; 9420 is only used by Edge.
	It("Should serve the Cribl Stream health endpoint", func() {
		assert.EndpointReachable(ctx, "statefulset/cribl-stream-standalone",
			suite.PortForwardStreamHealth, 9000, "/api/v1/health",
			http.StatusOK, http.StatusUnauthorized)
	})

	It("Should serve the Cribl Edge health endpoint", func() {
		assert.EndpointReachable(ctx, "statefulset/cribl-edge-standalone",
			suite.PortForwardEdgeHealth, 9420, "/api/v1/health",
			http.StatusOK, http.StatusUnauthorized)
	})
})
