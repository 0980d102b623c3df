//go:build e2e

package e2e

import (
	. "github.com/onsi/ginkgo/v2"

	"github.com/obslab/pipeline-e2e/test/testkit/assert"
)

// expectedNetworkPolicies is the closed set deployed with the stack: a
// default deny plus explicit per-component ingress/egress allowances.
var expectedNetworkPolicies = []string{
	"default-deny-all",
	"allow-dns-egress",
	"allow-otel-ingress",
	"allow-otel-egress",
	"allow-edge-managed-egress",
	"allow-edge-standalone-egress",
	"allow-edge-standalone-ui-ingress",
	"allow-stream-ingress",
	"allow-stream-egress",
	"allow-stream-ui-ingress",
	"allow-mcp-egress",
	"allow-mcp-ingress",
	"allow-heartbeat-egress",
	"allow-heartbeat-splunk-egress",
	"allow-heartbeat-edge-egress",
	"allow-heartbeat-otel-egress",
}

var _ = Describe("Service wiring", Label("smoke"), func() {
	It("Should have a headless service for the collector StatefulSet", func() {
		assert.ServiceIsHeadless(ctx, "otel-collector")
	})

	It("Should expose OTLP gRPC and HTTP NodePorts", func() {
		assert.ServiceHasNodePort(ctx, "otel-collector-external", "otlp-grpc", 30317)
		assert.ServiceHasNodePort(ctx, "otel-collector-external", "otlp-http", 30318)
	})

	It("Should expose the Cribl Edge managed OTLP port", func() {
		assert.ServiceHasPort(ctx, "cribl-edge-managed", 9420)
	})

	It("Should expose the Cribl Stream UI NodePort", func() {
		assert.ServiceExposesNodePort(ctx, "cribl-stream-standalone-ui", 30900)
	})

	It("Should expose the Cribl Edge UI NodePort", func() {
		assert.ServiceExposesNodePort(ctx, "cribl-edge-standalone-ui", 30910)
	})

	It("Should expose the MCP server NodePort", func() {
		assert.ServiceExposesNodePort(ctx, "cribl-mcp-server-nodeport", 30030)
	})

	It("Should have every expected NetworkPolicy", func() {
		for _, name := range expectedNetworkPolicies {
			assert.NetworkPolicyExists(ctx, name)
		}
	})
})
