//go:build e2e

package e2e

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/obslab/pipeline-e2e/test/testkit/mcpcheck"
	"github.com/obslab/pipeline-e2e/test/testkit/suite"
)

// The MCP server is reached directly via its NodePort, the same path an MCP
// client on the host uses, not via port-forward. That way the NodePort
// routing is part of what gets verified.
var _ = Describe("MCP server", Label("smoke"), func() {
	It("Should accept initialize with 200 and an SSE response", func() {
		result, err := mcpcheck.RawInitialize(ctx, suite.Conf.MCPEndpoint)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.StatusCode).To(Equal(http.StatusOK))
		Expect(result.ContentType).To(ContainSubstring("text/event-stream"),
			"the MCP server may be misconfigured or not fully started")
		Expect(result.FirstEvent).To(HaveKey("result"))
	})

	It("Should negotiate the streamable-HTTP protocol version", func() {
		result, err := mcpcheck.Handshake(ctx, suite.Conf.MCPEndpoint)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.ProtocolVersion).To(Equal(mcpcheck.ProtocolVersion))
		Expect(result.ServerName).NotTo(BeEmpty())
	})
})
