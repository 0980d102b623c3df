package assert

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	. "github.com/onsi/gomega"

	"github.com/obslab/pipeline-e2e/test/testkit/suite"
)

const endpointRequestTimeout = 5 * time.Second

// EndpointReachable opens a port-forward to the workload, performs one GET
// against the container port, and asserts the status code is in the allowed
// set. 200 and 401 both count as "service present" on authenticated
// management endpoints. The tunnel is closed before returning on every
// path.
//
// Several images in this pipeline are distroless, so health endpoints are
// reached from the test host via port-forward rather than kubectl exec.
func EndpointReachable(ctx context.Context, target string, localPort, remotePort int, path string, allowedStatus ...int) {
	tunnel, err := suite.CLI.OpenTunnel(ctx, target, localPort, remotePort, suite.Conf.TunnelStartupWindow)
	Expect(err).NotTo(HaveOccurred(), "failed to open tunnel to %s", target)
	defer tunnel.Close()

	client := &http.Client{Timeout: endpointRequestTimeout}

	resp, err := client.Get(fmt.Sprintf("http://%s%s", tunnel.Addr(), path))
	Expect(err).NotTo(HaveOccurred(), "GET via tunnel to %s%s", target, path)
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
	Expect(allowedStatus).To(ContainElement(resp.StatusCode),
		"%s%s returned %d: %s", target, path, resp.StatusCode, string(body))
}
