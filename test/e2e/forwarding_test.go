//go:build e2e

package e2e

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/obslab/pipeline-e2e/test/testkit/logparse"
	"github.com/obslab/pipeline-e2e/test/testkit/otlp/traces"
	"github.com/obslab/pipeline-e2e/test/testkit/periodic"
	"github.com/obslab/pipeline-e2e/test/testkit/prom"
	"github.com/obslab/pipeline-e2e/test/testkit/suite"
)

const sentSpansMetric = "otelcol_exporter_sent_spans"

var _ = Describe("Collector forwarding", Label("forwarding"), func() {
	sendTaggedTrace := func(ctx context.Context) error {
		sender, err := traces.NewGRPCSender(ctx, suite.Conf.OTLPGRPCEndpoint)
		if err != nil {
			return err
		}
		defer sender.Shutdown(ctx)

		return sender.Export(ctx, traces.MakeTaggedTraces(uuid.NewString(), 10))
	}

	It("Should increase the exporter sent-spans counter after a send", func() {
		// The counter is monotonic and almost certainly nonzero before the
		// test runs, so only an increase over the pre-send baseline counts.
		tunnel, err := suite.CLI.OpenTunnel(ctx, "statefulset/otel-collector",
			suite.PortForwardCollectorMetrics, 8888, suite.Conf.TunnelStartupWindow)
		Expect(err).NotTo(HaveOccurred())
		defer tunnel.Close()

		metricsURL := fmt.Sprintf("http://%s/metrics", tunnel.Addr())

		observe := func(ctx context.Context) (float64, error) {
			metrics, err := prom.Scrape(ctx, metricsURL)
			if err != nil {
				return 0, err
			}

			// One series per configured exporter; sum them so the baseline
			// diff does not hinge on which series the scrape lists first.
			return prom.CounterSum(metrics, sentSpansMetric, nil)
		}

		result, err := periodic.PollAboveBaseline(ctx, periodic.Options{
			Interval: periodic.TelemetryFlowInterval,
			Timeout:  periodic.TelemetryFlowTimeout,
		}, observe, sendTaggedTrace)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.State).To(BeNumerically(">", 0))
	})

	It("Should not log export errors after a send", func() {
		Expect(sendTaggedTrace(ctx)).To(Succeed())

		// The forwarding attempt is asynchronous, so cleanliness has to
		// hold over a window spanning at least one export cycle, not just
		// at a single instant.
		Consistently(func(g Gomega) {
			logs, err := suite.CLI.Logs(ctx, "statefulset/otel-collector", 100)
			g.Expect(err).NotTo(HaveOccurred())

			errorLines := logparse.ClassifyErrors(logparse.OTelCollector, logs)
			g.Expect(errorLines).To(BeEmpty(), "collector logged export errors after send")
		}, periodic.NegativeCheckWindow, periodic.TelemetryFlowInterval).Should(Succeed())
	})
})
