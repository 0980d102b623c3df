//go:build e2e

package e2e

import (
	"context"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/obslab/pipeline-e2e/test/testkit/logparse"
	"github.com/obslab/pipeline-e2e/test/testkit/otlp/traces"
	"github.com/obslab/pipeline-e2e/test/testkit/periodic"
	"github.com/obslab/pipeline-e2e/test/testkit/splunk"
	"github.com/obslab/pipeline-e2e/test/testkit/suite"
)

// outputsConfigPath is where Cribl Stream renders its effective outputs
// config inside the container ($CRIBL_HOME/local/cribl).
const outputsConfigPath = "/opt/cribl/local/cribl/outputs.yml"

var _ = Describe("Data flow", Label("dataflow"), func() {
	It("Should show flowing stats in the Cribl Stream logs", func() {
		sender, err := traces.NewGRPCSender(ctx, suite.Conf.OTLPGRPCEndpoint)
		Expect(err).NotTo(HaveOccurred())
		defer sender.Shutdown(ctx)
		Expect(sender.Export(ctx, traces.MakeTaggedTraces(uuid.NewString(), 50))).To(Succeed())

		// Stream reports _raw stats on a fixed interval; wait until a
		// snapshot proves bytes actually left for the external output.
		result, err := periodic.Poll(ctx, periodic.Options{
			Interval: periodic.TelemetryFlowInterval,
			Timeout:  periodic.TelemetryFlowTimeout,
		}, func(ctx context.Context) ([]string, error) {
			logs, err := suite.CLI.Logs(ctx, "statefulset/cribl-stream-standalone", 500)
			if err != nil {
				return nil, err
			}

			return logparse.FindFlowingStats(logs), nil
		}, func(flowing []string) bool {
			return len(flowing) > 0
		})
		Expect(err).NotTo(HaveOccurred(), "no flowing stats evidence before deadline")
		Expect(result.State).NotTo(BeEmpty())
	})

	It("Should have the Splunk HEC URL configured in the Stream outputs", func() {
		hecURL, err := suite.CLI.SecretValue(ctx, suite.Conf.SplunkSecret, suite.Conf.SplunkHECURLKey)
		Expect(err).NotTo(HaveOccurred())

		outputsYAML, err := suite.CLI.Exec(ctx, "statefulset/cribl-stream-standalone",
			"cat", outputsConfigPath)
		Expect(err).NotTo(HaveOccurred())

		Expect(logparse.ValuePresentAsKey("url", hecURL, outputsYAML)).To(BeTrueBecause(
			"expected url: %s in Stream outputs config", hecURL))
	})

	It("Should deliver a tagged event to Splunk", func() {
		password, err := suite.CLI.SecretValue(ctx, suite.Conf.SplunkSecret, suite.Conf.SplunkAdminPasswordKey)
		Expect(err).NotTo(HaveOccurred())

		checkID := uuid.NewString()

		sender, err := traces.NewGRPCSender(ctx, suite.Conf.OTLPGRPCEndpoint)
		Expect(err).NotTo(HaveOccurred())
		defer sender.Shutdown(ctx)
		Expect(sender.Export(ctx, traces.MakeTaggedTraces(checkID, 10))).To(Succeed())

		splunkClient := splunk.NewClient(suite.Conf.SplunkMgmtURL, password)
		splunkClient.VerifyTLS = suite.Conf.SplunkVerifyTLS

		result, err := periodic.Poll(ctx, periodic.Options{
			Interval: periodic.TelemetryFlowInterval,
			Timeout:  periodic.TelemetryFlowTimeout,
		}, func(ctx context.Context) ([]map[string]any, error) {
			return splunkClient.Search(ctx, `index=* "`+checkID+`"`, "-15m")
		}, func(results []map[string]any) bool {
			return len(results) > 0
		})
		Expect(err).NotTo(HaveOccurred(), "tagged event %s never appeared in Splunk", checkID)
		Expect(result.State).NotTo(BeEmpty())
	})
})
