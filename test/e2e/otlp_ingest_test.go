//go:build e2e

package e2e

import (
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/obslab/pipeline-e2e/test/testkit/otlp/traces"
	"github.com/obslab/pipeline-e2e/test/testkit/suite"
)

var _ = Describe("OTLP ingestion", Label("ingest"), func() {
	It("Should accept spans over the gRPC NodePort", func() {
		sender, err := traces.NewGRPCSender(ctx, suite.Conf.OTLPGRPCEndpoint)
		Expect(err).NotTo(HaveOccurred())
		defer sender.Shutdown(ctx)

		payload := traces.MakeTaggedTraces(uuid.NewString(), 10)
		Expect(sender.Export(ctx, payload)).To(Succeed(),
			"OTLP gRPC export to %s failed", suite.Conf.OTLPGRPCEndpoint)
	})

	It("Should accept spans over the HTTP NodePort", func() {
		sender, err := traces.NewHTTPSender(ctx, suite.Conf.OTLPHTTPEndpoint+"/v1/traces")
		Expect(err).NotTo(HaveOccurred())
		defer sender.Shutdown(ctx)

		payload := traces.MakeTaggedTraces(uuid.NewString(), 10)
		Expect(sender.Export(ctx, payload)).To(Succeed(),
			"OTLP HTTP export to %s failed", suite.Conf.OTLPHTTPEndpoint)
	})
})
