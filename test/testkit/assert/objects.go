package assert

import (
	"context"

	. "github.com/onsi/gomega"

	"github.com/obslab/pipeline-e2e/test/testkit/suite"
)

func NetworkPolicyExists(ctx context.Context, name string) {
	netpol, err := suite.CLI.NetworkPolicy(ctx, name)
	Expect(err).NotTo(HaveOccurred())
	Expect(netpol.Name).To(Equal(name))
}

func PodDisruptionBudgetExists(ctx context.Context, name string) {
	pdb, err := suite.CLI.PodDisruptionBudget(ctx, name)
	Expect(err).NotTo(HaveOccurred())
	Expect(pdb.Name).To(Equal(name))
}
