// Package assert wraps the recurring gomega checks of the live suites.
// Everything observes cluster state through the shared CLI adapter.
package assert

import (
	"context"
	"fmt"

	. "github.com/onsi/gomega"

	"github.com/obslab/pipeline-e2e/test/testkit/periodic"
	"github.com/obslab/pipeline-e2e/test/testkit/suite"
)

func StatefulSetReady(ctx context.Context, name string) {
	Eventually(func(g Gomega) {
		ready, err := hasReadyReplicas(ctx, name)
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(ready).To(BeTrueBecause("StatefulSet not ready: %s", name))
	}, periodic.EventuallyTimeout, periodic.DefaultInterval).Should(Succeed())
}

func hasReadyReplicas(ctx context.Context, name string) (bool, error) {
	sts, err := suite.CLI.StatefulSet(ctx, name)
	if err != nil {
		return false, fmt.Errorf("failed to get StatefulSet %s: %w", name, err)
	}

	return sts.Status.ReadyReplicas >= 1, nil
}
