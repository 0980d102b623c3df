//go:build e2e

package e2e

import (
	. "github.com/onsi/ginkgo/v2"

	"github.com/obslab/pipeline-e2e/test/testkit/assert"
	"github.com/obslab/pipeline-e2e/test/testkit/suite"
)

var _ = Describe("Workloads", Label("smoke"), func() {
	Context("StatefulSets", func() {
		It("Should have at least one ready replica each", func() {
			for _, name := range suite.StatefulSets {
				assert.StatefulSetReady(ctx, name)
			}
		})

		It("Should not be crash looping", func() {
			for _, name := range suite.StatefulSets {
				assert.PodsNotRestarting(ctx, "app="+name)
			}
		})
	})

	Context("PodDisruptionBudgets", func() {
		It("Should exist for every StatefulSet", func() {
			for _, name := range suite.StatefulSets {
				assert.PodDisruptionBudgetExists(ctx, name)
			}
		})
	})
})
