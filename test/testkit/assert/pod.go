package assert

import (
	"context"
	"fmt"

	. "github.com/onsi/gomega"
	corev1 "k8s.io/api/core/v1"

	"github.com/obslab/pipeline-e2e/test/testkit/suite"
)

// MaxRestarts is the crash-loop budget per container. Occasional restarts
// happen during node maintenance; sustained restarting does not.
const MaxRestarts = 5

func PodsNotRestarting(ctx context.Context, selector string) {
	pods, err := suite.CLI.PodsBySelector(ctx, selector)
	Expect(err).NotTo(HaveOccurred())
	Expect(pods.Items).NotTo(BeEmpty(), "no pods found for selector %s", selector)

	for _, pod := range pods.Items {
		for _, containerStatus := range pod.Status.ContainerStatuses {
			Expect(int(containerStatus.RestartCount)).To(BeNumerically("<=", MaxRestarts),
				"pod %s container %s restarted %d times (possible crash loop)",
				pod.Name, containerStatus.Name, containerStatus.RestartCount)
		}
	}
}

func PodsRunning(ctx context.Context, selector string) {
	pods, err := suite.CLI.PodsBySelector(ctx, selector)
	Expect(err).NotTo(HaveOccurred())
	Expect(pods.Items).NotTo(BeEmpty(), "no pods found for selector %s", selector)

	for _, pod := range pods.Items {
		for _, containerStatus := range pod.Status.ContainerStatuses {
			Expect(containerStatus.State.Running).NotTo(BeNil(), containerStateInfo(pod, containerStatus))
		}
	}
}

func containerStateInfo(pod corev1.Pod, containerStatus corev1.ContainerStatus) string {
	var additionalInfo string
	if containerStatus.State.Waiting != nil {
		additionalInfo = fmt.Sprintf("Waiting reason: %s, message: %s", containerStatus.State.Waiting.Reason, containerStatus.State.Waiting.Message)
	} else if containerStatus.State.Terminated != nil {
		additionalInfo = fmt.Sprintf("Terminated reason: %s, message: %s", containerStatus.State.Terminated.Reason, containerStatus.State.Terminated.Message)
	}

	return fmt.Sprintf("pod %s has a container %s that is not running. Additional info: %s", pod.Name, containerStatus.Name, additionalInfo)
}
