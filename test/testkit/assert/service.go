package assert

import (
	"context"

	. "github.com/onsi/gomega"

	"github.com/obslab/pipeline-e2e/test/testkit/suite"
)

func ServiceIsHeadless(ctx context.Context, name string) {
	svc, err := suite.CLI.Service(ctx, name)
	Expect(err).NotTo(HaveOccurred())
	Expect(svc.Spec.ClusterIP).To(Equal("None"), "expected headless service: %s", name)
}

// ServiceHasNodePort asserts the named service port is exposed on the given
// NodePort.
func ServiceHasNodePort(ctx context.Context, name, portName string, nodePort int32) {
	svc, err := suite.CLI.Service(ctx, name)
	Expect(err).NotTo(HaveOccurred())

	ports := make(map[string]int32)
	for _, port := range svc.Spec.Ports {
		ports[port.Name] = port.NodePort
	}

	Expect(ports).To(HaveKeyWithValue(portName, nodePort), "service %s", name)
}

// ServiceExposesNodePort asserts some port of the service is exposed on the
// given NodePort, regardless of port name.
func ServiceExposesNodePort(ctx context.Context, name string, nodePort int32) {
	svc, err := suite.CLI.Service(ctx, name)
	Expect(err).NotTo(HaveOccurred())

	var nodePorts []int32
	for _, port := range svc.Spec.Ports {
		nodePorts = append(nodePorts, port.NodePort)
	}

	Expect(nodePorts).To(ContainElement(nodePort), "service %s NodePorts", name)
}

func ServiceHasPort(ctx context.Context, name string, portNumber int32) {
	svc, err := suite.CLI.Service(ctx, name)
	Expect(err).NotTo(HaveOccurred())

	var ports []int32
	for _, port := range svc.Spec.Ports {
		ports = append(ports, port.Port)
	}

	Expect(ports).To(ContainElement(portNumber), "service %s ports", name)
}
