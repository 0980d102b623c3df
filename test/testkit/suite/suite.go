// Package suite holds the state shared by all live suites: the effective
// configuration, the cluster CLI, the logger, and the infrastructure gate
// that decides whether the suites run at all.
package suite

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/obslab/pipeline-e2e/test/testkit/kube"
)

var (
	Conf   Config
	CLI    *kube.CLI
	Logger *zap.Logger

	// infraErr is non-nil when the environment is unavailable. Suites skip
	// in that case instead of failing: the fault is the environment, not
	// the pipeline.
	infraErr error
)

var ErrContextNotFound = errors.New("kube context not found in kubeconfig")

// BeforeSuiteFunc loads the configuration, builds the shared CLI and
// logger, and probes the cluster. It only returns an error for setup
// problems; an unreachable cluster is recorded and later reported through
// InfraAvailable.
func BeforeSuiteFunc() error {
	var err error

	Logger, err = zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	Conf, err = LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	CLI = kube.NewCLI(kube.Config{
		KubectlPath: Conf.KubectlPath,
		Context:     Conf.KubeContext,
		Namespace:   Conf.Namespace,
		CallTimeout: Conf.CallTimeout,
	})

	if err := validateKubeContext(Conf.KubeContext); err != nil {
		infraErr = err
		Logger.Warn("Kube context validation failed, suites will be skipped", zap.Error(err))

		return nil
	}

	if err := CLI.ClusterReachable(context.Background()); err != nil {
		infraErr = err
		Logger.Warn("Cluster not reachable, suites will be skipped", zap.Error(err))

		return nil
	}

	Logger.Info("Cluster reachable",
		zap.String("context", Conf.KubeContext),
		zap.String("namespace", Conf.Namespace))

	return nil
}

// InfraAvailable returns nil when the cluster answered the readiness probe,
// otherwise the reason it did not.
func InfraAvailable() error {
	return infraErr
}

// validateKubeContext checks the configured context exists in kubeconfig
// before any kubectl call is issued, so a typo surfaces as one clear skip
// reason instead of dozens of identical subprocess failures.
func validateKubeContext(contextName string) error {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()

	rawConfig, err := rules.Load()
	if err != nil {
		return fmt.Errorf("failed to load kubeconfig: %w", err)
	}

	if _, ok := rawConfig.Contexts[contextName]; !ok {
		return fmt.Errorf("%w: %s", ErrContextNotFound, contextName)
	}

	return nil
}
