package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/obslab/pipeline-e2e/test/testkit/kube"
	"github.com/obslab/pipeline-e2e/test/testkit/logparse"
	"github.com/obslab/pipeline-e2e/test/testkit/mcpcheck"
	"github.com/obslab/pipeline-e2e/test/testkit/periodic"
	"github.com/obslab/pipeline-e2e/test/testkit/suite"
)

var errChecksFailed = errors.New("one or more preflight checks failed")

type healthProbe struct {
	target     string
	localPort  int
	remotePort int
	path       string
}

func newRootCommand() *cobra.Command {
	var (
		kubeContext string
		namespace   string
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:           "pipecheck",
		Short:         "Preflight checks for the observability pipeline",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := suite.LoadConfig()
			if err != nil {
				return err
			}

			if kubeContext != "" {
				config.KubeContext = kubeContext
			}

			if namespace != "" {
				config.Namespace = namespace
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck // stderr sync failure is irrelevant on exit

			return runChecks(ctx, logger, config)
		},
	}

	cmd.Flags().StringVar(&kubeContext, "context", "", "kube context (default from config/env)")
	cmd.Flags().StringVar(&namespace, "namespace", "", "namespace (default from config/env)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall deadline for all checks")

	return cmd
}

func runChecks(ctx context.Context, logger *zap.Logger, config suite.Config) error {
	cli := kube.NewCLI(kube.Config{
		KubectlPath: config.KubectlPath,
		Context:     config.KubeContext,
		Namespace:   config.Namespace,
		CallTimeout: config.CallTimeout,
	})

	if err := cli.ClusterReachable(ctx); err != nil {
		return fmt.Errorf("cluster not reachable via context %s: %w", config.KubeContext, err)
	}

	logger.Info("Cluster reachable", zap.String("context", config.KubeContext))

	failed := 0

	for _, name := range suite.StatefulSets {
		if err := checkStatefulSetReady(ctx, cli, name); err != nil {
			logger.Error("StatefulSet not ready", zap.String("name", name), zap.Error(err))
			failed++

			continue
		}

		logger.Info("StatefulSet ready", zap.String("name", name))
	}

	probes := []healthProbe{
		{"statefulset/otel-collector", suite.PortForwardCollectorHealth, 13133, "/"},
		{"statefulset/cribl-stream-standalone", suite.PortForwardStreamHealth, 9000, "/api/v1/health"},
		{"statefulset/cribl-edge-standalone", suite.PortForwardEdgeHealth, 9420, "/api/v1/health"},
	}

	for _, probe := range probes {
		if err := checkHealthEndpoint(ctx, cli, config, probe); err != nil {
			logger.Error("Health endpoint check failed", zap.String("target", probe.target), zap.Error(err))
			failed++

			continue
		}

		logger.Info("Health endpoint OK", zap.String("target", probe.target), zap.String("path", probe.path))
	}

	if err := checkCollectorLogs(ctx, cli); err != nil {
		logger.Error("Collector log check failed", zap.Error(err))
		failed++
	} else {
		logger.Info("Collector logs clean")
	}

	if result, err := mcpcheck.Handshake(ctx, config.MCPEndpoint); err != nil {
		logger.Error("MCP handshake failed", zap.String("endpoint", config.MCPEndpoint), zap.Error(err))
		failed++
	} else {
		logger.Info("MCP handshake OK",
			zap.String("server", result.ServerName),
			zap.String("protocolVersion", result.ProtocolVersion))
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d", errChecksFailed, failed)
	}

	return nil
}

func checkStatefulSetReady(ctx context.Context, cli *kube.CLI, name string) error {
	_, err := periodic.Poll(ctx, periodic.Options{
		Interval: periodic.TelemetryFlowInterval,
		Timeout:  periodic.EventuallyTimeout,
	}, func(ctx context.Context) (int32, error) {
		sts, err := cli.StatefulSet(ctx, name)
		if err != nil {
			return 0, err
		}

		return sts.Status.ReadyReplicas, nil
	}, func(readyReplicas int32) bool {
		return readyReplicas >= 1
	})

	return err
}

func checkHealthEndpoint(ctx context.Context, cli *kube.CLI, config suite.Config, probe healthProbe) error {
	tunnel, err := cli.OpenTunnel(ctx, probe.target, probe.localPort, probe.remotePort, config.TunnelStartupWindow)
	if err != nil {
		return err
	}
	defer tunnel.Close()

	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(fmt.Sprintf("http://%s%s", tunnel.Addr(), probe.path))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// 401 still proves the service is up behind an authenticated endpoint.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusUnauthorized {
		return fmt.Errorf("unexpected status %d from %s%s", resp.StatusCode, probe.target, probe.path)
	}

	return nil
}

func checkCollectorLogs(ctx context.Context, cli *kube.CLI) error {
	logs, err := cli.Logs(ctx, "statefulset/otel-collector", 200)
	if err != nil {
		return err
	}

	if errorLines := logparse.ClassifyErrors(logparse.OTelCollector, logs); len(errorLines) > 0 {
		return fmt.Errorf("%d error line(s) in collector logs, first: %s", len(errorLines), errorLines[0])
	}

	return nil
}
