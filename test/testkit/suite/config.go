package suite

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the harness configuration. Defaults match the documented lab
// environment (OrbStack cluster, monitoring namespace); every value can be
// overridden through PIPE_E2E_CONFIG (a YAML file) and then individual
// environment variables.
type Config struct {
	KubeContext string `yaml:"kubeContext"`
	Namespace   string `yaml:"namespace"`
	KubectlPath string `yaml:"kubectlPath"`

	// NodePort endpoints reached directly from the test host.
	OTLPGRPCEndpoint string `yaml:"otlpGrpcEndpoint"`
	OTLPHTTPEndpoint string `yaml:"otlpHttpEndpoint"`
	MCPEndpoint      string `yaml:"mcpEndpoint"`

	SplunkMgmtURL   string `yaml:"splunkMgmtUrl"`
	SplunkSecret    string `yaml:"splunkSecret"`
	SplunkVerifyTLS bool   `yaml:"splunkVerifyTls"`

	// Field names inside the Splunk secret.
	SplunkHECURLKey        string `yaml:"splunkHecUrlKey"`
	SplunkAdminPasswordKey string `yaml:"splunkAdminPasswordKey"`

	CallTimeout         time.Duration `yaml:"callTimeout"`
	TunnelStartupWindow time.Duration `yaml:"tunnelStartupWindow"`
}

// Local port-forward ports. Each check uses its own port so checks do not
// collide when the test runner executes suites in parallel.
const (
	PortForwardCollectorHealth  = 13133
	PortForwardCollectorMetrics = 13888
	PortForwardStreamHealth     = 19420
	PortForwardEdgeHealth       = 19421
	PortForwardStreamLeader     = 19424
)

// StatefulSets names every workload the pipeline consists of.
var StatefulSets = []string{
	"otel-collector",
	"cribl-edge-managed",
	"cribl-edge-standalone",
	"cribl-stream-standalone",
	"cribl-mcp-server",
}

func defaultConfig() Config {
	return Config{
		KubeContext:            "orbstack",
		Namespace:              "monitoring",
		KubectlPath:            "kubectl",
		OTLPGRPCEndpoint:       "localhost:30317",
		OTLPHTTPEndpoint:       "http://localhost:30318",
		MCPEndpoint:            "http://localhost:30030/mcp",
		SplunkMgmtURL:          "https://192.168.0.200:8089",
		SplunkSecret:           "splunk-hec",
		SplunkHECURLKey:        "hec-url",
		SplunkAdminPasswordKey: "admin-password",
		CallTimeout:            30 * time.Second,
		TunnelStartupWindow:    15 * time.Second,
	}
}

// LoadConfig builds the effective configuration: defaults, then the YAML
// file named by PIPE_E2E_CONFIG (if any), then environment variables.
func LoadConfig() (Config, error) {
	config := defaultConfig()

	if path := os.Getenv("PIPE_E2E_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := yaml.Unmarshal(raw, &config); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	overrideString(&config.KubeContext, "KUBE_CONTEXT")
	overrideString(&config.Namespace, "KUBE_NAMESPACE")
	overrideString(&config.KubectlPath, "KUBECTL_PATH")
	overrideString(&config.OTLPGRPCEndpoint, "OTLP_GRPC_ENDPOINT")
	overrideString(&config.OTLPHTTPEndpoint, "OTLP_HTTP_ENDPOINT")
	overrideString(&config.MCPEndpoint, "MCP_ENDPOINT")
	overrideString(&config.SplunkMgmtURL, "SPLUNK_MGMT_URL")
	overrideString(&config.SplunkSecret, "SPLUNK_SECRET")

	return config, nil
}

func overrideString(target *string, envVar string) {
	if value := os.Getenv(envVar); value != "" {
		*target = value
	}
}
