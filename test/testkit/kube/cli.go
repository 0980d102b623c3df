// Package kube is the harness's access layer to the cluster. All state is
// fetched by shelling out to kubectl and decoding its JSON output into
// typed API structs; nothing in the harness talks to the API server
// directly. The Runner seam exists so tests can substitute canned output.
package kube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	policyv1 "k8s.io/api/policy/v1"
)

var ErrSecretKeyNotFound = errors.New("secret key not found or empty")

// Runner executes a command and returns its stdout. Implementations must
// honor ctx cancellation.
type Runner interface {
	Run(ctx context.Context, command string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, command string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s %v failed: %w, stderr: %s", command, args, err, stderr.String())
	}

	return stdout.Bytes(), nil
}

// Config addresses one cluster and namespace. Defaults match the documented
// lab environment; the suite passes its own values at construction, nothing
// here is process-global.
type Config struct {
	KubectlPath string
	Context     string
	Namespace   string
	CallTimeout time.Duration
}

// CLI issues kubectl calls against a fixed context and namespace.
type CLI struct {
	config Config
	runner Runner
}

func NewCLI(config Config) *CLI {
	return NewCLIWithRunner(config, execRunner{})
}

func NewCLIWithRunner(config Config, runner Runner) *CLI {
	if config.KubectlPath == "" {
		config.KubectlPath = "kubectl"
	}

	if config.CallTimeout == 0 {
		config.CallTimeout = 30 * time.Second
	}

	return &CLI{config: config, runner: runner}
}

func (c *CLI) run(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.CallTimeout)
	defer cancel()

	fullArgs := []string{"--context", c.config.Context, "-n", c.config.Namespace}
	fullArgs = append(fullArgs, args...)

	return c.runner.Run(ctx, c.config.KubectlPath, fullArgs...)
}

// Get fetches a single namespaced resource as JSON and decodes it into the
// given typed API struct.
func (c *CLI) Get(ctx context.Context, kind, name string, into any) error {
	output, err := c.run(ctx, "get", kind, name, "-o", "json")
	if err != nil {
		return err
	}

	if err := json.Unmarshal(output, into); err != nil {
		return fmt.Errorf("failed to decode %s/%s: %w", kind, name, err)
	}

	return nil
}

func (c *CLI) StatefulSet(ctx context.Context, name string) (*appsv1.StatefulSet, error) {
	var sts appsv1.StatefulSet
	if err := c.Get(ctx, "statefulset", name, &sts); err != nil {
		return nil, err
	}

	return &sts, nil
}

func (c *CLI) Service(ctx context.Context, name string) (*corev1.Service, error) {
	var svc corev1.Service
	if err := c.Get(ctx, "service", name, &svc); err != nil {
		return nil, err
	}

	return &svc, nil
}

func (c *CLI) NetworkPolicy(ctx context.Context, name string) (*networkingv1.NetworkPolicy, error) {
	var netpol networkingv1.NetworkPolicy
	if err := c.Get(ctx, "networkpolicy", name, &netpol); err != nil {
		return nil, err
	}

	return &netpol, nil
}

func (c *CLI) PodDisruptionBudget(ctx context.Context, name string) (*policyv1.PodDisruptionBudget, error) {
	var pdb policyv1.PodDisruptionBudget
	if err := c.Get(ctx, "pdb", name, &pdb); err != nil {
		return nil, err
	}

	return &pdb, nil
}

// PodsBySelector lists pods matching a label selector such as "app=foo".
func (c *CLI) PodsBySelector(ctx context.Context, selector string) (*corev1.PodList, error) {
	output, err := c.run(ctx, "get", "pods", "-l", selector, "-o", "json")
	if err != nil {
		return nil, err
	}

	var pods corev1.PodList
	if err := json.Unmarshal(output, &pods); err != nil {
		return nil, fmt.Errorf("failed to decode pod list for selector %q: %w", selector, err)
	}

	return &pods, nil
}

// Logs captures the last tail lines from a workload target such as
// "statefulset/otel-collector".
func (c *CLI) Logs(ctx context.Context, target string, tail int) (string, error) {
	output, err := c.run(ctx, "logs", target, fmt.Sprintf("--tail=%d", tail))
	if err != nil {
		return "", err
	}

	return string(output), nil
}

// Exec runs a command inside the target workload's container and returns
// its stdout. Not usable against distroless images; those are reached via
// port-forward instead.
func (c *CLI) Exec(ctx context.Context, target string, command ...string) (string, error) {
	args := append([]string{"exec", target, "--"}, command...)

	output, err := c.run(ctx, args...)
	if err != nil {
		return "", err
	}

	return string(output), nil
}

// SecretValue reads one field of a secret. The typed decode of corev1.Secret
// handles the base64 value encoding.
func (c *CLI) SecretValue(ctx context.Context, name, key string) (string, error) {
	values, err := c.SecretValues(ctx, name, key)
	if err != nil {
		return "", err
	}

	return values[key], nil
}

// SecretValues reads multiple fields of a secret in a single kubectl call.
func (c *CLI) SecretValues(ctx context.Context, name string, keys ...string) (map[string]string, error) {
	var secret corev1.Secret
	if err := c.Get(ctx, "secret", name, &secret); err != nil {
		return nil, err
	}

	values := make(map[string]string, len(keys))

	for _, key := range keys {
		value, ok := secret.Data[key]
		if !ok || len(value) == 0 {
			return nil, fmt.Errorf("%w: %s[%s]", ErrSecretKeyNotFound, name, key)
		}

		values[key] = string(value)
	}

	return values, nil
}

// ClusterReachable checks that the configured context answers at all. Used
// as the suite gate: failure means the environment is absent, not that the
// pipeline is broken.
func (c *CLI) ClusterReachable(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := c.runner.Run(ctx, c.config.KubectlPath, "--context", c.config.Context, "cluster-info")

	return err
}
