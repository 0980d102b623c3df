// Package prom scrapes a Prometheus text exposition endpoint and extracts
// counter values, used for baseline-diff checks against the collector's own
// telemetry.
package prom

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"
)

var ErrMetricNotFound = errors.New("metric not found")

// FlatMetric is one sample flattened out of a metric family.
type FlatMetric struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// Scrape fetches and parses a metrics endpoint.
func Scrape(ctx context.Context, url string) ([]FlatMetric, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d scraping %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return Parse(body)
}

// Parse flattens Prometheus text exposition into individual samples.
//
// Repeated HELP/TYPE lines are tolerated (the families are fully usable in
// that case); any other parse failure rejects the whole capture. A family
// the parser failed inside may be half-built, and a half-built sample reads
// as a phantom zero value, so nothing in a corrupt scrape counts as
// evidence.
func Parse(exposition []byte) ([]FlatMetric, error) {
	parser := expfmt.NewTextParser(model.UTF8Validation)

	families, err := parser.TextToMetricFamilies(strings.NewReader(string(exposition)))
	if err != nil && !isDuplicateFamilyError(err) {
		return nil, fmt.Errorf("failed to parse exposition: %w", err)
	}

	var flat []FlatMetric

	for name, family := range families {
		for _, metric := range family.GetMetric() {
			flat = append(flat, FlatMetric{
				Name:   name,
				Labels: labelMap(metric),
				Value:  sampleValue(family, metric),
			})
		}
	}

	return flat, nil
}

// CounterValue returns the value of the named metric whose labels contain
// labelSubset. Missing metric is an error so baseline recording fails loud
// instead of silently polling against zero.
func CounterValue(metrics []FlatMetric, name string, labelSubset map[string]string) (float64, error) {
	for _, metric := range metrics {
		if metric.Name != name {
			continue
		}

		if containsLabels(metric.Labels, labelSubset) {
			return metric.Value, nil
		}
	}

	return 0, fmt.Errorf("%w: %s with labels %v", ErrMetricNotFound, name, labelSubset)
}

// CounterSum returns the sum of every sample of the named metric whose
// labels contain labelSubset. Counters like the collector's sent-spans are
// exposed as one series per exporter; the sum moves whenever any of them
// does, so baseline-diff checks do not depend on which series a scrape
// happens to list first.
func CounterSum(metrics []FlatMetric, name string, labelSubset map[string]string) (float64, error) {
	var (
		sum   float64
		found bool
	)

	for _, metric := range metrics {
		if metric.Name != name {
			continue
		}

		if containsLabels(metric.Labels, labelSubset) {
			sum += metric.Value
			found = true
		}
	}

	if !found {
		return 0, fmt.Errorf("%w: %s with labels %v", ErrMetricNotFound, name, labelSubset)
	}

	return sum, nil
}

// isDuplicateFamilyError matches the repeated HELP/TYPE parse errors the
// collector's exposition occasionally produces. Families parsed before the
// repeated line are complete and safe to extract from.
func isDuplicateFamilyError(err error) bool {
	msg := err.Error()

	return strings.Contains(msg, "second HELP line") || strings.Contains(msg, "second TYPE line")
}

func labelMap(metric *dto.Metric) map[string]string {
	labels := make(map[string]string, len(metric.GetLabel()))
	for _, pair := range metric.GetLabel() {
		labels[pair.GetName()] = pair.GetValue()
	}

	return labels
}

func sampleValue(family *dto.MetricFamily, metric *dto.Metric) float64 {
	switch family.GetType() {
	case dto.MetricType_COUNTER:
		return metric.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return metric.GetGauge().GetValue()
	case dto.MetricType_UNTYPED:
		return metric.GetUntyped().GetValue()
	default:
		return 0
	}
}

func containsLabels(labels, subset map[string]string) bool {
	for key, value := range subset {
		if labels[key] != value {
			return false
		}
	}

	return true
}
