// Package logparse classifies raw log captures from pipeline components:
// operational error lines, "data is flowing" stats evidence, and exact
// key/value presence in configuration dumps.
//
// The log formats are mixed (free text, tab-delimited, embedded JSON), so
// classification is deliberately line- and substring-based rather than a
// strict parse: a malformed line is never evidence, and never a crash.
package logparse

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Source describes how to recognize operational errors in one component's
// log output: a literal marker substring and a closed set of benign-noise
// substrings that suppress classification even when the marker is present.
//
// The benign list is intentionally hardcoded per source. It is part of the
// classifier's contract: every entry names a specific, understood kind of
// noise, and adding one requires a code change.
type Source struct {
	Name        string
	ErrorMarker string
	BenignNoise []string
}

// OTelCollector matches the collector's tab-delimited zap output
// (TIMESTAMP\tLEVEL\tCALLER\tMESSAGE\tFIELDS).
//
// "Failed to open file" comes from fileconsumer tracking pod log paths that
// are cleaned up after short-lived pods (CronJobs) complete. "Exporting
// failed. Will retry" is the exporter's transient retry notice.
var OTelCollector = Source{
	Name:        "otel-collector",
	ErrorMarker: "\terror\t",
	BenignNoise: []string{
		"Failed to open file",
		"Exporting failed. Will retry",
	},
}

// CriblStream matches Cribl Stream's JSON-per-line log output. ENOENT
// entries occur during config reloads when workers race the config writer.
var CriblStream = Source{
	Name:        "cribl-stream",
	ErrorMarker: `"level":"error"`,
	BenignNoise: []string{
		"ENOENT",
	},
}

// ClassifyErrors returns the lines of text that indicate a real operational
// error for the given source: the line contains the source's error marker
// and none of its benign-noise substrings. Matching is literal, no
// normalization. Empty input yields nil.
func ClassifyErrors(source Source, text string) []string {
	var errorLines []string

	for line := range strings.Lines(text) {
		line = strings.TrimRight(line, "\n")
		if !strings.Contains(line, source.ErrorMarker) {
			continue
		}

		if containsAny(line, source.BenignNoise) {
			continue
		}

		errorLines = append(errorLines, line)
	}

	return errorLines
}

func containsAny(line string, substrings []string) bool {
	for _, s := range substrings {
		if strings.Contains(line, s) {
			return true
		}
	}

	return false
}

// statsMarker is the message tag Cribl Stream puts on its periodic
// per-route throughput snapshots.
const statsMarker = "_raw stats"

type statRecord struct {
	Message   string  `json:"message"`
	OutEvents float64 `json:"outEvents"`
	OutBytes  float64 `json:"outBytes"`
}

// FindFlowingStats returns the raw log lines that prove data is physically
// leaving the pipeline: JSON stats records with message "_raw stats",
// outEvents > 0 and outBytes > 0.
//
// outBytes is the flow-confirmation signal. A routing-only event increments
// outEvents without any network transmission, so event count alone would
// report flow while the external sink is unreachable.
//
// Lines that fail to decode are skipped silently; mixed-content logs make
// decode failures the normal case, not an error. Order is preserved, no
// deduplication.
func FindFlowingStats(text string) []string {
	var flowing []string

	for line := range strings.Lines(text) {
		line = strings.TrimRight(line, "\n")

		var record statRecord
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			continue
		}

		if record.Message == statsMarker && record.OutEvents > 0 && record.OutBytes > 0 {
			flowing = append(flowing, line)
		}
	}

	return flowing
}

// ValuePresentAsKey reports whether blob contains a line that is exactly
// "key: value", ignoring leading indentation and trailing whitespace. The
// value is matched in full: a configured value that merely starts with the
// target (e.g. ".../collector/health" vs ".../collector") does not match.
//
// This is a presence check over a YAML-like dump, not a YAML parse; it only
// needs to confirm that the exact value is configured under the key.
func ValuePresentAsKey(key, value, blob string) bool {
	pattern := `(?m)^\s*` + regexp.QuoteMeta(key) + `:\s*` + regexp.QuoteMeta(value) + `\s*$`

	return regexp.MustCompile(pattern).MatchString(blob)
}
