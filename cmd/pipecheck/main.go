// pipecheck is a preflight for the pipeline suites: it verifies the cluster
// answers, every pipeline workload is ready, the health endpoints respond,
// and the MCP server completes its handshake. Intended to be run before the
// e2e suites, or on its own as a quick deployment sanity check.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
