package assert

import (
	"context"
	"strings"

	. "github.com/onsi/gomega"

	"github.com/obslab/pipeline-e2e/test/testkit/logparse"
	"github.com/obslab/pipeline-e2e/test/testkit/suite"
)

const logTailLines = 200

// NoErrorLines captures the workload's recent logs and asserts the
// classifier finds no operational error lines. The first few offending
// lines are included in the failure so the root cause is legible without
// rerunning.
func NoErrorLines(ctx context.Context, target string, source logparse.Source) {
	logs, err := suite.CLI.Logs(ctx, target, logTailLines)
	Expect(err).NotTo(HaveOccurred())

	errorLines := logparse.ClassifyErrors(source, logs)
	Expect(errorLines).To(BeEmpty(),
		"found %d error line(s) in %s logs, first: %s",
		len(errorLines), target, firstLines(errorLines, 3))
}

func firstLines(lines []string, n int) string {
	if len(lines) < n {
		n = len(lines)
	}

	return strings.Join(lines[:n], "\n")
}
