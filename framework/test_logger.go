package framework

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/httpwire/localserver-harness/logging"
)

// TestLogger receives scenario lifecycle events during a run.
type TestLogger interface {
	TestStarted(id TestID)
	TestError(id TestID, err error)
	TestFinished(id TestID, failed bool, debugOutput logging.CapturedOutput)
	TestSkipped(id TestID, reason string)
}

type nullTestLogger struct{}

func (n nullTestLogger) TestStarted(TestID)                                {}
func (n nullTestLogger) TestError(TestID, error)                           {}
func (n nullTestLogger) TestFinished(TestID, bool, logging.CapturedOutput) {}
func (n nullTestLogger) TestSkipped(TestID, string)                        {}

var (
	failColor = color.New(color.FgRed, color.Bold)
	skipColor = color.New(color.FgYellow)
	passColor = color.New(color.FgGreen)
)

// ConsoleTestLogger prints scenario progress to stdout. Debug output
// captured during a scenario is shown according to the two flags.
type ConsoleTestLogger struct {
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c ConsoleTestLogger) TestStarted(id TestID) {
	fmt.Printf("[%s]\n", id)
}

func (c ConsoleTestLogger) TestError(id TestID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Printf("  %s\n", line)
	}
}

func (c ConsoleTestLogger) TestFinished(id TestID, failed bool, debugOutput logging.CapturedOutput) {
	if failed {
		failColor.Printf("  FAILED: %s\n", id)
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(os.Stdout, "    DEBUG ")
	}
}

func (c ConsoleTestLogger) TestSkipped(id TestID, reason string) {
	if reason == "" {
		skipColor.Printf("  SKIPPED: %s\n", id)
	} else {
		skipColor.Printf("  SKIPPED: %s (%s)\n", id, reason)
	}
}

// PrintResults summarizes a finished run on stdout.
func PrintResults(results Results) {
	if results.OK() {
		passColor.Printf("All scenarios passed (%d total)\n", len(results.Tests))
		return
	}
	failColor.Printf("%d of %d scenarios failed:\n", len(results.Failures), len(results.Tests))
	for _, f := range results.Failures {
		fmt.Printf("  %s\n", f.TestID)
		for _, err := range f.Errors {
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Printf("    %s\n", line)
			}
		}
	}
}
