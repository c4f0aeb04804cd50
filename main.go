package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/alessio/shellescape"

	"github.com/httpwire/localserver-harness/framework"
	"github.com/httpwire/localserver-harness/scenarios"
)

func main() {
	var filters framework.RegexFilters
	var debug bool
	var debugAll bool

	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.Var(&filters.MustMatch, "run", "regex pattern(s) to select scenarios to run")
	fs.Var(&filters.MustNotMatch, "skip", "regex pattern(s) to select scenarios not to run")
	fs.BoolVar(&debug, "debug", false, "enable debug logging for failed scenarios")
	fs.BoolVar(&debugAll, "debug-all", false, "enable debug logging for all scenarios")

	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid parameters: %s\n", err)
		os.Exit(1)
	}

	framework.PrintFilterDescription(filters)
	fmt.Println("Running harness verification suite")

	testLogger := framework.ConsoleTestLogger{
		DebugOutputOnFailure: debug || debugAll,
		DebugOutputOnSuccess: debugAll,
	}

	results := scenarios.RunSuite(filters.AsFilter, testLogger)

	fmt.Println()
	framework.PrintResults(results)
	if !results.OK() {
		fmt.Println()
		fmt.Println("To rerun only the failed scenarios:")
		fmt.Printf("  %s\n", rerunCommand(results))
		os.Exit(1)
	}
}

// rerunCommand builds a shell-safe command line that reruns exactly the
// scenarios that failed.
func rerunCommand(results framework.Results) string {
	var b commandBuilder
	b.add(os.Args[0])
	for _, f := range results.Failures {
		b.add("-run", "^"+regexp.QuoteMeta(f.TestID.String())+"$")
	}
	return b.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
