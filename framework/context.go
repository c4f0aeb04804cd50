// Package framework is a minimal scenario runner for verification suites
// that run outside the Go test runner. It provides a Context that behaves
// like testing.T (Errorf, FailNow, Skip), regex-based filtering, and
// pluggable result logging.
package framework

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/httpwire/localserver-harness/logging"
)

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
}

// Context represents one scenario or sub-scenario in a run. It is passed
// to scenario functions the way *testing.T is passed to tests, and it
// satisfies the TestingT interfaces of the testify assert and require
// packages.
type Context struct {
	env         *environment
	id          TestID
	debugLogger logging.CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
}

// Run executes a scenario tree and collects the results. The filter, if
// non-nil, decides which sub-scenarios run.
func Run(
	filter Filter,
	testLogger TestLogger,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:     filter,
		testLogger: testLogger,
	}
	c := &Context{env: env}
	c.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) {
	defer func() {
		if r := recover(); r != nil {
			if c.skipped {
				return
			}
			c.failed = true
			var addError error
			if _, ok := r.(*Context); ok {
				// FailNow panics with the context itself; an empty error
				// list here means it was called without a prior Errorf.
				if len(c.errors) == 0 {
					addError = errors.New("scenario failed with no failure message")
				}
			} else {
				addError = fmt.Errorf("unexpected panic in scenario: %+v\n%s", r, string(debug.Stack()))
			}
			if addError != nil {
				c.errors = append(c.errors, addError)
				c.env.testLogger.TestError(c.id, addError)
			}
		}
		result := TestResult{TestID: c.id, Errors: c.errors}
		c.env.results.Tests = append(c.env.results.Tests, result)
		if c.failed {
			c.env.results.Failures = append(c.env.results.Failures, result)
		}
	}()

	action(c)
}

func (c *Context) ID() TestID {
	return c.id
}

// Run executes a named sub-scenario in its own Context.
func (c *Context) Run(name string, action func(*Context)) {
	id := TestID{Path: append(append([]string(nil), c.id.Path...), name)}

	c.env.testLogger.TestStarted(id)
	if c.env.filter != nil && !c.env.filter(id) {
		c.env.testLogger.TestSkipped(id, "excluded by filter parameters")
		return
	}
	c1 := &Context{
		id:  id,
		env: c.env,
	}
	c1.run(action)
	if c1.skipped {
		c.env.testLogger.TestSkipped(id, c1.skipReason)
	} else {
		c.env.testLogger.TestFinished(id, c1.failed, c1.debugLogger.Output())
	}
}

// Errorf records a failure and continues running the scenario.
func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	err := fmt.Errorf(format, args...)
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, err)
}

// FailNow aborts the current scenario immediately.
func (c *Context) FailNow() {
	panic(c)
}

// Skip aborts the current scenario without marking it failed.
func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

// Debug logs to the scenario's captured debug output.
func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

// DebugLogger returns a logger that writes to the scenario's captured
// debug output, for handing to harness components.
func (c *Context) DebugLogger() logging.Logger {
	return &c.debugLogger
}
