// Package scenarios is the self-verification suite for the local server
// harness. It runs the harness through its contract — scheme resolution,
// server lifecycle, connection establishment, and request execution —
// using the framework runner, so the suite can be executed as a plain
// binary outside the Go test runner.
package scenarios

import (
	"github.com/httpwire/localserver-harness/framework"
	"github.com/httpwire/localserver-harness/harness"
	"github.com/httpwire/localserver-harness/logging"
)

// T represents one scenario in the suite. It embeds the framework
// Context, so the testify assert and require packages accept it in place
// of a *testing.T.
//
// All scenarios in one run share a single harness.Fixture. That is
// deliberate: the fixture's contract is that helper objects are built
// once and reused across tests, with only the server stopping and
// starting in between, and sharing one fixture across the whole run
// exercises exactly that.
type T struct {
	*framework.Context
	Fixture *harness.Fixture
}

// Run executes a named sub-scenario. The fixture is set up before the
// scenario body and torn down after it, like the xUnit setUp/tearDown
// pair; a setup failure is fatal to the scenario.
func (t *T) Run(name string, action func(*T)) {
	t.Context.Run(name, func(c *framework.Context) {
		t1 := &T{Context: c, Fixture: t.Fixture}
		if err := t1.Fixture.SetUp(); err != nil {
			c.Errorf("fixture setup failed: %s", err)
			c.FailNow()
		}
		defer func() {
			if err := t1.Fixture.TearDown(); err != nil {
				c.Errorf("fixture teardown failed: %s", err)
			}
		}()
		action(t1)
	})
}

// RunSuite runs every scenario group against one shared fixture and
// returns the collected results.
func RunSuite(filter framework.Filter, testLogger framework.TestLogger) framework.Results {
	fixture := harness.NewFixture(logging.NullLogger())
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		t := &T{Context: c, Fixture: fixture}

		t.Run("scheme registry", DoSchemeRegistryScenarios)
		t.Run("server lifecycle", DoServerLifecycleScenarios)
		t.Run("connections", DoConnectionScenarios)
		t.Run("request execution", DoRequestExecutionScenarios)
		t.Run("default handlers", DoDefaultHandlerScenarios)
	})
}
