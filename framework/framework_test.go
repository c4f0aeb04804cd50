package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/httpwire/localserver-harness/logging"
)

func TestRunCollectsResults(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("passes", func(c *Context) {})
		c.Run("fails", func(c *Context) {
			c.Errorf("deliberate failure")
		})
		c.Run("fails fast", func(c *Context) {
			c.Errorf("stop here")
			c.FailNow()
			c.Errorf("never reached")
		})
	})

	assert.False(t, results.OK())
	require.Len(t, results.Failures, 2)
	assert.Equal(t, "fails", results.Failures[0].TestID.String())
	assert.Equal(t, "fails fast", results.Failures[1].TestID.String())
	require.Len(t, results.Failures[1].Errors, 1)
	assert.Equal(t, "stop here", results.Failures[1].Errors[0].Error())
}

func TestRunRecoversPanics(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("panics", func(c *Context) {
			panic("unexpected")
		})
	})
	require.Len(t, results.Failures, 1)
	assert.Contains(t, results.Failures[0].Errors[0].Error(), "unexpected panic")
}

func TestSkippedScenarioIsNotAFailure(t *testing.T) {
	ran := false
	results := Run(nil, nil, func(c *Context) {
		c.Run("skipped", func(c *Context) {
			c.SkipWithReason("not applicable here")
			ran = true
		})
	})
	assert.True(t, results.OK())
	assert.False(t, ran)
}

func TestSubScenarioIDsNest(t *testing.T) {
	var ids []string
	results := Run(nil, nil, func(c *Context) {
		c.Run("outer", func(c *Context) {
			c.Run("inner one", func(c *Context) {
				ids = append(ids, c.ID().String())
			})
			c.Run("inner two", func(c *Context) {
				ids = append(ids, c.ID().String())
			})
		})
	})
	assert.True(t, results.OK())
	assert.Equal(t, []string{"outer/inner one", "outer/inner two"}, ids)
}

func TestRegexFilters(t *testing.T) {
	var filters RegexFilters
	require.NoError(t, filters.MustMatch.Set("lifecycle"))
	require.NoError(t, filters.MustNotMatch.Set("slow"))

	assert.True(t, filters.AsFilter(TestID{Path: []string{"server lifecycle", "restart"}}))
	assert.False(t, filters.AsFilter(TestID{Path: []string{"connections"}}))
	assert.False(t, filters.AsFilter(TestID{Path: []string{"server lifecycle", "slow restart"}}))
}

func TestRegexListRejectsInvalidPattern(t *testing.T) {
	var list RegexList
	require.Error(t, list.Set("("))
	assert.False(t, list.IsDefined())
}

func TestFilterSkipsScenarios(t *testing.T) {
	var filters RegexFilters
	require.NoError(t, filters.MustMatch.Set("^wanted$"))

	var ran []string
	results := Run(filters.AsFilter, nil, func(c *Context) {
		c.Run("wanted", func(c *Context) { ran = append(ran, "wanted") })
		c.Run("unwanted", func(c *Context) { ran = append(ran, "unwanted") })
	})
	assert.True(t, results.OK())
	assert.Equal(t, []string{"wanted"}, ran)
}

func TestDebugOutputIsCaptured(t *testing.T) {
	var captured int
	logger := recordingTestLogger{captured: &captured}
	Run(nil, logger, func(c *Context) {
		c.Run("with debug", func(c *Context) {
			c.Debug("message %d", 1)
			c.Debug("message %d", 2)
		})
	})
	assert.Equal(t, 2, captured)
}

type recordingTestLogger struct {
	captured *int
}

func (r recordingTestLogger) TestStarted(TestID)      {}
func (r recordingTestLogger) TestError(TestID, error) {}
func (r recordingTestLogger) TestFinished(id TestID, failed bool, debugOutput logging.CapturedOutput) {
	*r.captured = len(debugOutput)
}
func (r recordingTestLogger) TestSkipped(TestID, string) {}
