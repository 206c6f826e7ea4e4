package scenario

import (
	"context"
	"fmt"
	"time"
)

// Result is the outcome of running a scenario.
type Result struct {
	Scenario    *Scenario
	StepResults []StepResult
	Passed      bool
	Error       error
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
}

// Runner executes scenarios.
type Runner struct {
	config Config
}

// NewRunner creates a runner with the default configuration.
func NewRunner() *Runner {
	return NewRunnerWithConfig(DefaultConfig())
}

// NewRunnerWithConfig creates a runner. Each run gets its own clock unless
// config.Clock is set.
func NewRunnerWithConfig(config Config) *Runner {
	return &Runner{config: config}
}

// Run executes sc and stops at the first failing step. The context is
// checked between steps.
func (r *Runner) Run(ctx context.Context, sc *Scenario) *Result {
	result := &Result{
		Scenario:  sc,
		StartTime: time.Now(),
	}
	defer func() {
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime)
	}()

	if err := sc.Validate(); err != nil {
		result.Error = fmt.Errorf("invalid scenario: %w", err)
		return result
	}

	session, err := NewSession(sc, r.config)
	if err != nil {
		result.Error = fmt.Errorf("setup failed: %w", err)
		return result
	}
	defer session.Close()

	for i := range sc.Steps {
		if err := ctx.Err(); err != nil {
			result.Error = err
			return result
		}

		step := session.Apply(&sc.Steps[i])
		step.Index = i
		result.StepResults = append(result.StepResults, step)

		if !step.Passed {
			result.Error = fmt.Errorf("step %d (%s): %w", i+1, sc.Steps[i].Action, step.Error)
			return result
		}
	}

	result.Passed = true
	return result
}

// RunAll runs every scenario in order.
func (r *Runner) RunAll(ctx context.Context, scenarios []*Scenario) []*Result {
	results := make([]*Result, 0, len(scenarios))
	for _, sc := range scenarios {
		results = append(results, r.Run(ctx, sc))
	}
	return results
}
