package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Parse parses and validates a scenario from YAML bytes.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, &LoadError{
			Message: "failed to parse YAML",
			Cause:   err,
		}
	}

	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Load loads a scenario from a file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	sc, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{File: path, Message: err.Error()}
	}
	return sc, nil
}

// LoadDirectory loads every .yaml and .yml file in dir, in name order.
func LoadDirectory(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{
			File:    dir,
			Message: "failed to read directory",
			Cause:   err,
		}
	}

	var scenarios []*Scenario
	for _, entry := range entries {
		if entry.IsDir() || !isScenarioFile(entry.Name()) {
			continue
		}
		sc, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}

func isScenarioFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// Validate checks the scenario for structural errors.
func (sc *Scenario) Validate() error {
	if sc.Name == "" {
		return &LoadError{Message: "scenario name is required"}
	}
	if len(sc.Steps) == 0 {
		return &LoadError{Message: "scenario must have at least one step"}
	}
	if err := sc.ValidateSetup(); err != nil {
		return err
	}

	for i := range sc.Steps {
		if err := sc.Steps[i].Validate(); err != nil {
			var le *LoadError
			if errors.As(err, &le) {
				le.Step = i + 1
				return le
			}
			return &LoadError{Step: i + 1, Message: err.Error()}
		}
	}
	return nil
}

// ValidateSetup checks the viewport, elements and monitor only. Scenarios
// driven interactively need no steps.
func (sc *Scenario) ValidateSetup() error {
	if sc.Viewport.Width < 0 || sc.Viewport.Height < 0 {
		return &LoadError{Message: "viewport size must not be negative"}
	}

	ids := make(map[string]bool, len(sc.Elements))
	for _, el := range sc.Elements {
		if el.ID == "" {
			return &LoadError{Message: "element id is required"}
		}
		if ids[el.ID] {
			return &LoadError{Message: "duplicate element id " + el.ID}
		}
		if el.Parent != "" && !ids[el.Parent] {
			return &LoadError{Message: "element " + el.ID + " references unknown parent " + el.Parent}
		}
		ids[el.ID] = true
	}

	if sc.Monitor.Element == "" {
		return &LoadError{Message: "monitor element is required"}
	}
	if !ids[sc.Monitor.Element] {
		return &LoadError{Message: "monitor element " + sc.Monitor.Element + " is not declared"}
	}
	switch sc.Monitor.Strategy {
	case "", StrategyNone, StrategyPolling, StrategyEvent, StrategyDefault:
	default:
		return &LoadError{Message: "unknown strategy " + sc.Monitor.Strategy}
	}
	if err := checkDuration(sc.Monitor.Interval); err != nil {
		return &LoadError{Message: "invalid interval", Cause: err}
	}
	if err := checkDuration(sc.Monitor.Throttle); err != nil {
		return &LoadError{Message: "invalid throttle", Cause: err}
	}
	return nil
}

// Validate checks a single step.
func (s *Step) Validate() error {
	action, ok := actions[s.Action]
	if !ok {
		return &LoadError{Message: "unknown action " + s.Action}
	}
	if action.needsElement && s.Element == "" {
		return &LoadError{Message: s.Action + " requires an element"}
	}
	if action.needsValue && s.Value == "" {
		return &LoadError{Message: s.Action + " requires a value"}
	}
	if s.Action == ActionAdvance {
		if s.Duration == "" {
			return &LoadError{Message: "advance requires a duration"}
		}
		if err := checkDuration(s.Duration); err != nil {
			return &LoadError{Message: "invalid duration", Cause: err}
		}
	}
	return nil
}

func checkDuration(s string) error {
	if s == "" {
		return nil
	}
	_, err := time.ParseDuration(s)
	return err
}
