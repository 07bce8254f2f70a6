package collector

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Expectation bounds one numeric field of the JSON report. Path uses
// JSONPath syntax ($.summary.success_rate) or plain gjson syntax.
type Expectation struct {
	Name string   `yaml:"name" json:"name"`
	Path string   `yaml:"path" json:"path"`
	Min  *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max  *float64 `yaml:"max,omitempty" json:"max,omitempty"`
}

// Expectations are pass/fail criteria for a run.
type Expectations []Expectation

// ExpectationResult represents the outcome of a single expectation check.
type ExpectationResult struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// ExpectationResults contains all expectation check results.
type ExpectationResults struct {
	Passed  bool                `json:"passed"`
	Results []ExpectationResult `json:"results"`
}

// Validate reports expectations that can never be evaluated.
func (e Expectations) Validate() error {
	var errs []error
	for i, exp := range e {
		if strings.TrimSpace(exp.Path) == "" {
			errs = append(errs, fmt.Errorf("expectation %d: path is required", i))
		}
		if exp.Min == nil && exp.Max == nil {
			errs = append(errs, fmt.Errorf("expectation %d (%s): at least one of min or max is required", i, exp.label()))
		}
		if exp.Min != nil && exp.Max != nil && *exp.Min > *exp.Max {
			errs = append(errs, fmt.Errorf("expectation %d (%s): min %v exceeds max %v", i, exp.label(), *exp.Min, *exp.Max))
		}
	}
	return errors.Join(errs...)
}

// Check evaluates every expectation against a JSON document.
func (e Expectations) Check(doc []byte) *ExpectationResults {
	results := &ExpectationResults{
		Passed:  true,
		Results: make([]ExpectationResult, 0, len(e)),
	}

	valid := gjson.ValidBytes(doc)
	for _, exp := range e {
		r := ExpectationResult{Name: exp.label(), Expected: exp.bounds()}
		value := gjson.GetBytes(doc, convertJSONPath(exp.Path))
		switch {
		case !valid:
			r.Actual = "invalid report"
		case !value.Exists():
			r.Actual = "missing"
		case value.Type != gjson.Number:
			r.Actual = fmt.Sprintf("not a number (%s)", value.Raw)
		default:
			actual := value.Float()
			r.Actual = strconv.FormatFloat(actual, 'f', 4, 64)
			r.Passed = exp.within(actual)
		}
		if !r.Passed {
			results.Passed = false
		}
		results.Results = append(results.Results, r)
	}
	return results
}

// Violations returns only the failed expectation results.
func (r *ExpectationResults) Violations() []ExpectationResult {
	violations := make([]ExpectationResult, 0)
	for _, result := range r.Results {
		if !result.Passed {
			violations = append(violations, result)
		}
	}
	return violations
}

func (e Expectation) label() string {
	if e.Name != "" {
		return e.Name
	}
	return e.Path
}

func (e Expectation) within(v float64) bool {
	if e.Min != nil && v < *e.Min {
		return false
	}
	if e.Max != nil && v > *e.Max {
		return false
	}
	return true
}

func (e Expectation) bounds() string {
	format := func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
	switch {
	case e.Min != nil && e.Max != nil:
		return fmt.Sprintf("[%s, %s]", format(*e.Min), format(*e.Max))
	case e.Min != nil:
		return ">= " + format(*e.Min)
	case e.Max != nil:
		return "<= " + format(*e.Max)
	default:
		return "any"
	}
}

// convertJSONPath converts JSONPath syntax to gjson path format.
// $.summary.success_rate -> summary.success_rate
// $.histograms.positions.counts[0] -> histograms.positions.counts.0
func convertJSONPath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, "$.")
	path = strings.TrimPrefix(path, "$")
	path = strings.ReplaceAll(path, "[", ".")
	path = strings.ReplaceAll(path, "]", "")
	return path
}
