package core

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidParameter indicates a simulation parameter is out of range.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrEmptyInput indicates an aggregation was asked to reduce zero outcomes.
	ErrEmptyInput = errors.New("empty outcome set")
)

// ParamError describes a single rejected parameter. It matches
// ErrInvalidParameter with errors.Is.
type ParamError struct {
	Name   string
	Value  any
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Name, e.Value, e.Reason)
}

func (e *ParamError) Is(target error) bool {
	return target == ErrInvalidParameter
}

// Params are the inputs of one simulation run.
type Params struct {
	Items          int     `json:"items" yaml:"items"`
	Simulations    int     `json:"simulations" yaml:"simulations"`
	LookRatio      float64 `json:"look_ratio" yaml:"look_ratio"`
	ThresholdRatio float64 `json:"threshold_ratio" yaml:"threshold_ratio"`
}

// Validate checks every parameter and returns all violations joined.
func (p Params) Validate() error {
	var errs []error
	if p.Items < 1 {
		errs = append(errs, &ParamError{Name: "items", Value: p.Items, Reason: "must be >= 1"})
	}
	if p.Simulations < 1 {
		errs = append(errs, &ParamError{Name: "simulations", Value: p.Simulations, Reason: "must be >= 1"})
	}
	if math.IsNaN(p.LookRatio) || p.LookRatio < 0 || p.LookRatio > 1 {
		errs = append(errs, &ParamError{Name: "look_ratio", Value: p.LookRatio, Reason: "must be within [0,1]"})
	}
	if math.IsNaN(p.ThresholdRatio) || p.ThresholdRatio < 0 {
		errs = append(errs, &ParamError{Name: "threshold_ratio", Value: p.ThresholdRatio, Reason: "must be >= 0"})
	}
	return errors.Join(errs...)
}
