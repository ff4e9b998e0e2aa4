// Package errors provides the error taxonomy and warning system shared by all
// spectro packages. Every constructor attaches a stack trace through
// cockroachdb/errors so that failures deep inside a transform can be traced
// back to the calling pipeline step.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("spectro-warning: %v\n", w)
	}
	// set by pkg/log to avoid an import cycle
	zerologWarnFunc func(warning error)
)

// SetWarningHandler replaces the handler used by Warn when no zerolog sink
// has been installed.
//
// Example:
//
//	errors.SetWarningHandler(func(w error) {
//	    // drop warnings
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc installs a structured warning sink. Passing nil restores
// the plain handler.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a non-fatal warning. The zerolog sink takes precedence over the
// plain handler.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Warnings
//
// ===========================================================================

// ExtrapolationWarning is emitted when a resampling target lies outside the
// original axis. Values there extrapolate the interpolant's end pieces.
type ExtrapolationWarning struct {
	Op       string
	Count    int
	AxisMin  float64
	AxisMax  float64
	TargetLo float64
	TargetHi float64
}

func (w *ExtrapolationWarning) Error() string {
	return fmt.Sprintf("%s: %d target points fall outside the original axis [%g, %g] (targets span [%g, %g]); end pieces are extrapolated",
		w.Op, w.Count, w.AxisMin, w.AxisMax, w.TargetLo, w.TargetHi)
}

// MarshalZerologObject adds the warning fields to a zerolog event.
func (w *ExtrapolationWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("operation", w.Op).
		Int("count", w.Count).
		Float64("axis_min", w.AxisMin).
		Float64("axis_max", w.AxisMax).
		Str("type", "ExtrapolationWarning")
}

// NewExtrapolationWarning creates a new ExtrapolationWarning.
func NewExtrapolationWarning(op string, count int, axisMin, axisMax, lo, hi float64) *ExtrapolationWarning {
	return &ExtrapolationWarning{Op: op, Count: count, AxisMin: axisMin, AxisMax: axisMax, TargetLo: lo, TargetHi: hi}
}

// BoundaryEffectWarning is emitted when a wavelet decomposition level exceeds
// the maximum useful level for the signal length.
type BoundaryEffectWarning struct {
	Level    int
	MaxLevel int
}

func (w *BoundaryEffectWarning) Error() string {
	return fmt.Sprintf("level value of %d is too high (max useful level %d): all coefficients will experience boundary effects", w.Level, w.MaxLevel)
}

// MarshalZerologObject adds the warning fields to a zerolog event.
func (w *BoundaryEffectWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Int("level", w.Level).
		Int("max_level", w.MaxLevel).
		Str("type", "BoundaryEffectWarning")
}

// NewBoundaryEffectWarning creates a new BoundaryEffectWarning.
func NewBoundaryEffectWarning(level, maxLevel int) *BoundaryEffectWarning {
	return &BoundaryEffectWarning{Level: level, MaxLevel: maxLevel}
}

// ===========================================================================
//
//	Structured errors
//
// ===========================================================================

// NotFittedError is returned when Transform needs fitted parameters that Fit
// has not produced yet.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("spectro: %s: this transform is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace.
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// DimensionError reports a shape mismatch along one axis.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for samples, 1 for wavelengths
}

func (e *DimensionError) axisName() string {
	if e.Axis == 0 {
		return "samples"
	}
	return "wavelengths"
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("spectro: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, e.axisName(), e.Expected, e.Got)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", e.axisName()).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ValidationError reports a hyperparameter that fails validation.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("spectro: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stack trace.
func NewValidationError(param, reason string, value interface{}) error {
	return errors.WithStack(&ValidationError{ParamName: param, Reason: reason, Value: value})
}

// MissingInputError reports that a required input, other than the spectral
// matrix itself, was not supplied.
type MissingInputError struct {
	Op    string
	Input string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("spectro: %s: required input '%s' was not provided", e.Op, e.Input)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *MissingInputError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("input", e.Input).
		Str("type", "MissingInputError")
}

// NewMissingInputError creates a MissingInputError with a stack trace.
func NewMissingInputError(op, input string) error {
	return errors.WithStack(&MissingInputError{Op: op, Input: input})
}

// ValueError reports an argument with an unusable value.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("spectro: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace.
func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// NumericalInstabilityError reports NaN, Inf or a degenerate value produced
// inside a numerical routine.
type NumericalInstabilityError struct {
	Operation string
	Values    []float64
	Row       int // -1 when not tied to a row
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	if e.Row >= 0 {
		return fmt.Sprintf("spectro: numerical instability detected in %s at row %d. Values: [%s]", e.Operation, e.Row, valStr)
	}
	return fmt.Sprintf("spectro: numerical instability detected in %s. Values: [%s]", e.Operation, valStr)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *NumericalInstabilityError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Operation).
		Int("row", e.Row).
		Floats64("values", e.Values).
		Str("type", "NumericalInstabilityError")
}

// NewNumericalInstabilityError creates a NumericalInstabilityError with a
// stack trace.
func NewNumericalInstabilityError(operation string, values []float64, row int) error {
	return errors.WithStack(&NumericalInstabilityError{Operation: operation, Values: values, Row: row})
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap annotates err with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf annotates err with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates an error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack attaches a stack trace to err.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Sentinel errors
//
// ===========================================================================

var (
	// ErrEmptyData is returned for matrices or slices with no elements.
	ErrEmptyData = New("empty data")

	// ErrUnknownWavelet is returned for wavelet names outside the supported families.
	ErrUnknownWavelet = New("unknown wavelet")
)
