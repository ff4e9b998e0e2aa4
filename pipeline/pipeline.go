// Package pipeline chains spectral transforms into a single transform.
//
// Each step's output feeds the next. Steps that need the wavelength axis
// (core.AxisFitter) receive the axis current at their position, and steps
// that change it (core.AxisMapper) replace the axis seen downstream:
//
//	p, err := pipeline.New(
//	    pipeline.Step{Name: "absorbance", Transformer: preprocessing.NewToAbsorbance()},
//	    pipeline.Step{Name: "resample", Transformer: preprocessing.NewResample(grid)},
//	    pipeline.Step{Name: "snv", Transformer: preprocessing.NewSNV()},
//	)
//	Xt, err := p.FitAxisTransform(X, wavenumbers)
package pipeline

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/spectro/core"
	"github.com/YuminosukeSato/spectro/core/model"
	serrors "github.com/YuminosukeSato/spectro/pkg/errors"
	"github.com/YuminosukeSato/spectro/pkg/log"
)

// Step is a named transform.
type Step struct {
	Name        string
	Transformer core.Transformer
}

// Pipeline applies its steps in order. It is itself a core.Transformer,
// core.AxisFitter and core.AxisMapper, so pipelines nest.
type Pipeline struct {
	steps []Step

	mu         sync.RWMutex
	outputAxis []float64

	counters streamCounters
}

// New creates a pipeline. Step names must be non-empty and unique.
func New(steps ...Step) (*Pipeline, error) {
	if len(steps) == 0 {
		return nil, serrors.NewValidationError("steps", "pipeline needs at least one step", 0)
	}
	seen := make(map[string]bool, len(steps))
	for i, s := range steps {
		switch {
		case s.Name == "":
			return nil, serrors.NewValidationError("steps", fmt.Sprintf("step %d has no name", i), s.Name)
		case seen[s.Name]:
			return nil, serrors.NewValidationError("steps", "duplicate step name", s.Name)
		case s.Transformer == nil:
			return nil, serrors.NewValidationError("steps", "step has no transformer", s.Name)
		}
		seen[s.Name] = true
	}
	return &Pipeline{steps: slices.Clone(steps)}, nil
}

// Steps returns the steps in order.
func (p *Pipeline) Steps() []Step {
	return slices.Clone(p.steps)
}

// Step returns the transformer registered under name.
func (p *Pipeline) Step(name string) (core.Transformer, bool) {
	for _, s := range p.steps {
		if s.Name == name {
			return s.Transformer, true
		}
	}
	return nil, false
}

// Fit fits every step without an axis. Steps that require one fail with a
// MissingInputError.
func (p *Pipeline) Fit(X mat.Matrix) error {
	_, err := p.fit(X, nil, false)
	return err
}

// FitAxis fits every step, threading the wavelength axis x through them.
func (p *Pipeline) FitAxis(X mat.Matrix, x []float64) error {
	if x == nil {
		return serrors.NewMissingInputError("Pipeline.FitAxis", "x")
	}
	_, err := p.fit(X, x, false)
	return err
}

// FitTransform fits every step and returns the output of the last one.
func (p *Pipeline) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	return p.fit(X, nil, true)
}

// FitAxisTransform is FitAxis that also returns the transformed data.
func (p *Pipeline) FitAxisTransform(X mat.Matrix, x []float64) (mat.Matrix, error) {
	if x == nil {
		return nil, serrors.NewMissingInputError("Pipeline.FitAxis", "x")
	}
	return p.fit(X, x, true)
}

func (p *Pipeline) fit(X mat.Matrix, x []float64, wantOutput bool) (mat.Matrix, error) {
	cur := X
	axis := slices.Clone(x)
	last := len(p.steps) - 1

	for i, s := range p.steps {
		start := time.Now()
		needOutput := wantOutput || i < last

		var err error
		if af, ok := s.Transformer.(core.AxisFitter); ok && axis != nil {
			err = af.FitAxis(cur, axis)
		} else {
			err = s.Transformer.Fit(cur)
		}
		if err != nil {
			return nil, stepError(s, log.OperationFit, err)
		}
		var out mat.Matrix
		if needOutput {
			if out, err = s.Transformer.Transform(cur); err != nil {
				return nil, stepError(s, log.OperationTransform, err)
			}
			cur = out
		}
		if am, ok := s.Transformer.(core.AxisMapper); ok {
			axis = am.OutputAxis()
		}
		logStep(s, log.OperationFit, out, start)
	}

	p.mu.Lock()
	p.outputAxis = axis
	p.mu.Unlock()

	if !wantOutput {
		return nil, nil
	}
	return cur, nil
}

// Transform runs X through every fitted step.
func (p *Pipeline) Transform(X mat.Matrix) (mat.Matrix, error) {
	cur := X
	for _, s := range p.steps {
		start := time.Now()
		var err error
		if cur, err = s.Transformer.Transform(cur); err != nil {
			return nil, stepError(s, log.OperationTransform, err)
		}
		logStep(s, log.OperationTransform, cur, start)
	}
	return cur, nil
}

// OutputAxis returns the axis of the pipeline's output after the last
// FitAxis. It is nil when the pipeline was fitted without an axis and no
// step maps one.
func (p *Pipeline) OutputAxis() []float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.outputAxis)
}

// GetParams returns each step's parameters keyed by step name, for steps
// that expose them.
func (p *Pipeline) GetParams() map[string]interface{} {
	params := make(map[string]interface{}, len(p.steps))
	for _, s := range p.steps {
		if pg, ok := s.Transformer.(model.ParameterGetter); ok {
			params[s.Name] = pg.GetParams()
		}
	}
	return params
}

func (p *Pipeline) String() string {
	parts := make([]string, len(p.steps))
	for i, s := range p.steps {
		parts[i] = fmt.Sprintf("(%q, %v)", s.Name, s.Transformer)
	}
	return "Pipeline([" + strings.Join(parts, ", ") + "])"
}

func stepError(s Step, op string, err error) error {
	logger := log.GetLoggerWithName("pipeline").With(log.StepKey, s.Name)
	if logger.Enabled(context.Background(), log.LevelDebug) {
		logger.Debug("pipeline step failed", append(log.ErrAttr(err), log.OperationKey, op)...)
	}
	return serrors.Wrapf(err, "pipeline step %q", s.Name)
}

func logStep(s Step, op string, out mat.Matrix, start time.Time) {
	logger := log.GetLoggerWithName("pipeline")
	if !logger.Enabled(context.Background(), log.LevelDebug) {
		return
	}
	fields := []any{
		log.StepKey, s.Name,
		log.OperationKey, op,
		log.DurationMsKey, float64(time.Since(start).Microseconds()) / 1000,
	}
	if out != nil {
		rows, cols := out.Dims()
		fields = append(fields, log.SamplesKey, rows, log.OutputFeaturesKey, cols)
	}
	logger.Debug("pipeline step completed", fields...)
}
