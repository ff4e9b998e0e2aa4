package config

import (
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/spectro/core"
	serrors "github.com/YuminosukeSato/spectro/pkg/errors"
	"github.com/YuminosukeSato/spectro/preprocessing"
	"github.com/YuminosukeSato/spectro/signal/wavelet"
)

// Builder constructs a transform from its params.
type Builder func(p *Params) (core.Transformer, error)

// Registry maps step types to builders.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// Register adds or replaces the builder for stepType.
func (r *Registry) Register(stepType string, b Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[stepType] = b
}

// Types returns the registered step types, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.builders))
	for t := range r.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Build constructs a transform of stepType. Unknown types, mistyped params
// and params the builder does not read are ValidationErrors.
func (r *Registry) Build(stepType string, params map[string]interface{}) (core.Transformer, error) {
	r.mu.RLock()
	b, ok := r.builders[stepType]
	r.mu.RUnlock()
	if !ok {
		return nil, serrors.NewValidationError("type", "unknown step type", stepType)
	}

	p := newParams(stepType, params)
	tr, err := b(p)
	if err != nil {
		return nil, err
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	if err := p.unused(); err != nil {
		return nil, err
	}
	return tr, nil
}

// DefaultRegistry knows every transform in package preprocessing.
var DefaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("snv", buildSNV)
	r.Register("msc", buildMSC)
	r.Register("derivative", buildDerivative)
	r.Register("savgol_smooth", buildSavGolSmooth)
	r.Register("wavelet_denoise", buildWaveletDenoise)
	r.Register("absorbance", buildAbsorbance)
	r.Register("resample", buildResample)
	r.Register("standard_scaler", buildStandardScaler)
	return r
}

func buildSNV(p *Params) (core.Transformer, error) {
	var opts []preprocessing.SNVOption
	if name, ok := p.String("center"); ok {
		red, err := preprocessing.ParseReduction(name)
		if err != nil {
			return nil, err
		}
		opts = append(opts, preprocessing.WithCenter(red))
	}
	if name, ok := p.String("scale"); ok {
		red, err := preprocessing.ParseReduction(name)
		if err != nil {
			return nil, err
		}
		opts = append(opts, preprocessing.WithScale(red))
	}
	if eps, ok := p.Float("eps"); ok {
		opts = append(opts, preprocessing.WithSNVEps(eps))
	}
	return preprocessing.NewSNV(opts...), nil
}

func buildMSC(p *Params) (core.Transformer, error) {
	var opts []preprocessing.MSCOption
	if ref, ok := p.String("reference"); ok {
		switch ref {
		case "mean", "median":
			opts = append(opts, preprocessing.WithReferenceMethod(ref))
		default:
			red, err := preprocessing.ParseReduction(ref)
			if err != nil {
				return nil, err
			}
			opts = append(opts, preprocessing.WithReferenceFunc(red))
		}
	}
	if spectrum, ok := p.Floats("reference_spectrum"); ok {
		opts = append(opts, preprocessing.WithReferenceSpectrum(spectrum))
	}
	if n, ok := p.Int("n_jobs"); ok {
		opts = append(opts, preprocessing.WithNJobs(n))
	}
	return preprocessing.NewMSC(opts...), nil
}

func filterOptions(p *Params) []preprocessing.FilterOption {
	var opts []preprocessing.FilterOption
	if v, ok := p.Int("window_length"); ok {
		opts = append(opts, preprocessing.WithWindowLength(v))
	}
	if v, ok := p.Int("polyorder"); ok {
		opts = append(opts, preprocessing.WithPolyOrder(v))
	}
	if v, ok := p.Int("deriv"); ok {
		opts = append(opts, preprocessing.WithDeriv(v))
	}
	if v, ok := p.Float("delta"); ok {
		opts = append(opts, preprocessing.WithDelta(v))
	}
	return opts
}

func buildDerivative(p *Params) (core.Transformer, error) {
	return preprocessing.NewTakeDerivative(filterOptions(p)...), nil
}

func buildSavGolSmooth(p *Params) (core.Transformer, error) {
	opts := filterOptions(p)
	if err := p.Err(); err != nil {
		return nil, err
	}
	return preprocessing.NewSavGolSmooth(opts...)
}

func buildWaveletDenoise(p *Params) (core.Transformer, error) {
	var opts []preprocessing.WaveletOption
	if name, ok := p.String("wavelet"); ok {
		if _, err := wavelet.Lookup(name); err != nil {
			return nil, err
		}
		opts = append(opts, preprocessing.WithWavelet(name))
	}
	if level, ok := p.Int("level"); ok {
		if level < 0 {
			return nil, serrors.NewValidationError("level", "must be non-negative", level)
		}
		opts = append(opts, preprocessing.WithLevel(level))
	}
	if mode, ok := p.String("threshold_mode"); ok {
		m, err := wavelet.ParseThresholdMode(mode)
		if err != nil {
			return nil, err
		}
		opts = append(opts, preprocessing.WithThresholdMode(m))
	}
	return preprocessing.NewWaveletDenoise(opts...), nil
}

func buildAbsorbance(p *Params) (core.Transformer, error) {
	var opts []preprocessing.AbsorbanceOption
	if eps, ok := p.Float("eps"); ok {
		if !(eps > 0 && eps <= 1) {
			return nil, serrors.NewValidationError("eps", "must be in (0, 1]", eps)
		}
		opts = append(opts, preprocessing.WithAbsorbanceEps(eps))
	}
	return preprocessing.NewToAbsorbance(opts...), nil
}

// buildResample takes either target_x or an evenly spaced grid given by
// start, stop and num.
func buildResample(p *Params) (core.Transformer, error) {
	target, hasTarget := p.Floats("target_x")
	start, hasStart := p.Float("start")
	stop, hasStop := p.Float("stop")
	num, hasNum := p.Int("num")
	if err := p.Err(); err != nil {
		return nil, err
	}

	grid := hasStart || hasStop || hasNum
	switch {
	case hasTarget && grid:
		return nil, serrors.NewValidationError("target_x", "give either target_x or start/stop/num, not both", target)
	case grid:
		if !hasStart || !hasStop || !hasNum {
			return nil, serrors.NewValidationError("num", "start, stop and num are all required", num)
		}
		if num < 2 {
			return nil, serrors.NewValidationError("num", "must be at least 2", num)
		}
		target = floats.Span(make([]float64, num), start, stop)
	case !hasTarget || len(target) == 0:
		return nil, serrors.NewValidationError("target_x", "a non-empty target axis is required", target)
	}

	var opts []preprocessing.ResampleOption
	if name, ok := p.String("interpolation"); ok {
		kind, err := preprocessing.ParseInterpolation(name)
		if err != nil {
			return nil, err
		}
		opts = append(opts, preprocessing.WithInterpolation(kind))
	}
	return preprocessing.NewResample(target, opts...), nil
}

func buildStandardScaler(p *Params) (core.Transformer, error) {
	var opts []preprocessing.ScalerOption
	if v, ok := p.Bool("with_mean"); ok {
		opts = append(opts, preprocessing.WithMean(v))
	}
	if v, ok := p.Bool("with_std"); ok {
		opts = append(opts, preprocessing.WithStd(v))
	}
	return preprocessing.NewStandardScaler(opts...), nil
}
