package preprocessing

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/spectro/core/tensor"
	serrors "github.com/YuminosukeSato/spectro/pkg/errors"
	"github.com/YuminosukeSato/spectro/pkg/log"
	"github.com/YuminosukeSato/spectro/signal/savgol"
)

// SavGolSmooth smooths every spectrum with a Savitzky-Golay filter. Unlike
// TakeDerivative it validates its parameters at construction and again in
// Fit.
type SavGolSmooth struct {
	cfg filterConfig
	telemetry
}

// NewSavGolSmooth creates a smoothing transform. Defaults: window 15,
// polyorder 3, deriv 0, delta 1. It fails when the window is even, the
// window does not exceed polyorder, or deriv exceeds polyorder.
func NewSavGolSmooth(opts ...FilterOption) (*SavGolSmooth, error) {
	cfg := filterConfig{windowLength: 15, polyorder: 3, deriv: 0, delta: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &SavGolSmooth{cfg: cfg, telemetry: newTelemetry("SavGolSmooth")}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SavGolSmooth) validate() error {
	c := s.cfg
	switch {
	case c.windowLength%2 == 0:
		return serrors.NewValidationError("window_length", "must be odd", c.windowLength)
	case c.windowLength <= c.polyorder:
		return serrors.NewValidationError("window_length", fmt.Sprintf("must be greater than polyorder (%d)", c.polyorder), c.windowLength)
	case c.deriv > c.polyorder:
		return serrors.NewValidationError("deriv", fmt.Sprintf("must be <= polyorder (%d)", c.polyorder), c.deriv)
	}
	return savgol.Validate(c.windowLength, c.polyorder, c.deriv, c.delta)
}

// Fit re-validates the parameters.
func (s *SavGolSmooth) Fit(X mat.Matrix) error {
	if err := s.validate(); err != nil {
		s.failed(log.OperationFit, err)
		return err
	}
	return nil
}

// Transform smooths X row by row.
func (s *SavGolSmooth) Transform(X mat.Matrix) (mat.Matrix, error) {
	start := time.Now()
	rows, cols, err := tensor.Dims("SavGolSmooth.Transform", X)
	if err != nil {
		return nil, err
	}
	f, err := savgol.New(s.cfg.windowLength, s.cfg.polyorder, savgol.WithDeriv(s.cfg.deriv), savgol.WithDelta(s.cfg.delta))
	if err != nil {
		return nil, err
	}

	out, err := f.ApplyRows(X)
	if err != nil {
		s.failed(log.OperationTransform, err)
		return nil, err
	}
	s.done(log.OperationTransform, rows, cols, start,
		log.WindowLengthKey, s.cfg.windowLength,
		log.PolyOrderKey, s.cfg.polyorder,
		log.DerivKey, s.cfg.deriv,
	)
	return out, nil
}

// FitTransform is Fit followed by Transform.
func (s *SavGolSmooth) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// GetParams returns the transform's hyperparameters.
func (s *SavGolSmooth) GetParams() map[string]interface{} {
	return s.cfg.params()
}

func (s *SavGolSmooth) String() string {
	return fmt.Sprintf("SavGolSmooth(%s)", s.cfg)
}
