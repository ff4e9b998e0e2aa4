package preprocessing

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/spectro/pkg/log"
	"github.com/YuminosukeSato/spectro/signal/savgol"
)

// TakeDerivative differentiates every spectrum with a Savitzky-Golay
// filter. Parameters are not validated up front; invalid combinations and
// spectra shorter than the window surface as errors from Transform.
type TakeDerivative struct {
	cfg filterConfig
	telemetry
}

// NewTakeDerivative creates a derivative transform. Defaults: window 11,
// polyorder 1, deriv 1, delta 1.
func NewTakeDerivative(opts ...FilterOption) *TakeDerivative {
	cfg := filterConfig{windowLength: 11, polyorder: 1, deriv: 1, delta: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &TakeDerivative{cfg: cfg, telemetry: newTelemetry("TakeDerivative")}
}

// Fit is a no-op.
func (d *TakeDerivative) Fit(X mat.Matrix) error {
	return nil
}

// Transform filters all rows of X in one call.
func (d *TakeDerivative) Transform(X mat.Matrix) (mat.Matrix, error) {
	start := time.Now()
	out, err := savgol.FilterRows(X, d.cfg.windowLength, d.cfg.polyorder, d.cfg.deriv, d.cfg.delta)
	if err != nil {
		d.failed(log.OperationTransform, err)
		return nil, err
	}
	rows, cols := out.Dims()
	d.done(log.OperationTransform, rows, cols, start,
		log.WindowLengthKey, d.cfg.windowLength,
		log.PolyOrderKey, d.cfg.polyorder,
		log.DerivKey, d.cfg.deriv,
	)
	return out, nil
}

// FitTransform is Fit followed by Transform.
func (d *TakeDerivative) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := d.Fit(X); err != nil {
		return nil, err
	}
	return d.Transform(X)
}

// GetParams returns the transform's hyperparameters.
func (d *TakeDerivative) GetParams() map[string]interface{} {
	return d.cfg.params()
}

func (d *TakeDerivative) String() string {
	return fmt.Sprintf("TakeDerivative(%s)", d.cfg)
}

func (c filterConfig) params() map[string]interface{} {
	return map[string]interface{}{
		"window_length": c.windowLength,
		"polyorder":     c.polyorder,
		"deriv":         c.deriv,
		"delta":         c.delta,
	}
}

func (c filterConfig) String() string {
	return fmt.Sprintf("window_length=%d, polyorder=%d, deriv=%d, delta=%g", c.windowLength, c.polyorder, c.deriv, c.delta)
}
