package preprocessing

import (
	"time"

	"github.com/google/uuid"

	"github.com/YuminosukeSato/spectro/pkg/log"
)

// telemetry carries the identity every transform attaches to its log
// records.
type telemetry struct {
	modelName string
	id        string
}

func newTelemetry(modelName string) telemetry {
	return telemetry{modelName: modelName, id: uuid.NewString()}
}

func (t telemetry) logger() log.Logger {
	return log.GetLoggerWithName("preprocessing").With(
		log.ModelNameKey, t.modelName,
		log.EstimatorIDKey, t.id,
	)
}

// done logs a completed operation on a rows × cols input.
func (t telemetry) done(op string, rows, cols int, start time.Time, fields ...any) {
	if !log.Enabled(log.LevelDebug) {
		return
	}
	base := []any{
		log.OperationKey, op,
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.DurationMsKey, float64(time.Since(start).Microseconds()) / 1000,
	}
	t.logger().Debug(t.modelName+" "+op+" completed", append(base, fields...)...)
}

// failed records an operation that returned err. The error is returned to
// the caller as well, so it is logged at debug level only.
func (t telemetry) failed(op string, err error) {
	if !log.Enabled(log.LevelDebug) {
		return
	}
	t.logger().Debug(t.modelName+" "+op+" failed", append(log.ErrAttr(err), log.OperationKey, op)...)
}
