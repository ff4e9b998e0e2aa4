package pipeline

import (
	"context"
	"sync/atomic"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/spectro/core/parallel"
	"github.com/YuminosukeSato/spectro/core/tensor"
	serrors "github.com/YuminosukeSato/spectro/pkg/errors"
)

// Batch is one result of Stream, in input order.
type Batch struct {
	Seq int
	X   mat.Matrix
	Err error
}

// StreamMetrics counts the work done by Stream and TransformChunked.
type StreamMetrics struct {
	Batches uint64
	Samples uint64
	Errors  uint64
}

type streamCounters struct {
	batches atomic.Uint64
	samples atomic.Uint64
	errors  atomic.Uint64
}

func (c *streamCounters) record(X mat.Matrix, err error) {
	c.batches.Add(1)
	if err != nil {
		c.errors.Add(1)
		return
	}
	rows, _ := X.Dims()
	c.samples.Add(uint64(rows))
}

// Metrics returns the counters accumulated since the pipeline was created.
func (p *Pipeline) Metrics() StreamMetrics {
	return StreamMetrics{
		Batches: p.counters.batches.Load(),
		Samples: p.counters.samples.Load(),
		Errors:  p.counters.errors.Load(),
	}
}

// Stream transforms every matrix received from in with the fitted pipeline
// and sends the results, in order, on the returned channel. The channel is
// closed when in is closed or ctx is done. A failing batch is reported in
// its Batch and does not stop the stream.
func (p *Pipeline) Stream(ctx context.Context, in <-chan mat.Matrix, bufferSize int) <-chan Batch {
	out := make(chan Batch, max(bufferSize, 0))
	go func() {
		defer close(out)
		seq := 0
		for {
			select {
			case <-ctx.Done():
				return
			case X, ok := <-in:
				if !ok {
					return
				}
				Xt, err := p.Transform(X)
				p.counters.record(Xt, err)
				select {
				case out <- Batch{Seq: seq, X: Xt, Err: err}:
				case <-ctx.Done():
					return
				}
				seq++
			}
		}
	}()
	return out
}

type slicer interface {
	Slice(i, k, j, l int) mat.Matrix
}

// TransformChunked transforms X in blocks of chunkSize rows spread over
// nJobs workers (nJobs <= 0 uses every CPU) and stacks the results. Every
// fitted transform in this module maps rows independently, so the result
// equals Transform(X).
func (p *Pipeline) TransformChunked(X mat.Matrix, chunkSize, nJobs int) (mat.Matrix, error) {
	rows, cols, err := tensor.Dims("Pipeline.TransformChunked", X)
	if err != nil {
		return nil, err
	}
	if chunkSize <= 0 {
		return nil, serrors.NewValidationError("chunk_size", "must be positive", chunkSize)
	}

	src, ok := X.(slicer)
	if !ok {
		src = mat.DenseCopyOf(X)
	}

	nChunks := (rows + chunkSize - 1) / chunkSize
	results := make([]mat.Matrix, nChunks)
	err = parallel.ForEach(nChunks, nJobs, func(c int) error {
		start := c * chunkSize
		end := min(start+chunkSize, rows)
		Xt, err := p.Transform(src.Slice(start, end, 0, cols))
		p.counters.record(Xt, err)
		if err != nil {
			return serrors.Wrapf(err, "chunk %d (rows %d-%d)", c, start, end)
		}
		results[c] = Xt
		return nil
	})
	if err != nil {
		return nil, err
	}

	_, outCols := results[0].Dims()
	out := mat.NewDense(rows, outCols, nil)
	for c, r := range results {
		start := c * chunkSize
		n, _ := r.Dims()
		out.Slice(start, start+n, 0, outCols).(*mat.Dense).Copy(r)
	}
	return out, nil
}
