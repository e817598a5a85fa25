package cosine

import "runtime"

const (
	// DefaultParallelThreshold is the batch size from which scoring fans out
	// to multiple goroutines.
	DefaultParallelThreshold = 1024

	// minChunk is the smallest number of candidates handed to one goroutine.
	minChunk = 64
)

// Options controls how a batch is scheduled. The numeric result does not
// depend on it beyond floating point tolerance.
type Options struct {
	// ParallelThreshold is the minimum batch size that uses the parallel path.
	// Values <= 0 enable the parallel path for any non-empty batch.
	ParallelThreshold int
	// Workers caps the number of goroutines used by the parallel path.
	// Values <= 1 force sequential scoring.
	Workers int
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns the options used when no Option is supplied.
func DefaultOptions() Options {
	return Options{
		ParallelThreshold: DefaultParallelThreshold,
		Workers:           runtime.GOMAXPROCS(0),
	}
}

// WithParallelThreshold sets the batch size from which scoring runs in parallel.
func WithParallelThreshold(n int) Option {
	return func(o *Options) { o.ParallelThreshold = n }
}

// WithWorkers sets the maximum number of concurrent scoring goroutines.
func WithWorkers(n int) Option {
	return func(o *Options) { o.Workers = n }
}

// Sequential disables the parallel path.
func Sequential() Option {
	return func(o *Options) { o.Workers = 1 }
}

func newOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// parallel reports whether a batch of n candidates should be split.
func (o Options) parallel(n int) bool {
	if o.Workers <= 1 || n < 2 {
		return false
	}
	return n >= o.ParallelThreshold
}

// chunkSize splits n candidates across the configured workers.
func (o Options) chunkSize(n int) int {
	size := (n + o.Workers - 1) / o.Workers
	if size < minChunk {
		size = minChunk
	}
	return size
}
