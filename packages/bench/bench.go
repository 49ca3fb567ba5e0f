package bench

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"golang.org/x/time/rate"

	"github.com/curlkit/curlkit/packages/client"
)

// Config controls one benchmark run.
type Config struct {
	// Method and Path identify the request to repeat.
	Method string
	Path   string
	// Options are the per-call options applied to every iteration.
	Options *client.Options
	// Requests is the total number of iterations. Must be positive.
	Requests int
	// Concurrency is the number of parallel workers. Zero means 1.
	Concurrency int
	// RPS caps the request rate across all workers. Zero means
	// unlimited.
	RPS float64
}

// Validate checks the config before a run.
func (c *Config) Validate() error {
	if c.Method == "" {
		return fmt.Errorf("bench: missing method")
	}
	if c.Requests <= 0 {
		return fmt.Errorf("bench: requests must be positive, got %d", c.Requests)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("bench: concurrency must not be negative, got %d", c.Concurrency)
	}
	return nil
}

// Result is the aggregated outcome of a run. Latency percentiles come
// from an HDR histogram recorded in microseconds.
type Result struct {
	Requests int64
	Success  int64
	Errors   int64

	Duration time.Duration
	RPS      float64

	P50  time.Duration
	P95  time.Duration
	P99  time.Duration
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
}

// ErrorRate returns the error fraction, 0 when nothing ran.
func (r *Result) ErrorRate() float64 {
	if r.Requests == 0 {
		return 0
	}
	return float64(r.Errors) / float64(r.Requests)
}

// Runner drives the iterations through a shared client.
type Runner struct {
	client *client.Client
	cfg    Config

	mu        sync.Mutex
	histogram *hdrhistogram.Histogram

	total   atomic.Int64
	success atomic.Int64
	errors  atomic.Int64
}

// NewRunner creates a runner for the given client and config.
func NewRunner(c *client.Client, cfg Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 1
	}
	return &Runner{
		client: c,
		cfg:    cfg,
		// Histogram: 1us to 60s range, 3 significant digits
		histogram: hdrhistogram.New(1, 60_000_000, 3),
	}, nil
}

// Run executes the configured iterations and returns the aggregate.
// A 4xx/5xx response and a transport failure both count as errors; the
// run itself keeps going. Cancellation stops scheduling new iterations.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	var limiter *rate.Limiter
	if r.cfg.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.cfg.RPS), 1)
	}

	jobs := make(chan struct{})
	var wg sync.WaitGroup

	start := time.Now()

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				if limiter != nil {
					if err := limiter.Wait(ctx); err != nil {
						return
					}
				}
				r.one()
			}
		}()
	}

dispatch:
	for i := 0; i < r.cfg.Requests; i++ {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- struct{}{}:
		}
	}
	close(jobs)
	wg.Wait()

	elapsed := time.Since(start)
	return r.result(elapsed), ctx.Err()
}

func (r *Runner) one() {
	began := time.Now()
	_, err := r.client.Request(r.cfg.Method, r.cfg.Path, r.cfg.Options)
	elapsed := time.Since(began)

	r.total.Add(1)
	if err != nil {
		r.errors.Add(1)
	} else {
		r.success.Add(1)
	}

	latencyUs := elapsed.Microseconds()
	if latencyUs < 1 {
		latencyUs = 1
	}
	if latencyUs > 60_000_000 {
		latencyUs = 60_000_000
	}

	r.mu.Lock()
	_ = r.histogram.RecordValue(latencyUs)
	r.mu.Unlock()
}

func (r *Runner) result(elapsed time.Duration) *Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := r.total.Load()

	rps := float64(0)
	if elapsed.Seconds() > 0 {
		rps = float64(total) / elapsed.Seconds()
	}

	return &Result{
		Requests: total,
		Success:  r.success.Load(),
		Errors:   r.errors.Load(),
		Duration: elapsed,
		RPS:      rps,
		P50:      time.Duration(r.histogram.ValueAtQuantile(50)) * time.Microsecond,
		P95:      time.Duration(r.histogram.ValueAtQuantile(95)) * time.Microsecond,
		P99:      time.Duration(r.histogram.ValueAtQuantile(99)) * time.Microsecond,
		Min:      time.Duration(r.histogram.Min()) * time.Microsecond,
		Max:      time.Duration(r.histogram.Max()) * time.Microsecond,
		Mean:     time.Duration(r.histogram.Mean()) * time.Microsecond,
	}
}
