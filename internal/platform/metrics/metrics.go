package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	mu       sync.Mutex
	counters map[string]uint64
}

func New() *Collector {
	return &Collector{counters: map[string]uint64{}}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) RecordEmail(provider string, ok bool) {
	c.incr("emails." + provider + "." + outcome(ok))
}

func (c *Collector) RecordGeneration(provider string, ok bool) {
	c.incr("generations." + provider + "." + outcome(ok))
}

func (c *Collector) RecordJob(jobType string, ok bool) {
	c.incr("jobs." + jobType + "." + outcome(ok))
}

func (c *Collector) RecordStorageFailure(op string) {
	c.incr("storage.failures." + op)
}

func (c *Collector) incr(name string) {
	c.mu.Lock()
	c.counters[name]++
	c.mu.Unlock()
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}

	c.mu.Lock()
	counters := make(map[string]uint64, len(c.counters))
	for name, value := range c.counters {
		counters[name] = value
	}
	c.mu.Unlock()

	return map[string]any{
		"requestsTotal":    total,
		"errorsTotal":      errs,
		"rateLimitedTotal": limited,
		"avgDurationMs":    avg,
		"totalDurationMs":  totalMs,
		"counters":         counters,
	}
}
