// Package queue runs background jobs — mail sends, mostly — off the
// request path. Jobs are serialized to JSON, pushed through a Driver
// (memory or Redis) and picked up by worker goroutines.
//
// Every job type is registered once at boot under its Name so workers
// can decode payloads back into the right struct:
//
//	queue.Register("welcome_mail", func() queue.Job { return &WelcomeMailJob{} })
//	queue.Dispatch(&WelcomeMailJob{Email: "ana@example.com"})
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/feria/pkg/logger"
)

// Job is a unit of background work. Name identifies the job type on the
// wire and must match the name it was registered under.
type Job interface {
	Name() string
	Handle() error
}

// Driver moves serialized jobs in and out of a backing store.
type Driver interface {
	Push(payload []byte) error
	// Pop blocks until a payload is ready or ctx is done. A nil payload
	// with a nil error means "nothing yet, ask again".
	Pop(ctx context.Context) ([]byte, error)
}

// DelayedDriver is implemented by drivers that can hold a job back
// until a point in time (the Redis driver's sorted set).
type DelayedDriver interface {
	PushDelayed(payload []byte, delay time.Duration) error
}

// envelope wraps a job payload with its registered name.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// FailedJob is the in-memory record of a job that exhausted its retries.
type FailedJob struct {
	Job      Job
	Err      error
	FailedAt time.Time
	Attempts int
}

var q = struct {
	mu        sync.RWMutex
	driver    Driver
	factories map[string]func() Job
	failed    []FailedJob
	retries   int
}{
	driver:    NewMemoryDriver(),
	factories: map[string]func() Job{},
	retries:   3,
}

// SetDriver swaps the backing driver. Call before StartWorkers.
func SetDriver(d Driver) {
	q.mu.Lock()
	q.driver = d
	q.mu.Unlock()
}

// SetMaxRetry sets how many attempts a job gets before it is parked as
// failed.
func SetMaxRetry(n int) {
	q.mu.Lock()
	q.retries = n
	q.mu.Unlock()
}

// Register maps a job name to a constructor producing an empty instance
// for the decoder to fill.
func Register(name string, factory func() Job) {
	q.mu.Lock()
	q.factories[name] = factory
	q.mu.Unlock()
}

// Dispatch serializes job and hands it to the driver.
func Dispatch(job Job) error {
	env, err := pack(job)
	if err != nil {
		return err
	}
	return driver().Push(env)
}

// DispatchAfter schedules job to run once delay has passed. Drivers
// without native delay support fall back to a timer goroutine.
func DispatchAfter(job Job, delay time.Duration) error {
	env, err := pack(job)
	if err != nil {
		return err
	}
	if dd, ok := driver().(DelayedDriver); ok {
		return dd.PushDelayed(env, delay)
	}
	time.AfterFunc(delay, func() {
		if err := driver().Push(env); err != nil {
			logger.Error("queue: delayed push failed", "job", job.Name(), "error", err)
		}
	})
	return nil
}

func pack(job Job) ([]byte, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("queue: marshal job %s: %w", job.Name(), err)
	}
	return json.Marshal(envelope{Type: job.Name(), Payload: payload})
}

func driver() Driver {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.driver
}

// StartWorkers launches n workers consuming from the driver until ctx
// is cancelled.
func StartWorkers(ctx context.Context, n int) {
	for i := 0; i < n; i++ {
		go work(ctx)
	}
	logger.Info("queue: workers started", "count", n)
}

func work(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		raw, err := driver().Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if raw == nil {
			continue
		}
		run(raw)
	}
}

func run(raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Error("queue: bad envelope", "error", err)
		return
	}

	q.mu.RLock()
	factory, ok := q.factories[env.Type]
	retries := q.retries
	q.mu.RUnlock()
	if !ok {
		logger.Warn("queue: unregistered job type", "type", env.Type)
		return
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		logger.Error("queue: bad payload", "type", env.Type, "error", err)
		return
	}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		if lastErr = job.Handle(); lastErr == nil {
			logger.Info("queue: job processed", "type", env.Type, "attempt", attempt)
			return
		}
		logger.Warn("queue: job failed",
			"type", env.Type, "attempt", attempt, "error", lastErr)
		time.Sleep(time.Duration(attempt) * time.Second)
	}

	persistFailed(job, lastErr, retries)
	logger.Error("queue: job exhausted retries", "type", env.Type, "error", lastErr)
}

// FailedJobs returns a snapshot of jobs that exhausted their retries.
func FailedJobs() []FailedJob {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]FailedJob, len(q.failed))
	copy(out, q.failed)
	return out
}
