package queue_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/feria/pkg/queue"
)

var handled atomic.Int32

type echoJob struct {
	Val string `json:"val"`
}

func (j *echoJob) Name() string { return "echo" }
func (j *echoJob) Handle() error {
	handled.Add(1)
	return nil
}

type boomJob struct{}

func (j *boomJob) Name() string { return "boom" }
func (j *boomJob) Handle() error {
	return errors.New("boom")
}

func init() {
	queue.Register("echo", func() queue.Job { return &echoJob{} })
	queue.Register("boom", func() queue.Job { return &boomJob{} })
	queue.StartWorkers(context.Background(), 2)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestDispatchAndProcess(t *testing.T) {
	before := handled.Load()
	require.NoError(t, queue.Dispatch(&echoJob{Val: "hello"}))
	waitFor(t, 2*time.Second, func() bool { return handled.Load() > before })
}

func TestDispatchAfter(t *testing.T) {
	before := handled.Load()
	require.NoError(t, queue.DispatchAfter(&echoJob{Val: "later"}, 50*time.Millisecond))
	waitFor(t, 2*time.Second, func() bool { return handled.Load() > before })
}

func TestExhaustedRetriesAreRecorded(t *testing.T) {
	queue.SetMaxRetry(1)
	defer queue.SetMaxRetry(3)

	before := len(queue.FailedJobs())
	require.NoError(t, queue.Dispatch(&boomJob{}))

	waitFor(t, 5*time.Second, func() bool {
		return len(queue.FailedJobs()) > before
	})
	failed := queue.FailedJobs()
	last := failed[len(failed)-1]
	assert.Equal(t, "boom", last.Job.Name())
	assert.Equal(t, 1, last.Attempts)
}

func TestDispatchConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			queue.Dispatch(&echoJob{Val: "c"}) //nolint:errcheck
		}()
	}
	wg.Wait()
}
