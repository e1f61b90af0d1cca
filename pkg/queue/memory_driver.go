package queue

import "context"

// MemoryDriver queues jobs on an in-process channel. It is the boot
// fallback when Redis is unreachable and the driver tests run against;
// jobs do not survive a restart.
type MemoryDriver struct {
	ch chan []byte
}

// NewMemoryDriver returns a driver buffering up to 1000 pending jobs.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{ch: make(chan []byte, 1000)}
}

func (d *MemoryDriver) Push(payload []byte) error {
	d.ch <- payload
	return nil
}

func (d *MemoryDriver) Pop(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case payload := <-d.ch:
		return payload, nil
	}
}

// Pending reports how many jobs are buffered but not yet picked up.
func (d *MemoryDriver) Pending() int { return len(d.ch) }
