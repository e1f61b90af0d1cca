package queue

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisJobsKey    = "feria:queue:jobs"
	redisDelayedKey = "feria:queue:delayed"
)

// RedisDriver backs the queue with Redis so jobs survive restarts and
// can be shared by several app instances. Ready jobs live in a list
// (LPUSH/BRPOP); delayed jobs wait in a sorted set scored by their
// run-at timestamp until the promoter moves them over.
type RedisDriver struct {
	rdb *redis.Client
}

// NewRedisDriver wraps the given client, normally the one pkg/cache
// already holds, and starts the delayed-job promoter.
func NewRedisDriver(rdb *redis.Client) *RedisDriver {
	d := &RedisDriver{rdb: rdb}
	go d.promote()
	return d
}

func (d *RedisDriver) Push(payload []byte) error {
	if err := d.rdb.LPush(context.Background(), redisJobsKey, payload).Err(); err != nil {
		return fmt.Errorf("queue/redis: push: %w", err)
	}
	return nil
}

func (d *RedisDriver) Pop(ctx context.Context) ([]byte, error) {
	res, err := d.rdb.BRPop(ctx, 5*time.Second, redisJobsKey).Result()
	if err == redis.Nil {
		return nil, nil // timed out with no jobs, normal
	}
	if err != nil {
		return nil, fmt.Errorf("queue/redis: pop: %w", err)
	}
	if len(res) < 2 {
		return nil, nil
	}
	return []byte(res[1]), nil
}

// PushDelayed parks the payload until its run-at time.
func (d *RedisDriver) PushDelayed(payload []byte, delay time.Duration) error {
	err := d.rdb.ZAdd(context.Background(), redisDelayedKey, redis.Z{
		Score:  float64(time.Now().Add(delay).Unix()),
		Member: string(payload),
	}).Err()
	if err != nil {
		return fmt.Errorf("queue/redis: push delayed: %w", err)
	}
	return nil
}

// promote moves due delayed jobs into the ready list once a second.
func (d *RedisDriver) promote() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for range ticker.C {
		ctx := context.Background()
		due, err := d.rdb.ZRangeByScore(ctx, redisDelayedKey, &redis.ZRangeBy{
			Min: "-inf",
			Max: strconv.FormatInt(time.Now().Unix(), 10),
		}).Result()
		if err != nil || len(due) == 0 {
			continue
		}
		pipe := d.rdb.Pipeline()
		for _, payload := range due {
			pipe.ZRem(ctx, redisDelayedKey, payload)
			pipe.LPush(ctx, redisJobsKey, []byte(payload))
		}
		pipe.Exec(ctx) //nolint:errcheck
	}
}
