// Package cache is a thin JSON cache over Redis, used for hot read
// paths like the default product listing. Redis being down is not an
// error condition: every helper degrades to a miss or a no-op so the
// app keeps serving from Mongo.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/feria/config"
)

// RDB is the shared client. Nil until Connect succeeds; pkg/queue
// reuses it for the Redis queue driver.
var RDB *redis.Client

// Connect dials Redis and verifies it with a ping. On failure RDB stays
// nil and the caller decides how loudly to complain.
func Connect() error {
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
		DB:       0,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("cache: redis ping: %w", err)
	}
	RDB = client
	return nil
}

// Get unmarshals the value at key into dest. Reports a hit; misses,
// decode failures and a missing client all read as false.
func Get(key string, dest any) bool {
	if RDB == nil {
		return false
	}
	val, err := RDB.Get(context.Background(), key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), dest) == nil
}

// Set stores value as JSON under key for ttl.
func Set(key string, value any, ttl time.Duration) error {
	if RDB == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return RDB.Set(context.Background(), key, data, ttl).Err()
}

// Forget drops a cached key.
func Forget(keys ...string) error {
	if RDB == nil {
		return nil
	}
	return RDB.Del(context.Background(), keys...).Err()
}
