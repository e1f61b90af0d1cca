package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/feria/pkg/logger"
)

// FailedJobRecord is the document written to the failed_jobs collection
// for every job that exhausted its retries.
type FailedJobRecord struct {
	JobType  string    `bson:"job_type"`
	Payload  string    `bson:"payload"`
	Error    string    `bson:"error"`
	Attempts int       `bson:"attempts"`
	FailedAt time.Time `bson:"failed_at"`
}

var failedJobCol *mongo.Collection

// UseCollection turns on durable failed-job records. Without it failures
// are only held in memory and lost on restart.
func UseCollection(col *mongo.Collection) {
	failedJobCol = col
}

func persistFailed(job Job, lastErr error, attempts int) {
	q.mu.Lock()
	q.failed = append(q.failed, FailedJob{
		Job: job, Err: lastErr, FailedAt: time.Now(), Attempts: attempts,
	})
	q.mu.Unlock()

	if failedJobCol == nil {
		return
	}

	payload, err := json.Marshal(job)
	if err != nil {
		payload = []byte(fmt.Sprintf(`{"error": "could not marshal: %v"}`, err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = failedJobCol.InsertOne(ctx, FailedJobRecord{
		JobType:  job.Name(),
		Payload:  string(payload),
		Error:    lastErr.Error(),
		Attempts: attempts,
		FailedAt: time.Now(),
	})
	if err != nil {
		// Not fatal, the in-memory slice still has the record.
		logger.Error("queue: persist failed job", "type", job.Name(), "error", err)
	}
}
