package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

// Failed jobs land in one Redis list per job queue, named DLQPrefix+queue
// (dlq:jobs:email, dlq:jobs:receipt). Nothing consumes them; they are read
// by hand and their backlog is shown on /health.
const DLQPrefix = "dlq:"

// DLQEntry is what is kept of a job that ran out of attempts.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      time.Time       `json:"failed_at"`
	Attempts      int             `json:"attempts"`
}

func dlqKey(queue string) string { return DLQPrefix + queue }

// SendToDLQ parks a job that ran out of attempts. It only logs its own
// failures: the job is already lost to the caller either way.
func (d *Dispatcher) SendToDLQ(ctx context.Context, queue, jobType string, payload json.RawMessage, reason string, attempts int) {
	data, err := json.Marshal(DLQEntry{
		OriginalQueue: queue,
		JobType:       jobType,
		Payload:       payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC(),
		Attempts:      attempts,
	})
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: marshal entry")
		return
	}

	key := dlqKey(queue)
	if err := d.rdb.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Str("job_type", jobType).Msg("dlq: push failed, job dropped")
		return
	}

	log.Warn().
		Str("dlq_key", key).
		Str("job_type", jobType).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: job parked")
}

// DLQLength is the number of parked jobs of queue.
func (d *Dispatcher) DLQLength(ctx context.Context, queue string) (int64, error) {
	return d.rdb.LLen(ctx, dlqKey(queue)).Result()
}
