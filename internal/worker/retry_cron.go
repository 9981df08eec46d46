package worker

// retry_cron.go
// Background goroutine that moves due entries from the sync retry zset
// back onto the live queue. Skips ticks while the circuit breaker is
// open so a downed mirror is not hammered.

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/Djidro/Royalpos/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// StartRetryCron launches a goroutine that ticks every 30s and requeues
// sync jobs whose backoff has elapsed. Respects ctx for graceful shutdown.
func StartRetryCron(ctx context.Context, rdb *redis.Client, cb *infra.CircuitBreaker) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				requeueDue(ctx, rdb, cb)
			}
		}
	}()
}

func requeueDue(ctx context.Context, rdb *redis.Client, cb *infra.CircuitBreaker) {
	if cb.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	now := strconv.FormatInt(time.Now().Unix(), 10)
	members, err := rdb.ZRangeByScore(ctx, RetryZSet, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   now,
		Count: retryBatchSize,
	}).Result()
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query retry set")
		return
	}
	if len(members) == 0 {
		return
	}

	log.Info().Int("count", len(members)).Msg("retry_cron: requeueing due sync jobs")

	for _, member := range members {
		// Remove first so a concurrent tick cannot requeue the same job twice
		removed, err := rdb.ZRem(ctx, RetryZSet, member).Result()
		if err != nil || removed == 0 {
			continue
		}
		job := Job{Type: "sync", Payload: []byte(member)}
		encoded, err := json.Marshal(job)
		if err != nil {
			log.Error().Err(err).Msg("retry_cron: failed to re-envelope job")
			continue
		}
		if err := rdb.LPush(ctx, QueueSync, encoded).Err(); err != nil {
			log.Error().Err(err).Msg("retry_cron: failed to requeue job")
		}
	}
}
