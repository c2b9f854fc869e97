// Package redisqueue implements the delayed-execution queue on a Redis sorted
// set, scored by resume time.
package redisqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ninjagenz/automata/pkg/models"
)

const continuationsKey = "automata:continuations"

// Scheduler stores continuations in a Redis ZSET keyed by resume time. It
// implements protocol.ContinuationScheduler; workers drain due entries via
// Due.
type Scheduler struct {
	client *redis.Client
	logger *slog.Logger
}

// NewScheduler connects to Redis using a redis:// URL.
func NewScheduler(ctx context.Context, logger *slog.Logger, redisURL string) (*Scheduler, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	err = client.Ping(ctx).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Scheduler{client: client, logger: logger}, nil
}

// Schedule enqueues a continuation. It returns once the entry is stored, the
// delay itself elapses on the queue, never in process.
func (s *Scheduler) Schedule(ctx context.Context, c *models.Continuation) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal continuation %s: %w", c.ID, err)
	}

	err = s.client.ZAdd(ctx, continuationsKey, redis.Z{
		Score:  float64(c.ResumeAt.Unix()),
		Member: data,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to enqueue continuation %s: %w", c.ID, err)
	}

	s.logger.InfoContext(ctx, "Continuation scheduled",
		"continuation_id", c.ID,
		"rule_id", c.RuleID,
		"resume_at", c.ResumeAt)

	return nil
}

// Due pops up to limit continuations whose resume time has passed. Popped
// entries are removed before being returned, so a crashed worker loses at most
// one batch.
func (s *Scheduler) Due(ctx context.Context, now time.Time, limit int) ([]*models.Continuation, error) {
	members, err := s.client.ZRangeByScore(ctx, continuationsKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read due continuations: %w", err)
	}

	if len(members) == 0 {
		return nil, nil
	}

	removeArgs := make([]any, len(members))
	for i, member := range members {
		removeArgs[i] = member
	}

	err = s.client.ZRem(ctx, continuationsKey, removeArgs...).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue continuations: %w", err)
	}

	continuations := make([]*models.Continuation, 0, len(members))

	for _, member := range members {
		var c models.Continuation

		err = json.Unmarshal([]byte(member), &c)
		if err != nil {
			s.logger.ErrorContext(ctx, "Dropping malformed continuation", "error", err)

			continue
		}

		continuations = append(continuations, &c)
	}

	return continuations, nil
}

// Close closes the Redis connection.
func (s *Scheduler) Close() error {
	return s.client.Close()
}
