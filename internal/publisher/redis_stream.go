package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Stream names per scrape kind. Consumers (the SPA's push gateway, alerting)
// read these to learn that fresh league data landed.
const (
	StreamStandings = "league.standings.updated"
	StreamSchedule  = "league.schedule.updated"
)

// RedisPublisher publishes refresh events to Redis streams.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher creates a publisher from an existing Redis client.
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{
		client: client,
	}
}

// PublishRefresh publishes one scrape result to the kind's stream.
func (rp *RedisPublisher) PublishRefresh(ctx context.Context, kind string, result interface{}) error {
	streamName := StreamStandings
	if kind == "schedule" {
		streamName = StreamSchedule
	}

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return rp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamName,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}
