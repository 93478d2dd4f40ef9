package realtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultRelayChannel = "dealer-leads:changed"

// DefaultAnnounceTimeout bounds how long a lead write waits on redis.
const DefaultAnnounceTimeout = 250 * time.Millisecond

// RedisRelay fans change notifications out to every API instance. Local
// changes refresh the local feed right away and are announced on a pub/sub
// channel; announcements from other instances refresh the local feed too.
type RedisRelay struct {
	client     *redis.Client
	channel    string
	instanceID string
	local      ChangeNotifier
	logger     *slog.Logger

	// AnnounceTimeout caps the publish made on every local change. A slow
	// redis loses the announcement, never the write.
	AnnounceTimeout time.Duration
}

func NewRedisRelay(client *redis.Client, channel string, local ChangeNotifier, logger *slog.Logger) *RedisRelay {
	if channel == "" {
		channel = DefaultRelayChannel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisRelay{
		client:     client,
		channel:    channel,
		instanceID: uuid.NewString(),
		local:      local,
		logger:     logger,

		AnnounceTimeout: DefaultAnnounceTimeout,
	}
}

// NewRedisClient parses a redis:// URL. Context deadlines apply to socket
// reads and writes, so callers can bound each command.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	opts.ContextTimeoutEnabled = true
	return redis.NewClient(opts), nil
}

func (r *RedisRelay) LeadsChanged(ctx context.Context) {
	r.local.LeadsChanged(ctx)

	ctx, cancel := context.WithTimeout(ctx, r.AnnounceTimeout)
	defer cancel()
	if err := r.client.Publish(ctx, r.channel, r.instanceID).Err(); err != nil {
		r.logger.WarnContext(ctx, "change announcement failed", "channel", r.channel, "error", err)
	}
}

// Run listens for announcements until ctx is done.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	// wait for the subscription to be confirmed
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			if msg.Payload == r.instanceID {
				continue
			}
			r.local.LeadsChanged(ctx)
		}
	}
}

func (r *RedisRelay) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
