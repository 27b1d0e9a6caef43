package infra

import (
	"context"
	"sync"

	"gestionstock/internal/store"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// NewRedis creates and validates a go-redis client connection.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	// Validate connectivity at startup
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

const changeChannelPrefix = "gestionstock:changes:"

// RedisNotifier is a store.Notifier over Redis pub/sub, so that every API
// instance sees the writes of every other instance.
type RedisNotifier struct {
	rdb *redis.Client
}

var _ store.Notifier = (*RedisNotifier)(nil)

func NewRedisNotifier(rdb *redis.Client) *RedisNotifier {
	return &RedisNotifier{rdb: rdb}
}

func (n *RedisNotifier) Publish(ctx context.Context, coll store.Collection) {
	if err := n.rdb.Publish(context.WithoutCancel(ctx), changeChannelPrefix+string(coll), "1").Err(); err != nil {
		log.Warn().Err(err).Str("collection", string(coll)).Msg("notifier: publish failed")
	}
}

func (n *RedisNotifier) Listen(coll store.Collection) (<-chan struct{}, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	ps := n.rdb.Subscribe(ctx, changeChannelPrefix+string(coll))
	// Wait for the subscription to be confirmed so a publish right after
	// Listen returns is not lost.
	if _, err := ps.Receive(ctx); err != nil {
		log.Warn().Err(err).Str("collection", string(coll)).Msg("notifier: subscribe failed")
	}
	out := make(chan struct{}, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()

	var once sync.Once
	return out, func() {
		once.Do(func() {
			cancel()
			_ = ps.Close()
			<-done
		})
	}
}
