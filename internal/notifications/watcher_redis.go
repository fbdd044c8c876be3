package notifications

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

type redisPubSub interface {
	Subscribe(ctx context.Context, channels ...string) (*redis.PubSub, error)
	Publish(ctx context.Context, channel string, payload any) error
	NotificationChannel(userID string) string
}

// RedisWatcher relays change signals between API replicas over redis pub/sub.
// Both scopes share one channel per user.
type RedisWatcher struct {
	client redisPubSub
}

func NewRedisWatcher(client redisPubSub) *RedisWatcher {
	return &RedisWatcher{client: client}
}

func (w *RedisWatcher) Watch(ctx context.Context, userID string, _ Scope) (ChangeFeed, error) {
	sub, err := w.client.Subscribe(ctx, w.client.NotificationChannel(userID))
	if err != nil {
		return nil, err
	}
	feed := &redisFeed{sub: sub, ch: make(chan struct{}, 1), done: make(chan struct{})}
	go feed.pump()
	return feed, nil
}

func (w *RedisWatcher) Notify(ctx context.Context, userID string) error {
	return w.client.Publish(ctx, w.client.NotificationChannel(userID), string(ScopeRecords))
}

type redisFeed struct {
	sub  *redis.PubSub
	ch   chan struct{}
	done chan struct{}
	once sync.Once
}

func (f *redisFeed) pump() {
	defer close(f.ch)
	messages := f.sub.Channel()
	for {
		select {
		case <-f.done:
			return
		case _, ok := <-messages:
			if !ok {
				return
			}
			select {
			case f.ch <- struct{}{}:
			default:
			}
		}
	}
}

func (f *redisFeed) Changes() <-chan struct{} { return f.ch }

func (f *redisFeed) Err() error { return nil }

func (f *redisFeed) Close() error {
	var err error
	f.once.Do(func() {
		close(f.done)
		err = f.sub.Close()
	})
	return err
}
