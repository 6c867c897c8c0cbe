package service

import (
	"context"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

// notificationRelay carries encoded notification events between API nodes.
type notificationRelay interface {
	name() string
	send(ctx context.Context, payload []byte) error
	// receive blocks until ctx is cancelled, calling deliver for each event.
	receive(ctx context.Context, deliver func([]byte)) error
}

type redisRelay struct {
	client  *redis.Client
	channel string
}

func (r redisRelay) name() string { return "redis" }

func (r redisRelay) send(ctx context.Context, payload []byte) error {
	return r.client.Publish(ctx, r.channel, payload).Err()
}

func (r redisRelay) receive(ctx context.Context, deliver func([]byte)) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer func() { _ = pubsub.Close() }()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			deliver([]byte(msg.Payload))
		}
	}
}

// natsRelay uses a plain subscription so every node sees every event.
type natsRelay struct {
	conn    *nats.Conn
	subject string
}

func (r natsRelay) name() string { return "nats" }

func (r natsRelay) send(_ context.Context, payload []byte) error {
	return r.conn.Publish(r.subject, payload)
}

func (r natsRelay) receive(ctx context.Context, deliver func([]byte)) error {
	sub, err := r.conn.Subscribe(r.subject, func(msg *nats.Msg) {
		deliver(msg.Data)
	})
	if err != nil {
		return err
	}

	<-ctx.Done()
	return sub.Drain()
}

// buildRelays derives the redis channel and nats subject from the configured base name.
func buildRelays(channelBase string, redisClient *redis.Client, natsConn *nats.Conn) []notificationRelay {
	base := strings.TrimSpace(channelBase)
	if base == "" {
		return nil
	}

	relays := make([]notificationRelay, 0, 2)
	if redisClient != nil {
		relays = append(relays, redisRelay{client: redisClient, channel: base + ":notifications"})
	}
	if natsConn != nil {
		relays = append(relays, natsRelay{conn: natsConn, subject: strings.ReplaceAll(base, ":", ".") + ".notifications"})
	}
	return relays
}
