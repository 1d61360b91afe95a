package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/enrollment-backend/internal/platform/logger"
	"github.com/yungbote/enrollment-backend/internal/realtime"
)

const DefaultChannel = "enrollment:sse"

// envelope is the pub/sub payload. Origin identifies the publishing instance
// for log correlation; every instance, the publisher included, delivers the
// message to its own hub.
type envelope struct {
	Origin  string              `json:"origin"`
	SentAt  time.Time           `json:"sent_at"`
	Message realtime.SSEMessage `json:"message"`
}

func encodeEnvelope(origin string, msg realtime.SSEMessage, now time.Time) ([]byte, error) {
	return json.Marshal(envelope{Origin: origin, SentAt: now.UTC(), Message: msg})
}

func decodeEnvelope(raw string) (envelope, error) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return envelope{}, err
	}
	if env.Message.Channel == "" {
		return envelope{}, errors.New("envelope without channel")
	}
	return env, nil
}

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
	origin  string
}

// NewRedisBus pings rdb and returns a bus on channel (DefaultChannel when
// blank). The client stays owned by the caller.
func NewRedisBus(log *logger.Logger, rdb *goredis.Client, channel string) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = DefaultChannel
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	origin := uuid.NewString()
	return &redisBus{
		log:     log.With("service", "RealtimeRedisBus", "origin", origin, "channel", channel),
		rdb:     rdb,
		channel: channel,
		origin:  origin,
	}, nil
}

func (b *redisBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	raw, err := encodeEnvelope(b.origin, msg, time.Now())
	if err != nil {
		return fmt.Errorf("encode %s: %w", msg.Event, err)
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *redisBus) Listen(ctx context.Context, deliver func(realtime.SSEMessage)) error {
	if deliver == nil {
		return fmt.Errorf("deliver callback required")
	}
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	// first reply confirms the subscription
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}
	b.log.Info("listening")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return fmt.Errorf("redis subscription closed")
			}
			env, err := decodeEnvelope(m.Payload)
			if err != nil {
				b.log.Warn("dropping bad payload", "error", err)
				continue
			}
			if env.Origin != b.origin {
				b.log.Debug("remote event", "event", env.Message.Event, "from", env.Origin, "lag", time.Since(env.SentAt))
			}
			deliver(env.Message)
		}
	}
}

// Close leaves the shared client open; its owner closes it.
func (b *redisBus) Close() error {
	return nil
}
