package bus

import (
	"context"
	"time"

	"github.com/yungbote/enrollment-backend/internal/platform/logger"
	"github.com/yungbote/enrollment-backend/internal/realtime"
)

// Bus carries hub messages between service instances.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	// Listen delivers every message on the bus until ctx is done.
	Listen(ctx context.Context, deliver func(realtime.SSEMessage)) error
	Close() error
}

// Fanout routes broadcasts through the bus so every instance's hub sees them.
// Without a bus it delivers straight to the local hub.
type Fanout struct {
	log *logger.Logger
	hub realtime.Broadcaster
	bus Bus
}

func NewFanout(log *logger.Logger, hub realtime.Broadcaster, b Bus) *Fanout {
	return &Fanout{log: log.With("service", "RealtimeFanout"), hub: hub, bus: b}
}

func (f *Fanout) Broadcast(msg realtime.SSEMessage) {
	if f == nil || f.hub == nil {
		return
	}
	if f.bus == nil {
		f.hub.Broadcast(msg)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := f.bus.Publish(ctx, msg); err != nil {
		f.log.Warn("bus publish failed; delivering locally", "event", msg.Event, "error", err)
		f.hub.Broadcast(msg)
	}
}

// Run forwards bus traffic into the local hub until ctx is done.
func (f *Fanout) Run(ctx context.Context) error {
	if f == nil || f.bus == nil {
		<-ctx.Done()
		return nil
	}
	defer f.bus.Close()
	return f.bus.Listen(ctx, f.hub.Broadcast)
}
