package carousel

import (
	"sync"
	"time"

	"github.com/yungbote/enrollment-backend/internal/platform/logger"
	"github.com/yungbote/enrollment-backend/internal/platform/scheduler"
	"github.com/yungbote/enrollment-backend/internal/realtime"
)

const (
	DefaultInterval = 5 * time.Second
	advanceKey      = "carousel.advance"
)

type Position struct {
	Index         int  `json:"index"`
	Total         int  `json:"total"`
	OffsetPercent int  `json:"offset_percent"`
	Playing       bool `json:"playing"`
}

// Carousel cycles through a fixed number of slides with wrap-around.
type Carousel struct {
	mu       sync.Mutex
	total    int
	index    int
	interval time.Duration
	tasks    scheduler.Tasks
	out      realtime.Broadcaster
	channel  string
	log      *logger.Logger
}

func New(total int, interval time.Duration, tasks scheduler.Tasks, out realtime.Broadcaster, channel string, baseLog *logger.Logger) *Carousel {
	if total < 0 {
		total = 0
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &Carousel{
		total:    total,
		interval: interval,
		tasks:    tasks,
		out:      out,
		channel:  channel,
		log:      baseLog.With("service", "TestimonialCarousel"),
	}
}

func (c *Carousel) Next() Position { return c.move(1) }

func (c *Carousel) Prev() Position { return c.move(-1) }

func (c *Carousel) move(delta int) Position {
	c.mu.Lock()
	if c.total > 0 {
		c.index = ((c.index+delta)%c.total + c.total) % c.total
	}
	pos := c.positionLocked()
	c.mu.Unlock()

	if c.out != nil && c.channel != "" {
		c.out.Broadcast(realtime.SSEMessage{Channel: c.channel, Event: realtime.SSEEventCarouselMoved, Data: pos})
	}
	return pos
}

// Start schedules auto-advance. Calling it again replaces the running timer.
func (c *Carousel) Start() Position {
	if c.tasks != nil && c.total > 1 {
		c.tasks.Every(advanceKey, c.interval, func() { c.Next() })
	}
	return c.Position()
}

// Pause stops auto-advance until the next Start.
func (c *Carousel) Pause() Position {
	if c.tasks != nil {
		c.tasks.Cancel(advanceKey)
	}
	return c.Position()
}

func (c *Carousel) Position() Position {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positionLocked()
}

func (c *Carousel) positionLocked() Position {
	playing := false
	if c.tasks != nil {
		playing = c.tasks.Pending(advanceKey)
	}
	return Position{
		Index:         c.index,
		Total:         c.total,
		OffsetPercent: c.index * 100,
		Playing:       playing,
	}
}
