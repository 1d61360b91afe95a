package carousel

import (
	"sync"
	"testing"
	"time"

	"github.com/yungbote/enrollment-backend/internal/platform/scheduler"
	"github.com/yungbote/enrollment-backend/internal/realtime"
)

type moves struct {
	mu  sync.Mutex
	got []int
}

func (m *moves) Broadcast(msg realtime.SSEMessage) {
	if msg.Event != realtime.SSEEventCarouselMoved {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.got = append(m.got, msg.Data.(Position).Index)
}

func (m *moves) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.got)
}

func TestNextAndPrevWrap(t *testing.T) {
	t.Parallel()
	rec := &moves{}
	c := New(4, time.Hour, nil, rec, "client-1", nil)

	if p := c.Prev(); p.Index != 3 || p.OffsetPercent != 300 {
		t.Fatalf("prev from 0: got=%+v", p)
	}
	if p := c.Next(); p.Index != 0 {
		t.Fatalf("next from 3: got=%+v", p)
	}
	for i := 0; i < 5; i++ {
		c.Next()
	}
	if p := c.Position(); p.Index != 1 {
		t.Fatalf("after five nexts: got=%d want=1", p.Index)
	}
	if rec.count() != 7 {
		t.Fatalf("moves broadcast: got=%d want=7", rec.count())
	}
}

func TestEmptyCarouselStaysPut(t *testing.T) {
	t.Parallel()
	c := New(0, 0, nil, nil, "", nil)
	if p := c.Next(); p.Index != 0 || p.Total != 0 {
		t.Fatalf("got=%+v", p)
	}
}

func TestStartDoesNotStackTimers(t *testing.T) {
	t.Parallel()
	s := scheduler.New()
	defer s.Stop()
	rec := &moves{}
	c := New(3, 30*time.Millisecond, s, rec, "client-1", nil)

	c.Start()
	c.Start()
	c.Start()
	if !c.Position().Playing {
		t.Fatalf("expected playing after start")
	}
	time.Sleep(100 * time.Millisecond)
	c.Pause()
	time.Sleep(10 * time.Millisecond)
	got := rec.count()
	// one timer at 30ms fires about three times in 100ms; three stacked timers would give about nine
	if got < 1 || got > 4 {
		t.Fatalf("auto-advance moves: got=%d want 1..4", got)
	}
	if c.Position().Playing {
		t.Fatalf("expected paused")
	}
	time.Sleep(60 * time.Millisecond)
	if rec.count() != got {
		t.Fatalf("carousel advanced after pause")
	}
}
