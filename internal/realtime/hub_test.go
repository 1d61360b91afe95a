package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/enrollment-backend/internal/platform/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubReconnectAndOrdering(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	channel := uuid.New().String()

	clientA := hub.NewSSEClient(channel)
	hub.AddChannel(clientA, channel)

	first := SSEMessage{Channel: channel, Event: SSEEventNotificationShown, Data: map[string]any{"seq": 1}}
	second := SSEMessage{Channel: channel, Event: SSEEventNotificationDismissed, Data: map[string]any{"seq": 2}}
	hub.Broadcast(first)
	hub.Broadcast(second)

	gotFirst := recvMessage(t, clientA.Outbound, time.Second)
	gotSecond := recvMessage(t, clientA.Outbound, time.Second)
	if gotFirst.Event != SSEEventNotificationShown {
		t.Fatalf("first event: want=%s got=%s", SSEEventNotificationShown, gotFirst.Event)
	}
	if gotSecond.Event != SSEEventNotificationDismissed {
		t.Fatalf("second event: want=%s got=%s", SSEEventNotificationDismissed, gotSecond.Event)
	}

	hub.CloseClient(clientA)
	hub.CloseClient(clientA)
	select {
	case _, ok := <-clientA.Outbound:
		if ok {
			t.Fatalf("clientA outbound should be closed after disconnect")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for clientA channel close")
	}
	if n := hub.Subscribers(channel); n != 0 {
		t.Fatalf("closed client still subscribed: %d", n)
	}

	clientB := hub.NewSSEClient(channel)
	hub.AddChannel(clientB, channel)
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventWizardSubmitted})
	if got := recvMessage(t, clientB.Outbound, time.Second); got.Event != SSEEventWizardSubmitted {
		t.Fatalf("reconnect event: want=%s got=%s", SSEEventWizardSubmitted, got.Event)
	}
}

func TestSSEHubIgnoresOtherChannels(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	a := hub.NewSSEClient("a")
	hub.AddChannel(a, "a")

	hub.Broadcast(SSEMessage{Channel: "b", Event: SSEEventCarouselMoved})
	hub.Broadcast(SSEMessage{Channel: "", Event: SSEEventCarouselMoved})
	select {
	case msg := <-a.Outbound:
		t.Fatalf("unexpected delivery: %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}
