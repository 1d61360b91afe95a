package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/enrollment-backend/internal/platform/logger"
)

type SSEClient struct {
	ID       uuid.UUID
	ClientID string
	Channels map[string]bool
	Outbound chan SSEMessage
	done     chan struct{}
	once     sync.Once
	Logger   *logger.Logger
}
