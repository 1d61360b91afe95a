package preferences

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/enrollment-backend/internal/data/kvstore"
	"github.com/yungbote/enrollment-backend/internal/modules/notify"
	"github.com/yungbote/enrollment-backend/internal/platform/logger"
	"github.com/yungbote/enrollment-backend/internal/realtime"
)

const (
	KeyTheme       = "theme"
	KeySavedQuotes = "savedQuotes"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool { return t == ThemeLight || t == ThemeDark }

func ParseTheme(raw string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown theme %q", raw)
	}
	return t, nil
}

func (t Theme) Opposite() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// SavedQuote is one entry of the append-only savedQuotes list.
type SavedQuote struct {
	Course    string    `json:"course"`
	CourseIDs []string  `json:"course_ids,omitempty"`
	Total     string    `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

// Service reads and writes one client's persisted preferences.
type Service struct {
	mu       sync.Mutex
	store    kvstore.Store
	notifier notify.Notifier
	out      realtime.Broadcaster
	channel  string
	log      *logger.Logger
}

func New(store kvstore.Store, n notify.Notifier, out realtime.Broadcaster, channel string, baseLog *logger.Logger) *Service {
	if n == nil {
		n = notify.Discard
	}
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &Service{
		store:    store,
		notifier: n,
		out:      out,
		channel:  channel,
		log:      baseLog.With("service", "PreferencesService"),
	}
}

// Theme returns the stored theme; a missing or unreadable value means light.
func (s *Service) Theme(ctx context.Context) (Theme, error) {
	var raw string
	err := kvstore.GetJSON(ctx, s.store, KeyTheme, &raw)
	if errors.Is(err, kvstore.ErrNotFound) {
		return ThemeLight, nil
	}
	if err != nil {
		s.log.Warn("theme read failed", "error", err)
		return ThemeLight, err
	}
	t, perr := ParseTheme(raw)
	if perr != nil {
		return ThemeLight, nil
	}
	return t, nil
}

func (s *Service) SetTheme(ctx context.Context, t Theme) error {
	if !t.Valid() {
		return fmt.Errorf("unknown theme %q", t)
	}
	s.mu.Lock()
	err := kvstore.PutJSON(ctx, s.store, KeyTheme, string(t))
	s.mu.Unlock()
	if err != nil {
		s.log.Warn("theme write failed", "error", err)
		return err
	}
	s.notifier.Notify("Theme changed", "Switched to "+string(t)+" mode", notify.SeveritySuccess)
	if s.out != nil && s.channel != "" {
		s.out.Broadcast(realtime.SSEMessage{Channel: s.channel, Event: realtime.SSEEventThemeChanged, Data: map[string]string{"theme": string(t)}})
	}
	return nil
}

func (s *Service) Toggle(ctx context.Context) (Theme, error) {
	cur, err := s.Theme(ctx)
	if err != nil {
		return cur, err
	}
	next := cur.Opposite()
	if err := s.SetTheme(ctx, next); err != nil {
		return cur, err
	}
	return next, nil
}

func (s *Service) SavedQuotes(ctx context.Context) ([]SavedQuote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savedQuotesLocked(ctx)
}

func (s *Service) savedQuotesLocked(ctx context.Context) ([]SavedQuote, error) {
	var out []SavedQuote
	err := kvstore.GetJSON(ctx, s.store, KeySavedQuotes, &out)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []SavedQuote{}, nil
	}
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []SavedQuote{}
	}
	return out, nil
}

// AppendQuote adds q to the end of the saved list and returns the new list.
func (s *Service) AppendQuote(ctx context.Context, q SavedQuote) ([]SavedQuote, error) {
	if q.Timestamp.IsZero() {
		q.Timestamp = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list, err := s.savedQuotesLocked(ctx)
	if err != nil {
		return nil, err
	}
	list = append(list, q)
	if err := kvstore.PutJSON(ctx, s.store, KeySavedQuotes, list); err != nil {
		s.log.Warn("saved quote write failed", "error", err)
		return nil, err
	}
	return list, nil
}
