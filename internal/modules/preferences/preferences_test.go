package preferences

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/enrollment-backend/internal/data/kvstore"
	"github.com/yungbote/enrollment-backend/internal/modules/notify"
)

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, error) { return nil, errors.New("down") }
func (brokenStore) Put(context.Context, string, []byte) error { return errors.New("down") }
func (brokenStore) Delete(context.Context, string) error { return errors.New("down") }
func (brokenStore) Close() error { return nil }

func TestThemeDefaultsToLightAndToggles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	var titles, messages []string
	n := notify.NotifierFunc(func(title, message string, _ notify.Severity) {
		titles = append(titles, title)
		messages = append(messages, message)
	})
	s := New(kvstore.NewMemory(), n, nil, "", nil)

	if th, err := s.Theme(ctx); err != nil || th != ThemeLight {
		t.Fatalf("default theme: got=%q err=%v", th, err)
	}
	th, err := s.Toggle(ctx)
	if err != nil || th != ThemeDark {
		t.Fatalf("Toggle: got=%q err=%v", th, err)
	}
	if th, _ := s.Theme(ctx); th != ThemeDark {
		t.Fatalf("persisted theme: got=%q want=dark", th)
	}
	if len(titles) != 1 || titles[0] != "Theme changed" || messages[0] != "Switched to dark mode" {
		t.Fatalf("notifications: %v %v", titles, messages)
	}
}

func TestInvalidStoredThemeReadsAsLight(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := kvstore.NewMemory()
	_ = store.Put(ctx, KeyTheme, []byte(`"sepia"`))
	s := New(store, nil, nil, "", nil)
	if th, err := s.Theme(ctx); err != nil || th != ThemeLight {
		t.Fatalf("got=%q err=%v want light", th, err)
	}
	if err := s.SetTheme(ctx, Theme("sepia")); err == nil {
		t.Fatalf("expected error for invalid theme")
	}
}

func TestSavedQuotesAppend(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New(kvstore.NewMemory(), nil, nil, "", nil)

	list, err := s.SavedQuotes(ctx)
	if err != nil || len(list) != 0 {
		t.Fatalf("empty list: got=%v err=%v", list, err)
	}
	_, _ = s.AppendQuote(ctx, SavedQuote{Course: "First Aid", Total: "R1,425.00"})
	list, err = s.AppendQuote(ctx, SavedQuote{Course: "Sewing", Total: "R1,425.00"})
	if err != nil || len(list) != 2 {
		t.Fatalf("AppendQuote: got=%v err=%v", list, err)
	}
	if list[0].Course != "First Aid" || list[1].Timestamp.IsZero() {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestStoreFailuresSurface(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := New(brokenStore{}, nil, nil, "", nil)
	if th, err := s.Theme(ctx); err == nil || th != ThemeLight {
		t.Fatalf("expected light with error, got=%q err=%v", th, err)
	}
	if _, err := s.AppendQuote(ctx, SavedQuote{}); err == nil {
		t.Fatalf("expected append error")
	}
}
