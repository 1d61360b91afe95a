package workspace

import (
	"sync"
	"time"

	"github.com/yungbote/enrollment-backend/internal/data/kvstore"
	"github.com/yungbote/enrollment-backend/internal/modules/calculator"
	"github.com/yungbote/enrollment-backend/internal/modules/carousel"
	"github.com/yungbote/enrollment-backend/internal/modules/catalog"
	"github.com/yungbote/enrollment-backend/internal/modules/notify"
	"github.com/yungbote/enrollment-backend/internal/modules/preferences"
	"github.com/yungbote/enrollment-backend/internal/modules/pricing"
	"github.com/yungbote/enrollment-backend/internal/modules/wizard"
	"github.com/yungbote/enrollment-backend/internal/platform/logger"
	"github.com/yungbote/enrollment-backend/internal/platform/scheduler"
	"github.com/yungbote/enrollment-backend/internal/realtime"
)

// Deps are shared by every workspace.
type Deps struct {
	Catalog          *catalog.Catalog
	Engine           *pricing.Engine
	Store            kvstore.Store
	Out              realtime.Broadcaster
	SubmitDelay      time.Duration
	NotificationTTL  time.Duration
	CarouselInterval time.Duration
	Log              *logger.Logger
}

// Workspace is everything one browser client has open.
type Workspace struct {
	ClientID      string
	Channel       string
	Tasks         *scheduler.Scheduler
	Notifications *notify.Center
	Preferences   *preferences.Service
	Calculator    *calculator.Calculator
	Carousel      *carousel.Carousel

	deps Deps
	log  *logger.Logger

	mu       sync.Mutex
	wizard   *wizard.Session
	lastSeen time.Time
}

// ChannelFor is the realtime channel a client's events are published on.
func ChannelFor(clientID string) string { return "client:" + clientID }

func newWorkspace(clientID string, deps Deps) *Workspace {
	log := deps.Log.With("client_id", clientID)
	channel := ChannelFor(clientID)
	tasks := scheduler.New()
	center := notify.NewCenter(log, tasks, deps.Out, channel, deps.NotificationTTL)
	prefs := preferences.New(kvstore.NewScoped(deps.Store, clientID), center, deps.Out, channel, log)

	return &Workspace{
		ClientID:      clientID,
		Channel:       channel,
		Tasks:         tasks,
		Notifications: center,
		Preferences:   prefs,
		Calculator:    calculator.New(deps.Engine, deps.Catalog, prefs, center, log),
		Carousel:      carousel.New(len(deps.Catalog.Testimonials()), deps.CarouselInterval, tasks, deps.Out, channel, log),
		deps:          deps,
		log:           log.With("service", "Workspace"),
		lastSeen:      time.Now().UTC(),
	}
}

// Wizard returns the mounted wizard session, if any.
func (w *Workspace) Wizard() (*wizard.Session, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.wizard, w.wizard != nil
}

// MountWizard starts a fresh session, discarding any previous one.
func (w *Workspace) MountWizard() (*wizard.Session, error) {
	s, err := wizard.NewSession(wizard.Config{
		Engine:      w.deps.Engine,
		Notifier:    w.Notifications,
		Tasks:       w.Tasks,
		Observer:    w,
		SubmitDelay: w.deps.SubmitDelay,
		Log:         w.log,
	})
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	prev := w.wizard
	w.wizard = s
	w.mu.Unlock()
	if prev != nil {
		prev.Close()
	}
	return s, nil
}

type stepEvent struct {
	SessionID string        `json:"session_id"`
	Step      wizard.Step   `json:"step"`
	StepTitle string        `json:"step_title"`
	Status    wizard.Status `json:"status"`
	Progress  int           `json:"progress"`
}

func eventFor(s wizard.Snapshot) stepEvent {
	return stepEvent{SessionID: s.ID, Step: s.Step, StepTitle: s.StepTitle, Status: s.Status, Progress: s.Progress}
}

// StepChanged publishes wizard progress; personal details stay out of events.
func (w *Workspace) StepChanged(s wizard.Snapshot) {
	w.publish(realtime.SSEEventWizardStepChanged, eventFor(s))
}

func (w *Workspace) Submitted(s wizard.Snapshot) {
	w.publish(realtime.SSEEventWizardSubmitted, eventFor(s))
}

func (w *Workspace) publish(event realtime.SSEEvent, data any) {
	if w.deps.Out == nil {
		return
	}
	w.deps.Out.Broadcast(realtime.SSEMessage{Channel: w.Channel, Event: event, Data: data})
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

// LastSeen is the later of the last request and the last wizard change.
func (w *Workspace) LastSeen() time.Time {
	w.mu.Lock()
	seen, s := w.lastSeen, w.wizard
	w.mu.Unlock()
	if s != nil {
		if t := s.IdleSince(); t.After(seen) {
			seen = t
		}
	}
	return seen
}

// Close stops every timer the workspace owns.
func (w *Workspace) Close() {
	w.Tasks.Stop()
}
