package store

import (
	"context"
	"time"

	"github.com/ideaspark/ideaspark/internal/store/schema"
)

// EventKind names a successful write.
type EventKind string

const (
	EventCreated         EventKind = "created"
	EventUpdated         EventKind = "updated"
	EventDeletionToggled EventKind = "deletion_toggled"
	EventStatusChanged   EventKind = "status_changed"
	EventRestored        EventKind = "restored"
)

// Event describes a write that has been committed.
type Event struct {
	Kind   EventKind
	TaskID string
	// Task is the row after the write. It may be nil if re-reading it failed.
	Task *schema.Task
	At   time.Time
}

// Observer is notified synchronously after each successful write.
// Implementations must not call back into the Store's write methods.
type Observer interface {
	OnTaskEvent(ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev Event)

// OnTaskEvent implements Observer.
func (f ObserverFunc) OnTaskEvent(ev Event) {
	f(ev)
}

// notify re-reads the task when needed and fans the event out.
func (s *Store) notify(ctx context.Context, kind EventKind, id string, task *schema.Task) {
	if len(s.observers) == 0 {
		return
	}

	if task == nil {
		if database, err := s.handle(); err == nil {
			if t, err := database.GetTask(ctx, id); err == nil {
				task = t
			} else {
				s.logger.Printf("Warning: failed to reload task %s for observers: %v", id, err)
			}
		}
	}

	ev := Event{Kind: kind, TaskID: id, Task: task, At: s.now()}
	for _, o := range s.observers {
		o.OnTaskEvent(ev)
	}
}
