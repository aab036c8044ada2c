package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/clubsync/internal/domain/event"
)

type EventRepository struct {
	mu     sync.RWMutex
	events map[string]event.Event
}

func NewEventRepository(events []event.Event) *EventRepository {
	byID := make(map[string]event.Event, len(events))
	for _, item := range events {
		byID[item.ID] = item
	}
	return &EventRepository{events: byID}
}

func (r *EventRepository) GetByID(_ context.Context, eventID string) (event.Event, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.events[eventID]
	return item, ok, nil
}

func (r *EventRepository) GetBySpondID(_ context.Context, spondID string) (event.Event, bool, error) {
	if spondID == "" {
		return event.Event{}, false, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.events {
		if item.SpondID == spondID {
			return item, true, nil
		}
	}
	return event.Event{}, false, nil
}

func (r *EventRepository) ListInRange(_ context.Context, from, to time.Time) ([]event.Event, error) {
	return r.filter(func(e event.Event) bool { return inRange(e, from, to) }), nil
}

func (r *EventRepository) ListByTeamInRange(_ context.Context, teamID string, from, to time.Time) ([]event.Event, error) {
	return r.filter(func(e event.Event) bool { return e.TeamID == teamID && inRange(e, from, to) }), nil
}

func (r *EventRepository) Create(_ context.Context, e event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.events[e.ID]; exists {
		return fmt.Errorf("event %s already exists", e.ID)
	}
	if e.SpondID != "" {
		if err := r.checkSpondIDLocked(e.ID, e.SpondID); err != nil {
			return err
		}
	}
	r.events[e.ID] = e
	return nil
}

func (r *EventRepository) Update(_ context.Context, e event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.events[e.ID]
	if !ok {
		return fmt.Errorf("event %s not found", e.ID)
	}
	e.SpondID = current.SpondID
	e.CreatedAt = current.CreatedAt
	r.events[e.ID] = e
	return nil
}

func (r *EventRepository) SetSpondID(_ context.Context, eventID, spondID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.events[eventID]
	if !ok {
		return fmt.Errorf("event %s not found", eventID)
	}
	if current.SpondID != "" {
		return fmt.Errorf("event %s is already linked to spond event %s", eventID, current.SpondID)
	}
	if err := r.checkSpondIDLocked(eventID, spondID); err != nil {
		return err
	}
	current.SpondID = spondID
	r.events[eventID] = current
	return nil
}

func (r *EventRepository) UpdateAttendance(_ context.Context, eventID string, a event.Attendance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.events[eventID]
	if !ok {
		return fmt.Errorf("event %s not found", eventID)
	}
	current.Attendance = a
	r.events[eventID] = current
	return nil
}

func (r *EventRepository) checkSpondIDLocked(eventID, spondID string) error {
	for id, item := range r.events {
		if id != eventID && item.SpondID == spondID {
			return fmt.Errorf("spond event %s is already linked to event %s", spondID, id)
		}
	}
	return nil
}

func (r *EventRepository) filter(keep func(event.Event) bool) []event.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]event.Event, 0)
	for _, item := range r.events {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartAt.Equal(out[j].StartAt) {
			return out[i].StartAt.Before(out[j].StartAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func inRange(e event.Event, from, to time.Time) bool {
	return !e.StartAt.Before(from) && e.StartAt.Before(to)
}
