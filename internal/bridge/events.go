package bridge

import (
	"sort"
	"sync/atomic"

	"github.com/mcncl/smtbridge/internal/runtimeval"
	"github.com/puzpuzpuz/xsync/v4"
)

// Emitter delivers named events to the runtime.
type Emitter interface {
	Emit(event string, payload *runtimeval.Map)
}

// ListenerID identifies a registered listener.
type ListenerID uint64

type subscription struct {
	event string
	fn    func(payload *runtimeval.Map)
}

// EventHub is an in-process Emitter that fans events out to listeners.
// Listeners run synchronously, in registration order, on the emitting
// goroutine.
type EventHub struct {
	nextID    atomic.Uint64
	listeners *xsync.Map[ListenerID, subscription]
}

var _ Emitter = (*EventHub)(nil)

func NewEventHub() *EventHub {
	return &EventHub{
		listeners: xsync.NewMap[ListenerID, subscription](),
	}
}

// AddListener registers fn for event and returns its id.
func (h *EventHub) AddListener(event string, fn func(payload *runtimeval.Map)) ListenerID {
	id := ListenerID(h.nextID.Add(1))
	h.listeners.Store(id, subscription{event: event, fn: fn})
	return id
}

// RemoveListener unregisters id. Unknown ids are ignored.
func (h *EventHub) RemoveListener(id ListenerID) {
	h.listeners.Delete(id)
}

// ListenerCount returns the number of listeners registered for event.
func (h *EventHub) ListenerCount(event string) int {
	count := 0
	h.listeners.Range(func(_ ListenerID, sub subscription) bool {
		if sub.event == event {
			count++
		}
		return true
	})
	return count
}

// Emit calls every listener registered for event with payload.
func (h *EventHub) Emit(event string, payload *runtimeval.Map) {
	var ids []ListenerID
	subs := make(map[ListenerID]subscription)
	h.listeners.Range(func(id ListenerID, sub subscription) bool {
		if sub.event == event {
			ids = append(ids, id)
			subs[id] = sub
		}
		return true
	})
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		subs[id].fn(payload)
	}
}
