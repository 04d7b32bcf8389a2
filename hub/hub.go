package hub

import (
	"sync"
	"time"

	"github.com/google/uuid"
	mbLog "github.com/pdbogen/slackin/common/log"
	"github.com/ryanuber/go-glob"
)

var log = mbLog.Log

// Hub fans events out to subscribers. The zero value is ready to use.
type Hub struct {
	mu          sync.RWMutex
	Subscribers map[EventType][]Subscriber
}

// Subscribe registers s for every event whose type matches the glob pattern t.
func (h *Hub) Subscribe(t EventType, s Subscriber) {
	log.Debugf("subscribe: %s", t)
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.Subscribers == nil {
		h.Subscribers = map[EventType][]Subscriber{}
	}
	h.Subscribers[t] = append(h.Subscribers[t], s)
}

// Publish stamps the event and runs every matching subscriber in its own goroutine. It never blocks on
// subscribers.
func (h *Hub) Publish(e *Event) {
	if e.Id == "" {
		e.Id = uuid.NewString()
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	log.Debugf("publish: %s %s: %v", e.Id, string(e.Type), e.Payload)

	h.mu.RLock()
	defer h.mu.RUnlock()

	found := false
	for pattern, subs := range h.Subscribers {
		if glob.Glob(string(pattern), string(e.Type)) {
			for _, sub := range subs {
				found = true
				go sub(h, e)
			}
		}
	}

	if !found {
		log.Debugf("no subscriber for event %s", e.Type)
	}
}

type Event struct {
	Id      string
	Type    EventType
	At      time.Time
	Payload interface{}
}

// EventType names an event; for example "invite:sent". Subscriptions match event types with wildcards, so a
// subscriber for "invite:*" sees every invite event.
type EventType string

type Subscriber func(hub *Hub, e *Event)

// Publisher is the part of a Hub that event sources need.
type Publisher interface {
	Publish(e *Event)
}

var _ Publisher = (*Hub)(nil)
