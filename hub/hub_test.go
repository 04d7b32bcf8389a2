package hub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(ch chan<- *Event) Subscriber {
	return func(_ *Hub, e *Event) { ch <- e }
}

func receive(t *testing.T, ch <-chan *Event) *Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestPublishGlob(t *testing.T) {
	h := &Hub{}
	all := make(chan *Event, 4)
	sent := make(chan *Event, 4)
	h.Subscribe("invite:*", collect(all))
	h.Subscribe("invite:sent", collect(sent))

	h.Publish(&Event{Type: "invite:already_invited", Payload: "a@b.com"})
	e := receive(t, all)
	assert.Equal(t, EventType("invite:already_invited"), e.Type)
	assert.NotEmpty(t, e.Id)
	assert.False(t, e.At.IsZero())

	h.Publish(&Event{Type: "invite:sent", Payload: "a@b.com"})
	assert.Equal(t, EventType("invite:sent"), receive(t, all).Type)
	assert.Equal(t, "a@b.com", receive(t, sent).Payload)

	select {
	case e := <-sent:
		t.Fatalf("unexpected event %v", e)
	default:
	}
}

func TestPublishDoesNotBlockOnSubscribers(t *testing.T) {
	h := &Hub{}
	release := make(chan struct{})
	defer close(release)
	h.Subscribe("*", func(*Hub, *Event) { <-release })

	done := make(chan struct{})
	go func() {
		h.Publish(&Event{Type: "invite:sent"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a subscriber")
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	h := &Hub{}
	e := &Event{Type: "invite:sent", Id: "fixed"}
	require.NotPanics(t, func() { h.Publish(e) })
	assert.Equal(t, "fixed", e.Id)
}
