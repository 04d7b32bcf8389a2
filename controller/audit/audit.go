package audit

import (
	"time"

	mbLog "github.com/pdbogen/slackin/common/log"
	"github.com/pdbogen/slackin/hub"
	"github.com/pdbogen/slackin/ui/slack"
)

var log = mbLog.Log

// Sink receives one line per invite event.
type Sink func(format string, args ...interface{})

func Register(h *hub.Hub) {
	RegisterSink(h, log.Infof)
}

func RegisterSink(h *hub.Hub, sink Sink) {
	h.Subscribe("invite:*", Record(sink))
}

func Record(sink Sink) hub.Subscriber {
	return func(h *hub.Hub, e *hub.Event) {
		ev, ok := e.Payload.(slack.InviteEvent)
		if !ok {
			log.Warningf("audit: %s event %s carried %T, not an invite", e.Type, e.Id, e.Payload)
			return
		}
		sink("audit: %s %s email=%s at=%s", e.Type, e.Id, ev.Email, e.At.Format(time.RFC3339))
	}
}
