package adminsvc

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"code.hybscloud.com/xconnect/internal/ctrlwire"
	"code.hybscloud.com/xconnect/session"
)

// Event is one session state-change notification delivered to the admin
// collaborator's push channel.
type Event struct {
	SessionID string    `json:"session_id"`
	State     string    `json:"state"`
	Time      time.Time `json:"time"`
}

// EventStream implements session.Listener and fans every session's state
// transitions out to subscribers as Events. Binding a subscriber's
// channel to a transport with WriteTo frames each Event over ctrlwire so
// a remote admin process sees one ctrlwire message per state change.
type EventStream struct {
	mu   sync.Mutex
	subs []chan Event
}

// NewEventStream returns an EventStream with no subscribers.
func NewEventStream() *EventStream {
	return &EventStream{}
}

// Subscribe returns a channel that receives every future Event. The
// channel is buffered; a subscriber that falls behind misses events
// rather than stalling the session whose state changed. Subscribers are
// never removed automatically — callers that subscribe repeatedly (e.g.
// per request) should discard the channel themselves once done with it.
func (es *EventStream) Subscribe() <-chan Event {
	ch := make(chan Event, 16)
	es.mu.Lock()
	es.subs = append(es.subs, ch)
	es.mu.Unlock()
	return ch
}

func (es *EventStream) publish(e Event) {
	es.mu.Lock()
	defer es.mu.Unlock()
	for _, ch := range es.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// OnStateChanged implements session.Listener.
func (es *EventStream) OnStateChanged(s *session.Session, state session.State) {
	es.publish(Event{SessionID: s.ID, State: state.String(), Time: time.Now()})
}

// OnMessage implements session.Listener. EventStream only reports state
// transitions; application message dispatch belongs to each session's own
// listeners.
func (es *EventStream) OnMessage(*session.Session, uint64, []byte) {}

// WriteTo drains ch into w as ctrlwire-framed, JSON-encoded Events until
// ctx is done or ch is closed.
func (es *EventStream) WriteTo(ctx context.Context, ch <-chan Event, w io.Writer) error {
	cw := ctrlwire.NewWriter(w)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-ch:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(e)
			if err != nil {
				return err
			}
			if _, err := cw.Write(payload); err != nil {
				return err
			}
		}
	}
}
