package adminapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"flowkernel/core/events"
	"flowkernel/core/types"
)

const (
	wsWriteTimeout = 10 * time.Second
	backlogSize    = 256
)

// EventStream is an events.Emitter that fans every emitted kernel event out
// to connected WebSocket subscribers, retaining a bounded backlog so a
// client connecting mid-stream can catch up on recent history.
type EventStream struct {
	mu          sync.Mutex
	backlog     []*types.Event
	subscribers map[chan *types.Event]struct{}
}

// NewEventStream constructs an empty EventStream.
func NewEventStream() *EventStream {
	return &EventStream{subscribers: make(map[chan *types.Event]struct{})}
}

// Emit implements events.Emitter.
func (s *EventStream) Emit(ev events.Event) {
	payload, ok := ev.(events.Payload)
	if !ok {
		return
	}
	typed := payload.Event()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.backlog = append(s.backlog, typed)
	if len(s.backlog) > backlogSize {
		s.backlog = s.backlog[len(s.backlog)-backlogSize:]
	}
	for ch := range s.subscribers {
		select {
		case ch <- typed:
		default:
		}
	}
}

func (s *EventStream) subscribe() (chan *types.Event, []*types.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan *types.Event, backlogSize)
	s.subscribers[ch] = struct{}{}
	backlogCopy := make([]*types.Event, len(s.backlog))
	copy(backlogCopy, s.backlog)
	return ch, backlogCopy
}

func (s *EventStream) unsubscribe(ch chan *types.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribers, ch)
}

// ServeHTTP upgrades the request to a WebSocket and streams kernel events,
// replaying the backlog first.
func (s *EventStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "stream closed")

	ch, backlog := s.subscribe()
	defer s.unsubscribe(ch)

	ctx := r.Context()
	for _, ev := range backlog {
		if err := writeEvent(ctx, conn, ev); err != nil {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := writeEvent(ctx, conn, ev); err != nil {
				return
			}
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, ev *types.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}
