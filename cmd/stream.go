package main

import (
	"context"
	"sync"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

// frameStream fans per-frame summaries out to websocket watchers. Slow
// watchers skip frames instead of stalling the frame loop.
type frameStream struct {
	mutex       sync.Mutex
	subscribers map[chan frameSummary]struct{}
}

func newFrameStream() *frameStream {
	return &frameStream{
		subscribers: make(map[chan frameSummary]struct{}),
	}
}

func (s *frameStream) subscribe() chan frameSummary {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	ch := make(chan frameSummary, 8)
	s.subscribers[ch] = struct{}{}
	return ch
}

func (s *frameStream) unsubscribe(ch chan frameSummary) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.subscribers, ch)
}

func (s *frameStream) broadcast(summary frameSummary) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for ch := range s.subscribers {
		select {
		case ch <- summary:
		default:
		}
	}
}

func (s *frameStream) serve(ctx context.Context, conn *websocket.Conn) {
	ch := s.subscribe()
	defer s.unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return

		case summary := <-ch:
			body, err := json.Marshal(summary)
			if err != nil {
				logs.Warn(errors.New("encoding frame summary failed").Wrap(err))
				continue
			}

			if err := websocket.Message.Send(conn, (string)(body)); err != nil {
				logs.WithTag("remote_addr", conn.Request().RemoteAddr).
					Debug("watcher disconnected")
				return
			}
		}
	}
}
