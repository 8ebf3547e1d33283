package realtime

import (
	"context"
	"errors"
	"time"

	"brainbuddy/focusws/pkg/metrics"

	"github.com/coder/websocket"
)

var (
	// ErrTimeout means a batch was not complete before the frame timeout.
	ErrTimeout = errors.New("timed out waiting for frames")
	// ErrClosed means the client went away while a batch was collected.
	ErrClosed = errors.New("connection closed")
)

// reader is the read side of a websocket connection.
type reader interface {
	Read(ctx context.Context) (websocket.MessageType, []byte, error)
}

// pump reads messages until the connection fails and forwards binary
// ones. Text messages are dropped. The returned channel is closed when
// reading stops.
//
// A read with an expiring context closes a websocket connection, so all
// reads happen here with the session context and batch deadlines are
// enforced by collect instead.
func pump(ctx context.Context, r reader) <-chan []byte {
	out := make(chan []byte)
	go func() {
		defer close(out)
		for {
			typ, data, err := r.Read(ctx)
			if err != nil {
				return
			}
			if typ != websocket.MessageBinary {
				continue
			}
			metrics.FramesReceived.Inc()

			select {
			case out <- data:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// collect gathers n frames from in. It gives up with ErrTimeout once
// timeout has passed and with ErrClosed when in is closed. The frames
// received so far are returned in either case.
func collect(ctx context.Context, in <-chan []byte, n int, timeout time.Duration) ([][]byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	batch := make([][]byte, 0, n)
	for len(batch) < n {
		select {
		case <-ctx.Done():
			return batch, ctx.Err()
		case <-timer.C:
			return batch, ErrTimeout
		case frame, ok := <-in:
			if !ok {
				return batch, ErrClosed
			}
			batch = append(batch, frame)
		}
	}
	return batch, nil
}
