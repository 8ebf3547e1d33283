package realtime

import (
	"context"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// conn adapts a websocket connection to hub.Conn.
type conn struct {
	ws *websocket.Conn
}

func (c *conn) SendJSON(ctx context.Context, v interface{}) error {
	return wsjson.Write(ctx, c.ws, v)
}

func (c *conn) Close(code websocket.StatusCode, reason string) error {
	return c.ws.Close(code, reason)
}
