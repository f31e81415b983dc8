package ws

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// client owns the write side of one websocket connection. gorilla/websocket
// permits one concurrent writer per connection, and writes arrive from two
// goroutines: the connection's own serve loop (responses) and whichever
// handler goroutine triggers a notification broadcast. writeMu serializes
// them.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// writeMessage writes one pre-encoded binary frame.
func (c *client) writeMessage(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.BinaryMessage, data)
}

// writeEnvelope streams one frame straight onto the connection through a
// msgpack encoder. fn failing mid-frame leaves the frame unterminated, so
// callers must drop the connection on error; there is no salvaging a
// half-written envelope.
func (c *client) writeEnvelope(fn func(enc *msgpack.Encoder) error) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	w, err := c.conn.NextWriter(websocket.BinaryMessage)
	if err != nil {
		return err
	}
	if err := fn(msgpack.NewEncoder(w)); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
