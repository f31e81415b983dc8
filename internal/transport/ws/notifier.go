package ws

import (
	"bytes"
	"context"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/keebforge/keycore/internal/ctxlog"
	"github.com/keebforge/keycore/internal/studio"
)

// Notifier broadcasts out-of-band notifications to every connected client.
// Its Notify method satisfies studio.NotifyFunc.
type Notifier struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{clients: make(map[*client]struct{})}
}

func (n *Notifier) add(cl *client) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.clients[cl] = struct{}{}
}

func (n *Notifier) remove(cl *client) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.clients, cl)
}

// Notify encodes one notification envelope and writes it to every client.
// Each write takes that client's write lock, so a broadcast never interleaves
// with a response frame the client's own serve loop is writing. A client
// whose write fails is dropped from the set; its read loop will observe the
// broken connection and clean up.
func (n *Notifier) Notify(ctx context.Context, note studio.Notification) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := encodeNotification(enc, note); err != nil {
		ctxlog.FromContext(ctx).Error("Failed to encode notification.", "error", err)
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	for cl := range n.clients {
		if err := cl.writeMessage(buf.Bytes()); err != nil {
			ctxlog.FromContext(ctx).Debug("Dropping client after failed notification write.", "error", err)
			delete(n.clients, cl)
		}
	}
}

func encodeNotification(enc *msgpack.Encoder, note studio.Notification) error {
	if err := enc.EncodeMapLen(2); err != nil {
		return err
	}
	if err := enc.EncodeString("notification"); err != nil {
		return err
	}
	if err := enc.EncodeString("unsaved_changes_status_changed"); err != nil {
		return err
	}
	if err := enc.EncodeString("value"); err != nil {
		return err
	}
	return enc.EncodeBool(note.UnsavedChanges)
}
