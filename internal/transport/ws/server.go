// Package ws frames the studio protocol over websocket connections: one
// binary message per request, response, or notification, each a msgpack
// map. The studio service defines the payloads; this package owns only the
// envelope.
package ws

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/keebforge/keycore/internal/ctxlog"
	"github.com/keebforge/keycore/internal/studio"
)

// Request operation names.
const (
	opGetKeymap               = "get_keymap"
	opSetLayerBinding         = "set_layer_binding"
	opCheckUnsavedChanges     = "check_unsaved_changes"
	opSaveChanges             = "save_changes"
	opDiscardChanges          = "discard_changes"
	opGetPhysicalLayouts      = "get_physical_layouts"
	opSetActivePhysicalLayout = "set_active_physical_layout"
)

// request is the envelope every client message carries.
type request struct {
	ID   uint32             `msgpack:"id"`
	Op   string             `msgpack:"op"`
	Args msgpack.RawMessage `msgpack:"args"`
}

// Server upgrades HTTP requests to websocket connections and dispatches
// envelopes to the studio service.
type Server struct {
	svc      *studio.Service
	notifier *Notifier
	upgrader websocket.Upgrader

	// dispatchMu serializes handlers across all connections: the studio
	// service assumes a single worker context.
	dispatchMu sync.Mutex
}

// NewServer wires the service and notifier together.
func NewServer(svc *studio.Service, notifier *Notifier) *Server {
	return &Server{svc: svc, notifier: notifier}
}

// Handler returns the HTTP handler serving the studio endpoint.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.serveHTTP)
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.FromContext(ctx)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("Websocket upgrade failed.", "error", err)
		return
	}
	defer conn.Close()

	cl := &client{conn: conn}
	s.notifier.add(cl)
	defer s.notifier.remove(cl)
	logger.Info("Studio client connected.", "remote", conn.RemoteAddr())

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			logger.Info("Studio client disconnected.", "remote", conn.RemoteAddr(), "error", err)
			return
		}

		var req request
		if err := msgpack.Unmarshal(data, &req); err != nil {
			logger.Warn("Malformed request envelope.", "error", err)
			continue
		}

		if err := s.handle(ctx, cl, &req); err != nil {
			logger.Warn("Response write failed; closing connection.", "error", err)
			return
		}
	}
}

// handle runs one request to completion and streams its response envelope.
// The lock spans dispatch and the response write: lazily encoded payloads
// read collaborator state while encoding, and the studio service assumes a
// single worker context. Notification broadcasts from inside a handler only
// take per-client write locks, which are never held across a dispatch, so
// the nesting cannot deadlock.
func (s *Server) handle(ctx context.Context, cl *client, req *request) error {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	payload, errCode := s.dispatch(ctx, req)
	if errCode != "" {
		return cl.writeEnvelope(errorEnvelope(req.ID, errCode))
	}
	return cl.writeEnvelope(resultEnvelope(req.ID, payload))
}

// dispatch maps one request envelope onto the studio service and returns
// either the result payload or a wire error code.
func (s *Server) dispatch(ctx context.Context, req *request) (any, string) {
	switch req.Op {
	case opGetKeymap:
		return s.svc.GetKeymap(ctx), ""

	case opSetLayerBinding:
		var args studio.SetLayerBindingRequest
		if err := msgpack.Unmarshal(req.Args, &args); err != nil {
			return nil, "MALFORMED_REQUEST"
		}
		return string(s.svc.SetLayerBinding(ctx, args)), ""

	case opCheckUnsavedChanges:
		return s.svc.CheckUnsavedChanges(ctx), ""

	case opSaveChanges:
		if err := s.svc.SaveChanges(ctx); err != nil {
			ctxlog.FromContext(ctx).Warn("Saving changes failed.", "error", err)
			return nil, "GENERIC"
		}
		return true, ""

	case opDiscardChanges:
		if err := s.svc.DiscardChanges(ctx); err != nil {
			ctxlog.FromContext(ctx).Warn("Discarding changes failed.", "error", err)
			return nil, "GENERIC"
		}
		return true, ""

	case opGetPhysicalLayouts:
		return s.svc.GetPhysicalLayouts(ctx), ""

	case opSetActivePhysicalLayout:
		var index int
		if err := msgpack.Unmarshal(req.Args, &index); err != nil {
			return nil, "MALFORMED_REQUEST"
		}
		return s.svc.SetActivePhysicalLayout(ctx, index), ""

	default:
		return nil, "UNKNOWN_REQUEST"
	}
}

// resultEnvelope streams {"id": n, "result": payload}. Payloads implementing
// msgpack.CustomEncoder encode themselves element by element straight onto
// the connection; the envelope never buffers the full response.
func resultEnvelope(id uint32, payload any) func(enc *msgpack.Encoder) error {
	return func(enc *msgpack.Encoder) error {
		if err := enc.EncodeMapLen(2); err != nil {
			return err
		}
		if err := enc.EncodeString("id"); err != nil {
			return err
		}
		if err := enc.EncodeUint32(id); err != nil {
			return err
		}
		if err := enc.EncodeString("result"); err != nil {
			return err
		}
		return enc.Encode(payload)
	}
}

// errorEnvelope streams {"id": n, "error": code}.
func errorEnvelope(id uint32, code string) func(enc *msgpack.Encoder) error {
	return func(enc *msgpack.Encoder) error {
		if err := enc.EncodeMapLen(2); err != nil {
			return err
		}
		if err := enc.EncodeString("id"); err != nil {
			return err
		}
		if err := enc.EncodeUint32(id); err != nil {
			return err
		}
		if err := enc.EncodeString("error"); err != nil {
			return err
		}
		return enc.EncodeString(code)
	}
}
