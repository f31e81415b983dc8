package studio

import (
	"context"
	"errors"
	"fmt"

	"github.com/keebforge/keycore/internal/behavior"
	"github.com/keebforge/keycore/internal/ctxlog"
	"github.com/keebforge/keycore/internal/keymap"
	"github.com/keebforge/keycore/internal/layout"
	"github.com/keebforge/keycore/internal/localid"
)

// Code is a wire-level result code for mutating requests.
type Code string

const (
	CodeSuccess           Code = "SUCCESS"
	CodeInvalidBehavior   Code = "INVALID_BEHAVIOR"
	CodeInvalidParameters Code = "INVALID_PARAMETERS"
	CodeInvalidLocation   Code = "INVALID_LOCATION"
	CodeGeneric           Code = "GENERIC"
)

// Keymap is the runtime keymap collaborator.
type Keymap interface {
	LayerCount() int
	KeyCount() int
	LayerName(layer int) (string, bool)
	GetBinding(layer, position int) (behavior.Binding, error)
	SetBinding(layer, position int, b behavior.Binding) error
	HasUnsavedChanges() bool
	Save(ctx context.Context) error
	Discard(ctx context.Context) error
}

// Layouts is the physical-layout catalog collaborator.
type Layouts interface {
	List() []*layout.Layout
	Selected() int
	Select(ctx context.Context, index int) error
	PositionMap(old, new int) ([]uint32, error)
	HasUnsavedSelection() bool
	SaveSelected(ctx context.Context) error
	RevertSelected(ctx context.Context) error
}

// Notification is emitted out-of-band from request/response pairs when the
// unsaved-changes status changes.
type Notification struct {
	UnsavedChanges bool `msgpack:"unsaved_changes"`
}

// NotifyFunc delivers a notification to the transport. Called synchronously
// from within a handler.
type NotifyFunc func(ctx context.Context, n Notification)

// Service holds the collaborators every handler needs.
type Service struct {
	ids       *localid.Map
	validator *behavior.Validator
	keymap    Keymap
	layouts   Layouts
	notify    NotifyFunc
}

// New wires up the service. A nil notify drops notifications.
func New(ids *localid.Map, validator *behavior.Validator, km Keymap, layouts Layouts, notify NotifyFunc) *Service {
	if notify == nil {
		notify = func(context.Context, Notification) {}
	}
	return &Service{
		ids:       ids,
		validator: validator,
		keymap:    km,
		layouts:   layouts,
		notify:    notify,
	}
}

// WireBinding is a binding as it travels on the wire: the behavior referred
// to by local ID rather than name.
type WireBinding struct {
	BehaviorID uint16 `msgpack:"behavior_id"`
	Param1     uint32 `msgpack:"param1"`
	Param2     uint32 `msgpack:"param2"`
}

// SetLayerBindingRequest asks to replace one cell of the keymap.
type SetLayerBindingRequest struct {
	Layer    int         `msgpack:"layer"`
	Position int         `msgpack:"position"`
	Binding  WireBinding `msgpack:"binding"`
}

// GetKeymap returns the lazily encoded keymap snapshot.
func (s *Service) GetKeymap(ctx context.Context) *KeymapPayload {
	return &KeymapPayload{svc: s}
}

// SetLayerBinding validates and applies one binding edit. On success the
// keymap is marked dirty and an unsaved-changes notification is emitted.
func (s *Service) SetLayerBinding(ctx context.Context, req SetLayerBindingRequest) Code {
	logger := ctxlog.FromContext(ctx)

	name, ok := s.ids.NameForID(localid.ID(req.Binding.BehaviorID))
	if !ok {
		return CodeInvalidBehavior
	}

	b := behavior.Binding{
		Behavior: name,
		Param1:   req.Binding.Param1,
		Param2:   req.Binding.Param2,
	}

	if err := s.validator.ValidateBinding(ctx, b); err != nil {
		logger.Debug("Binding rejected by validation.", "behavior", name, "error", err)
		return CodeInvalidParameters
	}

	if err := s.keymap.SetBinding(req.Layer, req.Position, b); err != nil {
		logger.Debug("Setting the binding failed.", "layer", req.Layer, "position", req.Position, "error", err)
		if errors.Is(err, keymap.ErrInvalidLocation) {
			return CodeInvalidLocation
		}
		return CodeGeneric
	}

	s.notify(ctx, Notification{UnsavedChanges: true})
	return CodeSuccess
}

// CheckUnsavedChanges reports whether either the keymap or the layout
// selection has pending edits.
func (s *Service) CheckUnsavedChanges(ctx context.Context) bool {
	return s.keymap.HasUnsavedChanges() || s.layouts.HasUnsavedSelection()
}

// SaveChanges commits the pending layout selection, then the pending keymap
// edits — the layout settles first because keymap layer size depends on it.
// The notification is only emitted when both commits succeed.
func (s *Service) SaveChanges(ctx context.Context) error {
	if err := s.layouts.SaveSelected(ctx); err != nil {
		return fmt.Errorf("save layout selection: %w", err)
	}
	if err := s.keymap.Save(ctx); err != nil {
		return fmt.Errorf("save keymap: %w", err)
	}

	s.notify(ctx, Notification{UnsavedChanges: false})
	return nil
}

// DiscardChanges reverts the pending layout selection, then the pending
// keymap edits, in the same order as SaveChanges.
func (s *Service) DiscardChanges(ctx context.Context) error {
	if err := s.layouts.RevertSelected(ctx); err != nil {
		return fmt.Errorf("revert layout selection: %w", err)
	}
	if err := s.keymap.Discard(ctx); err != nil {
		return fmt.Errorf("discard keymap: %w", err)
	}

	s.notify(ctx, Notification{UnsavedChanges: false})
	return nil
}

// GetPhysicalLayouts returns the lazily encoded layout catalog plus the
// currently selected index.
func (s *Service) GetPhysicalLayouts(ctx context.Context) *PhysicalLayoutsPayload {
	return &PhysicalLayoutsPayload{svc: s}
}

// SetActivePhysicalLayout selects a layout and migrates the keymap onto it.
// Selecting the already-active index is a no-op success. On failure nothing
// is mutated and no notification is emitted.
func (s *Service) SetActivePhysicalLayout(ctx context.Context, index int) *SetActiveLayoutPayload {
	old := s.layouts.Selected()
	if old == index {
		return &SetActiveLayoutPayload{svc: s}
	}

	if err := s.layouts.Select(ctx, index); err != nil {
		ctxlog.FromContext(ctx).Warn("Layout selection failed.", "index", index, "error", err)
		return &SetActiveLayoutPayload{svc: s, Err: CodeGeneric}
	}

	s.migrateKeymap(ctx, old)
	s.notify(ctx, Notification{UnsavedChanges: true})
	return &SetActiveLayoutPayload{svc: s}
}
