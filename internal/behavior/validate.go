package behavior

import (
	"context"
	"errors"

	"github.com/keebforge/keycore/internal/ctxlog"
	"github.com/keebforge/keycore/internal/hid"
)

var (
	// ErrNotFound means a behavior name or identifier did not resolve.
	ErrNotFound = errors.New("behavior not found")

	// ErrNoMetadata means a value was checked against an empty description
	// list. It is distinct from ErrUnsupported: a parameter with no
	// declared descriptions still accepts zero.
	ErrNoMetadata = errors.New("behavior declares no metadata for parameter")

	// ErrUnsupported means no declared description accepted the value.
	ErrUnsupported = errors.New("parameter value not supported")

	// ErrInvalidParameters means no metadata set accepted the pair.
	ErrInvalidParameters = errors.New("invalid parameter combination")
)

// Options configures validation rules that the firmware build fixes once at
// startup.
type Options struct {
	// LayerCount bounds LayerIndex descriptions: valid indexes are
	// [0, LayerCount).
	LayerCount int

	// FullConsumerUsages widens the consumer usage bound from 0xFF to
	// 0xFFF, matching a build with the extended consumer report.
	FullConsumerUsages bool

	// DisableMetadata turns ValidateBinding into a no-op that accepts
	// everything, matching a build without the metadata capability.
	// Callers must not depend on validation occurring.
	DisableMetadata bool
}

// Validator checks complete bindings against the registry and the parameter
// metadata their behaviors declare.
type Validator struct {
	registry *Registry
	opts     Options
}

// NewValidator creates a validator over the given registry.
func NewValidator(registry *Registry, opts Options) *Validator {
	return &Validator{registry: registry, opts: opts}
}

// validHIDUsage checks a parameter encoding a usage page and ID pair. Only
// the keyboard and consumer pages are accepted.
func (v *Validator) validHIDUsage(ctx context.Context, usage hid.Usage) bool {
	switch usage.Page() {
	case hid.PageKeyboard:
		return hid.ValidKeyboardUsage(usage.ID())
	case hid.PageConsumer:
		max := uint16(hid.ConsumerMaxUsageBasic)
		if v.opts.FullConsumerUsages {
			max = hid.ConsumerMaxUsageFull
		}
		return usage.ID() <= max
	default:
		ctxlog.FromContext(ctx).Warn("Unsupported HID usage page.", "page", uint16(usage.Page()))
		return false
	}
}

// validateValues checks one parameter against a description list. The list
// is scanned in declaration order and the first match wins. An empty list
// yields ErrNoMetadata, an exhausted one ErrUnsupported.
func (v *Validator) validateValues(ctx context.Context, descs []Value, param uint32) error {
	if len(descs) == 0 {
		return ErrNoMetadata
	}

	for _, desc := range descs {
		var match bool
		switch d := desc.(type) {
		case Nil:
			match = param == 0
		case HIDUsage:
			match = v.validHIDUsage(ctx, hid.Usage(param))
		case LayerIndex:
			match = param < uint32(v.opts.LayerCount)
		case Literal:
			match = param == d.Value
		case Range:
			match = param >= d.Min && param <= d.Max
		}

		if match {
			return nil
		}
	}

	return ErrUnsupported
}

// ValidateMetadata checks a parameter pair against a behavior's metadata.
// Missing metadata accepts only (0, 0). Otherwise the sets are tried in
// declaration order; within a set a parameter passes when its descriptions
// accept it, or when it has no descriptions and the value is zero.
func (v *Validator) ValidateMetadata(ctx context.Context, meta *Metadata, param1, param2 uint32) error {
	if meta == nil || len(meta.Sets) == 0 {
		if meta == nil {
			ctxlog.FromContext(ctx).Error("No metadata to check parameters against.")
		}
		if param1 == 0 && param2 == 0 {
			return nil
		}
		return ErrInvalidParameters
	}

	for _, set := range meta.Sets {
		err1 := v.validateValues(ctx, set.Param1, param1)
		err2 := v.validateValues(ctx, set.Param2, param2)

		ok1 := err1 == nil || (errors.Is(err1, ErrNoMetadata) && param1 == 0)
		ok2 := err2 == nil || (errors.Is(err2, ErrNoMetadata) && param2 == 0)

		if ok1 && ok2 {
			return nil
		}
	}

	return ErrInvalidParameters
}

// ValidateBinding validates one complete binding: the behavior must resolve,
// its metadata must be retrievable, and the parameter pair must match. A
// metadata retrieval failure is the behavior's fault and is propagated
// unchanged.
func (v *Validator) ValidateBinding(ctx context.Context, b Binding) error {
	if v.opts.DisableMetadata {
		return nil
	}

	entry := v.registry.Resolve(b.Behavior)
	if entry == nil {
		return ErrNotFound
	}

	meta, err := entry.Device.ParameterMetadata()
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Failed getting parameter metadata.", "behavior", b.Behavior, "error", err)
		return err
	}

	return v.ValidateMetadata(ctx, meta, b.Param1, b.Param2)
}
