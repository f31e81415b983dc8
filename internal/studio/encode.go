package studio

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/keebforge/keycore/internal/layout"
)

// The payload types here implement msgpack.CustomEncoder so the transport's
// enc.Encode call pulls each layer, binding, and key descriptor out of the
// collaborators on demand. Nothing below builds a slice of the full keymap.

// KeymapPayload is the get_keymap response body.
type KeymapPayload struct {
	svc *Service
}

var _ msgpack.CustomEncoder = (*KeymapPayload)(nil)

// EncodeMsgpack streams {"layers": [...]}.
func (p *KeymapPayload) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(1); err != nil {
		return err
	}
	if err := enc.EncodeString("layers"); err != nil {
		return err
	}
	return p.svc.encodeLayers(enc)
}

// encodeLayers streams every layer record: an optional display name plus one
// wire binding per key position.
func (s *Service) encodeLayers(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(s.keymap.LayerCount()); err != nil {
		return err
	}

	for l := 0; l < s.keymap.LayerCount(); l++ {
		name, hasName := s.keymap.LayerName(l)

		fields := 1
		if hasName {
			fields = 2
		}
		if err := enc.EncodeMapLen(fields); err != nil {
			return err
		}
		if hasName {
			if err := enc.EncodeString("name"); err != nil {
				return err
			}
			if err := enc.EncodeString(name); err != nil {
				return err
			}
		}

		if err := enc.EncodeString("bindings"); err != nil {
			return err
		}
		if err := enc.EncodeArrayLen(s.keymap.KeyCount()); err != nil {
			return err
		}
		for b := 0; b < s.keymap.KeyCount(); b++ {
			binding, err := s.keymap.GetBinding(l, b)
			if err != nil {
				return err
			}
			if err := s.encodeBinding(enc, binding.Behavior, binding.Param1, binding.Param2); err != nil {
				return err
			}
		}
	}

	return nil
}

// encodeBinding streams one wire binding, translating the behavior name to
// its local ID.
func (s *Service) encodeBinding(enc *msgpack.Encoder, name string, param1, param2 uint32) error {
	if err := enc.EncodeMapLen(3); err != nil {
		return err
	}
	if err := enc.EncodeString("behavior_id"); err != nil {
		return err
	}
	if err := enc.EncodeUint16(uint16(s.ids.IDForName(name))); err != nil {
		return err
	}
	if err := enc.EncodeString("param1"); err != nil {
		return err
	}
	if err := enc.EncodeUint32(param1); err != nil {
		return err
	}
	if err := enc.EncodeString("param2"); err != nil {
		return err
	}
	return enc.EncodeUint32(param2)
}

// PhysicalLayoutsPayload is the get_physical_layouts response body.
type PhysicalLayoutsPayload struct {
	svc *Service
}

var _ msgpack.CustomEncoder = (*PhysicalLayoutsPayload)(nil)

// EncodeMsgpack streams {"active_layout_index": n, "layouts": [...]}.
func (p *PhysicalLayoutsPayload) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(2); err != nil {
		return err
	}

	if err := enc.EncodeString("active_layout_index"); err != nil {
		return err
	}
	if err := enc.EncodeInt(int64(p.svc.layouts.Selected())); err != nil {
		return err
	}

	if err := enc.EncodeString("layouts"); err != nil {
		return err
	}

	layouts := p.svc.layouts.List()
	if err := enc.EncodeArrayLen(len(layouts)); err != nil {
		return err
	}
	for _, l := range layouts {
		fields := 1
		if l.DisplayName != "" {
			fields = 2
		}
		if err := enc.EncodeMapLen(fields); err != nil {
			return err
		}
		if l.DisplayName != "" {
			if err := enc.EncodeString("name"); err != nil {
				return err
			}
			if err := enc.EncodeString(l.DisplayName); err != nil {
				return err
			}
		}

		if err := enc.EncodeString("keys"); err != nil {
			return err
		}
		if err := enc.EncodeArrayLen(len(l.Keys)); err != nil {
			return err
		}
		for _, k := range l.Keys {
			if err := encodeKeyAttrs(enc, k); err != nil {
				return err
			}
		}
	}

	return nil
}

func encodeKeyAttrs(enc *msgpack.Encoder, k layout.KeyAttrs) error {
	fields := [7]struct {
		name  string
		value int32
	}{
		{"width", k.Width}, {"height", k.Height},
		{"x", k.X}, {"y", k.Y},
		{"r", k.R}, {"rx", k.RX}, {"ry", k.RY},
	}

	if err := enc.EncodeMapLen(len(fields)); err != nil {
		return err
	}
	for _, f := range fields {
		if err := enc.EncodeString(f.name); err != nil {
			return err
		}
		if err := enc.EncodeInt32(f.value); err != nil {
			return err
		}
	}
	return nil
}

// SetActiveLayoutPayload is the set_active_physical_layout response body:
// either the post-migration keymap snapshot or a structured error.
type SetActiveLayoutPayload struct {
	svc *Service
	Err Code
}

var _ msgpack.CustomEncoder = (*SetActiveLayoutPayload)(nil)

// EncodeMsgpack streams {"ok": {"layers": [...]}} or {"err": code}.
func (p *SetActiveLayoutPayload) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(1); err != nil {
		return err
	}

	if p.Err != "" {
		if err := enc.EncodeString("err"); err != nil {
			return err
		}
		return enc.EncodeString(string(p.Err))
	}

	if err := enc.EncodeString("ok"); err != nil {
		return err
	}
	if err := enc.EncodeMapLen(1); err != nil {
		return err
	}
	if err := enc.EncodeString("layers"); err != nil {
		return err
	}
	return p.svc.encodeLayers(enc)
}
