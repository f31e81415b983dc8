// Package studio implements the remote-configuration service: the request
// handlers an external tool uses to read and mutate the active keymap and
// physical-layout selection at runtime.
//
// Handlers execute to completion one at a time on a single worker; the
// transport adapter guarantees serialization, so no handler takes locks.
// Responses that carry whole layers or the layout catalog are encoded
// lazily, element by element, through msgpack's streaming encoder — the
// service never materializes a buffer proportional to layers times key
// positions. The transport supplies the message envelope; this package only
// defines payloads.
package studio
