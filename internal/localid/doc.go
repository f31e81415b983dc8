// Package localid assigns each registered behavior a compact 16-bit
// identifier that stays stable across restarts, so the remote-configuration
// protocol can refer to behaviors without shipping names on every message.
//
// Exactly one assignment scheme is active per process, resolved from
// configuration at startup: a deterministic CRC16 of the behavior name, or a
// monotonically increasing counter persisted through the settings store.
// Assignment runs once, strictly before any request handler is reachable;
// the resulting table is read-only afterwards.
package localid
