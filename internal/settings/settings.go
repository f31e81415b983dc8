// Package settings defines the read/write contract for the durable
// key/value store backing persisted firmware state.
//
// Keys are slash-separated paths such as "behavior/local_id/7". The storage
// mechanics behind the contract are deliberately out of scope; see
// memsettings and sqlitesettings for implementations.
package settings

import "context"

// LoadFunc receives one stored record during replay. The key is relative to
// the replayed prefix. Returning an error rejects that record only; replay
// continues with the next one.
type LoadFunc func(key string, value []byte) error

// Store is the persistence contract. Writes are synchronous: when SaveOne
// returns, the record has been handed to the backend durably.
type Store interface {
	// Load replays every stored record under prefix, in ascending key
	// order, through fn. It returns an error only when the backend itself
	// fails, never for records fn rejects.
	Load(ctx context.Context, prefix string, fn LoadFunc) error

	// SaveOne durably stores one record, replacing any previous value.
	SaveOne(ctx context.Context, key string, value []byte) error
}
