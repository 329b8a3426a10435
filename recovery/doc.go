// Package recovery implements the persisted shape of a version stamp
// and a small demonstration store, backed by go.etcd.io/bbolt, for
// writing and reading that shape back. Locks are never persisted, and
// a VersionStamp's status bits (deleted, moved, being_written,
// next_layer) are masked off on the way out; only epoch and ordinal
// survive a snapshot.
package recovery
