// Package mvcc demonstrates the storage-page role described as an
// external collaborator of the lock and version-stamp substrate: fixed
// size pages holding record payloads, records pairing a control word
// with such a payload, and the five-step publish protocol a page owner
// runs to commit a write.
//
// The page cache, on-disk layout, and table/row machinery a full storage
// manager would need are out of scope here; Page and Record only hold
// enough shape to exercise control.ExclusiveControlWord under concurrent
// access. Nothing in this package uses control.ReaderWriterControlWord.
//
// Record keeps the version (here, a control word) and the byte payload
// of the row sketched for a fat-lock row manager, but has no
// previous-version pointer: records are not chained into a
// linked list of deltas; Publish overwrites the payload in place once the
// writer holds the row's lock, which is sufficient to demonstrate the
// protocol without a WAL or a page cache behind it.
package mvcc
