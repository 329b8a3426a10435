// Package control combines a lock from mcs with a version stamp from
// xctid into the control word embedded at the head of every record:
// ExclusiveControlWord for records guarded by a plain exclusive lock,
// and ReaderWriterControlWord for records guarded by a fair
// reader-writer lock. Both types forward the predicates their embedded
// VersionStamp already provides, so callers rarely need to reach past
// the control word into its Stamp field directly.
package control
