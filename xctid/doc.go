// Package xctid implements the epoch and version-stamp types used to
// order transactions and detect conflicting writes: a 28-bit wrap-aware
// Epoch, and the VersionStamp that packs an Epoch, a 24-bit ordinal, and
// four status flags (deleted, moved, being_written, next_layer) into a
// single 64-bit word.
package xctid
