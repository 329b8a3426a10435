// Package xassert implements this module's debug-only assertion check,
// the Go rendition of FOEDUS's ASSERT_ND macro: a check compiled in and
// enforced under the foedus_debug build tag, and compiled out entirely
// otherwise so release builds pay nothing for it.
package xassert
