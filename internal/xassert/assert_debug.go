//go:build foedus_debug

package xassert

import (
	log "github.com/sirupsen/logrus"
)

// True logs and terminates the process if cond is false. Only present
// in builds tagged foedus_debug; see assert_release.go for the no-op
// used otherwise.
func True(cond bool, format string, args ...interface{}) {
	if !cond {
		log.WithField("assertion", "foedus_debug").Fatalf(format, args...)
	}
}
