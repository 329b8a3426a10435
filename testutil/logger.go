package testutil

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// SetupLogger configures the package-level logrus logger for tests and
// returns it. Tests that want deterministic, visible failure output pass
// "" to log to stderr; anything else is treated as a file path.
func SetupLogger(file string) *log.Logger {
	if file == "" {
		log.SetOutput(os.Stderr)
	} else {
		w, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
		if err != nil {
			panic(err)
		}
		log.SetOutput(w)
	}

	log.SetLevel(log.InfoLevel)
	log.WithField("pid", os.Getpid()).Info("tests starting")
	return log.StandardLogger()
}
