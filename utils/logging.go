package utils

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// SetupLogging configures the global logrus logger from level and format names
func SetupLogging(level, format string) {
	log.SetOutput(os.Stdout)

	if strings.EqualFold(format, "json") {
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05.000"})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05.000"})
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// BotLogf logs an informational line tagged with a functional area
func BotLogf(area string, format string, args ...interface{}) {
	log.WithField("area", area).Info(fmt.Sprintf(format, args...))
}

// AreaLogger returns an entry pre-tagged with an area for debug and error output
func AreaLogger(area string) *log.Entry {
	return log.WithField("area", area)
}
