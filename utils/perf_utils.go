package utils

import (
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// LogDuration logs at debug level how long functionName has been running
// since start, and returns that duration.
func LogDuration(functionName string, start time.Time, args ...interface{}) time.Duration {
	duration := time.Since(start).Round(time.Microsecond)
	if len(args) > 0 {
		log.Debugf("%s took %v with args %v", functionName, duration, args)
	} else {
		log.Debugf("%s took %v", functionName, duration)
	}
	return duration
}
