package logging

import (
	"sync"

	"github.com/mcdexio/dsc-engine/common/config"
)

// Variables only are used in logging package.
var (
	logToStdout      = config.GetBool("SERVER_LOG_TO_STDOUT", true)
	logToStackdriver = config.GetBool("SERVER_LOG_TO_STACKDRIVER", false)

	logName string

	defaultOnce sync.Once
	defaultOut  output
)

// defaultThresholdLevel returns the default log level.
func defaultThresholdLevel() level {
	return level(config.GetInt("SERVER_LOGLEVEL", 6))
}

// defaultOutput lazily builds the shared output set.
func defaultOutput() output {
	defaultOnce.Do(func() {
		o := multiOutput{}
		if logToStdout {
			o = append(o, stdout())
		}
		if logToStackdriver {
			o = append(o, stackdriver(logName))
		}
		defaultOut = o
	})
	return defaultOut
}

// Initialize initializes the logging package.
func Initialize(logname string) {
	logName = logname
}

// Finalize flushes every active output.
func Finalize() {
	if stdoutLoaded() {
		stdout().close()
	}
	if stackdriverLoaded() {
		stackdriver(logName).close()
	}
}
