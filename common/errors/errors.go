// Package errors installs a process-wide panic handler that routes the
// recovered value and its stack through the logging package, so a crash
// reaches the same outputs as every other log entry.
package errors

import (
	"runtime/debug"
	"sync"

	"github.com/mcdexio/dsc-engine/common/logging"
)

var (
	mu     sync.Mutex
	logger logging.Logger
)

// Initialize sets the logger Catch reports through. Without it, Catch falls
// back to a logger tagged "panic".
func Initialize(l logging.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// Catch logs a recovered panic with its stack trace and exits the process
// through the logger's Critical path. It is expected to be deferred from
// main, after Initialize.
func Catch() {
	recovered := recover()
	if recovered == nil {
		return
	}
	mu.Lock()
	l := logger
	mu.Unlock()
	if l == nil {
		l = logging.NewLoggerTag("panic")
	}
	l.Critical("%v\n%s", recovered, debug.Stack())
}
