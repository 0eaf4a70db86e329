package logging

import (
	"fmt"
	"os"
	"sync"
)

// LabelTag is the label key carrying the logger tag.
const LabelTag = "tag"

// labelMap are log labels attached to every entry.
type labelMap map[string]string

// output defines the log output interface.
type output interface {
	output(level level, labels labelMap, log string)
}

// multiOutput fans a log entry out to several outputs.
type multiOutput []output

func (o multiOutput) output(level level, labels labelMap, log string) {
	for _, out := range o {
		out.output(level, labels, log)
	}
}

// Logger defines the logger interface.
type Logger interface {
	CloneLogger() Logger
	SetLabel(label, value string)

	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Notice(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
	Critical(format string, args ...interface{})
}

type logger struct {
	sync.RWMutex
	labelMap       labelMap
	thresholdLevel level
	output         output
}

// NewLoggerTag returns a logger tagged with tag, writing to the default
// outputs at the configured threshold level.
func NewLoggerTag(tag string) Logger {
	l := &logger{
		labelMap:       labelMap{LabelTag: tag},
		thresholdLevel: defaultThresholdLevel(),
		output:         defaultOutput(),
	}
	if !l.thresholdLevel.IsValid() {
		panic(fmt.Sprintf("invalid log threshold level (%d, %d), [%d]",
			firstLevel, lastLevel, l.thresholdLevel))
	}
	return l
}

// CloneLogger returns a cloned logger.
func (l *logger) CloneLogger() Logger {
	l.RLock()
	defer l.RUnlock()
	m := labelMap{}
	for key, value := range l.labelMap {
		m[key] = value
	}
	return &logger{
		labelMap:       m,
		thresholdLevel: l.thresholdLevel,
		output:         l.output,
	}
}

// SetLabel sets a label on the logger.
func (l *logger) SetLabel(label, value string) {
	l.Lock()
	defer l.Unlock()
	l.labelMap[label] = value
}

// Debug - logger level of debug
func (l *logger) Debug(format string, args ...interface{}) {
	l.print(debugLevel, format, args...)
}

// Info - logger level of info
func (l *logger) Info(format string, args ...interface{}) {
	l.print(infoLevel, format, args...)
}

// Notice - logger level of notice
func (l *logger) Notice(format string, args ...interface{}) {
	l.print(noticeLevel, format, args...)
}

// Warn - logger level of warn
func (l *logger) Warn(format string, args ...interface{}) {
	l.print(warnLevel, format, args...)
}

// Error - logger level of error
func (l *logger) Error(format string, args ...interface{}) {
	l.print(errorLevel, format, args...)
}

// Critical - logger level of critical. The process exits after the entry is
// flushed.
func (l *logger) Critical(format string, args ...interface{}) {
	l.print(criticalLevel, format, args...)
}

func (l *logger) print(level level, format string, args ...interface{}) {
	defer func() {
		if level <= criticalLevel {
			Finalize()
			os.Exit(1)
		}
	}()
	if level > l.thresholdLevel {
		return
	}
	l.RLock()
	m := labelMap{}
	for key, value := range l.labelMap {
		m[key] = value
	}
	l.RUnlock()
	log := fmt.Sprintf(format, args...)
	if len(log) == 0 || log[len(log)-1] != '\n' {
		log += "\n"
	}
	l.output.output(level, m, log)
}
