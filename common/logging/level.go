package logging

import (
	"cloud.google.com/go/logging"
	"github.com/ttacon/chalk"
)

// level of logger.
type level int

// Log / Severity levels, most severe first.
const (
	firstLevel level = iota
	criticalLevel
	errorLevel
	warnLevel
	noticeLevel
	infoLevel
	debugLevel
	lastLevel
)

// IsValid returns if l is inside the valid range.
func (l level) IsValid() bool {
	return l > firstLevel && l < lastLevel
}

// String returns the fixed-width name of l.
func (l level) String() string {
	var levelName = []string{
		"",
		" CRIT",
		"ERROR",
		" WARN",
		" NOTE",
		" INFO",
		"DEBUG",
		"",
	}
	return levelName[l]
}

// Severity maps l onto a stackdriver severity.
func (l level) Severity() logging.Severity {
	var levelSeverity = []logging.Severity{
		-1,
		logging.Critical,
		logging.Error,
		logging.Warning,
		logging.Notice,
		logging.Info,
		logging.Debug,
		-1,
	}
	return levelSeverity[l]
}

// Style returns the terminal style used by the stdout output.
func (l level) Style() chalk.Style {
	var levelStyle = []chalk.Style{
		chalk.ResetColor.NewStyle(),
		chalk.Magenta.NewStyle(),
		chalk.Red.NewStyle(),
		chalk.Yellow.NewStyle(),
		chalk.Cyan.NewStyle(),
		chalk.Green.NewStyle(),
		chalk.ResetColor.NewStyle(),
		chalk.ResetColor.NewStyle(),
	}
	return levelStyle[l]
}
