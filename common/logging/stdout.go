package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mcdexio/dsc-engine/env"
	"github.com/ttacon/chalk"
)

// TimeFormat is the timestamp layout used by the stdout output.
const TimeFormat = "2006-01-02 15:04:05.000"

var (
	timeStyle = chalk.ResetColor.NewStyle().WithTextStyle(chalk.Inverse)
	tagStyle  = chalk.ResetColor.NewStyle().WithBackground(chalk.Blue)

	stdoutOnce sync.Once
	stdoutOut  *stdOutput
)

// stdout returns the shared stdout output.
func stdout() *stdOutput {
	stdoutOnce.Do(func() {
		stdoutOut = newStdOutput()
	})
	return stdoutOut
}

func stdoutLoaded() bool { return stdoutOut != nil }

type stdOutput struct {
	writer    io.Writer
	withColor bool

	workerChan chan []byte
	closeChan  chan struct{}
	closeOnce  sync.Once
}

// assertOutputInterface
func _() {
	var _ output = (*stdOutput)(nil)
}

func newStdOutput() *stdOutput {
	o := &stdOutput{
		writer:     os.Stdout,
		withColor:  !env.IsCI(),
		workerChan: make(chan []byte, 1024),
		closeChan:  make(chan struct{}),
	}
	go o.work()
	return o
}

func (o *stdOutput) output(level level, labels labelMap, log string) {
	tsRaw := time.Now().Format(TimeFormat)
	svRaw := fmt.Sprintf("%6s", level.String())
	tagRaw := fmt.Sprintf("%16s", labels[LabelTag])

	var b []byte
	if o.withColor {
		b = []byte(fmt.Sprintf("%s %s %s %s",
			timeStyle.Style(tsRaw),
			level.Style().Style(svRaw),
			tagStyle.Style(tagRaw),
			log))
	} else {
		b = []byte(fmt.Sprintf("%s %s %s %s", tsRaw, svRaw, tagRaw, log))
	}

	select {
	case o.workerChan <- b:
	case <-o.closeChan:
	}
}

func (o *stdOutput) work() {
	for {
		select {
		case <-o.closeChan:
			o.flush()
			return
		case b := <-o.workerChan:
			_, _ = o.writer.Write(b)
		}
	}
}

func (o *stdOutput) flush() {
	for {
		select {
		case b := <-o.workerChan:
			_, _ = o.writer.Write(b)
		default:
			return
		}
	}
}

func (o *stdOutput) close() {
	o.closeOnce.Do(func() { close(o.closeChan) })
}
