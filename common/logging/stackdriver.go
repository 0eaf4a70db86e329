package logging

import (
	"context"
	"sync"

	"cloud.google.com/go/logging"
	"github.com/mcdexio/dsc-engine/common/config"
)

var (
	stackdriverOnce sync.Once
	stackdriverOut  *stackdriverOutput
)

// stackdriver returns the shared stackdriver output.
func stackdriver(logname string) *stackdriverOutput {
	stackdriverOnce.Do(func() {
		o, err := newStackdriverOutput(logname)
		if err != nil {
			panic(err)
		}
		stackdriverOut = o
	})
	return stackdriverOut
}

func stackdriverLoaded() bool { return stackdriverOut != nil }

type stackdriverOutput struct {
	client *logging.Client
	logger *logging.Logger
}

// assertOutputInterface
func _() {
	var _ output = (*stackdriverOutput)(nil)
}

func newStackdriverOutput(logname string) (*stackdriverOutput, error) {
	ctx := context.Background()
	client, err := logging.NewClient(ctx, config.GetString("SERVER_PROJECT_ID"))
	if err != nil {
		return nil, err
	}
	// Check if connection is valid.
	if err = client.Ping(ctx); err != nil {
		return nil, err
	}
	o := &stackdriverOutput{client: client}
	if logname != "" {
		o.logger = client.Logger(logname)
	}
	return o, nil
}

func (o *stackdriverOutput) output(level level, labels labelMap, log string) {
	if o.logger == nil {
		return
	}
	o.logger.Log(logging.Entry{
		Severity: level.Severity(),
		Labels:   labels,
		Payload:  log,
	})
}

func (o *stackdriverOutput) close() {
	if err := o.client.Close(); err != nil {
		panic(err)
	}
}
