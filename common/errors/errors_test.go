package errors

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mcdexio/dsc-engine/common/logging"
)

func TestCatchWithoutPanicIsNoop(t *testing.T) {
	Initialize(logging.NewLoggerTag("test"))
	require.NotPanics(t, func() {
		defer Catch()
	})
}

func TestInitializeReplacesLogger(t *testing.T) {
	first := logging.NewLoggerTag("first")
	second := logging.NewLoggerTag("second")

	Initialize(first)
	mu.Lock()
	require.Same(t, first, logger)
	mu.Unlock()

	Initialize(second)
	mu.Lock()
	require.Same(t, second, logger)
	mu.Unlock()
}
