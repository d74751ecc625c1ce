package testutil

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/junioryono/inject"
)

// Logger returns a discarding debug logger whose entries can be inspected
// through the returned logger's hooks.
func Logger(t *testing.T) *logrus.Logger {
	t.Helper()
	logger, _ := test.NewNullLogger()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.DebugLevel)
	return logger
}

// LoggerWithHook returns a debug logger and the hook recording its entries.
func LoggerWithHook(t *testing.T) (*logrus.Logger, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}

// AssertResolvable resolves inst and asserts the result has type T.
func AssertResolvable[T any](t *testing.T, inj inject.Injector, inst inject.Instance) T {
	t.Helper()
	v, err := inject.ResolveNamed[T](context.Background(), inj, inst.Name, inst.Type)
	require.NoError(t, err, "failed to resolve %s", inst)
	return v
}

// AssertNoResource asserts that err is a NoResourceError and returns it.
func AssertNoResource(t *testing.T, err error) inject.NoResourceError {
	t.Helper()
	var nr inject.NoResourceError
	require.ErrorAs(t, err, &nr)
	return nr
}

// AssertBuildError asserts that err is a BuildError of the given phase.
func AssertBuildError(t *testing.T, err error, phase string) inject.BuildError {
	t.Helper()
	var be inject.BuildError
	require.ErrorAs(t, err, &be)
	require.Equal(t, phase, be.Phase)
	return be
}
