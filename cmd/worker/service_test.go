package main

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/gearmarket-backend/pkg/logger"
)

type pingStub struct{ err error }

func (p pingStub) Ping(context.Context) error { return p.err }

type runnerFunc func(ctx context.Context) error

func (f runnerFunc) Run(ctx context.Context) error { return f(ctx) }

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{PubSub: pingStub{}, Consumer: runnerFunc(func(context.Context) error { return nil })})
	require.Error(t, err)

	_, err = NewService(ServiceParams{Logger: testLogger(), Consumer: runnerFunc(func(context.Context) error { return nil })})
	require.Error(t, err)

	_, err = NewService(ServiceParams{Logger: testLogger(), PubSub: pingStub{}})
	require.Error(t, err)
}

func TestRunStopsOnFailedPing(t *testing.T) {
	ran := false
	svc, err := NewService(ServiceParams{
		Logger: testLogger(),
		Pingers: map[string]func(context.Context) error{
			"redis": func(context.Context) error { return errors.New("connection refused") },
		},
		PubSub:   pingStub{},
		Consumer: runnerFunc(func(context.Context) error { ran = true; return nil }),
	})
	require.NoError(t, err)

	err = svc.Run(context.Background())
	require.ErrorContains(t, err, "redis ping failed")
	require.False(t, ran)
}

func TestRunReturnsConsumerError(t *testing.T) {
	boom := errors.New("subscription deleted")
	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		PubSub:   pingStub{},
		Consumer: runnerFunc(func(context.Context) error { return boom }),
	})
	require.NoError(t, err)
	require.ErrorIs(t, svc.Run(context.Background()), boom)
}

func TestRunReportsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	svc, err := NewService(ServiceParams{
		Logger: testLogger(),
		PubSub: pingStub{},
		Consumer: runnerFunc(func(ctx context.Context) error {
			cancel()
			<-ctx.Done()
			return nil
		}),
	})
	require.NoError(t, err)
	require.ErrorIs(t, svc.Run(ctx), context.Canceled)
}
