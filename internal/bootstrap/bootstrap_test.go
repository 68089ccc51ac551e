package bootstrap

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApp_Run(t *testing.T) {
	t.Run("run returns nil and hooks still run", func(t *testing.T) {
		app := New()
		closed := false
		app.AddShutdownHook("store", func(ctx context.Context) error {
			closed = true
			return nil
		})
		err := app.Run(context.Background(), func(ctx context.Context) error {
			return nil
		})
		assert.NoError(t, err)
		assert.True(t, closed)
	})

	t.Run("run returns error", func(t *testing.T) {
		app := New()
		want := errors.New("listen tcp :8080: bind: address already in use")
		err := app.Run(context.Background(), func(ctx context.Context) error {
			return want
		})
		assert.ErrorIs(t, err, want)
	})

	t.Run("shutdown hooks run in LIFO order on context cancel", func(t *testing.T) {
		app := New()
		var mu sync.Mutex
		var order []string
		for _, name := range []string{"first", "second", "third"} {
			app.AddShutdownHook(name, func(ctx context.Context) error {
				mu.Lock()
				defer mu.Unlock()
				order = append(order, name)
				return nil
			})
		}

		ctx, cancel := context.WithCancel(context.Background())
		err := app.Run(ctx, func(ctx context.Context) error {
			cancel()
			<-ctx.Done()
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"third", "second", "first"}, order)
	})

	t.Run("hook registered from inside run callback", func(t *testing.T) {
		app := New()
		hookCalled := false

		ctx, cancel := context.WithCancel(context.Background())
		err := app.Run(ctx, func(ctx context.Context) error {
			app.AddShutdownHook("late", func(ctx context.Context) error {
				hookCalled = true
				return nil
			})
			cancel()
			<-ctx.Done()
			return nil
		})
		require.NoError(t, err)
		assert.True(t, hookCalled)
	})

	t.Run("run blocking until a hook releases it", func(t *testing.T) {
		app := New()
		release := make(chan struct{})
		app.AddShutdownHook("server", func(ctx context.Context) error {
			close(release)
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := app.Run(ctx, func(context.Context) error {
			<-release
			return nil
		})
		assert.NoError(t, err)
	})

	t.Run("hook errors are joined", func(t *testing.T) {
		app := New()
		hookErr := errors.New("close failed")
		app.AddShutdownHook("store", func(ctx context.Context) error {
			return hookErr
		})
		err := app.Run(context.Background(), func(ctx context.Context) error {
			return nil
		})
		assert.ErrorIs(t, err, hookErr)
		assert.Contains(t, err.Error(), "store > close failed")
	})

	t.Run("hooks receive a deadline", func(t *testing.T) {
		app := New(WithShutdownTimeout(time.Second))
		var hasDeadline bool
		app.AddShutdownHook("server", func(ctx context.Context) error {
			_, hasDeadline = ctx.Deadline()
			return nil
		})
		require.NoError(t, app.Run(context.Background(), func(ctx context.Context) error {
			return nil
		}))
		assert.True(t, hasDeadline)
	})

	t.Run("run that never returns times out", func(t *testing.T) {
		app := New(WithShutdownTimeout(20 * time.Millisecond))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		block := make(chan struct{})
		defer close(block)

		err := app.Run(ctx, func(context.Context) error {
			<-block
			return nil
		})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
