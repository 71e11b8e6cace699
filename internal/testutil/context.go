package testutil

import (
	"context"
	"testing"
	"time"
)

// ContextWithTimeout возвращает context, который отменяется по timeout или в конце теста.
func ContextWithTimeout(t testing.TB, d time.Duration) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), d)
	t.Cleanup(cancel)
	return ctx
}

// ContextWithCancel как ContextWithTimeout, но без ограничения по времени.
// cancel можно вызвать раньше, чтобы проверить остановку цикла.
func ContextWithCancel(t testing.TB) (context.Context, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx, cancel
}
