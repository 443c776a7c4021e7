// Package testutil — ожидания с таймаутом для тестов сервера.
//
// Всё, что ждёт сервер (готовность, возврат Run, смена состояния,
// исчезновение файла данных), ограничено по времени, чтобы зависший
// тест падал с понятным сообщением, а не по общему -timeout.
package testutil

import (
	"fmt"
	"time"
)

// TB — подмножество testing.TB, нужное хелперам.
type TB interface {
	Helper()
	Fatalf(format string, args ...any)
}

// pollInterval — шаг опроса в Eventually.
const pollInterval = 5 * time.Millisecond

// RequireReceive ждёт значение из ch не дольше timeout.
//
//	err := testutil.RequireReceive(t, errCh, 5*time.Second, "Run on %s", addr)
func RequireReceive[T any](t TB, ch <-chan T, timeout time.Duration, what string, args ...any) T {
	t.Helper()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatalf("%s: channel closed without a value", fmt.Sprintf(what, args...))
		}
		return v
	case <-timer.C:
		t.Fatalf("%s: nothing received in %v", fmt.Sprintf(what, args...), timeout)
	}
	panic("unreachable")
}

// RequireClosed ждёт закрытия ch, например srv.Ready().
func RequireClosed(t TB, ch <-chan struct{}, timeout time.Duration, what string, args ...any) {
	t.Helper()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ch:
	case <-timer.C:
		t.Fatalf("%s: not closed in %v", fmt.Sprintf(what, args...), timeout)
	}
}

// Eventually опрашивает cond, пока она не вернёт true или не выйдет timeout.
func Eventually(t TB, timeout time.Duration, cond func() bool, what string, args ...any) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("%s: condition not met in %v", fmt.Sprintf(what, args...), timeout)
		}
		time.Sleep(pollInterval)
	}
}
