package goroutine

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type captureLogger struct {
	mu   sync.Mutex
	msgs []string
}

func (l *captureLogger) Errorf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, fmt.Sprintf(format, args...))
}

func (l *captureLogger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.msgs)
}

func TestSafeGo_RecoversPanic(t *testing.T) {
	log := &captureLogger{}
	rh := NewRecoveryHandler(log)

	done := make(chan struct{})
	rh.SafeGo("test", func() {
		defer close(done)
		panic("boom")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("горутина не завершилась")
	}

	assert.Eventually(t, func() bool { return log.count() == 1 }, time.Second, 10*time.Millisecond)
	assert.Contains(t, log.msgs[0], "panic in test: boom")
}

func TestRecover_NoPanicIsSilent(t *testing.T) {
	log := &captureLogger{}
	rh := NewRecoveryHandler(log)

	func() {
		defer rh.Recover("quiet")
	}()

	assert.Equal(t, 0, log.count())
}
