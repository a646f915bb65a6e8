package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

var errDown = errors.New("redis: connection refused")

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time      { return f.t }
func (f *fakeClock) add(d time.Duration) { f.t = f.t.Add(d) }

func newTestBreaker(clock *fakeClock) *CircuitBreaker {
	cb := NewCircuitBreaker("test", Config{
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 3 },
	})
	cb.now = clock.now
	cb.expiry = clock.now().Add(cb.interval)
	return cb
}

// TestCircuitBreaker_Trip 连续失败后打开熔断器
func TestCircuitBreaker_Trip(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	cb := newTestBreaker(clock)

	for i := 0; i < 3; i++ {
		if err := cb.Execute(func() error { return errDown }); !errors.Is(err, errDown) {
			t.Fatalf("第%d次应返回业务错误，实际: %v", i+1, err)
		}
	}
	if cb.State() != StateOpen {
		t.Fatalf("期望OPEN，实际%s", cb.State())
	}

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	if !errors.Is(err, ErrOpenState) || called {
		t.Errorf("OPEN状态应快速失败且不调用请求，err=%v called=%v", err, called)
	}
}

// TestCircuitBreaker_HalfOpenRecover 超时后半开，探测成功则关闭
func TestCircuitBreaker_HalfOpenRecover(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	cb := newTestBreaker(clock)
	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errDown })
	}

	clock.add(31 * time.Second)
	if cb.State() != StateHalfOpen {
		t.Fatalf("期望HALF_OPEN，实际%s", cb.State())
	}

	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("半开探测失败: %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("探测成功后应CLOSED，实际%s", cb.State())
	}
}

// TestCircuitBreaker_HalfOpenFail 半开状态失败立即重新打开
func TestCircuitBreaker_HalfOpenFail(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	cb := newTestBreaker(clock)
	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errDown })
	}
	clock.add(31 * time.Second)

	_ = cb.Execute(func() error { return errDown })
	if cb.State() != StateOpen {
		t.Errorf("半开失败后应OPEN，实际%s", cb.State())
	}
}

// TestCircuitBreaker_WindowReset 统计窗口过期后计数清零
func TestCircuitBreaker_WindowReset(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	cb := newTestBreaker(clock)

	_ = cb.Execute(func() error { return errDown })
	_ = cb.Execute(func() error { return errDown })
	clock.add(11 * time.Second)
	_ = cb.Execute(func() error { return errDown })

	if cb.State() != StateClosed {
		t.Errorf("窗口重置后不应熔断，实际%s", cb.State())
	}
	if c := cb.Counts(); c.ConsecutiveFailures != 1 || c.FailureRate() != 1 {
		t.Errorf("计数错误: %+v", c)
	}
}
