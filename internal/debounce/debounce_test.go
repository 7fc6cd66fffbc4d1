package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

// fakeScheduler records callbacks instead of arming real timers.
type fakeScheduler struct {
	delays    []time.Duration
	callbacks []func()
}

func (s *fakeScheduler) install(t *testing.T) {
	t.Helper()
	orig := afterFunc
	t.Cleanup(func() { afterFunc = orig })
	afterFunc = func(delay time.Duration, f func()) *time.Timer {
		s.delays = append(s.delays, delay)
		s.callbacks = append(s.callbacks, f)
		timer := time.NewTimer(time.Hour)
		timer.Stop()
		return timer
	}
}

func TestDebouncer_Schedules(t *testing.T) {
	tests := []struct {
		name string
		// ops is a sequence of "t" (Trigger), "s" (Stop) and a digit n, which
		// runs the n-th scheduled callback.
		ops  string
		want int32
	}{
		{name: "single", ops: "t0", want: 1},
		{name: "latest_wins", ops: "tt01", want: 1},
		{name: "stale_only", ops: "tt0", want: 0},
		{name: "stopped", ops: "ts0", want: 0},
		{name: "retriggered_after_stop", ops: "tst01", want: 1},
		{name: "fires_once_per_schedule", ops: "t00", want: 1},
		{name: "two_rounds", ops: "t0t1", want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sched fakeScheduler
			sched.install(t)

			var calls atomic.Int32
			d := New(time.Second, func() { calls.Add(1) })
			for _, op := range tt.ops {
				switch {
				case op == 't':
					d.Trigger()
				case op == 's':
					d.Stop()
				default:
					i := int(op - '0')
					if i >= len(sched.callbacks) {
						t.Fatalf("callback %d was never scheduled", i)
					}
					sched.callbacks[i]()
				}
			}
			if got := calls.Load(); got != tt.want {
				t.Fatalf("calls = %d, want %d", got, tt.want)
			}
			for _, delay := range sched.delays {
				if delay != time.Second {
					t.Fatalf("scheduled delay = %v, want %v", delay, time.Second)
				}
			}
		})
	}
}

func TestDebouncer_RealTimer(t *testing.T) {
	fired := make(chan struct{}, 4)
	d := New(10*time.Millisecond, func() { fired <- struct{}{} })
	defer d.Stop()

	for range 5 {
		d.Trigger()
	}
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("debouncer did not fire")
	}
	select {
	case <-fired:
		t.Fatal("burst fired more than once")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDebouncer_NilFunc(t *testing.T) {
	var sched fakeScheduler
	sched.install(t)

	d := New(time.Millisecond, nil)
	d.Trigger()
	sched.callbacks[0]()
}
