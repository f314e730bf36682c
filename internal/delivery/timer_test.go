package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimer_FiresAutoSubmit(t *testing.T) {
	a := readingAssessment()
	a.Duration = 3
	s := NewSession(a, ModeTest)

	timer := NewTimer(s, 5*time.Millisecond)
	timer.Start(context.Background())
	defer timer.Stop()

	select {
	case <-s.AutoSubmit():
	case <-time.After(2 * time.Second):
		t.Fatal("auto-submit trigger did not fire")
	}
	assert.Equal(t, 0, s.Remaining())
}

func TestTimer_StopHaltsTicking(t *testing.T) {
	s := NewSession(readingAssessment(), ModeTest)

	timer := NewTimer(s, 5*time.Millisecond)
	timer.Start(context.Background())

	assert.Eventually(t, func() bool { return s.Remaining() < 60 }, 2*time.Second, 5*time.Millisecond)
	timer.Stop()
	timer.Stop()

	remaining := s.Remaining()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, remaining, s.Remaining())
}

func TestTimer_ContextCancelStops(t *testing.T) {
	s := NewSession(readingAssessment(), ModeTest)
	ctx, cancel := context.WithCancel(context.Background())

	timer := NewTimer(s, 5*time.Millisecond)
	timer.Start(ctx)
	cancel()
	timer.Stop()

	remaining := s.Remaining()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, remaining, s.Remaining())
}

func TestTimer_StopBeforeStart(t *testing.T) {
	s := NewSession(readingAssessment(), ModeTest)
	timer := NewTimer(s, time.Millisecond)

	done := make(chan struct{})
	go func() {
		timer.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked without a running timer")
	}
}
