package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPurger struct {
	before time.Time
	calls  int
	err    error
}

func (s *stubPurger) PurgeExpired(_ context.Context, before time.Time) (int64, error) {
	s.calls++
	s.before = before
	return 2, s.err
}

func TestTokenJanitorPurgesWithCurrentTime(t *testing.T) {
	purger := &stubPurger{}
	job := NewTokenJanitorJob(purger, nil)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return fixed }

	job.Run()
	assert.Equal(t, 1, purger.calls)
	assert.Equal(t, fixed, purger.before)

	purger.err = errors.New("db down")
	job.Run()
	assert.Equal(t, 2, purger.calls)
}

func TestStartSchedulerRejectsBadSchedule(t *testing.T) {
	_, err := StartScheduler("every now and then", &stubPurger{}, nil)
	assert.Error(t, err)

	scheduler, err := StartScheduler("@hourly", &stubPurger{}, nil)
	require.NoError(t, err)
	scheduler.Stop()
}
