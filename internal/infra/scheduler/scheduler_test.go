package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJobs struct {
	materialized atomic.Int32
	reminded     atomic.Int32
	err          error
}

func (j *countingJobs) MaterializeAll(context.Context) (int, error) {
	j.materialized.Add(1)
	return 3, j.err
}

func (j *countingJobs) SendReceiptReminders(context.Context) (int, error) {
	j.reminded.Add(1)
	return 1, nil
}

func TestStart_RejectsBadSpec(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	s := NewRegularScheduler(&countingJobs{}, logrus.NewEntry(log), time.UTC, "not a spec", "0 20 * * *")
	assert.Error(t, s.Start())

	s = NewRegularScheduler(&countingJobs{}, logrus.NewEntry(log), time.UTC, "0 8 * * *", "every evening")
	assert.Error(t, s.Start())
}

func TestRunNow_LogsOutcome(t *testing.T) {
	log, hook := test.NewNullLogger()
	jobs := &countingJobs{err: errors.New("template 4: boom")}

	s := NewRegularScheduler(jobs, logrus.NewEntry(log), time.UTC, "0 8 * * *", "0 20 * * *")
	s.RunNow()

	assert.Equal(t, int32(1), jobs.materialized.Load())
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, 3, entry.Data["affected"])
	assert.Equal(t, "materialize", entry.Data["job"])
	assert.NotEmpty(t, entry.Data["run_id"])
}

func TestStartStop(t *testing.T) {
	log, _ := test.NewNullLogger()
	jobs := &countingJobs{}

	s := NewRegularScheduler(jobs, logrus.NewEntry(log), time.UTC, "@every 10ms", "@every 10ms")
	require.NoError(t, s.Start())
	assert.Eventually(t, func() bool {
		return jobs.materialized.Load() > 0 && jobs.reminded.Load() > 0
	}, 3*time.Second, 10*time.Millisecond)
	s.Stop()
}
