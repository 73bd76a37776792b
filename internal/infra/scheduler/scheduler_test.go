package scheduler

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"septic_reminder_service/internal/app"
	"septic_reminder_service/internal/domain/notification"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	mu    sync.Mutex
	calls []time.Time
}

func (f *fakeService) RunPass(_ context.Context, now time.Time) (*app.PassResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, now)
	return &app.PassResult{}, nil
}

func (f *fakeService) SendManualReminder(context.Context, int64, time.Time) error { return nil }

func (f *fakeService) Digest(context.Context, time.Time) (*app.Digest, error) {
	return &app.Digest{}, nil
}

func (f *fakeService) History(context.Context) ([]notification.Event, error) { return nil, nil }

func (f *fakeService) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestDigestSpec(t *testing.T) {
	s := notification.DefaultSettings()

	spec, ok, err := DigestSpec(s)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "0 8 * * 1", spec)

	s.Business.DigestDay = "sunday"
	s.Business.DigestTime = "17:45"
	spec, _, err = DigestSpec(s)
	require.NoError(t, err)
	assert.Equal(t, "45 17 * * 0", spec)

	s.Business.WeeklyDigest = false
	_, ok, err = DigestSpec(s)
	require.NoError(t, err)
	assert.False(t, ok)

	s = notification.DefaultSettings()
	s.Business.DigestTime = "8am"
	_, _, err = DigestSpec(s)
	assert.Error(t, err)
}

func TestReschedule_ReplacesDigestJob(t *testing.T) {
	sched := NewNotificationScheduler(&fakeService{}, testLogger(), time.UTC, "*/15 * * * *")

	require.NoError(t, sched.Reschedule(notification.DefaultSettings()))
	require.Len(t, sched.cronEngine.Entries(), 1)
	first := sched.digestEntry

	require.NoError(t, sched.Reschedule(notification.DefaultSettings()))
	require.Len(t, sched.cronEngine.Entries(), 1)
	assert.NotEqual(t, first, sched.digestEntry)

	off := notification.DefaultSettings()
	off.Business.Enabled = false
	require.NoError(t, sched.Reschedule(off))
	assert.Empty(t, sched.cronEngine.Entries())
}

func TestStart_RejectsBadSpec(t *testing.T) {
	sched := NewNotificationScheduler(&fakeService{}, testLogger(), time.UTC, "not a spec")
	assert.Error(t, sched.Start(notification.DefaultSettings()))
}

func TestTrigger_RunsPassInLocation(t *testing.T) {
	svc := &fakeService{}
	loc := time.FixedZone("CST", -6*3600)
	sched := NewNotificationScheduler(svc, testLogger(), loc, "*/15 * * * *")

	sched.Trigger("customer_added")
	sched.wg.Wait()

	require.Equal(t, 1, svc.count())
	assert.Equal(t, loc, svc.calls[0].Location())
}
