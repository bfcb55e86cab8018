package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avc/frete-console/internal/domain"
	domainmocks "github.com/avc/frete-console/internal/domain/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingSweeper struct {
	calls int
}

func (s *countingSweeper) Sweep() int {
	s.calls++
	return 2
}

func TestPreviousPeriod(t *testing.T) {
	assert.Equal(t, "2026-09", PreviousPeriod(time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-12", PreviousPeriod(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-02", PreviousPeriod(time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)))
}

func TestClosingJob(t *testing.T) {
	logger := zap.NewNop()
	closing := domainmocks.NewClosingServiceMock(t)
	job := NewClosingJob(closing, logger)
	job.now = func() time.Time { return time.Date(2026, 10, 1, 3, 0, 0, 0, time.UTC) }

	closing.On("Close", mock.Anything, domain.ClosingRequest{Period: "2026-09"}).
		Return(&domain.ClosingResult{Period: "2026-09", ClientsCount: 4}, nil).Once()

	s := New(logger, time.Second)
	require.NoError(t, s.RunNow(context.Background(), job))

	closing.On("Close", mock.Anything, mock.Anything).Return(nil, errors.New("backend down")).Once()
	assert.Error(t, s.RunNow(context.Background(), job))
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(zap.NewNop(), time.Second)
	sweeper := &countingSweeper{}

	require.NoError(t, s.AddJob("@every 1h", NewSessionSweepJob(sweeper, zap.NewNop())))
	assert.Error(t, s.AddJob("not a schedule", NewSessionSweepJob(sweeper, zap.NewNop())))

	s.Start()
	s.Stop()

	require.NoError(t, s.RunNow(context.Background(), NewSessionSweepJob(sweeper, zap.NewNop())))
	assert.Equal(t, 1, sweeper.calls)
}

type stubPurger struct {
	removed int64
	err     error
}

func (p stubPurger) PurgeExpiredRedirects(ctx context.Context) (int64, error) {
	return p.removed, p.err
}

func TestRedirectPurgeJob(t *testing.T) {
	s := New(zap.NewNop(), time.Second)

	require.NoError(t, s.RunNow(context.Background(), NewRedirectPurgeJob(stubPurger{removed: 3}, zap.NewNop())))
	assert.Error(t, s.RunNow(context.Background(), NewRedirectPurgeJob(stubPurger{err: errors.New("db down")}, zap.NewNop())))
}
