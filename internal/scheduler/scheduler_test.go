package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) RefreshGauges(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestScheduleLedgerRefresh(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s := NewScheduler(new(MockLedger), logger)

	assert.Error(t, s.Start(), "no jobs")
	assert.Error(t, s.ScheduleLedgerRefresh("every tuesday"))
	require.NoError(t, s.ScheduleLedgerRefresh("*/5 * * * *"))

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())
	assert.Error(t, s.ScheduleLedgerRefresh("0 * * * *"))

	next := s.GetNextRun()
	assert.False(t, next.IsZero())
	assert.WithinDuration(t, time.Now(), next, 5*time.Minute+time.Second)

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.True(t, s.GetNextRun().IsZero())
}

func TestRefreshLedgerLogsFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	ledger := new(MockLedger)
	ledger.On("RefreshGauges", mock.Anything).Return(errors.New("database down")).Once()
	ledger.On("RefreshGauges", mock.Anything).Return(nil).Once()

	s := NewScheduler(ledger, logger)

	s.refreshLedger()
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)

	s.refreshLedger()
	assert.Equal(t, "Ledger refresh completed", hook.LastEntry().Message)
	ledger.AssertExpectations(t)
}
