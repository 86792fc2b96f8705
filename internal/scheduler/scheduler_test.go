package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Haizenx/Enginuity-Alpha/internal/config"
	"github.com/Haizenx/Enginuity-Alpha/internal/domain/models"
)

type fakeSweeper struct {
	mu     sync.Mutex
	calls  []bool
	report models.SweepReport
	err    error
}

func (f *fakeSweeper) Sweep(_ context.Context, dryRun bool) (models.SweepReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, dryRun)
	return f.report, f.err
}

func TestNewSchedulerRejectsUnknownTimezone(t *testing.T) {
	_, err := NewScheduler(config.MaintenanceConfig{SweepCron: "0 3 * * *", Timezone: "Mars/Olympus"}, &fakeSweeper{}, nil)
	require.Error(t, err)
}

func TestStartRegistersSweep(t *testing.T) {
	s, err := NewScheduler(config.MaintenanceConfig{SweepCron: "0 3 * * *", Timezone: "Asia/Manila"}, &fakeSweeper{}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start())
	defer s.Stop(context.Background())

	entries := s.cron.Entries()
	require.Len(t, entries, 1)
	next := entries[0].Next
	assert.Equal(t, 3, next.Hour())
	assert.Equal(t, "Asia/Manila", next.Location().String())
}

func TestStartWithSweepDisabled(t *testing.T) {
	s, err := NewScheduler(config.MaintenanceConfig{SweepCron: "off", Timezone: "UTC"}, &fakeSweeper{}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Start())
	defer s.Stop(context.Background())
	assert.Empty(t, s.cron.Entries())
}

func TestStartRejectsBadCron(t *testing.T) {
	s, err := NewScheduler(config.MaintenanceConfig{SweepCron: "whenever", Timezone: "UTC"}, &fakeSweeper{}, nil)
	require.NoError(t, err)
	require.Error(t, s.Start())
}

func TestRunSweepIsNotDryRun(t *testing.T) {
	sweeper := &fakeSweeper{report: models.SweepReport{DeletedItems: 2}}
	s, err := NewScheduler(config.MaintenanceConfig{SweepCron: "0 3 * * *", Timezone: "UTC"}, sweeper, nil)
	require.NoError(t, err)

	s.runSweep()
	sweeper.err = errors.New("mongo down")
	s.runSweep()

	assert.Equal(t, []bool{false, false}, sweeper.calls)
}
