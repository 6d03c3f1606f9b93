package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OpportunityValidator/internal/domain"
)

type onceDriver struct {
	started bool
	stopped bool
}

func (d *onceDriver) Start(_ context.Context, job func(time.Time)) error {
	d.started = true
	job(time.Now())
	return nil
}

func (d *onceDriver) Stop(context.Context) error {
	d.stopped = true
	return nil
}

type listReader struct {
	results []domain.ValidationResult
}

func (r listReader) Load(context.Context, string) (domain.ValidationResult, error) {
	return domain.ValidationResult{}, domain.ErrNotFound
}

func (r listReader) List(context.Context) ([]domain.ValidationResult, error) {
	return r.results, nil
}

func TestDigestSchedulerPublishes(t *testing.T) {
	notifier := &recordingNotifier{}
	driver := &onceDriver{}
	s := NewDigestScheduler(driver, listReader{results: sampleResults()}, NewComparer(ComparerDeps{Notifier: notifier}), nil)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop(context.Background()))

	assert.True(t, driver.started)
	assert.True(t, driver.stopped)
	require.Len(t, notifier.digests, 1)
	assert.Contains(t, notifier.digests[0], "ENM Calendar API")
}

func TestDigestSchedulerSkipsEmptyStore(t *testing.T) {
	notifier := &recordingNotifier{}
	s := NewDigestScheduler(&onceDriver{}, listReader{}, NewComparer(ComparerDeps{Notifier: notifier}), nil)

	require.NoError(t, s.Start(context.Background()))
	assert.Empty(t, notifier.digests)
}
