package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
	stored   int
}

func (o *recordingObserver) ObserveRun(_ Format, outcome string, _ time.Duration) {
	o.mu.Lock()
	o.outcomes = append(o.outcomes, outcome)
	o.mu.Unlock()
}

func (o *recordingObserver) SetStoredFiles(n int) {
	o.mu.Lock()
	o.stored = n
	o.mu.Unlock()
}

func TestService_UploadAndEvaluate(t *testing.T) {
	obs := &recordingObserver{}
	svc := NewService(ServiceConfig{}, WithObserver(obs))
	ctx := context.Background()

	batchID, infos, err := svc.Upload(ctx, []File{sampleCSV})
	require.NoError(t, err)
	assert.Equal(t, 1, obs.stored)

	batch, err := svc.Batch(batchID)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, infos[0].ID, batch[0].ID)

	res, err := svc.Evaluate(ctx, infos[0].ID, Options{RemoveDuplicates: true})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Dedupe.Removed)

	_, err = svc.Evaluate(ctx, infos[0].ID, Options{Columns: []string{"zzz"}})
	assert.ErrorIs(t, err, ErrUnknownColumn)

	assert.Equal(t, []string{OutcomeOK, OutcomeError}, obs.outcomes)
	assert.Equal(t, 0, svc.Limiter().ActiveCount())
}

func TestService_UploadRequiresFiles(t *testing.T) {
	svc := NewService(ServiceConfig{})
	_, _, err := svc.Upload(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyFile)
	assert.Equal(t, "FILE004", MapError(err).Code)
}

func TestService_EvaluateBatch(t *testing.T) {
	svc := NewService(ServiceConfig{})
	ctx := context.Background()

	batchID, _, err := svc.Upload(ctx, []File{
		sampleCSV,
		{Name: "empty.csv"},
		{Name: "other.csv", Data: []byte("q\n1\n")},
	})
	require.NoError(t, err)

	infos, items, err := svc.EvaluateBatch(ctx, batchID, func(info FileInfo) Options {
		return Options{Export: info.Name == "other.csv"}
	})
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Len(t, infos, 3)

	assert.NoError(t, items[0].Err)
	assert.ErrorIs(t, items[1].Err, ErrEmptyFile)
	require.NoError(t, items[2].Err)
	assert.NotNil(t, items[2].Result.Download)
	assert.Nil(t, items[0].Result.Download)
}

func TestService_EvaluateBusy(t *testing.T) {
	obs := &recordingObserver{}
	svc := NewService(ServiceConfig{MaxConcurrent: 1, MaxWait: 20 * time.Millisecond}, WithObserver(obs))
	ctx := context.Background()

	_, infos, err := svc.Upload(ctx, []File{sampleCSV})
	require.NoError(t, err)

	require.True(t, svc.Limiter().TryAcquire())
	_, err = svc.Evaluate(ctx, infos[0].ID, Options{})
	svc.Limiter().Release()

	assert.ErrorIs(t, err, ErrTooManyRuns)
	assert.Equal(t, []string{OutcomeRejected}, obs.outcomes)
}

func TestService_DeleteAndSweep(t *testing.T) {
	obs := &recordingObserver{}
	svc := NewService(ServiceConfig{StoreTTL: time.Hour}, WithObserver(obs))
	ctx := context.Background()

	_, infos, err := svc.Upload(ctx, []File{{Name: "a.csv"}, {Name: "b.csv"}})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, infos[0].ID))
	assert.ErrorIs(t, svc.Delete(ctx, infos[0].ID), ErrFileNotFound)
	assert.Equal(t, 1, obs.stored)

	_, err = svc.Evaluate(ctx, infos[0].ID, Options{})
	assert.ErrorIs(t, err, ErrFileNotFound)

	svc.store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.Equal(t, 1, svc.sweep())
	assert.Equal(t, 0, obs.stored)
	assert.Equal(t, 0, svc.Status().Store.Files)
}

func TestService_StartSweeperStopsOnCancel(t *testing.T) {
	svc := NewService(ServiceConfig{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		svc.StartSweeper(ctx, 10*time.Millisecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
