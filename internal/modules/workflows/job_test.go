package workflows

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsantori/tickerlens/internal/modules/prediction"
)

type fakeScanner struct {
	calls   int
	symbols []string
	opts    prediction.RequestOptions
}

func (f *fakeScanner) Scan(symbols []string, opts prediction.RequestOptions) *prediction.ScanResult {
	f.calls++
	f.symbols = symbols
	f.opts = opts
	return &prediction.ScanResult{
		Summary:  prediction.ScanSummary{Symbols: len(symbols)},
		ScanWide: time.Now().UTC(),
	}
}

func TestJob_Run(t *testing.T) {
	repo := testRepo(t)
	created, err := repo.Create(sampleWorkflow())
	require.NoError(t, err)

	scanner := &fakeScanner{}
	job := NewJob(*created, repo, scanner, zerolog.Nop())

	require.NoError(t, job.Run())

	assert.Equal(t, 1, scanner.calls)
	assert.Equal(t, []string{"AAPL", "MSFT"}, scanner.symbols)
	assert.Equal(t, 5, scanner.opts.Days)
	assert.Equal(t, 3, scanner.opts.FutureDays)

	got, err := repo.Get(created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.NotNil(t, got.LastRunAt, "run is stamped")
}

func TestJob_Run_PicksUpEdits(t *testing.T) {
	repo := testRepo(t)
	created, err := repo.Create(sampleWorkflow())
	require.NoError(t, err)

	created.Symbols = []string{"NVDA"}
	_, err = repo.Update(*created)
	require.NoError(t, err)

	scanner := &fakeScanner{}
	job := NewJob(*created, repo, scanner, zerolog.Nop())
	require.NoError(t, job.Run())

	assert.Equal(t, []string{"NVDA"}, scanner.symbols, "job reads the stored definition")
}

func TestJob_Run_SkipsDisabled(t *testing.T) {
	repo := testRepo(t)
	created, err := repo.Create(sampleWorkflow())
	require.NoError(t, err)

	created.Enabled = false
	_, err = repo.Update(*created)
	require.NoError(t, err)

	scanner := &fakeScanner{}
	job := NewJob(*created, repo, scanner, zerolog.Nop())
	require.NoError(t, job.Run())

	assert.Zero(t, scanner.calls)
}

func TestJob_Run_SkipsDeleted(t *testing.T) {
	repo := testRepo(t)
	created, err := repo.Create(sampleWorkflow())
	require.NoError(t, err)

	scanner := &fakeScanner{}
	job := NewJob(*created, repo, scanner, zerolog.Nop())

	_, err = repo.Delete(created.ID)
	require.NoError(t, err)

	require.NoError(t, job.Run())
	assert.Zero(t, scanner.calls)
}

func TestJob_Name(t *testing.T) {
	w := sampleWorkflow()
	w.ID = "abc"
	job := NewJob(w, nil, nil, zerolog.Nop())
	assert.Equal(t, "workflow_morning watchlist", job.Name())
}
