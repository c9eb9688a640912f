package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/debgems/pkg/deps"
	errs "github.com/matzehuels/debgems/pkg/errors"
)

func sampleResult() *deps.Result {
	set := deps.NewWorkingSet()
	rails := deps.NewRecord("rails", "~> 7.0", "app")
	rails.Annotate(&deps.Packaging{DebianName: "rails", Version: "7.0.4", Suite: deps.SuiteUnstable, Status: deps.Packaged})
	rails.Settle(true)
	set.Add(rails)
	oj := deps.NewRecord("oj", "", "rails")
	oj.Degrade(assert.AnError)
	set.Add(oj)
	return &deps.Result{Root: "app", Set: set, Edges: set.Edges()}
}

func TestNewRun(t *testing.T) {
	run := NewRun("app", "Gemfile", sampleResult())

	require.NoError(t, ValidateID(run.ID))
	assert.Equal(t, "app", run.App)
	assert.Equal(t, 2, run.Summary.Total)
	assert.Equal(t, 1, run.Summary.Errors)
	assert.Len(t, run.Records, 2)

	res := run.Result()
	assert.Equal(t, "app", res.Root)
	assert.Equal(t, []string{"rails", "oj"}, res.Set.Names())
	assert.Equal(t, []deps.Edge{{From: "app", To: "rails"}, {From: "rails", To: "oj"}}, res.Edges)

	h := run.Header()
	assert.Nil(t, h.Records)
	assert.Len(t, run.Records, 2)
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	older := NewRun("old", "Gemfile", sampleResult())
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := NewRun("new", "app.gemspec", sampleResult())
	require.NoError(t, s.Save(ctx, older))
	require.NoError(t, s.Save(ctx, newer))

	got, err := s.Get(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "old", got.App)
	require.Len(t, got.Records, 2)
	assert.Equal(t, deps.Yes, got.Records[0].Satisfied)
	assert.Equal(t, "7.0.4", got.Records[0].Version)
	assert.Equal(t, assert.AnError.Error(), got.Records[1].Error)

	runs, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.ID, runs[0].ID)
	assert.Nil(t, runs[0].Records)

	runs, err = s.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	require.NoError(t, s.Delete(ctx, older.ID))
	require.NoError(t, s.Delete(ctx, older.ID))
	_, err = s.Get(ctx, older.ID)
	assert.True(t, errs.Is(err, errs.ErrCodeRunNotFound))
}

func TestFileStoreIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, uuid.NewString()+".json"), []byte("not json"), 0o644))

	runs, err := s.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestInvalidID(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Get(ctx, "../../etc/passwd")
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidInput))
	assert.True(t, errs.Is(s.Delete(ctx, "x"), errs.ErrCodeInvalidInput))
	assert.True(t, errs.Is(s.Save(ctx, &Run{ID: "x"}), errs.ErrCodeInvalidInput))
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("DEBGEMS_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("DEBGEMS_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, MongoConfig{URI: uri, Database: "debgems_test", Collection: uuid.NewString()})
	require.NoError(t, err)
	defer s.Close()

	run := NewRun("app", "Gemfile", sampleResult())
	require.NoError(t, s.Save(ctx, run))

	got, err := s.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"rails", "oj"}, got.Result().Set.Names())

	runs, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].Records)

	require.NoError(t, s.Delete(ctx, run.ID))
	_, err = s.Get(ctx, run.ID)
	assert.True(t, errs.Is(err, errs.ErrCodeRunNotFound))
}
