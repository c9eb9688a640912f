// Package store persists resolution runs so reports can be listed, served
// and compared later.
//
// Two backends are provided:
//   - FileStore: one JSON file per run in a directory (CLI default)
//   - MongoStore: a MongoDB collection (shared server deployments)
//
// Runs are keyed by random UUIDs.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/debgems/pkg/deps"
	errs "github.com/matzehuels/debgems/pkg/errors"
	"github.com/matzehuels/debgems/pkg/report"
)

// Run is one persisted resolution.
type Run struct {
	ID        string         `json:"id" bson:"_id"`
	App       string         `json:"app" bson:"app"`
	Manifest  string         `json:"manifest" bson:"manifest"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
	Summary   report.Summary `json:"summary" bson:"summary"`
	Records   []*deps.Record `json:"records,omitempty" bson:"records,omitempty"`
	Edges     []deps.Edge    `json:"edges,omitempty" bson:"edges,omitempty"`
}

// NewRun captures res under a fresh ID.
func NewRun(app, manifest string, res *deps.Result) *Run {
	return &Run{
		ID:        uuid.NewString(),
		App:       app,
		Manifest:  manifest,
		CreatedAt: time.Now().UTC(),
		Summary:   report.Summarize(res.Set),
		Records:   res.Set.Records(),
		Edges:     res.Edges,
	}
}

// Result rebuilds the resolution result of r.
func (r *Run) Result() *deps.Result {
	set := deps.NewWorkingSet()
	for _, rec := range r.Records {
		set.Add(rec)
	}
	return &deps.Result{Root: r.App, Set: set, Edges: r.Edges}
}

// Header returns r without records and edges.
func (r *Run) Header() *Run {
	h := *r
	h.Records = nil
	h.Edges = nil
	return &h
}

// Store is the interface for run storage backends.
type Store interface {
	// Save inserts or replaces a run.
	Save(ctx context.Context, run *Run) error

	// Get returns the run with the given ID, or a RUN_NOT_FOUND error.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns run headers, newest first. A limit <= 0 returns all runs.
	List(ctx context.Context, limit int) ([]*Run, error)

	// Delete removes a run. Deleting a missing run is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// ValidateID checks that id is a run UUID.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid run id %q", id)
	}
	return nil
}

func notFound(id string) error {
	return errs.New(errs.ErrCodeRunNotFound, "run %s not found", id)
}
