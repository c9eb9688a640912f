package deps

import (
	"context"
	"errors"
	"io"
	"regexp"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/semaphore"

	errs "github.com/matzehuels/debgems/pkg/errors"
	"github.com/matzehuels/debgems/pkg/gemver"
)

const (
	DefaultWorkers  = 4    // Default concurrent status probes
	DefaultMaxNodes = 5000 // Default cap on working set size
)

// Options configures a [Resolver].
type Options struct {
	Logger       *log.Logger         // Structured logger (default: discard)
	Workers      int                 // Concurrent status probes (default: 4)
	MaxNodes     int                 // Maximum records in the working set (default: 5000)
	SkipPatterns []string            // Regular expressions for gems that are never checked
	Exempt       []string            // Gems whose version is never checked
	DebianName   func(string) string // Gem to Debian package name (default: identity)
	CleanVersion func(string) string // Debian to upstream version (default: identity)

	// Progress, when set, is called after each record is visited.
	Progress func(done, total int, rec *Record)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = DefaultMaxNodes
	}
	if opts.DebianName == nil {
		opts.DebianName = func(s string) string { return s }
	}
	return opts
}

// Resolver runs the resolution loop.
type Resolver struct {
	probe    StatusProbe
	registry Registry
	opts     Options
	skip     []*regexp.Regexp
	eval     *Evaluator
}

// NewResolver returns a resolver using probe for packaging status and
// registry for expanding unsatisfied gems. It fails if a skip pattern does
// not compile.
func NewResolver(probe StatusProbe, registry Registry, opts Options) (*Resolver, error) {
	opts = opts.WithDefaults()
	skip := make([]*regexp.Regexp, 0, len(opts.SkipPatterns))
	for _, p := range opts.SkipPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "skip pattern %q", p)
		}
		skip = append(skip, re)
	}
	return &Resolver{
		probe:    probe,
		registry: registry,
		opts:     opts,
		skip:     skip,
		eval: &Evaluator{
			Exempt: opts.Exempt,
			Clean:  opts.CleanVersion,
			Logger: opts.Logger,
		},
	}, nil
}

// Skips reports whether name matches a skip pattern.
func (r *Resolver) Skips(name string) bool {
	for _, re := range r.skip {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Resolve seeds a working set with the manifest records and visits every
// record in insertion order until no unvisited record remains. Seed records
// without parents get root as their parent.
//
// Failures of individual probes are recorded on the affected record. The
// only error returned is the context's; the partial result is returned
// along with it.
func (r *Resolver) Resolve(ctx context.Context, root string, seed []*Record) (*Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	st := &run{
		Resolver: r,
		ctx:      ctx,
		set:      NewWorkingSet(),
		sem:      semaphore.NewWeighted(int64(r.opts.Workers)),
		futures:  make(map[string]*future),
	}
	defer st.wg.Wait()
	defer cancel()

	for _, rec := range seed {
		if len(rec.Parents) == 0 && root != "" {
			rec.Parents = []string{root}
		}
		if existing, ok := st.set.Get(rec.Name); ok {
			for _, p := range rec.Parents {
				st.merge(existing, p, rec.Requirement)
			}
			continue
		}
		rec.State = Pending
		st.add(rec)
	}
	r.opts.Logger.Debug("seeded working set", "root", root, "records", st.set.Len())

	var err error
	for i := 0; i < st.set.Len(); i++ {
		if err = ctx.Err(); err != nil {
			break
		}
		rec := st.set.At(i)
		if err = st.visit(rec); err != nil {
			break
		}
		if r.opts.Progress != nil {
			r.opts.Progress(i+1, st.set.Len(), rec)
		}
	}

	return &Result{Root: root, Set: st.set, Edges: st.set.Edges()}, err
}

type future struct {
	done chan struct{}
	pkg  *Packaging
	err  error
}

// run is the state of one Resolve call. Only the goroutine running Resolve
// touches set and futures.
type run struct {
	*Resolver
	ctx     context.Context
	set     *WorkingSet
	sem     *semaphore.Weighted
	futures map[string]*future
	wg      sync.WaitGroup
}

func (st *run) add(rec *Record) {
	if rec.DebianName == "" {
		rec.DebianName = st.opts.DebianName(rec.Name)
	}
	st.set.Add(rec)
	if !st.Skips(rec.Name) {
		st.prefetch(rec.DebianName)
	}
}

func (st *run) prefetch(debianName string) {
	if _, ok := st.futures[debianName]; ok {
		return
	}
	f := &future{done: make(chan struct{})}
	st.futures[debianName] = f

	st.wg.Add(1)
	go func() {
		defer st.wg.Done()
		defer close(f.done)
		if err := st.sem.Acquire(st.ctx, 1); err != nil {
			f.err = err
			return
		}
		defer st.sem.Release(1)
		f.pkg, f.err = st.probe.Query(st.ctx, debianName)
	}()
}

func (st *run) await(debianName string) (*Packaging, error) {
	st.prefetch(debianName)
	f := st.futures[debianName]
	select {
	case <-f.done:
		return f.pkg, f.err
	case <-st.ctx.Done():
		return nil, st.ctx.Err()
	}
}

func (st *run) visit(rec *Record) error {
	logger := st.opts.Logger
	if st.Skips(rec.Name) {
		rec.Skip()
		logger.Info("skipping", "gem", rec.Name)
		return nil
	}

	pkg, err := st.await(rec.DebianName)
	switch {
	case err == nil:
		rec.Annotate(pkg)
	case st.ctx.Err() != nil:
		return st.ctx.Err()
	case errors.Is(err, ErrNotFound):
		rec.Annotate(&Packaging{Version: NoVersion, Suite: SuiteUnpackaged, Status: Unpackaged})
	default:
		logger.Warn("status probe failed", "gem", rec.Name, "debian", rec.DebianName, "err", err)
		rec.Degrade(err)
		return nil
	}

	ok := st.eval.Evaluate(rec)
	if !ok {
		ok = st.tryExperimental(rec)
	}
	rec.Settle(ok)
	if ok {
		logger.Info("satisfied", "gem", rec.Name, "suite", rec.Suite, "version", rec.Version)
		return nil
	}
	logger.Info("unsatisfied", "gem", rec.Name, "requirement", rec.Requirement, "status", rec.Status, "version", rec.Version)
	return st.expand(rec)
}

// tryExperimental replaces the primary annotation with the experimental
// one when that version satisfies the requirement.
func (st *run) tryExperimental(rec *Record) bool {
	sp, ok := st.probe.(SuiteProbe)
	if !ok || rec.Suite == SuiteExperimental {
		return false
	}
	alt, err := sp.QuerySuite(st.ctx, rec.DebianName, SuiteExperimental)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			st.opts.Logger.Debug("experimental lookup failed", "gem", rec.Name, "err", err)
		}
		return false
	}
	cand := *rec
	cand.Annotate(alt)
	if !st.eval.Evaluate(&cand) {
		return false
	}
	rec.Annotate(alt)
	return true
}

func (st *run) expand(rec *Record) error {
	reqs, err := st.registry.DependenciesOf(st.ctx, rec.Name, rec.Requirement)
	if err != nil {
		if st.ctx.Err() != nil {
			return st.ctx.Err()
		}
		st.opts.Logger.Warn("cannot list dependencies", "gem", rec.Name, "requirement", rec.Requirement, "err", err)
		rec.Error = err.Error()
		return nil
	}
	for _, d := range reqs {
		if existing, ok := st.set.Get(d.Name); ok {
			st.merge(existing, rec.Name, d.Requirement)
			continue
		}
		if st.set.Len() >= st.opts.MaxNodes {
			st.opts.Logger.Warn("node limit reached, dropping dependency", "gem", d.Name, "parent", rec.Name, "limit", st.opts.MaxNodes)
			continue
		}
		st.add(NewRecord(d.Name, d.Requirement, rec.Name))
	}
	return nil
}

// merge records another parent's declaration of an existing gem. The
// record's state is left alone, so a tightened requirement is not
// re-evaluated.
func (st *run) merge(existing *Record, parent, requirement string) {
	existing.AddParent(parent)
	if existing.Requirement == requirement {
		return
	}
	stricter, err := gemver.Stricter(existing.Requirement, requirement)
	if err != nil {
		st.opts.Logger.Warn("cannot merge requirements", "gem", existing.Name, "have", existing.Requirement, "want", requirement, "err", err)
		return
	}
	if stricter != existing.Requirement {
		st.opts.Logger.Debug("tightened requirement", "gem", existing.Name, "from", existing.Requirement, "to", stricter, "parent", parent)
		existing.Requirement = stricter
	}
}
