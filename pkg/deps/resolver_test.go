package deps

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProbe struct {
	mu       sync.Mutex
	packages map[string]*Packaging
	errs     map[string]error
	calls    map[string]int
}

func newFakeProbe() *fakeProbe {
	return &fakeProbe{
		packages: make(map[string]*Packaging),
		errs:     make(map[string]error),
		calls:    make(map[string]int),
	}
}

func (p *fakeProbe) unstable(name, version string) *fakeProbe {
	p.packages[name] = &Packaging{DebianName: name, Version: version, Suite: SuiteUnstable, Status: Packaged}
	return p
}

func (p *fakeProbe) Query(ctx context.Context, name string) (*Packaging, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[name]++
	if err := p.errs[name]; err != nil {
		return nil, err
	}
	if pkg, ok := p.packages[name]; ok {
		cp := *pkg
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (p *fakeProbe) callsFor(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[name]
}

type suiteProbe struct {
	*fakeProbe
	experimental map[string]string
}

func (p *suiteProbe) QuerySuite(ctx context.Context, name, suite string) (*Packaging, error) {
	if suite != SuiteExperimental {
		return nil, ErrNotFound
	}
	v, ok := p.experimental[name]
	if !ok {
		return nil, ErrNotFound
	}
	return &Packaging{DebianName: name, Version: v, Suite: SuiteExperimental, Status: Packaged}, nil
}

type fakeRegistry struct {
	deps  map[string][]Requirement
	errs  map[string]error
	calls []string
}

func (r *fakeRegistry) DependenciesOf(ctx context.Context, name, requirement string) ([]Requirement, error) {
	r.calls = append(r.calls, name)
	if err := r.errs[name]; err != nil {
		return nil, err
	}
	return r.deps[name], nil
}

func resolve(t *testing.T, probe StatusProbe, reg Registry, opts Options, seed ...*Record) *Result {
	t.Helper()
	r, err := NewResolver(probe, reg, opts)
	require.NoError(t, err)
	res, err := r.Resolve(context.Background(), "app", seed)
	require.NoError(t, err)
	return res
}

func TestResolveSatisfiedRootsAreNotExpanded(t *testing.T) {
	probe := newFakeProbe().unstable("rack", "2.2.4").unstable("json", "2.6.1")
	reg := &fakeRegistry{}

	res := resolve(t, probe, reg, Options{},
		NewRecord("rack", "~> 2.2"),
		NewRecord("json", ""),
	)

	assert.Equal(t, []string{"rack", "json"}, res.Set.Names())
	for _, rec := range res.Set.Records() {
		assert.Equal(t, Satisfied, rec.State, rec.Name)
		assert.Equal(t, Yes, rec.Satisfied)
		assert.Equal(t, Green, rec.Color)
		assert.Equal(t, []string{"app"}, rec.Parents)
	}
	assert.Empty(t, reg.calls)
	assert.Equal(t, []Edge{{From: "app", To: "rack"}, {From: "app", To: "json"}}, res.Edges)
}

func TestResolveExpandsUnsatisfied(t *testing.T) {
	probe := newFakeProbe().unstable("rails", "6.1.0").unstable("activesupport", "7.0.4")
	reg := &fakeRegistry{deps: map[string][]Requirement{
		"rails": {{Name: "activesupport", Requirement: "= 7.0.4"}, {Name: "railties", Requirement: "= 7.0.4"}},
	}}

	res := resolve(t, probe, reg, Options{}, NewRecord("rails", "~> 7.0"))

	assert.Equal(t, []string{"rails", "activesupport", "railties"}, res.Set.Names())

	rails, _ := res.Set.Get("rails")
	assert.Equal(t, Unsatisfied, rails.State)
	assert.Equal(t, Violet, rails.Color)

	as, _ := res.Set.Get("activesupport")
	assert.Equal(t, Satisfied, as.State)
	assert.Equal(t, []string{"rails"}, as.Parents)

	railties, _ := res.Set.Get("railties")
	assert.Equal(t, Unsatisfied, railties.State)
	assert.Equal(t, Unpackaged, railties.Status)
	assert.Equal(t, NoVersion, railties.Version)
	assert.Equal(t, Red, railties.Color)

	assert.Equal(t, []string{"rails", "railties"}, reg.calls)
}

func TestResolveSharedDependencyHasOneRecord(t *testing.T) {
	probe := newFakeProbe()
	reg := &fakeRegistry{deps: map[string][]Requirement{
		"a": {{Name: "c", Requirement: ">= 1.0"}},
		"b": {{Name: "c", Requirement: "= 1.2"}},
	}}

	res := resolve(t, probe, reg, Options{}, NewRecord("a", ""), NewRecord("b", ""))

	assert.Equal(t, 3, res.Set.Len())
	c, ok := res.Set.Get("c")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, c.Parents)
	assert.Equal(t, "= 1.2", c.Requirement)
	assert.Equal(t, 1, probe.callsFor("c"))
	assert.Contains(t, res.Edges, Edge{From: "a", To: "c"})
	assert.Contains(t, res.Edges, Edge{From: "b", To: "c"})
}

func TestResolveParentAddedOnce(t *testing.T) {
	probe := newFakeProbe()
	reg := &fakeRegistry{deps: map[string][]Requirement{
		"a": {{Name: "c", Requirement: ">= 1"}, {Name: "c", Requirement: ">= 2"}},
	}}

	res := resolve(t, probe, reg, Options{}, NewRecord("a", ""))

	c, _ := res.Set.Get("c")
	assert.Equal(t, []string{"a"}, c.Parents)
	assert.Equal(t, ">= 2", c.Requirement)
}

func TestResolveDoesNotReprobeTightenedRecord(t *testing.T) {
	probe := newFakeProbe().unstable("c", "1.5")
	reg := &fakeRegistry{deps: map[string][]Requirement{
		"b": {{Name: "c", Requirement: "= 2.0"}},
	}}

	res := resolve(t, probe, reg, Options{},
		NewRecord("c", ">= 1.0"),
		NewRecord("b", ""),
	)

	c, _ := res.Set.Get("c")
	assert.Equal(t, "= 2.0", c.Requirement)
	assert.Equal(t, Satisfied, c.State)
	assert.Equal(t, 1, probe.callsFor("c"))
}

func TestResolveMergeErrorKeepsRequirement(t *testing.T) {
	reg := &fakeRegistry{deps: map[string][]Requirement{
		"a": {{Name: "c", Requirement: ">= 1.0"}},
		"b": {{Name: "c", Requirement: "latest"}},
	}}

	res := resolve(t, newFakeProbe(), reg, Options{}, NewRecord("a", ""), NewRecord("b", ""))

	c, _ := res.Set.Get("c")
	assert.Equal(t, ">= 1.0", c.Requirement)
	assert.Equal(t, []string{"a", "b"}, c.Parents)
}

func TestResolveSkipPattern(t *testing.T) {
	probe := newFakeProbe()
	reg := &fakeRegistry{}

	res := resolve(t, probe, reg, Options{SkipPatterns: []string{"rails-assets"}},
		NewRecord("rails-assets-jquery", ">= 1"),
	)

	rec, _ := res.Set.Get("rails-assets-jquery")
	assert.Equal(t, Skipped, rec.State)
	assert.Equal(t, Unknown, rec.Satisfied)
	assert.Zero(t, probe.callsFor("rails-assets-jquery"))
	assert.Empty(t, reg.calls)
}

func TestResolveProbeFailureDegradesRecord(t *testing.T) {
	probe := newFakeProbe().unstable("ok", "1.0")
	probe.errs["broken"] = errors.New("rmadison: connection reset")
	reg := &fakeRegistry{}

	res := resolve(t, probe, reg, Options{},
		NewRecord("broken", ">= 1"),
		NewRecord("ok", ">= 1"),
	)

	broken, _ := res.Set.Get("broken")
	assert.Equal(t, Unsatisfied, broken.State)
	assert.Equal(t, No, broken.Satisfied)
	assert.Equal(t, Unpackaged, broken.Status)
	assert.Contains(t, broken.Error, "connection reset")

	ok, _ := res.Set.Get("ok")
	assert.Equal(t, Satisfied, ok.State)
}

func TestResolveRegistryFailureKeepsGoing(t *testing.T) {
	reg := &fakeRegistry{
		deps: map[string][]Requirement{"b": {{Name: "c"}}},
		errs: map[string]error{"a": errors.New("rubygems: 503")},
	}

	res := resolve(t, newFakeProbe(), reg, Options{}, NewRecord("a", ""), NewRecord("b", ""))

	a, _ := res.Set.Get("a")
	assert.Equal(t, Unsatisfied, a.State)
	assert.Contains(t, a.Error, "503")
	assert.True(t, res.Set.Has("c"))
}

func TestResolveExperimentalFallback(t *testing.T) {
	probe := &suiteProbe{
		fakeProbe:    newFakeProbe().unstable("puma", "5.6").unstable("nio4r", "2.5"),
		experimental: map[string]string{"puma": "6.0.2", "nio4r": "2.6"},
	}
	reg := &fakeRegistry{}

	res := resolve(t, probe, reg, Options{},
		NewRecord("puma", ">= 6.0"),
		NewRecord("nio4r", ">= 3.0"),
	)

	puma, _ := res.Set.Get("puma")
	assert.Equal(t, Satisfied, puma.State)
	assert.Equal(t, SuiteExperimental, puma.Suite)
	assert.Equal(t, "6.0.2", puma.Version)
	assert.Equal(t, Yellow, puma.Color)

	nio, _ := res.Set.Get("nio4r")
	assert.Equal(t, Unsatisfied, nio.State)
	assert.Equal(t, SuiteUnstable, nio.Suite)
	assert.Equal(t, "2.5", nio.Version)
	assert.Equal(t, []string{"nio4r"}, reg.calls)
}

func TestResolveDebianName(t *testing.T) {
	probe := newFakeProbe().unstable("ruby-rack", "2.2")

	res := resolve(t, probe, &fakeRegistry{}, Options{
		DebianName: func(s string) string { return "ruby-" + s },
	}, NewRecord("rack", ">= 2"))

	rack, _ := res.Set.Get("rack")
	assert.Equal(t, "ruby-rack", rack.DebianName)
	assert.Equal(t, Satisfied, rack.State)
}

func TestResolveMaxNodes(t *testing.T) {
	reg := &fakeRegistry{deps: map[string][]Requirement{
		"a": {{Name: "b"}, {Name: "c"}, {Name: "d"}},
	}}

	res := resolve(t, newFakeProbe(), reg, Options{MaxNodes: 3}, NewRecord("a", ""))

	assert.Equal(t, []string{"a", "b", "c"}, res.Set.Names())
}

func TestResolveDuplicateSeed(t *testing.T) {
	res := resolve(t, newFakeProbe(), &fakeRegistry{}, Options{},
		NewRecord("rake", ">= 10"),
		NewRecord("rake", "~> 13.0", "tools"),
	)

	assert.Equal(t, 1, res.Set.Len())
	rake, _ := res.Set.Get("rake")
	assert.Equal(t, []string{"app", "tools"}, rake.Parents)
	assert.Equal(t, "~> 13.0", rake.Requirement)
}

func TestResolveProgress(t *testing.T) {
	var seen []string
	reg := &fakeRegistry{deps: map[string][]Requirement{"a": {{Name: "b"}}}}

	resolve(t, newFakeProbe(), reg, Options{
		Progress: func(done, total int, rec *Record) { seen = append(seen, rec.Name) },
	}, NewRecord("a", ""))

	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestResolveCancelled(t *testing.T) {
	r, err := NewResolver(newFakeProbe(), &fakeRegistry{}, Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := r.Resolve(ctx, "app", []*Record{NewRecord("a", "")})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, Pending, res.Set.At(0).State)
}

func TestNewResolverBadPattern(t *testing.T) {
	_, err := NewResolver(newFakeProbe(), &fakeRegistry{}, Options{SkipPatterns: []string{"("}})
	require.Error(t, err)
}
