package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/debgems/pkg/deps"
	errs "github.com/matzehuels/debgems/pkg/errors"
	"github.com/matzehuels/debgems/pkg/report"
	"github.com/matzehuels/debgems/pkg/store"
)

// testEnv is a config file pointing the cache and the run store into a
// temporary directory.
type testEnv struct {
	t        *testing.T
	dir      string
	config   string
	cacheDir string
	storeDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		t:        t,
		dir:      dir,
		config:   filepath.Join(dir, "debgems.toml"),
		cacheDir: filepath.Join(dir, "cache"),
		storeDir: filepath.Join(dir, "runs"),
	}
	require.NoError(t, os.MkdirAll(env.cacheDir, 0o755))
	cfg := fmt.Sprintf("output_dir = %q\n\n[cache]\ndir = %q\n\n[store]\ndir = %q\n",
		filepath.Join(dir, "out"), env.cacheDir, env.storeDir)
	require.NoError(t, os.WriteFile(env.config, []byte(cfg), 0o644))
	return env
}

func (e *testEnv) execute(args ...string) (string, error) {
	e.t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", e.config}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func sampleSet() *deps.WorkingSet {
	rails := deps.NewRecord("rails", "~> 7.0", "blog")
	rails.Annotate(&deps.Packaging{DebianName: "rails", Version: "7.0.4.3", Suite: deps.SuiteUnstable, Status: deps.Packaged})
	rails.Settle(true)

	oj := deps.NewRecord("oj", ">= 3.13", "blog")
	oj.Annotate(&deps.Packaging{DebianName: "ruby-oj", Version: "3.11.0", Suite: deps.SuiteUnstable, Status: deps.Packaged})
	oj.Settle(false)

	lonely := deps.NewRecord("lonely", ">= 0", "oj")
	lonely.Annotate(&deps.Packaging{DebianName: "ruby-lonely", Version: deps.NoVersion, Suite: deps.SuiteUnpackaged, Status: deps.Unpackaged})
	lonely.Settle(false)

	set := deps.NewWorkingSet()
	set.Add(rails)
	set.Add(oj)
	set.Add(lonely)
	return set
}

func (e *testEnv) writeStatus() string {
	e.t.Helper()
	path := filepath.Join(e.dir, report.StatusFile("blog"))
	var buf bytes.Buffer
	require.NoError(e.t, report.WriteJSON(&buf, sampleSet()))
	require.NoError(e.t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"check", "status", "graph", "serve", "runs", "cache", "completion"} {
		assert.Contains(t, names, want)
	}
}

func TestStatusCommand(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeStatus()

	out, err := env.execute("status", path, "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "ruby-lonely")
	assert.Contains(t, out, "2 packaged, 0 ITP, 1 unpackaged (66% complete)")

	out, err = env.execute("status", path, "--color", "red")
	require.NoError(t, err)
	assert.Contains(t, out, "lonely")
	assert.NotContains(t, out, "rails")
	assert.Contains(t, out, "1 of 3 gems shown")
}

func TestStatusCommandMissingFile(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.execute("status", filepath.Join(env.dir, "missing.json"))
	assert.Error(t, err)
}

func TestGraphCommand(t *testing.T) {
	env := newTestEnv(t)
	path := env.writeStatus()
	outDir := filepath.Join(env.dir, "graphs")

	_, err := env.execute("graph", path, "-f", "dot,edges", "-o", outDir)
	require.NoError(t, err)

	dot, err := os.ReadFile(filepath.Join(outDir, "blog.dot"))
	require.NoError(t, err)
	assert.Contains(t, string(dot), `"oj" -> "lonely"`)
	assert.FileExists(t, filepath.Join(outDir, "blog_edges.json"))

	_, err = env.execute("graph", path, "-f", "png")
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidInput))
}

func TestRunsCommands(t *testing.T) {
	env := newTestEnv(t)
	st, err := store.NewFileStore(env.storeDir)
	require.NoError(t, err)
	run := store.NewRun("blog", "Gemfile", &deps.Result{Root: "blog", Set: sampleSet(), Edges: sampleSet().Edges()})
	require.NoError(t, st.Save(context.Background(), run))

	out, err := env.execute("runs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, run.ID)
	assert.Contains(t, out, "blog")

	out, err = env.execute("runs", "show", run.ID, "--format", "json")
	require.NoError(t, err)
	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Len(t, decoded, 3)

	out, err = env.execute("runs", "show", run.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "ruby-oj")

	_, err = env.execute("runs", "show", "nope")
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidInput))

	_, err = env.execute("runs", "delete", run.ID)
	require.NoError(t, err)
	_, err = st.Get(context.Background(), run.ID)
	assert.True(t, errs.Is(err, errs.ErrCodeRunNotFound))
}

func TestCheckCommandRejectsBadFlags(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.execute("check", "Gemfile", "--format", "docx")
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidInput))

	_, err = env.execute("check", "Gemfile", "--backend", "carrier-pigeon")
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidConfig))

	_, err = env.execute("check", filepath.Join(env.dir, "Gemfile"), "--no-cache", "--quiet")
	assert.True(t, errs.Is(err, errs.ErrCodeFileNotFound), "got %v", err)
}

func TestCompletionCommand(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.execute("completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "debgems")

	_, err = env.execute("completion", "tcsh")
	assert.Error(t, err)
}

func TestCompleteFormats(t *testing.T) {
	got, _ := completeFormats(nil, nil, "json,s")
	assert.Contains(t, got, "json,svg")
	assert.Contains(t, got, "json,dot")
}

func TestAppFromStatusFile(t *testing.T) {
	assert.Equal(t, "diaspora", appFromStatusFile("/tmp/diaspora_debian_status.json"))
	assert.Equal(t, "report", appFromStatusFile("report.json"))
	assert.Equal(t, "_debian_status", appFromStatusFile("_debian_status.json"))
}

func TestFilterRecords(t *testing.T) {
	set := sampleSet()
	assert.Same(t, set, filterRecords(set, nil))
	assert.Equal(t, []string{"oj"}, filterRecords(set, []string{"Violet"}).Names())
	assert.Equal(t, []string{"rails", "lonely"}, filterRecords(set, []string{"green", " red"}).Names())
}
