package debian

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/debgems/pkg/cache"
	errs "github.com/matzehuels/debgems/pkg/errors"
	"github.com/matzehuels/debgems/pkg/retry"
)

func TestParseMadison(t *testing.T) {
	v, err := parseMadison(" ruby-rack | 2.2.4-3      | unstable   | source, all\n")
	require.NoError(t, err)
	assert.Equal(t, "2.2.4-3", v)

	v, err = parseMadison("ruby-nokogiri | 1.13.10+dfsg-2 | sid | source\nruby-nokogiri | 1.13.10+dfsg-2+b1 | sid | amd64\n")
	require.NoError(t, err)
	assert.Equal(t, "1.13.10+dfsg-2", v)

	_, err = parseMadison("")
	assert.ErrorIs(t, err, ErrNotInArchive)

	_, err = parseMadison("curl: (6) Could not resolve host: api.ftp-master.debian.org")
	assert.ErrorIs(t, err, errTransient)
}

func TestParseWNPPCheck(t *testing.T) {
	bug, err := parseWNPPCheck("(ITP - #987654) https://bugs.debian.org/987654 ruby-foo\n")
	require.NoError(t, err)
	assert.Equal(t, &WNPPBug{Kind: "ITP", Number: "987654"}, bug)

	bug, err = parseWNPPCheck("(RFP - #12345) https://bugs.debian.org/12345 ruby-bar")
	require.NoError(t, err)
	assert.Equal(t, "RFP", bug.Kind)
	assert.Equal(t, "12345", bug.Number)

	_, err = parseWNPPCheck("")
	assert.ErrorIs(t, err, ErrNotInArchive)

	_, err = parseWNPPCheck("(O - #1) orphaned")
	assert.ErrorIs(t, err, ErrNotInArchive)
}

func TestParseWNPPList(t *testing.T) {
	bugs := parseWNPPList("ruby-foo: ITP 100 some description\nruby-foo: RFP 99 older\nruby-bar: RFP 200 x\nruby-baz: O 300 orphaned\nbroken\n")
	assert.Equal(t, map[string]WNPPBug{
		"ruby-foo": {Kind: "ITP", Number: "100"},
		"ruby-bar": {Kind: "RFP", Number: "200"},
	}, bugs)
}

type fakeRunner struct {
	outputs []string
	err     error
	calls   [][]string
}

func (r *fakeRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	i := min(len(r.calls), len(r.outputs)) - 1
	if i < 0 {
		return "", r.err
	}
	return r.outputs[i], r.err
}

func fastPolicy() retry.Policy { return retry.Policy{Attempts: 3, Delay: -1} }

func TestCommandArchiveMadison(t *testing.T) {
	r := &fakeRunner{outputs: []string{"ruby-rack | 2.2.4-3 | unstable | source, all\n"}}
	a := &CommandArchive{Runner: r, Retry: fastPolicy()}

	v, err := a.Madison(context.Background(), "ruby-rack", Unstable)
	require.NoError(t, err)
	assert.Equal(t, "2.2.4-3", v)
	assert.Equal(t, [][]string{{"rmadison", "-s", "unstable", "-a", "amd64,all", "ruby-rack"}}, r.calls)
}

func TestCommandArchiveRetriesCurlFailures(t *testing.T) {
	r := &fakeRunner{outputs: []string{
		"curl: (28) Operation timed out",
		"curl: (28) Operation timed out",
		"ruby-rack | 2.2.4-3 | unstable | source, all",
	}}
	a := &CommandArchive{Runner: r, Retry: fastPolicy()}

	v, err := a.Madison(context.Background(), "ruby-rack", Unstable)
	require.NoError(t, err)
	assert.Equal(t, "2.2.4-3", v)
	assert.Len(t, r.calls, 3)
}

func TestCommandArchiveGivesUpAfterAttempts(t *testing.T) {
	r := &fakeRunner{outputs: []string{"curl: (7) Failed to connect"}}
	a := &CommandArchive{Runner: r, Retry: retry.Policy{Attempts: 2, Delay: -1}}

	_, err := a.Madison(context.Background(), "ruby-rack", Unstable)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeNetwork))
	assert.Len(t, r.calls, 2)
}

func TestCommandArchiveNotInstalled(t *testing.T) {
	r := &fakeRunner{err: fmt.Errorf("exec: %w", exec.ErrNotFound)}
	a := &CommandArchive{Runner: r, Retry: fastPolicy()}

	_, err := a.Madison(context.Background(), "ruby-rack", Unstable)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeCommandFailed))
	assert.Len(t, r.calls, 1)
}

func TestCommandArchiveRejectsBadNames(t *testing.T) {
	r := &fakeRunner{}
	a := &CommandArchive{Runner: r, Retry: fastPolicy()}

	_, err := a.Madison(context.Background(), "-s stable", Unstable)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidPackage))
	_, err = a.WNPP(context.Background(), "../etc")
	assert.Error(t, err)
	assert.Empty(t, r.calls)
}

func TestCommandArchiveWNPP(t *testing.T) {
	r := &fakeRunner{outputs: []string{"(ITP - #42) https://bugs.debian.org/42 ruby-foo"}, err: &exec.ExitError{}}
	a := &CommandArchive{Runner: r, Retry: fastPolicy()}

	bug, err := a.WNPP(context.Background(), "ruby-foo")
	require.NoError(t, err)
	assert.Equal(t, "42", bug.Number)

	empty := &CommandArchive{Runner: &fakeRunner{outputs: []string{""}}, Retry: fastPolicy()}
	_, err = empty.WNPP(context.Background(), "ruby-none")
	assert.ErrorIs(t, err, ErrNotInArchive)
}

func TestAPIArchive(t *testing.T) {
	var wnppHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/madison", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "on", q.Get("text"))
		assert.Equal(t, "amd64,all", q.Get("a"))
		if q.Get("package") == "ruby-rack" && q.Get("s") == "unstable" {
			fmt.Fprintln(w, " ruby-rack | 2.2.4-3 | unstable | source, all")
		}
	})
	mux.HandleFunc("/wnpp_rm", func(w http.ResponseWriter, r *http.Request) {
		wnppHits.Add(1)
		fmt.Fprintln(w, "ruby-foo: ITP 1001 new gem")
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	a := NewAPIArchive(nil, time.Hour, fastPolicy()).WithURLs(server.URL+"/madison", server.URL+"/wnpp_rm")
	ctx := context.Background()

	v, err := a.Madison(ctx, "ruby-rack", Unstable)
	require.NoError(t, err)
	assert.Equal(t, "2.2.4-3", v)

	_, err = a.Madison(ctx, "ruby-rack", Experimental)
	assert.ErrorIs(t, err, ErrNotInArchive)

	bug, err := a.WNPP(ctx, "ruby-foo")
	require.NoError(t, err)
	assert.Equal(t, &WNPPBug{Kind: "ITP", Number: "1001"}, bug)

	_, err = a.WNPP(ctx, "ruby-bar")
	assert.True(t, errors.Is(err, ErrNotInArchive))
	assert.Equal(t, int32(2), wnppHits.Load(), "null cache refetches the list")
}

func TestAPIArchiveRefresh(t *testing.T) {
	var madisonHits, wnppHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/madison", func(w http.ResponseWriter, r *http.Request) {
		n := madisonHits.Add(1)
		fmt.Fprintf(w, " ruby-rack | %d.0-1 | unstable | source, all\n", n)
	})
	mux.HandleFunc("/wnpp_rm", func(w http.ResponseWriter, r *http.Request) {
		n := wnppHits.Add(1)
		fmt.Fprintf(w, "ruby-foo: ITP %d new gem\n", 1000+n)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	newAPI := func(refresh bool) *APIArchive {
		return NewAPIArchive(fc, time.Hour, fastPolicy()).
			WithURLs(server.URL+"/madison", server.URL+"/wnpp_rm").
			WithRefresh(refresh)
	}
	ctx := context.Background()

	first := NewProber(newAPI(false), Options{Cache: fc})
	got, err := first.Query(ctx, "ruby-rack")
	require.NoError(t, err)
	assert.Equal(t, "1.0-1", got.Version)
	bug, err := newAPI(false).WNPP(ctx, "ruby-foo")
	require.NoError(t, err)
	assert.Equal(t, "1001", bug.Number)

	refreshing := newAPI(true)
	fresh := NewProber(refreshing, Options{Cache: fc, Refresh: true})
	got, err = fresh.Query(ctx, "ruby-rack")
	require.NoError(t, err)
	assert.Equal(t, "2.0-1", got.Version)

	for range 2 {
		bug, err = refreshing.WNPP(ctx, "ruby-foo")
		require.NoError(t, err)
		assert.Equal(t, "1002", bug.Number)
	}
	assert.Equal(t, int32(2), wnppHits.Load(), "the list is refetched once per run")

	v, err := newAPI(false).Madison(ctx, "ruby-rack", Unstable)
	require.NoError(t, err)
	assert.Equal(t, "2.0-1", v, "refreshed answers replace the cached ones")
	assert.Equal(t, int32(2), madisonHits.Load())
}

func TestAPIArchiveServerError(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	a := NewAPIArchive(nil, time.Hour, fastPolicy()).WithURLs(server.URL, "")
	_, err := a.Madison(context.Background(), "ruby-rack", Unstable)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotInArchive))
	assert.Equal(t, int32(3), hits.Load())
	assert.True(t, strings.Contains(err.Error(), "503"))
}
