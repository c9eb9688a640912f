package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/debgems/pkg/deps"
)

func record(name, req, suite string, status deps.PackageStatus, satisfied bool, parents ...string) *deps.Record {
	r := deps.NewRecord(name, req, parents...)
	r.DebianName = "ruby-" + name
	r.Suite = suite
	r.Status = status
	r.Version = deps.NoVersion
	if status == deps.Packaged {
		r.Version = "1.0.0"
		r.Link = "https://tracker.debian.org/pkg/ruby-" + name
	}
	r.Settle(satisfied)
	return r
}

func sampleResult() *deps.Result {
	set := deps.NewWorkingSet()
	set.Add(record("rails", "~> 7.0", deps.SuiteUnstable, deps.Packaged, true, "app"))
	set.Add(record("rack", ">= 2.2", deps.SuiteUnstable, deps.Packaged, false, "app", "rails"))
	set.Add(record("oj", "", deps.SuiteITP, deps.ITP, false, "app"))
	set.Add(record("new_gem", "", deps.SuiteNew, deps.InNew, true, "rails"))
	set.Add(record("lonely", "< 1", deps.SuiteUnpackaged, deps.Unpackaged, false, "oj"))
	skipped := deps.NewRecord("rails-assets-jquery", "", "app")
	skipped.Skip()
	set.Add(skipped)
	return &deps.Result{Root: "app", Set: set, Edges: set.Edges()}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleResult().Set)
	assert.Equal(t, Summary{
		Total:       5,
		Packaged:    3,
		ITP:         1,
		Unpackaged:  1,
		Satisfied:   2,
		Unsatisfied: 3,
		Skipped:     1,
		Percent:     60,
	}, s)

	assert.Equal(t, Summary{}, Summarize(deps.NewWorkingSet()))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResult().Set))

	out := buf.String()
	assert.True(t, strings.HasSuffix(out, "}\n"))
	assert.Less(t, strings.Index(out, `"rails":`), strings.Index(out, `"rack":`))
	assert.Less(t, strings.Index(out, `"rack":`), strings.Index(out, `"oj":`))
	assert.Contains(t, out, `"requirement": ">= 2.2"`)
	assert.Contains(t, out, `"satisfied": null`)

	set, err := deps.ReadWorkingSet(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleResult().Set.Names(), set.Names())
}

func TestWriteEdges(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEdges(&buf, sampleResult().Edges))

	var edges []deps.Edge
	require.NoError(t, json.Unmarshal(buf.Bytes(), &edges))
	assert.Contains(t, edges, deps.Edge{From: "rails", To: "rack"})
	assert.Len(t, edges, 7)

	buf.Reset()
	require.NoError(t, WriteEdges(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleResult(), DOTOptions{})

	assert.True(t, strings.HasPrefix(dot, "digraph G {"))
	assert.Contains(t, dot, `"rails" [color=green];`)
	assert.Contains(t, dot, `"rack" [color=violet];`)
	assert.Contains(t, dot, `"oj" [color=cyan];`)
	assert.Contains(t, dot, `"lonely" [color=red];`)
	assert.Contains(t, dot, `"rails-assets-jquery" [color=gray, style="rounded,dashed"];`)
	assert.Contains(t, dot, `"app" -> "rack";`)
	assert.Contains(t, dot, `"rails" -> "rack";`)
	assert.Equal(t, 7, strings.Count(dot, "->"))
}

func TestToDOTLabels(t *testing.T) {
	dot := ToDOT(sampleResult(), DOTOptions{Labels: true})
	assert.Contains(t, dot, `label="rails\n~> 7.0\n1.0.0 (Unstable)"`)
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, "diaspora", sampleResult().Set))

	out := buf.String()
	assert.Contains(t, out, "<h1>diaspora</h1>")
	assert.Contains(t, out, "3 packaged, 1 ITP, 1 unpackaged of 5 gems.")
	assert.Contains(t, out, "60%")
	assert.Contains(t, out, `<tr class="violet">`)
	assert.Contains(t, out, `<a href="https://tracker.debian.org/pkg/ruby-rails">ruby-rails</a>`)
	assert.Contains(t, out, "&gt;= 2.2")
	assert.Contains(t, out, "<td>app, rails</td>")
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleResult().Set))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 7)
	assert.True(t, strings.HasPrefix(lines[0], "Gem "))
	assert.Contains(t, lines[6], "skipped")

	col := strings.Index(lines[0], "Requirement")
	assert.Equal(t, "~> 7.0", lines[1][col:col+6])
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sampleResult().Set))
	assert.Contains(t, buf.String(), "rails")
	assert.Contains(t, buf.String(), "3 packaged, 1 ITP, 1 unpackaged (60% complete), 1 skipped")
}

func TestPaths(t *testing.T) {
	status, graph := Paths("out", "diaspora")
	assert.Equal(t, "out/diaspora_debian_status.json", status)
	assert.Equal(t, "out/diaspora.dot", graph)
}
