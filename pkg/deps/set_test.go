package deps

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/debgems/pkg/errors"
)

func TestWorkingSetAdd(t *testing.T) {
	s := NewWorkingSet()
	assert.True(t, s.Add(NewRecord("b", "")))
	assert.True(t, s.Add(NewRecord("a", "")))
	assert.False(t, s.Add(NewRecord("b", ">= 1")))

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"b", "a"}, s.Names())
	b, ok := s.Get("b")
	require.True(t, ok)
	assert.Equal(t, "", b.Requirement)
	_, ok = s.Get("c")
	assert.False(t, ok)
}

func TestRecordAddParent(t *testing.T) {
	r := NewRecord("x", "", "app")
	assert.False(t, r.AddParent("app"))
	assert.False(t, r.AddParent(""))
	assert.True(t, r.AddParent("y"))
	assert.Equal(t, []string{"app", "y"}, r.Parents)
}

func TestWorkingSetJSONKeepsOrder(t *testing.T) {
	s := NewWorkingSet()
	for _, n := range []string{"zeitwerk", "actionpack", "mail"} {
		s.Add(NewRecord(n, ">= 1", "app"))
	}

	data, err := json.Marshal(s)
	require.NoError(t, err)

	out := string(data)
	assert.Less(t, strings.Index(out, `"zeitwerk"`), strings.Index(out, `"actionpack"`))
	assert.Less(t, strings.Index(out, `"actionpack"`), strings.Index(out, `"mail"`))
	assert.Contains(t, out, `"satisfied":null`)
	assert.Contains(t, out, `"parent":["app"]`)
}

func TestDecodeRecordsRoundTrip(t *testing.T) {
	s := NewWorkingSet()
	a := NewRecord("nokogiri", "~> 1.13", "app")
	a.Annotate(&Packaging{DebianName: "ruby-nokogiri", Version: "1.13.10+dfsg-2", Suite: SuiteUnstable, Status: Packaged, Link: "https://tracker.debian.org/pkg/ruby-nokogiri"})
	a.Settle(true)
	s.Add(a)
	s.Add(NewRecord("mini_portile2", "~> 2.8.0", "nokogiri"))

	data, err := json.Marshal(s)
	require.NoError(t, err)

	got, err := ReadWorkingSet(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"nokogiri", "mini_portile2"}, got.Names())

	n, _ := got.Get("nokogiri")
	assert.Equal(t, *a, *n)
	m, _ := got.Get("mini_portile2")
	assert.Equal(t, Pending, m.State)
	assert.Equal(t, Unknown, m.Satisfied)
}

func TestDecodeRecordsRejectsUnknownFields(t *testing.T) {
	in := `{"rack": {"name": "rack", "requirement": "", "colour": "green"}}`
	_, err := DecodeRecords(strings.NewReader(in))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidFormat))
}

func TestDecodeRecordsNameMismatch(t *testing.T) {
	_, err := DecodeRecords(strings.NewReader(`{"rack": {"name": "puma"}}`))
	require.Error(t, err)

	recs, err := DecodeRecords(strings.NewReader(`{"rack": {"requirement": ">= 2"}}`))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "rack", recs[0].Name)
}

func TestDecodeRecordsInvalidJSON(t *testing.T) {
	_, err := DecodeRecords(strings.NewReader(`[1, 2]`))
	require.Error(t, err)
}
