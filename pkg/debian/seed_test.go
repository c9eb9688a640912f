package debian

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/debgems/pkg/deps"
)

const statusFile = `{
  "rack": {"name": "rack", "requirement": "~> 2.2", "parent": ["app"], "state": "satisfied", "satisfied": true,
           "debian_name": "ruby-rack", "version": "2.2.4-3", "suite": "Unstable", "status": "Packaged",
           "color": "green", "link": "https://tracker.debian.org/pkg/rack"},
  "fresh": {"name": "fresh", "requirement": "", "parent": ["app"], "state": "unsatisfied", "satisfied": false,
            "debian_name": "", "version": "0.1-1", "suite": "NEW", "status": "",
            "color": "blue", "link": ""},
  "pending": {"name": "pending", "requirement": "", "parent": ["app"], "state": "pending", "satisfied": null,
              "debian_name": "", "version": "", "suite": "", "status": "", "color": "", "link": ""},
  "broken": {"name": "broken", "requirement": "", "parent": ["app"], "state": "unsatisfied", "satisfied": false,
             "debian_name": "ruby-broken", "version": "NA", "suite": "Unpackaged", "status": "Unpackaged",
             "color": "red", "link": "", "error": "timeout"}
}`

func TestReadSeed(t *testing.T) {
	seed, err := ReadSeed(strings.NewReader(statusFile), nil)
	require.NoError(t, err)

	assert.Len(t, seed, 2)
	assert.Equal(t, deps.Packaging{
		DebianName: "ruby-rack",
		Version:    "2.2.4-3",
		Suite:      deps.SuiteUnstable,
		Status:     deps.Packaged,
		Link:       "https://tracker.debian.org/pkg/rack",
	}, seed["ruby-rack"])
	assert.Equal(t, deps.InNew, seed["ruby-fresh"].Status)
}

func TestReadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app_debian_status.json")
	require.NoError(t, os.WriteFile(path, []byte(statusFile), 0o644))

	seed, err := ReadSeedFile(path, DefaultNames())
	require.NoError(t, err)
	assert.Contains(t, seed, "ruby-rack")

	_, err = ReadSeedFile(filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.Error(t, err)
}

func TestReadSeedRejectsUnknownFields(t *testing.T) {
	_, err := ReadSeed(strings.NewReader(`{"rack": {"name": "rack", "autorequire": "", "bogus": 1}}`), nil)
	assert.Error(t, err)
}
