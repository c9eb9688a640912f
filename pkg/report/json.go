package report

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/matzehuels/debgems/pkg/deps"
)

// StatusFile returns the status file name for app.
func StatusFile(app string) string { return app + "_debian_status.json" }

// GraphFile returns the DOT file name for app.
func GraphFile(app string) string { return app + ".dot" }

// Paths returns the status and graph file paths for app inside dir.
func Paths(dir, app string) (status, graph string) {
	return filepath.Join(dir, StatusFile(app)), filepath.Join(dir, GraphFile(app))
}

// WriteJSON writes set as an indented, insertion-ordered name -> record
// object.
func WriteJSON(w io.Writer, set *deps.WorkingSet) error {
	data, err := set.MarshalJSON()
	if err != nil {
		return err
	}
	return writeIndented(w, data)
}

// WriteEdges writes edges as a JSON array of {"from", "to"} objects.
func WriteEdges(w io.Writer, edges []deps.Edge) error {
	if edges == nil {
		edges = []deps.Edge{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(edges)
}

func writeIndented(w io.Writer, data []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}
