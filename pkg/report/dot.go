package report

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/debgems/pkg/deps"
)

// DOTOptions configures [ToDOT].
type DOTOptions struct {
	// Labels adds the requirement and the Debian version to node labels.
	Labels bool
}

// ToDOT converts a resolution result to Graphviz DOT. Every record becomes
// a node colored by its [deps.Color]; every parent adds one edge. The root
// appears as a plain box.
func ToDOT(res *deps.Result, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=\"rounded\", penwidth=2];\n")
	buf.WriteString("\n")

	if res.Root != "" {
		fmt.Fprintf(&buf, "  %q [style=\"rounded,bold\"];\n", res.Root)
	}
	for _, r := range res.Set.Records() {
		fmt.Fprintf(&buf, "  %q [%s];\n", r.Name, nodeAttrs(r, opts))
	}

	buf.WriteString("\n")
	edges := res.Edges
	if edges == nil {
		edges = res.Set.Edges()
	}
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(r *deps.Record, opts DOTOptions) string {
	color := r.Color
	if color == "" {
		color = "gray"
	}
	attrs := fmt.Sprintf("color=%s", color)
	if r.State == deps.Skipped {
		attrs += ", style=\"rounded,dashed\""
	}
	if opts.Labels {
		label := r.Name
		if r.Requirement != "" {
			label += "\n" + r.Requirement
		}
		if r.Version != "" {
			label += "\n" + r.Version + " (" + r.Suite + ")"
		}
		attrs += fmt.Sprintf(", label=%q", label)
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: apt install librsvg2-bin (Linux), brew install librsvg (macOS).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return rsvgConvert(ctx, svg, "pdf")
}

func rsvgConvert(ctx context.Context, svg []byte, format string) ([]byte, error) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return nil, fmt.Errorf("%s export requires librsvg. Install with:\n  Linux:  apt install librsvg2-bin\n  macOS:  brew install librsvg", format)
	}

	cmd := exec.CommandContext(ctx, "rsvg-convert", "-f", format)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert: %v: %s", err, errBuf.String())
	}
	return out.Bytes(), nil
}
