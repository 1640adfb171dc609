package diagram

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/rfit/pkg/core/assembly"
	"github.com/matzehuels/rfit/pkg/core/material"
	"github.com/matzehuels/rfit/pkg/errors"
)

// Options configures network diagram rendering.
type Options struct {
	// Title is drawn above the network, typically the surface ID.
	Title string

	// Detailed adds thickness and conductivity to layer labels.
	// When false, only the name and resistance are shown.
	Detailed bool
}

// ToDOT converts a construction to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
func ToDOT(c *assembly.Construction, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph R {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowhead=none];\n")
	buf.WriteString("  ranksep=0.3;\n")
	buf.WriteString("  nodesep=0.4;\n")

	title := c.Template
	if opts.Title != "" {
		title = opts.Title + "\n" + c.Template
	}
	fmt.Fprintf(&buf, "  labelloc=t;\n  label=%q;\n\n", title)

	buf.WriteString("  exterior [shape=plaintext, style=\"\", label=\"Exterior\"];\n")
	fmt.Fprintf(&buf, "  interior [shape=plaintext, style=\"\", label=%q];\n",
		fmt.Sprintf("Interior\nR-%.2f total", c.TotalR()))
	fmt.Fprintf(&buf, "  films [style=\"rounded,filled,dashed\", fillcolor=aliceblue, label=%q];\n\n",
		fmt.Sprintf("Air Films\nR-%.2f", c.Film))

	prev := "exterior"
	for i, l := range c.Fixed {
		id := fmt.Sprintf("fixed%d", i)
		fmt.Fprintf(&buf, "  %s [label=%q];\n", id, layerLabel(l, opts.Detailed))
		fmt.Fprintf(&buf, "  %s -> %s;\n", prev, id)
		prev = id
	}
	buf.WriteString("\n")

	for i, p := range c.Paths {
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", fmt.Sprintf("%s\n%.1f%% of area, R-%.2f", p.Name, 100*p.Fraction, c.PathR(i)))
		buf.WriteString("    style=\"rounded,dashed\";\n")
		ids := make([]string, len(p.Layers))
		for j, l := range p.Layers {
			ids[j] = fmt.Sprintf("path%d_%d", i, j)
			fmt.Fprintf(&buf, "    %s [label=%q%s];\n", ids[j], layerLabel(l, opts.Detailed), fill(l.Name))
		}
		buf.WriteString("  }\n")

		last := prev
		for _, id := range ids {
			fmt.Fprintf(&buf, "  %s -> %s;\n", last, id)
			last = id
		}
		fmt.Fprintf(&buf, "  %s -> films;\n", last)
	}

	buf.WriteString("\n  films -> interior;\n")
	buf.WriteString("}\n")
	return buf.String()
}

func layerLabel(l material.Layer, detailed bool) string {
	parts := []string{l.Name}
	if detailed {
		if l.Thickness > 0 {
			parts = append(parts, fmt.Sprintf("%.3g in", l.Thickness))
		}
		if l.Conductivity > 0 {
			parts = append(parts, fmt.Sprintf("k = %.3g", l.Conductivity))
		}
	}
	parts = append(parts, fmt.Sprintf("R-%.2f", l.R))
	return strings.Join(parts, "\n")
}

// fill shades insulation so the solved quantity stands out.
func fill(name string) string {
	if strings.Contains(strings.ToLower(name), "insulation") {
		return ", fillcolor=lightyellow"
	}
	return ""
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [ToPDF] or [ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element with a zero-origin viewBox and
// matching pixel size, since Graphviz emits point units that browsers scale.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return ToPNG(svg, scale)
}
