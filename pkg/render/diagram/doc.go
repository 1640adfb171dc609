// Package diagram draws a realized construction as a thermal resistance
// network.
//
// The drawing reads from the exterior at the top to the interior at the
// bottom. Layers shared by every path form a single chain; the network then
// fans out into one column per parallel path, each labeled with its area
// fraction and path resistance, and joins again at the air films:
//
//	c, _ := assembly.Build(res.Template, res.Unknown, film)
//	dot := diagram.ToDOT(c, diagram.Options{Title: "Wall North"})
//	svg, err := diagram.RenderSVG(dot)
//
// [RenderSVG] uses the WebAssembly build of Graphviz bundled with
// goccy/go-graphviz, so no system Graphviz is needed. [RenderPDF] and
// [RenderPNG] additionally shell out to rsvg-convert.
package diagram
