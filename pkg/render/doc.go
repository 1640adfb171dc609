// Package render groups the visual outputs of rfit.
//
// The [diagram] subpackage draws a resolved construction as a resistance
// network in Graphviz DOT and renders it to SVG, PDF or PNG. PDF and PNG
// conversion uses the external rsvg-convert tool from librsvg.
package render
