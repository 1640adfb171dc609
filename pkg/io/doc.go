// Package io reads surface definitions and writes resolution reports.
//
// # Surface Files
//
// A surface file lists the envelope surfaces of one building. TOML, JSON and
// YAML are accepted; the format is chosen by file extension. In TOML each
// surface is a [[surface]] table:
//
//	[defaults]
//	family = "wood_stud"
//
//	[[surface]]
//	id = "Wall North"
//	assembly_r = 21
//
//	[[surface]]
//	id = "Foundation Wall"
//	kind = "foundation_wall"
//	family = "generic"
//	assembly_r = 12
//	extra_series_r = 5
//
// JSON and YAML use the same keys: a top-level "surface" array and an
// optional "defaults" object.
//
// # Surface Fields
//
// Required:
//   - id: Unique label used in reports and error messages
//   - assembly_r: Whole-assembly target R-value including films
//   - family: Framing technology, unless set in [defaults]
//
// Optional:
//   - kind: wall, rim_joist, roof, ceiling, floor, foundation_wall or slab
//   - film_r: Air film resistance; defaults per kind
//   - extra_series_r: Series resistance outside the stack
//   - options: Catalog options (interior_finish_in, exterior_finish_r,
//     correction_factor, stud_spacing)
//
// Unknown keys are rejected with INVALID_FORMAT so that a misspelled field
// never silently falls back to a default.
//
// # Reports
//
// Use [WriteReport] to encode a [pipeline.Report] as JSON, TOML or YAML, or
// [ExportReport] to write it to a file named after its format.
package io
