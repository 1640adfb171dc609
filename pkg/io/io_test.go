package io

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/rfit/pkg/core/catalog"
	"github.com/matzehuels/rfit/pkg/errors"
	"github.com/matzehuels/rfit/pkg/pipeline"
)

const surfacesTOML = `
[defaults]
family = "wood_stud"

[defaults.options]
interior_finish_in = 0.625

[[surface]]
id = "Wall North"
assembly_r = 21

[[surface]]
id = "Foundation Wall"
kind = "foundation_wall"
family = "generic"
assembly_r = 12
extra_series_r = 5
film_r = 0.68
`

const surfacesJSON = `{
  "defaults": {"family": "wood_stud", "options": {"interior_finish_in": 0.625}},
  "surface": [
    {"id": "Wall North", "assembly_r": 21},
    {"id": "Foundation Wall", "kind": "foundation_wall", "family": "generic",
     "assembly_r": 12, "extra_series_r": 5, "film_r": 0.68}
  ]
}`

const surfacesYAML = `
defaults:
  family: wood_stud
  options:
    interior_finish_in: 0.625
surface:
  - id: Wall North
    assembly_r: 21
  - id: Foundation Wall
    kind: foundation_wall
    family: generic
    assembly_r: 12
    extra_series_r: 5
    film_r: 0.68
`

func TestReadSurfaces(t *testing.T) {
	tests := []struct {
		format Format
		input  string
	}{
		{FormatTOML, surfacesTOML},
		{FormatJSON, surfacesJSON},
		{FormatYAML, surfacesYAML},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			surfaces, err := ReadSurfaces(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("ReadSurfaces: %v", err)
			}
			if len(surfaces) != 2 {
				t.Fatalf("got %d surfaces", len(surfaces))
			}

			wall, fdn := surfaces[0], surfaces[1]
			if wall.ID != "Wall North" || wall.Family != catalog.WoodStud || wall.AssemblyR != 21 {
				t.Errorf("wall = %+v", wall)
			}
			if wall.FilmR != nil {
				t.Errorf("wall film should be unset, got %g", *wall.FilmR)
			}
			if wall.Options.InteriorFinishThickness != 0.625 {
				t.Errorf("default options not applied: %+v", wall.Options)
			}
			if fdn.Family != catalog.Generic || fdn.Kind != catalog.FoundationWall {
				t.Errorf("foundation = %+v", fdn)
			}
			if fdn.FilmR == nil || *fdn.FilmR != 0.68 || fdn.ExtraSeriesR != 5 {
				t.Errorf("foundation film/extra = %v/%g", fdn.FilmR, fdn.ExtraSeriesR)
			}
		})
	}
}

func TestReadSurfacesRejects(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
		code   errors.Code
	}{
		{"unknown toml key", FormatTOML, "[[surface]]\nid = \"a\"\nasembly_r = 3\n", errors.ErrCodeInvalidFormat},
		{"unknown json key", FormatJSON, `{"surface": [{"id": "a", "target": 3}]}`, errors.ErrCodeInvalidFormat},
		{"unknown yaml key", FormatYAML, "surface:\n  - id: a\n    target: 3\n", errors.ErrCodeInvalidFormat},
		{"malformed toml", FormatTOML, "[[surface]\n", errors.ErrCodeInvalidFormat},
		{"empty", FormatJSON, `{"surface": []}`, errors.ErrCodeInvalidInput},
		{"empty yaml", FormatYAML, "", errors.ErrCodeInvalidInput},
		{"bad format", "xml", "<surface/>", errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSurfaces(strings.NewReader(tt.input), tt.format)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"json", FormatJSON, true},
		{".toml", FormatTOML, true},
		{"YML", FormatYAML, true},
		{"yaml", FormatYAML, true},
		{"csv", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
	if _, err := FormatOf("surfaces"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("FormatOf without extension err = %v", err)
	}
}

func TestImportSurfaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "house.toml")
	if err := os.WriteFile(path, []byte(surfacesTOML), 0o644); err != nil {
		t.Fatal(err)
	}
	surfaces, err := ImportSurfaces(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(surfaces) != 2 {
		t.Errorf("got %d surfaces", len(surfaces))
	}

	_, err = ImportSurfaces(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file err = %v", err)
	}
}

func testReport(t *testing.T) *pipeline.Report {
	t.Helper()
	surfaces, err := ReadSurfaces(strings.NewReader(surfacesTOML), FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	r := pipeline.NewRunner(nil, nil, log.NewWithOptions(io.Discard, log.Options{}))
	report, err := r.RunAll(context.Background(), surfaces)
	if err != nil {
		t.Fatal(err)
	}
	return report
}

func TestWriteReportJSON(t *testing.T) {
	report := testReport(t)

	var buf bytes.Buffer
	if err := WriteReport(&buf, report, FormatJSON); err != nil {
		t.Fatal(err)
	}
	var back pipeline.Report
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if back.RunID != report.RunID || len(back.Surfaces) != 2 {
		t.Errorf("round trip lost data: %+v", back.Stats)
	}
	if back.Surfaces[1].Construction.Topology != catalog.Series {
		t.Errorf("topology = %v", back.Surfaces[1].Construction.Topology)
	}
}

func TestWriteReportTOML(t *testing.T) {
	report := testReport(t)

	var buf bytes.Buffer
	if err := WriteReport(&buf, report, FormatTOML); err != nil {
		t.Fatal(err)
	}
	var back map[string]any
	if _, err := toml.Decode(buf.String(), &back); err != nil {
		t.Fatalf("report is not valid TOML: %v\n%s", err, buf.String())
	}
	if back["run_id"] != report.RunID {
		t.Errorf("run_id = %v", back["run_id"])
	}
	if !strings.Contains(buf.String(), `topology = "parallel_cavity"`) {
		t.Error("topology should be written by name")
	}
}

func TestWriteReportYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, testReport(t), FormatYAML); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "template: Solid Wall") {
		t.Errorf("yaml output missing template:\n%s", buf.String())
	}
}

func TestExportReport(t *testing.T) {
	report := testReport(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "report.json")
	if err := ExportReport(report, path); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Errorf("report not written: %v", err)
	}
	if err := ExportReport(report, filepath.Join(dir, "report.csv")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("csv err = %v", err)
	}

	out := filepath.Join(dir, "report.txt")
	if err := ExportReportAs(report, out, FormatYAML); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "run_id:") {
		t.Errorf("yaml report missing run_id:\n%s", data)
	}
	if err := ExportReportAs(report, "", FormatJSON); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("empty path err = %v", err)
	}
}
