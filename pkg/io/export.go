package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/rfit/pkg/errors"
	"github.com/matzehuels/rfit/pkg/pipeline"
)

// WriteReport encodes report in the given format and writes it to w.
// JSON output is indented; it can be read back with encoding/json into a
// [pipeline.Report].
func WriteReport(w io.Writer, report *pipeline.Report, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(report); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported report format %q", format)
	}
	return nil
}

// ExportReport writes report to path in the format named by its extension.
func ExportReport(report *pipeline.Report, path string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	return ExportReportAs(report, path, format)
}

// ExportReportAs writes report to path in the given format, whatever the
// extension.
func ExportReportAs(report *pipeline.Report, path string, format Format) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteReport(f, report, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
