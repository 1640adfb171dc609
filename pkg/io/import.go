package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/rfit/pkg/core/catalog"
	"github.com/matzehuels/rfit/pkg/errors"
	"github.com/matzehuels/rfit/pkg/pipeline"
)

// Format is an encoding for surface files and reports.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Formats returns the supported formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatTOML, FormatYAML}
}

// ParseFormat accepts a format name or a file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (must be one of: json, toml, yaml)", s)
}

// FormatOf derives the format from a file name's extension.
func FormatOf(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", errors.New(errors.ErrCodeInvalidFormat, "%s: no file extension to detect format from", path)
	}
	return ParseFormat(ext)
}

// Defaults fill in fields a surface leaves empty.
type Defaults struct {
	Family  catalog.Family  `json:"family,omitempty" toml:"family,omitempty" yaml:"family,omitempty"`
	Kind    catalog.Kind    `json:"kind,omitempty" toml:"kind,omitempty" yaml:"kind,omitempty"`
	Options catalog.Options `json:"options,omitempty" toml:"options,omitempty" yaml:"options,omitempty"`
}

type document struct {
	Defaults Defaults           `json:"defaults,omitempty" toml:"defaults,omitempty" yaml:"defaults,omitempty"`
	Surfaces []pipeline.Surface `json:"surface" toml:"surface" yaml:"surface"`
}

// ReadSurfaces decodes a surface file from r. Defaults are applied to each
// surface but the surfaces are not validated; the pipeline does that.
//
// ReadSurfaces does not close r.
func ReadSurfaces(r io.Reader, format Format) ([]pipeline.Surface, error) {
	var doc document
	if err := decode(r, format, &doc); err != nil {
		return nil, err
	}
	if len(doc.Surfaces) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no surfaces defined")
	}
	for i := range doc.Surfaces {
		doc.Surfaces[i] = applyDefaults(doc.Surfaces[i], doc.Defaults)
	}
	return doc.Surfaces, nil
}

// ImportSurfaces reads the surface file at path, detecting the format from
// its extension.
func ImportSurfaces(path string) ([]pipeline.Surface, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "surface file %s not found", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	surfaces, err := ReadSurfaces(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return surfaces, nil
}

func applyDefaults(s pipeline.Surface, d Defaults) pipeline.Surface {
	if s.Family == "" {
		s.Family = d.Family
	}
	if s.Kind == "" {
		s.Kind = d.Kind
	}
	o := &s.Options
	if o.InteriorFinishThickness == 0 {
		o.InteriorFinishThickness = d.Options.InteriorFinishThickness
	}
	if o.ExteriorFinishR == 0 {
		o.ExteriorFinishR = d.Options.ExteriorFinishR
	}
	if o.CorrectionFactor == 0 {
		o.CorrectionFactor = d.Options.CorrectionFactor
	}
	if o.StudSpacing == 0 {
		o.StudSpacing = d.Options.StudSpacing
	}
	return s
}

func decode(r io.Reader, format Format, v any) error {
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
		}
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return errors.New(errors.ErrCodeInvalidFormat, "decode toml: unknown key %q", undecoded[0].String())
		}
	case FormatYAML:
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("read yaml: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil {
			if err == io.EOF {
				return nil
			}
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml")
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
	return nil
}
