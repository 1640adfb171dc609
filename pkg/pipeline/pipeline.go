// Package pipeline runs surfaces through the resolve → realize → validate
// sequence.
//
// This package is the single entry point used by the CLI and the HTTP API.
// By centralizing it here, both agree on defaults, caching and error
// wrapping, and a batch run behaves exactly like a series of single runs.
//
// # Stages
//
// Each surface goes through three stages:
//
//  1. Resolve: build the family catalog and pick the first solvable template
//  2. Realize: lay out the chosen template as a layered construction
//  3. Validate: check the construction reproduces the target R-value
//
// Any stage failing fails the surface; nothing is recovered locally.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Run(ctx, pipeline.Surface{
//	    ID:        "Wall North",
//	    Family:    catalog.WoodStud,
//	    AssemblyR: 13,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Template, res.Unknown)
//
// Run many surfaces concurrently:
//
//	report, err := runner.RunAll(ctx, surfaces)
package pipeline

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/rfit/pkg/core/assembly"
	"github.com/matzehuels/rfit/pkg/core/catalog"
	"github.com/matzehuels/rfit/pkg/core/validate"
	"github.com/matzehuels/rfit/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultConcurrency is the number of surfaces resolved in parallel.
	DefaultConcurrency = 4

	// MaxSurfaces bounds a single batch.
	MaxSurfaces = 10000
)

// =============================================================================
// Surface - Pipeline Input
// =============================================================================

// Surface is one building envelope surface to resolve.
// This struct supports JSON, TOML and YAML serialization for input files and
// API requests.
type Surface struct {
	// ID names the surface in reports and error messages.
	ID string `json:"id" toml:"id" yaml:"id" validate:"required,max=256"`

	// Kind selects the default film and, for wood framing, the preset.
	// Empty means wall.
	Kind catalog.Kind `json:"kind,omitempty" toml:"kind,omitempty" yaml:"kind,omitempty"`

	// Family is the framing technology.
	Family catalog.Family `json:"family" toml:"family" yaml:"family" validate:"required"`

	// AssemblyR is the whole-assembly target including films and ExtraSeriesR.
	AssemblyR float64 `json:"assembly_r" toml:"assembly_r" yaml:"assembly_r" validate:"gt=0"`

	// FilmR overrides the kind's default air film resistance.
	FilmR *float64 `json:"film_r,omitempty" toml:"film_r,omitempty" yaml:"film_r,omitempty" validate:"omitempty,gte=0"`

	// ExtraSeriesR is resistance in series with the stack that is not one of
	// its layers, such as insulation attached outside a foundation wall.
	ExtraSeriesR float64 `json:"extra_series_r,omitempty" toml:"extra_series_r,omitempty" yaml:"extra_series_r,omitempty" validate:"gte=0"`

	// Options customizes the stock catalog.
	Options catalog.Options `json:"options,omitempty" toml:"options,omitempty" yaml:"options,omitempty"`
}

var structValidator = validator.New()

// Validate checks field ranges and that family and kind are known.
// It returns INVALID_INPUT, INVALID_FAMILY or INVALID_KIND.
func (s Surface) Validate() error {
	if err := structValidator.Struct(s); err != nil {
		return surfaceError(s.ID, err)
	}
	if err := errors.ValidateSurfaceLabel(s.ID); err != nil {
		return err
	}
	if _, err := catalog.ParseFamily(string(s.Family)); err != nil {
		return fmt.Errorf("surface %q: %w", s.ID, err)
	}
	if _, err := catalog.ParseKind(string(s.Kind)); err != nil {
		return fmt.Errorf("surface %q: %w", s.ID, err)
	}
	if err := errors.ValidateNonNegative("extra series resistance", s.ExtraSeriesR); err != nil {
		return fmt.Errorf("surface %q: %w", s.ID, err)
	}
	if s.FilmR != nil {
		if err := errors.ValidateNonNegative("film resistance", *s.FilmR); err != nil {
			return fmt.Errorf("surface %q: %w", s.ID, err)
		}
	}
	if err := errors.ValidateTarget(s.ID, s.AssemblyR); err != nil {
		return err
	}
	if !(s.StackTarget() > 0) {
		return errors.New(errors.ErrCodeInvalidInput,
			"surface %q: extra series R-%.2f leaves nothing of target R-%.2f for the assembly",
			s.ID, s.ExtraSeriesR, s.AssemblyR)
	}
	return s.Options.WithDefaults().Validate()
}

// surfaceError flattens validator field errors into one INVALID_INPUT error.
func surfaceError(id string, err error) error {
	var fields validator.ValidationErrors
	if !stderrors.As(err, &fields) {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "surface %q", id)
	}
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", f.Field(), f.Tag(), f.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s is %s", f.Field(), f.Tag()))
		}
	}
	if id == "" {
		return errors.New(errors.ErrCodeInvalidInput, "surface: %s", strings.Join(msgs, "; "))
	}
	return errors.New(errors.ErrCodeInvalidInput, "surface %q: %s", id, strings.Join(msgs, "; "))
}

// Film returns the film resistance used for the surface.
func (s Surface) Film() float64 {
	if s.FilmR != nil {
		return *s.FilmR
	}
	return s.kind().DefaultFilm()
}

// StackTarget returns the R-value the construction itself must reach,
// films included: AssemblyR less ExtraSeriesR.
func (s Surface) StackTarget() float64 {
	return s.AssemblyR - s.ExtraSeriesR
}

func (s Surface) kind() catalog.Kind {
	if s.Kind == "" {
		return catalog.Wall
	}
	return s.Kind
}

// =============================================================================
// Results
// =============================================================================

// SurfaceResult is the resolved construction of one surface.
type SurfaceResult struct {
	ID           string         `json:"id" toml:"id" yaml:"id"`
	Family       catalog.Family `json:"family" toml:"family" yaml:"family"`
	Kind         catalog.Kind   `json:"kind" toml:"kind" yaml:"kind"`
	AssemblyR    float64        `json:"assembly_r" toml:"assembly_r" yaml:"assembly_r"`
	FilmR        float64        `json:"film_r" toml:"film_r" yaml:"film_r"`
	ExtraSeriesR float64        `json:"extra_series_r" toml:"extra_series_r" yaml:"extra_series_r"`

	// Template is the chosen template and Index its catalog position.
	Template string `json:"template" toml:"template" yaml:"template"`
	Index    int    `json:"index" toml:"index" yaml:"index"`
	Fallback bool   `json:"fallback" toml:"fallback" yaml:"fallback"`

	// Unknown is the solved quantity named by UnknownName.
	Unknown     float64 `json:"unknown" toml:"unknown" yaml:"unknown"`
	UnknownName string  `json:"unknown_name" toml:"unknown_name" yaml:"unknown_name"`

	Construction *assembly.Construction `json:"construction" toml:"construction" yaml:"construction"`
	Validation   validate.Outcome       `json:"validation" toml:"validation" yaml:"validation"`

	// Cached reports whether the result was served from the cache.
	Cached bool `json:"cached" toml:"cached" yaml:"cached"`
}

// Report is the outcome of a batch run.
type Report struct {
	RunID     string          `json:"run_id" toml:"run_id" yaml:"run_id"`
	Version   string          `json:"version" toml:"version" yaml:"version"`
	StartedAt time.Time       `json:"started_at" toml:"started_at" yaml:"started_at"`
	Stats     Stats           `json:"stats" toml:"stats" yaml:"stats"`
	Surfaces  []SurfaceResult `json:"surfaces" toml:"surfaces" yaml:"surfaces"`
}

// Stats contains batch execution statistics.
type Stats struct {
	Surfaces  int   `json:"surfaces" toml:"surfaces" yaml:"surfaces"`
	Fallbacks int   `json:"fallbacks" toml:"fallbacks" yaml:"fallbacks"`
	CacheHits int   `json:"cache_hits" toml:"cache_hits" yaml:"cache_hits"`
	ElapsedMS int64 `json:"elapsed_ms" toml:"elapsed_ms" yaml:"elapsed_ms"`
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateSurfaces checks every surface and that IDs are unique.
func ValidateSurfaces(surfaces []Surface) error {
	if len(surfaces) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no surfaces to resolve")
	}
	if len(surfaces) > MaxSurfaces {
		return errors.New(errors.ErrCodeInvalidInput, "too many surfaces: %d (max %d)", len(surfaces), MaxSurfaces)
	}
	seen := make(map[string]bool, len(surfaces))
	for i, s := range surfaces {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("surface %d: %w", i+1, err)
		}
		if seen[s.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate surface id %q", s.ID)
		}
		seen[s.ID] = true
	}
	return nil
}
