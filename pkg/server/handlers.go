package server

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/rfit/pkg/buildinfo"
	"github.com/matzehuels/rfit/pkg/core/catalog"
	"github.com/matzehuels/rfit/pkg/core/resolve"
	"github.com/matzehuels/rfit/pkg/errors"
	rfitio "github.com/matzehuels/rfit/pkg/io"
	"github.com/matzehuels/rfit/pkg/pipeline"
	"github.com/matzehuels/rfit/pkg/render/diagram"
	"github.com/matzehuels/rfit/pkg/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

type kindInfo struct {
	Kind catalog.Kind `json:"kind"`
	Film float64      `json:"default_film_r"`
}

func (s *Server) handleFamilies(w http.ResponseWriter, _ *http.Request) {
	kinds := make([]kindInfo, 0, len(catalog.Kinds()))
	for _, k := range catalog.Kinds() {
		kinds = append(kinds, kindInfo{Kind: k, Film: k.DefaultFilm()})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"families": catalog.Families(),
		"kinds":    kinds,
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	cat, err := catalogFor(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// candidate mirrors resolve.Candidate with a nullable unknown, since JSON
// has no NaN.
type candidate struct {
	Template string   `json:"template"`
	Topology string   `json:"topology"`
	FixedR   float64  `json:"fixed_r"`
	Unknown  *float64 `json:"unknown"`
	Accepted bool     `json:"accepted"`
}

func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	cat, err := catalogFor(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	target, err := floatParam(r, "target", math.NaN())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	film, err := floatParam(r, "film", cat.Kind.DefaultFilm())
	if err != nil {
		s.writeErr(w, err)
		return
	}

	solved, err := resolve.Candidates(target, film, cat)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	out := make([]candidate, len(solved))
	for i, c := range solved {
		out[i] = candidate{
			Template: c.Template.Name,
			Topology: c.Template.Topology.String(),
			FixedR:   c.FixedR,
			Accepted: c.Accepted,
		}
		if !math.IsNaN(c.Unknown) && !math.IsInf(c.Unknown, 0) {
			u := c.Unknown
			out[i].Unknown = &u
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"family":     cat.Family,
		"kind":       cat.Kind,
		"target":     target,
		"film_r":     film,
		"candidates": out,
	})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	surface, err := decodeSurface(w, r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	res, err := s.Runner.Run(r.Context(), surface)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	surfaces, err := rfitio.ReadSurfaces(r.Body, rfitio.FormatJSON)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	report, err := s.Runner.RunAll(r.Context(), surfaces)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if s.History != nil {
		if err := s.History.Save(r.Context(), report, historySource); err != nil {
			s.Logger.Warn("failed to save run", "run_id", report.RunID, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, report)
}

// historySource labels runs saved from the API.
const historySource = "api"

// defaultRunsLimit bounds GET /v1/runs without ?limit=; maxRunsLimit bounds
// it with one.
const (
	defaultRunsLimit = 50
	maxRunsLimit     = 10000
)

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.History == nil {
		s.writeErr(w, errNoHistory)
		return
	}
	limit, err := floatParam(r, "limit", defaultRunsLimit)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if limit < 0 || limit > maxRunsLimit || limit != math.Trunc(limit) {
		s.writeErr(w, errors.New(errors.ErrCodeInvalidInput, "limit must be an integer from 0 to %d", maxRunsLimit))
		return
	}
	runs, err := s.History.Runs(r.Context(), int(limit))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleSavedRun(w http.ResponseWriter, r *http.Request) {
	if s.History == nil {
		s.writeErr(w, errNoHistory)
		return
	}
	report, err := s.History.Report(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

var errNoHistory = errors.New(errors.ErrCodeUnsupported, "run history is not enabled on this server")

func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "svg"
	}
	if format != "svg" && format != "dot" {
		s.writeErr(w, errors.New(errors.ErrCodeInvalidFormat, "diagram format %q (must be svg or dot)", format))
		return
	}

	surface, err := decodeSurface(w, r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	res, err := s.Runner.Run(r.Context(), surface)
	if err != nil {
		s.writeErr(w, err)
		return
	}

	dot := diagram.ToDOT(res.Construction, diagram.Options{
		Title:    surface.ID,
		Detailed: r.URL.Query().Get("detailed") == "true",
	})
	if format == "dot" {
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(dot))
		return
	}
	svg, err := diagram.RenderSVG(dot)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

// =============================================================================
// Helpers
// =============================================================================

func decodeSurface(w http.ResponseWriter, r *http.Request) (pipeline.Surface, error) {
	var surface pipeline.Surface
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&surface); err != nil {
		return surface, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode surface")
	}
	return surface, nil
}

func catalogFor(r *http.Request) (catalog.Catalog, error) {
	family, err := catalog.ParseFamily(chi.URLParam(r, "family"))
	if err != nil {
		return catalog.Catalog{}, err
	}
	kind, err := catalog.ParseKind(r.URL.Query().Get("kind"))
	if err != nil {
		return catalog.Catalog{}, err
	}
	return catalog.Build(family, kind, catalog.Options{})
}

// floatParam parses query parameter name, returning def when it is absent.
func floatParam(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		if math.IsNaN(def) {
			return 0, errors.New(errors.ErrCodeInvalidInput, "query parameter %q is required", name)
		}
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "query parameter %q: %q is not a number", name, raw)
	}
	return v, nil
}

// StatusFor maps an error code to an HTTP status.
func StatusFor(err error) int {
	if errors.IsInvalid(err) {
		return http.StatusBadRequest
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeConfiguration, errors.ErrCodeValidation:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeFileNotFound, errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) writeErr(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorBody{Code: code, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
