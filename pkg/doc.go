// Package pkg provides the libraries behind rfit, which turns target
// assembly R-values into physically buildable layered constructions.
//
// # Overview
//
// The pkg directory is organized into these areas:
//
//  1. [core] - Domain logic (closed-form network solvers, template catalogs,
//     first-fit resolution, construction layout, round-trip validation)
//  2. [pipeline] - Orchestration (validate → resolve → build → check), with
//     caching and bounded batch concurrency
//  3. [io] - Surface files and reports in TOML, JSON and YAML
//  4. [render] - Resistance network diagrams
//  5. [server] - HTTP API over the pipeline
//  6. [store] - SQLite history of batch reports
//  7. [cache], [observability], [errors], [buildinfo] - Infrastructure
//
// # Architecture
//
// The data flow for one surface:
//
//	Surface (family, kind, target R, films, extra series R)
//	         ↓
//	    [core/catalog] package (ordered templates for the family)
//	         ↓
//	    [core/resolve] package (first template whose unknown solves > 0)
//	         ↓
//	    [core/assembly] package (parallel paths with the solved layer)
//	         ↓
//	    [core/validate] package (realized R within 0.01 of target)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/rfit/pkg/core/catalog"
//	    "github.com/matzehuels/rfit/pkg/core/resolve"
//	)
//
//	cat, _ := catalog.Build(catalog.WoodStud, catalog.Wall, catalog.Options{})
//	res, err := resolve.Resolve(21, catalog.Wall.DefaultFilm(), cat, "Wall North")
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%s: %s R-%.2f\n", res.Template.Name, res.Template.Topology.Unknown(), res.Unknown)
//
// For whole buildings use [pipeline.Runner.RunAll], which adds caching,
// validation and a report.
package pkg
