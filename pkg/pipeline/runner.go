package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/rfit/pkg/buildinfo"
	"github.com/matzehuels/rfit/pkg/cache"
	"github.com/matzehuels/rfit/pkg/core/assembly"
	"github.com/matzehuels/rfit/pkg/core/catalog"
	"github.com/matzehuels/rfit/pkg/core/resolve"
	"github.com/matzehuels/rfit/pkg/core/validate"
	"github.com/matzehuels/rfit/pkg/observability"
)

const cacheKeyType = "result"

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store results. Multiple goroutines can safely use the same Runner.
type Runner struct {
	Cache       cache.Cache
	Keyer       cache.Keyer
	Logger      *log.Logger
	Concurrency int

	// TTL is how long results stay cached; zero uses cache.TTLResult.
	TTL time.Duration

	// Refresh skips cache reads; results are still written.
	Refresh bool

	// Progress, if set, is called by RunAll after each surface resolves.
	// It is called from worker goroutines and must be safe for concurrent use.
	Progress func(*SurfaceResult)
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:       c,
		Keyer:       keyer,
		Logger:      logger,
		Concurrency: DefaultConcurrency,
	}
}

// Run resolves, realizes and validates one surface.
func (r *Runner) Run(ctx context.Context, s Surface) (*SurfaceResult, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key, err := r.cacheKey(s)
	if err != nil {
		return nil, err
	}
	if res, ok := r.cached(ctx, key); ok {
		r.Logger.Debug("cache hit", "surface", s.ID, "template", res.Template)
		return res, nil
	}

	res, err := Resolve(ctx, s)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(res); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.ttl()); err != nil {
			r.Logger.Warn("cache write failed", "surface", s.ID, "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, cacheKeyType, len(data))
		}
	}

	r.Logger.Debug("resolved surface",
		"surface", s.ID,
		"template", res.Template,
		res.UnknownName, fmt.Sprintf("R-%.2f", res.Unknown),
		"delta", res.Validation.Delta)

	return res, nil
}

// RunAll runs every surface with at most r.Concurrency in flight. Results
// keep the input order. The first failing surface cancels the rest and its
// error is returned.
func (r *Runner) RunAll(ctx context.Context, surfaces []Surface) (*Report, error) {
	if err := ValidateSurfaces(surfaces); err != nil {
		return nil, err
	}

	report := &Report{
		RunID:     uuid.NewString(),
		Version:   buildinfo.Version,
		StartedAt: time.Now().UTC(),
		Surfaces:  make([]SurfaceResult, len(surfaces)),
	}

	limit := r.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, s := range surfaces {
		g.Go(func() error {
			res, err := r.Run(gctx, s)
			if err != nil {
				return err
			}
			report.Surfaces[i] = *res
			if r.Progress != nil {
				r.Progress(res)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Stats.Surfaces = len(surfaces)
	for _, res := range report.Surfaces {
		if res.Cached {
			report.Stats.CacheHits++
		}
		if res.Fallback {
			report.Stats.Fallbacks++
		}
	}
	report.Stats.ElapsedMS = time.Since(report.StartedAt).Milliseconds()

	r.Logger.Info("resolved surfaces",
		"run", report.RunID,
		"surfaces", report.Stats.Surfaces,
		"fallbacks", report.Stats.Fallbacks,
		"cache_hits", report.Stats.CacheHits,
		"duration", time.Since(report.StartedAt))

	if report.Stats.Fallbacks > 0 {
		r.Logger.Warn("some surfaces use fallback templates", "count", report.Stats.Fallbacks)
	}

	return report, nil
}

// Resolve runs the three stages for s without caching. s must already be
// valid.
func Resolve(ctx context.Context, s Surface) (*SurfaceResult, error) {
	hooks := observability.Resolve()
	film := s.Film()

	cat, err := catalog.Build(s.Family, s.kind(), s.Options)
	if err != nil {
		return nil, fmt.Errorf("surface %q: %w", s.ID, err)
	}

	start := time.Now()
	sel, err := resolve.Resolve(s.StackTarget(), film, cat, s.ID)
	if err != nil {
		hooks.OnResolve(ctx, string(s.Family), "", -1, time.Since(start), err)
		return nil, err
	}
	hooks.OnResolve(ctx, string(s.Family), sel.Template.Name, sel.Index, time.Since(start), nil)

	c, err := assembly.Build(sel.Template, sel.Unknown, film)
	if err != nil {
		return nil, fmt.Errorf("surface %q: realize %q: %w", s.ID, sel.Template.Name, err)
	}

	outcome, err := validate.Validate(c.StackR(), film, s.ExtraSeriesR, s.AssemblyR, s.ID)
	hooks.OnValidate(ctx, string(s.Family), outcome.Delta, err)
	if err != nil {
		return nil, err
	}

	return &SurfaceResult{
		ID:           s.ID,
		Family:       s.Family,
		Kind:         s.kind(),
		AssemblyR:    s.AssemblyR,
		FilmR:        film,
		ExtraSeriesR: s.ExtraSeriesR,
		Template:     sel.Template.Name,
		Index:        sel.Index,
		Fallback:     sel.Index == cat.Len()-1,
		Unknown:      sel.Unknown,
		UnknownName:  sel.Template.Topology.Unknown(),
		Construction: c,
		Validation:   outcome,
	}, nil
}

// ttl returns how long results stay cached.
func (r *Runner) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return cache.TTLResult
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) cacheKey(s Surface) (string, error) {
	s.Kind = s.kind()
	h, err := cache.HashJSON(s)
	if err != nil {
		return "", fmt.Errorf("hash surface %q: %w", s.ID, err)
	}
	return r.Keyer.ResultKey(h), nil
}

// cached returns the stored result for key. Unreadable entries count as
// misses so that a corrupt cache never fails a run.
func (r *Runner) cached(ctx context.Context, key string) (*SurfaceResult, bool) {
	if r.Refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "error", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil, false
	}
	var res SurfaceResult
	if err := json.Unmarshal(data, &res); err != nil {
		observability.Cache().OnCacheMiss(ctx, cacheKeyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, cacheKeyType)
	res.Cached = true
	return &res, true
}
