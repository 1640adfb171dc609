package prom

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/rfit/pkg/errors"
	"github.com/matzehuels/rfit/pkg/observability"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

func TestResolveMetrics(t *testing.T) {
	ctx := context.Background()
	m := New("rfit")

	m.OnResolve(ctx, "wood_stud", "2x6 Wood Stud", 2, time.Microsecond, nil)
	m.OnResolve(ctx, "wood_stud", "", -1, time.Microsecond, errors.New(errors.ErrCodeConfiguration, "infeasible"))
	m.OnValidate(ctx, "sip", -0.003, nil)

	out := scrape(t, m)
	for _, want := range []string{
		`rfit_resolves_total{code="ok",family="wood_stud"} 1`,
		`rfit_resolves_total{code="CONFIGURATION",family="wood_stud"} 1`,
		`rfit_validations_total{code="ok",family="sip"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s", want)
		}
	}
}

func TestCacheMetrics(t *testing.T) {
	ctx := context.Background()
	m := New("rfit")

	m.OnCacheMiss(ctx, "result")
	m.OnCacheSet(ctx, "result", 512)
	m.OnCacheHit(ctx, "result")
	m.OnCacheHit(ctx, "result")

	out := scrape(t, m)
	for _, want := range []string{
		`rfit_cache_operations_total{key_type="result",op="hit"} 2`,
		`rfit_cache_operations_total{key_type="result",op="miss"} 1`,
		`rfit_cache_written_bytes_total{key_type="result"} 512`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s", want)
		}
	}
}

func TestHTTPMetrics(t *testing.T) {
	m := New("rfit")
	m.OnRequest(context.Background(), "POST", "/v1/resolve")
	m.OnResponse(context.Background(), "POST", "/v1/resolve", 200, 3*time.Millisecond)

	want := `rfit_http_requests_total{method="POST",route="/v1/resolve",status="200"} 1`
	if out := scrape(t, m); !strings.Contains(out, want) {
		t.Errorf("metrics output missing request counter:\n%s", out)
	}
}

func TestRegister(t *testing.T) {
	defer observability.Reset()

	m := New("rfit")
	m.Register()
	if observability.Resolve() != m || observability.Cache() != m || observability.HTTP() != m {
		t.Error("Register should install m for every hook kind")
	}
}

func TestCode(t *testing.T) {
	if got := code(nil); got != "ok" {
		t.Errorf("code(nil) = %q", got)
	}
	if got := code(context.Canceled); got != "error" {
		t.Errorf("code(plain) = %q", got)
	}
	if got := code(errors.New(errors.ErrCodeValidation, "x")); got != "VALIDATION" {
		t.Errorf("code(VALIDATION) = %q", got)
	}
}
