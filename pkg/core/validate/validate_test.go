package validate

import (
	"math"
	"strings"
	"testing"

	"github.com/matzehuels/rfit/pkg/errors"
)

func TestValidateBoundary(t *testing.T) {
	tests := []struct {
		name     string
		realized float64
		film     float64
		extra    float64
		target   float64
		wantErr  bool
	}{
		{"exact", 13.0, 0, 0, 13.0, false},
		{"at tolerance above", 13.01, 0, 0, 13.0, false},
		{"at tolerance below", 12.99, 0, 0, 13.0, false},
		{"over tolerance", 13.02, 0, 0, 13.0, true},
		{"under tolerance", 12.98, 0, 0, 13.0, true},
		{"film and extra added", 11.15, 0.85, 1.0, 13.0, false},
		{"missing film", 12.15, 0, 0, 13.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Validate(tt.realized, tt.film, tt.extra, tt.target, "Wall")
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeValidation) {
					t.Fatalf("err = %v, want VALIDATION", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(out.Delta) > Tolerance+1e-12 {
				t.Errorf("Delta = %g", out.Delta)
			}
			if out.Target != tt.target {
				t.Errorf("Target = %g", out.Target)
			}
		})
	}
}

func TestValidateNamesSurface(t *testing.T) {
	out, err := Validate(13.02, 0, 0, 13.0, "Rim Joist East")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), `"Rim Joist East"`) {
		t.Errorf("error %q should name the surface", err)
	}
	if math.Abs(out.Delta-0.02) > 1e-9 {
		t.Errorf("Delta = %g, want 0.02", out.Delta)
	}
}

func TestValidateRejectsBadInputs(t *testing.T) {
	tests := []struct {
		name                          string
		realized, film, extra, target float64
	}{
		{"negative realized", -1, 0, 0, 13},
		{"negative film", 13, -0.1, 0, 13},
		{"negative extra", 13, 0, -2, 13},
		{"nan realized", math.NaN(), 0, 0, 13},
		{"zero target", 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.realized, tt.film, tt.extra, tt.target, "Wall")
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("err = %v, want INVALID_INPUT", err)
			}
		})
	}
}
