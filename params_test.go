package boxblur

import (
	"errors"
	"strings"
	"testing"
)

func TestParams_MissingLumaRadius(t *testing.T) {
	_, err := NewFilter(FilterParams{})
	if !errors.Is(err, ErrMissingLumaRadius) {
		t.Errorf("expected ErrMissingLumaRadius, got %v", err)
	}
}

func TestParams_ChromaAndAlphaDefaultToLuma(t *testing.T) {
	params, err := FilterParams{
		Luma:   FilterParam{Radius: "2", Power: 3},
		Chroma: FilterParam{Power: PowerUnset},
		Alpha:  FilterParam{Power: PowerUnset},
	}.withDefaults()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	radius, power, err := params.resolve(newGeometry(64, 48, YUV420))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for p := planeY; p < maxPlanes; p++ {
		if radius[p] != 2 {
			t.Errorf("plane %d radius expected to default to 2, got %d", p, radius[p])
		}
		if power[p] != 3 {
			t.Errorf("plane %d power expected to default to 3, got %d", p, power[p])
		}
	}
}

func TestParams_GeometryExpressions(t *testing.T) {
	params, err := FilterParams{
		Luma:   FilterParam{Radius: "min(w,h)/4", Power: 1},
		Chroma: FilterParam{Radius: "cw/8", Power: 2},
		Alpha:  FilterParam{Radius: "hsub+vsub", Power: 1},
	}.withDefaults()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	radius, power, err := params.resolve(newGeometry(64, 48, YUV420))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if radius[planeY] != 12 {
		t.Errorf("luma radius expected to be min(64,48)/4 = 12, got %d", radius[planeY])
	}
	if radius[planeU] != 4 || radius[planeV] != 4 {
		t.Errorf("chroma radius expected to be cw/8 = 4, got %d/%d", radius[planeU], radius[planeV])
	}
	if radius[planeA] != 4 {
		t.Errorf("alpha radius expected to be hsub+vsub = 4, got %d", radius[planeA])
	}
	if power[planeU] != 2 || power[planeV] != 2 {
		t.Errorf("chroma power expected to be 2, got %d/%d", power[planeU], power[planeV])
	}
}

func TestParams_EvaluationErrorNamesExpression(t *testing.T) {
	params, err := FilterParams{
		Luma: FilterParam{Radius: "undefined_variable", Power: 1},
	}.withDefaults()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, _, err = params.resolve(newGeometry(64, 48, YUV444))
	if err == nil {
		t.Fatal("expected an evaluation error")
	}
	if !strings.Contains(err.Error(), "undefined_variable") {
		t.Errorf("error expected to name the offending expression, got: %v", err)
	}
}

func TestParams_InvalidRadiusRejected(t *testing.T) {
	params, err := FilterParams{
		Luma: FilterParam{Radius: "w", Power: 1},
	}.withDefaults()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, _, err = params.resolve(newGeometry(32, 32, YUV444))
	if !errors.Is(err, ErrInvalidRadius) {
		t.Errorf("expected ErrInvalidRadius, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "15") {
		t.Errorf("error expected to report the allowed maximum, got: %v", err)
	}
}

func TestParams_WindowMustFitPlane(t *testing.T) {
	// A window of 2*radius+1 samples needs at least that many samples per
	// row and column, so radius 2 is one too large for a 4x4 plane.
	params, err := FilterParams{
		Luma: FilterParam{Radius: "min(w,h)/2", Power: 1},
	}.withDefaults()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := params.resolve(newGeometry(4, 4, Gray)); !errors.Is(err, ErrInvalidRadius) {
		t.Errorf("expected ErrInvalidRadius for a window wider than the plane, got %v", err)
	}

	params, err = FilterParams{
		Luma: FilterParam{Radius: "1", Power: 1},
	}.withDefaults()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := params.resolve(newGeometry(4, 4, Gray)); err != nil {
		t.Errorf("a 3 sample window expected to fit a 4x4 plane: %v", err)
	}
}

func TestParams_ChromaValidatedAgainstChromaGeometry(t *testing.T) {
	// Radius 10 is fine for a 64x48 luma plane but too large for the
	// 16x12 chroma planes of a yuv410p frame.
	params, err := FilterParams{
		Luma: FilterParam{Radius: "10", Power: 1},
	}.withDefaults()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, err := params.resolve(newGeometry(64, 48, YUV444)); err != nil {
		t.Errorf("radius 10 expected to be valid for yuv444p: %v", err)
	}
	_, _, err = params.resolve(newGeometry(64, 48, YUV410))
	if !errors.Is(err, ErrInvalidRadius) {
		t.Errorf("expected ErrInvalidRadius for the subsampled chroma planes, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "chroma") {
		t.Errorf("error expected to name the chroma component, got: %v", err)
	}
}

func TestParams_NegativeRadiusRejected(t *testing.T) {
	params, err := FilterParams{
		Luma: FilterParam{Radius: "0-2", Power: 1},
	}.withDefaults()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, err := params.resolve(newGeometry(32, 32, YUV444)); !errors.Is(err, ErrInvalidRadius) {
		t.Errorf("expected ErrInvalidRadius, got %v", err)
	}
}
