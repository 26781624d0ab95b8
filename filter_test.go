package boxblur

import (
	"bytes"
	"errors"
	"image"
	"testing"
)

// testFrame allocates a frame and fills every plane with random samples.
func testFrame(t *testing.T, format PixelFormat, w, h int, seed int64) *Frame {
	t.Helper()

	f := NewFrame(format, w, h)
	for p := 0; p < format.desc().planes; p++ {
		copy(f.Data[p], randomPlane(len(f.Data[p]), 1, seed+int64(p)))
	}
	return f
}

// planeRef computes the expected 2-D blur of a frame plane.
func planeRef(f *Frame, p, radius, power int) []byte {
	w, h := f.PlaneWidth(p), f.PlaneHeight(p)
	plane := make([]byte, w*h)
	for y := 0; y < h; y++ {
		copy(plane[y*w:], f.Data[p][y*f.Linesize[p]:y*f.Linesize[p]+w])
	}
	for i := 0; i < power; i++ {
		tmp := make([]byte, w*h)
		for y := 0; y < h; y++ {
			copy(tmp[y*w:], refBlur(plane[y*w:y*w+w], radius))
		}
		plane = tmp
	}
	for i := 0; i < power; i++ {
		col := make([]byte, h)
		for x := 0; x < w; x++ {
			for y := 0; y < h; y++ {
				col[y] = plane[y*w+x]
			}
			for y, v := range refBlur(col, radius) {
				plane[y*w+x] = v
			}
		}
	}
	return plane
}

// planeBytes extracts the blurred extent of a plane as a contiguous buffer.
func planeBytes(f *Frame, p int) []byte {
	w, h := f.PlaneWidth(p), f.PlaneHeight(p)
	out := make([]byte, w*h)
	for y := 0; y < h; y++ {
		copy(out[y*w:], f.Data[p][y*f.Linesize[p]:y*f.Linesize[p]+w])
	}
	return out
}

func TestFilter_BlurFrameMatchesReference(t *testing.T) {
	src := testFrame(t, YUV420, 64, 48, 1)

	f, err := NewFilter(FilterParams{
		Luma:   FilterParam{Radius: "3", Power: 2},
		Chroma: FilterParam{Radius: "2", Power: 1},
		Alpha:  FilterParam{Power: PowerUnset},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := f.BlurFrame(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantRadius := [maxPlanes]int{3, 2, 2, 3}
	wantPower := [maxPlanes]int{2, 1, 1, 2}
	for p := 0; p < 3; p++ {
		if got, want := planeBytes(out, p), planeRef(src, p, wantRadius[p], wantPower[p]); !bytes.Equal(got, want) {
			t.Errorf("plane %d diverges from the reference blur", p)
		}
	}
}

func TestFilter_AlphaPlane(t *testing.T) {
	src := testFrame(t, YUVA444, 32, 32, 2)

	f, err := NewFilter(FilterParams{
		Luma:  FilterParam{Radius: "2", Power: 1},
		Alpha: FilterParam{Radius: "4", Power: 2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := f.BlurFrame(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got, want := planeBytes(out, planeA), planeRef(src, planeA, 4, 2); !bytes.Equal(got, want) {
		t.Errorf("alpha plane diverges from the reference blur")
	}
	if got, want := planeBytes(out, planeY), planeRef(src, planeY, 2, 1); !bytes.Equal(got, want) {
		t.Errorf("luma plane diverges from the reference blur")
	}
}

func TestFilter_Identity(t *testing.T) {
	src := testFrame(t, YUV444, 24, 24, 3)

	f, err := NewFilter(FilterParams{Luma: FilterParam{Radius: "0", Power: 2}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := f.BlurFrame(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for p := 0; p < 3; p++ {
		if !bytes.Equal(planeBytes(out, p), planeBytes(src, p)) {
			t.Errorf("plane %d expected to pass through unchanged at radius 0", p)
		}
	}
}

func TestFilter_SourceUntouched(t *testing.T) {
	src := testFrame(t, YUV444, 24, 24, 4)
	var orig [maxPlanes][]byte
	for p := 0; p < 3; p++ {
		orig[p] = append([]byte(nil), src.Data[p]...)
	}

	f, err := NewFilter(FilterParams{Luma: FilterParam{Radius: "3", Power: 2}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.BlurFrame(src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for p := 0; p < 3; p++ {
		if !bytes.Equal(src.Data[p], orig[p]) {
			t.Errorf("plane %d of the source frame was mutated", p)
		}
	}
}

func TestFilter_InvalidRadiusNoOutput(t *testing.T) {
	src := testFrame(t, YUV444, 16, 16, 5)

	f, err := NewFilter(FilterParams{Luma: FilterParam{Radius: "w", Power: 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := f.BlurFrame(src)
	if !errors.Is(err, ErrInvalidRadius) {
		t.Errorf("expected ErrInvalidRadius, got %v", err)
	}
	if out != nil {
		t.Errorf("no output frame expected on a configuration error")
	}
}

func TestFilter_RejectsWindowLargerThanPlane(t *testing.T) {
	f, err := NewFilter(FilterParams{Luma: FilterParam{Radius: "2", Power: 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := f.BlurFrame(testFrame(t, Gray, 4, 4, 8))
	if !errors.Is(err, ErrInvalidRadius) {
		t.Errorf("expected ErrInvalidRadius for a 5 sample window on a 4x4 frame, got %v", err)
	}
	if out != nil {
		t.Errorf("no output frame expected on a configuration error")
	}

	f, err = NewFilter(FilterParams{Luma: FilterParam{Radius: "1", Power: 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.BlurFrame(testFrame(t, Gray, 4, 4, 8)); err != nil {
		t.Errorf("the largest fitting window expected to blur a 4x4 frame: %v", err)
	}
}

func TestFilter_BlurRegionCapsRadius(t *testing.T) {
	src := testFrame(t, Gray, 32, 32, 9)
	frame := src.Clone()

	// Radius 8 is valid for the frame but its window cannot fit the 4x4
	// region, so the region pass has to cap it.
	f, err := NewFilter(FilterParams{Luma: FilterParam{Radius: "8", Power: 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.BlurRegion(frame, image.Rect(0, 0, 4, 4)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if x < 4 && y < 4 {
				continue
			}
			if frame.Data[planeY][y*frame.Linesize[planeY]+x] != src.Data[planeY][y*src.Linesize[planeY]+x] {
				t.Fatalf("sample (%d,%d) outside the region was modified", x, y)
			}
		}
	}
}

func TestFilter_ReconfiguresOnGeometryChange(t *testing.T) {
	f, err := NewFilter(FilterParams{Luma: FilterParam{Radius: "min(w,h)/8", Power: 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, size := range []int{64, 16} {
		src := testFrame(t, Gray, size, size, int64(size))
		out, err := f.BlurFrame(src)
		if err != nil {
			t.Fatalf("size %d: unexpected error: %v", size, err)
		}
		if got, want := planeBytes(out, planeY), planeRef(src, planeY, size/8, 1); !bytes.Equal(got, want) {
			t.Errorf("size %d: radius expected to be re-resolved to %d", size, size/8)
		}
	}
}

func TestFilter_ApplyInPlace(t *testing.T) {
	src := testFrame(t, YUV444, 32, 24, 6)
	want := planeRef(src, planeY, 3, 1)

	f, err := NewFilter(FilterParams{Luma: FilterParam{Radius: "3", Power: 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.Apply(src, src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bytes.Equal(planeBytes(src, planeY), want) {
		t.Errorf("in-place blur diverges from the reference blur")
	}
}

func TestFilter_MismatchedFrames(t *testing.T) {
	f, err := NewFilter(FilterParams{Luma: FilterParam{Radius: "1", Power: 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a := NewFrame(YUV444, 32, 32)
	b := NewFrame(YUV444, 16, 32)
	if err := f.Apply(b, a); err == nil {
		t.Errorf("mismatched frame geometry expected to be rejected")
	}
}

func TestFilter_BlurRegion(t *testing.T) {
	src := testFrame(t, YUV420, 64, 64, 7)
	frame := src.Clone()

	f, err := NewFilter(FilterParams{Luma: FilterParam{Radius: "4", Power: 2}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	region := image.Rect(16, 16, 48, 48)
	if err := f.BlurRegion(frame, region); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	changed := false
	for p := 0; p < 3; p++ {
		hsub, vsub := 0, 0
		if p != planeY {
			hsub, vsub = 1, 1
		}
		pw, ph := frame.PlaneWidth(p), frame.PlaneHeight(p)
		rx0, ry0 := region.Min.X>>hsub, region.Min.Y>>vsub
		rx1, ry1 := region.Max.X>>hsub, region.Max.Y>>vsub

		for y := 0; y < ph; y++ {
			for x := 0; x < pw; x++ {
				got := frame.Data[p][y*frame.Linesize[p]+x]
				was := src.Data[p][y*src.Linesize[p]+x]
				inside := x >= rx0 && x < rx1 && y >= ry0 && y < ry1
				if !inside && got != was {
					t.Fatalf("plane %d sample (%d,%d) outside the region was modified", p, x, y)
				}
				if inside && got != was {
					changed = true
				}
			}
		}
	}
	if !changed {
		t.Errorf("the region expected to be blurred")
	}
}
