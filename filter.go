package boxblur

import (
	"image"

	"github.com/pkg/errors"

	"github.com/esimov/boxblur/utils"
)

// Filter applies the configured box blur to planar frames. The per-plane
// radii and the scratch buffers are derived from the frame geometry on the
// first frame and kept until the geometry changes, so the per-frame path
// allocates nothing but the output frame.
//
// A Filter is not safe for concurrent use: the two scratch buffers are
// shared by every row and column pass. Run one Filter per goroutine instead.
type Filter struct {
	params FilterParams

	// geometry session state
	width  int
	height int
	format PixelFormat
	radius [maxPlanes]int
	power  [maxPlanes]int
	temp   [2][]byte
}

// NewFilter validates the blur parameters and fills the missing chroma and
// alpha settings from luma. The radius expressions are only evaluated once
// the first frame reveals the geometry.
func NewFilter(params FilterParams) (*Filter, error) {
	params, err := params.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Filter{params: params, width: -1, height: -1}, nil
}

// configure resolves the radius expressions and sizes the scratch buffers
// for a new frame geometry.
func (f *Filter) configure(w, h int, format PixelFormat) error {
	radius, power, err := f.params.resolve(newGeometry(w, h, format))
	if err != nil {
		return err
	}
	f.radius, f.power = radius, power

	if size := utils.Max(w, h); len(f.temp[0]) < size {
		f.temp[0] = make([]byte, size)
		f.temp[1] = make([]byte, size)
	}
	f.width, f.height, f.format = w, h, format
	return nil
}

// Apply blurs every plane of src into dst. Source and destination must share
// the same geometry; dst may be the same frame as src, in which case the
// planes are blurred in place. The horizontal pass of a plane runs from src
// into dst and the vertical pass then reruns over dst in place, which is
// what makes the two 1-D passes compose into a true 2-D blur.
func (f *Filter) Apply(dst, src *Frame) error {
	if src.Width != dst.Width || src.Height != dst.Height || src.Format != dst.Format {
		return errors.Errorf("mismatched frame geometry: %dx%d (%s) vs %dx%d (%s)",
			src.Width, src.Height, src.Format, dst.Width, dst.Height, dst.Format)
	}
	if src.Width != f.width || src.Height != f.height || src.Format != f.format {
		if err := f.configure(src.Width, src.Height, src.Format); err != nil {
			return err
		}
	}

	planes := src.Format.desc().planes
	for p := 0; p < planes; p++ {
		hblur(dst.Data[p], dst.Linesize[p], src.Data[p], src.Linesize[p],
			src.PlaneWidth(p), src.PlaneHeight(p), f.radius[p], f.power[p], f.temp)
	}
	for p := 0; p < planes; p++ {
		vblur(dst.Data[p], dst.Linesize[p], dst.Data[p], dst.Linesize[p],
			src.PlaneWidth(p), src.PlaneHeight(p), f.radius[p], f.power[p], f.temp)
	}
	return nil
}

// BlurFrame allocates an output frame of identical geometry, blurs src into
// it and returns it. The source frame is left untouched.
func (f *Filter) BlurFrame(src *Frame) (*Frame, error) {
	dst := NewFrame(src.Format, src.Width, src.Height)

	// Carry over any plane margin the blur does not cover (the trailing
	// chroma column/row of frames not aligned to the subsampling grid).
	for p := 0; p < src.Format.desc().planes; p++ {
		copyPlaneTail(dst, src, p)
	}

	if err := f.Apply(dst, src); err != nil {
		return nil, err
	}
	return dst, nil
}

// BlurRegion blurs only the given rectangle of the frame, in place. Every
// plane view inside the rectangle shares the linesize of its parent plane,
// so the pass never reads or writes outside the region. The radius of each
// plane is capped to what the region can hold.
func (f *Filter) BlurRegion(frame *Frame, region image.Rectangle) error {
	if frame.Width != f.width || frame.Height != f.height || frame.Format != f.format {
		if err := f.configure(frame.Width, frame.Height, frame.Format); err != nil {
			return err
		}
	}
	region = region.Intersect(image.Rect(0, 0, frame.Width, frame.Height))
	if region.Empty() {
		return nil
	}

	d := frame.Format.desc()
	for p := 0; p < d.planes; p++ {
		hsub, vsub := 0, 0
		if p == planeU || p == planeV {
			hsub, vsub = d.hsub, d.vsub
		}
		x0, y0 := region.Min.X>>hsub, region.Min.Y>>vsub
		w, h := region.Dx()>>hsub, region.Dy()>>vsub
		if w < 1 || h < 1 {
			continue
		}

		// The window of 2*radius+1 samples must fit inside the region.
		radius := utils.Min(f.radius[p], (utils.Min(w, h)-1)/2)
		view := frame.Data[p][y0*frame.Linesize[p]+x0:]

		hblur(view, frame.Linesize[p], view, frame.Linesize[p], w, h, radius, f.power[p], f.temp)
		vblur(view, frame.Linesize[p], view, frame.Linesize[p], w, h, radius, f.power[p], f.temp)
	}
	return nil
}

// copyPlaneTail copies the ceil/floor margin of a subsampled plane, which
// the blur drivers leave untouched.
func copyPlaneTail(dst, src *Frame, p int) {
	d := src.Format.desc()
	if p != planeU && p != planeV {
		return
	}
	pw, ph := src.PlaneWidth(p), src.PlaneHeight(p)
	cw, ch := ceilShift(src.Width, d.hsub), ceilShift(src.Height, d.vsub)
	if cw == pw && ch == ph {
		return
	}
	for y := 0; y < ch; y++ {
		si, di := y*src.Linesize[p], y*dst.Linesize[p]
		if y >= ph {
			copy(dst.Data[p][di:di+cw], src.Data[p][si:si+cw])
			continue
		}
		if cw > pw {
			dst.Data[p][di+pw] = src.Data[p][si+pw]
		}
	}
}
