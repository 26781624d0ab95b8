package boxblur

import (
	"image"

	"github.com/pkg/errors"
)

// Plane indices inside a frame.
const (
	planeY = iota
	planeU
	planeV
	planeA
	maxPlanes
)

// PixelFormat identifies a planar 8-bit pixel layout with up to 4 planes.
type PixelFormat int

// The supported pixel formats. The chroma planes are subsampled relative to
// the luma plane by the horizontal and vertical shift factors of the format.
const (
	YUV444 PixelFormat = iota
	YUV440
	YUV422
	YUV420
	YUV411
	YUV410
	YUVA444
	YUVA420
	Gray
)

// formatDesc describes the geometry of a pixel format: the log2 chroma
// subsampling shifts, the number of planes and the presence of alpha.
type formatDesc struct {
	name       string
	hsub, vsub int
	planes     int
	alpha      bool
}

var formatDescs = map[PixelFormat]formatDesc{
	YUV444:  {name: "yuv444p", hsub: 0, vsub: 0, planes: 3},
	YUV440:  {name: "yuv440p", hsub: 0, vsub: 1, planes: 3},
	YUV422:  {name: "yuv422p", hsub: 1, vsub: 0, planes: 3},
	YUV420:  {name: "yuv420p", hsub: 1, vsub: 1, planes: 3},
	YUV411:  {name: "yuv411p", hsub: 2, vsub: 0, planes: 3},
	YUV410:  {name: "yuv410p", hsub: 2, vsub: 2, planes: 3},
	YUVA444: {name: "yuva444p", hsub: 0, vsub: 0, planes: 4, alpha: true},
	YUVA420: {name: "yuva420p", hsub: 1, vsub: 1, planes: 4, alpha: true},
	Gray:    {name: "gray8", hsub: 0, vsub: 0, planes: 1},
}

func (f PixelFormat) String() string {
	if d, ok := formatDescs[f]; ok {
		return d.name
	}
	return "unknown"
}

// ParseFormat resolves a pixel format from its canonical name, e.g.
// "yuv420p" or "gray8".
func ParseFormat(name string) (PixelFormat, bool) {
	for f, d := range formatDescs {
		if d.name == name {
			return f, true
		}
	}
	return 0, false
}

// desc returns the format descriptor, falling back to YUV444 geometry for
// unknown values so that callers never index planes out of range.
func (f PixelFormat) desc() formatDesc {
	if d, ok := formatDescs[f]; ok {
		return d
	}
	return formatDescs[YUV444]
}

// Frame is a planar 8-bit image: up to four single-channel rectangular pixel
// grids sharing the same luma geometry. Each plane is addressed through its
// own linesize (the distance in bytes between the starts of two consecutive
// rows), which may exceed the plane width. Plane storage can be owned by the
// frame or borrowed from a decoded stdlib image; the filter never retains it
// beyond a single call.
type Frame struct {
	Format   PixelFormat
	Width    int
	Height   int
	Data     [maxPlanes][]byte
	Linesize [maxPlanes]int
}

// NewFrame allocates a frame of the given geometry. Chroma planes are sized
// on the ceil subsampling grid so that the frame can be wrapped into the
// stdlib image types without copying.
func NewFrame(format PixelFormat, w, h int) *Frame {
	d := format.desc()
	f := &Frame{Format: format, Width: w, Height: h}

	for p := 0; p < d.planes; p++ {
		pw, ph := w, h
		if p == planeU || p == planeV {
			pw = ceilShift(w, d.hsub)
			ph = ceilShift(h, d.vsub)
		}
		f.Data[p] = make([]byte, pw*ph)
		f.Linesize[p] = pw
	}
	return f
}

// Clone returns a deep copy of the frame with freshly allocated planes.
func (f *Frame) Clone() *Frame {
	d := f.Format.desc()
	out := NewFrame(f.Format, f.Width, f.Height)
	for p := 0; p < d.planes; p++ {
		pw, ph := f.Width, f.Height
		if p == planeU || p == planeV {
			pw = ceilShift(f.Width, d.hsub)
			ph = ceilShift(f.Height, d.vsub)
		}
		for y := 0; y < ph; y++ {
			copy(out.Data[p][y*out.Linesize[p]:y*out.Linesize[p]+pw],
				f.Data[p][y*f.Linesize[p]:y*f.Linesize[p]+pw])
		}
	}
	return out
}

// PlaneWidth returns the blurred extent of a plane. Chroma dimensions round
// down on the subsampling grid; a trailing fractional chroma column or row
// of an unaligned frame is carried through untouched.
func (f *Frame) PlaneWidth(p int) int {
	if p == planeU || p == planeV {
		return f.Width >> f.Format.desc().hsub
	}
	return f.Width
}

// PlaneHeight returns the blurred vertical extent of a plane.
func (f *Frame) PlaneHeight(p int) int {
	if p == planeU || p == planeV {
		return f.Height >> f.Format.desc().vsub
	}
	return f.Height
}

// ceilShift divides by 1<<shift, rounding up.
func ceilShift(v, shift int) int {
	return (v + (1 << shift) - 1) >> shift
}

// subsampleFormat maps the stdlib chroma subsampling ratios onto the planar
// formats of this package.
func subsampleFormat(r image.YCbCrSubsampleRatio, alpha bool) (PixelFormat, bool) {
	if alpha {
		switch r {
		case image.YCbCrSubsampleRatio444:
			return YUVA444, true
		case image.YCbCrSubsampleRatio420:
			return YUVA420, true
		}
		return 0, false
	}
	switch r {
	case image.YCbCrSubsampleRatio444:
		return YUV444, true
	case image.YCbCrSubsampleRatio440:
		return YUV440, true
	case image.YCbCrSubsampleRatio422:
		return YUV422, true
	case image.YCbCrSubsampleRatio420:
		return YUV420, true
	case image.YCbCrSubsampleRatio411:
		return YUV411, true
	}
	return 0, false
}

func subsampleRatio(f PixelFormat) image.YCbCrSubsampleRatio {
	switch f {
	case YUV440:
		return image.YCbCrSubsampleRatio440
	case YUV422:
		return image.YCbCrSubsampleRatio422
	case YUV420, YUVA420:
		return image.YCbCrSubsampleRatio420
	case YUV411:
		return image.YCbCrSubsampleRatio411
	default:
		return image.YCbCrSubsampleRatio444
	}
}

// FrameFromImage borrows the planes of a decoded stdlib image into a frame,
// without copying pixel data whenever the source is already planar. RGB(A)
// sources are first converted to a planar YUV frame through frameFromRGB.
func FrameFromImage(img image.Image) (*Frame, error) {
	switch src := img.(type) {
	case *image.YCbCr:
		format, ok := subsampleFormat(src.SubsampleRatio, false)
		if !ok {
			return nil, errors.Errorf("unsupported chroma subsampling ratio %v", src.SubsampleRatio)
		}
		b := src.Bounds()
		f := &Frame{Format: format, Width: b.Dx(), Height: b.Dy()}
		f.Data[planeY] = src.Y[src.YOffset(b.Min.X, b.Min.Y):]
		f.Data[planeU] = src.Cb[src.COffset(b.Min.X, b.Min.Y):]
		f.Data[planeV] = src.Cr[src.COffset(b.Min.X, b.Min.Y):]
		f.Linesize[planeY] = src.YStride
		f.Linesize[planeU] = src.CStride
		f.Linesize[planeV] = src.CStride
		return f, nil
	case *image.NYCbCrA:
		format, ok := subsampleFormat(src.SubsampleRatio, true)
		if !ok {
			return nil, errors.Errorf("unsupported chroma subsampling ratio %v", src.SubsampleRatio)
		}
		b := src.Bounds()
		f := &Frame{Format: format, Width: b.Dx(), Height: b.Dy()}
		f.Data[planeY] = src.Y[src.YOffset(b.Min.X, b.Min.Y):]
		f.Data[planeU] = src.Cb[src.COffset(b.Min.X, b.Min.Y):]
		f.Data[planeV] = src.Cr[src.COffset(b.Min.X, b.Min.Y):]
		f.Data[planeA] = src.A[src.AOffset(b.Min.X, b.Min.Y):]
		f.Linesize[planeY] = src.YStride
		f.Linesize[planeU] = src.CStride
		f.Linesize[planeV] = src.CStride
		f.Linesize[planeA] = src.AStride
		return f, nil
	case *image.Gray:
		b := src.Bounds()
		f := &Frame{Format: Gray, Width: b.Dx(), Height: b.Dy()}
		f.Data[planeY] = src.Pix[src.PixOffset(b.Min.X, b.Min.Y):]
		f.Linesize[planeY] = src.Stride
		return f, nil
	default:
		return frameFromRGB(imgToNRGBA(img)), nil
	}
}

// ToImage wraps the frame planes into the matching stdlib image type,
// sharing the underlying storage.
func (f *Frame) ToImage() (image.Image, error) {
	rect := image.Rect(0, 0, f.Width, f.Height)
	d := f.Format.desc()

	switch {
	case f.Format == Gray:
		return &image.Gray{Pix: f.Data[planeY], Stride: f.Linesize[planeY], Rect: rect}, nil
	case d.alpha:
		return &image.NYCbCrA{
			YCbCr: image.YCbCr{
				Y: f.Data[planeY], Cb: f.Data[planeU], Cr: f.Data[planeV],
				YStride: f.Linesize[planeY], CStride: f.Linesize[planeU],
				SubsampleRatio: subsampleRatio(f.Format), Rect: rect,
			},
			A:       f.Data[planeA],
			AStride: f.Linesize[planeA],
		}, nil
	case f.Format == YUV410:
		// The stdlib has no quarter/quarter chroma layout.
		return nil, errors.Errorf("cannot express %s as a stdlib image", f.Format)
	default:
		return &image.YCbCr{
			Y: f.Data[planeY], Cb: f.Data[planeU], Cr: f.Data[planeV],
			YStride: f.Linesize[planeY], CStride: f.Linesize[planeU],
			SubsampleRatio: subsampleRatio(f.Format), Rect: rect,
		}, nil
	}
}
