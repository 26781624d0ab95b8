package boxblur

import (
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/esimov/boxblur/utils"
)

// Processor options
type Processor struct {
	LumaRadius   string
	LumaPower    int
	ChromaRadius string
	ChromaPower  int
	AlphaRadius  string
	AlphaPower   int
	PixelFormat  string
	Scale        int
	FaceAngle    float64
	Classifier   string
	FaceDetect   bool
	Spinner      *utils.Spinner
}

// NewProcessor returns a processor preloaded with the default blur options:
// the luma blur applied twice with a radius of two pixels and the chroma and
// alpha components following the luma settings.
func NewProcessor() *Processor {
	return &Processor{
		LumaRadius:  DefaultLumaRadius,
		LumaPower:   DefaultLumaPower,
		ChromaPower: PowerUnset,
		AlphaPower:  PowerUnset,
	}
}

// params converts the processor options into the filter parameter set.
func (p *Processor) params() FilterParams {
	return FilterParams{
		Luma:   FilterParam{Radius: p.LumaRadius, Power: p.LumaPower},
		Chroma: FilterParam{Radius: p.ChromaRadius, Power: p.ChromaPower},
		Alpha:  FilterParam{Radius: p.AlphaRadius, Power: p.AlphaPower},
	}
}

// Process decodes the source image, runs the blur over its planes and
// encodes the result into an io.Writer interface. We are using the io
// package, since we can provide different input and output types, as long as
// they implement the io.Reader and io.Writer interface.
//
// When the face detection option is activated only the detected face
// regions are blurred, which turns the filter into a privacy blur.
func (p *Processor) Process(r io.Reader, w io.Writer) error {
	filter, err := NewFilter(p.params())
	if err != nil {
		return err
	}

	var detector *FaceDetector
	if p.FaceDetect {
		detector, err = NewFaceDetector(p.Classifier, p.FaceAngle)
		if err != nil {
			return err
		}
	}

	src, _, err := image.Decode(r)
	if err != nil {
		return err
	}
	src = alignToChromaGrid(src)

	frame, err := p.sourceFrame(src)
	if err != nil {
		return err
	}

	var out *Frame
	if detector != nil {
		out = frame.Clone()
		for _, region := range detector.DetectFaces(frame) {
			if err := filter.BlurRegion(out, region); err != nil {
				return err
			}
		}
	} else {
		out, err = filter.BlurFrame(frame)
		if err != nil {
			return err
		}
	}

	res, err := out.ToImage()
	if err != nil {
		return err
	}

	// Optional output rescale, typically used to produce low resolution
	// blurred placeholders in one step.
	if p.Scale > 0 && p.Scale < 100 {
		res = imaging.Resize(res, res.Bounds().Dx()*p.Scale/100, 0, imaging.Lanczos)
	}
	return encodeImg(w, res)
}

// sourceFrame converts the decoded image into a planar frame. Planar sources
// borrow their plane storage as-is; when a pixel format is forced the image
// goes through an RGB round trip onto the requested plane layout, with the
// chroma channels scaled down onto the subsampling grid of the format.
func (p *Processor) sourceFrame(src image.Image) (*Frame, error) {
	if p.PixelFormat == "" {
		return FrameFromImage(src)
	}
	format, ok := ParseFormat(p.PixelFormat)
	if !ok {
		return nil, errors.Errorf("unknown pixel format %q", p.PixelFormat)
	}
	return frameFromRGBFormat(imgToNRGBA(src), format)
}

// alignToChromaGrid crops subsampled planar images down to their chroma
// grid, dropping at most a single row or column. The blur covers chroma
// planes on the floor grid, so unaligned frames would keep a sliver of the
// source visible along the edges.
func alignToChromaGrid(img image.Image) image.Image {
	switch src := img.(type) {
	case *image.YCbCr:
		format, ok := subsampleFormat(src.SubsampleRatio, false)
		if !ok {
			return img
		}
		if r, ok := alignedRect(src.Bounds(), format); ok {
			return src.SubImage(r)
		}
	case *image.NYCbCrA:
		format, ok := subsampleFormat(src.SubsampleRatio, true)
		if !ok {
			return img
		}
		if r, ok := alignedRect(src.Bounds(), format); ok {
			return src.SubImage(r)
		}
	}
	return img
}

func alignedRect(b image.Rectangle, format PixelFormat) (image.Rectangle, bool) {
	d := format.desc()
	w := (b.Dx() >> d.hsub) << d.hsub
	h := (b.Dy() >> d.vsub) << d.vsub
	if w == b.Dx() && h == b.Dy() {
		return b, false
	}
	return image.Rect(b.Min.X, b.Min.Y, b.Min.X+w, b.Min.Y+h), true
}
