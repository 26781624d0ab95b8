package boxblur

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
)

// encodeImg encodes an image to a destination of type io.Writer. When the
// destination is a file the encoder is picked from the file extension,
// otherwise the image is encoded as JPEG.
func encodeImg(w io.Writer, img image.Image) error {
	if f, ok := w.(*os.File); ok {
		switch filepath.Ext(f.Name()) {
		case "", ".jpg", ".jpeg":
			return jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
		case ".png":
			return png.Encode(w, img)
		case ".bmp":
			return bmp.Encode(w, img)
		default:
			return errors.New("unsupported image format")
		}
	}
	return jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
}

// imgToNRGBA converts any image type to *image.NRGBA with min-point at (0, 0).
func imgToNRGBA(img image.Image) *image.NRGBA {
	srcBounds := img.Bounds()
	if srcBounds.Min.X == 0 && srcBounds.Min.Y == 0 {
		if src0, ok := img.(*image.NRGBA); ok {
			return src0
		}
	}

	dstBounds := srcBounds.Sub(srcBounds.Min)
	dst := image.NewNRGBA(dstBounds)
	dstW := dstBounds.Dx()
	dstH := dstBounds.Dy()

	for dstY := 0; dstY < dstH; dstY++ {
		di := dst.PixOffset(0, dstY)
		for dstX := 0; dstX < dstW; dstX++ {
			c := color.NRGBAModel.Convert(img.At(srcBounds.Min.X+dstX, srcBounds.Min.Y+dstY)).(color.NRGBA)
			dst.Pix[di+0] = c.R
			dst.Pix[di+1] = c.G
			dst.Pix[di+2] = c.B
			dst.Pix[di+3] = c.A
			di += 4
		}
	}
	return dst
}

// frameFromRGB converts an RGB(A) image to a full-resolution planar frame.
// Sources carrying transparency keep it in a fourth plane.
func frameFromRGB(src *image.NRGBA) *Frame {
	format := YUV444
	if hasAlpha(src) {
		format = YUVA444
	}
	f, _ := frameFromRGBFormat(src, format)
	return f
}

// frameFromRGBFormat converts an RGB(A) image into a planar frame of the
// requested format. The chroma channels are computed at full resolution and,
// for subsampled formats, scaled down onto the chroma grid.
func frameFromRGBFormat(src *image.NRGBA, format PixelFormat) (*Frame, error) {
	d := format.desc()
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	if format == Gray {
		f := NewFrame(Gray, w, h)
		for y := 0; y < h; y++ {
			si := src.PixOffset(0, y)
			di := y * f.Linesize[planeY]
			for x := 0; x < w; x++ {
				yc, _, _ := color.RGBToYCbCr(src.Pix[si], src.Pix[si+1], src.Pix[si+2])
				f.Data[planeY][di+x] = yc
				si += 4
			}
		}
		return f, nil
	}

	f := NewFrame(format, w, h)
	cb := image.NewGray(image.Rect(0, 0, w, h))
	cr := image.NewGray(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		si := src.PixOffset(0, y)
		di := y * f.Linesize[planeY]
		ci := y * cb.Stride
		for x := 0; x < w; x++ {
			yc, cbc, crc := color.RGBToYCbCr(src.Pix[si], src.Pix[si+1], src.Pix[si+2])
			f.Data[planeY][di+x] = yc
			cb.Pix[ci+x] = cbc
			cr.Pix[ci+x] = crc
			if d.alpha {
				f.Data[planeA][y*f.Linesize[planeA]+x] = src.Pix[si+3]
			}
			si += 4
		}
	}

	cw := ceilShift(w, d.hsub)
	ch := ceilShift(h, d.vsub)
	if cw == w && ch == h {
		copyGray(f.Data[planeU], f.Linesize[planeU], cb)
		copyGray(f.Data[planeV], f.Linesize[planeV], cr)
		return f, nil
	}

	// Subsampled target: scale the chroma channels down onto the chroma grid.
	crect := image.Rect(0, 0, cw, ch)
	scaled := image.NewGray(crect)
	xdraw.BiLinear.Scale(scaled, crect, cb, cb.Rect, xdraw.Src, nil)
	copyGray(f.Data[planeU], f.Linesize[planeU], scaled)
	xdraw.BiLinear.Scale(scaled, crect, cr, cr.Rect, xdraw.Src, nil)
	copyGray(f.Data[planeV], f.Linesize[planeV], scaled)

	return f, nil
}

// copyGray copies a grayscale image into a strided plane buffer.
func copyGray(dst []byte, linesize int, src *image.Gray) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	for y := 0; y < h; y++ {
		copy(dst[y*linesize:y*linesize+w], src.Pix[y*src.Stride:y*src.Stride+w])
	}
}

// hasAlpha reports whether any pixel of the image is not fully opaque.
func hasAlpha(img *image.NRGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0xff {
			return true
		}
	}
	return false
}
