package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/esimov/boxblur"
	"github.com/esimov/boxblur/utils"
)

const helpBanner = `
┌┐ ┌─┐─┐ ┬┌┐ ┬  ┬ ┬┬─┐
├┴┐│ │┌┴┬┘├┴┐│  │ │├┬┘
└─┘└─┘┴ └─└─┘┴─┘└─┘┴└─

Separable multi-pass box blur for images.
    Version: %s

The radius flags accept expressions evaluated against the frame geometry,
using the variables w, h, cw, ch, hsub and vsub (e.g. -lr "min(w,h)/20").
`

// pipeName is the file name that indicates stdin/stdout is being used.
const pipeName = "-"

// Version indicates the current build version.
var Version string

var (
	// Flags
	source       = flag.String("in", pipeName, "Source")
	destination  = flag.String("out", pipeName, "Destination")
	lumaRadius   = flag.String("lr", boxblur.DefaultLumaRadius, "Radius of the luma blurring box")
	lumaPower    = flag.Int("lp", boxblur.DefaultLumaPower, "How many times the blur is applied to luma")
	chromaRadius = flag.String("cr", "", "Radius of the chroma blurring box (defaults to luma)")
	chromaPower  = flag.Int("cp", boxblur.PowerUnset, "How many times the blur is applied to chroma (defaults to luma)")
	alphaRadius  = flag.String("ar", "", "Radius of the alpha blurring box (defaults to luma)")
	alphaPower   = flag.Int("ap", boxblur.PowerUnset, "How many times the blur is applied to alpha (defaults to luma)")
	pixelFmt     = flag.String("pf", "", "Force a planar pixel format for the blur (e.g. yuv420p, gray8)")
	scale        = flag.Int("scale", 0, "Rescale the blurred output to the given percentage")
	faceDetect   = flag.Bool("face", false, "Blur only the detected face regions")
	faceAngle    = flag.Float64("angle", 0.0, "Plane rotated faces angle")
	cascade      = flag.String("cc", "", "Cascade classifier")
	workers      = flag.Int("conc", runtime.NumCPU(), "Number of files to process concurrently")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, helpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *faceDetect && len(*cascade) == 0 {
		log.Fatal(utils.DecorateText("Please specify a face classifier in case you are using the -face flag!", utils.ErrorMessage))
	}

	proc := &boxblur.Processor{
		LumaRadius:   *lumaRadius,
		LumaPower:    *lumaPower,
		ChromaRadius: *chromaRadius,
		ChromaPower:  *chromaPower,
		AlphaRadius:  *alphaRadius,
		AlphaPower:   *alphaPower,
		PixelFormat:  *pixelFmt,
		Scale:        *scale,
		FaceDetect:   *faceDetect,
		FaceAngle:    *faceAngle,
		Classifier:   *cascade,
	}

	proc.Execute(&boxblur.Ops{
		Src:      *source,
		Dst:      *destination,
		PipeName: pipeName,
		Workers:  *workers,
	})
}
