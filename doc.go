/*
Package boxblur implements a separable, multi-pass box blur for planar 8-bit
image frames. The blur runs in O(width*height) time independently of the
radius by sliding a running sum along each row and column, and it can be
applied multiple times in sequence (the "power") to approximate a smoother,
Gaussian-like kernel.

Each of the up to four planes of a frame (luma, the two chroma planes and an
optional alpha plane) is blurred with its own radius and power. The radii are
given as expressions evaluated against the frame geometry, so a single
configuration adapts to any input size:

	f, err := boxblur.NewFilter(boxblur.FilterParams{
		Luma: boxblur.FilterParam{Radius: "min(w,h)/20", Power: 2},
	})
	if err != nil {
		log.Fatal(err)
	}
	out, err := f.BlurFrame(frame)

The package also provides a command line interface, supporting various flags
for the different blur options. To check the supported commands type:

	$ boxblur --help

In case you wish to integrate the API in a self constructed environment here
is a simple example:

	package main

	import (
		"fmt"
		"github.com/esimov/boxblur"
	)

	func main() {
		p := boxblur.NewProcessor()

		if err := p.Process(in, out); err != nil {
			fmt.Printf("Error blurring image: %s", err.Error())
		}
	}
*/
package boxblur
