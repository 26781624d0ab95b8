package boxblur

// blur computes a single moving-average pass over a strided run of samples.
// Each output sample is the rounded average of the 2*radius+1 source samples
// centered on it. A naive implementation would re-sum the whole window for
// every output sample, costing O(len*radius); since two consecutive windows
// differ only by the sample entering on one side and the sample leaving on
// the other, the running sum is updated in O(1) per output sample instead.
//
// Near the edges the window is folded back over the run, with the edge
// samples counted twice while the sum is primed. The same convention is kept
// at the trailing edge, so every output position averages exactly
// 2*radius+1 contributions.
//
// The normalization avoids a division per sample by multiplying with a
// fixed-point reciprocal of the window size (16 fractional bits) and adding
// half before truncating.
func blur(dst []byte, dstStep int, src []byte, srcStep int, length, radius int) {
	winSize := radius*2 + 1
	inv := ((1 << 16) + winSize/2) / winSize

	sum := 0
	for x := 0; x < radius; x++ {
		sum += int(src[x*srcStep]) << 1
	}
	sum += int(src[radius*srcStep])

	x := 0
	for ; x <= radius; x++ {
		sum += int(src[(radius+x)*srcStep]) - int(src[(radius-x)*srcStep])
		dst[x*dstStep] = byte((sum*inv + (1 << 15)) >> 16)
	}
	for ; x < length-radius; x++ {
		sum += int(src[(radius+x)*srcStep]) - int(src[(x-radius-1)*srcStep])
		dst[x*dstStep] = byte((sum*inv + (1 << 15)) >> 16)
	}
	for ; x < length; x++ {
		sum += int(src[(2*length-radius-x-1)*srcStep]) - int(src[(x-radius-1)*srcStep])
		dst[x*dstStep] = byte((sum*inv + (1 << 15)) >> 16)
	}
}

// blurPower applies blur power times in sequence over the same run,
// ping-ponging between the two scratch buffers so that no iteration reads
// samples an earlier iteration already overwrote. The caller's source is
// never mutated: the first iteration always lands in scratch space and only
// the last write touches dst. With a zero radius or power the run is copied
// through unchanged.
func blurPower(dst []byte, dstStep int, src []byte, srcStep int, length, radius, power int, temp [2][]byte) {
	a, b := temp[0], temp[1]

	if radius == 0 || power == 0 {
		for i := 0; i < length; i++ {
			dst[i*dstStep] = src[i*srcStep]
		}
		return
	}

	blur(a, 1, src, srcStep, length, radius)
	for ; power > 2; power-- {
		blur(b, 1, a, 1, length, radius)
		a, b = b, a
	}
	if power > 1 {
		blur(dst, dstStep, a, 1, length, radius)
	} else {
		for i := 0; i < length; i++ {
			dst[i*dstStep] = a[i]
		}
	}
}

// hblur runs the blur across every row of a plane.
func hblur(dst []byte, dstLinesize int, src []byte, srcLinesize int, w, h, radius, power int, temp [2][]byte) {
	if radius == 0 && sameSlice(dst, src) {
		return
	}
	for y := 0; y < h; y++ {
		blurPower(dst[y*dstLinesize:], 1, src[y*srcLinesize:], 1, w, radius, power, temp)
	}
}

// vblur runs the blur down every column of a plane. It is safe to call with
// dst aliasing src: each column goes through the scratch buffers before any
// of its samples are written back.
func vblur(dst []byte, dstLinesize int, src []byte, srcLinesize int, w, h, radius, power int, temp [2][]byte) {
	if radius == 0 && sameSlice(dst, src) {
		return
	}
	for x := 0; x < w; x++ {
		blurPower(dst[x:], dstLinesize, src[x:], srcLinesize, h, radius, power, temp)
	}
}

// sameSlice reports whether two slices share the same backing position.
func sameSlice(a, b []byte) bool {
	return len(a) > 0 && len(b) > 0 && &a[0] == &b[0]
}
