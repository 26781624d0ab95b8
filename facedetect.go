package boxblur

import (
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"
	"github.com/pkg/errors"

	"github.com/esimov/boxblur/utils"
)

// qualityThreshold is the minimum detection score a face cluster must reach
// before its region is blurred.
const qualityThreshold = 5.0

// FaceDetector locates faces on the luma plane of a frame so that only the
// detected regions get blurred. The pigo classifier runs directly on the
// grayscale luma samples, no extra conversion pass is needed.
type FaceDetector struct {
	classifier *pigo.Pigo
	angle      float64
}

// NewFaceDetector reads and unpacks a pigo binary cascade file. The unpacked
// classifier contains the number of cascade trees, the tree depth, the
// threshold and the prediction from the tree's leaf nodes.
func NewFaceDetector(cascade string, angle float64) (*FaceDetector, error) {
	data, err := os.ReadFile(cascade)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read the cascade file")
	}

	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, errors.Wrap(err, "error unpacking the cascade file")
	}
	return &FaceDetector{classifier: classifier, angle: angle}, nil
}

// DetectFaces runs the cascade over the luma plane and returns the clustered
// face regions in frame coordinates.
func (fd *FaceDetector) DetectFaces(frame *Frame) []image.Rectangle {
	cParams := pigo.CascadeParams{
		MinSize:     20,
		MaxSize:     utils.Max(frame.Width, frame.Height),
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: frame.Data[planeY],
			Rows:   frame.Height,
			Cols:   frame.Width,
			Dim:    frame.Linesize[planeY],
		},
	}

	faces := fd.classifier.RunCascade(cParams, fd.angle)
	faces = fd.classifier.ClusterDetections(faces, 0.2)

	rects := make([]image.Rectangle, 0, len(faces))
	for _, face := range faces {
		if face.Q < qualityThreshold {
			continue
		}
		half := face.Scale / 2
		rects = append(rects, image.Rect(
			face.Col-half, face.Row-half,
			face.Col+half, face.Row+half,
		))
	}
	return rects
}
