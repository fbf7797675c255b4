//go:build !gocv
// +build !gocv

package video

import (
	"context"
	"errors"

	"github.com/chenBenjamin97/pitchside/pkg/camera"
)

//ErrNoGoCV is returned by every OpenCV backed adapter when the binary was built without the gocv tag
var ErrNoGoCV = errors.New("gocv build tag is not enabled")

//DefaultFPS is used for output videos when the source frame rate is unknown
const DefaultFPS = 24.0

type Capture struct{}

func NewCapture() *Capture { return &Capture{} }

//Read returns an error, if built without gocv tag
func (c *Capture) Read(ctx context.Context, path string) ([]Frame, error) {
	return nil, ErrNoGoCV
}

type Writer struct {
	Codec string
	FPS   float64
}

func NewWriter(fps float64) *Writer {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Writer{Codec: "mp4v", FPS: fps}
}

//Write returns an error, if built without gocv tag
func (w *Writer) Write(ctx context.Context, path string, frames []Frame) error {
	return ErrNoGoCV
}

type OpticalFlowEstimator struct {
	MinDistance float64
	MaxCorners  int
}

func NewOpticalFlowEstimator() *OpticalFlowEstimator {
	return &OpticalFlowEstimator{MinDistance: 5, MaxCorners: 100}
}

//GetCameraMovement returns an error, if built without gocv tag
func (e *OpticalFlowEstimator) GetCameraMovement(ctx context.Context, frames []Frame) ([]camera.Displacement, error) {
	return nil, ErrNoGoCV
}

type MatRenderer struct{}

func NewMatRenderer() *MatRenderer { return &MatRenderer{} }

//Render returns an error, if built without gocv tag
func (r *MatRenderer) Render(ctx context.Context, frames []Frame, ann Annotations) (*Rendered, error) {
	return nil, ErrNoGoCV
}
