//go:build gocv
// +build gocv

package video

import (
	"context"
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

//DefaultFPS is used for output videos when the source frame rate is unknown
const DefaultFPS = 24.0

//MatFrame is a decoded OpenCV frame
type MatFrame struct {
	Mat gocv.Mat
}

func (f *MatFrame) Size() (int, int) { return f.Mat.Cols(), f.Mat.Rows() }

func (f *MatFrame) Close() error { return f.Mat.Close() }

func matOf(f Frame) (gocv.Mat, error) {
	mf, ok := f.(*MatFrame)
	if !ok {
		return gocv.Mat{}, fmt.Errorf("unsupported frame type %T", f)
	}
	return mf.Mat, nil
}

//Capture reads whole videos into memory with OpenCV
type Capture struct{}

//NewCapture returns an OpenCV frame source
func NewCapture() *Capture { return &Capture{} }

//Read decodes every frame of the video at path
func (c *Capture) Read(ctx context.Context, path string) ([]Frame, error) {
	vc, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer vc.Close()

	frames := make([]Frame, 0)
	for {
		if err := ctx.Err(); err != nil {
			CloseAll(frames)
			return nil, err
		}
		mat := gocv.NewMat()
		if !vc.Read(&mat) || mat.Empty() { //finished to iterate over file
			mat.Close()
			break
		}
		frames = append(frames, &MatFrame{Mat: mat})
	}
	return frames, nil
}

//Writer encodes frames with the given fourcc codec
type Writer struct {
	Codec string
	FPS   float64
}

//NewWriter returns an mp4v writer at fps (DefaultFPS when fps <= 0)
func NewWriter(fps float64) *Writer {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Writer{Codec: "mp4v", FPS: fps}
}

//Write encodes frames to path. The frame size is taken from the first frame.
func (w *Writer) Write(ctx context.Context, path string, frames []Frame) error {
	if len(frames) == 0 {
		return errors.New("no frames to write")
	}
	width, height := frames[0].Size()
	vw, err := gocv.VideoWriterFile(path, w.Codec, w.FPS, width, height, true)
	if err != nil {
		return err
	}
	defer vw.Close()

	for _, f := range frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		mat, err := matOf(f)
		if err != nil {
			return err
		}
		if err := vw.Write(mat); err != nil {
			return err
		}
	}
	return nil
}
