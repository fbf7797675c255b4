//go:build gocv
// +build gocv

package video

import (
	"context"
	"math"

	"gocv.io/x/gocv"

	"github.com/chenBenjamin97/pitchside/pkg/camera"
)

//OpticalFlowEstimator measures camera movement by tracking corner features between consecutive grayscale frames (Lucas-Kanade).
//The largest feature movement of a frame is taken as the camera's movement when it exceeds MinDistance pixels.
type OpticalFlowEstimator struct {
	MinDistance float64
	MaxCorners  int
}

//NewOpticalFlowEstimator returns an estimator with a 5 pixel movement threshold
func NewOpticalFlowEstimator() *OpticalFlowEstimator {
	return &OpticalFlowEstimator{MinDistance: 5, MaxCorners: 100}
}

//GetCameraMovement returns one displacement per frame, the first is always zero
func (e *OpticalFlowEstimator) GetCameraMovement(ctx context.Context, frames []Frame) ([]camera.Displacement, error) {
	out := make([]camera.Displacement, len(frames))
	if len(frames) == 0 {
		return out, nil
	}

	prevGray, err := gray(frames[0])
	if err != nil {
		return nil, err
	}
	defer func() { prevGray.Close() }()

	features := gocv.NewMat()
	defer func() { features.Close() }()
	gocv.GoodFeaturesToTrack(prevGray, &features, e.MaxCorners, 0.3, 3)

	for i := 1; i < len(frames); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		curGray, err := gray(frames[i])
		if err != nil {
			return nil, err
		}

		if !features.Empty() {
			next, status, flowErr := gocv.NewMat(), gocv.NewMat(), gocv.NewMat()
			gocv.CalcOpticalFlowPyrLK(prevGray, curGray, features, next, &status, &flowErr)

			best := 0.0
			var move camera.Displacement
			for r := 0; r < features.Rows() && r < next.Rows(); r++ {
				if status.GetUCharAt(r, 0) == 0 {
					continue
				}
				oldPt, newPt := features.GetVecfAt(r, 0), next.GetVecfAt(r, 0)
				dx, dy := float64(oldPt[0]-newPt[0]), float64(oldPt[1]-newPt[1])
				if d := math.Hypot(dx, dy); d > best {
					best, move = d, camera.Displacement{dx, dy}
				}
			}
			next.Close()
			status.Close()
			flowErr.Close()

			if best > e.MinDistance {
				out[i] = move
				features.Close()
				features = gocv.NewMat()
				gocv.GoodFeaturesToTrack(curGray, &features, e.MaxCorners, 0.3, 3)
			}
		}

		prevGray.Close()
		prevGray = curGray
	}
	return out, nil
}

func gray(f Frame) (gocv.Mat, error) {
	src, err := matOf(f)
	if err != nil {
		return gocv.Mat{}, err
	}
	dst := gocv.NewMat()
	gocv.CvtColor(src, &dst, gocv.ColorBGRToGray)
	return dst, nil
}
