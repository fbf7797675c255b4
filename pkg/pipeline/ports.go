package pipeline

import (
	"context"

	"github.com/chenBenjamin97/pitchside/pkg/camera"
	"github.com/chenBenjamin97/pitchside/pkg/track"
	"github.com/chenBenjamin97/pitchside/pkg/video"
)

//FrameSource decodes a video file. An empty result is valid.
type FrameSource interface {
	Read(ctx context.Context, path string) ([]video.Frame, error)
}

//ObjectTracker detects and tracks players, referees and the ball.
type ObjectTracker interface {
	GetObjectTracks(ctx context.Context, clip video.Clip) (*track.Store, error)
	InterpolateBallPosition(ball []track.Frame) []track.Frame
}

//CameraEstimator measures per-frame camera movement.
type CameraEstimator interface {
	GetCameraMovement(ctx context.Context, frames []video.Frame) ([]camera.Displacement, error)
}

//Transformer adds pitch coordinates in place.
type Transformer interface {
	AddTransformedPoint(s *track.Store)
}

//SpeedEstimator adds speed and distance in place.
type SpeedEstimator interface {
	AddSpeedAndDistance(s *track.Store)
}

//Renderer draws annotations and overlay variants.
type Renderer interface {
	Render(ctx context.Context, frames []video.Frame, ann video.Annotations) (*video.Rendered, error)
}

//VideoWriter encodes frames to a file.
type VideoWriter interface {
	Write(ctx context.Context, path string, frames []video.Frame) error
}
