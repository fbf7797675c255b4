package video

import (
	"github.com/chenBenjamin97/pitchside/pkg/camera"
	"github.com/chenBenjamin97/pitchside/pkg/possession"
	"github.com/chenBenjamin97/pitchside/pkg/track"
)

//Frame is one decoded video frame. Frames may own native memory, so whoever receives them must Close them.
type Frame interface {
	Size() (width, height int)
	Close() error
}

//Clip is a decoded video and the path it was read from (the subprocess tracker reads the file itself)
type Clip struct {
	Path   string
	Frames []Frame
}

//Overlay names an optional rendered variant of the main video
type Overlay string

const (
	OverlayCircle  Overlay = "circle"
	OverlayVoronoi Overlay = "voronoi"
	OverlayLine    Overlay = "line"
)

//Overlays returns the overlay variants in output order
func Overlays() []Overlay {
	return []Overlay{OverlayCircle, OverlayVoronoi, OverlayLine}
}

//Annotations is everything drawn on top of the source frames
type Annotations struct {
	Tracks         *track.Store
	TeamControl    possession.Sequence
	CameraMovement []camera.Displacement
}

//Rendered holds the annotated main video and the overlay variants. Renderers must return new frames, never the source frames.
type Rendered struct {
	Main     []Frame
	Overlays map[Overlay][]Frame
}

//Close releases every rendered frame
func (r *Rendered) Close() {
	CloseAll(r.Main)
	for _, frames := range r.Overlays {
		CloseAll(frames)
	}
}

//CloseAll closes every frame, ignoring errors (frames are only released memory at this point)
func CloseAll(frames []Frame) {
	for _, f := range frames {
		if f != nil {
			f.Close()
		}
	}
}
