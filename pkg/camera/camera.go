//Package camera compensates track positions for camera panning.
package camera

import (
	"fmt"

	"github.com/chenBenjamin97/pitchside/pkg/track"
)

//Displacement is the camera's (dx, dy) movement, in pixels, for one frame
//relative to the first frame's feature positions.
type Displacement [2]float64

//AddToTracks sets PositionAdjusted = Position - displacement for every
//record that has a Position. It derives from Position only, so applying it
//twice gives the same result.
func AddToTracks(s *track.Store, disp []Displacement) error {
	if len(disp) != s.FrameCount() {
		return fmt.Errorf("camera movement covers %d frames, tracks cover %d", len(disp), s.FrameCount())
	}
	s.Each(func(class string, frames []track.Frame) {
		for i, frame := range frames {
			if i >= len(disp) {
				return
			}
			d := track.Point(disp[i])
			for _, rec := range frame {
				if rec == nil || rec.Position == nil {
					continue
				}
				adj := rec.Position.Sub(d)
				rec.PositionAdjusted = &adj
			}
		}
	})
	s.Bump()
	return nil
}
