//Package speed estimates player speed and covered distance from pitch positions.
package speed

import "github.com/chenBenjamin97/pitchside/pkg/track"

//Defaults match a 24 fps broadcast sampled every 5 frames.
const (
	DefaultFrameWindow = 5
	DefaultFrameRate   = 24.0
)

//Estimator measures movement over fixed frame windows.
type Estimator struct {
	FrameWindow int
	FrameRate   float64
}

//New returns an Estimator, falling back to the defaults for non-positive values.
func New(frameWindow int, frameRate float64) *Estimator {
	if frameWindow <= 0 {
		frameWindow = DefaultFrameWindow
	}
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}
	return &Estimator{FrameWindow: frameWindow, FrameRate: frameRate}
}

//AddSpeedAndDistance sets Speed (km/h) and cumulative Distance (m) on player
//records. For each window the displacement between its first and last frame
//is attributed to every frame of the window in which the player appears.
//The ball and referees are skipped.
func (e *Estimator) AddSpeedAndDistance(s *track.Store) {
	frames := s.Players
	n := len(frames)
	total := make(map[int]float64)
	for start := 0; start < n; start += e.FrameWindow {
		last := min(start+e.FrameWindow, n-1)
		if last == start {
			continue
		}
		for _, id := range frames[start].IDs() {
			from, to := frames[start][id], frames[last][id]
			if from == nil || to == nil || from.PositionTransformed == nil || to.PositionTransformed == nil {
				continue
			}
			dist := from.PositionTransformed.Distance(*to.PositionTransformed)
			elapsed := float64(last-start) / e.FrameRate
			kmh := dist / elapsed * 3.6
			total[id] += dist
			covered := total[id]
			for i := start; i < last; i++ {
				rec, ok := frames[i][id]
				if !ok || rec == nil {
					continue
				}
				v, d := kmh, covered
				rec.Speed, rec.Distance = &v, &d
			}
		}
	}
	s.Bump()
}
