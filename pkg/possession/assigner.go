//Package possession decides, frame by frame, which player controls the ball
//and folds those decisions into a per-frame team-control sequence.
package possession

import (
	"math"

	"github.com/chenBenjamin97/pitchside/pkg/track"
)

//DefaultMaxDistance is the default control radius in pixels.
const DefaultMaxDistance = 70

//Assigner picks the player in control of the ball.
//
//The ball is located at the center of its box. A player is located at
//whichever bottom corner of its box (left or right foot) is closer to the
//ball. A player is in control only when that distance is strictly below
//MaxDistance; a player exactly at MaxDistance is not. When several players
//are equally close the lowest track id wins.
type Assigner struct {
	MaxDistance float64
}

//NewAssigner returns an Assigner with the given control radius.
func NewAssigner(maxDistance float64) *Assigner {
	return &Assigner{MaxDistance: maxDistance}
}

//Assign returns the id of the controlling player, or ok=false when nobody
//is close enough.
func (a *Assigner) Assign(players track.Frame, ball track.BBox) (id int, ok bool) {
	center := ball.Center()
	best := math.Inf(1)
	for _, pid := range players.IDs() {
		rec := players[pid]
		if pid == track.SentinelID || rec == nil {
			continue
		}
		d := math.Min(rec.BBox.LeftFoot().Distance(center), rec.BBox.RightFoot().Distance(center))
		if d >= a.MaxDistance {
			continue
		}
		//ids are visited in ascending order, so strict < keeps the lowest id on ties
		if d < best {
			best, id, ok = d, pid, true
		}
	}
	return id, ok
}
