//Package track holds the per-class, per-frame track records produced by the
//object tracker and mutated in place by the later pipeline stages.
package track

import (
	"fmt"
	"math"
	"sort"
)

//Object classes produced by the tracker.
const (
	Players  = "players"
	Ball     = "ball"
	Referees = "referees"
)

//SentinelID marks "no detection this frame". It never survives Normalize.
const SentinelID = -1

//BallID is the id under which the tracker reports the single ball track.
const BallID = 1

//NoTeam is the Team value of a record that has not been assigned to a team.
const NoTeam = 0

//Point is an (x, y) coordinate, in pixels or pitch metres depending on the field.
type Point [2]float64

func (p Point) X() float64 { return p[0] }
func (p Point) Y() float64 { return p[1] }

//Distance returns the euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p[0]-q[0], p[1]-q[1])
}

//Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{p[0] - q[0], p[1] - q[1]}
}

//BBox is a pixel bounding box: x1, y1, x2, y2.
type BBox [4]float64

//Center returns the middle of the box.
func (b BBox) Center() Point {
	return Point{(b[0] + b[2]) / 2, (b[1] + b[3]) / 2}
}

//Foot returns the bottom-center of the box, where a person touches the pitch.
func (b BBox) Foot() Point {
	return Point{(b[0] + b[2]) / 2, b[3]}
}

//LeftFoot and RightFoot are the two bottom corners of the box.
func (b BBox) LeftFoot() Point  { return Point{b[0], b[3]} }
func (b BBox) RightFoot() Point { return Point{b[2], b[3]} }

func (b BBox) Width() float64 { return b[2] - b[0] }

//Record is one tracked object in one frame. Optional fields are nil until
//the stage that produces them has run.
type Record struct {
	BBox                BBox     `json:"bbox" yaml:"bbox"`
	Team                int      `json:"team,omitempty" yaml:"team,omitempty"`
	TeamColor           *Color   `json:"team_color,omitempty" yaml:"team_color,omitempty"`
	Position            *Point   `json:"position,omitempty" yaml:"position,omitempty"`
	PositionAdjusted    *Point   `json:"position_adjusted,omitempty" yaml:"position_adjusted,omitempty"`
	PositionTransformed *Point   `json:"position_transformed,omitempty" yaml:"position_transformed,omitempty"`
	HasControl          bool     `json:"has_control,omitempty" yaml:"has_control,omitempty"`
	Speed               *float64 `json:"speed,omitempty" yaml:"speed,omitempty"`
	Distance            *float64 `json:"distance,omitempty" yaml:"distance,omitempty"`
}

//Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	c := *r
	if r.TeamColor != nil {
		c.TeamColor = r.TeamColor.Clone()
	}
	c.Position = clonePoint(r.Position)
	c.PositionAdjusted = clonePoint(r.PositionAdjusted)
	c.PositionTransformed = clonePoint(r.PositionTransformed)
	c.Speed = cloneFloat(r.Speed)
	c.Distance = cloneFloat(r.Distance)
	return &c
}

func clonePoint(p *Point) *Point {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}

//Frame maps track id to record for one class in one video frame.
type Frame map[int]*Record

//IDs returns the frame's track ids in ascending order.
func (f Frame) IDs() []int {
	ids := make([]int, 0, len(f))
	for id := range f {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

//Store is the full set of tracks for one video. The pipeline owns a single
//Store per run and every stage mutates it in place.
type Store struct {
	Players  []Frame `json:"players" yaml:"players"`
	Ball     []Frame `json:"ball" yaml:"ball"`
	Referees []Frame `json:"referees" yaml:"referees"`

	//Enriched is set once positions have been compensated, transformed and
	//speed-annotated.
	Enriched bool `json:"enriched,omitempty" yaml:"enriched,omitempty"`

	//Version counts in-place stage mutations within a run. Not persisted.
	Version int `json:"-" yaml:"-"`
}

//NewStore returns a store with n empty frames for every class.
func NewStore(n int) *Store {
	s := &Store{}
	s.Grow(n)
	return s
}

//ClassNames lists the classes in a fixed order.
func ClassNames() []string {
	return []string{Players, Ball, Referees}
}

//Class returns the frames of the named class, or nil for an unknown name.
func (s *Store) Class(name string) []Frame {
	switch name {
	case Players:
		return s.Players
	case Ball:
		return s.Ball
	case Referees:
		return s.Referees
	}
	return nil
}

//Each calls fn for every class in ClassNames order.
func (s *Store) Each(fn func(class string, frames []Frame)) {
	for _, name := range ClassNames() {
		fn(name, s.Class(name))
	}
}

//Grow pads every class with empty frames until it holds at least n frames.
func (s *Store) Grow(n int) {
	s.Players = grow(s.Players, n)
	s.Ball = grow(s.Ball, n)
	s.Referees = grow(s.Referees, n)
}

func grow(frames []Frame, n int) []Frame {
	for len(frames) < n {
		frames = append(frames, Frame{})
	}
	for i := range frames {
		if frames[i] == nil {
			frames[i] = Frame{}
		}
	}
	return frames
}

//FrameCount returns the number of frames in the store.
func (s *Store) FrameCount() int {
	return len(s.Players)
}

//Validate checks that every class covers the same number of frames.
func (s *Store) Validate() error {
	n := len(s.Players)
	if len(s.Ball) != n || len(s.Referees) != n {
		return fmt.Errorf("frame count mismatch: players=%d ball=%d referees=%d", n, len(s.Ball), len(s.Referees))
	}
	return nil
}

//BallBBox returns the ball location for frame i.
func (s *Store) BallBBox(i int) (BBox, bool) {
	if i < 0 || i >= len(s.Ball) {
		return BBox{}, false
	}
	rec, ok := s.Ball[i][BallID]
	if !ok || rec == nil {
		return BBox{}, false
	}
	return rec.BBox, true
}

//Bump records that a stage mutated the store and returns the new version.
func (s *Store) Bump() int {
	s.Version++
	return s.Version
}

//Clone returns a deep copy of s. The pipeline never clones; this exists for
//comparisons in tests and export previews.
func (s *Store) Clone() *Store {
	return &Store{
		Players:  cloneFrames(s.Players),
		Ball:     cloneFrames(s.Ball),
		Referees: cloneFrames(s.Referees),
		Enriched: s.Enriched,
		Version:  s.Version,
	}
}

func cloneFrames(frames []Frame) []Frame {
	if frames == nil {
		return nil
	}
	out := make([]Frame, len(frames))
	for i, f := range frames {
		out[i] = make(Frame, len(f))
		for id, rec := range f {
			if rec == nil {
				out[i][id] = nil
				continue
			}
			out[i][id] = rec.Clone()
		}
	}
	return out
}
