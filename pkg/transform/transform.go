//Package transform maps camera-compensated pixel positions onto pitch
//coordinates through a four-point perspective transform.
package transform

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/chenBenjamin97/pitchside/pkg/track"
)

//Default calibration: a trapezoid of the broadcast view mapped onto a
//23.32m x 68m strip of pitch.
const (
	CourtWidth  = 68.0
	CourtLength = 23.32
)

var (
	DefaultPixelVertices = [4]track.Point{{110, 1035}, {265, 275}, {910, 260}, {1640, 915}}
	DefaultPitchVertices = [4]track.Point{{0, CourtWidth}, {0, 0}, {CourtLength, 0}, {CourtLength, CourtWidth}}
)

//Transformer applies a homography solved from four point correspondences.
type Transformer struct {
	h       *mat.Dense
	polygon [4]track.Point
}

//New solves the homography taking pixel[i] to pitch[i].
func New(pixel, pitch [4]track.Point) (*Transformer, error) {
	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := range pixel {
		x, y := pixel[i].X(), pixel[i].Y()
		u, v := pitch[i].X(), pitch[i].Y()
		a.SetRow(2*i, []float64{x, y, 1, 0, 0, 0, -u * x, -u * y})
		a.SetRow(2*i+1, []float64{0, 0, 0, x, y, 1, -v * x, -v * y})
		b.SetVec(2*i, u)
		b.SetVec(2*i+1, v)
	}
	var h mat.VecDense
	if err := h.SolveVec(a, b); err != nil {
		return nil, fmt.Errorf("solving perspective transform: %w", err)
	}
	return &Transformer{
		h: mat.NewDense(3, 3, []float64{
			h.AtVec(0), h.AtVec(1), h.AtVec(2),
			h.AtVec(3), h.AtVec(4), h.AtVec(5),
			h.AtVec(6), h.AtVec(7), 1,
		}),
		polygon: pixel,
	}, nil
}

//Default returns the transformer for the built-in calibration.
func Default() *Transformer {
	t, err := New(DefaultPixelVertices, DefaultPitchVertices)
	if err != nil {
		panic(err)
	}
	return t
}

//Point maps p onto the pitch. ok is false when p lies outside the
//calibrated area; points on its border are inside.
func (t *Transformer) Point(p track.Point) (track.Point, bool) {
	if !inside(t.polygon, p) {
		return track.Point{}, false
	}
	var out mat.VecDense
	out.MulVec(t.h, mat.NewVecDense(3, []float64{p.X(), p.Y(), 1}))
	w := out.AtVec(2)
	return track.Point{out.AtVec(0) / w, out.AtVec(1) / w}, true
}

//AddTransformedPoint sets PositionTransformed on every record with a
//camera-compensated position, or clears it when the position falls outside
//the calibrated area.
func (t *Transformer) AddTransformedPoint(s *track.Store) {
	s.Each(func(class string, frames []track.Frame) {
		for _, frame := range frames {
			for _, rec := range frame {
				if rec == nil || rec.PositionAdjusted == nil {
					continue
				}
				rec.PositionTransformed = nil
				if p, ok := t.Point(*rec.PositionAdjusted); ok {
					rec.PositionTransformed = &p
				}
			}
		}
	})
	s.Bump()
}

func inside(poly [4]track.Point, p track.Point) bool {
	in := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if onSegment(a, b, p) {
			return true
		}
		if (a.Y() > p.Y()) != (b.Y() > p.Y()) &&
			p.X() < (b.X()-a.X())*(p.Y()-a.Y())/(b.Y()-a.Y())+a.X() {
			in = !in
		}
	}
	return in
}

func onSegment(a, b, p track.Point) bool {
	cross := (b.X()-a.X())*(p.Y()-a.Y()) - (b.Y()-a.Y())*(p.X()-a.X())
	if cross > 1e-9 || cross < -1e-9 {
		return false
	}
	return p.X() >= min(a.X(), b.X()) && p.X() <= max(a.X(), b.X()) &&
		p.Y() >= min(a.Y(), b.Y()) && p.Y() <= max(a.Y(), b.Y())
}
