//go:build gocv
// +build gocv

package video

import (
	"context"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/chenBenjamin97/pitchside/pkg/voronoi"
)

//minimap layout of the voronoi overlay: grid cells over the pitch and their size in pixels
const (
	minimapCols   = 58
	minimapRows   = 170
	minimapCellPx = 2
	minimapMargin = 20
)

var whiteRGB = color.RGBA{255, 255, 255, 0}

//MatRenderer draws annotations on OpenCV frames
type MatRenderer struct{}

//NewMatRenderer returns an OpenCV renderer
func NewMatRenderer() *MatRenderer { return &MatRenderer{} }

//Render returns new frames for the main video and every overlay; the source frames are left untouched
func (r *MatRenderer) Render(ctx context.Context, frames []Frame, ann Annotations) (*Rendered, error) {
	out := &Rendered{Overlays: make(map[Overlay][]Frame)}
	var projections []voronoi.Projection
	if ann.Tracks != nil {
		projections = voronoi.ProjectAll(ann.Tracks)
	}

	for i, f := range frames {
		if err := ctx.Err(); err != nil {
			out.Close()
			return nil, err
		}
		src, err := matOf(f)
		if err != nil {
			out.Close()
			return nil, err
		}

		main := src.Clone()
		plotScene(&main, MainScene(ann, i))
		out.Main = append(out.Main, &MatFrame{Mat: main})

		circle := src.Clone()
		for _, d := range CircleDots(ann, i) {
			gocv.Circle(&circle, d.Center, 8, d.Color, -1)
		}
		out.Overlays[OverlayCircle] = append(out.Overlays[OverlayCircle], &MatFrame{Mat: circle})

		line := src.Clone()
		for _, tr := range Trails(ann, i) {
			for k := 1; k < len(tr.Points); k++ {
				gocv.Line(&line, tr.Points[k-1], tr.Points[k], tr.Color, 2)
			}
		}
		out.Overlays[OverlayLine] = append(out.Overlays[OverlayLine], &MatFrame{Mat: line})

		if i < len(projections) {
			vor := src.Clone()
			plotMinimap(&vor, projections[i])
			out.Overlays[OverlayVoronoi] = append(out.Overlays[OverlayVoronoi], &MatFrame{Mat: vor})
		}
	}
	return out, nil
}

//plotScene draws ellipses under persons, triangles above the ball and the player in control and every text with a white background
func plotScene(frame *gocv.Mat, sc Scene) {
	for _, e := range sc.Ellipses {
		axes := image.Pt(e.Width, int(0.35*float64(e.Width)))
		gocv.Ellipse(frame, e.Center, axes, 0, -45, 235, e.Color, 2)

		if e.Label != "" {
			labelRect := image.Rect(e.Center.X-20, e.Center.Y+5, e.Center.X+20, e.Center.Y+25)
			gocv.Rectangle(frame, labelRect, e.Color, -1) //thickness -1 == filled rectangle
			gocv.PutText(frame, e.Label, image.Pt(labelRect.Min.X+8, labelRect.Max.Y-5), gocv.FontHersheySimplex, 0.6, textColor, 2)
		}
	}

	for _, m := range sc.Markers {
		pts := [][]image.Point{{m.Tip, m.Tip.Add(image.Pt(-10, -20)), m.Tip.Add(image.Pt(10, -20))}}
		pv := gocv.NewPointsVectorFromPoints(pts)
		gocv.FillPoly(frame, pv, m.Color)
		gocv.Polylines(frame, pv, true, textColor, 2)
		pv.Close()
	}

	for _, t := range sc.Texts {
		textBackgroundRect := image.Rect(t.At.X-5, t.At.Y-22, t.At.X+len(t.Text)*13, t.At.Y+8)
		gocv.Rectangle(frame, textBackgroundRect, whiteRGB, -1)
		gocv.PutText(frame, t.Text, t.At, gocv.FontHersheySimplex, 0.7, textColor, 2)
	}
}

//plotMinimap draws the voronoi partition of the pitch between both teams in the frame's top-left corner
func plotMinimap(frame *gocv.Mat, p voronoi.Projection) {
	grid := VoronoiGrid(p, minimapCols, minimapRows)
	for r, row := range grid {
		for c, team := range row {
			if team == 0 {
				continue
			}
			x, y := minimapMargin+c*minimapCellPx, minimapMargin+r*minimapCellPx
			gocv.Rectangle(frame, image.Rect(x, y, x+minimapCellPx, y+minimapCellPx), projectionColor(p, team), -1)
		}
	}
	border := image.Rect(minimapMargin, minimapMargin, minimapMargin+minimapCols*minimapCellPx, minimapMargin+minimapRows*minimapCellPx)
	gocv.Rectangle(frame, border, whiteRGB, 2)
}
