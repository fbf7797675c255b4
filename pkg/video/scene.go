package video

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/chenBenjamin97/pitchside/pkg/possession"
	"github.com/chenBenjamin97/pitchside/pkg/track"
	"github.com/chenBenjamin97/pitchside/pkg/transform"
	"github.com/chenBenjamin97/pitchside/pkg/voronoi"
)

var (
	defaultPlayerColor = color.RGBA{255, 255, 255, 255}
	refereeColor       = color.RGBA{0, 255, 255, 255}
	ballColor          = color.RGBA{0, 255, 0, 255}
	controlColor       = color.RGBA{255, 0, 0, 255}
	textColor          = color.RGBA{0, 0, 0, 255}
)

//trailLength is how many past frames the line overlay draws for every player
const trailLength = 24

//Ellipse is the half ellipse drawn under a person's feet
type Ellipse struct {
	Center image.Point
	Width  int
	Color  color.RGBA
	Label  string
}

//Marker is the triangle drawn above the ball or the player in control
type Marker struct {
	Tip   image.Point
	Color color.RGBA
}

//Text is a line of text drawn at a fixed position
type Text struct {
	At   image.Point
	Text string
}

//Scene is everything drawn on one frame of the main video
type Scene struct {
	Ellipses []Ellipse
	Markers  []Marker
	Texts    []Text
}

//Dot is a filled circle drawn by the circle overlay
type Dot struct {
	Center image.Point
	Color  color.RGBA
}

//Trail is one player's recent positions for the line overlay
type Trail struct {
	Points []image.Point
	Color  color.RGBA
}

//teamColor converts a record's team color to RGBA, falling back to white
func teamColor(rec *track.Record) color.RGBA {
	if rec == nil || rec.TeamColor == nil {
		return defaultPlayerColor
	}
	v := rec.TeamColor.Values()
	if len(v) < 3 {
		return defaultPlayerColor
	}
	return color.RGBA{clampByte(v[0]), clampByte(v[1]), clampByte(v[2]), 255}
}

func clampByte(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}

func pt(p track.Point) image.Point {
	return image.Pt(int(math.Round(p[0])), int(math.Round(p[1])))
}

//MainScene lays out frame i of the annotated video: ellipses under players and referees, a triangle over the ball and over the player
//in control, speed and distance under players, camera movement and team ball control share in the corners
func MainScene(ann Annotations, i int) Scene {
	sc := Scene{}
	s := ann.Tracks
	if s == nil || i < 0 || i >= s.FrameCount() {
		return sc
	}

	for _, id := range s.Players[i].IDs() {
		rec := s.Players[i][id]
		if id == track.SentinelID || rec == nil {
			continue
		}
		sc.Ellipses = append(sc.Ellipses, Ellipse{
			Center: pt(rec.BBox.Foot()),
			Width:  int(rec.BBox.Width()),
			Color:  teamColor(rec),
			Label:  fmt.Sprintf("%d", id),
		})
		if rec.HasControl {
			sc.Markers = append(sc.Markers, Marker{Tip: image.Pt(int(rec.BBox.Center()[0]), int(rec.BBox[1])), Color: controlColor})
		}
		if rec.Speed != nil && rec.Distance != nil {
			foot := pt(rec.BBox.Foot())
			sc.Texts = append(sc.Texts,
				Text{At: foot.Add(image.Pt(-20, 40)), Text: fmt.Sprintf("%.2f km/h", *rec.Speed)},
				Text{At: foot.Add(image.Pt(-20, 60)), Text: fmt.Sprintf("%.2f m", *rec.Distance)},
			)
		}
	}
	for _, id := range s.Referees[i].IDs() {
		rec := s.Referees[i][id]
		if id == track.SentinelID || rec == nil {
			continue
		}
		sc.Ellipses = append(sc.Ellipses, Ellipse{Center: pt(rec.BBox.Foot()), Width: int(rec.BBox.Width()), Color: refereeColor})
	}
	if ball, ok := s.BallBBox(i); ok {
		sc.Markers = append(sc.Markers, Marker{Tip: image.Pt(int(ball.Center()[0]), int(ball[1])), Color: ballColor})
	}

	if i < len(ann.CameraMovement) {
		d := ann.CameraMovement[i]
		sc.Texts = append(sc.Texts,
			Text{At: image.Pt(10, 30), Text: fmt.Sprintf("Camera Movement X: %.2f", d[0])},
			Text{At: image.Pt(10, 60), Text: fmt.Sprintf("Camera Movement Y: %.2f", d[1])},
		)
	}
	if len(ann.TeamControl) > 0 {
		share := possession.ShareUpTo(ann.TeamControl, i)
		sc.Texts = append(sc.Texts,
			Text{At: image.Pt(1400, 900), Text: fmt.Sprintf("Team 1 Ball Control: %.2f%%", share.Team1*100)},
			Text{At: image.Pt(1400, 950), Text: fmt.Sprintf("Team 2 Ball Control: %.2f%%", share.Team2*100)},
		)
	}
	return sc
}

//CircleDots returns one dot per tracked player at its foot position, colored by team
func CircleDots(ann Annotations, i int) []Dot {
	s := ann.Tracks
	if s == nil || i < 0 || i >= s.FrameCount() {
		return nil
	}
	var dots []Dot
	for _, id := range s.Players[i].IDs() {
		rec := s.Players[i][id]
		if id == track.SentinelID || rec == nil {
			continue
		}
		dots = append(dots, Dot{Center: pt(rec.BBox.Foot()), Color: teamColor(rec)})
	}
	return dots
}

//Trails returns the last trailLength foot positions of every player visible in frame i
func Trails(ann Annotations, i int) []Trail {
	s := ann.Tracks
	if s == nil || i < 0 || i >= s.FrameCount() {
		return nil
	}
	var trails []Trail
	for _, id := range s.Players[i].IDs() {
		if id == track.SentinelID {
			continue
		}
		tr := Trail{Color: teamColor(s.Players[i][id])}
		for j := max(0, i-trailLength+1); j <= i; j++ {
			if rec, ok := s.Players[j][id]; ok && rec != nil {
				tr.Points = append(tr.Points, pt(rec.BBox.Foot()))
			}
		}
		if len(tr.Points) > 1 {
			trails = append(trails, tr)
		}
	}
	return trails
}

//VoronoiGrid assigns every cell of a cols x rows grid laid over the pitch to the team of its nearest player (1 or 2), or 0 when
//the projection holds no players at all
func VoronoiGrid(p voronoi.Projection, cols, rows int) [][]int {
	grid := make([][]int, rows)
	for r := range grid {
		grid[r] = make([]int, cols)
	}
	if len(p.Team1)+len(p.Team2) == 0 || cols == 0 || rows == 0 {
		return grid
	}
	cellW := transform.CourtLength / float64(cols)
	cellH := transform.CourtWidth / float64(rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cell := track.Point{(float64(c) + 0.5) * cellW, (float64(r) + 0.5) * cellH}
			grid[r][c] = nearestTeam(p, cell)
		}
	}
	return grid
}

func nearestTeam(p voronoi.Projection, at track.Point) int {
	best, team := math.Inf(1), 0
	for _, q := range p.Team1 {
		if d := q.Distance(at); d < best {
			best, team = d, 1
		}
	}
	for _, q := range p.Team2 {
		if d := q.Distance(at); d < best {
			best, team = d, 2
		}
	}
	return team
}

//projectionColor returns the RGBA color of team in p, with a fixed fallback per team
func projectionColor(p voronoi.Projection, team int) color.RGBA {
	v := p.Team1Color
	fallback := color.RGBA{0, 0, 255, 255}
	if team == 2 {
		v, fallback = p.Team2Color, color.RGBA{255, 0, 0, 255}
	}
	if len(v) < 3 {
		return fallback
	}
	return color.RGBA{clampByte(v[0]), clampByte(v[1]), clampByte(v[2]), 255}
}
