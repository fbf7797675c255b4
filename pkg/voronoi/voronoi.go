//Package voronoi groups player pitch positions by team, frame by frame, for
//the voronoi overlay renderer.
package voronoi

import "github.com/chenBenjamin97/pitchside/pkg/track"

//Projection is one frame's input to the voronoi renderer. A team color is
//nil when no player of that team was seen in the frame.
type Projection struct {
	Team1      []track.Point
	Team2      []track.Point
	Team1Color []float64
	Team2Color []float64
}

//Project buckets the frame's transformed player positions by team.
//
//Only teams 1 and 2 are projected. Records with any other team value,
//records without a transformed position and the sentinel id are skipped
//without error: the overlay is a two-team diagram and referees or unassigned
//players have no cell in it. The color of each team is taken from the last
//record seen in ascending id order, since a team's color is near constant.
func Project(frame track.Frame) Projection {
	var p Projection
	for _, id := range frame.IDs() {
		rec := frame[id]
		if id == track.SentinelID || rec == nil || rec.PositionTransformed == nil {
			continue
		}
		var color []float64
		if rec.TeamColor != nil {
			color = rec.TeamColor.Values()
		}
		switch rec.Team {
		case 1:
			p.Team1 = append(p.Team1, *rec.PositionTransformed)
			if color != nil {
				p.Team1Color = color
			}
		case 2:
			p.Team2 = append(p.Team2, *rec.PositionTransformed)
			if color != nil {
				p.Team2Color = color
			}
		}
	}
	return p
}

//ProjectAll returns one projection per player frame of s.
func ProjectAll(s *track.Store) []Projection {
	out := make([]Projection, len(s.Players))
	for i, frame := range s.Players {
		out[i] = Project(frame)
	}
	return out
}
