package export

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/chenBenjamin97/pitchside/pkg/possession"
	"github.com/chenBenjamin97/pitchside/pkg/track"
)

//PlayerStats summarizes one player track over the whole video.
type PlayerStats struct {
	ID        int     `json:"id" yaml:"id"`
	Team      int     `json:"team" yaml:"team"`
	Frames    int     `json:"frames" yaml:"frames"`
	Controls  int     `json:"controls" yaml:"controls"`
	MeanSpeed float64 `json:"mean_speed" yaml:"mean_speed"`
	MaxSpeed  float64 `json:"max_speed" yaml:"max_speed"`
	Distance  float64 `json:"distance" yaml:"distance"`
}

//Report is the per-video summary served by the API and the export command.
type Report struct {
	Frames     int              `json:"frames" yaml:"frames"`
	Possession possession.Share `json:"possession" yaml:"possession"`
	Players    []PlayerStats    `json:"players" yaml:"players"`
}

//BuildReport summarizes s and the team-control sequence. Players are sorted by id.
func BuildReport(s *track.Store, seq possession.Sequence) Report {
	type acc struct {
		stats  PlayerStats
		speeds []float64
	}
	byID := make(map[int]*acc)
	for _, frame := range s.Players {
		for id, rec := range frame {
			if id == track.SentinelID || rec == nil {
				continue
			}
			a, ok := byID[id]
			if !ok {
				a = &acc{stats: PlayerStats{ID: id}}
				byID[id] = a
			}
			a.stats.Frames++
			if rec.Team != track.NoTeam {
				a.stats.Team = rec.Team
			}
			if rec.HasControl {
				a.stats.Controls++
			}
			if rec.Speed != nil {
				a.speeds = append(a.speeds, *rec.Speed)
				a.stats.MaxSpeed = max(a.stats.MaxSpeed, *rec.Speed)
			}
			if rec.Distance != nil {
				a.stats.Distance = max(a.stats.Distance, *rec.Distance)
			}
		}
	}

	r := Report{Frames: s.FrameCount(), Possession: possession.Summary(seq), Players: make([]PlayerStats, 0, len(byID))}
	for _, a := range byID {
		if len(a.speeds) > 0 {
			a.stats.MeanSpeed = stat.Mean(a.speeds, nil)
		}
		r.Players = append(r.Players, a.stats)
	}
	sort.Slice(r.Players, func(i, j int) bool { return r.Players[i].ID < r.Players[j].ID })
	return r
}
