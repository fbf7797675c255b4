package video

import "github.com/chenBenjamin97/pitchside/pkg/track"

//detection is one JSON line printed by the tracking script, describing a single tracked object in the current frame
type detection struct {
	Class     string       `json:"class"`
	ID        int          `json:"id"`
	BBox      track.BBox   `json:"bbox"`
	Team      int          `json:"team,omitempty"`
	TeamColor *track.Color `json:"team_color,omitempty"`
}

//storeClass maps the script's class names to the store's classes. Goalkeepers are tracked as players.
func storeClass(class string) (string, bool) {
	switch class {
	case "player", "goalkeeper", track.Players:
		return track.Players, true
	case "referee", track.Referees:
		return track.Referees, true
	case "ball", "sports ball":
		return track.Ball, true
	}
	return "", false
}

func (d *detection) record() *track.Record {
	return &track.Record{BBox: d.BBox, Team: d.Team, TeamColor: d.TeamColor}
}
