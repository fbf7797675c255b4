package possession

//Share is the fraction of frames each team controlled the ball.
type Share struct {
	Team1 float64 `json:"team_1"`
	Team2 float64 `json:"team_2"`
}

//ShareUpTo returns the control share over frames [0, frame]. Frames credited
//to any other team id are ignored, as is a frame index past the end.
func ShareUpTo(seq Sequence, frame int) Share {
	if frame >= len(seq) {
		frame = len(seq) - 1
	}
	if frame < 0 {
		return Share{}
	}
	var t1, t2 int
	for _, team := range seq[:frame+1] {
		switch team {
		case 1:
			t1++
		case 2:
			t2++
		}
	}
	if t1+t2 == 0 {
		return Share{}
	}
	total := float64(t1 + t2)
	return Share{Team1: float64(t1) / total, Team2: float64(t2) / total}
}

//Summary is the whole-video control share.
func Summary(seq Sequence) Share {
	return ShareUpTo(seq, len(seq)-1)
}
