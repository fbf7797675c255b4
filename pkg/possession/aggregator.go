package possession

import "github.com/chenBenjamin97/pitchside/pkg/track"

//DefaultTeam is recorded for leading frames in which nobody controls the
//ball, before any team has been seen in possession. It is a policy choice:
//it biases the very first ambiguous frames toward team 1.
const DefaultTeam = 1

//Sequence holds one team id per frame.
type Sequence []int

//State is the aggregator's state.
type State int

const (
	NoAssignment State = iota
	TeamActive
)

func (s State) String() string {
	if s == TeamActive {
		return "team-active"
	}
	return "no-assignment"
}

//Aggregator turns per-frame possession decisions into a Sequence. Frames in
//which nobody controls the ball repeat the previous frame's team.
type Aggregator struct {
	defaultTeam int
	state       State
	seq         Sequence
}

//NewAggregator returns an aggregator in the NoAssignment state. defaultTeam
//is used for leading frames without possession; pass DefaultTeam unless
//product requirements say otherwise.
func NewAggregator(defaultTeam int, frames int) *Aggregator {
	return &Aggregator{defaultTeam: defaultTeam, seq: make(Sequence, 0, frames)}
}

//Observe records that a player of team controls the ball this frame.
func (a *Aggregator) Observe(team int) {
	a.seq = append(a.seq, team)
	a.state = TeamActive
}

//ObserveNone records a frame in which nobody controls the ball.
func (a *Aggregator) ObserveNone() {
	if len(a.seq) == 0 {
		a.seq = append(a.seq, a.defaultTeam)
		return
	}
	a.seq = append(a.seq, a.seq[len(a.seq)-1])
}

//State returns the current state and, when a team is active, which one.
func (a *Aggregator) State() (State, int) {
	if a.state == TeamActive {
		return TeamActive, a.seq[len(a.seq)-1]
	}
	return NoAssignment, 0
}

//Sequence returns the frames observed so far.
func (a *Aggregator) Sequence() Sequence {
	return a.seq
}

//Track assigns the ball in every frame of s, sets HasControl on each winning
//player record (clearing it on every other player of that frame) and returns the resulting team-control sequence. Frames with
//no usable ball box count as frames without possession.
func Track(s *track.Store, a *Assigner, agg *Aggregator) Sequence {
	for i, players := range s.Players {
		for _, rec := range players {
			if rec != nil {
				rec.HasControl = false
			}
		}
		ball, ok := s.BallBBox(i)
		if !ok {
			agg.ObserveNone()
			continue
		}
		id, ok := a.Assign(players, ball)
		if !ok {
			agg.ObserveNone()
			continue
		}
		players[id].HasControl = true
		agg.Observe(players[id].Team)
	}
	s.Bump()
	return agg.Sequence()
}
