package voronoi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenBenjamin97/pitchside/pkg/track"
)

func player(team int, x, y float64, color *track.Color) *track.Record {
	p := track.Point{x, y}
	return &track.Record{Team: team, PositionTransformed: &p, TeamColor: color}
}

func TestProject_BucketsByTeam(t *testing.T) {
	frame := track.Frame{
		track.SentinelID: player(1, 0, 0, track.RGB(9, 9, 9)),
		1:                player(1, 1, 2, track.RGB(255, 0, 0)),
		2:                player(2, 3, 4, track.RGB(0, 0, 255)),
		3:                player(1, 5, 6, track.RGB(250, 0, 0)),
		4:                player(3, 7, 8, track.RGB(0, 255, 0)), //referee-like team id
		5:                {Team: 2},                             //not transformed yet
	}

	p := Project(frame)

	assert.Equal(t, []track.Point{{1, 2}, {5, 6}}, p.Team1)
	assert.Equal(t, []track.Point{{3, 4}}, p.Team2)
	assert.Equal(t, []float64{250, 0, 0}, p.Team1Color, "last seen color wins")
	assert.Equal(t, []float64{0, 0, 255}, p.Team2Color)
}

func TestProject_EmptyFrame(t *testing.T) {
	p := Project(track.Frame{})
	assert.Empty(t, p.Team1)
	assert.Nil(t, p.Team1Color)
}

func TestProjectAll_OnePerFrame(t *testing.T) {
	s := track.NewStore(3)
	s.Players[1][7] = player(2, 1, 1, &track.Color{Array: &track.NumericArray{DType: "uint8", Data: []float64{1, 2, 3}}})

	out := ProjectAll(s)
	require.Len(t, out, 3)
	assert.Equal(t, []float64{1, 2, 3}, out[1].Team2Color)
}
