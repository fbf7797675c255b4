package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddPositions(t *testing.T) {
	s := NewStore(1)
	s.Players[0][3] = &Record{BBox: BBox{10, 10, 30, 50}}
	s.Ball[0][BallID] = &Record{BBox: BBox{100, 100, 110, 120}}

	AddPositions(s)

	assert.Equal(t, Point{20, 50}, *s.Players[0][3].Position)
	assert.Equal(t, Point{105, 110}, *s.Ball[0][BallID].Position)
	assert.Equal(t, 1, s.Version)
}

func TestInterpolateBall_FillsGaps(t *testing.T) {
	frames := make([]Frame, 6)
	for i := range frames {
		frames[i] = Frame{}
	}
	frames[1][BallID] = &Record{BBox: BBox{0, 0, 10, 10}}
	frames[4][BallID] = &Record{BBox: BBox{30, 30, 40, 40}}

	out := InterpolateBall(frames)

	require.Len(t, out, 6)
	assert.Equal(t, BBox{0, 0, 10, 10}, out[0][BallID].BBox, "leading gap takes the first detection")
	assert.Equal(t, BBox{10, 10, 20, 20}, out[2][BallID].BBox)
	assert.Equal(t, BBox{20, 20, 30, 30}, out[3][BallID].BBox)
	assert.Equal(t, BBox{30, 30, 40, 40}, out[5][BallID].BBox, "trailing gap repeats the last detection")
	assert.Equal(t, Point{15, 15}, *out[2][BallID].Position)
}

func TestInterpolateBall_NeverSeen(t *testing.T) {
	frames := []Frame{{}, {}}
	out := InterpolateBall(frames)
	assert.Empty(t, out[0])
	assert.Empty(t, out[1])
}

func TestStore_Validate(t *testing.T) {
	s := NewStore(3)
	require.NoError(t, s.Validate())

	s.Ball = s.Ball[:2]
	require.Error(t, s.Validate())
}

func TestStore_BallBBox(t *testing.T) {
	s := NewStore(2)
	s.Ball[1][BallID] = &Record{BBox: BBox{1, 2, 3, 4}}

	_, ok := s.BallBBox(0)
	assert.False(t, ok)
	b, ok := s.BallBBox(1)
	assert.True(t, ok)
	assert.Equal(t, BBox{1, 2, 3, 4}, b)
	_, ok = s.BallBBox(5)
	assert.False(t, ok)
}
