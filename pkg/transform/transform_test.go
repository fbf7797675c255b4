package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenBenjamin97/pitchside/pkg/track"
)

func TestPoint_MapsCalibrationVertices(t *testing.T) {
	tr := Default()
	for i, px := range DefaultPixelVertices {
		got, ok := tr.Point(px)
		require.True(t, ok, "vertex %d is on the border", i)
		assert.InDelta(t, DefaultPitchVertices[i].X(), got.X(), 1e-6)
		assert.InDelta(t, DefaultPitchVertices[i].Y(), got.Y(), 1e-6)
	}
}

func TestPoint_AffineSquare(t *testing.T) {
	tr, err := New(
		[4]track.Point{{0, 0}, {100, 0}, {100, 100}, {0, 100}},
		[4]track.Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}},
	)
	require.NoError(t, err)

	got, ok := tr.Point(track.Point{50, 25})
	require.True(t, ok)
	assert.InDelta(t, 5, got.X(), 1e-9)
	assert.InDelta(t, 2.5, got.Y(), 1e-9)

	_, ok = tr.Point(track.Point{150, 25})
	assert.False(t, ok)
}

func TestAddTransformedPoint(t *testing.T) {
	s := track.NewStore(1)
	in, out := track.Point{600, 600}, track.Point{0, 0}
	s.Players[0][1] = &track.Record{PositionAdjusted: &in}
	s.Players[0][2] = &track.Record{PositionAdjusted: &out, PositionTransformed: &out}
	s.Players[0][3] = &track.Record{}

	Default().AddTransformedPoint(s)

	assert.NotNil(t, s.Players[0][1].PositionTransformed)
	assert.Nil(t, s.Players[0][2].PositionTransformed, "outside the calibrated area")
	assert.Nil(t, s.Players[0][3].PositionTransformed)
}
