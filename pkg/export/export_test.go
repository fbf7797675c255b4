package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/chenBenjamin97/pitchside/pkg/possession"
	"github.com/chenBenjamin97/pitchside/pkg/track"
)

func exportStore() *track.Store {
	s := track.NewStore(1)
	s.Players[0][3] = &track.Record{
		BBox: track.BBox{1, 2, 3, 4},
		Team: 2,
		TeamColor: &track.Color{Array: &track.NumericArray{
			DType: "uint8", Shape: []int{3}, Data: []float64{200, 10, 10},
		}},
	}
	s.Players[0][track.SentinelID] = &track.Record{}
	return s
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": JSON, "JSON": JSON, "yml": YAML, " yaml ": YAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("csv")
	assert.Error(t, err)
	assert.Equal(t, ".yaml", YAML.Ext())
}

func TestTracks_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Tracks(&buf, exportStore(), JSON))

	assert.Contains(t, buf.String(), "\n    \"players\": [", "four space indent")

	var decoded struct {
		Players []map[string]map[string]any `json:"players"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Players, 1)
	assert.NotContains(t, decoded.Players[0], "-1")
	assert.Equal(t, []any{200.0, 10.0, 10.0}, decoded.Players[0]["3"]["team_color"])
}

func TestTracks_FlattensEveryClassColor(t *testing.T) {
	s := exportStore()
	s.Referees[0][4] = &track.Record{
		BBox:      track.BBox{5, 5, 9, 20},
		TeamColor: &track.Color{Array: &track.NumericArray{DType: "uint8", Shape: []int{3}, Data: []float64{1, 2, 3}}},
	}
	s.Ball[0][track.BallID] = &track.Record{
		BBox:      track.BBox{0, 0, 2, 2},
		TeamColor: &track.Color{Array: &track.NumericArray{DType: "float32", Shape: []int{3}, Data: []float64{0.5, 0, 0}}},
	}

	var buf bytes.Buffer
	require.NoError(t, Tracks(&buf, s, JSON))
	assert.NotContains(t, buf.String(), "dtype")

	var decoded struct {
		Referees []map[string]map[string]any `json:"referees"`
		Ball     []map[string]map[string]any `json:"ball"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, []any{1.0, 2.0, 3.0}, decoded.Referees[0]["4"]["team_color"])
	assert.Equal(t, []any{0.5, 0.0, 0.0}, decoded.Ball[0]["1"]["team_color"])
}

func TestTracks_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Tracks(&buf, exportStore(), YAML))

	var got track.Store
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got.Players, 1)
	rec := got.Players[0][3]
	require.NotNil(t, rec)
	assert.Equal(t, []float64{200, 10, 10}, rec.TeamColor.Values())
	_, ok := got.Players[0][track.SentinelID]
	assert.False(t, ok)
}

func TestTracksFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tracks.json")
	require.NoError(t, TracksFile(path, exportStore(), JSON))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\n    "))
}

func TestBuildReport(t *testing.T) {
	s := track.NewStore(3)
	speeds := []float64{10, 20, 30}
	for i, v := range speeds {
		v, d := v, float64(i+1)
		s.Players[i][5] = &track.Record{Team: 1, Speed: &v, Distance: &d, HasControl: i == 0}
	}
	s.Players[1][6] = &track.Record{Team: 2}

	r := BuildReport(s, possession.Sequence{1, 1, 2})

	want := []PlayerStats{
		{ID: 5, Team: 1, Frames: 3, Controls: 1, MeanSpeed: 20, MaxSpeed: 30, Distance: 3},
		{ID: 6, Team: 2, Frames: 1},
	}
	if diff := cmp.Diff(want, r.Players); diff != "" {
		t.Errorf("players mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, r.Frames)
	assert.InDelta(t, 2.0/3, r.Possession.Team1, 1e-9)
}

func TestTeamControlChart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TeamControlChart(&buf, possession.Sequence{1, 1, 2, 2}))

	html := buf.String()
	assert.Contains(t, html, "Team Ball Control")
	assert.Contains(t, html, "Overall Ball Control")
}
