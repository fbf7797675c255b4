package video

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenBenjamin97/pitchside/pkg/track"
)

func nullLog() (*logrus.Entry, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logrus.NewEntry(logger), hook
}

func TestParseTracks(t *testing.T) {
	out := strings.Join([]string{
		"loading model weights",
		"Frame #: 1",
		`{"class":"player","id":7,"bbox":[10,20,30,60],"team":2,"team_color":[255,0,0]}`,
		`{"class":"goalkeeper","id":3,"bbox":[0,0,5,5]}`,
		`{"class":"sports ball","id":42,"bbox":[100,100,110,110]}`,
		"FPS: 12.5",
		"Frame #: 2",
		`{"class":"referee","id":11,"bbox":[1,1,2,2]}`,
		`{"class":"crowd","id":5,"bbox":[1,1,2,2]}`,
		"EOF",
		"Frame #: 3",
	}, "\n")
	log, _ := nullLog()

	s, err := parseTracks(strings.NewReader(out), log)
	require.NoError(t, err)

	assert.Equal(t, 2, s.FrameCount())
	require.NoError(t, s.Validate())
	p := s.Players[0][7]
	require.NotNil(t, p)
	assert.Equal(t, track.BBox{10, 20, 30, 60}, p.BBox)
	assert.Equal(t, 2, p.Team)
	assert.Equal(t, []float64{255, 0, 0}, p.TeamColor.Values())
	assert.Contains(t, s.Players[0], 3)
	assert.Contains(t, s.Ball[0], track.BallID, "the ball is always stored under BallID")
	assert.Contains(t, s.Referees[1], 11)
	assert.Len(t, s.Players[1], 0)
}

func TestParseTracks_MalformedLineIsSkipped(t *testing.T) {
	log, hook := nullLog()

	s, err := parseTracks(strings.NewReader("Frame #: 1\n{\"class\":\nEOF\n"), log)
	require.NoError(t, err)

	assert.Equal(t, 1, s.FrameCount())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestParseTracks_DetectionBeforeFrame(t *testing.T) {
	log, _ := nullLog()

	_, err := parseTracks(strings.NewReader(`{"class":"ball","id":1,"bbox":[0,0,1,1]}`), log)
	assert.Error(t, err)
}

func TestParseTracks_MissingEOFWarns(t *testing.T) {
	log, hook := nullLog()

	s, err := parseTracks(strings.NewReader("Frame #: 1\n"), log)
	require.NoError(t, err)

	assert.Equal(t, 1, s.FrameCount())
	assert.Equal(t, "tracker output ended without EOF marker", hook.LastEntry().Message)
}

func TestTrackerArgs(t *testing.T) {
	tr := NewSubprocessTracker("python3", "track.py", "yolo.pt")
	assert.Equal(t, []string{"track.py", "--video", "in.mp4", "--model", "yolo.pt"}, tr.args("in.mp4"))

	tr.KeypointsModel = "pitch.pt"
	assert.Equal(t, []string{"track.py", "--video", "in.mp4", "--model", "yolo.pt", "--keypoints-model", "pitch.pt"}, tr.args("in.mp4"))
}

type stubFrame struct{}

func (stubFrame) Size() (int, int) { return 4, 4 }
func (stubFrame) Close() error     { return nil }

func TestGetObjectTracks_PadsToClip(t *testing.T) {
	script := filepath.Join(t.TempDir(), "track.sh")
	require.NoError(t, os.WriteFile(script, []byte(`echo "Frame #: 1"
echo '{"class":"player","id":2,"bbox":[0,0,10,10],"team":1}'
echo "progress" 1>&2
echo EOF
`), 0o755))
	tr := NewSubprocessTracker("sh", script, "yolo.pt")
	tr.Log, _ = nullLog()

	s, err := tr.GetObjectTracks(context.Background(), Clip{Path: "in.mp4", Frames: []Frame{stubFrame{}, stubFrame{}, stubFrame{}}})
	require.NoError(t, err)

	assert.Equal(t, 3, s.FrameCount())
	assert.Contains(t, s.Players[0], 2)
	assert.NotNil(t, s.Ball[2])
}

func TestGetObjectTracks_ProcessFailure(t *testing.T) {
	script := filepath.Join(t.TempDir(), "track.sh")
	require.NoError(t, os.WriteFile(script, []byte("exit 3\n"), 0o755))
	tr := NewSubprocessTracker("sh", script, "yolo.pt")
	tr.Log, _ = nullLog()

	_, err := tr.GetObjectTracks(context.Background(), Clip{Path: "in.mp4"})
	assert.ErrorContains(t, err, "tracker process")
}
