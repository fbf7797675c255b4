package video

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/chenBenjamin97/pitchside/pkg/track"
)

const (
	frameMarker = "Frame #:"
	eofMarker   = "EOF"
)

//SubprocessTracker runs a python detection + tracking script (YOLO based) over the whole video and reads its results from the script's
//standard output: a "Frame #: N" line opens every frame, each tracked object follows as one JSON line, and "EOF" ends the stream.
type SubprocessTracker struct {
	Command        string
	Script         string
	Model          string
	KeypointsModel string
	Log            *logrus.Entry
}

//NewSubprocessTracker returns a tracker running "command script --video <path> --model <model>"
func NewSubprocessTracker(command, script, model string) *SubprocessTracker {
	return &SubprocessTracker{
		Command: command,
		Script:  script,
		Model:   model,
		Log:     logrus.WithField("component", "tracker"),
	}
}

func (t *SubprocessTracker) args(videoPath string) []string {
	args := []string{t.Script, "--video", videoPath, "--model", t.Model}
	if t.KeypointsModel != "" {
		args = append(args, "--keypoints-model", t.KeypointsModel)
	}
	return args
}

//GetObjectTracks executes the tracking script for clip and returns a store covering exactly len(clip.Frames) frames
func (t *SubprocessTracker) GetObjectTracks(ctx context.Context, clip Clip) (*track.Store, error) {
	cmd := exec.CommandContext(ctx, t.Command, t.args(clip.Path)...)

	stderr := t.Log.WriterLevel(logrus.DebugLevel)
	defer stderr.Close()
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("tracker stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting tracker: %w", err)
	}

	store, parseErr := parseTracks(stdout, t.Log)
	//drain so the script never blocks on a full pipe after a parse error
	io.Copy(io.Discard, stdout)

	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("tracker process: %w", err)
	}
	if parseErr != nil {
		return nil, parseErr
	}
	if store.FrameCount() > len(clip.Frames) {
		return nil, fmt.Errorf("tracker reported %d frames, video has %d", store.FrameCount(), len(clip.Frames))
	}
	store.Grow(len(clip.Frames))
	return store, nil
}

//InterpolateBallPosition fills the frames in which the ball was not detected
func (t *SubprocessTracker) InterpolateBallPosition(ball []track.Frame) []track.Frame {
	return track.InterpolateBall(ball)
}

//parseTracks reads the script's output. Lines that are neither markers nor JSON are the script's own logs and are skipped.
func parseTracks(r io.Reader, log *logrus.Entry) (*track.Store, error) {
	store := track.NewStore(0)
	frame := -1
	sawEOF := false

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == eofMarker:
			sawEOF = true
		case strings.HasPrefix(line, frameMarker):
			frame++
			store.Grow(frame + 1)
		case strings.HasPrefix(line, "{"):
			if frame < 0 {
				return nil, errors.New("tracker printed a detection before the first frame marker")
			}
			d := detection{}
			if err := json.Unmarshal([]byte(line), &d); err != nil {
				log.WithError(err).WithField("frame", frame).Warn("skipping malformed detection")
				continue
			}
			class, ok := storeClass(d.Class)
			if !ok {
				log.WithField("class", d.Class).Debug("skipping unknown class")
				continue
			}
			id := d.ID
			if class == track.Ball {
				id = track.BallID
			}
			store.Class(class)[frame][id] = d.record()
		default:
			log.Debug(line)
		}
		if sawEOF {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading tracker output: %w", err)
	}
	if !sawEOF {
		log.Warn("tracker output ended without EOF marker")
	}
	return store, nil
}
