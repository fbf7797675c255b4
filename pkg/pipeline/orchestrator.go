//Package pipeline runs the end-to-end analysis of one football clip: decode,
//tracking, camera motion, enrichment, possession, rendering and output.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/chenBenjamin97/pitchside/pkg/cache"
	"github.com/chenBenjamin97/pitchside/pkg/camera"
	"github.com/chenBenjamin97/pitchside/pkg/possession"
	"github.com/chenBenjamin97/pitchside/pkg/track"
	"github.com/chenBenjamin97/pitchside/pkg/utils"
	"github.com/chenBenjamin97/pitchside/pkg/video"
)

//Config holds the per-run settings of an Orchestrator.
type Config struct {
	OutputDir   string
	UseCache    bool
	MaxDistance float64
	DefaultTeam int
}

//Deps are the adapters a run is built from.
type Deps struct {
	Frames      FrameSource
	Tracker     ObjectTracker
	Camera      CameraEstimator
	Transformer Transformer
	Speed       SpeedEstimator
	Renderer    Renderer
	Writer      VideoWriter
	Cache       *cache.Cache
	Logger      *logrus.Logger
}

//Result is what a completed run produced. Outputs lists only files that were written.
type Result struct {
	RunID          string
	Outputs        []string
	Tracks         *track.Store
	TeamControl    possession.Sequence
	CameraMovement []camera.Displacement
}

//Orchestrator runs the pipeline. It is not safe for concurrent runs that
//share a cache directory.
type Orchestrator struct {
	cfg  Config
	deps Deps
	log  *logrus.Entry

	newAssigner func(maxDistance float64) *possession.Assigner
}

//New returns an Orchestrator. A nil Deps.Logger means the standard logger.
func New(cfg Config, deps Deps) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if cfg.MaxDistance <= 0 {
		cfg.MaxDistance = possession.DefaultMaxDistance
	}
	if cfg.DefaultTeam == 0 {
		cfg.DefaultTeam = possession.DefaultTeam
	}
	return &Orchestrator{
		cfg:         cfg,
		deps:        deps,
		log:         logrus.NewEntry(logger).WithField("component", "pipeline"),
		newAssigner: possession.NewAssigner,
	}
}

//ValidateVideoPath checks that path names an existing regular file with a
//supported extension.
func ValidateVideoPath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: no video path given", ErrInvalidInput)
	}
	if !utils.IsVideo(path) {
		return fmt.Errorf("%w: unsupported video format %q (supported: %s)", ErrInvalidInput, filepath.Ext(path), strings.Join(utils.VideoExtensions, ", "))
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrInvalidInput, path)
	}
	return nil
}

//OutputPath returns where the main video (overlay "") or an overlay variant
//of videoPath is written.
func OutputPath(outputDir, videoPath string, overlay video.Overlay) string {
	base := utils.Stem(videoPath)
	if overlay != "" {
		base += "_" + string(overlay)
	}
	return filepath.Join(outputDir, base+utils.OutputExtension)
}

//Run analyses the video at videoPath. An input without frames is not an
//error: the run logs a warning, writes nothing and returns an empty Result.
func (o *Orchestrator) Run(ctx context.Context, videoPath string) (*Result, error) {
	runID := uuid.NewString()
	log := o.log.WithFields(logrus.Fields{"run_id": runID, "video": videoPath})
	c := o.deps.Cache.WithLogger(log)

	if err := ValidateVideoPath(videoPath); err != nil {
		log.WithError(err).Error("rejecting input")
		return nil, err
	}

	frames, err := o.deps.Frames.Read(ctx, videoPath)
	if err != nil {
		return nil, o.fail(log, StageDecode, err)
	}
	defer video.CloseAll(frames)
	if len(frames) == 0 {
		log.Warn("no frames extracted, skipping processing")
		return &Result{RunID: runID}, nil
	}
	n := len(frames)
	log = log.WithField("frames", n)
	clip := video.Clip{Path: videoPath, Frames: frames}

	tracks, status, err := cache.LoadOrCompute(ctx, c, cache.Stage[*track.Store]{
		Key: cache.TracksKey,
		Produce: func(ctx context.Context) (*track.Store, error) {
			s, err := o.deps.Tracker.GetObjectTracks(ctx, clip)
			if err != nil {
				return nil, err
			}
			if err := checkTracks(s, n); err != nil {
				return nil, err
			}
			track.AddPositions(s)
			return s, nil
		},
		Validate: func(s *track.Store) error { return checkTracks(s, n) },
	}, o.cfg.UseCache)
	if err != nil {
		return nil, o.fail(log, StageTracking, err)
	}
	track.Normalize(tracks)
	dirty := status != cache.Hit
	log.WithFields(logrus.Fields{"stage": StageTracking, "cache": status}).Info("stage complete")

	disp, status, err := cache.LoadOrCompute(ctx, c, cache.Stage[[]camera.Displacement]{
		Key: cache.CameraMovementKey,
		Produce: func(ctx context.Context) ([]camera.Displacement, error) {
			d, err := o.deps.Camera.GetCameraMovement(ctx, frames)
			if err != nil {
				return nil, err
			}
			return d, checkLen("camera movement", len(d), n)
		},
		Validate: func(d []camera.Displacement) error { return checkLen("camera movement", len(d), n) },
	}, o.cfg.UseCache)
	if err != nil {
		return nil, o.fail(log, StageCameraMotion, err)
	}
	if err := camera.AddToTracks(tracks, disp); err != nil {
		return nil, o.fail(log, StageCameraMotion, err)
	}
	log.WithFields(logrus.Fields{"stage": StageCameraMotion, "cache": status}).Info("stage complete")

	if !tracks.Enriched {
		o.deps.Transformer.AddTransformedPoint(tracks)
		tracks.Ball = o.deps.Tracker.InterpolateBallPosition(tracks.Ball)
		o.deps.Speed.AddSpeedAndDistance(tracks)
		if err := checkTracks(tracks, n); err != nil {
			return nil, o.fail(log, StageEnrichment, err)
		}
		tracks.Enriched = true
		dirty = true
		log.WithFields(logrus.Fields{"stage": StageEnrichment, "version": tracks.Version}).Info("stage complete")
	}

	teamControl, status, err := cache.LoadOrCompute(ctx, c, cache.Stage[possession.Sequence]{
		Key: cache.TeamControlKey,
		Produce: func(ctx context.Context) (possession.Sequence, error) {
			a := o.newAssigner(o.cfg.MaxDistance)
			agg := possession.NewAggregator(o.cfg.DefaultTeam, n)
			return possession.Track(tracks, a, agg), nil
		},
		Validate: func(seq possession.Sequence) error { return checkLen("team control", len(seq), n) },
	}, o.cfg.UseCache)
	if err != nil {
		return nil, o.fail(log, StagePossession, err)
	}
	if status != cache.Hit {
		dirty = true
	}
	share := possession.Summary(teamControl)
	log.WithFields(logrus.Fields{
		"stage": StagePossession, "cache": status, "team_1": share.Team1, "team_2": share.Team2,
	}).Info("stage complete")

	if dirty {
		c.SaveBestEffort(ctx, cache.TracksKey, tracks)
	}

	res := &Result{RunID: runID, Tracks: tracks, TeamControl: teamControl, CameraMovement: disp}
	rendered, err := o.deps.Renderer.Render(ctx, frames, video.Annotations{
		Tracks:         tracks,
		TeamControl:    teamControl,
		CameraMovement: disp,
	})
	if err != nil {
		return nil, o.fail(log, StageRender, err)
	}
	defer rendered.Close()

	outputs, err := o.writeOutputs(ctx, log, videoPath, rendered)
	if err != nil {
		return nil, err
	}
	res.Outputs = outputs
	log.WithField("outputs", len(outputs)).Info("run complete")
	return res, nil
}

//writeOutputs writes the main video and then every overlay. Empty variants
//are skipped with a warning; the first write failure aborts the rest.
func (o *Orchestrator) writeOutputs(ctx context.Context, log *logrus.Entry, videoPath string, r *video.Rendered) ([]string, error) {
	type output struct {
		path   string
		frames []video.Frame
	}
	outs := []output{{OutputPath(o.cfg.OutputDir, videoPath, ""), r.Main}}
	for _, ov := range video.Overlays() {
		outs = append(outs, output{OutputPath(o.cfg.OutputDir, videoPath, ov), r.Overlays[ov]})
	}

	var written []string
	for _, out := range outs {
		if len(out.frames) == 0 {
			log.WithField("path", out.path).Warn("no frames rendered for output, skipping")
			continue
		}
		if err := os.MkdirAll(filepath.Dir(out.path), 0o755); err != nil {
			return written, o.writeFailed(log, out.path, err)
		}
		if err := o.deps.Writer.Write(ctx, out.path, out.frames); err != nil {
			return written, o.writeFailed(log, out.path, err)
		}
		log.WithField("path", out.path).Info("saved video")
		written = append(written, out.path)
	}
	return written, nil
}

func (o *Orchestrator) writeFailed(log *logrus.Entry, path string, err error) error {
	log.WithField("path", path).WithError(err).Error("failed to save video, aborting remaining outputs")
	return &RenderError{Path: path, Err: err}
}

func (o *Orchestrator) fail(log *logrus.Entry, stage string, err error) error {
	entry := log.WithField("stage", stage).WithError(err)
	if errors.Is(err, context.Canceled) {
		entry.Warn("run cancelled")
	} else {
		entry.Error("stage failed, aborting run")
	}
	return &StageError{Stage: stage, Err: err}
}

func checkTracks(s *track.Store, frames int) error {
	if s == nil {
		return errors.New("empty tracks artifact")
	}
	if err := s.Validate(); err != nil {
		return err
	}
	return checkLen("tracks", s.FrameCount(), frames)
}

func checkLen(what string, got, want int) error {
	if got != want {
		return fmt.Errorf("%s cover %d frames, video has %d", what, got, want)
	}
	return nil
}
