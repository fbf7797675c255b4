package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/chenBenjamin97/pitchside/pkg/cache"
	"github.com/chenBenjamin97/pitchside/pkg/export"
	"github.com/chenBenjamin97/pitchside/pkg/pipeline"
	"github.com/chenBenjamin97/pitchside/pkg/possession"
	"github.com/chenBenjamin97/pitchside/pkg/track"
	"github.com/chenBenjamin97/pitchside/pkg/utils"
	"github.com/chenBenjamin97/pitchside/pkg/video"
)

//RunFunc analyzes one uploaded video
type RunFunc func(ctx context.Context, videoPath string) (*pipeline.Result, error)

//ArtifactsFunc returns the artifact cache of the video with given name (file name without extension)
type ArtifactsFunc func(name string) (*cache.Cache, error)

//Options are the directories the server reads and writes
type Options struct {
	OutputDir  string
	UploadsDir string
}

//Server exposes uploads, analysis runs and their results over HTTP
type Server struct {
	opts      Options
	run       RunFunc
	artifacts ArtifactsFunc
	log       *logrus.Entry

	runMu sync.Mutex //one analysis at a time, runs share the output directory
	wg    sync.WaitGroup

	statusMu sync.RWMutex
	status   map[string]*RunStatus
}

//RunStatus is the state of an upload's analysis
type RunStatus struct {
	State   string   `json:"state"`
	Outputs []string `json:"outputs,omitempty"`
	Error   string   `json:"error,omitempty"`
}

const (
	StateQueued  = "queued"
	StateRunning = "running"
	StateDone    = "done"
	StateFailed  = "failed"
)

func NewServer(opts Options, run RunFunc, artifacts ArtifactsFunc, log *logrus.Entry) *Server {
	if log == nil {
		log = logrus.WithField("component", "api")
	}
	return &Server{opts: opts, run: run, artifacts: artifacts, log: log, status: make(map[string]*RunStatus)}
}

//Wait blocks until every started analysis has finished
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) SetRouter() *gin.Engine {
	r := gin.Default()

	apiRoutes := r.Group("/api")

	apiRoutes.GET("/ReadyVideosNames", func(ctx *gin.Context) {
		s.listVideos(ctx, s.opts.OutputDir)
	})

	apiRoutes.GET("/UserUploadsVideosNames", func(ctx *gin.Context) {
		s.listVideos(ctx, s.opts.UploadsDir)
	})

	apiRoutes.GET("/Play", s.play)
	apiRoutes.POST("/Upload", s.upload)
	apiRoutes.GET("/Status", s.runStatus)
	apiRoutes.GET("/Tracks", s.tracks)
	apiRoutes.GET("/Possession", s.possession)
	apiRoutes.GET("/PossessionChart", s.possessionChart)

	return r
}

func (s *Server) listVideos(ctx *gin.Context, dir string) {
	names, err := utils.ListDir(dir)
	if err != nil {
		s.log.WithError(err).Error("api/list: could not list videos")
		ctx.Status(http.StatusInternalServerError)
		return
	}

	videos := make([]string, 0, len(names))
	for _, n := range names {
		if utils.IsVideo(n) {
			videos = append(videos, n)
		}
	}
	ctx.JSON(http.StatusOK, videos)
}

//play serves an uploaded video (analyzed=false) or one of its rendered outputs (analyzed=true, optional variant=circle|voronoi|line)
func (s *Server) play(ctx *gin.Context) {
	videoName := ctx.Query("name")
	if videoName == "" {
		ctx.Status(http.StatusNotAcceptable) //missing url parameter
		return
	}

	analyzed := ctx.Query("analyzed")
	if analyzed != "true" && analyzed != "false" {
		ctx.Status(http.StatusNotAcceptable) //missing url parameter
		return
	}

	var videoPath string
	if analyzed == "true" {
		variant := video.Overlay(ctx.Query("variant"))
		if variant != "" && !isOverlay(variant) {
			ctx.Status(http.StatusNotAcceptable)
			return
		}
		videoPath = pipeline.OutputPath(s.opts.OutputDir, videoName, variant)
	} else {
		found, err := s.findUpload(videoName)
		if err != nil {
			ctx.Status(http.StatusInternalServerError)
			return
		}
		videoPath = found
	}

	if videoPath == "" {
		ctx.Status(http.StatusNotFound)
		return
	}
	if _, err := os.Stat(videoPath); err != nil {
		if os.IsNotExist(err) {
			ctx.Status(http.StatusNotFound)
		} else {
			ctx.Status(http.StatusInternalServerError)
		}
		return
	}

	ctx.Header("Content-Type", "video/mp4")
	http.ServeFile(ctx.Writer, ctx.Request, videoPath)
}

func isOverlay(o video.Overlay) bool {
	for _, ov := range video.Overlays() {
		if ov == o {
			return true
		}
	}
	return false
}

//findUpload returns the path of the upload whose name without extension is stem, or "" if there is none
func (s *Server) findUpload(stem string) (string, error) {
	names, err := utils.ListDir(s.opts.UploadsDir)
	if err != nil {
		return "", err
	}
	for _, n := range names {
		if utils.IsVideo(n) && utils.Stem(n) == stem {
			return filepath.Join(s.opts.UploadsDir, n), nil
		}
	}
	return "", nil
}

func (s *Server) upload(ctx *gin.Context) {
	file, fHeader, err := ctx.Request.FormFile(utils.VideoFormField)
	if err != nil {
		ctx.Status(http.StatusBadRequest)
		return
	}
	defer file.Close()

	name := filepath.Base(fHeader.Filename)
	if !utils.IsVideo(name) || !utils.IsPlainName(utils.Stem(name)) {
		ctx.JSON(http.StatusNotAcceptable, gin.H{"error": "unsupported video format"})
		return
	}

	if existNames, err := utils.ListDir(s.opts.UploadsDir); err != nil {
		ctx.Status(http.StatusInternalServerError)
		return
	} else if utils.InSlice(name, existNames) {
		ctx.Status(http.StatusNotAcceptable)
		return
	}

	log := s.log.WithFields(logrus.Fields{"name": name, "size": fHeader.Size})
	log.Info("api/Upload: received new file")

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		log.WithError(err).Error("api/Upload: could not read request's body")
		ctx.Status(http.StatusInternalServerError)
		return
	}

	if err := os.MkdirAll(s.opts.UploadsDir, 0o755); err != nil {
		ctx.Status(http.StatusInternalServerError)
		return
	}
	srcFilePath := filepath.Join(s.opts.UploadsDir, name)
	if err := os.WriteFile(srcFilePath, fileBytes, utils.UploadFileMode); err != nil {
		log.WithError(err).Error("api/Upload: could not write file")
		ctx.Status(http.StatusInternalServerError)
		return
	}

	stem := utils.Stem(name)
	s.setStatus(stem, &RunStatus{State: StateQueued})
	s.wg.Add(1)
	go s.analyze(stem, srcFilePath)

	ctx.JSON(http.StatusAccepted, gin.H{"name": stem})
}

//analyze runs the pipeline for an upload in the background, one run at a time
func (s *Server) analyze(stem, path string) {
	defer s.wg.Done()

	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.setStatus(stem, &RunStatus{State: StateRunning})
	res, err := s.run(context.Background(), path)
	if err != nil {
		s.log.WithError(err).WithField("name", stem).Error("api/Upload: analysis failed")
		s.setStatus(stem, &RunStatus{State: StateFailed, Error: err.Error()})
		return
	}
	s.setStatus(stem, &RunStatus{State: StateDone, Outputs: res.Outputs})
}

func (s *Server) setStatus(stem string, st *RunStatus) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status[stem] = st
}

func (s *Server) runStatus(ctx *gin.Context) {
	s.statusMu.RLock()
	st, ok := s.status[ctx.Query("name")]
	s.statusMu.RUnlock()
	if !ok {
		ctx.Status(http.StatusNotFound)
		return
	}
	ctx.JSON(http.StatusOK, st)
}

//openArtifacts returns the artifact cache of the uploaded video named in the request, writing the error response itself.
//Only plain names of existing uploads are accepted, so every cache stays inside the cache directory.
func (s *Server) openArtifacts(ctx *gin.Context) (*cache.Cache, bool) {
	name := ctx.Query("name")
	if !utils.IsPlainName(name) {
		ctx.Status(http.StatusNotAcceptable)
		return nil, false
	}
	upload, err := s.findUpload(name)
	if err != nil {
		ctx.Status(http.StatusInternalServerError)
		return nil, false
	}
	if upload == "" {
		ctx.Status(http.StatusNotFound)
		return nil, false
	}
	c, err := s.artifacts(name)
	if err != nil {
		s.log.WithError(err).Error("api: could not open artifacts")
		ctx.Status(http.StatusInternalServerError)
		return nil, false
	}
	return c, true
}

//loadTracks reads the tracks artifact of the video named in the request, writing the error response itself
func (s *Server) loadTracks(ctx *gin.Context) (*cache.Cache, *track.Store, bool) {
	c, ok := s.openArtifacts(ctx)
	if !ok {
		return nil, nil, false
	}
	tracks, res := cache.Lookup[*track.Store](ctx.Request.Context(), c, cache.TracksKey)
	if res.Status != cache.Hit || tracks == nil {
		ctx.Status(http.StatusNotFound)
		return nil, nil, false
	}
	return c, tracks, true
}

func (s *Server) tracks(ctx *gin.Context) {
	format, err := export.ParseFormat(ctx.Query("format"))
	if err != nil {
		ctx.JSON(http.StatusNotAcceptable, gin.H{"error": err.Error()})
		return
	}
	_, tracks, ok := s.loadTracks(ctx)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.Tracks(&buf, tracks, format); err != nil {
		ctx.Status(http.StatusInternalServerError)
		return
	}
	contentType := "application/json"
	if format == export.YAML {
		contentType = "application/yaml"
	}
	ctx.Data(http.StatusOK, contentType, buf.Bytes())
}

func (s *Server) possession(ctx *gin.Context) {
	c, tracks, ok := s.loadTracks(ctx)
	if !ok {
		return
	}
	seq, res := cache.Lookup[possession.Sequence](ctx.Request.Context(), c, cache.TeamControlKey)
	if res.Status != cache.Hit {
		seq = nil
	}
	ctx.JSON(http.StatusOK, export.BuildReport(tracks, seq))
}

func (s *Server) possessionChart(ctx *gin.Context) {
	c, ok := s.openArtifacts(ctx)
	if !ok {
		return
	}
	seq, res := cache.Lookup[possession.Sequence](ctx.Request.Context(), c, cache.TeamControlKey)
	if res.Status != cache.Hit {
		ctx.Status(http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := export.TeamControlChart(&buf, seq); err != nil {
		ctx.Status(http.StatusInternalServerError)
		return
	}
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
