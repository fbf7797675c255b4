package main

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/chenBenjamin97/pitchside/pkg/cache"
	"github.com/chenBenjamin97/pitchside/pkg/config"
	"github.com/chenBenjamin97/pitchside/pkg/pipeline"
	"github.com/chenBenjamin97/pitchside/pkg/speed"
	"github.com/chenBenjamin97/pitchside/pkg/transform"
	"github.com/chenBenjamin97/pitchside/pkg/utils"
	"github.com/chenBenjamin97/pitchside/pkg/video"
)

//newOrchestrator wires the production adapters from cfg
func newOrchestrator(cfg *config.Config, c *cache.Cache, logger *logrus.Logger) *pipeline.Orchestrator {
	tracker := video.NewSubprocessTracker(cfg.Tracker.Command, cfg.Tracker.Script, cfg.Model.Path)
	tracker.KeypointsModel = cfg.Model.KeypointsPath
	tracker.Log = logrus.NewEntry(logger).WithField("component", "tracker")

	return pipeline.New(pipeline.Config{
		OutputDir:   cfg.Output.Dir,
		UseCache:    cfg.Cache.Enabled,
		MaxDistance: cfg.Possession.MaxDistance,
		DefaultTeam: cfg.Possession.DefaultTeam,
	}, pipeline.Deps{
		Frames:      video.NewCapture(),
		Tracker:     tracker,
		Camera:      video.NewOpticalFlowEstimator(),
		Transformer: transform.Default(),
		Speed:       speed.New(cfg.Speed.FrameWindow, cfg.Speed.FrameRate),
		Renderer:    video.NewMatRenderer(),
		Writer:      video.NewWriter(cfg.Video.FPS),
		Cache:       c,
		Logger:      logger,
	})
}

//cacheRegistry opens one artifact cache per scope and closes them on exit.
//The empty scope is the CLI's single-video cache; serve scopes by video name.
type cacheRegistry struct {
	cfg *config.Config

	mu      sync.Mutex
	caches  map[string]*cache.Cache
	closers []func() error
}

func newCacheRegistry(cfg *config.Config) *cacheRegistry {
	return &cacheRegistry{cfg: cfg, caches: make(map[string]*cache.Cache)}
}

func (r *cacheRegistry) Open(scope string) (*cache.Cache, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.caches[scope]; ok {
		return c, nil
	}
	if scope != "" && !utils.IsPlainName(scope) {
		return nil, fmt.Errorf("invalid artifact scope %q", scope)
	}

	var c *cache.Cache
	switch r.cfg.Cache.Backend {
	case "sqlite":
		path := r.cfg.Cache.SQLitePath
		if scope != "" {
			path = filepath.Join(filepath.Dir(path), scope, filepath.Base(path))
		}
		store, err := cache.OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, store.Close)
		c = cache.New(store)
	default:
		c = cache.New(cache.NewFileStore(filepath.Join(r.cfg.Cache.Dir, scope)))
	}
	r.caches[scope] = c
	return c, nil
}

func (r *cacheRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, closeFn := range r.closers {
		if err := closeFn(); err != nil {
			logrus.WithError(err).Warn("closing artifact store")
		}
	}
}
