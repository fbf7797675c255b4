package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chenBenjamin97/pitchside/pkg/cache"
	"github.com/chenBenjamin97/pitchside/pkg/export"
	"github.com/chenBenjamin97/pitchside/pkg/pipeline"
	"github.com/chenBenjamin97/pitchside/pkg/possession"
	"github.com/chenBenjamin97/pitchside/pkg/track"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetOutput(io.Discard)
	}
	os.Exit(m.Run())
}

type fixture struct {
	server   *Server
	router   *gin.Engine
	opts     Options
	cacheDir string
	opened   []string
}

func newFixture(t *testing.T, run RunFunc) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		opts:     Options{OutputDir: filepath.Join(dir, "outputs"), UploadsDir: filepath.Join(dir, "inputs")},
		cacheDir: filepath.Join(dir, "stubs"),
	}
	artifacts := func(name string) (*cache.Cache, error) {
		f.opened = append(f.opened, name)
		return cache.New(cache.NewFileStore(filepath.Join(f.cacheDir, name))), nil
	}
	if run == nil {
		run = writingRun(f.opts.OutputDir)
	}
	f.server = NewServer(f.opts, run, artifacts, nil)
	f.router = f.server.SetRouter()
	return f
}

//addUpload places a raw upload directly in the uploads directory
func (f *fixture) addUpload(t *testing.T, name string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(f.opts.UploadsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(f.opts.UploadsDir, name), []byte("raw video"), 0o644))
}

func (f *fixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func uploadRequest(t *testing.T, name string, body []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("video", name)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/Upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

//writes a fake rendered output next to where the pipeline would
func writingRun(outputDir string) RunFunc {
	return func(ctx context.Context, videoPath string) (*pipeline.Result, error) {
		out := pipeline.OutputPath(outputDir, videoPath, "")
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(out, []byte("rendered"), 0o644); err != nil {
			return nil, err
		}
		return &pipeline.Result{Outputs: []string{out}}, nil
	}
}

func TestUploadRunsAnalysis(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, uploadRequest(t, "derby.mp4", []byte("raw video")))
	require.Equal(t, http.StatusAccepted, w.Code)
	f.server.Wait()

	w = f.do(t, httptest.NewRequest(http.MethodGet, "/api/Status?name=derby", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var st RunStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, StateDone, st.State)
	assert.Len(t, st.Outputs, 1)

	w = f.do(t, httptest.NewRequest(http.MethodGet, "/api/ReadyVideosNames", nil))
	assert.JSONEq(t, `["derby.mp4"]`, w.Body.String())

	w = f.do(t, httptest.NewRequest(http.MethodGet, "/api/UserUploadsVideosNames", nil))
	assert.JSONEq(t, `["derby.mp4"]`, w.Body.String())

	w = f.do(t, httptest.NewRequest(http.MethodGet, "/api/Play?name=derby&analyzed=true", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "rendered", w.Body.String())

	w = f.do(t, httptest.NewRequest(http.MethodGet, "/api/Play?name=derby&analyzed=false", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "raw video", w.Body.String())
}

func TestUploadRejected(t *testing.T) {
	f := newFixture(t, nil)

	w := f.do(t, uploadRequest(t, "notes.txt", []byte("x")))
	assert.Equal(t, http.StatusNotAcceptable, w.Code)

	require.Equal(t, http.StatusAccepted, f.do(t, uploadRequest(t, "a.mov", []byte("x"))).Code)
	f.server.Wait()
	w = f.do(t, uploadRequest(t, "a.mov", []byte("x")))
	assert.Equal(t, http.StatusNotAcceptable, w.Code, "duplicate names are refused")
}

func TestFailedRunStatus(t *testing.T) {
	f := newFixture(t, func(ctx context.Context, videoPath string) (*pipeline.Result, error) {
		return nil, &pipeline.StageError{Stage: pipeline.StageTracking, Err: errors.New("tracker crashed")}
	})

	require.Equal(t, http.StatusAccepted, f.do(t, uploadRequest(t, "b.mp4", []byte("x"))).Code)
	f.server.Wait()

	w := f.do(t, httptest.NewRequest(http.MethodGet, "/api/Status?name=b", nil))
	var st RunStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	assert.Equal(t, StateFailed, st.State)
	assert.Contains(t, st.Error, "tracker crashed")
}

func TestPlayValidation(t *testing.T) {
	f := newFixture(t, nil)

	for url, code := range map[string]int{
		"/api/Play":                                      http.StatusNotAcceptable,
		"/api/Play?name=x&analyzed=maybe":                http.StatusNotAcceptable,
		"/api/Play?name=x&analyzed=true&variant=sketch":  http.StatusNotAcceptable,
		"/api/Play?name=x&analyzed=true&variant=voronoi": http.StatusNotFound,
		"/api/Play?name=x&analyzed=false":                http.StatusNotFound,
		"/api/Status?name=x":                             http.StatusNotFound,
	} {
		w := f.do(t, httptest.NewRequest(http.MethodGet, url, nil))
		assert.Equal(t, code, w.Code, url)
	}
}

func TestTracksAndPossession(t *testing.T) {
	f := newFixture(t, nil)
	f.addUpload(t, "derby.mp4")
	c := cache.New(cache.NewFileStore(filepath.Join(f.cacheDir, "derby")))
	ctx := context.Background()

	s := track.NewStore(2)
	s.Players[0][4] = &track.Record{BBox: track.BBox{1, 2, 3, 4}, Team: 2, HasControl: true}
	s.Players[0][track.SentinelID] = &track.Record{}
	require.NoError(t, c.Save(ctx, cache.TracksKey, s))
	require.NoError(t, c.Save(ctx, cache.TeamControlKey, possession.Sequence{2, 2}))

	w := f.do(t, httptest.NewRequest(http.MethodGet, "/api/Tracks?name=derby", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"-1"`)
	assert.Contains(t, w.Body.String(), "\n    \"players\"")

	w = f.do(t, httptest.NewRequest(http.MethodGet, "/api/Tracks?name=derby&format=yaml", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/yaml", w.Header().Get("Content-Type"))

	w = f.do(t, httptest.NewRequest(http.MethodGet, "/api/Possession?name=derby", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var report export.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 1.0, report.Possession.Team2)
	require.Len(t, report.Players, 1)
	assert.Equal(t, 1, report.Players[0].Controls)

	w = f.do(t, httptest.NewRequest(http.MethodGet, "/api/PossessionChart?name=derby", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, httptest.NewRequest(http.MethodGet, "/api/Tracks?name=unknown", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = f.do(t, httptest.NewRequest(http.MethodGet, "/api/Tracks?name=derby&format=csv", nil))
	assert.Equal(t, http.StatusNotAcceptable, w.Code)
}

func TestArtifactNamesStayInCacheDir(t *testing.T) {
	f := newFixture(t, nil)
	f.addUpload(t, "x.mp4")

	for _, url := range []string{
		"/api/PossessionChart?name=../../tmp/x",
		"/api/PossessionChart?name=",
		"/api/Tracks?name=..",
		"/api/Possession?name=a/../x",
	} {
		w := f.do(t, httptest.NewRequest(http.MethodGet, url, nil))
		assert.Equal(t, http.StatusNotAcceptable, w.Code, url)
	}

	w := f.do(t, httptest.NewRequest(http.MethodGet, "/api/PossessionChart?name=never-uploaded", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Empty(t, f.opened, "no artifact cache is opened for rejected or unknown names")
	_, err := os.Stat(filepath.Join(filepath.Dir(f.cacheDir), "tmp"))
	assert.True(t, os.IsNotExist(err))
}
