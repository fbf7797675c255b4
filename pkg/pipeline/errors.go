package pipeline

import (
	"errors"
	"fmt"
)

//Stage names, as they appear in errors and log fields.
const (
	StageDecode       = "decode"
	StageTracking     = "tracking"
	StageCameraMotion = "camera_motion"
	StageEnrichment   = "enrichment"
	StagePossession   = "possession"
	StageRender       = "render"
)

//ErrInvalidInput is wrapped by every input validation error.
var ErrInvalidInput = errors.New("invalid input")

//StageError is a fatal failure of one pipeline stage.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

//RenderError is a failure to write one output video. Outputs after the
//failing one are not attempted.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
