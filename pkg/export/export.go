//Package export writes normalized track stores and possession summaries in
//portable formats: indented JSON, YAML and an HTML team-control chart.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chenBenjamin97/pitchside/pkg/track"
)

//Format is an export encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

//indent matches the layout of the legacy track dumps.
const indent = "    "

//ParseFormat accepts "json", "yaml" or "yml" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("unknown export format %q (expected json or yaml)", s)
}

//Ext returns the file extension for f.
func (f Format) Ext() string {
	if f == YAML {
		return ".yaml"
	}
	return ".json"
}

//Tracks normalizes s in place and encodes it to w. Team colors of every
//class are encoded as plain component lists.
func Tracks(w io.Writer, s *track.Store, f Format) error {
	track.Normalize(s)
	flattenColors(s)
	switch f {
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(len(indent))
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encoding tracks as yaml: %w", err)
		}
		return enc.Close()
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", indent)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encoding tracks as json: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown export format %q", f)
}

func flattenColors(s *track.Store) {
	s.Each(func(_ string, frames []track.Frame) {
		for _, frame := range frames {
			for _, rec := range frame {
				if rec == nil || rec.TeamColor == nil || rec.TeamColor.Plain() {
					continue
				}
				rec.TeamColor = &track.Color{Components: rec.TeamColor.Values()}
			}
		}
	})
}

//TracksFile writes s to path, creating parent directories.
func TracksFile(path string, s *track.Store, f Format) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	return Tracks(out, s, f)
}
