//Package config loads pitchside settings from an optional config.yaml, a
//.env file and PITCHSIDE_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const envPrefix = "PITCHSIDE"

//Config is the full runtime configuration. Stage code never reads viper;
//it receives the fields it needs from here.
type Config struct {
	Video      Video      `mapstructure:"video"`
	Model      Model      `mapstructure:"model"`
	Tracker    Tracker    `mapstructure:"tracker"`
	Output     Output     `mapstructure:"output"`
	Cache      Cache      `mapstructure:"cache"`
	Possession Possession `mapstructure:"possession"`
	Speed      Speed      `mapstructure:"speed"`
	HTTP       HTTP       `mapstructure:"http"`
	Log        Log        `mapstructure:"log"`
}

type Video struct {
	Path string  `mapstructure:"path"`
	FPS  float64 `mapstructure:"fps"`
}

type Model struct {
	Path          string `mapstructure:"path"`
	KeypointsPath string `mapstructure:"keypoints_path"`
}

type Tracker struct {
	Command string `mapstructure:"command"`
	Script  string `mapstructure:"script"`
}

type Output struct {
	Dir string `mapstructure:"dir"`
}

//Cache selects where stage artifacts are kept. Backend is "file" (one JSON
//file per artifact under Dir) or "sqlite" (a single database at SQLitePath).
type Cache struct {
	Enabled    bool   `mapstructure:"enabled"`
	Backend    string `mapstructure:"backend"`
	Dir        string `mapstructure:"dir"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type Possession struct {
	MaxDistance float64 `mapstructure:"max_distance"`
	DefaultTeam int     `mapstructure:"default_team"`
}

type Speed struct {
	FrameWindow int     `mapstructure:"frame_window"`
	FrameRate   float64 `mapstructure:"frame_rate"`
}

type HTTP struct {
	Port       int    `mapstructure:"port"`
	UploadsDir string `mapstructure:"uploads_dir"`
}

type Log struct {
	Level string `mapstructure:"level"`
}

//legacyEnv maps the unprefixed variables older deployments set to their
//keys. They only act as defaults, so config files and PITCHSIDE_ variables
//win over them.
var legacyEnv = map[string]string{
	"VIDEO_PATH":           "video.path",
	"LOAD_PKL":             "cache.enabled",
	"OUTPUTS_DIR":          "output.dir",
	"MODEL_PATH":           "model.path",
	"MODEL_KEYPOINTS_PATH": "model.keypoints_path",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("video.path", "")
	v.SetDefault("video.fps", 24.0)
	v.SetDefault("model.path", "models/yolov8n.pt")
	v.SetDefault("model.keypoints_path", "models/key_points_pitch_ver2.pt")
	v.SetDefault("tracker.command", "python3")
	v.SetDefault("tracker.script", "tracking/track.py")
	v.SetDefault("output.dir", "./outputs/")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", "file")
	v.SetDefault("cache.dir", "stubs")
	v.SetDefault("cache.sqlite_path", "stubs/artifacts.db")
	v.SetDefault("possession.max_distance", 70.0)
	v.SetDefault("possession.default_team", 1)
	v.SetDefault("speed.frame_window", 5)
	v.SetDefault("speed.frame_rate", 24.0)
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.uploads_dir", "./inputs/")
	v.SetDefault("log.level", "info")
}

//Load reads the configuration. path names an explicit config file; when it
//is empty an optional ./config.yaml is used if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	for env, key := range legacyEnv {
		if val, ok := os.LookupEnv(env); ok && val != "" {
			if key == "cache.enabled" {
				b, err := strconv.ParseBool(val)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", env, err)
				}
				v.SetDefault(key, b)
				continue
			}
			v.SetDefault(key, val)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

//Validate rejects settings no run could use.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("cache.backend must be file or sqlite, got %q", c.Cache.Backend)
	}
	if c.Possession.MaxDistance <= 0 {
		return fmt.Errorf("possession.max_distance must be positive, got %v", c.Possession.MaxDistance)
	}
	if c.Speed.FrameWindow <= 0 || c.Speed.FrameRate <= 0 {
		return errors.New("speed.frame_window and speed.frame_rate must be positive")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

//LogLevel returns the configured logrus level.
func (c *Config) LogLevel() logrus.Level {
	lvl, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
