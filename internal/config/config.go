// Package config loads pipeline configuration from a TOML file, overlaying
// values onto repository defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Detector configures board location.
type Detector struct {
	MinBoardSize int `toml:"min_board_size"`
	MaxBoardSize int `toml:"max_board_size"`
	BoardSize    int `toml:"board_size"`
}

// Classifier configures piece classification.
type Classifier struct {
	MinConfidence float64 `toml:"min_confidence"`
	ModelPath     string  `toml:"model_path"`
}

// Feedback configures the correction log.
type Feedback struct {
	LogPath string `toml:"log_path"`
}

// Config is the root configuration.
type Config struct {
	Detector   Detector   `toml:"detector"`
	Classifier Classifier `toml:"classifier"`
	Feedback   Feedback   `toml:"feedback"`
}

const (
	defaultMinBoardSize  = 200
	defaultMaxBoardSize  = 2000
	defaultBoardSize     = 800
	defaultMinConfidence = 0.5
	defaultModelPath     = "output/class_model.json"
	defaultFeedbackLog   = "output/piece_feedback.json"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Detector: Detector{
			MinBoardSize: defaultMinBoardSize,
			MaxBoardSize: defaultMaxBoardSize,
			BoardSize:    defaultBoardSize,
		},
		Classifier: Classifier{
			MinConfidence: defaultMinConfidence,
			ModelPath:     defaultModelPath,
		},
		Feedback: Feedback{
			LogPath: defaultFeedbackLog,
		},
	}
}

// Load reads the configuration file at path on top of the defaults. A
// missing file yields the defaults; an empty path skips the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
