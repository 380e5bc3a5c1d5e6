package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// RepeatPolicy selects how analytics treat repeated submissions for the
// same (student, worksheet, question) triple. All submissions are stored
// either way; the policy only changes what aggregates count.
type RepeatPolicy string

const (
	RepeatAll    RepeatPolicy = "all"
	RepeatLatest RepeatPolicy = "latest"
)

type DatabaseConfig struct {
	Path string `json:"path"`
}

type ImagesConfig struct {
	QuestionDir string `json:"question_images_dir"`
	AnswerDir   string `json:"answer_images_dir"`
}

type OutputConfig struct {
	WorksheetDir string `json:"worksheets_dir"`
}

type UIConfig struct {
	Theme    string `json:"theme" validate:"oneof=light dark"`
	FontSize int    `json:"font_size" validate:"min=6,max=32"`
}

type ScoringConfig struct {
	// FuzzyThreshold is the minimum similarity (0..1) for a free-response
	// answer to count as correct.
	FuzzyThreshold float64      `json:"fuzzy_threshold" validate:"min=0,max=1"`
	RepeatPolicy   RepeatPolicy `json:"repeat_policy" validate:"oneof=all latest"`
}

// Config enumerates every recognized application setting with its default.
// It is persisted as a JSON settings file and never accessed as a loose map.
type Config struct {
	Addr        string         `json:"addr"`
	Environment string         `json:"environment"`
	Database    DatabaseConfig `json:"database"`
	Images      ImagesConfig   `json:"images"`
	Output      OutputConfig   `json:"output"`
	UI          UIConfig       `json:"ui"`
	Scoring     ScoringConfig  `json:"scoring"`

	path string
}

func Default() *Config {
	return &Config{
		Addr:        ":8080",
		Environment: "development",
		Database:    DatabaseConfig{Path: "data/satbank.db"},
		Images: ImagesConfig{
			QuestionDir: "data/images/questions",
			AnswerDir:   "data/images/answers",
		},
		Output:  OutputConfig{WorksheetDir: "data/worksheets"},
		UI:      UIConfig{Theme: "light", FontSize: 12},
		Scoring: ScoringConfig{FuzzyThreshold: 0.85, RepeatPolicy: RepeatLatest},
	}
}

// Load reads the settings file at path, creating it with defaults when it
// does not exist yet. Required directories are created on every load.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.ensureDirectories(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv resolves the settings-file path and environment from the
// process environment and loads the configuration.
func LoadFromEnv() (*Config, error) {
	cfg, err := Load(getEnv("SATBANK_CONFIG", "config/config.json"))
	if err != nil {
		return nil, err
	}
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.Addr = getEnv("ADDR", cfg.Addr)
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("config: database.path is required")
	}
	if c.Images.QuestionDir == "" || c.Images.AnswerDir == "" {
		return errors.New("config: both image directories are required")
	}
	if c.Output.WorksheetDir == "" {
		return errors.New("config: output.worksheets_dir is required")
	}
	if c.Scoring.FuzzyThreshold < 0 || c.Scoring.FuzzyThreshold > 1 {
		return fmt.Errorf("config: fuzzy_threshold %v outside [0,1]", c.Scoring.FuzzyThreshold)
	}
	switch c.Scoring.RepeatPolicy {
	case RepeatAll, RepeatLatest:
	default:
		return fmt.Errorf("config: unknown repeat_policy %q", c.Scoring.RepeatPolicy)
	}
	return nil
}

// Save persists the current configuration back to its settings file.
func (c *Config) Save() error {
	if c.path == "" {
		return errors.New("config: no settings file path set")
	}
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o644)
}

// ImageBaseDir is the common parent of the image directories, used when
// resolving relative image references on import.
func (c *Config) ImageBaseDir() string {
	return filepath.Dir(c.Images.QuestionDir)
}

func (c *Config) ensureDirectories() error {
	dirs := []string{
		filepath.Dir(c.Database.Path),
		c.Images.QuestionDir,
		c.Images.AnswerDir,
		c.Output.WorksheetDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
