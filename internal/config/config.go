package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Scenes contains configuration for content-change scene detection.
type Scenes struct {
	// Threshold is the ffmpeg scene score (0-1) above which a cut is declared.
	// Higher values produce fewer, longer scenes.
	Threshold   float64 `toml:"threshold"`
	FrameFormat string  `toml:"frame_format"`
}

// Audio contains configuration for audio clip extraction and captioning.
type Audio struct {
	MinClipSeconds float64 `toml:"min_clip_seconds"`
	CaptionBaseURL string  `toml:"caption_base_url"`
	CaptionTimeout int     `toml:"caption_timeout"`
}

// Vision contains configuration for the vision-language description model.
type Vision struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	MaxTokens      int    `toml:"max_tokens"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Knowledge contains configuration for the output record field set.
type Knowledge struct {
	Fields []string `toml:"fields"`
}

// Workflow contains retry policy for external collaborator calls.
type Workflow struct {
	RetryAttempts    int `toml:"retry_attempts"`
	RetryBaseSeconds int `toml:"retry_base_seconds"`
	RetryMaxSeconds  int `toml:"retry_max_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for ladle.
//
// Configuration sections by subsystem:
//   - Paths: video workspace root and log directory
//   - Scenes: content-change detector sensitivity and frame output format
//   - Audio: environment-sound clip padding and captioning service endpoint
//   - Vision: vision-language model connection settings
//   - Knowledge: output record field selection
//   - Workflow: retry policy for external collaborator calls
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Scenes    Scenes    `toml:"scenes"`
	Audio     Audio     `toml:"audio"`
	Vision    Vision    `toml:"vision"`
	Knowledge Knowledge `toml:"knowledge"`
	Workflow  Workflow  `toml:"workflow"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/ladle/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("ladle.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	c.Vision.APIKey = strings.TrimSpace(c.Vision.APIKey)
	c.Vision.BaseURL = strings.TrimSpace(c.Vision.BaseURL)
	c.Vision.Model = strings.TrimSpace(c.Vision.Model)
	c.Audio.CaptionBaseURL = strings.TrimRight(strings.TrimSpace(c.Audio.CaptionBaseURL), "/")
	if key := strings.TrimSpace(os.Getenv("LADLE_VISION_API_KEY")); key != "" && c.Vision.APIKey == "" {
		c.Vision.APIKey = key
	}
	normalized := make([]string, 0, len(c.Knowledge.Fields))
	for _, field := range c.Knowledge.Fields {
		field = strings.ToLower(strings.TrimSpace(field))
		if field != "" {
			normalized = append(normalized, field)
		}
	}
	c.Knowledge.Fields = normalized
	return nil
}

// EnsureDirectories creates the directories required for pipeline operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for media cutting and scene detection.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// WriteSample writes the embedded sample configuration to the given path.
func WriteSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
