package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding config keys (LABELER_DISPLAY_SCALE...).
const EnvPrefix = "LABELER"

var (
	ErrInvalidScale = errors.New("display_scale must be within (0, 1]")
	ErrNoLabels     = errors.New("labels must not be empty")
	ErrInvalidColor = errors.New("box_color must be a #rrggbb hex color")
)

// Config holds runtime configuration for the labeler.
// Fields may be loaded from a JSON or YAML file, the environment and command-line flags.
type Config struct {
	Debug    bool `json:"debug" mapstructure:"debug"`
	DarkMode bool `json:"dark_mode" mapstructure:"dark_mode"`

	// Locations
	InputDir     string `json:"input_dir" mapstructure:"input_dir"`
	OutputDir    string `json:"output_dir" mapstructure:"output_dir"`
	CSVPath      string `json:"csv_path" mapstructure:"csv_path"`
	ImageExt     string `json:"image_ext" mapstructure:"image_ext"`
	OutputPrefix string `json:"output_prefix" mapstructure:"output_prefix"`

	// Export
	OutputFormat  string `json:"output_format" mapstructure:"output_format"`
	OutputQuality int    `json:"output_quality" mapstructure:"output_quality"`

	// Display and drawing
	DisplayScale float64 `json:"display_scale" mapstructure:"display_scale"`
	BoxThickness int     `json:"box_thickness" mapstructure:"box_thickness"`
	BoxColor     string  `json:"box_color" mapstructure:"box_color"`

	// Label vocabulary
	Labels []string `json:"labels" mapstructure:"labels"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:         false,
		DarkMode:      false,
		InputDir:      "standardized_training_images",
		OutputDir:     "altered_images",
		CSVPath:       "annotations.csv",
		ImageExt:      "jpg",
		OutputPrefix:  "boxed_",
		OutputFormat:  "jpg",
		OutputQuality: 95,
		DisplayScale:  0.5,
		BoxThickness:  2,
		BoxColor:      "#00ff00",
		Labels:        []string{"lp", "eo", "logo", "ss"},
	}
}

// Validate clamps/normalizes soft values to safe ranges. Values the labeler cannot
// run with (scale, vocabulary, color) are reported as errors.
func (c *Config) Validate() error {
	def := DefaultConfig()
	if c.DisplayScale <= 0 || c.DisplayScale > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidScale, c.DisplayScale)
	}
	if c.BoxThickness <= 0 {
		c.BoxThickness = def.BoxThickness
	}
	if c.OutputQuality < 1 || c.OutputQuality > 100 {
		c.OutputQuality = def.OutputQuality
	}
	c.OutputFormat = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.OutputFormat), "."))
	switch c.OutputFormat {
	case "jpg", "jpeg", "png", "webp":
	default:
		c.OutputFormat = def.OutputFormat
	}
	c.ImageExt = strings.TrimPrefix(strings.TrimSpace(c.ImageExt), ".")
	if c.ImageExt == "" {
		c.ImageExt = def.ImageExt
	}
	if c.InputDir == "" {
		c.InputDir = def.InputDir
	}
	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}
	if c.CSVPath == "" {
		c.CSVPath = def.CSVPath
	}
	if _, err := c.BoxRGBA(); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(c.Labels))
	labels := c.Labels[:0]
	for _, l := range c.Labels {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		labels = append(labels, l)
	}
	c.Labels = labels
	if len(c.Labels) == 0 {
		return ErrNoLabels
	}
	return nil
}

// BoxRGBA parses BoxColor.
func (c *Config) BoxRGBA() (color.NRGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(c.BoxColor), "#")
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, c.BoxColor)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, c.BoxColor)
	}
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// ImagePath resolves the source image for an image identifier (no extension).
func (c *Config) ImagePath(imageID string) string {
	return filepath.Join(c.InputDir, imageID+"."+c.ImageExt)
}

// OutputPath resolves the export location for an image identifier.
func (c *Config) OutputPath(imageID string) string {
	return filepath.Join(c.OutputDir, c.OutputPrefix+imageID+"."+c.OutputFormat)
}

// Load reads configuration through viper. An explicit path that does not exist, or no
// config file in the search paths, yields DefaultConfig() with environment overrides.
// bind, when non-nil, lets the caller attach command-line flags before unmarshalling.
func Load(path string, bind func(v *viper.Viper) error) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("labeler")
		for _, p := range searchPaths() {
			v.AddConfigPath(p)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), fmt.Errorf("read config: %w", err)
		}
	}
	if bind != nil {
		if err := bind(v); err != nil {
			return DefaultConfig(), fmt.Errorf("bind flags: %w", err)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("debug", d.Debug)
	v.SetDefault("dark_mode", d.DarkMode)
	v.SetDefault("input_dir", d.InputDir)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("csv_path", d.CSVPath)
	v.SetDefault("image_ext", d.ImageExt)
	v.SetDefault("output_prefix", d.OutputPrefix)
	v.SetDefault("output_format", d.OutputFormat)
	v.SetDefault("output_quality", d.OutputQuality)
	v.SetDefault("display_scale", d.DisplayScale)
	v.SetDefault("box_thickness", d.BoxThickness)
	v.SetDefault("box_color", d.BoxColor)
	v.SetDefault("labels", d.Labels)
}

// searchPaths lists directories probed for labeler.{json,yaml}.
func searchPaths() []string {
	paths := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "pixel-labeler"))
	}
	return paths
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
