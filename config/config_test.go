package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"), nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labeler.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"display_scale": 1.0, "labels": ["LP", "car", "lp"], "csv_path": "x.csv"}`), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.DisplayScale)
	assert.Equal(t, []string{"lp", "car"}, cfg.Labels)
	assert.Equal(t, "x.csv", cfg.CSVPath)
	assert.Equal(t, "altered_images", cfg.OutputDir)
}

func TestLoad_EnvAndBindOverrides(t *testing.T) {
	t.Setenv("LABELER_OUTPUT_DIR", "from-env")
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"), func(v *viper.Viper) error {
		v.Set("display_scale", 0.25)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.OutputDir)
	assert.Equal(t, 0.25, cfg.DisplayScale)
}

func TestLoad_InvalidScaleRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labeler.yaml")
	require.NoError(t, os.WriteFile(path, []byte("display_scale: 1.5\n"), 0o644))
	_, err := Load(path, nil)
	require.ErrorIs(t, err, ErrInvalidScale)
}

func TestValidate_ClampsSoftFields(t *testing.T) {
	c := DefaultConfig()
	c.BoxThickness = 0
	c.OutputQuality = 500
	c.OutputFormat = ".PNG"
	c.ImageExt = ".jpeg"
	require.NoError(t, c.Validate())
	assert.Equal(t, 2, c.BoxThickness)
	assert.Equal(t, 95, c.OutputQuality)
	assert.Equal(t, "png", c.OutputFormat)
	assert.Equal(t, "jpeg", c.ImageExt)

	c.OutputFormat = "tiff"
	require.NoError(t, c.Validate())
	assert.Equal(t, "jpg", c.OutputFormat)
}

func TestValidate_Errors(t *testing.T) {
	c := DefaultConfig()
	c.Labels = []string{" ", ""}
	assert.ErrorIs(t, c.Validate(), ErrNoLabels)

	c = DefaultConfig()
	c.BoxColor = "green"
	assert.ErrorIs(t, c.Validate(), ErrInvalidColor)
}

func TestBoxRGBA(t *testing.T) {
	c := DefaultConfig()
	c.BoxColor = "#FF8000"
	got, err := c.BoxRGBA()
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0x80, B: 0x00, A: 0xff}, got)
}

func TestPaths(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, filepath.Join("standardized_training_images", "car1.jpg"), c.ImagePath("car1"))
	assert.Equal(t, filepath.Join("altered_images", "boxed_car1.jpg"), c.OutputPath("car1"))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "labeler.json")
	c := DefaultConfig()
	c.DisplayScale = 1
	require.NoError(t, c.Save(path))
	got, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}
