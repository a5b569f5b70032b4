package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/soocke/pixel-labeler/app"
	"github.com/soocke/pixel-labeler/config"
	"github.com/soocke/pixel-labeler/debug"
	"github.com/soocke/pixel-labeler/domain/capture"
	"github.com/soocke/pixel-labeler/domain/prompt"
	"github.com/soocke/pixel-labeler/domain/records"
	"github.com/soocke/pixel-labeler/ui/images"
)

// cli carries the process streams and the global flag values.
type cli struct {
	in         io.Reader
	out        io.Writer
	errOut     io.Writer
	configPath string
}

// newRootCommand builds `labeler <image_id>` and its subcommands.
func newRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	c := &cli{in: in, out: out, errOut: errOut}
	root := &cobra.Command{
		Use:          "labeler <image_id>",
		Short:        "Draw and label bounding boxes on an image",
		Long:         "Opens <input_dir>/<image_id>.<ext>, records one CSV row per labeled box and exports the image with boxes burned in on quit.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := c.setup(cmd, args[0])
			if err != nil {
				return err
			}
			return c.annotate(cmd.Context(), cfg, logger, args[0])
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "Path to a labeler config file (json or yaml)")
	pf.Float64("scale", 0, "Display scale in (0, 1]")
	pf.String("input-dir", "", "Directory holding the source images")
	pf.String("output-dir", "", "Directory receiving exported images")
	pf.String("csv", "", "Path of the annotation CSV file")
	pf.BoolP("debug", "d", false, "Enable debug logging and memory stats")

	root.AddCommand(c.rowsCommand(), c.cleanCommand(), c.captureCommand())
	return root
}

// flagKeys maps flags to config keys.
var flagKeys = map[string]string{
	"scale":      "display_scale",
	"input-dir":  "input_dir",
	"output-dir": "output_dir",
	"csv":        "csv_path",
	"debug":      "debug",
}

// setup loads the config with flags bound on top and builds the run logger.
func (c *cli) setup(cmd *cobra.Command, imageID string) (*config.Config, *slog.Logger, error) {
	if err := validateImageID(imageID); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(c.configPath, func(v *viper.Viper) error {
		for flag, key := range flagKeys {
			if f := cmd.Flags().Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(c.errOut, level).With("image", imageID)
	return cfg, logger, nil
}

// validateImageID rejects identifiers that would escape the configured directories or
// break the CSV image column.
func validateImageID(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return errors.New("image id must not be empty")
	case strings.ContainsAny(id, `/\,`) || id != filepath.Base(id) || id == "." || id == "..":
		return fmt.Errorf("invalid image id %q", id)
	}
	return nil
}

// annotate opens the window for imageID and blocks until the operator quits.
func (c *cli) annotate(ctx context.Context, cfg *config.Config, logger *slog.Logger, imageID string) error {
	path := cfg.ImagePath(imageID)
	original, err := images.Load(path)
	if err != nil {
		logger.Error("load image", "path", path, "error", err)
		return fmt.Errorf("failed to load image %s: %w", path, err)
	}
	logger.Info("image loaded", "path", path, "width", original.Bounds().Dx(), "height", original.Bounds().Dy(), "scale", cfg.DisplayScale)

	if f, ok := c.in.(*os.File); ok && !prompt.Interactive(f) {
		logger.Warn("stdin is not a terminal; labels are read from the input stream")
	}
	if cfg.Debug {
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, cancel := context.WithCancel(ctx)
		wait := debug.StartMemLogger(ctx, 2*time.Second, logger)
		defer func() { cancel(); wait() }()
	}

	container, err := app.BuildContainer(cfg, logger, imageID, original, c.in, c.out)
	if err != nil {
		return err
	}
	res := app.NewLabeler(container, c.out).Run()
	if !res.OK() {
		logger.Error("annotated image not saved", "path", res.Path, "error", res.Err)
	}
	return nil
}

func (c *cli) rowsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rows <image_id>",
		Short: "Print the stored rows of an image as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := c.setup(cmd, args[0])
			if err != nil {
				return err
			}
			rows, err := records.NewStore(cfg.CSVPath, logger).RowsFor(args[0])
			if err != nil {
				return err
			}
			return records.Encode(c.out, rows)
		},
	}
}

func (c *cli) cleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean <image_id>",
		Short: "Delete every stored row of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := c.setup(cmd, args[0])
			if err != nil {
				return err
			}
			removed, err := records.NewStore(cfg.CSVPath, logger).DeleteRowsFor(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(c.out, "Removed %d rows for %s\n", removed, args[0])
			return err
		},
	}
}

func (c *cli) captureCommand() *cobra.Command {
	var (
		delay  time.Duration
		region string
		noEdit bool
	)
	cmd := &cobra.Command{
		Use:   "capture <image_id>",
		Short: "Grab the screen as a new input image, then annotate it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := c.setup(cmd, args[0])
			if err != nil {
				return err
			}
			r, err := parseRegion(region)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			snap, err := capture.NewService(logger).Capture(ctx, delay, r)
			if err != nil {
				return err
			}
			path := cfg.ImagePath(args[0])
			if err := images.Save(snap.Image, path, cfg.ImageExt, cfg.OutputQuality); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Captured to: %s\n", path)
			if noEdit {
				return nil
			}
			return c.annotate(ctx, cfg, logger, args[0])
		},
	}
	cmd.Flags().DurationVar(&delay, "delay", 3*time.Second, "Wait before grabbing the screen")
	cmd.Flags().StringVar(&region, "region", "", "Capture only x,y,w,h of the screen")
	cmd.Flags().BoolVar(&noEdit, "no-annotate", false, "Save the capture without opening the window")
	return cmd
}

// parseRegion reads "x,y,w,h". An empty string selects the full screen.
func parseRegion(s string) (image.Rectangle, error) {
	if strings.TrimSpace(s) == "" {
		return image.Rectangle{}, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("region %q: want x,y,w,h", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("region %q: %w", s, err)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return image.Rectangle{}, fmt.Errorf("region %q: width and height must be positive", s)
	}
	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}
