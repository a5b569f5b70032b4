package export

import (
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/soocke/pixel-labeler/ui/images"
)

// Source renders the committed boxes onto a full-resolution image.
type Source interface {
	Export(original image.Image) *image.NRGBA
}

// Target describes where and how the annotated image is written.
type Target struct {
	Path    string
	Format  string
	Quality int
}

// Result is the outcome of one export.
type Result struct {
	Path string
	Err  error
}

// OK reports whether the file was written.
func (r Result) OK() bool { return r.Err == nil }

// Write burns the boxes of src into a copy of original and saves it to t.
func Write(src Source, original image.Image, t Target, logger *slog.Logger) Result {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if src == nil || original == nil {
		return Result{Path: t.Path, Err: fmt.Errorf("export: nothing to write")}
	}
	out := src.Export(original)
	if err := images.Save(out, t.Path, t.Format, t.Quality); err != nil {
		logger.Error("export failed", "path", t.Path, "error", err)
		return Result{Path: t.Path, Err: err}
	}
	logger.Info("exported", "path", t.Path, "format", t.Format)
	return Result{Path: t.Path}
}

// Report prints the operator-facing summary of r.
func Report(w io.Writer, r Result) error {
	if _, err := fmt.Fprintf(w, "Save success: %t\n", r.OK()); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Saved to: %s\n", r.Path)
	return err
}
