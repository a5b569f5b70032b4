package annotation

import (
	"fmt"
	"log/slog"
)

// LoadExisting returns the stored boxes of imageID in file order, mapped to display
// space. Rows carrying a label outside vocab are skipped.
func LoadExisting(src RowSource, imageID string, m Mapper, vocab Vocabulary, logger *slog.Logger) ([]Box, error) {
	rows, err := src.RowsFor(imageID)
	if err != nil {
		return nil, fmt.Errorf("load rows for %s: %w", imageID, err)
	}
	boxes := make([]Box, 0, len(rows))
	for _, r := range rows {
		if !vocab.Contains(r.Label) {
			if logger != nil {
				logger.Warn("skipping stored row with unknown label", "image", imageID, "label", r.Label)
			}
			continue
		}
		orig := Box{X1: r.X1, Y1: r.Y1, X2: r.X2, Y2: r.Y2, Label: r.Label}
		boxes = append(boxes, m.BoxToDisplay(orig))
	}
	return boxes, nil
}
