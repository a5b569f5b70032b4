package records

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Header is the first row of every record file.
var Header = []string{"image", "x1", "y1", "x2", "y2", "label"}

// Row is one persisted box in original-image coordinates.
type Row struct {
	ImageID        string
	X1, Y1, X2, Y2 int
	Label          string
}

func (r Row) record() []string {
	return []string{
		r.ImageID,
		strconv.Itoa(r.X1),
		strconv.Itoa(r.Y1),
		strconv.Itoa(r.X2),
		strconv.Itoa(r.Y2),
		r.Label,
	}
}

// lineEnd matches the CRLF line endings csv writers in other tools produce for this file.
const lineEnd = "\r\n"

// Store is the CSV record file shared by every annotated image. Appends never touch
// existing rows; deletes rewrite the file keeping other images' rows in order.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore returns a store backed by path. The file is created lazily on first append.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{path: path, logger: logger}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Append adds one row at the end of the file, writing the header first when the file is
// missing or empty.
func (s *Store) Append(row Row) error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("records: create dir: %w", err)
		}
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("records: open: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("records: stat: %w", err)
	}
	w := csv.NewWriter(f)
	w.UseCRLF = true
	if info.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("records: write header: %w", err)
		}
	} else if err := terminateLastLine(f, info.Size()); err != nil {
		return err
	}
	if err := w.Write(row.record()); err != nil {
		return fmt.Errorf("records: write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("records: flush: %w", err)
	}
	s.logger.Debug("row appended", "image", row.ImageID, "label", row.Label, "path", s.path)
	return nil
}

// DeleteRowsFor removes every row whose image column equals imageID and returns how many
// were dropped. A missing file or a header-only file is left untouched. Rows of other
// images, unreadable ones included, are written back byte for byte.
func (s *Store) DeleteRowsFor(imageID string) (int, error) {
	raw, err := s.readRaw()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	if len(raw) <= 1 {
		return 0, nil
	}
	kept := make([][]byte, 0, len(raw))
	kept = append(kept, raw[0].raw)
	for _, rec := range raw[1:] {
		if rec.err == nil && rec.fields[0] == imageID {
			continue
		}
		kept = append(kept, rec.raw)
	}
	removed := len(raw) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := s.rewrite(kept); err != nil {
		return 0, err
	}
	s.logger.Info("rows deleted", "image", imageID, "removed", removed, "path", s.path)
	return removed, nil
}

// RowsFor returns the rows of imageID in file order. A missing file yields no rows.
func (s *Store) RowsFor(imageID string) ([]Row, error) {
	all, err := s.Rows()
	if err != nil {
		return nil, err
	}
	var out []Row
	for _, r := range all {
		if r.ImageID == imageID {
			out = append(out, r)
		}
	}
	return out, nil
}

// Rows returns every parseable row in file order. Malformed rows are logged and skipped.
func (s *Store) Rows() ([]Row, error) {
	raw, err := s.readRaw()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if len(raw) <= 1 {
		return nil, nil
	}
	rows := make([]Row, 0, len(raw)-1)
	for _, rec := range raw[1:] {
		if rec.err != nil {
			continue
		}
		row, err := parseRow(rec.fields)
		if err != nil {
			s.logger.Warn("skipping malformed row", "line", rec.line, "error", err, "path", s.path)
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// rawRecord is one record as read from disk. raw holds its exact bytes, including any
// blank lines before it and its line ending. err is set when the record could not be
// parsed; fields is nil then.
type rawRecord struct {
	fields []string
	raw    []byte
	line   int
	err    error
}

// readRaw reads every record of the file. Unparseable records are logged and returned
// with err set so one bad line never hides the rest of the file.
func (s *Store) readRaw() ([]rawRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	var out []rawRecord
	for {
		start := r.InputOffset()
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		end := r.InputOffset()
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) || end == start {
				return nil, fmt.Errorf("records: read %s: %w", s.path, err)
			}
			s.logger.Warn("skipping unreadable row", "line", perr.StartLine, "error", err, "path", s.path)
			out = append(out, rawRecord{raw: data[start:end], line: perr.StartLine, err: err})
			continue
		}
		line, _ := r.FieldPos(0)
		out = append(out, rawRecord{fields: rec, raw: data[start:end], line: line})
	}
	return out, nil
}

// rewrite replaces the file atomically through a sibling temp file. Every chunk is a
// complete record; one missing its line ending gets CRLF appended.
func (s *Store) rewrite(chunks [][]byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("records: temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	for _, c := range chunks {
		if !bytes.HasSuffix(c, []byte("\n")) {
			c = append(c[:len(c):len(c)], lineEnd...)
		}
		if _, err := tmp.Write(c); err != nil {
			tmp.Close()
			return fmt.Errorf("records: write rows: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("records: close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("records: replace: %w", err)
	}
	return nil
}

// terminateLastLine writes a line ending when the file's last byte is not one, so the
// appended row starts on its own line.
func terminateLastLine(f *os.File, size int64) error {
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, size-1); err != nil {
		return fmt.Errorf("records: read tail: %w", err)
	}
	if last[0] == '\n' {
		return nil
	}
	if _, err := f.WriteString(lineEnd); err != nil {
		return fmt.Errorf("records: terminate line: %w", err)
	}
	return nil
}

func parseRow(rec []string) (Row, error) {
	if len(rec) < len(Header) {
		return Row{}, fmt.Errorf("want %d fields, got %d", len(Header), len(rec))
	}
	var coords [4]int
	for i := range coords {
		v, err := parseCoord(rec[i+1])
		if err != nil {
			return Row{}, fmt.Errorf("%s: %w", Header[i+1], err)
		}
		coords[i] = v
	}
	return Row{
		ImageID: rec[0],
		X1:      coords[0],
		Y1:      coords[1],
		X2:      coords[2],
		Y2:      coords[3],
		Label:   strings.ToLower(strings.TrimSpace(rec[5])),
	}, nil
}

// parseCoord accepts integers and floats ("10.0"), truncating toward zero.
func parseCoord(s string) (int, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid coordinate %q", s)
	}
	return int(math.Trunc(f)), nil
}

// Encode writes rows to w as CSV, header first.
func Encode(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
