// Package history records per-owner population statistics of a session as
// Parquet rows, one row per owner per recorded generation.
package history

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"siege-ca/internal/siege"
)

var ErrClosed = errors.New("history writer is closed")

// GenerationRow is one owner's population at one generation.
type GenerationRow struct {
	Session    string `parquet:"session,dict"`
	Generation int64  `parquet:"generation"`
	Owner      int32  `parquet:"owner"`
	Alive      int64  `parquet:"alive"`
	Territory  int64  `parquet:"territory"`
}

// Writer streams rows into a temporary file and moves it to its final path
// on Close.
type Writer struct {
	mu      sync.Mutex
	path    string
	tmpPath string
	file    *os.File
	writer  *parquet.GenericWriter[GenerationRow]
	rows    int
}

// NewWriter creates the output directory and opens a temporary file next to path.
func NewWriter(path string) (*Writer, error) {
	if path == "" {
		return nil, errors.New("history path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open tmp parquet: %w", err)
	}

	w := parquet.NewGenericWriter[GenerationRow](
		f,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
	)
	w.SetKeyValueMetadata("schema", "siege_generation_v1")

	return &Writer{path: path, tmpPath: tmpPath, file: f, writer: w}, nil
}

// Path returns the final location of the file.
func (w *Writer) Path() string { return w.path }

// Rows returns how many rows were written so far.
func (w *Writer) Rows() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rows
}

// Record appends one row per owner, ordered by owner id.
func (w *Writer) Record(session string, generation uint64, owners map[uint8]siege.OwnerCount) error {
	if len(owners) == 0 {
		return nil
	}
	ids := make([]int, 0, len(owners))
	for id := range owners {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)

	rows := make([]GenerationRow, 0, len(ids))
	for _, id := range ids {
		oc := owners[uint8(id)]
		rows = append(rows, GenerationRow{
			Session:    session,
			Generation: int64(generation),
			Owner:      int32(id),
			Alive:      int64(oc.Alive),
			Territory:  int64(oc.Territory),
		})
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writer == nil {
		return ErrClosed
	}
	if _, err := w.writer.Write(rows); err != nil {
		return fmt.Errorf("write history rows: %w", err)
	}
	w.rows += len(rows)
	return nil
}

// Close flushes the file and renames it into place. With no rows written the
// temporary file is removed and nothing is produced.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writer == nil {
		return nil
	}

	closeErr := w.writer.Close()
	w.writer = nil
	_ = w.file.Sync()
	fileErr := w.file.Close()
	w.file = nil

	if closeErr != nil {
		return fmt.Errorf("close parquet writer: %w", closeErr)
	}
	if fileErr != nil {
		return fmt.Errorf("close parquet file: %w", fileErr)
	}
	if w.rows == 0 {
		_ = os.Remove(w.tmpPath)
		return nil
	}
	if err := os.Rename(w.tmpPath, w.path); err != nil {
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

// ReadRows loads every row of a history file.
func ReadRows(path string) ([]GenerationRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[GenerationRow](pf)
	defer reader.Close()

	rows := make([]GenerationRow, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	return rows[:n], nil
}
