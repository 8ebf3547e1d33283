// Package frames stores received camera frames on disk as JPEG files.
package frames

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	"brainbuddy/focusws/pkg/log"
)

// Writer saves frame batches below a root directory.
type Writer struct {
	dir    string
	logger *log.Logger
}

// NewWriter returns a Writer rooted at dir.
func NewWriter(dir string, logger *log.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// BatchDir is the directory batch number seq of user, taken at start, goes
// to. Millisecond timestamps plus the batch number keep consecutive batches
// apart.
func (w *Writer) BatchDir(user string, start time.Time, seq int) string {
	return filepath.Join(w.dir, filepath.Base(user), fmt.Sprintf("frames_%d_%04d", start.UnixMilli(), seq))
}

// Save decodes each frame and writes it as frame_NNNN.jpg. Frames that do
// not decode as an image are logged and skipped. It returns the batch
// directory and the number of files written.
func (w *Writer) Save(user string, start time.Time, seq int, batch [][]byte) (string, int, error) {
	dir := w.BatchDir(user, start, seq)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("creating %s: %w", dir, err)
	}

	written := 0
	for i, raw := range batch {
		img, _, err := image.Decode(bytes.NewReader(raw))
		if err != nil {
			w.logger.ErrorMsg("frame_%04d of %s: %s\n", i, user, err)
			continue
		}

		path := filepath.Join(dir, fmt.Sprintf("frame_%04d.jpg", i))
		if err := writeJPEG(path, img); err != nil {
			return dir, written, err
		}
		written++
	}

	w.logger.VerboseMsg("Saved %d images to %s", written, dir)
	return dir, written, nil
}

func writeJPEG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
		_ = f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
