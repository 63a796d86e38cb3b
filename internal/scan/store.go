package scan

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/kikiluvv/svsorter/internal/classify"
	"github.com/kikiluvv/svsorter/internal/workspace"
)

const jpegQuality = 95

// Store writes sampled frames into the labelled screenshot folders.
type Store struct {
	layout *workspace.Layout
}

func NewStore(layout *workspace.Layout) *Store {
	return &Store{layout: layout}
}

// FileName builds the screenshot name for a sample.
func FileName(segment, second int, score float64) string {
	return fmt.Sprintf("chunk%03d_t%04d_%.3f%s", segment, second, score, workspace.ImageExt)
}

// Save writes the full frame and its top region under the result's label.
func (s *Store) Save(segment, second int, res classify.Result, frame image.Image) error {
	name := FileName(segment, second, res.Score)

	if err := writeJPEG(filepath.Join(s.layout.LabelDir(res.Label), name), frame); err != nil {
		return err
	}
	return writeJPEG(filepath.Join(s.layout.TopDir(res.Label), name), classify.TopRegion(frame))
}

func writeJPEG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create screenshot: %w", err)
	}

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
