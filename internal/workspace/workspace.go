// Package workspace owns the on-disk layout of a run: split chunks, the
// downloaded source and the labelled screenshot folders.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kikiluvv/svsorter/internal/classify"
	"github.com/kikiluvv/svsorter/pkg/util"
)

// ImageExt is the extension of every persisted screenshot.
const ImageExt = ".jpg"

const (
	splitsDir      = "splits"
	screenshotsDir = "screenshots"
	sourceFile     = "low_quality.mp4"
	topSuffix      = "_top"
)

// Layout resolves paths under a workspace root.
type Layout struct {
	Root string
}

// New returns the layout rooted at root.
func New(root string) *Layout {
	return &Layout{Root: root}
}

func (l *Layout) SplitsDir() string      { return filepath.Join(l.Root, splitsDir) }
func (l *Layout) ScreenshotsDir() string { return filepath.Join(l.Root, screenshotsDir) }
func (l *Layout) SourcePath() string     { return filepath.Join(l.Root, sourceFile) }

// LabelDir is where full frames with the given label are written.
func (l *Layout) LabelDir(label classify.Label) string {
	return filepath.Join(l.ScreenshotsDir(), string(label))
}

// TopDir is where the cropped top regions for the given label are written.
func (l *Layout) TopDir(label classify.Label) string {
	return l.LabelDir(label) + topSuffix
}

// Prepare wipes the root and recreates the full directory tree.
func (l *Layout) Prepare() error {
	if err := os.RemoveAll(l.Root); err != nil {
		return fmt.Errorf("clear workspace: %w", err)
	}

	dirs := []string{l.SplitsDir()}
	for _, label := range classify.Labels {
		dirs = append(dirs, l.LabelDir(label), l.TopDir(label))
	}
	for _, dir := range dirs {
		if err := util.EnsureDir(dir); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// RemoveSource deletes the downloaded media. A missing file is not an error.
func (l *Layout) RemoveSource() error {
	if err := os.Remove(l.SourcePath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove source media: %w", err)
	}
	return nil
}

// Contains reports whether path resolves to a location inside the root.
func (l *Layout) Contains(path string) bool {
	root, err := filepath.Abs(l.Root)
	if err != nil {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
