// Package resultlog persists one summary row per processed video.
package resultlog

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kikiluvv/svsorter/internal/summary"
	"github.com/kikiluvv/svsorter/pkg/util"
)

// Header is the first line of a fresh CSV log.
var Header = []string{"video_url", "matches", "wins", "losses"}

// CSV is an append-only CSV log. Existing rows are never rewritten.
type CSV struct {
	path string
}

func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

func (c *CSV) Path() string { return c.path }

// Append adds row, writing the header first if the file did not exist.
func (c *CSV) Append(_ context.Context, row summary.Row) error {
	if dir := filepath.Dir(c.path); dir != "." {
		if err := util.EnsureDir(dir); err != nil {
			return fmt.Errorf("create result log dir: %w", err)
		}
	}

	fresh := !util.FileExists(c.path)

	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open result log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	record := []string{
		row.Source,
		strconv.Itoa(row.Matches),
		strconv.Itoa(row.Wins),
		strconv.Itoa(row.Losses),
	}
	if err := w.Write(record); err != nil {
		return fmt.Errorf("write row: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush result log: %w", err)
	}
	return f.Close()
}
