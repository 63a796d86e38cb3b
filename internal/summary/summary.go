// Package summary counts the screenshots a run produced and records the
// per-video outcome row.
package summary

import (
	"context"
	"errors"
	"fmt"

	"github.com/kikiluvv/svsorter/internal/classify"
	"github.com/kikiluvv/svsorter/internal/workspace"
	"github.com/kikiluvv/svsorter/pkg/util"
)

// Row is the outcome of one video.
type Row struct {
	Source  string
	Matches int
	Wins    int
	Losses  int
	Sampled int
}

// Appender persists summary rows.
type Appender interface {
	Append(ctx context.Context, row Row) error
}

// Count builds the row for source from the screenshots currently on disk.
func Count(layout *workspace.Layout, source string) (Row, error) {
	wins, err := util.CountWithExt(layout.LabelDir(classify.Win), workspace.ImageExt)
	if err != nil {
		return Row{}, fmt.Errorf("count wins: %w", err)
	}
	losses, err := util.CountWithExt(layout.LabelDir(classify.Lose), workspace.ImageExt)
	if err != nil {
		return Row{}, fmt.Errorf("count losses: %w", err)
	}

	return Row{
		Source:  source,
		Matches: wins + losses,
		Wins:    wins,
		Losses:  losses,
	}, nil
}

// Record appends row to every log. All logs are attempted; failures are joined.
func Record(ctx context.Context, row Row, logs ...Appender) error {
	var errs []error
	for _, l := range logs {
		if err := l.Append(ctx, row); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
