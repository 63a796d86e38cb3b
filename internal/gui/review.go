// Package gui provides a window for browsing sorted screenshots.
package gui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/kikiluvv/svsorter/internal/classify"
	"github.com/kikiluvv/svsorter/internal/workspace"
)

// Shot is one screenshot file with the fields encoded in its name.
type Shot struct {
	Name    string
	Path    string
	Segment int
	Second  int
	Score   float64
}

// Label is the text shown in the list.
func (s Shot) Label() string {
	return fmt.Sprintf("chunk %03d  %s  %.3f", s.Segment, clock(s.Second), s.Score)
}

func clock(sec int) string {
	return fmt.Sprintf("%02d:%02d", sec/60, sec%60)
}

// ParseShot decodes chunkNNN_tSSSS_S.SSS.jpg.
func ParseShot(name string) (Shot, bool) {
	base := strings.TrimSuffix(name, workspace.ImageExt)
	if base == name {
		return Shot{}, false
	}

	parts := strings.Split(base, "_")
	if len(parts) != 3 || !strings.HasPrefix(parts[0], "chunk") || !strings.HasPrefix(parts[1], "t") {
		return Shot{}, false
	}

	seg, err := strconv.Atoi(strings.TrimPrefix(parts[0], "chunk"))
	if err != nil {
		return Shot{}, false
	}
	sec, err := strconv.Atoi(strings.TrimPrefix(parts[1], "t"))
	if err != nil {
		return Shot{}, false
	}
	score, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return Shot{}, false
	}

	return Shot{Name: name, Segment: seg, Second: sec, Score: score}, true
}

// ListShots returns the screenshots in dir ordered by segment then second.
// Files that do not follow the naming scheme are ignored.
func ListShots(dir string) ([]Shot, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var shots []Shot
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		s, ok := ParseShot(e.Name())
		if !ok {
			continue
		}
		s.Path = filepath.Join(dir, e.Name())
		shots = append(shots, s)
	}

	sort.Slice(shots, func(i, j int) bool {
		if shots[i].Segment != shots[j].Segment {
			return shots[i].Segment < shots[j].Segment
		}
		return shots[i].Second < shots[j].Second
	})
	return shots, nil
}

// RunReview opens the review window and blocks until it is closed.
func RunReview(layout *workspace.Layout) error {
	a := app.NewWithID("svsorter")
	w := a.NewWindow("svsorter review")
	w.Resize(fyne.NewSize(1000, 600))

	content, err := NewReview(layout)
	if err != nil {
		return err
	}

	w.SetContent(content)
	w.ShowAndRun()
	return nil
}

// NewReview builds one tab per label, each a list of shots beside a preview.
func NewReview(layout *workspace.Layout) (*container.AppTabs, error) {
	tabs := container.NewAppTabs()

	for _, label := range classify.Labels {
		full, err := ListShots(layout.LabelDir(label))
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", label, err)
		}
		tabs.Append(container.NewTabItem(
			fmt.Sprintf("%s (%d)", label, len(full)),
			newLabelView(layout.TopDir(label), full),
		))
	}

	return tabs, nil
}

func newLabelView(topDir string, shots []Shot) fyne.CanvasObject {
	preview := canvas.NewImageFromFile("")
	preview.FillMode = canvas.ImageFillContain

	info := widget.NewLabel("No screenshot selected")
	showTop := widget.NewCheck("Top region only", nil)

	selected := -1
	show := func() {
		if selected < 0 || selected >= len(shots) {
			return
		}
		s := shots[selected]
		path := s.Path
		if showTop.Checked {
			path = filepath.Join(topDir, s.Name)
		}
		preview.File = path
		preview.Refresh()
		info.SetText(fmt.Sprintf("%s  segment %d  at %s  score %.3f", s.Name, s.Segment, clock(s.Second), s.Score))
	}
	showTop.OnChanged = func(bool) { show() }

	list := widget.NewList(
		func() int { return len(shots) },
		func() fyne.CanvasObject { return widget.NewLabel("chunk 000  00:00  0.000") },
		func(id widget.ListItemID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(shots[id].Label())
		},
	)
	list.OnSelected = func(id widget.ListItemID) {
		selected = id
		show()
	}

	right := container.NewBorder(container.NewHBox(showTop, info), nil, nil, nil, preview)
	split := container.NewHSplit(list, right)
	split.Offset = 0.3
	return split
}
