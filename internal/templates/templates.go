// Package templates loads the reference banner images each outcome class is
// matched against.
package templates

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Template is a single reference image.
type Template struct {
	Name  string
	Image image.Image
}

// Set is an ordered, immutable collection of templates for one class.
type Set struct {
	templates []Template
}

// NewSet builds a set from already decoded templates, keeping their order.
func NewSet(templates ...Template) Set {
	return Set{templates: append([]Template(nil), templates...)}
}

// Load decodes every image file in dir in filename order. Files that cannot
// be decoded are skipped. A missing or empty directory yields an empty set.
func Load(dir string) (Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("dir", dir).Msg("template folder not found, using empty set")
			return Set{}, nil
		}
		return Set{}, fmt.Errorf("read template dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	set := Set{}
	for _, name := range names {
		img, err := decode(filepath.Join(dir, name))
		if err != nil {
			log.Debug().Err(err).Str("file", name).Msg("skipping undecodable template")
			continue
		}
		set.templates = append(set.templates, Template{Name: name, Image: img})
	}

	log.Info().
		Str("dir", dir).
		Int("templates", len(set.templates)).
		Msg("templates loaded")

	return set, nil
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

// Len returns the number of templates.
func (s Set) Len() int { return len(s.templates) }

// Templates returns the templates in load order.
func (s Set) Templates() []Template { return s.templates }

// Names returns the template file names in load order.
func (s Set) Names() []string {
	names := make([]string, len(s.templates))
	for i, t := range s.templates {
		names[i] = t.Name
	}
	return names
}
