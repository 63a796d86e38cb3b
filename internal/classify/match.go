package classify

import (
	"errors"
	"image"
	"math"

	"github.com/kikiluvv/svsorter/internal/templates"
	"github.com/nfnt/resize"
)

// ErrIncompatibleShape marks a template that cannot be aligned with the region.
var ErrIncompatibleShape = errors.New("template shape incompatible with region")

// TemplateScore is the outcome of matching one template. Skipped templates
// carry the reason in Err and do not contribute to the set score.
type TemplateScore struct {
	Name    string
	Score   float64
	Skipped bool
	Err     error
}

// ScoreSet matches every template in set against region, each template first
// stretched to the region width. The set score is the best non-skipped score,
// or 0 when there is none.
func ScoreSet(region image.Image, set templates.Set) (float64, []TemplateScore) {
	c := &Classifier{cache: make(map[cacheKey]*plane)}
	return c.scoreSet("", set, toPlane(region))
}

func (c *Classifier) scoreSet(label Label, set templates.Set, region *plane) (float64, []TemplateScore) {
	details := make([]TemplateScore, 0, set.Len())
	best := 0.0
	found := false

	for i, tmpl := range set.Templates() {
		tpl, err := c.prepared(label, i, tmpl, region.w)
		if err == nil {
			var score float64
			score, err = matchPlanes(region, tpl)
			if err == nil {
				details = append(details, TemplateScore{Name: tmpl.Name, Score: score})
				if !found || score > best {
					best, found = score, true
				}
				continue
			}
		}
		details = append(details, TemplateScore{Name: tmpl.Name, Skipped: true, Err: err})
	}

	if !found {
		return 0, details
	}
	return best, details
}

// prepared returns the template resized to width, memoised per width.
func (c *Classifier) prepared(label Label, index int, tmpl templates.Template, width int) (*plane, error) {
	key := cacheKey{set: label, index: index, width: width}
	if p, ok := c.cache[key]; ok {
		return p, nil
	}

	h := tmpl.Image.Bounds().Dy()
	if width <= 0 || h <= 0 {
		return nil, ErrIncompatibleShape
	}
	resized := resize.Resize(uint(width), uint(h), tmpl.Image, resize.Bilinear)
	p := toPlane(resized)
	c.cache[key] = p
	return p, nil
}

// MatchTemplate returns the maximum normalized correlation coefficient of
// tmpl over every placement inside region.
func MatchTemplate(region, tmpl image.Image) (float64, error) {
	return matchPlanes(toPlane(region), toPlane(tmpl))
}

// plane holds an image as three float channels in row-major order.
type plane struct {
	w, h int
	c    [3][]float64
}

func toPlane(img image.Image) *plane {
	b := img.Bounds()
	p := &plane{w: b.Dx(), h: b.Dy()}
	n := p.w * p.h
	for ch := range p.c {
		p.c[ch] = make([]float64, n)
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			p.c[0][i] = float64(r >> 8)
			p.c[1][i] = float64(g >> 8)
			p.c[2][i] = float64(bl >> 8)
			i++
		}
	}
	return p
}

// matchPlanes computes the correlation coefficient with the mean removed per
// channel and the three channels pooled, maximised over all offsets.
func matchPlanes(img, tpl *plane) (float64, error) {
	if tpl.w == 0 || tpl.h == 0 || tpl.w > img.w || tpl.h > img.h {
		return 0, ErrIncompatibleShape
	}

	n := float64(tpl.w * tpl.h)

	var centered [3][]float64
	tplNorm2 := 0.0
	for ch := range tpl.c {
		mean := 0.0
		for _, v := range tpl.c[ch] {
			mean += v
		}
		mean /= n

		centered[ch] = make([]float64, len(tpl.c[ch]))
		for i, v := range tpl.c[ch] {
			d := v - mean
			centered[ch][i] = d
			tplNorm2 += d * d
		}
	}

	best := math.Inf(-1)
	for y := 0; y <= img.h-tpl.h; y++ {
		for x := 0; x <= img.w-tpl.w; x++ {
			num, wndVar := 0.0, 0.0
			for ch := range img.c {
				sum, sum2, dot := 0.0, 0.0, 0.0
				for ty := 0; ty < tpl.h; ty++ {
					row := img.c[ch][(y+ty)*img.w+x : (y+ty)*img.w+x+tpl.w]
					trow := centered[ch][ty*tpl.w : (ty+1)*tpl.w]
					for tx, v := range row {
						sum += v
						sum2 += v * v
						dot += v * trow[tx]
					}
				}
				num += dot
				wndVar += sum2 - sum*sum/n
			}

			score := 0.0
			if denom := math.Sqrt(math.Max(wndVar, 0) * tplNorm2); denom > 1e-9 {
				score = math.Max(-1, math.Min(1, num/denom))
			}
			if score > best {
				best = score
			}
		}
	}

	return best, nil
}
