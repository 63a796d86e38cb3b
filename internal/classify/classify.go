// Package classify decides whether a frame shows a win banner, a lose banner
// or neither, by template matching on the top strip of the frame.
package classify

import (
	"image"

	"github.com/kikiluvv/svsorter/internal/templates"
	"github.com/rs/zerolog"
)

// Label is the outcome class of a frame.
type Label string

const (
	Win       Label = "win"
	Lose      Label = "lose"
	NonResult Label = "non_result"
)

// Labels lists every label in output-directory order.
var Labels = []Label{Win, Lose, NonResult}

// IsResult reports whether the label is a match outcome.
func (l Label) IsResult() bool {
	return l == Win || l == Lose
}

const (
	// DefaultThreshold is the score a class must exceed to be chosen.
	DefaultThreshold = 0.80

	// TopFraction is the share of frame height where result banners render.
	TopFraction = 0.2
)

// Result is the outcome of classifying one frame.
type Result struct {
	Label     Label
	Score     float64
	WinScore  float64
	LoseScore float64
}

// Classifier scores frames against the win and lose template sets.
// It is not safe for concurrent use.
type Classifier struct {
	logger    zerolog.Logger
	win       templates.Set
	lose      templates.Set
	threshold float64
	cache     map[cacheKey]*plane
}

type cacheKey struct {
	set   Label
	index int
	width int
}

// New creates a classifier. A non-positive threshold selects DefaultThreshold.
func New(logger zerolog.Logger, win, lose templates.Set, threshold float64) *Classifier {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Classifier{
		logger:    logger.With().Str("component", "classifier").Logger(),
		win:       win,
		lose:      lose,
		threshold: threshold,
		cache:     make(map[cacheKey]*plane),
	}
}

// Classify scores the top region of frame and applies the decision rule.
func (c *Classifier) Classify(frame image.Image) Result {
	region := toPlane(TopRegion(frame))

	winScore, winDetail := c.scoreSet(Win, c.win, region)
	loseScore, loseDetail := c.scoreSet(Lose, c.lose, region)

	for _, d := range append(winDetail, loseDetail...) {
		if d.Skipped {
			c.logger.Debug().Err(d.Err).Str("template", d.Name).Msg("template skipped")
		}
	}

	return Decide(winScore, loseScore, c.threshold)
}

// Decide applies the decision rule to a pair of set scores. Win is checked
// first and both comparisons are strict.
func Decide(winScore, loseScore, threshold float64) Result {
	res := Result{WinScore: winScore, LoseScore: loseScore}
	switch {
	case winScore > threshold && winScore > loseScore:
		res.Label, res.Score = Win, winScore
	case loseScore > threshold:
		res.Label, res.Score = Lose, loseScore
	default:
		res.Label = NonResult
		res.Score = winScore
		if loseScore > winScore {
			res.Score = loseScore
		}
	}
	return res
}

// TopRegion returns the top TopFraction of frame at full width.
func TopRegion(frame image.Image) image.Image {
	b := frame.Bounds()
	h := int(float64(b.Dy()) * TopFraction)
	r := image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+h)

	if s, ok := frame.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return s.SubImage(r)
	}

	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			out.Set(x, y, frame.At(r.Min.X+x, r.Min.Y+y))
		}
	}
	return out
}
