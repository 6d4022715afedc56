package face

import (
	"fmt"
	"math"

	"github.com/saturnino-fabrica-de-software/iris/internal/provider"
)

// DefaultMatchThreshold is the SFace cosine score above which two faces are
// considered the same person.
const DefaultMatchThreshold = 0.363

// Comparator scores signature pairs and applies the match threshold.
// Scoring does not touch engine state, so it is called without the guard.
type Comparator struct {
	engine    provider.FaceEngine
	threshold float64
}

func NewComparator(engine provider.FaceEngine, threshold float64) *Comparator {
	return &Comparator{
		engine:    engine,
		threshold: threshold,
	}
}

func (c *Comparator) Threshold() float64 {
	return c.threshold
}

// Score returns the engine similarity of a and b
func (c *Comparator) Score(a, b provider.Signature) (float64, error) {
	score, err := c.engine.Compare(a, b)
	if err != nil {
		return 0, fmt.Errorf("compare signatures: %w", err)
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("compare signatures: non-finite score %v", score)
	}
	return score, nil
}

// IsMatch reports whether score is strictly above the threshold
func (c *Comparator) IsMatch(score float64) bool {
	return score > c.threshold
}

// Probability maps a score to an integer percentage in [0, 100]
func Probability(score float64) float64 {
	if score <= 0 || math.IsNaN(score) {
		return 0
	}
	return math.Min(math.Round(score*100), 100)
}
