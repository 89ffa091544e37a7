package recognition

import (
	"sort"

	"chess-scanner/internal/vision"
	"chess-scanner/pkg/chess"
)

// DefaultMinConfidence is the threshold below which a classification is
// reported as Unknown rather than a specific piece.
const DefaultMinConfidence = 0.5

// ScoredPiece pairs a candidate piece with a confidence score.
type ScoredPiece struct {
	Piece      chess.Piece
	Confidence float64
}

// Result is the classification outcome for one square.
type Result struct {
	Piece        chess.Piece
	Confidence   float64
	Alternatives []ScoredPiece
}

// ResultGrid is an 8x8 grid of classification results, indexed like
// vision.Grid.
type ResultGrid [8][8]Result

// Classifier maps feature vectors to piece classifications. When the model
// store holds learned prototypes for a color, nearest-prototype lookup takes
// precedence over the built-in edge-density bands for that color.
type Classifier struct {
	models        *ModelStore
	minConfidence float64
}

// NewClassifier creates a classifier backed by the given model store. A
// non-positive minConfidence selects DefaultMinConfidence.
func NewClassifier(models *ModelStore, minConfidence float64) *Classifier {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	return &Classifier{models: models, minConfidence: minConfidence}
}

// Classify maps a feature vector to a piece classification.
func (c *Classifier) Classify(fv FeatureVector) Result {
	return c.classify(fv, chess.NoColor)
}

// ClassifyWithColorHint is Classify with the piece color supplied by the
// caller instead of estimated from brightness.
func (c *Classifier) ClassifyWithColorHint(fv FeatureVector, hint chess.Color) Result {
	return c.classify(fv, hint)
}

func (c *Classifier) classify(fv FeatureVector, colorHint chess.Color) Result {
	emptyScore := emptinessScore(fv)
	if emptyScore > 0.5 {
		return Result{Piece: chess.Empty, Confidence: emptyScore}
	}

	color, colorConf := estimateColor(fv)
	if colorHint != chess.NoColor {
		color, colorConf = colorHint, 0.7
	}

	pt, typeConf, alts := c.estimatorFor(color).estimate(fv)

	// Carry the occupancy score forward as a ranked alternative
	alts = append(alts, ScoredPiece{Piece: chess.Empty, Confidence: emptyScore})

	overall := (colorConf + typeConf) / 2
	if overall < c.minConfidence {
		return Result{Piece: chess.Unknown, Confidence: overall, Alternatives: alts}
	}
	return Result{Piece: chess.PieceFrom(pt, color), Confidence: overall, Alternatives: alts}
}

// ClassifyBoard classifies every square of a segmented board independently.
// No cross-square consistency check is performed: two squares may both claim
// the same unique piece.
func (c *Classifier) ClassifyBoard(grid vision.Grid) ResultGrid {
	var out ResultGrid
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			out[row][col] = c.Classify(ExtractFeatures(grid[row][col]))
		}
	}
	return out
}

// emptinessScore applies the weighted emptiness rule. Each condition
// contributes independently; a score above 0.5 means the square is empty.
func emptinessScore(fv FeatureVector) float64 {
	score := 0.0
	if fv.EdgeDensity < 0.1 {
		score += 0.4
	}
	if fv.BrightnessVariance < 500 {
		score += 0.3
	}
	if fv.CenterDarkness < 0.3 {
		score += 0.3
	}
	return score
}

// estimateColor guesses the piece color from the brightness of the center
// region, where the piece sits.
func estimateColor(fv FeatureVector) (chess.Color, float64) {
	switch {
	case fv.CenterBrightness > 150:
		return chess.White, 0.7
	case fv.CenterBrightness < 100:
		return chess.Black, 0.7
	case fv.CenterBrightness > 125:
		return chess.White, 0.5
	default:
		return chess.Black, 0.5
	}
}

// typeEstimator produces a piece-type estimate for an occupied square whose
// color has already been decided.
type typeEstimator interface {
	estimate(fv FeatureVector) (chess.PieceType, float64, []ScoredPiece)
}

// estimatorFor selects the learned estimator when prototypes exist for the
// color, falling back to the banded heuristic otherwise.
func (c *Classifier) estimatorFor(color chess.Color) typeEstimator {
	if c.models != nil && c.models.HasColor(color) {
		return &prototypeEstimator{candidates: c.models.ForColor(color)}
	}
	return bandEstimator{}
}

// bandEstimator buckets edge density into four coarse complexity bands.
// Intentionally a placeholder: band confidence is fixed at 0.4.
type bandEstimator struct{}

func (bandEstimator) estimate(fv FeatureVector) (chess.PieceType, float64, []ScoredPiece) {
	switch {
	case fv.EdgeDensity < 0.15:
		return chess.Pawn, 0.4, nil
	case fv.EdgeDensity < 0.25:
		return chess.Rook, 0.4, nil
	case fv.EdgeDensity < 0.35:
		return chess.Knight, 0.4, nil
	default:
		return chess.Queen, 0.4, nil
	}
}

// prototypeEstimator picks the candidate whose learned prototype is nearest
// to the feature vector.
type prototypeEstimator struct {
	candidates map[chess.Piece]Prototype
}

func (e *prototypeEstimator) estimate(fv FeatureVector) (chess.PieceType, float64, []ScoredPiece) {
	ranked := make([]ScoredPiece, 0, len(e.candidates))
	for p, proto := range e.candidates {
		dist := fv.Distance(proto.Features)
		ranked = append(ranked, ScoredPiece{Piece: p, Confidence: 1.0 / (1.0 + dist)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Confidence != ranked[j].Confidence {
			return ranked[i].Confidence > ranked[j].Confidence
		}
		return ranked[i].Piece < ranked[j].Piece
	})

	best := ranked[0]
	return best.Piece.Type(), best.Confidence, ranked
}
