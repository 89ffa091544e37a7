// Package recognition classifies square images as chess pieces using a fixed
// feature descriptor, with optional learned per-class prototypes that take
// precedence over the built-in heuristics.
package recognition

import (
	"image"
	"math"

	"gonum.org/v1/gonum/stat"

	"chess-scanner/pkg/colorutil"
)

// Brightness below this is counted as a dark pixel.
const darkThreshold = 100

// Sobel gradient magnitude above this is counted as an edge pixel.
const edgeThreshold = 50

// FeatureVector holds the scalar descriptors extracted from one square image.
// It is a pure deterministic function of the pixel data.
type FeatureVector struct {
	AvgBrightness      float64 `json:"avg_brightness"`
	BrightnessVariance float64 `json:"brightness_variance"`
	EdgeDensity        float64 `json:"edge_density"`
	DarkPixelRatio     float64 `json:"dark_pixel_ratio"`
	AvgSaturation      float64 `json:"avg_saturation"`
	CenterDarkness     float64 `json:"center_darkness"`
	CenterBrightness   float64 `json:"center_brightness"`
}

// ExtractFeatures computes the descriptor vector for a single square image.
func ExtractFeatures(img image.Image) FeatureVector {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return FeatureVector{}
	}

	gray := make([][]float64, h)
	for i := range gray {
		gray[i] = make([]float64, w)
	}

	grays := make([]float64, 0, w*h)
	sats := make([]float64, 0, w*h)
	darkCount := 0

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			r8 := float64(r >> 8)
			g8 := float64(g >> 8)
			b8 := float64(b >> 8)

			lum := colorutil.Luminance(r8, g8, b8)
			gray[y][x] = lum
			grays = append(grays, lum)
			if lum < darkThreshold {
				darkCount++
			}

			_, s, _ := colorutil.RGBToHSV(r8, g8, b8)
			sats = append(sats, s)
		}
	}

	fv := FeatureVector{
		AvgBrightness:      stat.Mean(grays, nil),
		BrightnessVariance: stat.PopVariance(grays, nil),
		AvgSaturation:      stat.Mean(sats, nil),
		DarkPixelRatio:     float64(darkCount) / float64(w*h),
	}

	// Edge density via Sobel over interior pixels
	edgeCount := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -gray[y-1][x-1] + gray[y-1][x+1] +
				-2*gray[y][x-1] + 2*gray[y][x+1] +
				-gray[y+1][x-1] + gray[y+1][x+1]
			gy := -gray[y-1][x-1] - 2*gray[y-1][x] - gray[y-1][x+1] +
				gray[y+1][x-1] + 2*gray[y+1][x] + gray[y+1][x+1]
			if math.Sqrt(gx*gx+gy*gy) > edgeThreshold {
				edgeCount++
			}
		}
	}
	fv.EdgeDensity = float64(edgeCount) / float64(w*h)

	// Center region: the middle half of the square, where a piece sits
	centerDark := 0
	centerSum := 0.0
	centerCount := 0
	for y := h / 4; y < 3*h/4; y++ {
		for x := w / 4; x < 3*w/4; x++ {
			centerSum += gray[y][x]
			if gray[y][x] < darkThreshold {
				centerDark++
			}
			centerCount++
		}
	}
	if centerCount > 0 {
		fv.CenterDarkness = float64(centerDark) / float64(centerCount)
		fv.CenterBrightness = centerSum / float64(centerCount)
	}

	return fv
}

// Distance returns a scale-normalized distance between two feature vectors.
// Each term is divided by a characteristic scale so that pixel-count,
// ratio and brightness features contribute comparably. Edge density gets
// extra weight since it separates piece silhouettes best.
func (fv FeatureVector) Distance(other FeatureVector) float64 {
	score := sqDiff(fv.AvgBrightness, other.AvgBrightness, 64)
	score += sqDiff(fv.BrightnessVariance, other.BrightnessVariance, 2000)
	score += sqDiff(fv.EdgeDensity, other.EdgeDensity, 0.1) * 2.0
	score += sqDiff(fv.DarkPixelRatio, other.DarkPixelRatio, 0.25)
	score += sqDiff(fv.AvgSaturation, other.AvgSaturation, 64)
	score += sqDiff(fv.CenterDarkness, other.CenterDarkness, 0.25)
	score += sqDiff(fv.CenterBrightness, other.CenterBrightness, 64)
	return math.Sqrt(score)
}

// sqDiff computes (a-b)^2 / s^2 with safeguards.
func sqDiff(a, b, s float64) float64 {
	if s < 0.001 {
		s = 0.001
	}
	d := (a - b) / s
	return d * d
}

// MeanFeatures computes the per-field mean of a set of feature vectors.
func MeanFeatures(features []FeatureVector) FeatureVector {
	if len(features) == 0 {
		return FeatureVector{}
	}

	cols := make([][]float64, 7)
	for i := range cols {
		cols[i] = make([]float64, 0, len(features))
	}
	for _, fv := range features {
		cols[0] = append(cols[0], fv.AvgBrightness)
		cols[1] = append(cols[1], fv.BrightnessVariance)
		cols[2] = append(cols[2], fv.EdgeDensity)
		cols[3] = append(cols[3], fv.DarkPixelRatio)
		cols[4] = append(cols[4], fv.AvgSaturation)
		cols[5] = append(cols[5], fv.CenterDarkness)
		cols[6] = append(cols[6], fv.CenterBrightness)
	}

	return FeatureVector{
		AvgBrightness:      stat.Mean(cols[0], nil),
		BrightnessVariance: stat.Mean(cols[1], nil),
		EdgeDensity:        stat.Mean(cols[2], nil),
		DarkPixelRatio:     stat.Mean(cols[3], nil),
		AvgSaturation:      stat.Mean(cols[4], nil),
		CenterDarkness:     stat.Mean(cols[5], nil),
		CenterBrightness:   stat.Mean(cols[6], nil),
	}
}
