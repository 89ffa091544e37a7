// Package vision locates the chess board in a raw photograph and splits the
// board image into per-square images.
package vision

import (
	"image"

	"gocv.io/x/gocv"
)

// LocateOptions configures board location.
type LocateOptions struct {
	MinBoardSize int // Minimum acceptable board side length in pixels
	MaxBoardSize int // Maximum acceptable board side length in pixels
	BoardSize    int // Side length the extracted board is resized to
}

// DefaultLocateOptions returns default location options.
func DefaultLocateOptions() LocateOptions {
	return LocateOptions{
		MinBoardSize: 200,
		MaxBoardSize: 2000,
		BoardSize:    800,
	}
}

// Locate finds the bounding box of a chess board in a photo.
//
// Pipeline: grayscale, Gaussian blur, adaptive threshold, contour extraction,
// then candidate filtering by area and aspect ratio. The largest surviving
// contour wins. The second return value is false when no candidate survives;
// the caller must supply a manual rectangle or abort.
func Locate(img gocv.Mat, opts LocateOptions) (image.Rectangle, bool) {
	if img.Empty() {
		return image.Rectangle{}, false
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{5, 5}, 0, 0, gocv.BorderDefault)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.AdaptiveThreshold(blurred, &thresh, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary, 11, 2)

	contours := gocv.FindContours(thresh, gocv.RetrievalTree, gocv.ChainApproxSimple)
	defer contours.Close()

	minArea := float64(opts.MinBoardSize) * float64(opts.MinBoardSize)
	maxArea := float64(opts.MaxBoardSize) * float64(opts.MaxBoardSize)

	var best image.Rectangle
	bestArea := 0.0
	found := false

	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if area <= minArea || area >= maxArea {
			continue
		}

		rect := gocv.BoundingRect(contours.At(i))
		if rect.Dy() == 0 {
			continue
		}

		// Boards are roughly square
		aspect := float64(rect.Dx()) / float64(rect.Dy())
		if aspect <= 0.8 || aspect >= 1.2 {
			continue
		}

		if !found || area > bestArea {
			best = rect
			bestArea = area
			found = true
		}
	}

	return best, found
}

// ExtractBoard crops the board region out of the photo and resizes it to a
// square BoardSize image. The region is clamped to the image bounds first.
// Returns an empty Mat when the clamped region is degenerate.
func ExtractBoard(img gocv.Mat, region image.Rectangle, opts LocateOptions) gocv.Mat {
	if img.Empty() {
		return gocv.NewMat()
	}

	bounds := image.Rect(0, 0, img.Cols(), img.Rows())
	clamped := region.Intersect(bounds)
	if clamped.Dx() <= 0 || clamped.Dy() <= 0 {
		return gocv.NewMat()
	}

	roi := img.Region(clamped)
	defer roi.Close()

	board := gocv.NewMat()
	gocv.Resize(roi, &board, image.Point{opts.BoardSize, opts.BoardSize}, 0, 0, gocv.InterpolationLinear)
	return board
}
