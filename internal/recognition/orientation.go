package recognition

import (
	"chess-scanner/internal/vision"
	"chess-scanner/pkg/chess"
)

// Corner squares must differ by at least this many brightness units before
// the corner-color heuristic commits to an orientation.
const cornerBrightnessMargin = 10

// A row must hold at least this many more white pieces than the opposite row
// before the piece-identity heuristic commits to an orientation.
const whitePieceCountMargin = 2

// DetectOrientationFromColors applies the corner-color heuristic: on a
// standard board the square nearest the white player's left hand (a1) is
// dark. Compares the brightness of the bottom-left and top-right corner
// squares. The second return value is false when the comparison is
// inconclusive.
func DetectOrientationFromColors(grid vision.Grid) (chess.Orientation, bool) {
	bottomLeft := ExtractFeatures(grid[7][0]).AvgBrightness
	topRight := ExtractFeatures(grid[0][7]).AvgBrightness

	switch {
	case bottomLeft < topRight-cornerBrightnessMargin:
		return chess.OrientationWhite, true
	case topRight < bottomLeft-cornerBrightnessMargin:
		return chess.OrientationBlack, true
	}
	return chess.OrientationAuto, false
}

// DetectOrientationFromPieces applies the piece-identity heuristic: white's
// pieces start on the two rows nearest white. Compares the number of
// white-colored pieces in the bottom and top rows of a classified grid.
func DetectOrientationFromPieces(results ResultGrid) (chess.Orientation, bool) {
	bottom := countWhitePieces(results[7])
	top := countWhitePieces(results[0])

	switch {
	case bottom >= top+whitePieceCountMargin:
		return chess.OrientationWhite, true
	case top >= bottom+whitePieceCountMargin:
		return chess.OrientationBlack, true
	}
	return chess.OrientationAuto, false
}

func countWhitePieces(row [8]Result) int {
	count := 0
	for _, r := range row {
		if r.Piece.Color() == chess.White {
			count++
		}
	}
	return count
}

// ResolveOrientation decides which side faces the camera. A manual override
// of white or black bypasses detection entirely. Otherwise the corner-color
// heuristic runs first, then the piece-identity heuristic when a classified
// grid is available. When everything is inconclusive the resolver defaults
// to white-at-bottom; that default is a bias, not a detected fact.
func ResolveOrientation(override chess.Orientation, grid vision.Grid, results *ResultGrid) chess.Orientation {
	if override != chess.OrientationAuto {
		return override
	}
	if o, ok := DetectOrientationFromColors(grid); ok {
		return o
	}
	if results != nil {
		if o, ok := DetectOrientationFromPieces(*results); ok {
			return o
		}
	}
	return chess.OrientationWhite
}

// FlipGrid rotates a square grid 180 degrees: row order is reversed, then
// column order within each row. FlipGrid is its own inverse.
func FlipGrid(grid vision.Grid) vision.Grid {
	var out vision.Grid
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			out[row][col] = grid[7-row][7-col]
		}
	}
	return out
}

// FlipResults rotates a classified grid 180 degrees, mirroring FlipGrid.
func FlipResults(results ResultGrid) ResultGrid {
	var out ResultGrid
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			out[row][col] = results[7-row][7-col]
		}
	}
	return out
}
