package chess

import "fmt"

// Orientation states which side of the board faces the camera at the bottom
// of the captured image.
type Orientation uint8

const (
	// OrientationAuto lets the pipeline infer the orientation.
	OrientationAuto Orientation = iota
	// OrientationWhite means white's pieces are at the bottom of the image.
	OrientationWhite
	// OrientationBlack means black's pieces are at the bottom of the image.
	OrientationBlack
)

// String returns the orientation name as stored in the feedback log.
func (o Orientation) String() string {
	switch o {
	case OrientationWhite:
		return "white"
	case OrientationBlack:
		return "black"
	default:
		return "auto"
	}
}

// ParseOrientation converts a stored orientation name back into an
// Orientation. The empty string parses to OrientationAuto.
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "white":
		return OrientationWhite, nil
	case "black":
		return OrientationBlack, nil
	case "auto", "":
		return OrientationAuto, nil
	}
	return OrientationAuto, fmt.Errorf("unknown orientation %q", s)
}

// SquareName returns the algebraic name of the square at grid position
// (row, col), where row 0 is the top of the image as captured.
//
// With white at the bottom, row 0 is rank 8 and col 0 is file a. With black
// at the bottom the board is seen rotated 180 degrees, so row 0 is rank 1
// and col 0 is file h.
func SquareName(row, col int, o Orientation) string {
	var file byte
	var rank int
	if o == OrientationBlack {
		file = byte('h' - col)
		rank = row + 1
	} else {
		file = byte('a' + col)
		rank = 8 - row
	}
	return fmt.Sprintf("%c%d", file, rank)
}

// SquareCoords is the inverse of SquareName: it maps an algebraic square
// name back to the grid position (row, col) it occupies in a captured image
// with the given orientation.
func SquareCoords(name string, o Orientation) (row, col int, err error) {
	if len(name) != 2 || name[0] < 'a' || name[0] > 'h' || name[1] < '1' || name[1] > '8' {
		return 0, 0, fmt.Errorf("invalid square name %q", name)
	}

	file := int(name[0] - 'a')
	rank := int(name[1] - '0')
	if o == OrientationBlack {
		return rank - 1, 7 - file, nil
	}
	return 8 - rank, file, nil
}
