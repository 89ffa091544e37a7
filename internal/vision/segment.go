package vision

import (
	"image"
	"image/draw"
)

// Grid is an 8x8 grid of square images, indexed [row][col]. Row 0 is the top
// edge of the image as captured, which is not necessarily chess rank 8.
type Grid [8][8]image.Image

// Segment splits a board image into an 8x8 grid of equally sized squares.
// Square dimensions come from integer division by 8; any remainder pixels at
// the right and bottom edges are dropped.
func Segment(board image.Image) Grid {
	bounds := board.Bounds()
	sqW := bounds.Dx() / 8
	sqH := bounds.Dy() / 8

	var grid Grid
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			rect := image.Rect(0, 0, sqW, sqH)
			sq := image.NewRGBA(rect)
			src := image.Pt(bounds.Min.X+col*sqW, bounds.Min.Y+row*sqH)
			draw.Draw(sq, rect, board, src, draw.Src)
			grid[row][col] = sq
		}
	}
	return grid
}
