package vision

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegmentDimensions(t *testing.T) {
	board := image.NewRGBA(image.Rect(0, 0, 160, 160))
	grid := Segment(board)

	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			b := grid[row][col].Bounds()
			assert.Equal(t, 20, b.Dx())
			assert.Equal(t, 20, b.Dy())
		}
	}
}

func TestSegmentTruncatesRemainder(t *testing.T) {
	// 100 is not divisible by 8; the trailing 4 pixels per axis are dropped.
	board := image.NewRGBA(image.Rect(0, 0, 100, 100))
	grid := Segment(board)

	b := grid[7][7].Bounds()
	assert.Equal(t, 12, b.Dx())
	assert.Equal(t, 12, b.Dy())
}

func TestSegmentPixelMapping(t *testing.T) {
	board := image.NewRGBA(image.Rect(0, 0, 80, 80))
	// Mark one pixel inside what must become square [2][5].
	board.SetRGBA(5*10+3, 2*10+7, color.RGBA{255, 0, 0, 255})

	grid := Segment(board)

	r, _, _, _ := grid[2][5].At(3, 7).RGBA()
	assert.Equal(t, uint32(0xffff), r)

	r, _, _, _ = grid[0][0].At(3, 7).RGBA()
	assert.Zero(t, r)
}

func TestSegmentNonZeroOrigin(t *testing.T) {
	board := image.NewRGBA(image.Rect(40, 40, 120, 120))
	board.SetRGBA(40, 40, color.RGBA{0, 255, 0, 255})

	grid := Segment(board)

	_, g, _, _ := grid[0][0].At(0, 0).RGBA()
	assert.Equal(t, uint32(0xffff), g)
}
