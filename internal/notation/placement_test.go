package notation

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chess-scanner/internal/recognition"
	"chess-scanner/internal/vision"
	"chess-scanner/pkg/chess"
)

func TestEncodeEmptyBoard(t *testing.T) {
	var results recognition.ResultGrid
	assert.Equal(t, "8/8/8/8/8/8/8/8 w KQkq - 0 1", Encode(results))
}

func TestEncodeShape(t *testing.T) {
	var results recognition.ResultGrid
	fen := Encode(results)

	placement, _, ok := strings.Cut(fen, " ")
	require.True(t, ok)
	groups := strings.Split(placement, "/")
	assert.Len(t, groups, 8)
	assert.True(t, strings.HasSuffix(fen, PlaceholderSuffix))
}

func TestEncodeRunLength(t *testing.T) {
	var results recognition.ResultGrid
	results[0][0] = recognition.Result{Piece: chess.WhiteRook}
	results[0][7] = recognition.Result{Piece: chess.WhiteRook}
	results[3][4] = recognition.Result{Piece: chess.BlackKing}
	results[7][1] = recognition.Result{Piece: chess.WhitePawn}

	fen := Encode(results)
	placement, _, _ := strings.Cut(fen, " ")
	assert.Equal(t, "R6R/8/8/4k3/8/8/8/1P6", placement)
}

func TestEncodeUnknownAsEmpty(t *testing.T) {
	var results recognition.ResultGrid
	results[4][2] = recognition.Result{Piece: chess.Unknown, Confidence: 0.3}
	results[4][3] = recognition.Result{Piece: chess.WhiteQueen, Confidence: 0.8}

	fen := Encode(results)
	placement, _, _ := strings.Cut(fen, " ")
	assert.Equal(t, "8/8/8/8/3Q4/8/8/8", placement)
}

func TestEncodePipelineOutputShape(t *testing.T) {
	board := image.NewRGBA(image.Rect(0, 0, 160, 160))
	for y := 0; y < 160; y++ {
		for x := 0; x < 160; x++ {
			board.SetRGBA(x, y, color.RGBA{180, 180, 180, 255})
		}
	}

	grid := vision.Segment(board)
	results := recognition.NewClassifier(recognition.NewModelStore(), 0).ClassifyBoard(grid)

	fen := Encode(results)
	placement, _, _ := strings.Cut(fen, " ")
	assert.Equal(t, 7, strings.Count(placement, "/"))
	assert.Len(t, strings.Split(placement, "/"), 8)
}

func TestEncodeFullRow(t *testing.T) {
	var results recognition.ResultGrid
	for col := 0; col < 8; col++ {
		results[1][col] = recognition.Result{Piece: chess.BlackPawn}
	}

	fen := Encode(results)
	placement, _, _ := strings.Cut(fen, " ")
	assert.Equal(t, "8/pppppppp/8/8/8/8/8/8", placement)
}
