package training

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chess-scanner/internal/feedback"
	"chess-scanner/internal/recognition"
	"chess-scanner/pkg/chess"
)

func grayImage(gray uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 24, 24))
	c := color.RGBA{gray, gray, gray, 255}
	for y := 0; y < 24; y++ {
		for x := 0; x < 24; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestRetrainEmptyDataset(t *testing.T) {
	e := NewEngine(recognition.NewModelStore())
	_, err := e.Retrain(nil)
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestRetrainGroupsByLabel(t *testing.T) {
	models := recognition.NewModelStore()
	e := NewEngine(models)

	report, err := e.Retrain([]feedback.Sample{
		{Image: grayImage(100), Label: chess.WhitePawn},
		{Image: grayImage(200), Label: chess.WhitePawn},
		{Image: grayImage(40), Label: chess.BlackKnight},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, report.SamplesProcessed)
	assert.Equal(t, 2, report.DistinctLabels)
	assert.Equal(t, map[string]int{
		"WHITE_PAWN":   2,
		"BLACK_KNIGHT": 1,
	}, report.PerLabelCount)

	pawn, ok := models.Prototype(chess.WhitePawn)
	require.True(t, ok)
	assert.Equal(t, 2, pawn.SampleCount)
	// Mean of the two uniform brightness levels.
	assert.InDelta(t, 150, pawn.Features.AvgBrightness, 1.0)

	knight, ok := models.Prototype(chess.BlackKnight)
	require.True(t, ok)
	assert.Equal(t, 1, knight.SampleCount)
	assert.InDelta(t, 40, knight.Features.AvgBrightness, 1.0)
}

func TestRetrainIsCumulative(t *testing.T) {
	models := recognition.NewModelStore()
	e := NewEngine(models)

	_, err := e.Retrain([]feedback.Sample{
		{Image: grayImage(200), Label: chess.WhitePawn},
	})
	require.NoError(t, err)

	_, err = e.Retrain([]feedback.Sample{
		{Image: grayImage(50), Label: chess.BlackRook},
	})
	require.NoError(t, err)

	// Earlier classes survive later batches that omit them.
	assert.ElementsMatch(t, []string{"WHITE_PAWN", "BLACK_ROOK"}, models.Classes())
}

func TestRetrainReplacesPrototype(t *testing.T) {
	models := recognition.NewModelStore()
	e := NewEngine(models)

	_, err := e.Retrain([]feedback.Sample{
		{Image: grayImage(200), Label: chess.WhitePawn},
		{Image: grayImage(220), Label: chess.WhitePawn},
	})
	require.NoError(t, err)

	_, err = e.Retrain([]feedback.Sample{
		{Image: grayImage(60), Label: chess.WhitePawn},
	})
	require.NoError(t, err)

	// The second pass replaces the prototype outright; history is not
	// averaged in.
	pawn, ok := models.Prototype(chess.WhitePawn)
	require.True(t, ok)
	assert.Equal(t, 1, pawn.SampleCount)
	assert.InDelta(t, 60, pawn.Features.AvgBrightness, 1.0)
}
