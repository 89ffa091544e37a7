package feedback

import (
	"encoding/json"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chess-scanner/pkg/chess"
)

// testImage returns a w x h image filled with one gray level, used both as a
// stand-in board photo and as a square crop.
func testImage(w, h int, gray uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	c := color.RGBA{gray, gray, gray, 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "piece_feedback.json"), "test_session")
	require.NoError(t, err)
	return s
}

func correctionFor(square string, label chess.Piece) Correction {
	pred := chess.Empty
	return Correction{
		SquareName:         square,
		OriginalPrediction: &pred,
		OriginalConfidence: 0.6,
		UserCorrection:     label,
		SquareImage:        testImage(40, 40, 90),
	}
}

func TestAddCorrectionSupersedesSameSquare(t *testing.T) {
	s := openTestStore(t)
	s.SetCurrentImage(testImage(100, 100, 128))

	_, err := s.AddCorrection(correctionFor("e4", chess.WhiteKnight))
	require.NoError(t, err)
	_, err = s.AddCorrection(correctionFor("e4", chess.WhiteBishop))
	require.NoError(t, err)
	last, err := s.AddCorrection(correctionFor("e4", chess.WhiteQueen))
	require.NoError(t, err)

	recs := s.Records()
	require.Len(t, recs, 3)
	assert.False(t, recs[0].IsActive)
	assert.False(t, recs[1].IsActive)
	assert.True(t, recs[2].IsActive)
	assert.Equal(t, last.UniqueKey, recs[0].UniqueKey)

	stats := s.Statistics()
	assert.Equal(t, 3, stats.TotalCorrections)
	assert.Equal(t, 1, stats.ActiveCorrections)
	assert.Equal(t, 2, stats.SupersededCorrections)

	samples := s.TrainingData(true)
	require.Len(t, samples, 1)
	assert.Equal(t, chess.WhiteQueen, samples[0].Label)
}

func TestAddCorrectionKeysAreScopedToImage(t *testing.T) {
	s := openTestStore(t)

	s.SetCurrentImage(testImage(100, 100, 60))
	first, err := s.AddCorrection(correctionFor("e4", chess.WhitePawn))
	require.NoError(t, err)

	s.SetCurrentImage(testImage(100, 100, 210))
	second, err := s.AddCorrection(correctionFor("e4", chess.BlackPawn))
	require.NoError(t, err)

	assert.NotEqual(t, first.UniqueKey, second.UniqueKey)

	stats := s.Statistics()
	assert.Equal(t, 2, stats.ActiveCorrections)
	assert.Zero(t, stats.SupersededCorrections)
}

func TestDifferentSquaresDoNotInterfere(t *testing.T) {
	s := openTestStore(t)
	s.SetCurrentImage(testImage(100, 100, 128))

	_, err := s.AddCorrection(correctionFor("e4", chess.WhitePawn))
	require.NoError(t, err)
	_, err = s.AddCorrection(correctionFor("d5", chess.BlackKnight))
	require.NoError(t, err)

	for _, rec := range s.Records() {
		assert.True(t, rec.IsActive)
	}
}

func TestStatisticsInvariant(t *testing.T) {
	s := openTestStore(t)
	s.SetCurrentImage(testImage(100, 100, 128))

	squares := []string{"a1", "a1", "b2", "c3", "b2", "b2"}
	for _, sq := range squares {
		_, err := s.AddCorrection(correctionFor(sq, chess.WhiteRook))
		require.NoError(t, err)
	}

	stats := s.Statistics()
	assert.Equal(t, stats.TotalCorrections,
		stats.ActiveCorrections+stats.SupersededCorrections)
	assert.Equal(t, 6, stats.TotalCorrections)
	assert.Equal(t, 3, stats.ActiveCorrections)
	assert.InDelta(t, 0.6, stats.AvgOriginalConfidence, 1e-9)
}

func TestRecordFields(t *testing.T) {
	s := openTestStore(t)
	s.SetCurrentImage(testImage(100, 100, 128))

	pred := chess.WhiteBishop
	rec, err := s.AddCorrection(Correction{
		SquareName:         "c1",
		OriginalPrediction: &pred,
		OriginalConfidence: 0.42,
		UserCorrection:     chess.WhiteKnight,
		SquareImage:        testImage(40, 40, 90),
		Orientation:        chess.OrientationBlack,
	})
	require.NoError(t, err)

	assert.Equal(t, "c1", rec.SquareName)
	assert.Equal(t, "WHITE_BISHOP", rec.OriginalPrediction)
	assert.Equal(t, "WHITE_KNIGHT", rec.UserCorrection)
	assert.Equal(t, "black", rec.BoardOrientation)
	assert.Equal(t, "test_session", rec.SessionID)
	assert.Equal(t, s.CurrentImageHash(), rec.ImageHash)
	assert.Equal(t, rec.ImageHash+":c1", rec.UniqueKey)
	assert.True(t, rec.IsActive)
	assert.NotEmpty(t, rec.Timestamp)
	assert.NotEmpty(t, rec.SquareImagePath)
}

func TestCorrectionWithoutPrediction(t *testing.T) {
	s := openTestStore(t)

	rec, err := s.AddCorrection(Correction{
		SquareName:     "h8",
		UserCorrection: chess.BlackRook,
	})
	require.NoError(t, err)

	assert.Empty(t, rec.OriginalPrediction)
	assert.Empty(t, rec.SquareImagePath)
	assert.Empty(t, rec.BoardOrientation)

	// No stored image means the record cannot contribute training data.
	assert.Empty(t, s.TrainingData(true))
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "piece_feedback.json")

	s, err := Open(path, "first")
	require.NoError(t, err)
	s.SetCurrentImage(testImage(100, 100, 128))
	_, err = s.AddCorrection(correctionFor("e4", chess.WhitePawn))
	require.NoError(t, err)
	_, err = s.AddCorrection(correctionFor("e4", chess.WhiteQueen))
	require.NoError(t, err)

	reopened, err := Open(path, "second")
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.Count())

	// Dedup state is rebuilt from the log: a new correction for the same
	// key supersedes the surviving record.
	reopened.SetCurrentImage(testImage(100, 100, 128))
	_, err = reopened.AddCorrection(correctionFor("e4", chess.WhiteRook))
	require.NoError(t, err)

	stats := reopened.Statistics()
	assert.Equal(t, 3, stats.TotalCorrections)
	assert.Equal(t, 1, stats.ActiveCorrections)

	samples := reopened.TrainingData(true)
	require.Len(t, samples, 1)
	assert.Equal(t, chess.WhiteRook, samples[0].Label)
}

func TestOpenGeneratedSessionID(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "log.json"), "")
	require.NoError(t, err)
	assert.Regexp(t, `^session_[0-9a-f-]{8}$`, s.SessionID())
}

func TestOpenSkipsMalformedRecord(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.json")

	good := Record{
		SquareName:     "e4",
		UserCorrection: "WHITE_PAWN",
		SessionID:      "old",
		UniqueKey:      "abc:e4",
		ImageHash:      "abc",
		IsActive:       true,
	}
	data, err := json.Marshal([]any{good, map[string]any{"square_name": 123}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	s, err := Open(path, "")
	require.NoError(t, err)
	require.Equal(t, 1, s.Count())
	assert.Equal(t, "e4", s.Records()[0].SquareName)
}

func TestOpenCorruptLog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.json")
	require.NoError(t, os.WriteFile(path, []byte("not json at all"), 0644))

	s, err := Open(path, "")
	require.NoError(t, err)
	assert.Zero(t, s.Count())
}

func TestOpenEmptyLog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.json")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	s, err := Open(path, "")
	require.NoError(t, err)
	assert.Zero(t, s.Count())
}

func TestOpenLoadsLegacyRecordDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.json")
	legacy := `[{"square_name":"d4","user_correction":"BLACK_QUEEN",
		"original_confidence":0.3,"timestamp":"2026-01-05T10:00:00.000000000"}]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0644))

	s, err := Open(path, "")
	require.NoError(t, err)
	require.Equal(t, 1, s.Count())

	rec := s.Records()[0]
	assert.Empty(t, rec.SessionID)
	assert.Empty(t, rec.ImageHash)
	assert.False(t, rec.IsActive)
}

func TestTrainingDataSkipsMissingImage(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "log.json"), "sess")
	require.NoError(t, err)

	rec, err := s.AddCorrection(correctionFor("e4", chess.WhitePawn))
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, rec.SquareImagePath)))

	assert.Empty(t, s.TrainingData(true))
}

func TestTrainingDataIncludeSuperseded(t *testing.T) {
	s := openTestStore(t)
	s.SetCurrentImage(testImage(100, 100, 128))

	_, err := s.AddCorrection(correctionFor("e4", chess.WhitePawn))
	require.NoError(t, err)
	_, err = s.AddCorrection(correctionFor("e4", chess.WhiteQueen))
	require.NoError(t, err)

	assert.Len(t, s.TrainingData(true), 1)
	assert.Len(t, s.TrainingData(false), 2)
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log.json")
	s, err := Open(path, "sess")
	require.NoError(t, err)

	rec, err := s.AddCorrection(correctionFor("e4", chess.WhitePawn))
	require.NoError(t, err)
	imagePath := filepath.Join(dir, rec.SquareImagePath)
	require.FileExists(t, imagePath)

	require.NoError(t, s.Clear())
	assert.Zero(t, s.Count())
	assert.NoFileExists(t, imagePath)
	assert.NoFileExists(t, path)

	// The store stays usable after a clear.
	_, err = s.AddCorrection(correctionFor("a1", chess.BlackRook))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Count())
}

func TestExportTo(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "log.json"), "sess")
	require.NoError(t, err)
	_, err = s.AddCorrection(correctionFor("e4", chess.WhitePawn))
	require.NoError(t, err)

	exportPath := filepath.Join(dir, "export.json")
	require.NoError(t, s.ExportTo(exportPath))

	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	var recs []Record
	require.NoError(t, json.Unmarshal(data, &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "e4", recs[0].SquareName)
}
