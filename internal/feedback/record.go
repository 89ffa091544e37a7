// Package feedback keeps an append-only, content-addressed log of human
// corrections to piece classifications, with supersede semantics: at most one
// record per (image hash, square) key is active at any time.
package feedback

import (
	"fmt"
	"time"
)

// Fixed-width timestamp layout so that textual timestamps sort
// chronologically.
const timestampLayout = "2006-01-02T15:04:05.000000000"

// Record is one human correction as persisted in the feedback log. Records
// are immutable except for IsActive, which a later correction sharing the
// same unique key flips from true to false. Fields absent in older logs are
// left at their zero values on load.
type Record struct {
	SquareName         string  `json:"square_name"`
	OriginalPrediction string  `json:"original_prediction,omitempty"`
	OriginalConfidence float64 `json:"original_confidence"`
	UserCorrection     string  `json:"user_correction"`
	Timestamp          string  `json:"timestamp"`
	SquareImagePath    string  `json:"square_image_path,omitempty"`
	BoardOrientation   string  `json:"board_orientation,omitempty"`
	SessionID          string  `json:"session_id"`
	UniqueKey          string  `json:"unique_key"`
	ImageHash          string  `json:"image_hash"`
	IsActive           bool    `json:"is_active"`
}

// uniqueKey derives the deduplication key for a correction. It is a pure
// function of the board image hash and the square name.
func uniqueKey(imageHash, squareName string) string {
	return fmt.Sprintf("%s:%s", imageHash, squareName)
}

func formatTimestamp(t time.Time) string {
	return t.Format(timestampLayout)
}
