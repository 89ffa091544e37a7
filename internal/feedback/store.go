package feedback

import (
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"chess-scanner/pkg/chess"
)

// Subdirectory of the log's directory where corrected square images are kept.
const imagesSubdir = "training_images"

// Correction is the input for one human correction.
type Correction struct {
	SquareName         string
	OriginalPrediction *chess.Piece // nil when the classifier made no prediction
	OriginalConfidence float64
	UserCorrection     chess.Piece
	SquareImage        image.Image       // optional; persisted when present
	Orientation        chess.Orientation // OrientationAuto means not recorded
}

// Sample pairs a stored square image with its corrected label.
type Sample struct {
	Image image.Image
	Label chess.Piece
}

// Store is the feedback log. It keeps every correction ever made, appending
// new records and flipping superseded ones inactive, and persists the whole
// log atomically on every change.
//
// One writer process at a time is assumed; there is no cross-process file
// locking.
type Store struct {
	mu        sync.RWMutex
	path      string
	imagesDir string
	sessionID string

	records []Record
	// Index of the single active record per unique key, for O(1) supersede.
	activeByKey map[string]int

	currentImageHash string
}

// Open loads the feedback log at path, creating an empty store when the file
// does not exist. An empty sessionID generates a fresh session identifier. A
// corrupted or empty log is treated as an empty log with a warning; a single
// malformed record is skipped individually so the rest of the log survives.
func Open(path, sessionID string) (*Store, error) {
	if sessionID == "" {
		sessionID = fmt.Sprintf("session_%s", uuid.NewString()[:8])
	}

	s := &Store{
		path:        path,
		imagesDir:   filepath.Join(filepath.Dir(path), imagesSubdir),
		sessionID:   sessionID,
		activeByKey: make(map[string]int),
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read feedback log: %w", err)
	}

	if len(data) == 0 {
		slog.Warn("feedback log is empty, starting with no records", "path", s.path)
		return nil
	}

	// Decode records individually so one malformed entry does not discard
	// the rest of the log.
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		slog.Warn("feedback log is corrupt, starting with no records", "path", s.path, "error", err)
		return nil
	}

	for i, msg := range raw {
		var rec Record
		if err := json.Unmarshal(msg, &rec); err != nil {
			slog.Warn("skipping malformed feedback record", "index", i, "error", err)
			continue
		}
		s.append(rec)
	}
	return nil
}

// append adds a loaded or new record, maintaining the single-active-per-key
// invariant: a later active record supersedes any earlier one with the same
// unique key.
func (s *Store) append(rec Record) {
	if rec.IsActive {
		if prev, ok := s.activeByKey[rec.UniqueKey]; ok {
			s.records[prev].IsActive = false
		}
		s.activeByKey[rec.UniqueKey] = len(s.records)
	}
	s.records = append(s.records, rec)
}

// SessionID returns the session identifier new corrections are tagged with.
func (s *Store) SessionID() string { return s.sessionID }

// SetCurrentImage declares the board photo the following corrections belong
// to. The content hash of this image scopes deduplication keys.
func (s *Store) SetCurrentImage(img image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentImageHash = HashImage(img)
}

// CurrentImageHash returns the content hash of the current board photo, or
// the empty string when none is set.
func (s *Store) CurrentImageHash() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentImageHash
}

// AddCorrection appends a correction to the log. Any earlier active record
// for the same (current image, square) is flipped inactive first. The full
// log is persisted atomically before AddCorrection returns.
func (s *Store) AddCorrection(c Correction) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	imagePath := ""
	if c.SquareImage != nil {
		p, err := s.saveSquareImage(c.SquareName, c.SquareImage, now)
		if err != nil {
			return Record{}, err
		}
		imagePath = p
	}

	rec := Record{
		SquareName:         c.SquareName,
		OriginalConfidence: c.OriginalConfidence,
		UserCorrection:     c.UserCorrection.Name(),
		Timestamp:          formatTimestamp(now),
		SquareImagePath:    imagePath,
		SessionID:          s.sessionID,
		UniqueKey:          uniqueKey(s.currentImageHash, c.SquareName),
		ImageHash:          s.currentImageHash,
		IsActive:           true,
	}
	if c.OriginalPrediction != nil {
		rec.OriginalPrediction = c.OriginalPrediction.Name()
	}
	if c.Orientation != chess.OrientationAuto {
		rec.BoardOrientation = c.Orientation.String()
	}

	s.append(rec)

	if err := s.save(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// saveSquareImage persists a corrected square image as a lossless PNG under
// the training images directory. Filenames carry a nanosecond timestamp so
// sequential corrections within one process never collide.
func (s *Store) saveSquareImage(squareName string, img image.Image, now time.Time) (string, error) {
	if err := os.MkdirAll(s.imagesDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create images directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s.png", squareName, now.Format("20060102T150405.000000000"))
	full := filepath.Join(s.imagesDir, name)

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("failed to create square image: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("failed to encode square image: %w", err)
	}

	// Stored relative to the log's directory so the log stays relocatable
	return filepath.Join(imagesSubdir, name), nil
}

// save writes the whole log to disk via a temporary file and rename, so a
// crash mid-write never leaves a truncated log behind. Callers hold the lock.
func (s *Store) save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create feedback directory: %w", err)
	}

	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize feedback log: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write feedback log: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace feedback log: %w", err)
	}
	return nil
}

// Records returns a copy of all records in append order.
func (s *Store) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Count returns the total number of records, active and superseded.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// TrainingData projects the log onto labeled image samples. With activeOnly
// (the usual mode), only active records contribute. Records without a stored
// image are skipped; a record whose image file is missing is skipped with a
// warning, never fatally.
func (s *Store) TrainingData(activeOnly bool) []Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	baseDir := filepath.Dir(s.path)
	var samples []Sample

	for _, rec := range s.records {
		if activeOnly && !rec.IsActive {
			continue
		}
		if rec.SquareImagePath == "" {
			continue
		}

		label, err := chess.ParsePiece(rec.UserCorrection)
		if err != nil {
			slog.Warn("skipping training sample with unknown label",
				"square", rec.SquareName, "label", rec.UserCorrection)
			continue
		}

		img, err := loadImage(filepath.Join(baseDir, rec.SquareImagePath))
		if err != nil {
			slog.Warn("skipping training sample with unreadable image",
				"square", rec.SquareName, "path", rec.SquareImagePath, "error", err)
			continue
		}

		samples = append(samples, Sample{Image: img, Label: label})
	}
	return samples
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

// Clear irreversibly empties the log and deletes all stored square images.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.records {
		if rec.SquareImagePath == "" {
			continue
		}
		full := filepath.Join(filepath.Dir(s.path), rec.SquareImagePath)
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to delete stored square image", "path", full, "error", err)
		}
	}

	s.records = nil
	s.activeByKey = make(map[string]int)

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete feedback log: %w", err)
	}
	return nil
}

// ExportTo writes a copy of the current log to another path.
func (s *Store) ExportTo(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize feedback log: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to export feedback log: %w", err)
	}
	return nil
}
