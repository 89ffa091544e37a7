package recognition

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"chess-scanner/pkg/chess"
)

// Prototype is the learned aggregate descriptor for one piece class.
type Prototype struct {
	Features    FeatureVector `json:"features"`
	SampleCount int           `json:"sample_count"`
}

// ModelStore holds one learned prototype per piece class. Prototypes are
// created and replaced only by the retraining engine and persist across
// retraining calls until Reset.
type ModelStore struct {
	mu         sync.RWMutex
	prototypes map[chess.Piece]Prototype
}

// NewModelStore creates an empty model store.
func NewModelStore() *ModelStore {
	return &ModelStore{
		prototypes: make(map[chess.Piece]Prototype),
	}
}

// Prototype returns the learned prototype for a piece class, if any.
func (s *ModelStore) Prototype(p chess.Piece) (Prototype, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	proto, ok := s.prototypes[p]
	return proto, ok
}

// SetPrototype installs or replaces the prototype for a piece class.
func (s *ModelStore) SetPrototype(p chess.Piece, proto Prototype) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prototypes[p] = proto
}

// ForColor returns the learned prototypes for colored pieces of one color.
func (s *ModelStore) ForColor(c chess.Color) map[chess.Piece]Prototype {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[chess.Piece]Prototype)
	for p, proto := range s.prototypes {
		if p.Color() == c {
			out[p] = proto
		}
	}
	return out
}

// HasColor reports whether any prototype exists for pieces of the color.
func (s *ModelStore) HasColor(c chess.Color) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for p := range s.prototypes {
		if p.Color() == c {
			return true
		}
	}
	return false
}

// Trained reports whether the store holds any prototypes at all.
func (s *ModelStore) Trained() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.prototypes) > 0
}

// Classes returns the sorted names of all learned piece classes.
func (s *ModelStore) Classes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.prototypes))
	for p := range s.prototypes {
		names = append(names, p.Name())
	}
	sort.Strings(names)
	return names
}

// Reset discards all learned prototypes.
func (s *ModelStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prototypes = make(map[chess.Piece]Prototype)
}

// modelFile is the on-disk representation of the store.
type modelFile struct {
	Prototypes map[string]Prototype `json:"prototypes"`
}

// Save persists the store to a JSON file.
func (s *ModelStore) Save(path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	file := modelFile{Prototypes: make(map[string]Prototype, len(s.prototypes))}
	for p, proto := range s.prototypes {
		file.Prototypes[p.Name()] = proto
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize model: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	return nil
}

// LoadModelStore loads a store from a JSON file. A missing file yields an
// empty store.
func LoadModelStore(path string) (*ModelStore, error) {
	s := NewModelStore()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read model: %w", err)
	}

	var file modelFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}

	for name, proto := range file.Prototypes {
		p, err := chess.ParsePiece(name)
		if err != nil {
			return nil, fmt.Errorf("invalid piece class in model: %w", err)
		}
		s.prototypes[p] = proto
	}
	return s, nil
}
