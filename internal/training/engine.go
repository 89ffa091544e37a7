// Package training folds accumulated feedback samples into updated
// classification prototypes.
package training

import (
	"errors"
	"log/slog"

	"chess-scanner/internal/feedback"
	"chess-scanner/internal/recognition"
	"chess-scanner/pkg/chess"
)

// ErrEmptyDataset is returned when retraining is invoked with no samples.
var ErrEmptyDataset = errors.New("empty training dataset")

// Report summarizes one retraining pass.
type Report struct {
	SamplesProcessed int
	DistinctLabels   int
	PerLabelCount    map[string]int
}

// Engine aggregates labeled square images into per-class feature prototypes
// and merges them into a model store. Calls are cumulative: classes learned
// in earlier calls persist even when absent from a later batch, but a class
// present in the batch has its prototype replaced outright rather than
// averaged with history.
type Engine struct {
	models *recognition.ModelStore
}

// NewEngine creates an engine that writes into the given model store.
func NewEngine(models *recognition.ModelStore) *Engine {
	return &Engine{models: models}
}

// Retrain groups the samples by label, computes one aggregate feature
// descriptor per label, and installs the aggregates as prototypes.
func (e *Engine) Retrain(samples []feedback.Sample) (Report, error) {
	if len(samples) == 0 {
		return Report{}, ErrEmptyDataset
	}

	byLabel := make(map[chess.Piece][]recognition.FeatureVector)
	for _, sample := range samples {
		fv := recognition.ExtractFeatures(sample.Image)
		byLabel[sample.Label] = append(byLabel[sample.Label], fv)
	}

	report := Report{
		SamplesProcessed: len(samples),
		DistinctLabels:   len(byLabel),
		PerLabelCount:    make(map[string]int, len(byLabel)),
	}

	for label, features := range byLabel {
		e.models.SetPrototype(label, recognition.Prototype{
			Features:    recognition.MeanFeatures(features),
			SampleCount: len(features),
		})
		report.PerLabelCount[label.Name()] = len(features)
	}

	slog.Info("retrained classification prototypes",
		"samples", report.SamplesProcessed, "labels", report.DistinctLabels)
	return report, nil
}
