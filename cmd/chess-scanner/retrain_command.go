package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"chess-scanner/internal/feedback"
	"chess-scanner/internal/recognition"
	"chess-scanner/internal/training"
)

func newRetrainCommand(loadConfig configLoader) *cobra.Command {
	var includeSuperseded bool

	cmd := &cobra.Command{
		Use:   "retrain",
		Short: "Fold accumulated corrections into updated classification prototypes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := feedback.Open(cfg.Feedback.LogPath, "")
			if err != nil {
				return err
			}

			models, err := recognition.LoadModelStore(cfg.Classifier.ModelPath)
			if err != nil {
				return err
			}

			samples := store.TrainingData(!includeSuperseded)
			report, err := training.NewEngine(models).Retrain(samples)
			if err != nil {
				if errors.Is(err, training.ErrEmptyDataset) {
					return fmt.Errorf("no training samples in %s; record corrections first", cfg.Feedback.LogPath)
				}
				return err
			}

			if err := models.Save(cfg.Classifier.ModelPath); err != nil {
				return err
			}

			fmt.Printf("Processed %d samples across %d classes:\n",
				report.SamplesProcessed, report.DistinctLabels)

			labels := make([]string, 0, len(report.PerLabelCount))
			for label := range report.PerLabelCount {
				labels = append(labels, label)
			}
			sort.Strings(labels)
			for _, label := range labels {
				fmt.Printf("  %-14s %d\n", label, report.PerLabelCount[label])
			}

			fmt.Printf("\nModel written to %s\n", cfg.Classifier.ModelPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeSuperseded, "include-superseded", false, "Train on superseded corrections too")
	return cmd
}
