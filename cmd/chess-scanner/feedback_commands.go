package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"chess-scanner/internal/feedback"
	"chess-scanner/internal/recognition"
	"chess-scanner/internal/vision"
	"chess-scanner/pkg/chess"
)

func newCorrectCommand(loadConfig configLoader) *cobra.Command {
	var orientationFlag string
	var regionFlag string
	var predictedFlag string
	var confidenceFlag float64

	cmd := &cobra.Command{
		Use:   "correct <image> <square> <piece>",
		Short: "Record a correction for one square of a photographed board",
		Long: "Records that the given square of the photographed board holds the given\n" +
			"piece (e.g. WHITE_KNIGHT or EMPTY), storing the square image for later\n" +
			"retraining. A repeated correction for the same square of the same photo\n" +
			"supersedes the earlier one.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			correction, err := chess.ParsePiece(args[2])
			if err != nil {
				return err
			}

			override, err := chess.ParseOrientation(orientationFlag)
			if err != nil {
				return err
			}

			board, err := locateBoard(args[0], cfg, regionFlag)
			if err != nil {
				return err
			}

			grid := vision.Segment(board)
			orientation := recognition.ResolveOrientation(override, grid, nil)

			row, col, err := chess.SquareCoords(args[1], orientation)
			if err != nil {
				return err
			}

			store, err := feedback.Open(cfg.Feedback.LogPath, "")
			if err != nil {
				return err
			}
			store.SetCurrentImage(board)

			c := feedback.Correction{
				SquareName:         args[1],
				OriginalConfidence: confidenceFlag,
				UserCorrection:     correction,
				SquareImage:        grid[row][col],
				Orientation:        orientation,
			}
			if predictedFlag != "" {
				predicted, err := chess.ParsePiece(predictedFlag)
				if err != nil {
					return err
				}
				c.OriginalPrediction = &predicted
			}

			rec, err := store.AddCorrection(c)
			if err != nil {
				return err
			}

			fmt.Printf("Recorded %s = %s (session %s)\n", rec.SquareName, rec.UserCorrection, rec.SessionID)
			return nil
		},
	}

	cmd.Flags().StringVar(&orientationFlag, "orientation", "auto", "Board orientation: auto, white or black")
	cmd.Flags().StringVar(&regionFlag, "region", "", "Manual board region as x,y,w,h when detection fails")
	cmd.Flags().StringVar(&predictedFlag, "predicted", "", "What the classifier predicted for the square")
	cmd.Flags().Float64Var(&confidenceFlag, "confidence", 0, "Confidence of the original prediction")

	return cmd
}

func newStatsCommand(loadConfig configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show feedback log statistics",
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

			stats := store.Statistics()
			fmt.Printf("Corrections: %d total, %d active, %d superseded\n",
				stats.TotalCorrections, stats.ActiveCorrections, stats.SupersededCorrections)
			fmt.Printf("Mean original confidence (active): %.2f\n", stats.AvgOriginalConfidence)

			if len(stats.ByPieceType) > 0 {
				fmt.Println("\nActive corrections by piece:")
				for _, name := range sortedKeys(stats.ByPieceType) {
					fmt.Printf("  %-14s %d\n", name, stats.ByPieceType[name])
				}
			}

			summaries := store.SessionSummaries()
			if len(summaries) > 0 {
				fmt.Println("\nSessions:")
				for _, id := range sortedSummaryKeys(summaries) {
					sum := summaries[id]
					fmt.Printf("  %-20s %d active / %d total  (%s .. %s)\n",
						id, sum.ActiveCount, sum.TotalCount, sum.FirstTimestamp, sum.LastTimestamp)
				}
			}
			return nil
		},
	}
}

func newClearCommand(loadConfig configLoader) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Irreversibly delete the feedback log and stored square images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear without --yes")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := feedback.Open(cfg.Feedback.LogPath, "")
			if err != nil {
				return err
			}

			count := store.Count()
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Printf("Cleared %d corrections\n", count)
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedSummaryKeys(m map[string]feedback.SessionSummary) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
