package main

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	_ "golang.org/x/image/tiff"

	"chess-scanner/internal/config"
	"chess-scanner/internal/notation"
	"chess-scanner/internal/recognition"
	"chess-scanner/internal/vision"
	"chess-scanner/pkg/chess"
)

type configLoader func() (config.Config, error)

func newRecognizeCommand(loadConfig configLoader) *cobra.Command {
	var orientationFlag string
	var regionFlag string

	cmd := &cobra.Command{
		Use:   "recognize <image>",
		Short: "Recognize the position on a photographed board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
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

			models, err := recognition.LoadModelStore(cfg.Classifier.ModelPath)
			if err != nil {
				return err
			}

			grid := vision.Segment(board)
			classifier := recognition.NewClassifier(models, cfg.Classifier.MinConfidence)
			results := classifier.ClassifyBoard(grid)

			orientation := recognition.ResolveOrientation(override, grid, &results)
			if orientation == chess.OrientationBlack {
				results = recognition.FlipResults(results)
			}

			fmt.Printf("Orientation: %s at bottom\n", orientation)
			fmt.Printf("%-8s %-14s %s\n", "Square", "Piece", "Confidence")
			for row := 0; row < 8; row++ {
				for col := 0; col < 8; col++ {
					r := results[row][col]
					if r.Piece == chess.Empty {
						continue
					}
					// Results are already in white-at-bottom order here
					name := chess.SquareName(row, col, chess.OrientationWhite)
					fmt.Printf("%-8s %-14s %.2f\n", name, r.Piece.Name(), r.Confidence)
				}
			}

			fmt.Printf("\nFEN: %s\n", notation.Encode(results))
			return nil
		},
	}

	cmd.Flags().StringVar(&orientationFlag, "orientation", "auto", "Board orientation: auto, white or black")
	cmd.Flags().StringVar(&regionFlag, "region", "", "Manual board region as x,y,w,h when detection fails")

	return cmd
}

// locateBoard loads a photo and returns the extracted board image, using the
// automatic locator unless a manual region is supplied.
func locateBoard(path string, cfg config.Config, regionFlag string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	raw, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	mat := vision.ToMat(raw)
	defer mat.Close()

	opts := vision.LocateOptions{
		MinBoardSize: cfg.Detector.MinBoardSize,
		MaxBoardSize: cfg.Detector.MaxBoardSize,
		BoardSize:    cfg.Detector.BoardSize,
	}

	region, ok := image.Rectangle{}, false
	if regionFlag != "" {
		region, err = parseRegion(regionFlag)
		if err != nil {
			return nil, err
		}
		ok = true
	} else {
		region, ok = vision.Locate(mat, opts)
	}
	if !ok {
		return nil, fmt.Errorf("no board found in %s; supply one with --region x,y,w,h", path)
	}

	board := vision.ExtractBoard(mat, region, opts)
	defer board.Close()
	if board.Empty() {
		return nil, fmt.Errorf("board region %v is outside the image", region)
	}

	return vision.ToImage(board)
}

func parseRegion(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("region must be x,y,w,h, got %q", s)
	}

	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("invalid region component %q: %w", p, err)
		}
		vals[i] = v
	}
	return image.Rect(vals[0], vals[1], vals[0]+vals[2], vals[1]+vals[3]), nil
}
