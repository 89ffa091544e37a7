// Package notation serializes classified grids into FEN-style placement
// strings.
package notation

import (
	"strconv"
	"strings"

	"chess-scanner/internal/recognition"
)

// PlaceholderSuffix is appended after the placement field. It stands in for
// side-to-move, castling rights, en passant and move counters, none of which
// the vision pipeline can know. Consumers must not treat it as meaningful.
const PlaceholderSuffix = " w KQkq - 0 1"

// Encode serializes a classified grid into a placement string: one group per
// row with runs of empty squares collapsed to their count, groups joined by
// "/", then the placeholder suffix. Unknown squares encode as empty since no
// piece can be asserted for them. No legality checking is performed.
func Encode(results recognition.ResultGrid) string {
	var sb strings.Builder

	for row := 0; row < 8; row++ {
		if row > 0 {
			sb.WriteByte('/')
		}

		emptyRun := 0
		for col := 0; col < 8; col++ {
			ch := results[row][col].Piece.FENChar()
			if ch == 0 {
				emptyRun++
				continue
			}
			if emptyRun > 0 {
				sb.WriteString(strconv.Itoa(emptyRun))
				emptyRun = 0
			}
			sb.WriteByte(ch)
		}
		if emptyRun > 0 {
			sb.WriteString(strconv.Itoa(emptyRun))
		}
	}

	sb.WriteString(PlaceholderSuffix)
	return sb.String()
}
