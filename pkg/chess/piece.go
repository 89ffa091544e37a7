// Package chess provides the piece and square value types shared across the
// recognition pipeline.
package chess

import "fmt"

// Color represents the color of a piece.
type Color uint8

const (
	White Color = iota
	Black
	NoColor
)

// String returns the color name.
func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// PieceType represents the kind of a chess piece regardless of color.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType
)

// String returns the piece type name.
func (pt PieceType) String() string {
	switch pt {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Piece combines type and color, with Empty and Unknown sentinels for
// classification output. Empty means a square with no piece; Unknown means
// the classifier could not commit to a specific piece.
type Piece uint8

const (
	Empty Piece = iota
	WhitePawn
	WhiteKnight
	WhiteBishop
	WhiteRook
	WhiteQueen
	WhiteKing
	BlackPawn
	BlackKnight
	BlackBishop
	BlackRook
	BlackQueen
	BlackKing
	Unknown
)

// PieceFrom builds a colored piece from a type and color.
func PieceFrom(pt PieceType, c Color) Piece {
	if pt >= NoPieceType || c >= NoColor {
		return Unknown
	}
	return Piece(uint8(pt) + uint8(c)*6 + 1)
}

// Type returns the piece kind, or NoPieceType for Empty and Unknown.
func (p Piece) Type() PieceType {
	if p == Empty || p >= Unknown {
		return NoPieceType
	}
	return PieceType((uint8(p) - 1) % 6)
}

// Color returns the piece color, or NoColor for Empty and Unknown.
func (p Piece) Color() Color {
	if p == Empty || p >= Unknown {
		return NoColor
	}
	return Color((uint8(p) - 1) / 6)
}

// IsPiece reports whether p is one of the twelve colored pieces.
func (p Piece) IsPiece() bool {
	return p >= WhitePawn && p <= BlackKing
}

var pieceNames = [14]string{
	"EMPTY",
	"WHITE_PAWN", "WHITE_KNIGHT", "WHITE_BISHOP", "WHITE_ROOK", "WHITE_QUEEN", "WHITE_KING",
	"BLACK_PAWN", "BLACK_KNIGHT", "BLACK_BISHOP", "BLACK_ROOK", "BLACK_QUEEN", "BLACK_KING",
	"UNKNOWN",
}

// Name returns the canonical piece name used in the feedback log,
// e.g. "WHITE_KNIGHT".
func (p Piece) Name() string {
	if int(p) >= len(pieceNames) {
		return "UNKNOWN"
	}
	return pieceNames[p]
}

// String returns the same canonical name as Name.
func (p Piece) String() string { return p.Name() }

// ParsePiece converts a canonical piece name back into a Piece.
func ParsePiece(name string) (Piece, error) {
	for i, n := range pieceNames {
		if n == name {
			return Piece(i), nil
		}
	}
	return Unknown, fmt.Errorf("unknown piece name %q", name)
}

var fenChars = [14]byte{
	0,
	'P', 'N', 'B', 'R', 'Q', 'K',
	'p', 'n', 'b', 'r', 'q', 'k',
	0,
}

// FENChar returns the FEN placement character for the piece, or 0 for
// Empty and Unknown.
func (p Piece) FENChar() byte {
	if int(p) >= len(fenChars) {
		return 0
	}
	return fenChars[p]
}
