package feedback

import (
	"crypto/sha256"
	"encoding/hex"
	"image"

	xdraw "golang.org/x/image/draw"
)

// Side length of the canonical thumbnail the content hash is computed from.
const canonicalHashSize = 64

// HashImage computes a stable content hash for a board photo. The image is
// resampled to a small canonical size before hashing, so the hash survives
// resolution and format differences of the same photo while remaining
// sensitive to real content changes.
func HashImage(img image.Image) string {
	canon := image.NewRGBA(image.Rect(0, 0, canonicalHashSize, canonicalHashSize))
	xdraw.ApproxBiLinear.Scale(canon, canon.Bounds(), img, img.Bounds(), xdraw.Src, nil)

	sum := sha256.Sum256(canon.Pix)
	return hex.EncodeToString(sum[:])
}
