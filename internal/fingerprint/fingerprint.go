// Package fingerprint computes composite perceptual hashes used as cache keys
// for rated images. Visually identical images hash identically regardless of
// encoding or moderate rescaling; the hash is not cryptographic.
package fingerprint

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"math/bits"
	"strings"

	"gocv.io/x/gocv"
)

// ErrUnhashable indicates the bytes could not be decoded as an image.
var ErrUnhashable = errors.New("image cannot be fingerprinted")

// DefaultEdge is the longer-edge size images are normalized to before hashing.
const DefaultEdge = 512

const separator = "_"

// Digest names, in the order they appear in a Fingerprint.
var Digests = []string{"detail", "wavelet", "color", "center", "edge", "luminance"}

// Fingerprint is a composite of perceptual digests joined by "_".
type Fingerprint string

// Components splits the fingerprint into its digests.
func (f Fingerprint) Components() []string {
	return strings.Split(string(f), separator)
}

// Distance returns the per-digest Hamming distance between a and b.
func Distance(a, b Fingerprint) ([]int, error) {
	ac, bc := a.Components(), b.Components()
	if len(ac) != len(bc) {
		return nil, fmt.Errorf("fingerprint component count mismatch: %d vs %d", len(ac), len(bc))
	}

	out := make([]int, len(ac))
	for i := range ac {
		x, err := hex.DecodeString(ac[i])
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", digestName(i), err)
		}
		y, err := hex.DecodeString(bc[i])
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", digestName(i), err)
		}
		if len(x) != len(y) {
			return nil, fmt.Errorf("component %s length mismatch", digestName(i))
		}
		for j := range x {
			out[i] += bits.OnesCount8(x[j] ^ y[j])
		}
	}
	return out, nil
}

func digestName(i int) string {
	if i < len(Digests) {
		return Digests[i]
	}
	return fmt.Sprintf("#%d", i)
}

// Fingerprinter hashes encoded images. It holds no mutable state and is safe
// for concurrent use.
type Fingerprinter struct {
	edge int
}

// New creates a Fingerprinter that normalizes images to the given longer edge.
func New(edge int) *Fingerprinter {
	if edge <= 0 {
		edge = DefaultEdge
	}
	return &Fingerprinter{edge: edge}
}

// Fingerprint decodes data and computes its composite hash.
func (f *Fingerprinter) Fingerprint(data []byte) (Fingerprint, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty input", ErrUnhashable)
	}

	src, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnhashable, err)
	}
	defer src.Close()

	if src.Empty() || src.Cols() < 2 || src.Rows() < 2 {
		return "", fmt.Errorf("%w: undecodable or degenerate image", ErrUnhashable)
	}

	norm := f.normalize(src)
	defer norm.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(norm, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(5, 5), 0, 0, gocv.BorderDefault)

	digests := []string{
		dctHash(gray, 64, 16),
		waveletHash(gray),
		colorHash(norm),
		centerHash(gray),
		edgeHash(blurred),
		luminanceDigest(blurred),
	}

	return Fingerprint(strings.Join(digests, separator)), nil
}

// normalize resizes src so its longer edge equals f.edge, preserving aspect ratio.
func (f *Fingerprinter) normalize(src gocv.Mat) gocv.Mat {
	w, h := src.Cols(), src.Rows()
	scale := float64(f.edge) / float64(max(w, h))

	size := image.Pt(max(int(float64(w)*scale+0.5), 1), max(int(float64(h)*scale+0.5), 1))

	interp := gocv.InterpolationCubic
	if scale < 1 {
		interp = gocv.InterpolationArea
	}

	dst := gocv.NewMat()
	gocv.Resize(src, &dst, size, 0, 0, interp)
	return dst
}
