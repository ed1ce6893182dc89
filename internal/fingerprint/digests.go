package fingerprint

import (
	"encoding/hex"
	"fmt"
	"image"
	"math"
	"slices"
	"strings"

	"gocv.io/x/gocv"
)

// dctHash is a perceptual hash: the size×size grayscale image is transformed
// with a DCT and the low×low low-frequency block is thresholded at its median.
func dctHash(gray gocv.Mat, size, low int) string {
	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(gray, &resized, image.Pt(size, size), 0, 0, gocv.InterpolationArea)

	floatImg := gocv.NewMat()
	defer floatImg.Close()
	resized.ConvertTo(&floatImg, gocv.MatTypeCV32F)

	dct := gocv.NewMat()
	defer dct.Close()
	gocv.DCT(floatImg, &dct, 0)

	values := make([]float64, 0, low*low)
	for y := range low {
		for x := range low {
			values = append(values, float64(dct.GetFloatAt(y, x)))
		}
	}

	return thresholdHex(values)
}

// waveletHash applies a three-level Haar transform to a 64×64 grayscale image
// and thresholds the 8×8 approximation band at its median.
func waveletHash(gray gocv.Mat) string {
	const size, levels = 64, 3

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(gray, &resized, image.Pt(size, size), 0, 0, gocv.InterpolationArea)

	px := make([]float64, size*size)
	for y := range size {
		for x := range size {
			px[y*size+x] = float64(resized.GetUCharAt(y, x)) / 255
		}
	}

	n := size
	for range levels {
		haarStep(px, size, n)
		n /= 2
	}

	band := make([]float64, 0, n*n)
	for y := range n {
		band = append(band, px[y*size:y*size+n]...)
	}

	return thresholdHex(band)
}

// haarStep transforms the top-left n×n block of a stride-wide matrix in place,
// leaving averages in the top-left (n/2)×(n/2) quadrant.
func haarStep(px []float64, stride, n int) {
	half := n / 2
	tmp := make([]float64, n)

	for y := range n {
		row := px[y*stride : y*stride+n]
		for i := range half {
			a, b := row[2*i], row[2*i+1]
			tmp[i] = (a + b) / 2
			tmp[half+i] = (a - b) / 2
		}
		copy(row, tmp)
	}

	for x := range n {
		for i := range half {
			a, b := px[2*i*stride+x], px[(2*i+1)*stride+x]
			tmp[i] = (a + b) / 2
			tmp[half+i] = (a - b) / 2
		}
		for i := range n {
			px[i*stride+x] = tmp[i]
		}
	}
}

// colorHash summarizes the HSV distribution as the fractions of dark, grey
// and six hue-bucketed saturated pixels, each quantized to one hex digit.
func colorHash(bgr gocv.Mat) string {
	const hueBins = 6

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(bgr, &hsv, gocv.ColorBGRToHSV)

	counts := make([]float64, 2+hueBins)
	var total float64

	for y := range hsv.Rows() {
		for x := range hsv.Cols() {
			v := hsv.GetVecbAt(y, x)
			h, s, val := int(v[0]), v[1], v[2]

			switch {
			case val < 32:
				counts[0]++
			case s < 40:
				counts[1]++
			default:
				// OpenCV hue spans 0..179
				counts[2+min(h*hueBins/180, hueBins-1)]++
			}
			total++
		}
	}

	var sb strings.Builder
	for _, c := range counts {
		q := int(math.Round(c / total * 15))
		fmt.Fprintf(&sb, "%x", min(max(q, 0), 15))
	}
	return sb.String()
}

// centerHash is a perceptual hash of the central 60% of the image, which
// tolerates modest cropping at the borders.
func centerHash(gray gocv.Mat) string {
	w, h := gray.Cols(), gray.Rows()
	rect := image.Rect(w/5, h/5, w-w/5, h-h/5)

	region := gray.Region(rect)
	defer region.Close()

	return dctHash(region, 32, 8)
}

// edgeHash is a perceptual hash of the Canny edge map.
func edgeHash(blurred gocv.Mat) string {
	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, 50, 150)

	return dctHash(edges, 32, 8)
}

// luminanceDigest encodes every fourth bin of a 64-bin luminance histogram
// as a byte-scaled fraction of the pixel count.
func luminanceDigest(blurred gocv.Mat) string {
	const bins, stride = 64, 4

	counts := make([]float64, bins)
	var total float64
	for y := range blurred.Rows() {
		for x := range blurred.Cols() {
			counts[int(blurred.GetUCharAt(y, x))*bins/256]++
			total++
		}
	}

	out := make([]byte, 0, bins/stride)
	for i := 0; i < bins; i += stride {
		q := math.Round(counts[i] / total * 255)
		out = append(out, byte(min(max(q, 0), 255)))
	}
	return hex.EncodeToString(out)
}

// thresholdHex sets one bit per value that is at or above the median and
// returns the packed bits as hex.
func thresholdHex(values []float64) string {
	median := medianOf(values)

	packed := make([]byte, (len(values)+7)/8)
	for i, v := range values {
		if v >= median {
			packed[i/8] |= 1 << (7 - uint(i%8))
		}
	}
	return hex.EncodeToString(packed)
}

func medianOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}
