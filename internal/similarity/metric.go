package similarity

import "math"

const (
	structuralWeight = 0.6
	colorWeight      = 0.4

	// SSIM stabilization constants for a [0,1] dynamic range.
	ssimC1 = 0.01 * 0.01
	ssimC2 = 0.03 * 0.03

	ssimWindow = 8

	// Hue and saturation carry most of the discriminating power for scene
	// continuity, so they get finer binning than value.
	hueBins = 32
	satBins = 32
	valBins = 8
)

// Score combines the structural similarity of two grayscale planes with the
// correlation of their color distributions into a single value in [0,1].
// The structural and color terms are each clamped to a floor of 0 before
// weighting, so a strongly dissimilar pair scores 0 rather than negative.
// A missing color plane contributes 0 to the color term.
func Score(last, first *Frame) float64 {
	if last == nil || first == nil {
		return 0
	}
	structural := math.Max(ssim(last.Gray, first.Gray, last.Size), 0)

	var colorTerm float64
	if last.RGB != nil && first.RGB != nil {
		colorTerm = math.Max(colorCorrelation(last.RGB, first.RGB), 0)
	}

	return structuralWeight*structural + colorWeight*colorTerm
}

// ssim computes the mean structural similarity over non-overlapping 8×8
// windows, following the standard luminance/contrast/structure formulation.
// The result lies in [-1,1].
func ssim(a, b []float64, size int) float64 {
	if size <= 0 || len(a) != size*size || len(b) != size*size {
		return 0
	}
	if size < ssimWindow {
		return windowSSIM(a, b, size, 0, 0, size)
	}

	var total float64
	var windows int
	for y := 0; y+ssimWindow <= size; y += ssimWindow {
		for x := 0; x+ssimWindow <= size; x += ssimWindow {
			total += windowSSIM(a, b, size, x, y, ssimWindow)
			windows++
		}
	}
	return total / float64(windows)
}

func windowSSIM(a, b []float64, stride, x0, y0, win int) float64 {
	n := float64(win * win)

	var sumA, sumB float64
	for y := y0; y < y0+win; y++ {
		row := y * stride
		for x := x0; x < x0+win; x++ {
			sumA += a[row+x]
			sumB += b[row+x]
		}
	}
	meanA := sumA / n
	meanB := sumB / n

	var varA, varB, cov float64
	for y := y0; y < y0+win; y++ {
		row := y * stride
		for x := x0; x < x0+win; x++ {
			da := a[row+x] - meanA
			db := b[row+x] - meanB
			varA += da * da
			varB += db * db
			cov += da * db
		}
	}
	varA /= n - 1
	varB /= n - 1
	cov /= n - 1

	numerator := (2*meanA*meanB + ssimC1) * (2*cov + ssimC2)
	denominator := (meanA*meanA + meanB*meanB + ssimC1) * (varA + varB + ssimC2)
	return numerator / denominator
}

// colorCorrelation converts both RGB planes to HSV, builds a normalized
// histogram per channel, and averages the per-channel Pearson correlation
// coefficients. The result lies in [-1,1].
func colorCorrelation(a, b []uint8) float64 {
	if len(a) == 0 || len(a) != len(b) || len(a)%3 != 0 {
		return 0
	}

	histA := hsvHistograms(a)
	histB := hsvHistograms(b)

	var total float64
	for ch := 0; ch < 3; ch++ {
		total += correlate(histA[ch], histB[ch])
	}
	return total / 3
}

func hsvHistograms(rgb []uint8) [3][]float64 {
	hist := [3][]float64{
		make([]float64, hueBins),
		make([]float64, satBins),
		make([]float64, valBins),
	}
	pixels := len(rgb) / 3
	for i := 0; i < pixels; i++ {
		h, s, v := rgbToHSV(rgb[i*3], rgb[i*3+1], rgb[i*3+2])
		hist[0][binIndex(h/360, hueBins)]++
		hist[1][binIndex(s, satBins)]++
		hist[2][binIndex(v, valBins)]++
	}
	total := float64(pixels)
	for ch := range hist {
		for i := range hist[ch] {
			hist[ch][i] /= total
		}
	}
	return hist
}

func binIndex(value float64, bins int) int {
	idx := int(value * float64(bins))
	if idx >= bins {
		idx = bins - 1
	}
	if idx < 0 {
		idx = 0
	}
	return idx
}

// rgbToHSV converts 8-bit RGB to hue in [0,360) and saturation/value in
// [0,1].
func rgbToHSV(r8, g8, b8 uint8) (h, s, v float64) {
	r := float64(r8) / 255
	g := float64(g8) / 255
	b := float64(b8) / 255

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	delta := maxC - minC

	v = maxC
	if maxC > 0 {
		s = delta / maxC
	}
	if delta == 0 {
		return 0, s, v
	}

	switch maxC {
	case r:
		h = 60 * math.Mod((g-b)/delta, 6)
	case g:
		h = 60 * ((b-r)/delta + 2)
	default:
		h = 60 * ((r-g)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}

// correlate computes the Pearson correlation coefficient between two equal
// length histograms.
func correlate(a, b []float64) float64 {
	n := float64(len(a))
	var meanA, meanB float64
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= n
	meanB /= n

	var num, denA, denB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		num += da * db
		denA += da * da
		denB += db * db
	}
	if denA == 0 || denB == 0 {
		// Flat histograms: identical distributions correlate perfectly,
		// anything else not at all.
		if denA == denB {
			return 1
		}
		return 0
	}
	return num / math.Sqrt(denA*denB)
}

func round4(value float64) float64 {
	return math.Round(value*10000) / 10000
}
