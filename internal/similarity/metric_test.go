package similarity_test

import (
	"math"
	"testing"

	"reloop/internal/similarity"
)

const testFrameSize = 16

func solidFrame(gray float64, r, g, b uint8) *similarity.Frame {
	n := testFrameSize * testFrameSize
	frame := &similarity.Frame{
		Size: testFrameSize,
		Gray: make([]float64, n),
		RGB:  make([]uint8, n*3),
	}
	for i := 0; i < n; i++ {
		frame.Gray[i] = gray
		frame.RGB[i*3] = r
		frame.RGB[i*3+1] = g
		frame.RGB[i*3+2] = b
	}
	return frame
}

func checkerFrame(invert bool) *similarity.Frame {
	n := testFrameSize * testFrameSize
	frame := &similarity.Frame{
		Size: testFrameSize,
		Gray: make([]float64, n),
		RGB:  make([]uint8, n*3),
	}
	for y := 0; y < testFrameSize; y++ {
		for x := 0; x < testFrameSize; x++ {
			on := (x+y)%2 == 0
			if invert {
				on = !on
			}
			i := y*testFrameSize + x
			if on {
				frame.Gray[i] = 1
				frame.RGB[i*3], frame.RGB[i*3+1], frame.RGB[i*3+2] = 255, 255, 255
			}
		}
	}
	return frame
}

func TestScoreIdenticalFramesIsOne(t *testing.T) {
	frame := solidFrame(0.5, 120, 80, 200)
	if got := similarity.Score(frame, frame); math.Abs(got-1) > 1e-9 {
		t.Fatalf("identical frames should score 1, got %g", got)
	}
}

func TestScoreBoundsUnderAdversarialInput(t *testing.T) {
	frames := []*similarity.Frame{
		solidFrame(0, 0, 0, 0),
		solidFrame(1, 255, 255, 255),
		solidFrame(0.3, 255, 0, 0),
		solidFrame(0.3, 0, 0, 255),
		checkerFrame(false),
		checkerFrame(true),
	}
	for _, a := range frames {
		for _, b := range frames {
			got := similarity.Score(a, b)
			if got < 0 || got > 1 {
				t.Fatalf("score out of bounds: %g", got)
			}
		}
	}
}

func TestScoreClampsNegativeStructural(t *testing.T) {
	// Inverted checkerboards are perfectly anti-correlated, so the raw
	// structural term is negative and must clamp to 0. The color histograms
	// of the two checkerboards are identical, so only the color weight
	// survives.
	got := similarity.Score(checkerFrame(false), checkerFrame(true))
	if math.Abs(got-0.4) > 1e-9 {
		t.Fatalf("expected clamped structural term to leave 0.4, got %g", got)
	}
}

func TestScoreMissingColorContributesZero(t *testing.T) {
	a := solidFrame(0.5, 100, 100, 100)
	b := solidFrame(0.5, 100, 100, 100)
	b.RGB = nil

	if got := similarity.Score(a, b); math.Abs(got-0.6) > 1e-9 {
		t.Fatalf("expected structural-only score 0.6, got %g", got)
	}
}

func TestScoreNilFrames(t *testing.T) {
	if got := similarity.Score(nil, solidFrame(0.5, 0, 0, 0)); got != 0 {
		t.Fatalf("nil frame should score 0, got %g", got)
	}
}

func TestScoreOrdering(t *testing.T) {
	base := solidFrame(0.5, 128, 128, 128)
	near := solidFrame(0.55, 140, 140, 140)
	far := solidFrame(0.05, 10, 240, 10)

	if similarity.Score(base, near) <= similarity.Score(base, far) {
		t.Fatal("closer frame should score higher than distant frame")
	}
}
