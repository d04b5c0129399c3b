package similarity

// Side identifies which representative frame of a clip a feature belongs to.
type Side string

const (
	// SideFirst is the leading frame of a clip.
	SideFirst Side = "first"
	// SideLast is the trailing frame of a clip.
	SideLast Side = "last"
)

// Knob labels for query results, matching the editor's handles: a clip's
// leading frame is its left knob, its trailing frame the right knob.
const (
	KnobLeft  = "left"
	KnobRight = "right"
)

// Frame holds the feature representation of a single still frame, resampled
// to a square Size×Size resolution.
type Frame struct {
	// Size is the square edge length in pixels.
	Size int
	// Gray is the luminance plane in row-major order, values in [0,1].
	Gray []float64
	// RGB holds interleaved 8-bit RGB samples (Size*Size*3 bytes). It may be
	// nil when color information was unavailable; scoring then ignores the
	// color term.
	RGB []uint8
}

// FrameLoader turns a frame image on disk into a Frame feature
// representation. Implementations must distinguish missing/unreadable files
// from decode failures via wrapped errors.
type FrameLoader interface {
	LoadFrame(path string, size int) (*Frame, error)
}

// LoadState describes what the engine knows about a cached feature.
type LoadState int

const (
	// LoadStateAbsent means no load has been attempted for the key.
	LoadStateAbsent LoadState = iota
	// LoadStateLoaded means the feature is cached and usable.
	LoadStateLoaded
	// LoadStateFailed means the most recent load attempt failed; the
	// failure is recorded rather than silently collapsing into "absent".
	LoadStateFailed
)

// String implements fmt.Stringer for log output.
func (s LoadState) String() string {
	switch s {
	case LoadStateLoaded:
		return "loaded"
	case LoadStateFailed:
		return "failed"
	default:
		return "absent"
	}
}

type featureKey struct {
	nodeID string
	side   Side
}

type featureEntry struct {
	frame *Frame
	err   error
}
