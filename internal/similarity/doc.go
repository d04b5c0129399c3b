// Package similarity maintains the directed compatibility matrix between
// clip frames.
//
// The engine caches per-clip frame features (a grayscale array and a color
// array per side), scores every ordered pair of (trailing frame, leading
// frame) exactly once, and persists the matrix to disk after every mutation.
// matrix[A][B] answers "can playback travel from A's last frame into B's
// first frame"; the reverse direction is an independent entry.
//
// All state is guarded by a single mutex. Registration holds the lock for
// its full duration, from feature loading through the pairwise scoring loop
// to the persistence write, so concurrent registrations serialize and
// queries always observe a complete matrix. Node counts stay in the tens to
// low hundreds, which keeps the O(N²) total comparison cost acceptable.
package similarity
