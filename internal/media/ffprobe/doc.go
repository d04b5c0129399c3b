// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect executes ffprobe against a media file and returns a Result with
// container format metadata and per-stream properties. Helper methods expose
// the values the ingest pipeline needs: duration and the primary video
// stream's dimensions.
package ffprobe
