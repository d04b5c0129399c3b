// Package frames produces the representative still frames for a clip and
// turns them into similarity features.
//
// Extractor shells out to ffmpeg/ffprobe to grab a clip's first and last
// frames plus duration and resolution metadata. Loader decodes a frame
// image, resamples it to the engine's square resolution, and emits the
// grayscale and color planes the similarity engine scores.
package frames
