package config

const (
	defaultLibraryDir       = "~/.local/share/reloop/library"
	defaultLogDir           = "~/.local/share/reloop/logs"
	defaultAPIBind          = "127.0.0.1:7607"
	defaultFFmpegBinary     = "ffmpeg"
	defaultFFprobeBinary    = "ffprobe"
	defaultProbeTimeout     = 30
	defaultExtractTimeout   = 30
	defaultFrameSize        = 256
	defaultScoreThreshold   = 0.75
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Tools: Tools{
			FFmpegBinary:   defaultFFmpegBinary,
			FFprobeBinary:  defaultFFprobeBinary,
			ProbeTimeout:   defaultProbeTimeout,
			ExtractTimeout: defaultExtractTimeout,
		},
		Similarity: Similarity{
			FrameSize:        defaultFrameSize,
			DefaultThreshold: defaultScoreThreshold,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
