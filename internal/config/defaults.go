package config

const (
	defaultHost                     = "0.0.0.0"
	defaultPort                     = 3000
	defaultMaxBodyBytes             = 50 << 20 // 50 MB
	defaultReadHeaderTimeoutSeconds = 10
	defaultShutdownTimeoutSeconds   = 30
	defaultScratchDir               = "~/.local/share/stemmix/scratch"
	defaultFFmpegBinary             = "ffmpeg"
	defaultFFprobeBinary            = "ffprobe"
	defaultFetchTimeoutSeconds      = 300
	defaultUserAgent                = "stemmix/dev"
	defaultStorageRegion            = "auto"
	defaultSweepIntervalSeconds     = 600
	defaultScratchMaxAgeSeconds     = 3600
	defaultLogFormat                = "console"
	defaultLogLevel                 = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			Host:                     defaultHost,
			Port:                     defaultPort,
			MaxBodyBytes:             defaultMaxBodyBytes,
			AllowedOrigins:           []string{"*"},
			ReadHeaderTimeoutSeconds: defaultReadHeaderTimeoutSeconds,
			ShutdownTimeoutSeconds:   defaultShutdownTimeoutSeconds,
		},
		Paths: Paths{
			ScratchDir: defaultScratchDir,
		},
		FFmpeg: FFmpeg{
			Binary:        defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
		},
		Fetch: Fetch{
			TimeoutSeconds: defaultFetchTimeoutSeconds,
			UserAgent:      defaultUserAgent,
		},
		Storage: Storage{
			UsePathStyle: true,
		},
		Scratch: Scratch{
			SweepIntervalSeconds: defaultSweepIntervalSeconds,
			MaxAgeSeconds:        defaultScratchMaxAgeSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
