package config

const (
	defaultModelsDir       = "~/.local/share/audioink/models"
	defaultDataDir         = "~/.local/share/audioink"
	defaultWorkDir         = "~/.cache/audioink/work"
	defaultLogDir          = "~/.local/share/audioink/logs"
	defaultModel           = "base"
	defaultLanguage        = "auto"
	defaultSpeedFactor     = 1.0
	defaultDownloadTimeout = 3600
	defaultDownloadBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ModelsDir: defaultModelsDir,
			DataDir:   defaultDataDir,
			WorkDir:   defaultWorkDir,
			LogDir:    defaultLogDir,
		},
		Transcription: Transcription{
			Model:       defaultModel,
			Language:    defaultLanguage,
			SpeedFactor: defaultSpeedFactor,
		},
		Tools: Tools{
			FFmpeg: "ffmpeg",
			Ytdlp:  "yt-dlp",
		},
		Download: Download{
			TimeoutSeconds: defaultDownloadTimeout,
			BaseURL:        defaultDownloadBaseURL,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
